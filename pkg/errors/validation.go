package errors

import (
	"math"
	"time"
	"unicode"
)

// maxElementName bounds element names accepted from users.
const maxElementName = 128

// ValidateElementName validates an element name supplied by a user.
//
// Names must be non-empty, at most 128 bytes, and free of control characters.
func ValidateElementName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidElement, "element name cannot be empty")
	}

	if len(name) > maxElementName {
		return New(ErrCodeInvalidElement, "element name too long (max %d characters)", maxElementName)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElement, "element name contains invalid control characters")
		}
	}

	return nil
}

// ValidateSpacing checks a layout spacing. Zero selects the default and is
// accepted; negative, NaN, and infinite values are not.
func ValidateSpacing(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidOption, "%s must be a non-negative finite number, got %v", name, v)
	}
	return nil
}

// ValidateDelay checks reveal intervals. Zero values select defaults. A
// positive delay below a positive minimum is rejected.
func ValidateDelay(delay, minDelay time.Duration) error {
	if delay < 0 || minDelay < 0 {
		return New(ErrCodeInvalidOption, "delays cannot be negative")
	}
	if delay > 0 && minDelay > 0 && delay < minDelay {
		return New(ErrCodeInvalidOption, "delay %v is below the minimum %v", delay, minDelay)
	}
	return nil
}
