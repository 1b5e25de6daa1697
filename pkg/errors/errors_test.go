package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("pair 0 has 1 ingredient")

	tests := []struct {
		name string
		err  *Error
		want string
		msg  string
	}{
		{
			name: "plain",
			err:  New(ErrCodeInvalidInput, "bad %s", "body"),
			want: "INVALID_INPUT: bad body",
			msg:  "bad body",
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeMalformedTree, cause, "cannot lay out %s", "Mud"),
			want: "MALFORMED_TREE: cannot lay out Mud: pair 0 has 1 ingredient",
			msg:  "cannot lay out Mud: pair 0 has 1 ingredient",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}

	if got := UserMessage(cause); got != cause.Error() {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("store layout: %w", Wrap(ErrCodeCache, cause, "write failed"))

	if !errors.Is(err, cause) {
		t.Error("cause not reachable through errors.Is")
	}
	var e *Error
	if !errors.As(err, &e) || e.Cause != cause {
		t.Errorf("errors.As = %v", e)
	}
}

func TestCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"coded", New(ErrCodeInvalidElement, "x"), ErrCodeInvalidElement},
		{"outermost wins", Wrap(ErrCodeCache, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeCache},
		{"behind fmt wrap", fmt.Errorf("ctx: %w", New(ErrCodeTimeout, "slow")), ErrCodeTimeout},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeNotFound) {
				t.Error("Is(NOT_FOUND) = true")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidInput, 400},
		{ErrCodeInvalidOption, 400},
		{ErrCodeMalformedTree, 400},
		{ErrCodeEmptyTree, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeUnsupported, 415},
		{ErrCodeUnavailable, 503},
		{ErrCodeTimeout, 504},
		{ErrCodeCache, 500},
		{ErrCodeInternal, 500},
		{"", 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}
