package pipeline

import (
	"testing"

	"github.com/matzehuels/alchemytree/pkg/cache"
	"github.com/matzehuels/alchemytree/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q, want %q", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateInputFormat(t *testing.T) {
	for _, f := range []string{"", "json", "yaml", "yml", "JSON"} {
		if err := ValidateInputFormat(f); err != nil {
			t.Errorf("ValidateInputFormat(%q) = %v", f, err)
		}
	}
	err := ValidateInputFormat("xml")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("ValidateInputFormat(xml) = %v, want %s", err, errors.ErrCodeUnsupported)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"missing recipe", Options{}, errors.ErrCodeInvalidInput},
		{"unknown input format", Options{Recipe: []byte(mudJSON), Format: "xml"}, errors.ErrCodeUnsupported},
		{"control char in target", Options{Recipe: []byte(mudJSON), Target: "Mu\x00d"}, errors.ErrCodeInvalidElement},
		{"negative spacing", Options{Recipe: []byte(mudJSON), HorizontalSpacing: -1}, errors.ErrCodeInvalidOption},
		{"negative levels", Options{Recipe: []byte(mudJSON), Levels: -1}, errors.ErrCodeInvalidOption},
		{"unknown output format", Options{Recipe: []byte(mudJSON), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestDefaults(t *testing.T) {
	opts := Options{Recipe: []byte(mudJSON)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != DefaultFormat {
		t.Errorf("Formats = %v, want [%s]", opts.Formats, DefaultFormat)
	}
	if opts.TTL != cache.DefaultTTL {
		t.Errorf("TTL = %v, want %v", opts.TTL, cache.DefaultTTL)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	lo := opts.LayoutOptions()
	if lo.HorizontalSpacing != 180 || lo.VerticalSpacing != 120 {
		t.Errorf("LayoutOptions() = %+v, want default spacings", lo)
	}

	// Idempotent
	opts.Formats = nil
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if opts.Formats != nil {
		t.Error("second call should not reapply defaults")
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{Target: "Mud"}
	b := Options{Target: "Mud", HorizontalSpacing: 180, VerticalSpacing: 120}
	if a.LayoutKeyOpts() != b.LayoutKeyOpts() {
		t.Error("zero spacings and explicit defaults should share a key")
	}

	c := Options{Target: "Mud", ParentEdges: true}
	if a.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("ParentEdges should change the key")
	}

	keyer := cache.NewDefaultKeyer()
	partial := Options{Levels: 2}
	if keyer.ArtifactKey("g", a.ArtifactKeyOpts("svg")) == keyer.ArtifactKey("g", partial.ArtifactKeyOpts("svg")) {
		t.Error("Levels should change the artifact key")
	}
}
