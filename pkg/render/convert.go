package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ConverterTool is the external program used for SVG to PDF conversion.
// It ships with librsvg (librsvg2-bin on Debian, librsvg on Homebrew).
var ConverterTool = "rsvg-convert"

// ErrConverterMissing is returned when [ConverterTool] is not on PATH.
var ErrConverterMissing = errors.New("svg converter not installed")

// ToPDF converts an SVG document to PDF. The conversion process is killed
// when ctx ends.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	path, err := exec.LookPath(ConverterTool)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf output needs %s", ErrConverterMissing, ConverterTool)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--format", "pdf")
	cmd.Stdin = bytes.NewReader(svg)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: %w: %s", ConverterTool, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
