package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Formats lists the image formats [Convert] accepts.
var Formats = []string{FormatSVG, FormatPNG, FormatPDF}

// ErrUnsupportedFormat is returned by [Convert] for an unknown format.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrConverterMissing is returned when rsvg-convert is not installed.
var ErrConverterMissing = errors.New("rsvg-convert not found; install librsvg:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin")

// IsImageFormat reports whether format is one of [Formats].
func IsImageFormat(format string) bool { return slices.Contains(Formats, format) }

// Convert returns svg in the requested image format. PNG output uses a 2x scale.
func Convert(ctx context.Context, svg []byte, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return svg, nil
	case FormatPNG:
		return rsvgConvert(ctx, svg, "png", "-z", "2.00")
	case FormatPDF:
		return rsvgConvert(ctx, svg, "pdf")
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Available reports whether rsvg-convert can be found on the PATH.
func Available() bool {
	_, err := exec.LookPath("rsvg-convert")
	return err == nil
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if !Available() {
		return nil, fmt.Errorf("%s export: %w", format, ErrConverterMissing)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
