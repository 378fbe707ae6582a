package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

const tinySVG = `<svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"><rect width="10" height="10"/></svg>`

func TestConvertSVGPassThrough(t *testing.T) {
	got, err := Convert(context.Background(), []byte(tinySVG), FormatSVG)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if string(got) != tinySVG {
		t.Errorf("Convert(svg) modified input")
	}
}

func TestConvertUnsupported(t *testing.T) {
	_, err := Convert(context.Background(), []byte(tinySVG), "gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Convert(gif) error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestConvertPNG(t *testing.T) {
	if !Available() {
		t.Skip("rsvg-convert not installed")
	}
	got, err := Convert(context.Background(), []byte(tinySVG), FormatPNG)
	if err != nil {
		t.Fatalf("Convert(png) error: %v", err)
	}
	if !bytes.HasPrefix(got, []byte("\x89PNG")) {
		t.Errorf("Convert(png) output is not a PNG")
	}
}

func TestIsImageFormat(t *testing.T) {
	for _, f := range Formats {
		if !IsImageFormat(f) {
			t.Errorf("IsImageFormat(%q) = false", f)
		}
	}
	if IsImageFormat("csv") {
		t.Error("IsImageFormat(csv) = true")
	}
}
