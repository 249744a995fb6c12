package ocr

import (
	"context"
	"errors"
	"image/color"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func TestPrepareImageKeepsDimensions(t *testing.T) {
	img := imaging.New(120, 60, color.NRGBA{255, 255, 255, 255})
	f, err := os.CreateTemp("", "blank-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_ = f.Close()
	_ = imaging.Save(img, f.Name())
	defer os.Remove(f.Name())

	out, err := PrepareImage(f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 60 {
		t.Fatalf("dimensions changed: %v", out.Bounds())
	}
}

func TestPrepareImageUndecodable(t *testing.T) {
	f, err := os.CreateTemp("", "garbage-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_, _ = f.WriteString("this is not an image")
	_ = f.Close()
	defer os.Remove(f.Name())

	_, err = PrepareImage(f.Name())
	if err == nil || !errors.Is(err, ErrImage) {
		t.Fatalf("expected ErrImage got %v", err)
	}
}

// Requires the tesseract binary and training data; opt-in.
func TestExtractLinesBlankImage(t *testing.T) {
	if os.Getenv("OCR_TEST") != "1" {
		t.Skip("ocr tests are disabled; set OCR_TEST=1 to enable")
	}
	img := imaging.New(400, 200, color.NRGBA{255, 255, 255, 255})
	f, err := os.CreateTemp("", "blank-*.png")
	if err != nil {
		t.Skip("temp file")
	}
	_ = f.Close()
	_ = imaging.Save(img, f.Name())
	defer os.Remove(f.Name())

	lines, err := ExtractLines(context.Background(), f.Name())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("expected no lines on a blank image, got %v", lines)
	}
}
