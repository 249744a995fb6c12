package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// TesseractBackend recognizes text with an in-process gosseract client.
// PSM single-block matches a single-column receipt layout.
type TesseractBackend struct {
	lang string
	psm  gosseract.PageSegMode
}

func NewTesseractBackend() *TesseractBackend {
	return &TesseractBackend{lang: "eng", psm: gosseract.PSM_SINGLE_BLOCK}
}

func (b *TesseractBackend) Name() string { return "gosseract" }

func (b *TesseractBackend) Lines(ctx context.Context, png []byte) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	client := gosseract.NewClient()
	defer client.Close()
	_ = client.SetLanguage(b.lang)
	_ = client.SetPageSegMode(b.psm)
	if err := client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("gosseract: %w", err)
	}
	return strings.Split(text, "\n"), nil
}
