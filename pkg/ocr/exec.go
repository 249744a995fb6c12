package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ExecBackend shells out to the tesseract binary for an independent second
// reading of the same image. It runs with a different page-segmentation mode
// (single column) than the in-process backend so the two disagree usefully.
type ExecBackend struct {
	bin  string
	lang string
	psm  int
}

// NewExecBackend builds the CLI backend. An empty bin falls back to the
// TESSERACT_BIN env var, then to "tesseract" on PATH.
func NewExecBackend(bin string) *ExecBackend {
	if bin == "" {
		bin = os.Getenv("TESSERACT_BIN")
	}
	if bin == "" {
		bin = "tesseract"
	}
	return &ExecBackend{bin: bin, lang: "eng", psm: 4}
}

func (b *ExecBackend) Name() string { return "tesseract-cli" }

func (b *ExecBackend) Lines(ctx context.Context, png []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "scan-*.png")
	if err != nil {
		return nil, fmt.Errorf("temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(png); err != nil {
		_ = tmp.Close()
		return nil, fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp image: %w", err)
	}

	// tesseract <file> stdout -l <lang> --psm <n>
	cmd := exec.CommandContext(ctx, b.bin, tmp.Name(), "stdout", "-l", b.lang, "--psm", strconv.Itoa(b.psm))
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %v: %s", b.bin, err, strings.TrimSpace(errb.String()))
	}
	return strings.Split(out.String(), "\n"), nil
}
