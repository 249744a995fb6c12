package ocr

import (
	"context"
	"sync"
)

// Backend produces lines of text from a normalized receipt image. The merge
// step depends only on this interface, not on backend identity.
type Backend interface {
	Name() string
	// Lines recognizes text in a PNG-encoded image and splits it into raw
	// lines. Line order follows the printed layout top to bottom.
	Lines(ctx context.Context, png []byte) ([]string, error)
}

var (
	defaultOnce     sync.Once
	defaultBackends []Backend
)

// DefaultBackends returns the process-wide backend pair, built lazily once.
// Engine configuration is expensive to set up, so the backends are reused
// across invocations; each call still gets its own recognition client.
func DefaultBackends() []Backend {
	defaultOnce.Do(func() {
		defaultBackends = []Backend{NewTesseractBackend(), NewExecBackend("")}
	})
	return defaultBackends
}
