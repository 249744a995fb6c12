package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
)

var (
	junkRE  = regexp.MustCompile(`[^\w\s.$%-]`)
	centsRE = regexp.MustCompile(`(\d+)[.,](\d{2})`)
)

// skipTokens marks administrative lines that carry no item or total data.
var skipTokens = []string{"order", "server", "table", "guest", "check", "receipt", "duplicate", "copy"}

// ExtractLines normalizes the image at path and runs both recognition
// backends over it, returning the cleaned, deduplicated union of their
// output lines. The set may be empty; preprocessing failure surfaces the
// normalizer's error, backend failure wraps ErrRecognition.
func ExtractLines(ctx context.Context, path string) ([]string, error) {
	img, err := PrepareImage(path)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode normalized image: %w", err)
	}
	lines, err := extractWith(ctx, DefaultBackends(), buf.Bytes())
	if err != nil {
		return nil, err
	}
	log.Printf("extract %s: %d lines", path, len(lines))
	return lines, nil
}

// extractWith fans the encoded image out to every backend concurrently and
// merges the results once all have finished. Outputs are unioned
// commutatively; partial results are never interleaved.
func extractWith(ctx context.Context, backends []Backend, png []byte) ([]string, error) {
	raw := make([][]string, len(backends))
	g, gctx := errgroup.WithContext(ctx)
	for i, b := range backends {
		g.Go(func() error {
			lines, err := b.Lines(gctx, png)
			if err != nil {
				return fmt.Errorf("backend %s: %w: %v", b.Name(), ErrRecognition, err)
			}
			raw[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return mergeLines(raw), nil
}

// mergeLines cleans and unions per-backend line sets. Deduplication uses a
// normalized key (case-folded, whitespace-collapsed) while the first-seen
// original casing is kept for display. First-seen order is preserved so a
// given input always yields the same line sequence.
func mergeLines(sets [][]string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, set := range sets {
		for _, line := range set {
			cleaned := CleanLine(line)
			if cleaned == "" || isSkipLine(cleaned) {
				continue
			}
			key := strings.ToLower(cleaned)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, cleaned)
		}
	}
	return out
}

// CleanLine strips characters outside [word, whitespace, '.', '$', '%', '-'],
// collapses whitespace runs and normalizes a comma decimal separator to a
// period for 2-digit cents patterns.
func CleanLine(line string) string {
	// cents first, the junk strip would otherwise eat the comma
	line = centsRE.ReplaceAllString(line, "$1.$2")
	line = junkRE.ReplaceAllString(line, "")
	return strings.Join(strings.Fields(line), " ")
}

func isSkipLine(line string) bool {
	low := strings.ToLower(line)
	for _, tok := range skipTokens {
		if strings.Contains(low, tok) {
			return true
		}
	}
	return false
}
