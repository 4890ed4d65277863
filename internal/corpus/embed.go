package corpus

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/jobs"
)

// FillMissing embeds every posting whose source row had no usable vector.
// When the source had no vectors at all the first result fixes the
// dimension. At most concurrency requests run at once.
func FillMissing(ctx context.Context, c *Corpus, embedder ai.Embedder, concurrency int) (int, error) {
	if c == nil || embedder == nil {
		return 0, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	var missing []int
	for i := range c.Postings {
		if isZero(c.Postings[i].Embedding) {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	vectors := make([][]float32, len(missing))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for n, idx := range missing {
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, PostingText(&c.Postings[idx]))
			if err != nil {
				return fmt.Errorf("embedding posting %s: %w", c.Postings[idx].ID, err)
			}
			vectors[n] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if c.Parsed == 0 {
		c.Dim = len(vectors[0])
	}

	for n, idx := range missing {
		if len(vectors[n]) != c.Dim {
			return 0, fmt.Errorf("embedding posting %s: %w (got %d, want %d)", c.Postings[idx].ID, ErrDimensionMismatch, len(vectors[n]), c.Dim)
		}
	}

	for n, idx := range missing {
		c.Postings[idx].Embedding = vectors[n]
	}
	c.Parsed += len(missing)

	return len(missing), nil
}

// PostingText is the text embedded for a posting.
func PostingText(p *jobs.Posting) string {
	parts := []string{p.Title, p.Description, p.Place, p.Address}
	out := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, " ")
}

func isZero(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
