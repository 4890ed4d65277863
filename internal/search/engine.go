// Package search ranks corpus postings by cosine similarity to a query.
package search

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/corpus"
	"github.com/spigell/gigmatch/internal/jobs"
)

// DefaultTopK is used when a caller passes a non-positive top K.
const DefaultTopK = 10

// Engine holds an immutable corpus snapshot. Search is safe for concurrent use.
type Engine struct {
	postings []jobs.Posting
	norms    []float64
	dim      int
	embedder ai.Embedder
	logger   *zap.Logger
}

// New builds an engine over c. The embedder may be nil, in which case text
// queries return no results.
func New(c *corpus.Corpus, embedder ai.Embedder, logger *zap.Logger) (*Engine, error) {
	if c == nil {
		return nil, errors.New("corpus is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		postings: c.Postings,
		norms:    make([]float64, len(c.Postings)),
		dim:      c.Dim,
		embedder: embedder,
		logger:   logger,
	}
	for i := range c.Postings {
		e.norms[i] = norm(c.Postings[i].Embedding)
	}

	return e, nil
}

func (e *Engine) Dim() int { return e.dim }

func (e *Engine) Len() int { return len(e.postings) }

// Postings exposes the snapshot. Callers must not modify it.
func (e *Engine) Postings() []jobs.Posting { return e.postings }

// Search embeds query and returns the top K postings. Every failure yields an
// empty result so callers can fall back to weaker strategies.
func (e *Engine) Search(ctx context.Context, query string, topK int) []jobs.Recommendation {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if e.embedder == nil {
		e.logger.Debug("search skipped", zap.String("reason", "no embedder configured"))
		return nil
	}

	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed", zap.Error(err))
		return nil
	}

	return e.SearchVector(vec, topK)
}

// SearchVector ranks postings against an already computed query vector.
func (e *Engine) SearchVector(vec []float32, topK int) []jobs.Recommendation {
	if len(vec) == 0 {
		return nil
	}
	if len(vec) != e.dim {
		e.logger.Warn("query embedding ignored",
			zap.Error(corpus.ErrDimensionMismatch),
			zap.Int("query_dim", len(vec)),
			zap.Int("corpus_dim", e.dim),
		)
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	qNorm := norm(vec)
	scores := make([]float64, len(e.postings))
	order := make([]int, len(e.postings))
	for i := range e.postings {
		order[i] = i
		scores[i] = cosine(vec, qNorm, e.postings[i].Embedding, e.norms[i])
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if topK > len(order) {
		topK = len(order)
	}

	results := make([]jobs.Recommendation, 0, topK)
	for _, idx := range order[:topK] {
		r := jobs.NewRecommendation(e.postings[idx])
		r.Similarity = scores[idx]
		r.MatchScore = Percent(scores[idx])
		results = append(results, r)
	}
	return results
}

// Percent converts a [0,1] score into a percentage rounded to one decimal.
// Negative scores, such as opposite vectors, become 0.
func Percent(score float64) float64 {
	if score < 0 {
		score = 0
	}
	return math.Round(score*1000) / 10
}

func norm(v []float32) float64 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return math.Sqrt(sum)
}

// cosine is dot(a,b) / (|a| |b|). Zero vectors score 0.
func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 || len(a) != len(b) {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
