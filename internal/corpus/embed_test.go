package corpus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gigmatch/internal/jobs"
)

type mapEmbedder struct {
	mu    sync.Mutex
	dim   int
	calls []string
	fail  string
}

func (m *mapEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()
	if m.fail != "" && strings.Contains(text, m.fail) {
		return nil, errors.New("provider down")
	}
	vec := make([]float32, m.dim)
	vec[0] = float32(len([]rune(text)))
	return vec, nil
}

func TestFillMissing(t *testing.T) {
	c := &Corpus{
		Dim:    2,
		Parsed: 1,
		Postings: []jobs.Posting{
			{ID: "1", Title: "a", Embedding: []float32{1, 1}},
			{ID: "2", Title: "bb", Description: "c", Embedding: []float32{0, 0}},
			{ID: "3", Title: "ddd", Embedding: []float32{0, 0}},
		},
	}

	embedder := &mapEmbedder{dim: 2}
	filled, err := FillMissing(context.Background(), c, embedder, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, filled)
	assert.Equal(t, 3, c.Parsed)
	assert.Equal(t, []float32{1, 1}, c.Postings[0].Embedding)
	assert.Equal(t, []float32{4, 0}, c.Postings[1].Embedding)
	assert.Equal(t, []float32{3, 0}, c.Postings[2].Embedding)
	assert.ElementsMatch(t, []string{"bb c", "ddd"}, embedder.calls)
}

func TestFillMissingAdoptsDimension(t *testing.T) {
	c, err := Build(&Table{Columns: []string{"job_id", "title"}, Rows: []map[string]any{
		{"job_id": "1", "title": "a"},
		{"job_id": "2", "title": "b"},
	}})
	require.NoError(t, err)
	require.Equal(t, DefaultDimension, c.Dim)

	_, err = FillMissing(context.Background(), c, &mapEmbedder{dim: 4}, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Dim)
	assert.Len(t, c.Postings[1].Embedding, 4)
}

func TestFillMissingErrors(t *testing.T) {
	c := &Corpus{Dim: 2, Parsed: 1, Postings: []jobs.Posting{
		{ID: "1", Title: "ok", Embedding: []float32{1, 0}},
		{ID: "2", Title: "bad", Embedding: []float32{0, 0}},
	}}

	_, err := FillMissing(context.Background(), c, &mapEmbedder{dim: 2, fail: "bad"}, 4)
	assert.ErrorContains(t, err, "provider down")

	_, err = FillMissing(context.Background(), c, &mapEmbedder{dim: 3}, 4)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Equal(t, []float32{0, 0}, c.Postings[1].Embedding, "failed fill must not modify the corpus")

	n, err := FillMissing(context.Background(), nil, nil, 1)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
