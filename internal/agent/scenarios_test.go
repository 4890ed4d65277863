package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/gigmatch/internal/corpus"
	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/search"
	"github.com/spigell/gigmatch/internal/toolkit"
)

type fixedEmbedder struct {
	vec []float32
	err error
}

func (e fixedEmbedder) Embed(context.Context, string) ([]float32, error) {
	return e.vec, e.err
}

func newStack(t *testing.T, c *corpus.Corpus, emb fixedEmbedder) *Agent {
	t.Helper()
	engine, err := search.New(c, emb, nil)
	require.NoError(t, err)
	tk, err := toolkit.New(engine, nil)
	require.NoError(t, err)
	a, err := New(nil, tk, Config{}, nil)
	require.NoError(t, err)
	return a
}

func TestScenarioNoRegionMatchStillRecommends(t *testing.T) {
	c := &corpus.Corpus{Dim: 2}
	for i := 1; i <= 10; i++ {
		c.Postings = append(c.Postings, jobs.Posting{
			ID:        fmt.Sprint(i),
			Title:     fmt.Sprintf("office job %d", i),
			Place:     "Seoul",
			Address:   "Seoul Jung-gu",
			Embedding: []float32{1, 0},
		})
	}
	a := newStack(t, c, fixedEmbedder{err: errors.New("embedding offline")})

	resp := a.Run(context.Background(), Request{Profile: &jobs.Profile{Regions: []string{"Busan"}}})

	assert.True(t, resp.Success)
	require.Len(t, resp.Items, 5)
	var ids []string
	for _, item := range resp.Items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"10", "9", "8", "7", "6"}, ids)
}

func TestScenarioExactMatchReason(t *testing.T) {
	c := &corpus.Corpus{Dim: 2, Postings: []jobs.Posting{
		{ID: "1", Title: "cafe barista", Place: "Haeundae", Address: "Busan Haeundae-gu", Embedding: []float32{1, 0}},
		{ID: "2", Title: "warehouse packing", Place: "Seoul", Address: "Seoul Songpa-gu", Embedding: []float32{0.6, 0.8}},
		{ID: "3", Title: "warehouse packing", Place: "Seoul", Address: "Seoul Guro-gu", Embedding: []float32{0.6, 0.8}},
		{ID: "4", Title: "night shift", Place: "Incheon", Address: "Incheon", Embedding: []float32{0, 1}},
	}}
	a := newStack(t, c, fixedEmbedder{vec: []float32{1, 0}})
	profile := &jobs.Profile{Regions: []string{"Busan"}, Experiences: []string{"cafe"}}

	resp := a.Run(context.Background(), Request{Profile: profile, Intent: "cafe work"})

	require.NotEmpty(t, resp.Items)
	top := resp.Items[0]
	assert.Equal(t, "1", top.ID)
	assert.Contains(t, top.Reason, "region match")
	assert.Contains(t, top.Reason, "experience match")
	assert.Equal(t, 100.0, top.MatchScore)

	seen := map[string]bool{}
	for _, item := range resp.Items {
		seen[item.ID] = true
	}
	assert.True(t, seen["2"], "same title with distinct ids stays")
	assert.True(t, seen["3"], "same title with distinct ids stays")
}
