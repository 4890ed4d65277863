package toolkit

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/matching"
	"github.com/spigell/gigmatch/internal/search"
)

func (t *Toolkit) similaritySearch(ctx context.Context, profile *jobs.Profile, p Params) (Result, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	if text := profile.Text(); text != "" {
		query += " | " + text
	}

	topK := p.topK()
	results := t.searcher.Search(ctx, query, topK)
	if len(results) > 0 {
		for i := range results {
			results[i].Reason = matching.Reason(&results[i].Posting, profile)
		}
		return Result{
			Success: true,
			Data:    results,
			Message: fmt.Sprintf("found %d postings by similarity", len(results)),
		}, nil
	}

	t.logger.Info("similarity search empty, falling back", zap.String("fallback", RegionFilteredSearch.String()))
	if res, err := t.regionFilteredSearch(ctx, profile, Params{TopK: topK}); err == nil && len(res.Data) > 0 {
		res.Message = "similarity search empty; " + res.Message
		return res, nil
	}

	t.logger.Info("region search empty, falling back", zap.String("fallback", LatestJobs.String()))
	res, err := t.latestJobs(ctx, profile, Params{TopK: topK})
	if err != nil {
		return Result{}, err
	}
	res.Message = "similarity search empty; " + res.Message
	return res, nil
}

func (t *Toolkit) latestJobs(_ context.Context, profile *jobs.Profile, p Params) (Result, error) {
	postings := t.searcher.Postings()
	if len(postings) == 0 {
		return Result{}, ErrEmptyCorpus
	}

	order := make([]*jobs.Posting, len(postings))
	for i := range postings {
		order[i] = &postings[i]
	}
	sort.SliceStable(order, func(a, b int) bool {
		return jobs.Before(order[a], order[b])
	})

	topK := min(p.topK(), len(order))
	data := make([]jobs.Recommendation, 0, topK)
	for _, posting := range order[:topK] {
		data = append(data, annotate(*posting, profile))
	}

	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("found %d latest postings", len(data)),
	}, nil
}

func (t *Toolkit) hybridSearch(ctx context.Context, profile *jobs.Profile, p Params) (Result, error) {
	topK := p.topK()
	wide := p
	wide.TopK = topK * 2

	found, err := t.similaritySearch(ctx, profile, wide)
	if err != nil {
		return Result{}, err
	}

	data := found.Data
	filtered, err := t.profileFilter(ctx, profile, Params{Candidates: found.Data, MinScore: HybridMinScore})
	if err == nil && len(filtered.Data) > 0 {
		data = filtered.Data
	}

	jobs.SortByScore(data)
	if len(data) > topK {
		data = data[:topK]
	}

	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("hybrid search kept %d of %d postings", len(data), len(found.Data)),
	}, nil
}

// annotate copies posting into a recommendation scored for profile.
func annotate(posting jobs.Posting, profile *jobs.Profile) jobs.Recommendation {
	r := jobs.NewRecommendation(posting)
	score, reason := matching.Score(&r.Posting, profile)
	r.MatchScore = search.Percent(score)
	r.Reason = reason
	return r
}
