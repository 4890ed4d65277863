package toolkit

import (
	"context"
	"fmt"
	"math"

	"github.com/spigell/gigmatch/internal/jobs"
)

// missingScore stands in for candidates without a usable match score.
const missingScore = 50.0

func (t *Toolkit) validateRecommendations(_ context.Context, _ *jobs.Profile, p Params) (Result, error) {
	if len(p.Candidates) == 0 {
		return Result{}, fmt.Errorf("validate: %w", ErrNoCandidates)
	}
	minCount := p.MinCount
	if minCount <= 0 {
		minCount = DefaultMinCount
	}
	minAvg := p.MinAvgScore
	if minAvg <= 0 {
		minAvg = DefaultMinAvgScore
	}

	var sum float64
	for _, c := range p.Candidates {
		score := c.MatchScore
		if math.IsNaN(score) || math.IsInf(score, 0) {
			score = missingScore
		}
		sum += score
	}
	avg := math.Round(sum/float64(len(p.Candidates))) / 100

	v := &Validation{
		TotalCount: len(p.Candidates),
		CountOK:    len(p.Candidates) >= minCount,
		AvgScore:   avg,
		ScoreOK:    avg >= minAvg,
	}
	v.IsValid = v.CountOK && v.ScoreOK

	return Result{
		Success:    true,
		Validation: v,
		Message:    fmt.Sprintf("%d recommendations, average score %.2f, valid=%t", v.TotalCount, v.AvgScore, v.IsValid),
	}, nil
}
