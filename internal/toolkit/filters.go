package toolkit

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/matching"
	"github.com/spigell/gigmatch/internal/search"
)

func (t *Toolkit) profileFilter(_ context.Context, profile *jobs.Profile, p Params) (Result, error) {
	if len(p.Candidates) == 0 {
		return Result{}, fmt.Errorf("profile filter: %w", ErrNoCandidates)
	}
	threshold := p.MinScore
	if threshold <= 0 {
		threshold = DefaultProfileMinScore
	}

	data := make([]jobs.Recommendation, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		score, reason := matching.Score(&c.Posting, profile)
		if score < threshold {
			continue
		}
		pms := search.Percent(score)
		c.ProfileMatchScore = &pms
		c.Reason = reason
		data = append(data, c)
	}

	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("%d of %d postings fit the profile (min %.2f)", len(data), len(p.Candidates), threshold),
	}, nil
}

func (t *Toolkit) regionFilteredSearch(_ context.Context, profile *jobs.Profile, p Params) (Result, error) {
	regions := p.Regions
	if len(regions) == 0 {
		regions = profile.Regions
	}
	if len(regions) == 0 {
		return Result{}, ErrNoRegions
	}

	data := t.collect(profile, p.topK(), func(posting *jobs.Posting) bool {
		return inRegion(posting, regions)
	})
	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("found %d postings in %s", len(data), strings.Join(regions, ", ")),
	}, nil
}

func (t *Toolkit) experienceFilteredSearch(_ context.Context, profile *jobs.Profile, p Params) (Result, error) {
	keywords := p.Experiences
	if len(keywords) == 0 {
		keywords = profile.Experiences
	}
	if len(keywords) == 0 {
		return Result{}, ErrNoExperiences
	}

	data := t.collect(profile, p.topK(), func(posting *jobs.Posting) bool {
		return titleHas(posting, keywords)
	})
	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("found %d postings matching experience", len(data)),
	}, nil
}

func (t *Toolkit) wageFilteredSearch(_ context.Context, profile *jobs.Profile, p Params) (Result, error) {
	low, high := p.MinWage, p.MaxWage
	if high <= 0 {
		high = math.Inf(1)
	}
	if low > high {
		return Result{}, fmt.Errorf("invalid wage range %.0f-%.0f", low, high)
	}
	query := strings.ToLower(strings.TrimSpace(p.Query))

	data := t.collect(profile, p.topK(), func(posting *jobs.Posting) bool {
		wage := posting.HourlyWage
		if math.IsNaN(wage) || wage < low || wage > high {
			return false
		}
		if query == "" {
			return true
		}
		return strings.Contains(strings.ToLower(posting.Title), query) ||
			strings.Contains(strings.ToLower(posting.Description), query)
	})
	return Result{
		Success: true,
		Data:    data,
		Message: fmt.Sprintf("found %d postings paying %.0f-%.0f", len(data), low, high),
	}, nil
}

// collect scans the corpus in order and keeps up to topK postings accepted by keep.
func (t *Toolkit) collect(profile *jobs.Profile, topK int, keep func(*jobs.Posting) bool) []jobs.Recommendation {
	postings := t.searcher.Postings()
	data := make([]jobs.Recommendation, 0, min(topK, len(postings)))
	for i := range postings {
		if len(data) == topK {
			break
		}
		if keep(&postings[i]) {
			data = append(data, annotate(postings[i], profile))
		}
	}
	return data
}

// inRegion is stricter on place than the scorer: the place must equal a
// region while the address only has to contain one.
func inRegion(posting *jobs.Posting, regions []string) bool {
	address := strings.ToLower(posting.Address)
	for _, region := range regions {
		region = strings.TrimSpace(region)
		if region == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(posting.Place), region) || strings.Contains(address, strings.ToLower(region)) {
			return true
		}
	}
	return false
}

func titleHas(posting *jobs.Posting, keywords []string) bool {
	title := strings.ToLower(posting.Title)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
