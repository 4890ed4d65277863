package agent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/toolkit"
)

const (
	candidateTopK = 50
	defaultQuery  = "일자리 추천"

	filterMinScore   = 0.4
	validateMinCount = 3
	validateMinAvg   = 0.5
	maxWageCeiling   = 99999
)

var wagePattern = regexp.MustCompile(`\d+(?:,\d+)*`)

// buildParams maps a strategy to its fixed arguments.
func buildParams(s toolkit.Strategy, profile *jobs.Profile, intent string, acc []jobs.Recommendation) toolkit.Params {
	switch s {
	case toolkit.SimilaritySearch, toolkit.HybridSearch:
		return toolkit.Params{Query: searchQuery(profile, intent), TopK: candidateTopK}
	case toolkit.RegionFilteredSearch:
		return toolkit.Params{Regions: profile.Regions, TopK: candidateTopK}
	case toolkit.ExperienceFilteredSearch:
		return toolkit.Params{Experiences: profile.Experiences, TopK: candidateTopK}
	case toolkit.WageFilteredSearch:
		return toolkit.Params{MinWage: wageFromIntent(intent), MaxWage: maxWageCeiling, TopK: candidateTopK}
	case toolkit.ProfileFilter:
		return toolkit.Params{Candidates: clone(acc), MinScore: filterMinScore}
	case toolkit.ValidateRecommendations:
		return toolkit.Params{Candidates: clone(acc), MinCount: validateMinCount, MinAvgScore: validateMinAvg}
	default:
		return toolkit.Params{TopK: candidateTopK}
	}
}

// searchQuery is the intent, else the profile experiences and regions.
func searchQuery(profile *jobs.Profile, intent string) string {
	if intent = strings.TrimSpace(intent); intent != "" {
		return intent
	}
	parts := make([]string, 0, len(profile.Experiences)+len(profile.Regions))
	for _, v := range append(append([]string{}, profile.Experiences...), profile.Regions...) {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return defaultQuery
	}
	return strings.Join(parts, " ")
}

// wageFromIntent returns the first integer in intent, commas allowed.
func wageFromIntent(intent string) float64 {
	match := wagePattern.FindString(intent)
	if match == "" {
		return 0
	}
	wage, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return 0
	}
	return wage
}

func clone(items []jobs.Recommendation) []jobs.Recommendation {
	return append([]jobs.Recommendation(nil), items...)
}
