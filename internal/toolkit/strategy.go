package toolkit

import (
	"fmt"
	"strings"
)

// Strategy names one toolkit operation.
type Strategy int

const (
	SimilaritySearch Strategy = iota
	LatestJobs
	ProfileFilter
	HybridSearch
	RegionFilteredSearch
	ExperienceFilteredSearch
	WageFilteredSearch
	ValidateRecommendations
)

// DefaultStrategy is chosen when text names no known strategy.
const DefaultStrategy = SimilaritySearch

var strategyNames = [...]string{
	SimilaritySearch:         "similarity_search",
	LatestJobs:               "latest_jobs",
	ProfileFilter:            "profile_filter",
	HybridSearch:             "hybrid_search",
	RegionFilteredSearch:     "region_filtered_search",
	ExperienceFilteredSearch: "experience_filtered_search",
	WageFilteredSearch:       "wage_filtered_search",
	ValidateRecommendations:  "validate_recommendations",
}

var strategyDescriptions = [...]string{
	SimilaritySearch:         "semantic search over postings using the request and profile",
	LatestJobs:               "most recently registered postings",
	ProfileFilter:            "keep current recommendations that fit the profile well",
	HybridSearch:             "semantic search followed by profile filtering",
	RegionFilteredSearch:     "postings located in the profile regions",
	ExperienceFilteredSearch: "postings whose title mentions the profile experience",
	WageFilteredSearch:       "postings within an hourly wage range",
	ValidateRecommendations:  "check count and average score of current recommendations",
}

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategyNames))
	for i := range strategyNames {
		out[i] = Strategy(i)
	}
	return out
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return fmt.Sprintf("strategy(%d)", int(s))
	}
	return strategyNames[s]
}

// Description is a one-line summary used in prompts.
func (s Strategy) Description() string {
	if s < 0 || int(s) >= len(strategyDescriptions) {
		return ""
	}
	return strategyDescriptions[s]
}

// IsSearch reports strategies that always attach a recommendation reason.
func (s Strategy) IsSearch() bool {
	switch s {
	case SimilaritySearch, RegionFilteredSearch, ExperienceFilteredSearch:
		return true
	default:
		return false
	}
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, ok := Lookup(string(text))
	if !ok {
		return fmt.Errorf("unknown strategy %q", text)
	}
	*s = parsed
	return nil
}

// Lookup resolves an exact strategy name.
func Lookup(name string) (Strategy, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range strategyNames {
		if n == name {
			return Strategy(i), true
		}
	}
	return 0, false
}

// Parse picks the first strategy whose name appears in text, case-insensitive.
// Text naming none falls back to DefaultStrategy.
func Parse(text string) Strategy {
	lower := strings.ToLower(text)
	for i, name := range strategyNames {
		if strings.Contains(lower, name) {
			return Strategy(i)
		}
	}
	return DefaultStrategy
}
