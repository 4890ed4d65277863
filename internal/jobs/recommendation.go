package jobs

import (
	"encoding/json"
	"math"
	"os"
	"sort"
)

// Recommendation is a posting annotated for one seeker.
type Recommendation struct {
	Posting

	Similarity        float64  `json:"similarity,omitempty"`
	MatchScore        float64  `json:"match_score"`
	Reason            string   `json:"recommendation_reason"`
	ProfileMatchScore *float64 `json:"profile_match_score,omitempty"`
}

// NewRecommendation copies p without its embedding.
func NewRecommendation(p Posting) Recommendation {
	p.Embedding = nil
	return Recommendation{Posting: p}
}

// Map renders the recommendation as a generic JSON object. Non-finite numbers
// are kept as is; callers sanitize before encoding.
func (r *Recommendation) Map() map[string]any {
	out := map[string]any{
		"job_id":                r.ID,
		"title":                 r.Title,
		"participants":          r.Participants,
		"hourly_wage":           r.HourlyWage,
		"place":                 r.Place,
		"address":               r.Address,
		"work_days":             r.WorkDays,
		"start_time":            r.StartTime,
		"end_time":              r.EndTime,
		"description":           r.Description,
		"match_score":           r.MatchScore,
		"recommendation_reason": r.Reason,
	}
	if r.Client != "" {
		out["client"] = r.Client
	}
	if r.StaminaLevel != "" {
		out["stamina_level"] = r.StaminaLevel
	}
	if r.Similarity != 0 {
		out["similarity"] = r.Similarity
	}
	if r.ProfileMatchScore != nil {
		out["profile_match_score"] = *r.ProfileMatchScore
	}
	return out
}

// Recommendations is an ordered, id-unique list of recommendations.
type Recommendations struct {
	Items []Recommendation `json:"items"`
}

func (r *Recommendations) Len() int {
	return len(r.Items)
}

func (r *Recommendations) FindByID(id string) *Recommendation {
	for i := range r.Items {
		if r.Items[i].ID == id {
			return &r.Items[i]
		}
	}
	return nil
}

func (r *Recommendations) IDs() []string {
	ids := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

// Titles returns up to n titles from the head of the list.
func (r *Recommendations) Titles(n int) []string {
	titles := make([]string, 0, n)
	for _, item := range r.Items {
		if len(titles) == n {
			break
		}
		titles = append(titles, item.Title)
	}
	return titles
}

// Merge appends items whose id is not present yet, keeping the existing order.
// Duplicates inside items are collapsed too. It returns the number added.
func (r *Recommendations) Merge(items []Recommendation) int {
	seen := make(map[string]struct{}, len(r.Items)+len(items))
	for _, item := range r.Items {
		seen[item.ID] = struct{}{}
	}

	added := 0
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		r.Items = append(r.Items, item)
		added++
	}
	return added
}

// Exclude removes items by id preserving order and returns the removed ids.
func (r *Recommendations) Exclude(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	var removed []string
	kept := r.Items[:0]
	for _, item := range r.Items {
		if _, ok := drop[item.ID]; ok {
			removed = append(removed, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	r.Items = kept
	return removed
}

// SortByScore orders by match_score descending. Ties keep their order and
// NaN scores sink to the end.
func (r *Recommendations) SortByScore() {
	SortByScore(r.Items)
}

// Truncate keeps at most k items.
func (r *Recommendations) Truncate(k int) {
	if k >= 0 && len(r.Items) > k {
		r.Items = r.Items[:k]
	}
}

// SortByScore orders items by match_score descending, stable on ties.
func SortByScore(items []Recommendation) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].MatchScore, items[j].MatchScore
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})
}

// DumpToTmpFile writes v as indented JSON into a new temporary file.
func DumpToTmpFile(pattern string, v any) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
