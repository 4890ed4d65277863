package jobs

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// History is the persisted list of postings already shown to a seeker.
type History struct {
	Items []*HistoryEntry
}

type HistoryEntry struct {
	ID            string
	Title         string
	Intent        string `json:",omitempty"`
	RecommendedAt time.Time
}

// ToHistory converts the list into history entries stamped with now.
func (r *Recommendations) ToHistory(intent string) *History {
	history := &History{}
	now := time.Now().UTC()
	for _, item := range r.Items {
		history.Items = append(history.Items, &HistoryEntry{
			ID:            item.ID,
			Title:         item.Title,
			Intent:        intent,
			RecommendedAt: now,
		})
	}
	return history
}

// LoadHistory reads a history file. A missing or empty file yields an empty history.
func LoadHistory(path string) (*History, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &History{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &History{}, nil
	}

	var history History
	if err := json.NewDecoder(file).Decode(&history); err != nil {
		return nil, err
	}
	return &history, nil
}

// Append adds entries whose id is not recorded yet.
func (h *History) Append(s *History) {
	seen := make(map[string]struct{}, len(h.Items))
	for _, entry := range h.Items {
		seen[entry.ID] = struct{}{}
	}
	for _, entry := range s.Items {
		if _, ok := seen[entry.ID]; ok {
			continue
		}
		seen[entry.ID] = struct{}{}
		h.Items = append(h.Items, entry)
	}
}

func (h *History) IDs() []string {
	ids := make([]string, 0, len(h.Items))
	for _, entry := range h.Items {
		ids = append(ids, entry.ID)
	}
	return ids
}

// Previous returns the most recent n entries as recommendations, newest first.
func (h *History) Previous(n int) []Recommendation {
	out := make([]Recommendation, 0, n)
	for i := len(h.Items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, Recommendation{Posting: Posting{ID: h.Items[i].ID, Title: h.Items[i].Title}})
	}
	return out
}

func (h *History) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
