package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistoryRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.json")

	history, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("missing file must load as empty history: %v", err)
	}
	if len(history.Items) != 0 {
		t.Fatalf("expected empty history")
	}

	first := &Recommendations{Items: []Recommendation{rec("1", 0), rec("2", 0)}}
	history.Append(first.ToHistory("주말 알바"))
	second := &Recommendations{Items: []Recommendation{rec("2", 0), rec("3", 0)}}
	history.Append(second.ToHistory(""))

	if err := history.ToFile(path); err != nil {
		t.Fatalf("write history: %v", err)
	}

	loaded, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "2", "3"}, loaded.IDs()); diff != "" {
		t.Fatalf("unexpected ids (-want +got):\n%s", diff)
	}
	if loaded.Items[0].Intent != "주말 알바" {
		t.Fatalf("intent not persisted: %+v", loaded.Items[0])
	}

	previous := loaded.Previous(2)
	if len(previous) != 2 || previous[0].ID != "3" || previous[1].Title != "job 2" {
		t.Fatalf("unexpected previous recommendations: %+v", previous)
	}

	// A shorter rewrite must not leave trailing bytes from the longer file.
	if err := (&History{}).ToFile(path); err != nil {
		t.Fatalf("rewrite history: %v", err)
	}
	if _, err := LoadHistory(path); err != nil {
		t.Fatalf("load rewritten history: %v", err)
	}
}

func TestLoadHistoryEmptyFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	history, err := LoadHistory(path)
	if err != nil || len(history.Items) != 0 {
		t.Fatalf("expected empty history, got %+v, %v", history, err)
	}
}
