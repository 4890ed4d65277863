package llmjson

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const cleanThought = `{"thought": "search by region first", "next_action": "region_filtered_search", "reasoning": "profile lists Seoul"}`

func TestParseEquivalence(t *testing.T) {
	t.Parallel()

	want, err := Parse(cleanThought, "thought")
	if err != nil {
		t.Fatalf("clean input: %v", err)
	}

	inputs := map[string]string{
		"fenced":             "```json\n" + cleanThought + "\n```",
		"unterminated fence": "Here you go:\n```json\n" + cleanThought + "\n",
		"interleaved metadata": `{"thought": "search by region first", id:9f3a-11event:delta"next_action": "region_filtered_search", ` +
			`event:delta"reasoning": "profile lists Seoul"}`,
		"stream envelope": "id:abc123event:start\nevent:result " + cleanThought + " event:signal id:abc123",
		"prose around":    "Sure! My answer is " + cleanThought + " hope it helps",
		"stray backticks": "`` " + cleanThought + " ``",
	}

	for name, input := range inputs {
		input := input
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(input, "thought")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("parsed object mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRequiresMarker(t *testing.T) {
	t.Parallel()

	input := "Extracted fields:\n```json\n" + `{"title": "물류 보조", "region": "부산"}` + "\n```"
	obj, err := Parse(input, "title")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj["title"] != "물류 보조" {
		t.Fatalf("unexpected object: %v", obj)
	}

	if _, err := Parse("```json\n{\"other\": 1}\n```", "title"); err == nil {
		t.Fatalf("expected error when marker is absent")
	}

	if _, err := Parse(`{"other": 1}`, ""); err != nil {
		t.Fatalf("empty marker should accept any object: %v", err)
	}
}

func TestParseError(t *testing.T) {
	t.Parallel()

	tests := []string{
		"",
		"I cannot help with that",
		"id:abc-1event:data   not   json   at all",
		`{"thought": "unterminated`,
		`["thought"]`,
	}

	for _, input := range tests {
		_, err := Parse(input, "thought")
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError for %q, got %v", input, err)
		}
		if strings.Contains(parseErr.Snapshot, "event:") || strings.Contains(parseErr.Snapshot, "  ") {
			t.Fatalf("snapshot not cleaned: %q", parseErr.Snapshot)
		}
	}

	_, err := Parse("id:abc-1event:data   not   json", "thought")
	var parseErr *ParseError
	errors.As(err, &parseErr)
	if parseErr.Snapshot != "not json" {
		t.Fatalf("unexpected snapshot: %q", parseErr.Snapshot)
	}
	if !strings.Contains(err.Error(), `"thought"`) {
		t.Fatalf("error should name the marker: %v", err)
	}
}

func TestAttempts(t *testing.T) {
	t.Parallel()

	if got := Fenced("no fences here"); len(got) != 0 {
		t.Fatalf("expected no candidates, got %v", got)
	}
	if got := Braces("} backwards {"); got != nil {
		t.Fatalf("expected nil for reversed braces, got %v", got)
	}
	if got := UnfencedBraces("```json {\"a\":1} ``` trailing ```"); len(got) != 1 || got[0] != `{"a":1}` {
		t.Fatalf("unexpected unfenced candidates: %v", got)
	}
	if got := Stream("plain text"); len(got) != 0 {
		t.Fatalf("expected no stream candidates without metadata, got %v", got)
	}
	if len(Chain) != 5 || Chain[0].Name != "direct" || Chain[4].Name != "unfenced_braces" {
		t.Fatalf("unexpected chain order: %+v", Chain)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	got := Normalize(`{"hourly_wage": 761040/60, "note": "1/2 day", "ratio":3 / 0}`)
	want := `{"hourly_wage": 12684, "note": "1/2 day", "ratio":3 / 0}`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	type record struct {
		Title string   `json:"title"`
		Wage  int      `json:"hourly_wage"`
		Days  []string `json:"schedule_days"`
		Score float64  `json:"score"`
	}

	var out record
	err := Decode("```json\n"+`{"title": "카페", "hourly_wage": "10030", "schedule_days": "월", "score": 0.5}`+"\n```", "title", &out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := record{Title: "카페", Wage: 10030, Days: []string{"월"}, Score: 0.5}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("decoded record mismatch (-want +got):\n%s", diff)
	}

	if err := Decode("nothing", "title", &out); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	if !Bool("YES") || !Bool(1.0) || Bool("nope") || Bool(nil) {
		t.Fatalf("unexpected bool coercion")
	}
	if Float("12,000") != 12000 || Float(3) != 3 {
		t.Fatalf("unexpected float coercion")
	}
	if !math.IsNaN(Float("abc")) || !math.IsNaN(Float(nil)) {
		t.Fatalf("expected NaN for unparseable input")
	}
	if String(map[string]any{"a": 1.0}) != `{"a":1}` || String(nil) != "" || String("  x ") != "x" {
		t.Fatalf("unexpected string coercion")
	}
	if diff := cmp.Diff([]string{"a", "b"}, Strings("a, ,b")); diff != "" {
		t.Fatalf("unexpected strings (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "2"}, Strings([]any{"x", 2.0, ""})); diff != "" {
		t.Fatalf("unexpected strings (-want +got):\n%s", diff)
	}
}
