package jobs

import "testing"

func TestPostingDayMask(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		workDays string
		want     string
	}{
		{name: "full week", workDays: "1010100", want: "1010100"},
		{name: "short mask padded", workDays: "11", want: "1100000"},
		{name: "long mask cut", workDays: "111111111", want: "1111111"},
		{name: "empty", workDays: "", want: "0000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := Posting{WorkDays: tt.workDays}
			if got := p.DayMask(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}

	p := Posting{WorkDays: "0000011"}
	if p.OpenOn(0) || !p.OpenOn(5) || !p.OpenOn(6) || p.OpenOn(7) || p.OpenOn(-1) {
		t.Fatalf("unexpected OpenOn results for %q", p.WorkDays)
	}
}

func TestPostingHours(t *testing.T) {
	t.Parallel()

	tests := []struct {
		start, end string
		wantStart  int
		wantEnd    int
		ok         bool
	}{
		{start: "9:00:00", end: "13:00:00", wantStart: 9, wantEnd: 13, ok: true},
		{start: "22:00", end: "6:00", wantStart: 22, wantEnd: 30, ok: true},
		{start: "", end: "13:00", ok: false},
		{start: "noon", end: "13:00", ok: false},
	}

	for _, tt := range tests {
		p := Posting{StartTime: tt.start, EndTime: tt.end}
		start, end, ok := p.Hours()
		if ok != tt.ok || start != tt.wantStart || end != tt.wantEnd {
			t.Fatalf("%s-%s: got (%d, %d, %v)", tt.start, tt.end, start, end, ok)
		}
	}
}

func TestBefore(t *testing.T) {
	t.Parallel()

	if !Before(&Posting{ID: "10"}, &Posting{ID: "9"}) {
		t.Fatalf("expected numeric comparison")
	}
	if !Before(&Posting{ID: "3"}, &Posting{ID: "abc"}) {
		t.Fatalf("expected numeric ids to come first")
	}
	if !Before(&Posting{ID: "b"}, &Posting{ID: "a"}) {
		t.Fatalf("expected descending string comparison")
	}
}
