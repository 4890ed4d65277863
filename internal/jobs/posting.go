package jobs

import (
	"strconv"
	"strings"
)

// DaysInWeek is the length of the work_days bitmask. Index 0 is Monday.
const DaysInWeek = 7

// Posting is one short-term job listing from the corpus.
type Posting struct {
	ID           string  `json:"job_id"`
	Title        string  `json:"title"`
	Participants int     `json:"participants"`
	HourlyWage   float64 `json:"hourly_wage"`
	Place        string  `json:"place"`
	Address      string  `json:"address"`
	WorkDays     string  `json:"work_days"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Client       string  `json:"client,omitempty"`
	Description  string  `json:"description"`
	StaminaLevel string  `json:"stamina_level,omitempty"`

	Embedding []float32 `json:"-"`
}

// DayMask returns work_days right padded with '0' to a full week.
func (p *Posting) DayMask() string {
	mask := strings.TrimSpace(p.WorkDays)
	if len(mask) >= DaysInWeek {
		return mask[:DaysInWeek]
	}
	return mask + strings.Repeat("0", DaysInWeek-len(mask))
}

// OpenOn reports whether the posting accepts workers on the given weekday.
func (p *Posting) OpenOn(day int) bool {
	if day < 0 || day >= DaysInWeek {
		return false
	}
	return p.DayMask()[day] == '1'
}

// Hours returns the start and end hour parsed from "H:MM[:SS]". An end at or
// before the start is treated as crossing midnight.
func (p *Posting) Hours() (start, end int, ok bool) {
	start, okStart := parseHour(p.StartTime)
	end, okEnd := parseHour(p.EndTime)
	if !okStart || !okEnd {
		return 0, 0, false
	}
	if end <= start {
		end += 24
	}
	return start, end, true
}

// Before orders postings by id, newest first. Numeric ids compare as numbers.
func Before(a, b *Posting) bool {
	ai, errA := strconv.ParseInt(a.ID, 10, 64)
	bi, errB := strconv.ParseInt(b.ID, 10, 64)
	if errA == nil && errB == nil {
		return ai > bi
	}
	if errA == nil {
		return true
	}
	if errB == nil {
		return false
	}
	return a.ID > b.ID
}

func parseHour(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(value, ":")
	hour, err := strconv.Atoi(strings.TrimSpace(head))
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	return hour, true
}
