// Package posting turns free-form employer input into a structured job post
// and works out which fields still need a follow-up question.
package posting

import (
	"strings"
	"unicode/utf8"
)

// RawTextMaxLen caps the stored source text in runes.
const RawTextMaxLen = 2000

const WageHourly = "hourly"

// JobPost is a job post extracted from text.
type JobPost struct {
	Title          string             `json:"title"`
	Category       string             `json:"category"`
	Region         string             `json:"region"`
	Address        string             `json:"address"`
	Client         string             `json:"client,omitempty"`
	ScheduleDays   []string           `json:"schedule_days"`
	TimeSlots      []string           `json:"time_slots"`
	StartTime      string             `json:"start_time"`
	EndTime        string             `json:"end_time"`
	Frequency      string             `json:"frequency"`
	Participants   int                `json:"participants"`
	WageType       string             `json:"wage_type"`
	HourlyWage     int                `json:"hourly_wage"`
	WageAmount     string             `json:"wage_amount"`
	Qualifications []string           `json:"qualifications"`
	Description    string             `json:"description"`
	RawText        string             `json:"raw_text"`
	Confidence     map[string]float64 `json:"confidence"`
}

func (p *JobPost) setConfidence(field string, value float64) {
	if p.Confidence == nil {
		p.Confidence = make(map[string]float64)
	}
	p.Confidence[field] = value
}

// headRunes keeps the first n runes of s.
func headRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// appendRaw appends addition to existing and keeps the last RawTextMaxLen runes.
func appendRaw(existing, addition string) string {
	base := strings.TrimSpace(existing)
	extra := strings.TrimSpace(addition)

	var combined string
	switch {
	case base != "" && extra != "":
		combined = base + "\n" + extra
	case extra != "":
		combined = extra
	default:
		combined = base
	}

	runes := []rune(combined)
	if len(runes) > RawTextMaxLen {
		return string(runes[len(runes)-RawTextMaxLen:])
	}
	return combined
}
