// Package matching scores a posting against a seeker profile with fixed
// heuristic weights.
package matching

import (
	"math"
	"strings"

	"github.com/spigell/gigmatch/internal/jobs"
)

const (
	Baseline       = 0.5
	categoryWeight = 0.15
	bonusWeight    = 0.1

	// MinLift is the lift capacity in kg required for heavy work.
	MinLift = 10.0
	// WageRatio is the share of the preferred wage a posting must reach.
	WageRatio = 0.8
)

// Reason labels.
const (
	ReasonRegion     = "region match"
	ReasonExperience = "experience match"
	ReasonDay        = "day match"
	ReasonTimeSlot   = "time slot match"
	ReasonDefault    = "similarity-based"
)

// HeavyKeywords mark postings that need physical strength.
var HeavyKeywords = []string{"무거운", "중량", "운반", "적재", "하역", "heavy", "lifting"}

// Score returns a value in [0,1] and the matched categories joined by ", ".
// Factors add up from the baseline and the total is clamped, not normalized.
func Score(p *jobs.Posting, profile *jobs.Profile) (float64, string) {
	score := Baseline
	var reasons []string

	if profile == nil {
		return score, ReasonDefault
	}

	if RegionMatch(p, profile.Regions) {
		score += categoryWeight
		reasons = append(reasons, ReasonRegion)
	}
	if ExperienceMatch(p, profile.Experiences) {
		score += categoryWeight
		reasons = append(reasons, ReasonExperience)
	}
	if DayMatch(p, profile.Days) {
		score += categoryWeight
		reasons = append(reasons, ReasonDay)
	}
	if TimeSlotMatch(p, profile.TimeSlots) {
		score += categoryWeight
		reasons = append(reasons, ReasonTimeSlot)
	}
	if CapabilityMatch(p, profile) {
		score += bonusWeight
	}
	if WageMatch(p, profile.PreferredWage()) {
		score += bonusWeight
	}

	score = math.Min(score, 1.0)

	if len(reasons) == 0 {
		return score, ReasonDefault
	}
	return score, strings.Join(reasons, ", ")
}

// Reason returns only the reason string of Score.
func Reason(p *jobs.Posting, profile *jobs.Profile) string {
	_, reason := Score(p, profile)
	return reason
}

// RegionMatch reports whether any region is a substring of the address or place.
func RegionMatch(p *jobs.Posting, regions []string) bool {
	address := strings.ToLower(p.Address)
	place := strings.ToLower(p.Place)
	for _, region := range regions {
		region = strings.ToLower(strings.TrimSpace(region))
		if region == "" {
			continue
		}
		if strings.Contains(address, region) || strings.Contains(place, region) {
			return true
		}
	}
	return false
}

// ExperienceMatch reports whether any keyword is found in the title or description.
func ExperienceMatch(p *jobs.Posting, experiences []string) bool {
	text := strings.ToLower(p.Title + " " + p.Description)
	for _, exp := range experiences {
		exp = strings.ToLower(strings.TrimSpace(exp))
		if exp != "" && strings.Contains(text, exp) {
			return true
		}
	}
	return false
}

// DayMatch reports whether the posting is open on any requested weekday.
func DayMatch(p *jobs.Posting, days []string) bool {
	for _, day := range days {
		if idx, ok := DayIndex(day); ok && p.OpenOn(idx) {
			return true
		}
	}
	return false
}

// CapabilityMatch requires declared capabilities. It then passes unless the
// description calls for heavy work the seeker did not declare they can do.
func CapabilityMatch(p *jobs.Posting, profile *jobs.Profile) bool {
	if profile == nil || profile.Capabilities == nil {
		return false
	}
	if !containsAny(p.Description, HeavyKeywords) {
		return true
	}
	lift, ok := profile.CanLift()
	return ok && lift >= MinLift
}

// WageMatch reports whether the wage reaches WageRatio of preferred.
func WageMatch(p *jobs.Posting, preferred float64) bool {
	if preferred <= 0 || math.IsNaN(p.HourlyWage) {
		return false
	}
	return p.HourlyWage >= WageRatio*preferred
}

func containsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
