package jobs

import (
	"math"
	"strings"

	"github.com/spigell/gigmatch/internal/llmjson"
)

const (
	// CapabilityCanLift is the declared lift capacity in kilograms.
	CapabilityCanLift = "can_lift"
	// CapabilityPreferredWage is the preferred hourly wage.
	CapabilityPreferredWage = "preferred_wage"
)

// Profile describes what a job seeker is looking for.
type Profile struct {
	Nickname     string         `json:"nickname,omitempty" yaml:"nickname"`
	Regions      []string       `json:"regions" yaml:"regions"`
	Days         []string       `json:"days" yaml:"days"`
	TimeSlots    []string       `json:"time_slots" yaml:"time_slots"`
	Experiences  []string       `json:"experiences" yaml:"experiences"`
	Capabilities map[string]any `json:"capabilities,omitempty" yaml:"capabilities"`
}

// CanLift returns the declared lift capacity. ok is false when it is not declared.
func (p *Profile) CanLift() (float64, bool) {
	return p.capability(CapabilityCanLift)
}

// PreferredWage returns the declared preferred hourly wage or 0.
func (p *Profile) PreferredWage() float64 {
	wage, ok := p.capability(CapabilityPreferredWage)
	if !ok || wage < 0 {
		return 0
	}
	return wage
}

func (p *Profile) capability(name string) (float64, bool) {
	if p == nil || p.Capabilities == nil {
		return 0, false
	}
	raw, ok := p.Capabilities[name]
	if !ok {
		return 0, false
	}
	value := llmjson.Float(raw)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// Text renders the profile as labelled sections used to enrich search
// queries. Empty sections are omitted.
func (p *Profile) Text() string {
	if p == nil {
		return ""
	}
	sections := []struct {
		label  string
		values []string
	}{
		{"지역", p.Regions},
		{"요일", p.Days},
		{"시간대", p.TimeSlots},
		{"경험", p.Experiences},
	}

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if joined := joinNonEmpty(s.values, ", "); joined != "" {
			parts = append(parts, s.label+": "+joined)
		}
	}
	return strings.Join(parts, " | ")
}

// Summary renders the profile for prompts.
func (p *Profile) Summary() string {
	if p == nil {
		return "no profile"
	}
	field := func(values []string) string {
		if joined := joinNonEmpty(values, ", "); joined != "" {
			return joined
		}
		return "any"
	}
	var b strings.Builder
	if p.Nickname != "" {
		b.WriteString("nickname: " + p.Nickname + "\n")
	}
	b.WriteString("regions: " + field(p.Regions) + "\n")
	b.WriteString("days: " + field(p.Days) + "\n")
	b.WriteString("time slots: " + field(p.TimeSlots) + "\n")
	b.WriteString("experiences: " + field(p.Experiences))
	if lift, ok := p.CanLift(); ok {
		b.WriteString("\ncan lift: " + llmjson.String(lift) + "kg")
	}
	if wage := p.PreferredWage(); wage > 0 {
		b.WriteString("\npreferred wage: " + llmjson.String(wage))
	}
	return b.String()
}

func joinNonEmpty(values []string, sep string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}
