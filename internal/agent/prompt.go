package agent

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/toolkit"
)

//go:embed prompt.md
var promptTemplate string

const previousTitles = 3

func systemInstruction() string {
	names := make([]string, 0, len(toolkit.Strategies()))
	for _, s := range toolkit.Strategies() {
		names = append(names, s.String())
	}
	return "You choose recommendation strategies for job seekers. Available strategies: " +
		strings.Join(names, ", ") + ". Answer with JSON only."
}

type promptInput struct {
	profile  *jobs.Profile
	intent   string
	current  int
	reason   *Reason
	previous []jobs.Recommendation
}

func buildPrompt(in promptInput) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Profile:\n{{PROFILE}}\nRequest: {{INTENT}}\n{{STATUS}}{{HISTORY}}{{PREVIOUS}}\n\n{{STRATEGIES}}\n\nJSON Response:"
	}

	intent := strings.TrimSpace(in.intent)
	shownIntent := intent
	if shownIntent == "" {
		shownIntent = "none"
	}

	status := "no recommendations yet"
	if in.current > 0 {
		status = fmt.Sprintf("current recommendations: %d", in.current)
	}

	var history string
	if in.reason != nil && len(in.reason.Observations) > 0 {
		history = fmt.Sprintf("\n- previous attempts: %d/%d succeeded", in.reason.succeeded(), len(in.reason.Observations))
	}

	var previous string
	if len(in.previous) > 0 {
		prev := jobs.Recommendations{Items: in.previous}
		previous = "\n- previous recommendations the seeker did not like: " + strings.Join(prev.Titles(previousTitles), ", ")
		if intent != "" {
			previous += fmt.Sprintf("\n- seeker feedback: '%s'", intent)
		}
	}

	var strategies strings.Builder
	for i, s := range toolkit.Strategies() {
		if i > 0 {
			strategies.WriteString("\n")
		}
		fmt.Fprintf(&strategies, "%d. %s: %s", i+1, s, s.Description())
	}

	replacer := strings.NewReplacer(
		"{{PROFILE}}", in.profile.Summary(),
		"{{INTENT}}", shownIntent,
		"{{STATUS}}", status,
		"{{HISTORY}}", history,
		"{{PREVIOUS}}", previous,
		"{{STRATEGIES}}", strategies.String(),
	)
	return replacer.Replace(template)
}
