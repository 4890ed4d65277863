package llmjson

import (
	"regexp"
	"strings"
)

// Attempt is one recovery strategy. Candidates returns substrings that may
// hold a JSON object, in preference order.
type Attempt struct {
	Name       string
	Candidates func(text string) []string
}

// Chain is the ordered list of attempts used by Parse.
var Chain = []Attempt{
	{Name: "direct", Candidates: Direct},
	{Name: "fenced", Candidates: Fenced},
	{Name: "stream", Candidates: Stream},
	{Name: "braces", Candidates: Braces},
	{Name: "unfenced_braces", Candidates: UnfencedBraces},
}

var (
	fencedClosed   = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*?\\})\\s*```")
	fencedUnclosed = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(\\{.*)")
	fenceMarker    = regexp.MustCompile("```(?:json|JSON)?")

	streamResult = regexp.MustCompile(`(?s)event:result\s*(\{.*?\})\s*(?:event:signal|$)`)

	// Order matters: the combined token must go before its parts.
	metadataTokens = []*regexp.Regexp{
		regexp.MustCompile(`id:[0-9a-fA-F-]+event:\w+`),
		regexp.MustCompile(`event:\w+`),
		regexp.MustCompile(`id:[0-9a-fA-F-]+`),
	}
)

// Direct returns the trimmed text.
func Direct(text string) []string {
	return []string{strings.TrimSpace(text)}
}

// Fenced returns the body of a ```json block. The closing fence is optional.
func Fenced(text string) []string {
	var out []string
	for _, m := range fencedClosed.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	if m := fencedUnclosed.FindStringSubmatch(text); m != nil {
		body := strings.TrimSpace(m[1])
		out = append(out, body)
		if idx := strings.LastIndex(body, "}"); idx != -1 {
			out = append(out, body[:idx+1])
		}
	}
	return out
}

// Stream handles text reassembled from a server-sent event transport, where
// id/event tokens may be interleaved with the payload.
func Stream(text string) []string {
	var out []string
	for _, m := range streamResult.FindAllStringSubmatch(text, -1) {
		out = append(out, stripMetadata(m[1]))
	}

	cleaned := stripMetadata(text)
	if cleaned != text {
		out = append(out, strings.TrimSpace(cleaned))
		out = append(out, Braces(cleaned)...)
	}
	return out
}

// Braces returns the substring from the first '{' to the last '}'.
func Braces(text string) []string {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil
	}
	return []string{text[start : end+1]}
}

// UnfencedBraces is Braces applied after removing every fence marker.
func UnfencedBraces(text string) []string {
	text = fenceMarker.ReplaceAllString(text, "")
	return Braces(strings.ReplaceAll(text, "`", ""))
}

func stripMetadata(text string) string {
	for _, re := range metadataTokens {
		text = re.ReplaceAllString(text, "")
	}
	return text
}
