// Package llmjson recovers JSON objects from noisy language model output.
//
// Parse runs a fixed chain of pure attempts and accepts the first candidate
// that decodes into an object containing the requested marker field.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spigell/gigmatch/internal/utils"
)

const snapshotLimit = 200

// Object is a decoded JSON object.
type Object = map[string]any

// ParseError is returned when no attempt produced a usable object.
type ParseError struct {
	Marker string
	// Snapshot is the input with transport metadata removed and whitespace collapsed.
	Snapshot string
}

func (e *ParseError) Error() string {
	if e.Marker == "" {
		return fmt.Sprintf("no JSON object found in model output: %q", utils.TruncateForLog(e.Snapshot, snapshotLimit))
	}
	return fmt.Sprintf("no JSON object with field %q found in model output: %q", e.Marker, utils.TruncateForLog(e.Snapshot, snapshotLimit))
}

// Parse extracts the first JSON object from text that carries marker as a
// top-level key. An empty marker accepts any object.
func Parse(text, marker string) (Object, error) {
	for _, attempt := range Chain {
		for _, candidate := range attempt.Candidates(text) {
			if obj, ok := decodeObject(candidate, marker); ok {
				return obj, nil
			}
		}
	}

	return nil, &ParseError{Marker: marker, Snapshot: Clean(text)}
}

// Clean strips streaming metadata tokens and collapses whitespace.
func Clean(text string) string {
	return utils.CollapseSpaces(stripMetadata(text))
}

func decodeObject(candidate, marker string) (Object, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || candidate[0] != '{' {
		return nil, false
	}

	var obj Object
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}

	if marker != "" {
		if _, ok := obj[marker]; !ok {
			return nil, false
		}
	}

	return obj, true
}
