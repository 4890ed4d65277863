package llmjson

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Bool interprets common truthy encodings used by models.
func Bool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes" || lower == "y" || lower == "1"
	case float64:
		return val != 0
	case int:
		return val != 0
	default:
		return false
	}
}

// Float returns NaN when v cannot be read as a number.
func Float(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.ReplaceAll(strings.TrimSpace(val), ",", "")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// String renders v as trimmed text; non-string values are JSON encoded.
func String(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// Strings accepts a list or a comma separated string and drops empty items.
func Strings(v any) []string {
	var raw []string
	switch val := v.(type) {
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			raw = append(raw, String(item))
		}
	case string:
		raw = strings.Split(val, ",")
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
