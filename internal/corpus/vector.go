package corpus

import (
	"math"
	"strconv"
	"strings"
)

// EmbeddingCandidates are accepted embedding column names in priority order.
var EmbeddingCandidates = []string{"embedding", "embeddings", "vector", "embedding_vector"}

// DetectEmbeddingColumn picks the embedding column from a header. Exact
// candidate names win over any other column containing "embedding".
func DetectEmbeddingColumn(columns []string) string {
	for _, candidate := range EmbeddingCandidates {
		for _, column := range columns {
			if strings.EqualFold(strings.TrimSpace(column), candidate) {
				return column
			}
		}
	}
	for _, column := range columns {
		if strings.Contains(strings.ToLower(column), "embedding") {
			return column
		}
	}
	return ""
}

// ParseVector reads a serialized embedding. It accepts numeric slices and
// strings such as "[0.1, 0.2]", "0.1,0.2" or "0.1 0.2".
func ParseVector(v any) ([]float32, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case []float32:
		if len(val) == 0 {
			return nil, false
		}
		return val, true
	case []float64:
		out := make([]float32, len(val))
		for i, f := range val {
			out[i] = float32(f)
		}
		return finite(out)
	case []any:
		out := make([]float32, 0, len(val))
		for _, item := range val {
			f, ok := item.(float64)
			if !ok {
				return nil, false
			}
			out = append(out, float32(f))
		}
		return finite(out)
	case []byte:
		return parseVectorString(string(val))
	case string:
		return parseVectorString(val)
	default:
		return nil, false
	}
}

func parseVectorString(s string) ([]float32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 {
		return nil, false
	}

	out := make([]float32, 0, len(fields))
	for _, field := range fields {
		f, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, false
		}
		out = append(out, float32(f))
	}
	return finite(out)
}

func finite(v []float32) ([]float32, bool) {
	if len(v) == 0 {
		return nil, false
	}
	for _, f := range v {
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			return nil, false
		}
	}
	return v, true
}
