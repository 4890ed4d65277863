package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEmbeddingColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		columns []string
		want    string
	}{
		{name: "exact name", columns: []string{"job_id", "embedding"}, want: "embedding"},
		{name: "priority order", columns: []string{"vector", "Embeddings"}, want: "Embeddings"},
		{name: "contains fallback", columns: []string{"job_id", "title_embedding_v2"}, want: "title_embedding_v2"},
		{name: "none", columns: []string{"job_id", "title"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DetectEmbeddingColumn(tt.columns))
		})
	}
}

func TestParseVector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input any
		want  []float32
		ok    bool
	}{
		{name: "bracketed", input: "[0.1, -0.2, 3e-1]", want: []float32{0.1, -0.2, 0.3}, ok: true},
		{name: "comma", input: "1,2", want: []float32{1, 2}, ok: true},
		{name: "space", input: " 1  2\t3 ", want: []float32{1, 2, 3}, ok: true},
		{name: "json list", input: []any{1.0, 2.0}, want: []float32{1, 2}, ok: true},
		{name: "float64 slice", input: []float64{0.5}, want: []float32{0.5}, ok: true},
		{name: "bytes", input: []byte("[4]"), want: []float32{4}, ok: true},
		{name: "empty brackets", input: "[]"},
		{name: "garbage", input: "[a, b]"},
		{name: "nan", input: "[NaN, 1]"},
		{name: "mixed list", input: []any{1.0, "x"}},
		{name: "nil", input: nil},
		{name: "number", input: 3.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseVector(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDeltaSlice(t, tt.want, got, 1e-6)
			}
		})
	}
}
