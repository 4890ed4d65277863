// Package corpus loads posting tables and turns them into an immutable
// snapshot with one embedding of fixed dimension per posting.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/gigmatch/internal/jobs"
)

// DefaultDimension is used when no row carries a parseable embedding.
const DefaultDimension = 1024

// ErrDimensionMismatch reports a vector whose length differs from the corpus dimension.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Table is a row-oriented view of a posting source.
type Table struct {
	Columns []string
	Rows    []map[string]any
}

// Source loads the posting table.
type Source interface {
	Load(ctx context.Context) (*Table, error)
}

// Corpus is the loaded posting snapshot.
type Corpus struct {
	Postings []jobs.Posting
	// Dim is the embedding dimension shared by every posting.
	Dim int
	// EmbeddingColumn is the detected column name or empty.
	EmbeddingColumn string
	// Parsed counts postings whose embedding was read from the source.
	Parsed int
	// Skipped counts rows dropped for a missing or duplicate id or bad fields.
	Skipped int
}

// Load reads src and builds the snapshot.
func Load(ctx context.Context, src Source) (*Corpus, error) {
	if src == nil {
		return nil, errors.New("corpus source is required")
	}
	table, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return Build(table)
}

// Build converts table rows into postings and coerces embeddings.
func Build(table *Table) (*Corpus, error) {
	if table == nil {
		return nil, errors.New("corpus table is nil")
	}

	c := &Corpus{EmbeddingColumn: DetectEmbeddingColumn(table.Columns)}

	vectors := make([][]float32, 0, len(table.Rows))
	seen := make(map[string]struct{}, len(table.Rows))

	for _, row := range table.Rows {
		var raw any
		fields := make(map[string]any, len(row))
		for key, value := range row {
			if c.EmbeddingColumn != "" && strings.EqualFold(key, c.EmbeddingColumn) {
				raw = value
				continue
			}
			fields[strings.ToLower(key)] = value
		}

		posting, err := decodePosting(fields)
		if err != nil || posting.ID == "" {
			c.Skipped++
			continue
		}
		if _, dup := seen[posting.ID]; dup {
			c.Skipped++
			continue
		}
		seen[posting.ID] = struct{}{}

		vec, ok := ParseVector(raw)
		if ok {
			if c.Dim == 0 {
				c.Dim = len(vec)
			}
			if len(vec) != c.Dim {
				vec = nil
			} else {
				c.Parsed++
			}
		}

		c.Postings = append(c.Postings, posting)
		vectors = append(vectors, vec)
	}

	if c.Dim == 0 {
		c.Dim = DefaultDimension
	}

	for i := range c.Postings {
		if vectors[i] == nil {
			vectors[i] = make([]float32, c.Dim)
		}
		c.Postings[i].Embedding = vectors[i]
	}

	return c, nil
}

func decodePosting(fields map[string]any) (jobs.Posting, error) {
	var posting jobs.Posting
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &posting,
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       numericStringHook,
	})
	if err != nil {
		return posting, err
	}
	if err := decoder.Decode(fields); err != nil {
		return posting, err
	}
	posting.ID = strings.TrimSpace(posting.ID)
	return posting, nil
}

// numericStringHook accepts "12,000", "3.0" and blank cells for numeric fields.
func numericStringHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		if from.Kind() == reflect.Float64 && to.Kind() == reflect.String {
			return strconv.FormatFloat(data.(float64), 'f', -1, 64), nil
		}
		return data, nil
	}

	s := strings.ReplaceAll(strings.TrimSpace(data.(string)), ",", "")
	switch to.Kind() {
	case reflect.Int, reflect.Int64, reflect.Int32:
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, nil
		}
		return int64(f), nil
	case reflect.Float64, reflect.Float32:
		if s == "" {
			return 0.0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return f, nil
	}
	return data, nil
}
