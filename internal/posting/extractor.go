package posting

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/llmjson"
	"github.com/spigell/gigmatch/internal/utils"
)

//go:embed extract.md
var extractTemplate string

//go:embed merge.md
var mergeTemplate string

const (
	extractSystem = "You are a JSON-only extractor. Return exactly one JSON object matching the schema. " +
		"Do not add explanations, markdown or code fences. Use an empty string, 0 or [] for unknown fields."
	mergeSystem = "You are a JSON merger. Merge additional user text into the existing JSON post."

	marker              = "title"
	defaultMaxLogLength = 200
)

var ErrEmptyInput = errors.New("empty input")

// Extractor asks a model to structure job posts.
type Extractor struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator ai.Generator, logger *zap.Logger, maxLogLength int) (*Extractor, error) {
	if generator == nil {
		return nil, errors.New("generator is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Extractor{generator: generator, logger: logger, maxLogLen: maxLogLength}, nil
}

// Extract structures text into a job post. The source text is kept in
// RawText, capped at RawTextMaxLen runes.
func (e *Extractor) Extract(ctx context.Context, text string) (*JobPost, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	prompt := strings.ReplaceAll(extractTemplate, "{{INPUT}}", "텍스트 입력: "+text)
	raw, err := e.generate(ctx, extractSystem, prompt)
	if err != nil {
		return nil, fmt.Errorf("extract job post: %w", err)
	}

	post, err := decodePost(raw)
	if err != nil {
		return nil, fmt.Errorf("extract job post: %w", err)
	}
	post.RawText = headRunes(text, RawTextMaxLen)
	return post, nil
}

// Merge asks the model to fold answer into post. When the model fails or
// replies with something unusable, MergeAnswer heuristics are applied instead.
func (e *Extractor) Merge(ctx context.Context, post *JobPost, field, answer string) *JobPost {
	current, err := json.MarshalIndent(post, "", "  ")
	if err != nil {
		return MergeAnswer(post, field, answer)
	}

	prompt := strings.NewReplacer("{{POST}}", string(current), "{{ANSWER}}", answer).Replace(mergeTemplate)
	raw, err := e.generate(ctx, mergeSystem, prompt)
	if err == nil {
		merged, decodeErr := decodePost(raw)
		if decodeErr == nil {
			merged.RawText = appendRaw(post.RawText, answer)
			return merged
		}
		err = decodeErr
	}

	e.logger.Info("model merge failed, using heuristics", zap.String("field", field), zap.Error(err))
	return MergeAnswer(post, field, answer)
}

func (e *Extractor) generate(ctx context.Context, system, prompt string) (string, error) {
	e.logger.Debug("posting generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	e.logger.Debug("posting generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)
	return raw, nil
}

// Models write "15,000" or "3명" for numbers and "월, 수" for lists, so these
// fields are coerced before decoding.
var (
	numericFields = []string{"participants", "hourly_wage"}
	listFields    = []string{"schedule_days", "time_slots", "qualifications"}
)

func decodePost(raw string) (*JobPost, error) {
	obj, err := llmjson.Parse(llmjson.Normalize(raw), marker)
	if err != nil {
		return nil, err
	}

	for _, key := range numericFields {
		value, ok := obj[key]
		if !ok {
			continue
		}
		f := llmjson.Float(value)
		if text, isText := value.(string); isText && math.IsNaN(f) {
			if n, ok := firstNumber(text); ok {
				f = float64(n)
			}
		}
		if math.IsNaN(f) || f < 0 {
			delete(obj, key)
			continue
		}
		obj[key] = int(math.Round(f))
	}
	for _, key := range listFields {
		if value, ok := obj[key]; ok {
			obj[key] = llmjson.Strings(value)
		}
	}

	post := &JobPost{}
	if err := llmjson.DecodeObject(obj, post); err != nil {
		return nil, err
	}
	if post.WageType == "" {
		post.WageType = WageHourly
	}
	if post.Confidence == nil {
		post.Confidence = map[string]float64{}
	}
	return post, nil
}
