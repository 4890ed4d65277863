package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const queryTaskType = "RETRIEVAL_QUERY"

type contentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// Embedder produces query embeddings through the Gemini embedding API.
type Embedder struct {
	models     contentEmbedder
	model      string
	dimensions int32
	logger     *zap.Logger
}

// NewEmbedder wraps client. A positive dimensions value requests truncated
// output vectors so they match a corpus built with the same setting.
func NewEmbedder(client *genai.Client, model string, dimensions int, logger *zap.Logger) (*Embedder, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultEmbeddingModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Embedder{
		models:     client.Models,
		model:      model,
		dimensions: int32(dimensions),
		logger:     logger,
	}, nil
}

func (e *Embedder) Model() string {
	if e == nil {
		return ""
	}
	return e.model
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("text to embed must not be empty")
	}

	config := &genai.EmbedContentConfig{TaskType: queryTaskType}
	if e.dimensions > 0 {
		dims := e.dimensions
		config.OutputDimensionality = &dims
	}

	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: text}},
	}}

	resp, err := e.models.EmbedContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}

	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil || len(resp.Embeddings[0].Values) == 0 {
		return nil, errors.New("gemini api returned empty embedding")
	}

	e.logger.Debug("gemini embedding created", zap.Int("dimensions", len(resp.Embeddings[0].Values)))
	return resp.Embeddings[0].Values, nil
}
