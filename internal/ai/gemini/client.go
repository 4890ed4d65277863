package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	// Name is the provider name used in configuration.
	Name = "gemini"

	defaultModel          = "gemini-2.5-flash"
	defaultEmbeddingModel = "gemini-embedding-001"
)

// NewClient creates a GenAI client for the Gemini API backend.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return client, nil
}

type chatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type chatCreator interface {
	Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error)
}

type genaiChats struct {
	chats *genai.Chats
}

func (c genaiChats) Create(ctx context.Context, model string, config *genai.GenerateContentConfig, history []*genai.Content) (chatSession, error) {
	chat, err := c.chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return chat, nil
}

var errEmptyResponse = errors.New("gemini api returned empty response")

// Generator sends one system instruction and one user message per call,
// retrying transient API failures.
type Generator struct {
	chats      chatCreator
	model      string
	maxRetries int
	logger     *zap.Logger
}

// NewGenerator wraps client. maxRetries is the total number of attempts.
func NewGenerator(client *genai.Client, model string, maxRetries int, logger *zap.Logger) (*Generator, error) {
	if client == nil {
		return nil, errors.New("genai client is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		chats:      genaiChats{chats: client.Chats},
		model:      model,
		maxRetries: maxRetries,
		logger:     logger,
	}, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.model
}

// GenerateContent returns the concatenated text of the first response.
func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	if g == nil || g.chats == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("message must not be empty")
	}

	config := &genai.GenerateContentConfig{}
	if system = strings.TrimSpace(system); system != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	attempts := g.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := g.send(ctx, config, message)
		if err == nil {
			return text, nil
		}
		lastErr = err

		delay, retry := retryDelay(err, attempt)
		if !retry || attempt == attempts {
			break
		}

		g.logger.Warn("gemini request failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		sleep(delay)
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}

	return "", fmt.Errorf("generate content: %w", lastErr)
}

func (g *Generator) send(ctx context.Context, config *genai.GenerateContentConfig, message string) (string, error) {
	chat, err := g.chats.Create(ctx, g.model, config, nil)
	if err != nil {
		return "", fmt.Errorf("create chat: %w", err)
	}

	resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return "", err
	}

	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errEmptyResponse
	}

	return output, nil
}
