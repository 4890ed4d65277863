// Package ollama talks to a local Ollama server over its HTTP API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	// Name is the provider name used in configuration.
	Name = "ollama"

	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 2 * time.Minute
)

// Message represents a chat message in the Ollama API format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client communicates with an Ollama instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Client targeting baseURL. An empty URL selects the local default.
func New(baseURL string) *Client {
	if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Format   string    `json:"format,omitempty"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// Chat sends messages to model and returns the assistant reply. jsonFormat
// asks the server to constrain output to JSON.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, jsonFormat bool) (string, error) {
	cr := chatRequest{Model: model, Messages: messages}
	if jsonFormat {
		cr.Format = "json"
	}

	var result chatResponse
	if err := c.post(ctx, "/api/chat", cr, &result); err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}

	return result.Message.Content, nil
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, model string, text string) ([]float32, error) {
	var result embedResponse
	if err := c.post(ctx, "/api/embed", embedRequest{Model: model, Input: text}, &result); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}

	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, errors.New("embed: empty embeddings array")
	}
	return result.Embeddings[0], nil
}

func (c *Client) post(ctx context.Context, path string, payload, target any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Generator adapts Client to the text generation contract.
type Generator struct {
	client *Client
	model  string
}

func NewGenerator(client *Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

func (g *Generator) GenerateContent(ctx context.Context, system, message string) (string, error) {
	messages := make([]Message, 0, 2)
	if system = strings.TrimSpace(system); system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, Message{Role: "user", Content: message})

	return g.client.Chat(ctx, g.model, messages, true)
}

// Embedder adapts Client to the embedding contract.
type Embedder struct {
	client *Client
	model  string
}

func NewEmbedder(client *Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embed(ctx, e.model, text)
}
