package ai

import (
	"context"
	"errors"
)

// ErrNotImplemented is returned by providers that exist only as placeholders.
var ErrNotImplemented = errors.New("provider is not implemented")

// Generator produces text for a system instruction and a user message.
type Generator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Embedder turns text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Provider bundles the collaborators exposed by one backend.
type Provider struct {
	Name      string
	Model     string
	Generator Generator
	Embedder  Embedder
}

// Key identifies the provider in caches.
func (p *Provider) Key() string {
	if p == nil {
		return ""
	}
	return p.Name + "/" + p.Model
}
