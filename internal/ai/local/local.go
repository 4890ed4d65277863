// Package local is a placeholder for an on-device model backend.
package local

import (
	"context"

	"github.com/spigell/gigmatch/internal/ai"
)

// Name is the provider name used in configuration.
const Name = "local"

// Provider satisfies both provider contracts and fails every call.
type Provider struct{}

func (Provider) GenerateContent(context.Context, string, string) (string, error) {
	return "", ai.ErrNotImplemented
}

func (Provider) Embed(context.Context, string) ([]float32, error) {
	return nil, ai.ErrNotImplemented
}

// New returns the provider bundle for the registry.
func New() *ai.Provider {
	p := Provider{}
	return &ai.Provider{Name: Name, Model: "none", Generator: p, Embedder: p}
}
