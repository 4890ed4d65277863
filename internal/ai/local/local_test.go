package local

import (
	"context"
	"errors"
	"testing"

	"github.com/spigell/gigmatch/internal/ai"
)

func TestProviderAlwaysFails(t *testing.T) {
	p := New()

	if _, err := p.Generator.GenerateContent(context.Background(), "", "hi"); !errors.Is(err, ai.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if _, err := p.Embedder.Embed(context.Background(), "hi"); !errors.Is(err, ai.ErrNotImplemented) {
		t.Fatalf("expected ErrNotImplemented, got %v", err)
	}
	if p.Key() != "local/none" {
		t.Fatalf("unexpected key: %s", p.Key())
	}
}
