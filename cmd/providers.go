package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/ai/gemini"
	"github.com/spigell/gigmatch/internal/ai/local"
	"github.com/spigell/gigmatch/internal/ai/ollama"
	"github.com/spigell/gigmatch/internal/corpus"
	"github.com/spigell/gigmatch/internal/logger"
	"github.com/spigell/gigmatch/internal/secrets"
	"github.com/spigell/gigmatch/internal/toolkit"
)

const defaultProvider = gemini.Name

// newRegistry registers every known provider. Nothing is built until Get.
func newRegistry(cfg *AIConfig, log *zap.Logger) *ai.Registry {
	registry := ai.NewRegistry()

	registry.Register(gemini.Name, func(ctx context.Context) (*ai.Provider, error) {
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: gc.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GIGMATCH_GEMINI_API_KEY_FILE)", err)
		}

		client, err := gemini.NewClient(ctx, apiKey)
		if err != nil {
			return nil, err
		}

		generator, err := gemini.NewGenerator(client, gc.Model, gc.MaxRetries,
			logger.WithCommonFields(log, gemini.Name, gc.Model).With(zap.Int("ai_retry_attempts", gc.MaxRetries)))
		if err != nil {
			return nil, err
		}

		embedder, err := gemini.NewEmbedder(client, gc.EmbeddingModel, gc.Dimensions,
			logger.WithEmbeddingFields(log, gemini.Name, gc.EmbeddingModel))
		if err != nil {
			return nil, err
		}

		return &ai.Provider{Model: generator.Model(), Generator: generator, Embedder: embedder}, nil
	})

	registry.Register(ollama.Name, func(context.Context) (*ai.Provider, error) {
		oc := cfg.Ollama
		if oc == nil || strings.TrimSpace(oc.Model) == "" {
			return nil, errors.New("ai.ollama.model is required")
		}
		embeddingModel := oc.EmbeddingModel
		if embeddingModel == "" {
			embeddingModel = oc.Model
		}

		client := ollama.New(oc.BaseURL)
		return &ai.Provider{
			Model:     oc.Model,
			Generator: ollama.NewGenerator(client, oc.Model),
			Embedder:  ollama.NewEmbedder(client, embeddingModel),
		}, nil
	})

	registry.Register(local.Name, func(context.Context) (*ai.Provider, error) {
		return local.New(), nil
	})

	return registry
}

func providerName(cfg *AIConfig) string {
	if name := strings.TrimSpace(cfg.Provider); name != "" {
		return name
	}
	return defaultProvider
}

// newSource picks the corpus source configured under corpus.source.
func newSource(cfg *CorpusConfig, log *zap.Logger) (corpus.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Source)) {
	case "", "csv":
		if cfg.Path == "" {
			return nil, errors.New("corpus.path is required for the csv source (or set GIGMATCH_CORPUS)")
		}
		return corpus.CSVFile{Path: cfg.Path}, nil
	case "sqlite":
		if cfg.Path == "" {
			return nil, errors.New("corpus.path is required for the sqlite source")
		}
		return corpus.SQLite{DSN: cfg.Path, Table: cfg.Table}, nil
	case "http":
		hc := cfg.HTTP
		if hc == nil || hc.BaseURL == "" {
			return nil, errors.New("corpus.http.base-url is required for the http source")
		}
		var token string
		if hc.TokenFile != "" {
			var err error
			token, err = secrets.Load(secrets.Source{Name: "corpus api token", File: hc.TokenFile})
			if err != nil {
				return nil, err
			}
		}
		return &corpus.HTTP{
			BaseURL:   hc.BaseURL,
			Path:      hc.Path,
			Token:     token,
			UserAgent: hc.UserAgent,
			PerPage:   hc.PerPage,
			PageDelay: hc.PageDelay,
			MaxPages:  hc.MaxPages,
			Logger:    log,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported corpus source: %s", cfg.Source)
	}
}

// newToolkitCache builds toolkits over searcher with the configured
// strategies disabled.
func newToolkitCache(searcher toolkit.Searcher, disabled []string, log *zap.Logger) (*toolkit.Cache, error) {
	return toolkit.NewCache(toolkit.DefaultCacheSize, func(_ context.Context, key string) (*toolkit.Toolkit, error) {
		tk, err := toolkit.New(searcher, log.With(zap.String("toolkit", key)))
		if err != nil {
			return nil, err
		}
		for _, name := range disabled {
			if err := tk.DisableByName(name, "disabled in config"); err != nil {
				return nil, err
			}
		}
		return tk, nil
	})
}
