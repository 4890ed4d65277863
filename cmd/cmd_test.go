package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/corpus"
	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/toolkit"
)

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("regions: [강남]\ndays: [월, 화]\ntime_slots: [오전]\nexperiences: [카페]\n"), 0o600))
	jsonPath := filepath.Join(dir, "profile.JSON")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"regions":["강남"],"days":["월","화"],"time_slots":["오전"],"experiences":["카페"]}`), 0o600))

	for _, path := range []string{yamlPath, jsonPath} {
		profile, err := loadProfile(path)
		require.NoError(t, err, path)
		assert.Equal(t, []string{"강남"}, profile.Regions)
		assert.Equal(t, []string{"월", "화"}, profile.Days)
		assert.Equal(t, []string{"오전"}, profile.TimeSlots)
		assert.Equal(t, []string{"카페"}, profile.Experiences)
	}

	_, err := loadProfile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestNewSource(t *testing.T) {
	log := zap.NewNop()

	src, err := newSource(&CorpusConfig{Path: "jobs.csv"}, log)
	require.NoError(t, err)
	assert.Equal(t, corpus.CSVFile{Path: "jobs.csv"}, src)

	src, err = newSource(&CorpusConfig{Source: "SQLite", Path: "jobs.db", Table: "postings"}, log)
	require.NoError(t, err)
	assert.Equal(t, corpus.SQLite{DSN: "jobs.db", Table: "postings"}, src)

	src, err = newSource(&CorpusConfig{Source: "http", HTTP: &HTTPSourceConfig{BaseURL: "http://example.test", PerPage: 20}}, log)
	require.NoError(t, err)
	httpSrc, ok := src.(*corpus.HTTP)
	require.True(t, ok)
	assert.Equal(t, "http://example.test", httpSrc.BaseURL)
	assert.Equal(t, 20, httpSrc.PerPage)

	for _, cfg := range []*CorpusConfig{
		{},
		{Source: "sqlite"},
		{Source: "http"},
		{Source: "parquet", Path: "jobs.parquet"},
	} {
		_, err := newSource(cfg, log)
		assert.Error(t, err, cfg.Source)
	}
}

func TestProviderName(t *testing.T) {
	assert.Equal(t, "gemini", providerName(&AIConfig{}))
	assert.Equal(t, "ollama", providerName(&AIConfig{Provider: " ollama "}))
}

type emptySearcher struct{}

func (emptySearcher) Search(context.Context, string, int) []jobs.Recommendation { return nil }
func (emptySearcher) Postings() []jobs.Posting { return nil }

func TestToolkitCacheDisablesConfiguredStrategies(t *testing.T) {
	cache, err := newToolkitCache(emptySearcher{}, []string{"wage_filtered_search"}, zap.NewNop())
	require.NoError(t, err)

	tk, err := cache.Get(context.Background(), "local/none")
	require.NoError(t, err)
	assert.False(t, tk.IsEnabled(toolkit.WageFilteredSearch))
	assert.True(t, tk.IsEnabled(toolkit.SimilaritySearch))

	cache, err = newToolkitCache(emptySearcher{}, []string{"no_such_strategy"}, zap.NewNop())
	require.NoError(t, err)
	_, err = cache.Get(context.Background(), "local/none")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })

	require.NoError(t, versionCmd.RunE(versionCmd, nil))
	assert.Equal(t, "gigmatch "+version+"\n", out.String())
}
