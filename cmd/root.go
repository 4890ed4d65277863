package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/gigmatch/internal/agent"
)

const (
	app = "gigmatch"
)

type Config struct {
	Corpus      *CorpusConfig     `mapstructure:"corpus"`
	AI          *AIConfig         `mapstructure:"ai"`
	Agent       *agent.Config     `mapstructure:"agent"`
	Strategies  *StrategiesConfig `mapstructure:"strategies"`
	HistoryFile string            `mapstructure:"history-file"`
}

type CorpusConfig struct {
	// Source is one of csv, sqlite or http.
	Source string `mapstructure:"source"`
	// Path is the CSV file or the SQLite DSN.
	Path             string            `mapstructure:"path"`
	Table            string            `mapstructure:"table"`
	HTTP             *HTTPSourceConfig `mapstructure:"http"`
	EmbedMissing     bool              `mapstructure:"embed-missing"`
	EmbedConcurrency int               `mapstructure:"embed-concurrency"`
}

type HTTPSourceConfig struct {
	BaseURL   string        `mapstructure:"base-url"`
	Path      string        `mapstructure:"path"`
	TokenFile string        `mapstructure:"token-file"`
	UserAgent string        `mapstructure:"user-agent"`
	PerPage   int           `mapstructure:"per-page"`
	PageDelay time.Duration `mapstructure:"page-delay"`
	MaxPages  int           `mapstructure:"max-pages"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	Ollama   *OllamaConfig `mapstructure:"ollama"`
}

type GeminiConfig struct {
	APIKeyFile     string `mapstructure:"api-key-file"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
	Dimensions     int    `mapstructure:"dimensions"`
	MaxRetries     int    `mapstructure:"max-retries"`
}

type OllamaConfig struct {
	BaseURL        string `mapstructure:"base-url"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding-model"`
}

type StrategiesConfig struct {
	Disabled []string `mapstructure:"disabled"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "gigmatch recommends short-term jobs for a seeker profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GIGMATCH_GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GIGMATCH_GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("corpus.path", "GIGMATCH_CORPUS"); err != nil {
		log.Fatalf("binding GIGMATCH_CORPUS environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is gigmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Only recommend and extract need a config.
	if recommendCmd.CalledAs() == "" && extractCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// A missing default config is fine, the environment may carry everything.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Corpus == nil {
		config.Corpus = &CorpusConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Agent == nil {
		defaults := agent.DefaultConfig()
		config.Agent = &defaults
	}
	if config.Strategies == nil {
		config.Strategies = &StrategiesConfig{}
	}

	return config, nil
}
