package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/gigmatch/internal/agent"
	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/corpus"
	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/logger"
	"github.com/spigell/gigmatch/internal/search"
	"github.com/spigell/gigmatch/internal/toolkit"
)

const (
	PromptShow    = "Show recommendations"
	PromptRefine  = "Refine with feedback"
	PromptTrace   = "Show reasoning trace"
	PromptToFile  = "Dump result to file"
	PromptHistory = "Append recommendations to history file"
	PromptExit    = "Exit"

	historyPreviousLimit = 10
)

var errExit = errors.New("exit requested")

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend jobs for a seeker profile",
	Run: func(cmd *cobra.Command, _ []string) {
		recommend(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("profile", "p", "", "seeker profile file (yaml or json)")
	recommendCmd.Flags().StringP("intent", "i", "", "free-form request, e.g. \"weekend cafe work\"")
	recommendCmd.Flags().BoolP("no-interactive", "n", false, "print the result as json and exit")
	recommendCmd.Flags().Bool("exclude-previous", false, "never recommend postings from the history file again")
	recommendCmd.Flags().String("history-file", "", "file with postings already recommended. Default is unset.")

	recommendCmd.MarkFlagRequired("profile")
	viper.BindPFlag("history-file", recommendCmd.Flags().Lookup("history-file"))
	viper.BindPFlag("agent.exclude-previous", recommendCmd.Flags().Lookup("exclude-previous"))
}

// session is one interactive recommendation session.
type session struct {
	generator ai.Generator
	agentCfg  agent.Config
	cache     *toolkit.Cache
	key       string
	profile   *jobs.Profile
	history   *jobs.History
	config    *Config
	logger    *zap.Logger

	intent   string
	response *agent.Response
}

func recommend(cmd *cobra.Command) {
	ctx := context.Background()
	interactive := cmd.Flag("no-interactive").Value.String() == "false"

	outputs := []string{"stdout"}
	if !interactive {
		outputs = []string{"stderr"}
	}
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), outputs...)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the gigmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	profile, err := loadProfile(cmd.Flag("profile").Value.String())
	if err != nil {
		logger.Fatal("loading the profile", zap.Error(err))
	}

	s, err := newSession(ctx, config, profile, logger)
	if err != nil {
		logger.Fatal("preparing recommendations", zap.Error(err))
	}

	previous := s.history.Previous(historyPreviousLimit)
	if err := s.run(ctx, cmd.Flag("intent").Value.String(), previous); err != nil {
		logger.Fatal("running recommendations", zap.Error(err))
	}

	if !interactive {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s.response); err != nil {
			logger.Fatal("encoding the result", zap.Error(err))
		}
		return
	}

	items := []string{PromptShow, PromptRefine, PromptTrace, PromptToFile}
	if config.HistoryFile != "" {
		items = append(items, PromptHistory)
	}
	prompt := promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := s.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func newSession(ctx context.Context, config *Config, profile *jobs.Profile, log *zap.Logger) (*session, error) {
	provider, err := newRegistry(config.AI, log).Get(ctx, providerName(config.AI))
	if err != nil {
		return nil, fmt.Errorf("building ai provider: %w", err)
	}
	log = logger.WithCommonFields(log, provider.Name, provider.Model)

	c, err := loadCorpus(ctx, config.Corpus, provider.Embedder, log)
	if err != nil {
		return nil, err
	}

	engine, err := search.New(c, provider.Embedder, log)
	if err != nil {
		return nil, fmt.Errorf("building search engine: %w", err)
	}

	cache, err := newToolkitCache(engine, config.Strategies.Disabled, log)
	if err != nil {
		return nil, err
	}
	tk, err := cache.Get(ctx, provider.Key())
	if err != nil {
		return nil, err
	}
	for _, status := range tk.Describe() {
		if !status.Enabled {
			log.Info("strategy disabled", zap.String("name", status.Name), zap.String("reason", status.Reason))
		}
	}

	history := &jobs.History{}
	if config.HistoryFile != "" {
		history, err = jobs.LoadHistory(config.HistoryFile)
		if err != nil {
			return nil, fmt.Errorf("loading history: %w", err)
		}
	}

	return &session{
		generator: provider.Generator,
		agentCfg:  *config.Agent,
		cache:     cache,
		key:       provider.Key(),
		profile:   profile,
		history:   history,
		config:    config,
		logger:    log,
	}, nil
}

func loadCorpus(ctx context.Context, cfg *CorpusConfig, embedder ai.Embedder, log *zap.Logger) (*corpus.Corpus, error) {
	src, err := newSource(cfg, log)
	if err != nil {
		return nil, err
	}

	c, err := corpus.Load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	log.Info("corpus loaded",
		zap.Int("postings", len(c.Postings)),
		zap.Int("dimension", c.Dim),
		zap.String("embedding_column", c.EmbeddingColumn),
		zap.Int("with_embeddings", c.Parsed),
		zap.Int("skipped", c.Skipped),
	)

	if cfg.EmbedMissing {
		n, err := corpus.FillMissing(ctx, c, embedder, cfg.EmbedConcurrency)
		if err != nil {
			return nil, fmt.Errorf("embedding corpus: %w", err)
		}
		log.Info("embedded postings without vectors", zap.Int("count", n))
	}
	return c, nil
}

func (s *session) run(ctx context.Context, intent string, previous []jobs.Recommendation) error {
	tk, err := s.cache.Get(ctx, s.key)
	if err != nil {
		return err
	}
	a, err := agent.New(s.generator, tk, s.agentCfg, s.logger)
	if err != nil {
		return err
	}

	s.intent = strings.TrimSpace(intent)
	s.response = a.Run(ctx, agent.Request{
		Profile:                 s.profile,
		Intent:                  s.intent,
		PreviousRecommendations: previous,
	})

	s.logger.Info("recommendations ready",
		zap.String(logger.FieldRunID, s.response.RunID),
		zap.Int("count", len(s.response.Items)),
		zap.Int("iterations", s.response.Reason.Iterations),
	)
	return nil
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptShow:
		if len(s.response.Items) == 0 {
			s.logger.Info("no recommendations")
			return nil
		}
		for i, item := range s.response.Items {
			s.logger.Info(fmt.Sprintf("%d. %s", i+1, item.Title),
				zap.String("job_id", item.ID),
				zap.String("place", item.Place),
				zap.Float64("hourly_wage", item.HourlyWage),
				zap.String("hours", item.StartTime+"-"+item.EndTime),
				zap.Float64("match_score", item.MatchScore),
				zap.String("reason", item.Reason),
			)
		}
		return nil
	case PromptRefine:
		feedback := promptui.Prompt{Label: "What should be different"}
		intent, err := feedback.Run()
		if err != nil {
			return err
		}
		previous := append(append([]jobs.Recommendation{}, s.response.Items...), s.history.Previous(historyPreviousLimit)...)
		return s.run(ctx, intent, previous)
	case PromptTrace:
		pretty, _ := json.MarshalIndent(s.response.Reason, "", "  ")
		s.logger.Info(string(pretty), zap.String(logger.FieldRunID, s.response.RunID))
		return nil
	case PromptToFile:
		filename, err := s.response.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptHistory:
		recs := &jobs.Recommendations{Items: s.response.Items}
		s.history.Append(recs.ToHistory(s.intent))
		if err := s.history.ToFile(s.config.HistoryFile); err != nil {
			return fmt.Errorf("writing history: %w", err)
		}
		s.logger.Info("appended to history file", zap.String("filename", s.config.HistoryFile), zap.Int("count", recs.Len()))
		return nil
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// loadProfile reads a profile from a json file or, for any other extension, yaml.
func loadProfile(path string) (*jobs.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	profile := &jobs.Profile{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, profile)
	} else {
		err = yaml.Unmarshal(data, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return profile, nil
}
