package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/logger"
	"github.com/spigell/gigmatch/internal/posting"
)

const maxFollowUpRounds = 3

var extractCmd = &cobra.Command{
	Use:   "extract [text]",
	Short: "Turn a free-form job description into a structured post",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		extract(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("file", "f", "", "read the description from a file")
	extractCmd.Flags().BoolP("no-interactive", "n", false, "do not ask follow-up questions")
	extractCmd.Flags().Int("max-log-length", 0, "truncate logged prompts and responses to this many characters")
}

func extract(cmd *cobra.Command, args []string) {
	ctx := context.Background()
	interactive := cmd.Flag("no-interactive").Value.String() == "false"

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), "stderr")
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	text, err := extractInput(cmd, args)
	if err != nil {
		logger.Fatal("reading the description", zap.Error(err))
	}

	provider, err := newRegistry(config.AI, logger).Get(ctx, providerName(config.AI))
	if err != nil {
		logger.Fatal("building ai provider", zap.Error(err))
	}

	maxLogLength, _ := cmd.Flags().GetInt("max-log-length")
	extractor, err := posting.NewExtractor(provider.Generator, logger, maxLogLength)
	if err != nil {
		logger.Fatal("building extractor", zap.Error(err))
	}

	post, err := extractor.Extract(ctx, text)
	if err != nil {
		logger.Fatal("extracting the post", zap.Error(err))
	}

	missing := posting.MissingFields(post)
	for round := 0; interactive && len(missing) > 0 && round < maxFollowUpRounds; round++ {
		answered := 0
		for _, m := range missing {
			question := promptui.Prompt{Label: m.Question}
			answer, err := question.Run()
			if err != nil {
				logger.Fatal("exiting", zap.Error(err))
			}
			if strings.TrimSpace(answer) == "" {
				continue
			}
			post = extractor.Merge(ctx, post, m.Field, answer)
			answered++
		}
		if answered == 0 {
			break
		}
		missing = posting.MissingFields(post)
	}

	if len(missing) > 0 {
		fields := make([]string, 0, len(missing))
		for _, m := range missing {
			fields = append(fields, m.Field)
		}
		logger.Info("post is incomplete", zap.Strings("missing_fields", fields))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(post); err != nil {
		logger.Fatal("encoding the post", zap.Error(err))
	}
}

func extractInput(cmd *cobra.Command, args []string) (string, error) {
	if file := cmd.Flag("file").Value.String(); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return "", fmt.Errorf("pass the description as an argument or with --file")
}
