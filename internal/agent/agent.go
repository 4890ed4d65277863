// Package agent runs the think, act and observe loop that assembles job
// recommendations for one seeker.
package agent

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/ai"
	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/llmjson"
	"github.com/spigell/gigmatch/internal/logger"
	"github.com/spigell/gigmatch/internal/toolkit"
	"github.com/spigell/gigmatch/internal/utils"
)

const defaultMaxLogLength = 200

// Config controls the loop.
type Config struct {
	MaxIterations int `mapstructure:"max-iterations"`
	DesiredK      int `mapstructure:"desired-k"`
	// MaxPerTitle is accepted for compatibility and not enforced.
	MaxPerTitle     int  `mapstructure:"max-per-title"`
	ExcludePrevious bool `mapstructure:"exclude-previous"`
	MaxLogLength    int  `mapstructure:"max-log-length"`
}

func DefaultConfig() Config {
	return Config{
		MaxIterations: 8,
		DesiredK:      5,
		MaxPerTitle:   2,
		MaxLogLength:  defaultMaxLogLength,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.DesiredK <= 0 {
		c.DesiredK = d.DesiredK
	}
	if c.MaxPerTitle <= 0 {
		c.MaxPerTitle = d.MaxPerTitle
	}
	if c.MaxLogLength <= 0 {
		c.MaxLogLength = d.MaxLogLength
	}
	return c
}

// Runner executes toolkit strategies.
type Runner interface {
	Run(ctx context.Context, s toolkit.Strategy, profile *jobs.Profile, p toolkit.Params) toolkit.Result
}

// Request is one recommendation call.
type Request struct {
	Profile                 *jobs.Profile
	Intent                  string
	PreviousRecommendations []jobs.Recommendation
}

type Agent struct {
	generator ai.Generator
	toolkit   Runner
	cfg       Config
	logger    *zap.Logger
	newID     func() string
}

// New builds an agent. A nil generator makes every thought the default one.
func New(generator ai.Generator, tk Runner, cfg Config, log *zap.Logger) (*Agent, error) {
	if tk == nil {
		return nil, errors.New("toolkit is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{
		generator: generator,
		toolkit:   tk,
		cfg:       cfg.withDefaults(),
		logger:    log,
		newID:     uuid.NewString,
	}, nil
}

func (a *Agent) Config() Config { return a.cfg }

type session struct {
	req     Request
	profile *jobs.Profile
	log     *zap.Logger
	acc     jobs.Recommendations
	exclude map[string]struct{}
	reason  Reason
}

// Run never fails. Provider and strategy problems are recorded in the trace
// and the loop moves on.
func (a *Agent) Run(ctx context.Context, req Request) *Response {
	runID := a.newID()
	s := &session{
		req:     req,
		profile: req.Profile,
		log:     logger.WithRun(a.logger, runID),
		reason: Reason{
			Stop:         StateStoppedMaxIter,
			Thoughts:     []Thought{},
			Actions:      []Action{},
			Observations: []Observation{},
		},
	}
	if s.profile == nil {
		s.profile = &jobs.Profile{}
	}
	if a.cfg.ExcludePrevious {
		s.exclude = make(map[string]struct{}, len(req.PreviousRecommendations))
		for _, r := range req.PreviousRecommendations {
			s.exclude[r.ID] = struct{}{}
		}
	}

	s.log.Info("recommendation run started",
		zap.String("intent", req.Intent),
		zap.Int("previous", len(req.PreviousRecommendations)),
		zap.Int("max_iterations", a.cfg.MaxIterations),
	)

	for i := 0; i < a.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			s.log.Warn("recommendation run cancelled", zap.Error(err))
			s.reason.Stop = StateCancelled
			break
		}
		s.reason.Iterations = i + 1

		thought := a.think(ctx, s, i)
		s.reason.Thoughts = append(s.reason.Thoughts, thought)

		if a.sufficient(s) || finishRequested(thought) {
			s.log.Info("recommendation loop stopped", append(logger.StepFields(i, ""),
				zap.Int("total", s.acc.Len()),
			)...)
			s.reason.Stop = StateStoppedSufficient
			break
		}

		strategy := toolkit.Parse(thought.Thought + " " + thought.NextAction)
		a.act(ctx, s, i, strategy, buildParams(strategy, s.profile, req.Intent, s.acc.Items), false)
	}

	if s.acc.Len() == 0 {
		s.log.Info("no recommendations collected, falling back", zap.Stringer(logger.FieldStrategy, toolkit.LatestJobs))
		a.act(ctx, s, s.reason.Iterations, toolkit.LatestJobs, toolkit.Params{TopK: a.cfg.DesiredK}, true)
	}

	return a.compile(s, runID)
}

func (a *Agent) think(ctx context.Context, s *session, iteration int) Thought {
	log := s.log.With(logger.StepFields(iteration, "")...)
	if a.generator == nil {
		return defaultThought(iteration)
	}

	prompt := buildPrompt(promptInput{
		profile:  s.profile,
		intent:   s.req.Intent,
		current:  s.acc.Len(),
		reason:   &s.reason,
		previous: s.req.PreviousRecommendations,
	})
	log.Debug("think request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, a.cfg.MaxLogLength)),
	)

	raw, err := a.generator.GenerateContent(ctx, systemInstruction(), prompt)
	if err != nil {
		log.Warn("thought generation failed", zap.Error(err))
		return defaultThought(iteration)
	}
	log.Debug("think response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, a.cfg.MaxLogLength)),
	)

	var thought Thought
	if err := llmjson.Decode(llmjson.Normalize(raw), "thought", &thought); err != nil {
		log.Warn("thought parse failed", zap.Error(err))
		return defaultThought(iteration)
	}
	thought.Iteration = iteration
	thought.Default = false
	return thought
}

func (a *Agent) act(ctx context.Context, s *session, iteration int, strategy toolkit.Strategy, params toolkit.Params, fallback bool) {
	s.reason.Actions = append(s.reason.Actions, Action{
		Iteration: iteration,
		Strategy:  strategy,
		Params:    params,
		Fallback:  fallback,
	})

	res := a.toolkit.Run(ctx, strategy, s.profile, params)
	obs := observe(iteration, strategy, res)
	if res.Success && res.Validation == nil {
		items := res.Data
		// The post-loop fallback ignores ExcludePrevious.
		if !fallback {
			items = s.fresh(items)
		}
		obs.Added = s.acc.Merge(items)
	}
	s.reason.Observations = append(s.reason.Observations, obs)

	s.log.Info("react step", append(logger.StepFields(iteration, strategy.String()),
		zap.String("kind", string(obs.Kind)),
		zap.Int("count", obs.Count),
		zap.Int("added", obs.Added),
		zap.Int("total", s.acc.Len()),
	)...)
}

// fresh drops items the caller asked to exclude.
func (s *session) fresh(items []jobs.Recommendation) []jobs.Recommendation {
	if len(s.exclude) == 0 {
		return items
	}
	out := make([]jobs.Recommendation, 0, len(items))
	for _, item := range items {
		if _, skip := s.exclude[item.ID]; !skip {
			out = append(out, item)
		}
	}
	return out
}

func (a *Agent) sufficient(s *session) bool {
	return s.acc.Len() >= a.cfg.DesiredK
}

// stopWords end the loop when they appear anywhere in a thought.
var stopWords = []string{"종료", "완료"}

// finishRequested reports whether the model asked to stop.
func finishRequested(t Thought) bool {
	text := strings.ToLower(t.Thought + " " + t.NextAction)
	for _, w := range stopWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if w == "done" || strings.HasPrefix(w, "finish") {
			return true
		}
	}
	return false
}

func (a *Agent) compile(s *session, runID string) *Response {
	s.acc.SortByScore()
	s.acc.Truncate(a.cfg.DesiredK)

	recs := make([]map[string]any, 0, s.acc.Len())
	for i := range s.acc.Items {
		item := &s.acc.Items[i]
		recs = append(recs, sanitize(item.Map()).(map[string]any))
		s.log.Debug("final selection",
			zap.Int("rank", i+1),
			zap.String("job_id", item.ID),
			zap.String("title", item.Title),
			zap.Float64("match_score", item.MatchScore),
		)
	}

	s.log.Info("recommendation run finished",
		zap.Int("iterations", s.reason.Iterations),
		zap.String("stop", string(s.reason.Stop)),
		zap.Int("recommendations", len(recs)),
	)

	return &Response{
		Success:         true,
		RunID:           runID,
		Recommendations: recs,
		Reason:          s.reason,
		Items:           s.acc.Items,
	}
}
