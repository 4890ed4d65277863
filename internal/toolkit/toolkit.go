// Package toolkit exposes the recommendation strategies the orchestrator can
// pick from. Strategies never fail the caller: every problem becomes an
// unsuccessful Result with a diagnostic message.
package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/logger"
)

// Defaults applied when a Params field is left at zero.
const (
	DefaultTopK            = 10
	DefaultProfileMinScore = 0.6
	HybridMinScore         = 0.4
	DefaultMinCount        = 3
	DefaultMinAvgScore     = 0.5
)

var (
	ErrEmptyQuery    = errors.New("empty query")
	ErrNoCandidates  = errors.New("no candidates")
	ErrEmptyCorpus   = errors.New("corpus is empty")
	ErrNoRegions     = errors.New("no regions given")
	ErrNoExperiences = errors.New("no experiences given")
)

// Searcher is the part of the search engine the toolkit needs.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) []jobs.Recommendation
	Postings() []jobs.Posting
}

// Params carries strategy arguments. Unused fields are ignored.
type Params struct {
	Query       string   `json:"query,omitempty"`
	TopK        int      `json:"top_k,omitempty"`
	Regions     []string `json:"regions,omitempty"`
	Experiences []string `json:"experiences,omitempty"`
	MinScore    float64  `json:"min_score,omitempty"`
	MinWage     float64  `json:"min_wage,omitempty"`
	MaxWage     float64  `json:"max_wage,omitempty"`
	MinCount    int      `json:"min_count,omitempty"`
	MinAvgScore float64  `json:"min_avg_score,omitempty"`

	Candidates []jobs.Recommendation `json:"-"`
}

// MarshalJSON reports candidates by count so traces stay small.
func (p Params) MarshalJSON() ([]byte, error) {
	type plain Params
	return json.Marshal(struct {
		plain
		Candidates int `json:"candidates,omitempty"`
	}{plain: plain(p), Candidates: len(p.Candidates)})
}

func (p Params) topK() int {
	if p.TopK <= 0 {
		return DefaultTopK
	}
	return p.TopK
}

// Validation is the report of validate_recommendations.
type Validation struct {
	TotalCount int     `json:"total_count"`
	CountOK    bool    `json:"count_ok"`
	AvgScore   float64 `json:"avg_score"`
	ScoreOK    bool    `json:"score_ok"`
	IsValid    bool    `json:"is_valid"`
}

// Result is the outcome of one strategy run.
type Result struct {
	Success    bool                  `json:"success"`
	Data       []jobs.Recommendation `json:"data"`
	Validation *Validation           `json:"validation,omitempty"`
	Message    string                `json:"message"`
}

func failure(message string) Result {
	return Result{Data: []jobs.Recommendation{}, Message: message}
}

// Status represents runtime information about a strategy.
type Status struct {
	Name    string            `json:"name"`
	Enabled bool              `json:"enabled"`
	Reason  string            `json:"reason,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

type handler func(ctx context.Context, profile *jobs.Profile, p Params) (Result, error)

// Toolkit runs strategies over one immutable corpus. It is safe for
// concurrent use.
type Toolkit struct {
	searcher Searcher
	logger   *zap.Logger
	handlers map[Strategy]handler

	mu       sync.RWMutex
	disabled map[Strategy]string
}

func New(searcher Searcher, log *zap.Logger) (*Toolkit, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	t := &Toolkit{
		searcher: searcher,
		logger:   log,
		disabled: make(map[Strategy]string),
	}
	t.handlers = map[Strategy]handler{
		SimilaritySearch:         t.similaritySearch,
		LatestJobs:               t.latestJobs,
		ProfileFilter:            t.profileFilter,
		HybridSearch:             t.hybridSearch,
		RegionFilteredSearch:     t.regionFilteredSearch,
		ExperienceFilteredSearch: t.experienceFilteredSearch,
		WageFilteredSearch:       t.wageFilteredSearch,
		ValidateRecommendations:  t.validateRecommendations,
	}
	return t, nil
}

// Run executes strategy s. It never panics and never returns an error.
func (t *Toolkit) Run(ctx context.Context, s Strategy, profile *jobs.Profile, p Params) (res Result) {
	log := t.logger.With(zap.Stringer(logger.FieldStrategy, s))

	defer func() {
		if r := recover(); r != nil {
			log.Error("strategy panicked", zap.Any("panic", r))
			res = failure(fmt.Sprintf("%s failed: %v", s, r))
		}
	}()

	h, ok := t.handlers[s]
	if !ok {
		return failure(fmt.Sprintf("unknown strategy %s", s))
	}
	if reason, off := t.disabledReason(s); off {
		log.Info("strategy disabled", zap.String("reason", reason))
		return failure(fmt.Sprintf("%s is disabled: %s", s, reason))
	}
	if profile == nil {
		profile = &jobs.Profile{}
	}

	res, err := h(ctx, profile, p)
	if err != nil {
		log.Warn("strategy failed", zap.Error(err))
		return failure(err.Error())
	}
	if res.Data == nil {
		res.Data = []jobs.Recommendation{}
	}

	log.Debug("strategy step",
		zap.Bool("success", res.Success),
		zap.Int("count", len(res.Data)),
		zap.String("message", res.Message),
	)
	return res
}

// Disable marks s as unavailable while keeping it listed.
func (t *Toolkit) Disable(s Strategy, reason string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disabled[s] = reason
}

// DisableByName disables the strategy with the given name.
func (t *Toolkit) DisableByName(name, reason string) error {
	s, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("unknown strategy %q", name)
	}
	t.Disable(s, reason)
	return nil
}

func (t *Toolkit) IsEnabled(s Strategy) bool {
	_, off := t.disabledReason(s)
	return !off
}

func (t *Toolkit) disabledReason(s Strategy) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	reason, off := t.disabled[s]
	return reason, off
}

// Describe returns status entries for every strategy in declaration order.
func (t *Toolkit) Describe() []Status {
	statuses := make([]Status, 0, len(strategyNames))
	for _, s := range Strategies() {
		reason, off := t.disabledReason(s)
		statuses = append(statuses, Status{
			Name:    s.String(),
			Enabled: !off,
			Reason:  reason,
			Details: map[string]string{"description": s.Description()},
		})
	}
	return statuses
}
