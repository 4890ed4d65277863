package agent

import (
	"fmt"

	"github.com/spigell/gigmatch/internal/jobs"
	"github.com/spigell/gigmatch/internal/toolkit"
)

// State is a step of the reasoning loop.
type State string

const (
	StateStarted           State = "started"
	StateThinking          State = "thinking"
	StateActing            State = "acting"
	StateObserving         State = "observing"
	StateStoppedSufficient State = "stopped_sufficient"
	StateStoppedMaxIter    State = "stopped_max_iterations"
	StateCancelled         State = "cancelled"
)

// Thought is the model decision for one iteration.
type Thought struct {
	Iteration  int    `json:"iteration"`
	Thought    string `json:"thought"`
	NextAction string `json:"next_action"`
	Reasoning  string `json:"reasoning"`
	Default    bool   `json:"default,omitempty"`
}

func defaultThought(iteration int) Thought {
	return Thought{
		Iteration:  iteration,
		Thought:    "default search attempt",
		NextAction: toolkit.SimilaritySearch.String(),
		Reasoning:  "thought generation failed, using default action",
		Default:    true,
	}
}

// Action is the strategy run chosen from a thought.
type Action struct {
	Iteration int              `json:"iteration"`
	Strategy  toolkit.Strategy `json:"tool"`
	Params    toolkit.Params   `json:"params"`
	Fallback  bool             `json:"fallback,omitempty"`
}

// Kind classifies an observation.
type Kind string

const (
	KindFailure      Kind = "failure"
	KindEmpty        Kind = "empty"
	KindInsufficient Kind = "insufficient"
	KindSufficient   Kind = "sufficient"
	KindValidation   Kind = "validation"
)

// sufficientCount is the result size an observation treats as enough.
const sufficientCount = 3

// Observation records what a strategy returned. Data is the sanitized result
// list, or the validation report for validate_recommendations.
type Observation struct {
	Iteration  int                 `json:"iteration"`
	Strategy   toolkit.Strategy    `json:"tool"`
	Success    bool                `json:"success"`
	Data       any                 `json:"data"`
	Kind       Kind                `json:"kind"`
	Count      int                 `json:"count"`
	Added      int                 `json:"added"`
	Analysis   string              `json:"analysis"`
	Message    string              `json:"message"`
	Validation *toolkit.Validation `json:"validation,omitempty"`
}

func observationData(res toolkit.Result) any {
	if res.Validation != nil {
		return res.Validation
	}
	data := make([]map[string]any, 0, len(res.Data))
	for i := range res.Data {
		data = append(data, sanitize(res.Data[i].Map()).(map[string]any))
	}
	return data
}

func observe(iteration int, s toolkit.Strategy, res toolkit.Result) Observation {
	obs := Observation{
		Iteration:  iteration,
		Strategy:   s,
		Success:    res.Success,
		Data:       observationData(res),
		Count:      len(res.Data),
		Message:    res.Message,
		Validation: res.Validation,
	}

	switch {
	case !res.Success:
		obs.Kind = KindFailure
		obs.Analysis = "strategy failed: " + res.Message
	case res.Validation != nil:
		v := res.Validation
		obs.Kind = KindValidation
		obs.Analysis = fmt.Sprintf("validation: total=%d count_ok=%t avg_score=%.2f score_ok=%t valid=%t",
			v.TotalCount, v.CountOK, v.AvgScore, v.ScoreOK, v.IsValid)
	case obs.Count == 0:
		obs.Kind = KindEmpty
		obs.Analysis = "no results, another strategy is needed"
	case obs.Count < sufficientCount:
		obs.Kind = KindInsufficient
		obs.Analysis = fmt.Sprintf("not enough results (%d), keep searching", obs.Count)
	default:
		obs.Kind = KindSufficient
		obs.Analysis = fmt.Sprintf("enough results (%d)", obs.Count)
	}
	return obs
}

// Reason is the serializable trace of a run.
type Reason struct {
	Iterations   int           `json:"iterations"`
	Stop         State         `json:"stop"`
	Thoughts     []Thought     `json:"thoughts"`
	Actions      []Action      `json:"actions"`
	Observations []Observation `json:"observations"`
}

func (r *Reason) succeeded() int {
	n := 0
	for _, o := range r.Observations {
		if o.Success {
			n++
		}
	}
	return n
}

// Response is the outcome of Run.
type Response struct {
	Success         bool             `json:"success"`
	RunID           string           `json:"run_id"`
	Recommendations []map[string]any `json:"recommendations"`
	Reason          Reason           `json:"reason"`

	Items []jobs.Recommendation `json:"-"`
}

// DumpToTmpFile writes the response to a temporary JSON file and returns its path.
func (r *Response) DumpToTmpFile() (string, error) {
	return jobs.DumpToTmpFile("gigmatch-run-*.json", r)
}
