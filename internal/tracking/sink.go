// Package tracking records evaluation runs in an external experiment-tracking
// service. Tracking is strictly best-effort telemetry: every consumer goes
// through BestEffort, which swallows and logs failures so an unreachable sink
// can never affect evaluation correctness or availability.
package tracking

import (
	"context"
	"time"
)

// RunPayload describes a new tracked run.
type RunPayload struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	RunType   string         `json:"run_type"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	StartTime time.Time      `json:"start_time"`
	Project   string         `json:"session_name,omitempty"`
}

// RunPatch carries a partial update for an existing run.
type RunPatch struct {
	Outputs map[string]any `json:"outputs,omitempty"`
	EndTime *time.Time     `json:"end_time,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Example is a dataset entry queued for human annotation.
type Example struct {
	DatasetName string         `json:"dataset_name"`
	Inputs      map[string]any `json:"inputs"`
	Outputs     map[string]any `json:"outputs,omitempty"`
}

// Feedback attaches a score or value to an example.
type Feedback struct {
	ExampleID string   `json:"example_id,omitempty"`
	RunID     string   `json:"run_id,omitempty"`
	Key       string   `json:"key"`
	Score     *float64 `json:"score,omitempty"`
	Value     any      `json:"value,omitempty"`
}

// Sink is the experiment-tracking collaborator contract.
type Sink interface {
	CreateRun(ctx context.Context, run RunPayload) error
	UpdateRun(ctx context.Context, runID string, patch RunPatch) error
	CreateExample(ctx context.Context, ex Example) (string, error)
	CreateFeedback(ctx context.Context, fb Feedback) error
}
