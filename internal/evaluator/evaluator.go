// Package evaluator scores agent responses against per-case success
// criteria and routes complex cases into a manual review queue.
package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ticket-ai/outreach-eval/internal/criteria"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
	"github.com/ticket-ai/outreach-eval/internal/tracking"
)

// ErrNoCriteria is returned when a test case carries no success criteria to
// score against.
var ErrNoCriteria = errors.New("test case has no success criteria")

// CriterionResult records the outcome for a single criterion.
type CriterionResult struct {
	Criterion string `json:"criterion"`
	Met       bool   `json:"met"`
}

// Evaluation is the scored outcome of a single test case.
type Evaluation struct {
	TestCaseID           string            `json:"test_case_id"`
	SuccessRate          float64           `json:"success_rate"`
	CriteriaResults      []CriterionResult `json:"criteria_results"`
	ResponseTime         float64           `json:"response_time"`
	RequiresManualReview bool              `json:"requires_manual_review"`
}

// Run identifies an evaluation run registered with the tracking sink.
type Run struct {
	ID        string
	StartTime time.Time
}

// Evaluator scores responses and records results through a tracking sink.
type Evaluator struct {
	matcher *criteria.Matcher
	sink    *tracking.BestEffort
	logger  *slog.Logger
}

// New creates an Evaluator backed by a LangSmith client. A missing API key
// makes the whole evaluator unusable, so configuration errors surface here.
func New(cfg tracking.Config, logger *slog.Logger) (*Evaluator, error) {
	client, err := tracking.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracking client: %w", err)
	}
	return NewWithSink(client, logger), nil
}

// NewWithSink creates an Evaluator over an existing sink.
func NewWithSink(sink tracking.Sink, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{
		matcher: criteria.NewMatcher(),
		sink:    tracking.NewBestEffort(sink, logger),
		logger:  logger,
	}
}

// CreateRun registers a run for a test case with the tracking sink. Sink
// failures are logged, not returned, so evaluation never stalls on
// telemetry.
func (e *Evaluator) CreateRun(ctx context.Context, tc *testcase.TestCase) Run {
	run := Run{
		ID:        uuid.NewString(),
		StartTime: time.Now().UTC(),
	}
	e.sink.CreateRun(ctx, tracking.RunPayload{
		ID:      run.ID,
		Name:    fmt.Sprintf("evaluate_%s", tc.ID),
		RunType: "chain",
		Inputs: map[string]any{
			"request":      tc.Request,
			"request_type": string(tc.RequestType),
			"context":      tc.Context,
		},
		Tags:      []string{string(tc.RequestType), string(tc.Complexity)},
		StartTime: run.StartTime,
	})
	return run
}

// Score evaluates response against every criterion of tc, stores the
// response on the test case, and closes out the tracking run.
func (e *Evaluator) Score(ctx context.Context, run Run, tc *testcase.TestCase, response string, responseTime float64) (Evaluation, error) {
	if len(tc.SuccessCriteria) == 0 {
		return Evaluation{}, ErrNoCriteria
	}

	tc.ActualResponse = response

	results := make([]CriterionResult, 0, len(tc.SuccessCriteria))
	met := 0
	for _, criterion := range tc.SuccessCriteria {
		ok := e.matcher.Matches(response, criterion, tc)
		if ok {
			met++
		}
		results = append(results, CriterionResult{Criterion: criterion, Met: ok})
	}

	eval := Evaluation{
		TestCaseID:           tc.ID,
		SuccessRate:          float64(met) / float64(len(tc.SuccessCriteria)),
		CriteriaResults:      results,
		ResponseTime:         responseTime,
		RequiresManualReview: tc.Complexity == testcase.ComplexityComplex,
	}

	end := time.Now().UTC()
	e.sink.UpdateRun(ctx, run.ID, tracking.RunPatch{
		Outputs: map[string]any{
			"response":     response,
			"success_rate": eval.SuccessRate,
		},
		EndTime: &end,
	})

	if eval.RequiresManualReview {
		e.queueForReview(ctx, run, tc, eval)
	}

	e.logger.Debug("scored test case",
		"test_case", tc.ID,
		"success_rate", eval.SuccessRate,
		"manual_review", eval.RequiresManualReview)

	return eval, nil
}

// FailRun closes out a tracking run whose generation failed, recording the
// cause and an end time so the run never dangles open.
func (e *Evaluator) FailRun(ctx context.Context, run Run, cause error) {
	end := time.Now().UTC()
	e.sink.UpdateRun(ctx, run.ID, tracking.RunPatch{
		Error:   cause.Error(),
		EndTime: &end,
	})
}

// queueForReview files the case into the annotation dataset so a human can
// rate the response later.
func (e *Evaluator) queueForReview(ctx context.Context, run Run, tc *testcase.TestCase, eval Evaluation) {
	exampleID := e.sink.CreateExample(ctx, tracking.Example{
		Inputs: map[string]any{
			"test_case_id": tc.ID,
			"request":      tc.Request,
			"context":      tc.Context,
		},
		Outputs: map[string]any{
			"response":     tc.ActualResponse,
			"success_rate": eval.SuccessRate,
			"run_id":       run.ID,
		},
	})
	if exampleID == "" {
		return
	}
	e.logger.Info("queued case for manual review",
		"test_case", tc.ID,
		"example_id", exampleID)
}

// RecordManualEvaluation stores a human reviewer's verdict on the test case
// and forwards it to the tracking sink as feedback anchored to the run that
// produced the response. An empty runID leaves the feedback unanchored.
func (e *Evaluator) RecordManualEvaluation(ctx context.Context, tc *testcase.TestCase, rating float64, notes, evaluatorID, runID string) {
	now := time.Now().UTC()
	tc.HumanRating = &rating
	tc.ManualEvaluationNotes = notes
	tc.EvaluatorID = evaluatorID
	tc.EvaluationTimestamp = now

	e.sink.CreateFeedback(ctx, tracking.Feedback{
		RunID: runID,
		Key:   "human_rating",
		Score: &rating,
		Value: map[string]any{
			"test_case_id": tc.ID,
			"notes":        notes,
			"evaluator_id": evaluatorID,
			"timestamp":    now.Format(time.RFC3339),
		},
	})

	e.logger.Info("recorded manual evaluation",
		"test_case", tc.ID,
		"rating", rating,
		"evaluator", evaluatorID)
}
