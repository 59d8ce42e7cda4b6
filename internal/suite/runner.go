// Package suite orchestrates evaluation runs: every test case is executed in
// its original phrasing plus a set of phrasing variations, scored, and
// summarized into a timestamped results artifact.
package suite

import (
	"context"
	"log/slog"
	"time"

	"github.com/ticket-ai/outreach-eval/internal/agent"
	"github.com/ticket-ai/outreach-eval/internal/evaluator"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

const (
	// VariationOriginal marks results for the unmodified request.
	VariationOriginal = "original"

	defaultPacing     = time.Second
	defaultGenTimeout = 60 * time.Second
)

// ProgressFunc is called to report progress during suite execution.
type ProgressFunc func(caseID, variation string, index, total int)

// CaseResult records the outcome of one test case execution.
type CaseResult struct {
	TestCase             string                      `json:"test_case"`
	Variation            string                      `json:"variation"`
	Response             string                      `json:"response,omitempty"`
	ResponseTime         float64                     `json:"response_time"`
	SuccessRate          float64                     `json:"success_rate"`
	CriteriaResults      []evaluator.CriterionResult `json:"criteria_results,omitempty"`
	RequiresManualReview bool                        `json:"requires_manual_review"`
	Error                string                      `json:"error,omitempty"`
}

// Runner executes test suites against an outreach generator.
type Runner struct {
	generator  agent.Generator
	evaluator  *evaluator.Evaluator
	pacing     time.Duration
	genTimeout time.Duration
	progress   ProgressFunc
	logger     *slog.Logger
}

// NewRunner creates a suite runner with default pacing and generation
// timeout.
func NewRunner(generator agent.Generator, eval *evaluator.Evaluator, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		generator:  generator,
		evaluator:  eval,
		pacing:     defaultPacing,
		genTimeout: defaultGenTimeout,
		logger:     logger,
	}
}

// SetPacing overrides the pause between executions. Zero disables pacing.
func (r *Runner) SetPacing(d time.Duration) {
	r.pacing = d
}

// SetGenTimeout overrides the per-case generation timeout.
func (r *Runner) SetGenTimeout(d time.Duration) {
	r.genTimeout = d
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// RunAll executes every case in its original phrasing plus all variations.
// Execution errors are recorded in the corresponding result and the suite
// continues; cancellation returns the results collected so far.
func (r *Runner) RunAll(ctx context.Context, cases []*testcase.TestCase) []CaseResult {
	variations := Variations()
	total := len(cases) * (1 + len(variations))

	results := make([]CaseResult, 0, total)
	index := 0

	type execution struct {
		name string
		tc   *testcase.TestCase
	}

	for _, tc := range cases {
		// Every execution scores its own clone; the caller's instances are
		// never mutated, so the same registry can back repeated runs.
		executions := make([]execution, 0, 1+len(variations))
		executions = append(executions, execution{VariationOriginal, tc.Clone()})

		for _, v := range variations {
			clone := tc.Clone()
			clone.Request = v.Apply(tc.Request)
			executions = append(executions, execution{v.Name, clone})
		}

		for _, exec := range executions {
			if err := ctx.Err(); err != nil {
				r.logger.Warn("suite run cancelled",
					"completed", len(results),
					"total", total)
				return results
			}

			index++
			if r.progress != nil {
				r.progress(exec.tc.ID, exec.name, index, total)
			}

			results = append(results, r.runCase(ctx, exec.tc, exec.name))

			if r.pacing > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(r.pacing):
				}
			}
		}
	}

	return results
}

// runCase generates a response for one case and scores it.
func (r *Runner) runCase(ctx context.Context, tc *testcase.TestCase, variation string) CaseResult {
	result := CaseResult{
		TestCase:  tc.ID,
		Variation: variation,
	}

	run := r.evaluator.CreateRun(ctx, tc)

	genCtx, cancel := context.WithTimeout(ctx, r.genTimeout)
	defer cancel()

	start := time.Now()
	response, err := r.generator.Generate(genCtx, agent.Request{
		CustomerID: tc.CustomerID(),
		Request:    tc.Request,
		Context:    tc.Context,
	})
	if err != nil {
		r.logger.Error("outreach generation failed",
			"test_case", tc.ID,
			"variation", variation,
			"error", err)
		r.evaluator.FailRun(ctx, run, err)
		result.Error = err.Error()
		return result
	}
	result.ResponseTime = time.Since(start).Seconds()
	result.Response = response

	eval, err := r.evaluator.Score(ctx, run, tc, response, result.ResponseTime)
	if err != nil {
		r.logger.Error("scoring failed",
			"test_case", tc.ID,
			"variation", variation,
			"error", err)
		result.Error = err.Error()
		return result
	}

	result.SuccessRate = eval.SuccessRate
	result.CriteriaResults = eval.CriteriaResults
	result.RequiresManualReview = eval.RequiresManualReview

	r.logger.Info("case evaluated",
		"test_case", tc.ID,
		"variation", variation,
		"success_rate", eval.SuccessRate,
		"response_time", result.ResponseTime)

	return result
}
