package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticket-ai/outreach-eval/internal/evaluator"
	"github.com/ticket-ai/outreach-eval/internal/suite"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
	"github.com/ticket-ai/outreach-eval/internal/tracking"
)

func newRunCmd() *cobra.Command {
	var (
		endpoint  string
		apiKey    string
		model     string
		outputDir string
		casesDir  string
		pacing    time.Duration
		timeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run [case-id...]",
		Short: "Run the evaluation suite against the outreach agent",
		Long: `Execute evaluation test cases against the outreach agent. Every case runs in
its original phrasing plus formal, casual, and detailed variations; each
response is scored against the case's success criteria and complex cases are
queued for manual review.

Results are written to the output directory as a timestamped JSON report.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			cases, err := testcase.Load(casesDir)
			if err != nil {
				return fmt.Errorf("failed to load test cases: %w", err)
			}

			if len(args) > 0 {
				selected := make([]*testcase.TestCase, 0, len(args))
				for _, id := range args {
					tc, err := testcase.Get(cases, id)
					if err != nil {
						return err
					}
					selected = append(selected, tc)
				}
				cases = selected
			}

			eval, err := evaluator.New(tracking.ConfigFromEnv(), nil)
			if err != nil {
				return fmt.Errorf("failed to create evaluator (set LANGSMITH_API_KEY): %w", err)
			}

			generator, _ := newGeneratorFromFlags(endpoint, apiKey, model)

			r := suite.NewRunner(generator, eval, nil)
			r.SetPacing(pacing)
			r.SetProgressFunc(func(caseID, variation string, idx, total int) {
				fmt.Printf("\r  [%s/%s] Running case %d/%d...", caseID, variation, idx, total)
			})

			fmt.Printf("Test cases: %d\n", len(cases))
			for i, tc := range cases {
				fmt.Printf("  %d. %s (%s, %s)\n", i+1, tc.ID, tc.RequestType, tc.Complexity)
			}
			fmt.Println()

			results := r.RunAll(ctx, cases)
			summary := suite.Summarize(results)

			reportPath, err := suite.WriteReport(outputDir, results)
			if err != nil {
				return err
			}

			fmt.Printf("\n\nEvaluation complete.\n")
			fmt.Printf("Total tests: %d\n", summary.TotalTests)
			fmt.Printf("Successful: %d\n", summary.SuccessfulTests)
			fmt.Printf("Failed: %d\n", summary.FailedTests)
			fmt.Printf("Success rate: %s\n", summary.SuccessRate)
			fmt.Printf("Response times: avg %.2fs, max %.2fs, min %.2fs\n",
				summary.ResponseTimes.Average, summary.ResponseTimes.Max, summary.ResponseTimes.Min)
			fmt.Printf("Results: %s\n", reportPath)

			return nil
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "LLM API endpoint URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or set OPENAI_API_KEY)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: gpt-4o-mini)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for evaluation results")
	cmd.Flags().StringVar(&casesDir, "cases-dir", "", "External test case directory")
	cmd.Flags().DurationVar(&pacing, "pacing", time.Second, "Pause between executions")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m, 1h). 0 means no timeout")

	return cmd
}
