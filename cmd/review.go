package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticket-ai/outreach-eval/internal/evaluator"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
	"github.com/ticket-ai/outreach-eval/internal/tracking"
)

func newReviewCmd() *cobra.Command {
	var (
		rating      float64
		notes       string
		evaluatorID string
		runID       string
		casesDir    string
	)

	cmd := &cobra.Command{
		Use:   "review <case-id>",
		Short: "Record a human review verdict for a test case",
		Long: `Record a reviewer's rating and notes for a test case response and forward
the verdict to the tracking backend as feedback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := testcase.Load(casesDir)
			if err != nil {
				return fmt.Errorf("failed to load test cases: %w", err)
			}

			tc, err := testcase.Get(cases, args[0])
			if err != nil {
				return err
			}

			eval, err := evaluator.New(tracking.ConfigFromEnv(), nil)
			if err != nil {
				return fmt.Errorf("failed to create evaluator (set LANGSMITH_API_KEY): %w", err)
			}

			eval.RecordManualEvaluation(cmd.Context(), tc, rating, notes, evaluatorID, runID)

			fmt.Printf("Recorded review for %s\n", tc.ID)
			fmt.Printf("  Rating: %.1f\n", rating)
			if notes != "" {
				fmt.Printf("  Notes: %s\n", notes)
			}
			if evaluatorID != "" {
				fmt.Printf("  Evaluator: %s\n", evaluatorID)
			}
			if runID != "" {
				fmt.Printf("  Run: %s\n", runID)
			}

			return nil
		},
	}

	cmd.Flags().Float64Var(&rating, "rating", 0, "Reviewer rating for the response (conventionally 0-5)")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form review notes")
	cmd.Flags().StringVar(&evaluatorID, "evaluator", "", "Identity of the reviewer")
	cmd.Flags().StringVar(&runID, "run-id", "", "Tracking run the reviewed response came from")
	cmd.Flags().StringVar(&casesDir, "cases-dir", "", "External test case directory")
	_ = cmd.MarkFlagRequired("rating")

	return cmd
}
