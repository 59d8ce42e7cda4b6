package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

func newListCmd() *cobra.Command {
	var casesDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available test cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := testcase.Load(casesDir)
			if err != nil {
				return fmt.Errorf("failed to load test cases: %w", err)
			}

			if len(cases) == 0 {
				fmt.Println("No test cases found.")
				return nil
			}

			fmt.Printf("Available test cases:\n\n")
			for _, tc := range cases {
				fmt.Printf("  - %s\n", tc.ID)
				fmt.Printf("    Type: %s\n", tc.RequestType)
				fmt.Printf("    Complexity: %s\n", tc.Complexity)
				fmt.Printf("    Request: %s\n", tc.Request)
				fmt.Printf("    Criteria: %d\n\n", len(tc.SuccessCriteria))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&casesDir, "cases-dir", "", "External test case directory")

	return cmd
}
