package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/ticket-ai/outreach-eval/internal/server"
	"github.com/ticket-ai/outreach-eval/internal/suite"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

func registerEvaluationTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_test_cases
	listTool := mcp.NewTool("list_test_cases",
		mcp.WithDescription("List available evaluation test cases with metadata"),
	)
	s.AddTool(listTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListTestCases(ctx, request, sc)
	})

	// run_evaluation_suite
	runTool := mcp.NewTool("run_evaluation_suite",
		mcp.WithDescription("Run the evaluation suite: every test case is executed in its original phrasing plus formal, casual, and detailed variations, scored against its success criteria, and written to a results file."),
		mcp.WithString("case_ids",
			mcp.Description("Comma-separated test case IDs to run (default: all cases)"),
		),
		mcp.WithNumber("pacing_seconds",
			mcp.Description("Pause between executions in seconds (default: 1)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunEvaluationSuite(ctx, request, sc)
	})

	// get_results
	getResultsTool := mcp.NewTool("get_results",
		mcp.WithDescription("Retrieve results for past evaluation runs"),
		mcp.WithString("results_file",
			mcp.Description("Specific results file to retrieve (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getResultsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetResults(ctx, request, sc)
	})

	// record_review
	reviewTool := mcp.NewTool("record_review",
		mcp.WithDescription("Record a human reviewer's verdict on a test case response"),
		mcp.WithString("test_case",
			mcp.Required(),
			mcp.Description("Test case ID (e.g. 'SZR001')"),
		),
		mcp.WithNumber("rating",
			mcp.Required(),
			mcp.Description("Reviewer rating for the response"),
		),
		mcp.WithString("notes",
			mcp.Description("Free-form review notes"),
		),
		mcp.WithString("evaluator_id",
			mcp.Description("Identity of the reviewer"),
		),
		mcp.WithString("run_id",
			mcp.Description("Tracking run the reviewed response came from"),
		),
	)
	s.AddTool(reviewTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRecordReview(ctx, request, sc)
	})

	return nil
}

func handleListTestCases(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	type caseInfo struct {
		ID            string `json:"id"`
		RequestType   string `json:"request_type"`
		Request       string `json:"request"`
		Complexity    string `json:"complexity"`
		CriteriaCount int    `json:"criteria_count"`
	}

	infos := make([]caseInfo, 0, len(sc.Cases))
	for _, tc := range sc.Cases {
		infos = append(infos, caseInfo{
			ID:            tc.ID,
			RequestType:   string(tc.RequestType),
			Request:       tc.Request,
			Complexity:    string(tc.Complexity),
			CriteriaCount: len(tc.SuccessCriteria),
		})
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal test cases: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleRunEvaluationSuite(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	cases := sc.Cases
	if idsArg, ok := args["case_ids"].(string); ok && idsArg != "" {
		var selected []*testcase.TestCase
		for _, id := range strings.Split(idsArg, ",") {
			id = strings.TrimSpace(id)
			tc, err := testcase.Get(sc.Cases, id)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("unknown test case %q", id)), nil
			}
			selected = append(selected, tc)
		}
		cases = selected
	}

	runner := suite.NewRunner(sc.Generator, sc.Evaluator, nil)
	if pacing, ok := args["pacing_seconds"].(float64); ok && pacing >= 0 {
		runner.SetPacing(time.Duration(pacing * float64(time.Second)))
	}

	results := runner.RunAll(ctx, cases)
	summary := suite.Summarize(results)

	reportPath, err := suite.WriteReport(sc.OutputDir, results)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write results: %v", err)), nil
	}

	out := map[string]any{
		"summary":      summary,
		"results_file": reportPath,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleRecordReview(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	caseID, ok := args["test_case"].(string)
	if !ok || caseID == "" {
		return mcp.NewToolResultError("test_case is required"), nil
	}
	rating, ok := args["rating"].(float64)
	if !ok {
		return mcp.NewToolResultError("rating is required"), nil
	}
	notes, _ := args["notes"].(string)
	evaluatorID, _ := args["evaluator_id"].(string)
	runID, _ := args["run_id"].(string)

	tc, err := testcase.Get(sc.Cases, caseID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("unknown test case %q", caseID)), nil
	}

	sc.Evaluator.RecordManualEvaluation(ctx, tc, rating, notes, evaluatorID, runID)

	out := map[string]any{
		"test_case":    tc.ID,
		"rating":       rating,
		"evaluator_id": evaluatorID,
		"run_id":       runID,
		"recorded_at":  tc.EvaluationTimestamp.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal review: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
