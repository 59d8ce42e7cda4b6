package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ticket-ai/outreach-eval/internal/server"
)

func handleGetResults(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	resultsFile, _ := args["results_file"].(string)

	if resultsFile != "" {
		return getResultsFile(sc.OutputDir, resultsFile)
	}
	return listResultFiles(sc.OutputDir)
}

func listResultFiles(outputDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read results directory: %v", err)), nil
	}

	var files []map[string]any
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "evaluation_results_") || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}

		entry := map[string]any{"file": e.Name()}
		if data, err := os.ReadFile(filepath.Join(outputDir, e.Name())); err == nil {
			var report struct {
				Summary any `json:"summary"`
			}
			if json.Unmarshal(data, &report) == nil {
				entry["summary"] = report.Summary
			}
		}
		files = append(files, entry)
	}

	data, err := json.MarshalIndent(files, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getResultsFile(outputDir, resultsFile string) (*mcp.CallToolResult, error) {
	path, err := resolveResultFilePath(outputDir, resultsFile)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid results file: %v", err)), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("results file %q not found: %v", resultsFile, err)), nil
	}

	// Re-indent so the tool output is readable regardless of how the file
	// was written.
	var report any
	if err := json.Unmarshal(data, &report); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to parse results file: %v", err)), nil
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
