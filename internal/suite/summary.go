package suite

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ResponseTimes aggregates response time statistics across a run. Results
// that errored before a response arrived count as zero.
type ResponseTimes struct {
	Average float64 `json:"average"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// Summary is the aggregate report for a suite run.
type Summary struct {
	TotalTests      int           `json:"total_tests"`
	SuccessfulTests int           `json:"successful_tests"`
	FailedTests     int           `json:"failed_tests"`
	SuccessRate     string        `json:"success_rate"`
	ResponseTimes   ResponseTimes `json:"response_times"`
}

// Report is the full results artifact written after a run.
type Report struct {
	Timestamp time.Time    `json:"timestamp"`
	Summary   Summary      `json:"summary"`
	Results   []CaseResult `json:"results"`
}

// Summarize aggregates per-case results into a run summary. A test counts
// as successful when its execution produced no error.
func Summarize(results []CaseResult) Summary {
	summary := Summary{TotalTests: len(results)}

	if len(results) == 0 {
		summary.SuccessRate = "0.0%"
		return summary
	}

	var sum float64
	min := results[0].ResponseTime
	max := results[0].ResponseTime

	for _, r := range results {
		if r.Error == "" {
			summary.SuccessfulTests++
		}
		sum += r.ResponseTime
		if r.ResponseTime < min {
			min = r.ResponseTime
		}
		if r.ResponseTime > max {
			max = r.ResponseTime
		}
	}

	summary.FailedTests = summary.TotalTests - summary.SuccessfulTests
	summary.SuccessRate = fmt.Sprintf("%.1f%%", float64(summary.SuccessfulTests)/float64(summary.TotalTests)*100)
	summary.ResponseTimes = ResponseTimes{
		Average: sum / float64(len(results)),
		Max:     max,
		Min:     min,
	}

	return summary
}

// WriteReport writes the summary and per-case results to a timestamped JSON
// file in dir and returns the file path.
func WriteReport(dir string, results []CaseResult) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	now := time.Now()
	report := Report{
		Timestamp: now,
		Summary:   Summarize(results),
		Results:   results,
	}

	data, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("evaluation_results_%s.json", now.Format("20060102_150405")))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write results: %w", err)
	}
	return path, nil
}
