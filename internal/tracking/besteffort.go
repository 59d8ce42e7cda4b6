package tracking

import (
	"context"
	"log/slog"
)

// BestEffort wraps a Sink so that telemetry failures never interrupt an
// evaluation. Errors are logged and discarded.
type BestEffort struct {
	sink   Sink
	logger *slog.Logger
}

// NewBestEffort wraps sink. A nil logger falls back to slog.Default.
func NewBestEffort(sink Sink, logger *slog.Logger) *BestEffort {
	if logger == nil {
		logger = slog.Default()
	}
	return &BestEffort{sink: sink, logger: logger}
}

// CreateRun registers a run, logging on failure.
func (b *BestEffort) CreateRun(ctx context.Context, run RunPayload) {
	if err := b.sink.CreateRun(ctx, run); err != nil {
		b.logger.Warn("failed to create tracking run",
			"run_id", run.ID,
			"error", err)
	}
}

// UpdateRun patches a run, logging on failure.
func (b *BestEffort) UpdateRun(ctx context.Context, runID string, patch RunPatch) {
	if err := b.sink.UpdateRun(ctx, runID, patch); err != nil {
		b.logger.Warn("failed to update tracking run",
			"run_id", runID,
			"error", err)
	}
}

// CreateExample adds an example, returning an empty ID on failure.
func (b *BestEffort) CreateExample(ctx context.Context, ex Example) string {
	id, err := b.sink.CreateExample(ctx, ex)
	if err != nil {
		b.logger.Warn("failed to create tracking example",
			"dataset", ex.DatasetName,
			"error", err)
		return ""
	}
	return id
}

// CreateFeedback records feedback, logging on failure.
func (b *BestEffort) CreateFeedback(ctx context.Context, fb Feedback) {
	if err := b.sink.CreateFeedback(ctx, fb); err != nil {
		b.logger.Warn("failed to create tracking feedback",
			"key", fb.Key,
			"error", err)
	}
}
