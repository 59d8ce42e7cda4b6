package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/ticket-ai/outreach-eval/internal/agent"
	"github.com/ticket-ai/outreach-eval/internal/store"
	"github.com/ticket-ai/outreach-eval/internal/vector"
)

// newGeneratorFromFlags builds the outreach generator from common CLI flags.
// It falls back to the OPENAI_API_KEY environment variable when no explicit
// key is provided, and wires the CRM store and vector index when
// DATABASE_URL is set. The returned store is nil when no database is
// configured.
func newGeneratorFromFlags(endpoint, apiKey, model string) (agent.Generator, *store.Store) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}

	var opts []agent.Option
	if endpoint != "" {
		opts = append(opts, agent.WithBaseURL(endpoint))
	}
	if apiKey != "" {
		opts = append(opts, agent.WithAPIKey(apiKey))
	}
	if model != "" {
		opts = append(opts, agent.WithModel(model))
	}
	client := agent.NewOpenAIClient(opts...)

	var crm *store.Store
	var contexts agent.ContextProvider
	var similar agent.SimilarityProvider
	var recorder agent.InteractionRecorder

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		var err error
		crm, err = store.New(store.Config{DSN: dsn})
		if err != nil {
			slog.Warn("CRM store not available", "error", err)
			crm = nil
		} else {
			contexts = crm
		}

		index, err := vector.New(vector.Config{DSN: dsn}, vector.NewOpenAIEmbedder(apiKey, endpoint))
		if err != nil {
			slog.Warn("vector index not available", "error", err)
		} else {
			similar = index
		}

		if crm != nil {
			recorder = &interactionRecorder{store: crm, index: index}
		}
	}

	return agent.New(client, contexts, similar, recorder, nil), crm
}

// interactionRecorder persists generated messages in both the CRM store and
// the vector index so future context assembly can retrieve them.
type interactionRecorder struct {
	store *store.Store
	index *vector.Index
}

func (r *interactionRecorder) RecordInteraction(ctx context.Context, customerID, message string, success bool) error {
	if err := r.store.RecordInteraction(ctx, customerID, message, success); err != nil {
		return err
	}
	if r.index != nil {
		return r.index.AddInteraction(ctx, customerID, message, success)
	}
	return nil
}
