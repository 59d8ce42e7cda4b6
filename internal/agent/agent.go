// Package agent generates personalized customer outreach messages for the
// clothing CRM. It assembles customer context from the relational store and
// similar past interactions from the vector index, then drafts a reply
// through a chat completion client.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const systemPromptTemplate = `You are an intelligent customer engagement agent for a clothing CRM system.
Your task is to generate personalized messages that consider the customer's full context.

Guidelines:
- Maintain a professional yet warm tone
- Include specific details from the customer's history
- Reference past interactions when relevant
- Ensure the message aligns with the brand voice
- Consider the customer's preferences and past engagement patterns

Context Sections:
%s

Similar Successful Interactions:
%s`

// Request describes a single outreach generation request.
type Request struct {
	CustomerID string
	Request    string

	// Context carries pre-assembled context, e.g. from an evaluation test
	// case. When set it takes precedence over the live customer store.
	Context map[string]any
}

// Generator produces an outreach message for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ContextProvider supplies formatted customer context from the CRM store.
type ContextProvider interface {
	CustomerContext(ctx context.Context, customerID string) (string, error)
}

// SimilarityProvider retrieves similar successful interactions for a query.
type SimilarityProvider interface {
	SimilarInteractions(ctx context.Context, customerID, query string, k int) ([]string, error)
}

// InteractionRecorder persists generated messages for future retrieval.
type InteractionRecorder interface {
	RecordInteraction(ctx context.Context, customerID, message string, success bool) error
}

// Agent implements Generator over a chat completion client with optional
// context, similarity, and recording backends.
type Agent struct {
	client   Client
	contexts ContextProvider
	similar  SimilarityProvider
	recorder InteractionRecorder
	logger   *slog.Logger
}

// New creates an Agent. The context, similarity, and recorder backends are
// optional; a nil backend degrades to a placeholder section in the prompt.
func New(client Client, contexts ContextProvider, similar SimilarityProvider, recorder InteractionRecorder, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		client:   client,
		contexts: contexts,
		similar:  similar,
		recorder: recorder,
		logger:   logger,
	}
}

// Generate drafts an outreach message for req. The generated message is
// recorded as an interaction on success; recording failures are logged and
// do not fail the generation.
func (a *Agent) Generate(ctx context.Context, req Request) (string, error) {
	dbContext := a.customerContext(ctx, req)
	similar := a.similarInteractions(ctx, req)

	system := fmt.Sprintf(systemPromptTemplate, dbContext, similar)

	response, err := a.client.Complete(ctx, system, req.Request)
	if err != nil {
		a.record(ctx, req.CustomerID, err.Error(), false)
		return "", fmt.Errorf("failed to generate outreach: %w", err)
	}

	a.record(ctx, req.CustomerID, response, true)
	return response, nil
}

func (a *Agent) customerContext(ctx context.Context, req Request) string {
	if len(req.Context) > 0 {
		return formatContext(req.Context)
	}
	if a.contexts == nil || req.CustomerID == "" {
		return "No customer data available"
	}
	dbContext, err := a.contexts.CustomerContext(ctx, req.CustomerID)
	if err != nil {
		a.logger.Warn("failed to fetch customer context",
			"customer_id", req.CustomerID,
			"error", err)
		return "No customer data available"
	}
	return dbContext
}

func (a *Agent) similarInteractions(ctx context.Context, req Request) string {
	if a.similar == nil || req.CustomerID == "" {
		return "No similar interactions found"
	}
	results, err := a.similar.SimilarInteractions(ctx, req.CustomerID, req.Request, 3)
	if err != nil || len(results) == 0 {
		if err != nil {
			a.logger.Warn("failed to find similar interactions",
				"customer_id", req.CustomerID,
				"error", err)
		}
		return "No similar interactions found"
	}
	return strings.Join(results, "\n")
}

func (a *Agent) record(ctx context.Context, customerID, message string, success bool) {
	if a.recorder == nil || customerID == "" {
		return
	}
	if err := a.recorder.RecordInteraction(ctx, customerID, message, success); err != nil {
		a.logger.Warn("failed to record interaction",
			"customer_id", customerID,
			"error", err)
	}
}

// formatContext renders a context map as stable key/value lines so prompts
// are reproducible across runs.
func formatContext(context map[string]any) string {
	keys := make([]string, 0, len(context))
	for k := range context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, context[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
