package server

import (
	"github.com/ticket-ai/outreach-eval/internal/agent"
	"github.com/ticket-ai/outreach-eval/internal/evaluator"
	"github.com/ticket-ai/outreach-eval/internal/mailer"
	"github.com/ticket-ai/outreach-eval/internal/store"
	"github.com/ticket-ai/outreach-eval/internal/testcase"
)

// ServerContext holds shared dependencies for MCP tool handlers.
type ServerContext struct {
	Generator agent.Generator
	Evaluator *evaluator.Evaluator
	Cases     []*testcase.TestCase
	Mailer    *mailer.Mailer // optional, enables email delivery of outreach
	Store     *store.Store   // optional, enables the outbound email log
	OutputDir string
	CasesDir  string // external test case directory (optional)
}
