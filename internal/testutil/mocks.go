// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"sync"

	"github.com/ticket-ai/outreach-eval/internal/agent"
	"github.com/ticket-ai/outreach-eval/internal/tracking"
)

// MockGenerator is a configurable mock for agent.Generator used across test
// packages.
type MockGenerator struct {
	// Responses maps request text to canned responses.
	Responses map[string]string

	// DefaultResponse is returned when no matching key is found in Responses.
	DefaultResponse string

	// Err, when set, is returned from every Generate call.
	Err error

	// Calls tracks the number of Generate invocations.
	Calls int

	// LastRequest stores the most recent request for inspection.
	LastRequest agent.Request
}

func (m *MockGenerator) Generate(_ context.Context, req agent.Request) (string, error) {
	m.Calls++
	m.LastRequest = req

	if m.Err != nil {
		return "", m.Err
	}
	if resp, ok := m.Responses[req.Request]; ok {
		return resp, nil
	}
	if m.DefaultResponse != "" {
		return m.DefaultResponse, nil
	}
	return "mock response", nil
}

// MockSink records tracking calls for inspection. It is safe for concurrent
// use.
type MockSink struct {
	mu sync.Mutex

	// Err, when set, is returned from every call.
	Err error

	Runs      []tracking.RunPayload
	Patches   map[string]tracking.RunPatch
	Examples  []tracking.Example
	Feedbacks []tracking.Feedback
}

func (m *MockSink) CreateRun(_ context.Context, run tracking.RunPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Runs = append(m.Runs, run)
	return nil
}

func (m *MockSink) UpdateRun(_ context.Context, runID string, patch tracking.RunPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.Patches == nil {
		m.Patches = make(map[string]tracking.RunPatch)
	}
	m.Patches[runID] = patch
	return nil
}

func (m *MockSink) CreateExample(_ context.Context, ex tracking.Example) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Examples = append(m.Examples, ex)
	return "mock-example-id", nil
}

func (m *MockSink) CreateFeedback(_ context.Context, fb tracking.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Feedbacks = append(m.Feedbacks, fb)
	return nil
}
