package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	response   string
	err        error
	lastSystem string
	lastUser   string
}

func (f *fakeClient) Complete(_ context.Context, system, user string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeContexts struct {
	context string
	err     error
}

func (f *fakeContexts) CustomerContext(context.Context, string) (string, error) {
	return f.context, f.err
}

type fakeSimilar struct {
	results []string
	err     error
}

func (f *fakeSimilar) SimilarInteractions(context.Context, string, string, int) ([]string, error) {
	return f.results, f.err
}

type fakeRecorder struct {
	messages  []string
	successes []bool
	err       error
}

func (f *fakeRecorder) RecordInteraction(_ context.Context, _ string, message string, success bool) error {
	f.messages = append(f.messages, message)
	f.successes = append(f.successes, success)
	return f.err
}

func TestGenerateUsesProviderContext(t *testing.T) {
	client := &fakeClient{response: "Hello Sarah, your order shipped."}
	contexts := &fakeContexts{context: "Customer Profile:\n- Name: Sarah Chen"}
	similar := &fakeSimilar{results: []string{"Past message A", "Past message B"}}
	recorder := &fakeRecorder{}

	a := New(client, contexts, similar, recorder, nil)

	response, err := a.Generate(context.Background(), Request{
		CustomerID: "cust-1",
		Request:    "Follow up on order status",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello Sarah, your order shipped.", response)

	assert.Contains(t, client.lastSystem, "Sarah Chen")
	assert.Contains(t, client.lastSystem, "Past message A\nPast message B")
	assert.Equal(t, "Follow up on order status", client.lastUser)

	require.Len(t, recorder.messages, 1)
	assert.Equal(t, response, recorder.messages[0])
	assert.True(t, recorder.successes[0])
}

func TestGeneratePrefersInlineContext(t *testing.T) {
	client := &fakeClient{response: "ok"}
	contexts := &fakeContexts{context: "live db context"}

	a := New(client, contexts, nil, nil, nil)

	_, err := a.Generate(context.Background(), Request{
		CustomerID: "cust-1",
		Request:    "Update inventory",
		Context: map[string]any{
			"product_id":    "DNM32-BLU",
			"current_stock": 10,
		},
	})
	require.NoError(t, err)

	assert.Contains(t, client.lastSystem, "- product_id: DNM32-BLU")
	assert.Contains(t, client.lastSystem, "- current_stock: 10")
	assert.NotContains(t, client.lastSystem, "live db context")
}

func TestGenerateDegradesWithoutBackends(t *testing.T) {
	client := &fakeClient{response: "ok"}
	a := New(client, nil, nil, nil, nil)

	_, err := a.Generate(context.Background(), Request{Request: "anything"})
	require.NoError(t, err)

	assert.Contains(t, client.lastSystem, "No customer data available")
	assert.Contains(t, client.lastSystem, "No similar interactions found")
}

func TestGenerateDegradesOnProviderErrors(t *testing.T) {
	client := &fakeClient{response: "ok"}
	contexts := &fakeContexts{err: fmt.Errorf("db down")}
	similar := &fakeSimilar{err: fmt.Errorf("index down")}

	a := New(client, contexts, similar, nil, nil)

	_, err := a.Generate(context.Background(), Request{CustomerID: "cust-1", Request: "hi"})
	require.NoError(t, err)

	assert.Contains(t, client.lastSystem, "No customer data available")
	assert.Contains(t, client.lastSystem, "No similar interactions found")
}

func TestGenerateRecordsFailures(t *testing.T) {
	client := &fakeClient{err: fmt.Errorf("model unavailable")}
	recorder := &fakeRecorder{}

	a := New(client, nil, nil, recorder, nil)

	_, err := a.Generate(context.Background(), Request{CustomerID: "cust-1", Request: "hi"})
	require.Error(t, err)

	require.Len(t, recorder.successes, 1)
	assert.False(t, recorder.successes[0])
}

func TestGenerateSurvivesRecorderFailure(t *testing.T) {
	client := &fakeClient{response: "ok"}
	recorder := &fakeRecorder{err: fmt.Errorf("insert failed")}

	a := New(client, nil, nil, recorder, nil)

	response, err := a.Generate(context.Background(), Request{CustomerID: "cust-1", Request: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", response)
}

func TestNewOpenAIClientOptions(t *testing.T) {
	client := NewOpenAIClient(
		WithBaseURL("http://localhost:8000/v1"),
		WithAPIKey("test-key"),
		WithModel("gpt-4o"),
		WithTemperature(0.2),
	)
	require.NotNil(t, client)
	assert.Equal(t, "gpt-4o", client.model)
	assert.Equal(t, 0.2, client.temperature)
}
