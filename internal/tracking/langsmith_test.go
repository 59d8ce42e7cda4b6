package tracking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, client.apiURL)
	assert.Equal(t, DefaultProject, client.project)
	assert.Equal(t, DefaultDataset, client.dataset)
}

func TestCreateRunSendsAPIKeyAndProject(t *testing.T) {
	var gotHeader string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/runs", r.URL.Path)
		gotHeader = r.Header.Get("x-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", APIURL: server.URL})
	require.NoError(t, err)

	err = client.CreateRun(context.Background(), RunPayload{
		ID:        "run-1",
		Name:      "evaluate_INV001",
		RunType:   "chain",
		StartTime: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotHeader)
	assert.Equal(t, DefaultProject, gotBody["session_name"])
	assert.Equal(t, "run-1", gotBody["id"])
}

func TestUpdateRunPatchesByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/runs/run-42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", APIURL: server.URL})
	require.NoError(t, err)

	end := time.Now().UTC()
	err = client.UpdateRun(context.Background(), "run-42", RunPatch{
		Outputs: map[string]any{"response": "done"},
		EndTime: &end,
	})
	require.NoError(t, err)
}

func TestCreateExampleReturnsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/examples", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultDataset, body["dataset_name"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"example-7"}`))
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", APIURL: server.URL})
	require.NoError(t, err)

	id, err := client.CreateExample(context.Background(), Example{
		Inputs: map[string]any{"request": "check stock"},
	})
	require.NoError(t, err)
	assert.Equal(t, "example-7", id)
}

func TestErrorStatusIsReported(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "bad-key", APIURL: server.URL})
	require.NoError(t, err)

	err = client.CreateFeedback(context.Background(), Feedback{Key: "human_rating"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

type failingSink struct{}

func (failingSink) CreateRun(context.Context, RunPayload) error { return assert.AnError }
func (failingSink) UpdateRun(context.Context, string, RunPatch) error {
	return assert.AnError
}
func (failingSink) CreateExample(context.Context, Example) (string, error) {
	return "", assert.AnError
}
func (failingSink) CreateFeedback(context.Context, Feedback) error { return assert.AnError }

func TestBestEffortSwallowsErrors(t *testing.T) {
	be := NewBestEffort(failingSink{}, nil)
	ctx := context.Background()

	// None of these should panic or propagate the sink failure.
	be.CreateRun(ctx, RunPayload{ID: "run-1"})
	be.UpdateRun(ctx, "run-1", RunPatch{})
	id := be.CreateExample(ctx, Example{})
	assert.Empty(t, id)
	be.CreateFeedback(ctx, Feedback{Key: "human_rating"})
}
