package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "ok", statusLabel(true))
	assert.Equal(t, "error", statusLabel(false))
}

func TestEnsureRegisteredIsIdempotent(t *testing.T) {
	// MustRegister panics on duplicates; repeated calls must not re-register
	EnsureRegistered()
	EnsureRegistered()
}

func TestRecorders(t *testing.T) {
	EnsureRegistered()

	RecordQueueEnqueue("mcp", 2)
	SetQueueSize("mcp", 1)
	RecordQueueCompletion("mcp", 5*time.Millisecond, true, 0)
	RecordQueueCompletion("mcp", 5*time.Millisecond, false, 0)
	SetActiveThreads(3)
	RecordCheckpointSave(time.Millisecond)
	RecordCheckpointLoad(time.Millisecond)
	RecordModelCall("anthropic", 80*time.Millisecond, true)
	RecordToolExecution("search_wikipedia", 30*time.Millisecond, false)
	RecordTurn(200*time.Millisecond, true)
}

func TestMetricsHandler(t *testing.T) {
	RecordModelCall("anthropic", time.Millisecond, true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "model_call_total")
	assert.Contains(t, body, "turn_duration_seconds")
}
