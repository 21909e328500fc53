package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPErrorAdapter_StatusCodeFor(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, http.StatusOK},
		{"validation", ValidationError("bad locale").Build(), http.StatusBadRequest},
		{"not found", NotFoundError("missing").Build(), http.StatusNotFound},
		{"security", SecurityError("blocked").Build(), http.StatusForbidden},
		{"render", RenderError("pipeline failed").Build(), http.StatusUnprocessableEntity},
		{"transport", TransportError("nats down").Build(), http.StatusBadGateway},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.StatusCodeFor(tt.err))
		})
	}
}

func TestHTTPErrorAdapter_WriteErrorResponse(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/versions/v1/docs/missing", nil)

	adapter.WriteErrorResponse(rec, req, NotFoundError("document not found").WithContext("slug", "missing").Build())

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var payload HTTPErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "document not found", payload.Error)
	assert.Equal(t, "not_found", payload.Code)
	assert.Equal(t, "missing", payload.Details["slug"])
	assert.False(t, payload.Retryable)
}

func TestCLIErrorAdapter(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	adapter.out = &out

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"nil", nil, 0},
		{"validation", ValidationError("invalid document").Build(), 2},
		{"not found", NotFoundError("missing").Build(), 3},
		{"security", SecurityError("dangerous pattern").Build(), 4},
		{"config", ConfigError("bad config").Build(), 7},
		{"internal", InternalError("oops").Build(), 10},
		{"unclassified", errors.New("plain"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, adapter.ExitCodeFor(tt.err))
		})
	}

	code := adapter.HandleError(ConfigError("bad config").Build())
	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "Error: bad config")

	assert.Equal(t, "Internal error occurred (use -v for details)", adapter.FormatError(InternalError("oops").Build()))
}
