package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quorumkit/quorum/pkg/quorum"
)

// stubComparer returns a canned result and records what it was asked.
type stubComparer struct {
	result quorum.ComparisonResult
	err    error

	prompt string
	specs  []quorum.ModelSpec
	mode   quorum.Mode
}

func (s *stubComparer) Run(ctx context.Context, prompt string, specs []quorum.ModelSpec, mode quorum.Mode) (quorum.ComparisonResult, error) {
	s.prompt = prompt
	s.specs = specs
	s.mode = mode
	return s.result, s.err
}

func successResult() quorum.ComparisonResult {
	return quorum.ComparisonResult{
		Result:      "the answer",
		Method:      quorum.MethodSelect,
		Success:     true,
		Explanation: "clearest response",
		Responses: []quorum.ModelResponse{
			{Provider: "openai", Model: "m1", Response: "the answer", Success: true},
			{Provider: "claude", Model: "m2", Success: false, Error: "timed out", ErrorCategory: "timeout"},
		},
		Best:    &quorum.ModelResponse{Provider: "openai", Model: "m1", Response: "the answer", Success: true},
		Verdict: &quorum.JudgeVerdict{Kind: quorum.VerdictSelection, Method: quorum.MethodSelect, Explanation: "clearest response"},
		Elapsed: 1200 * time.Millisecond,
	}
}

func postCompare(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/compare", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleCompare(t *testing.T) {
	stub := &stubComparer{result: successResult()}
	srv := New(stub, DefaultConfig())

	rec := postCompare(t, srv, `{"prompt": "what is a monad?", "models": {"openai": "", "claude": "claude-3-opus-latest"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "the answer", resp.Result)
	assert.Equal(t, quorum.MethodSelect, resp.Method)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(1200), resp.ElapsedMs)
	assert.Empty(t, resp.Responses)
	assert.Nil(t, resp.Verdict)

	assert.Equal(t, "what is a monad?", stub.prompt)
	assert.Equal(t, quorum.ModeSelect, stub.mode)
	require.Len(t, stub.specs, 2)
	assert.Equal(t, "openai", stub.specs[0].Provider)
	assert.Equal(t, "claude", stub.specs[1].Provider)
}

func TestHandleCompareIncludeDetails(t *testing.T) {
	stub := &stubComparer{result: successResult()}
	srv := New(stub, DefaultConfig())

	rec := postCompare(t, srv, `{"prompt": "q", "include_details": true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp compareResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Responses, 2)
	assert.Equal(t, "timeout", resp.Responses[1].ErrorCategory)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "openai", resp.Best.Provider)
	require.NotNil(t, resp.Verdict)
}

func TestHandleCompareBlendMode(t *testing.T) {
	stub := &stubComparer{result: successResult()}
	srv := New(stub, DefaultConfig())

	rec := postCompare(t, srv, `{"prompt": "q", "blend": true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, quorum.ModeBlend, stub.mode)
}

func TestHandleCompareRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed json", `{"prompt": `, http.StatusBadRequest},
		{"unknown provider", `{"prompt": "q", "models": {"mystery": "x"}}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(&stubComparer{result: successResult()}, DefaultConfig())
			rec := postCompare(t, srv, tt.body)
			assert.Equal(t, tt.want, rec.Code)

			var resp errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "invalid_request", resp.Error.Type)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestHandleCompareEmptyPrompt(t *testing.T) {
	stub := &stubComparer{err: quorum.ErrEmptyPrompt}
	srv := New(stub, DefaultConfig())

	rec := postCompare(t, srv, `{"prompt": ""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleCompareMethodNotAllowed(t *testing.T) {
	srv := New(&stubComparer{}, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/compare", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleModels(t *testing.T) {
	srv := New(&stubComparer{}, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp modelsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, quorum.CatalogOrder(), resp.Order)
	assert.Equal(t, quorum.DefaultJudgeProvider, resp.JudgeDefault.Provider)
	for _, name := range resp.Order {
		assert.Contains(t, resp.Models, name)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := New(&stubComparer{}, DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
