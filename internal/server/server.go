// Package server exposes the comparison pipeline over HTTP: a JSON
// comparison endpoint, the model catalog, health, and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quorumkit/quorum/pkg/quorum"
)

// Comparer runs one comparison. *quorum.Engine satisfies it; tests use a
// stub.
type Comparer interface {
	Run(ctx context.Context, prompt string, specs []quorum.ModelSpec, mode quorum.Mode) (quorum.ComparisonResult, error)
}

// Config holds the HTTP server configuration.
type Config struct {
	Addr            string
	MaxBodySize     int64
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the stock server configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		MaxBodySize:     1 << 20,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server routes comparison requests to the engine and serializes results.
type Server struct {
	engine Comparer
	mux    *http.ServeMux
	config Config
}

// New creates a Server over the given engine.
func New(engine Comparer, cfg Config) *Server {
	s := &Server{
		engine: engine,
		mux:    http.NewServeMux(),
		config: cfg,
	}

	s.mux.HandleFunc("/compare", s.handleCompare)
	s.mux.HandleFunc("/models", s.handleModels)
	s.mux.HandleFunc("/healthz", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Handler returns the http.Handler for this server, for integration with
// an http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.config.Addr,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.config.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// compareRequest is the POST /compare payload. Models maps provider name
// to model ID; an empty map selects the default comparison set, an empty
// model string selects that provider's default model.
type compareRequest struct {
	Prompt         string            `json:"prompt"`
	Models         map[string]string `json:"models,omitempty"`
	Blend          bool              `json:"blend,omitempty"`
	IncludeDetails bool              `json:"include_details,omitempty"`
}

// compareResponse is the POST /compare reply. Responses and Verdict are
// only populated when the request asked for details.
type compareResponse struct {
	Result      string                 `json:"result"`
	Method      quorum.Method          `json:"method"`
	Success     bool                   `json:"success"`
	Explanation string                 `json:"explanation"`
	Weights     []float64              `json:"weights,omitempty"`
	ElapsedMs   int64                  `json:"elapsed_ms"`
	Best        *quorum.ModelResponse  `json:"best_response,omitempty"`
	Responses   []quorum.ModelResponse `json:"responses,omitempty"`
	Verdict     *quorum.JudgeVerdict   `json:"verdict,omitempty"`
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		writeError(w, http.StatusUnsupportedMediaType, "invalid_request", "Content-Type must be application/json")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodySize)

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}

	var specs []quorum.ModelSpec
	if len(req.Models) > 0 {
		var err error
		specs, err = quorum.SpecsFromMap(req.Models)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
	}

	mode := quorum.ModeSelect
	if req.Blend {
		mode = quorum.ModeBlend
	}

	result, err := s.engine.Run(r.Context(), req.Prompt, specs, mode)
	if err != nil {
		status := http.StatusInternalServerError
		errType := "server_error"
		if errors.Is(err, quorum.ErrEmptyPrompt) || errors.Is(err, quorum.ErrNoProviders) {
			status = http.StatusBadRequest
			errType = "invalid_request"
		}
		comparisonsTotal.WithLabelValues("error", "error").Inc()
		writeError(w, status, errType, err.Error())
		return
	}

	recordMetrics(result)
	slog.Info("comparison complete",
		"method", result.Method,
		"success", result.Success,
		"providers", len(result.Responses),
		"elapsed", result.Elapsed,
	)

	resp := compareResponse{
		Result:      result.Result,
		Method:      result.Method,
		Success:     result.Success,
		Explanation: result.Explanation,
		Weights:     result.Weights,
		ElapsedMs:   result.Elapsed.Milliseconds(),
	}
	if req.IncludeDetails {
		resp.Best = result.Best
		resp.Responses = result.Responses
		resp.Verdict = result.Verdict
	}

	writeJSON(w, http.StatusOK, resp)
}

// modelsResponse is the GET /models payload: the static catalog plus the
// judge defaults.
type modelsResponse struct {
	Models       map[string]quorum.ProviderCatalog `json:"models"`
	Order        []string                          `json:"order"`
	JudgeDefault quorum.ModelSpec                  `json:"judge_default"`
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, modelsResponse{
		Models: quorum.Catalog(),
		Order:  quorum.CatalogOrder(),
		JudgeDefault: quorum.ModelSpec{
			Provider: quorum.DefaultJudgeProvider,
			Model:    quorum.DefaultJudgeModel,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func recordMetrics(result quorum.ComparisonResult) {
	status := "success"
	if !result.Success {
		status = "failure"
	}
	comparisonsTotal.WithLabelValues(string(result.Method), status).Inc()
	comparisonDuration.Observe(result.Elapsed.Seconds())

	for _, r := range result.Responses {
		callStatus := "success"
		if !r.Success {
			callStatus = r.ErrorCategory
		}
		providerCallsTotal.WithLabelValues(r.Provider, callStatus).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, errorResponse{Error: errorBody{Message: message, Type: errType}})
}
