// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/cloud"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/config"
	"github.com/CantiFirestarter/Cisco-IOS-GeminiAI/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// Version is reported by /healthz.
	Version = "1.0.0"

	// MaxQueryLength bounds the query text.
	MaxQueryLength = 100000

	// shutdownTimeout bounds graceful shutdown.
	shutdownTimeout = 10 * time.Second
)

// Actions accepted in the request body.
const (
	ActionQuery       = ""
	ActionTTS         = "tts"
	ActionSuggestions = "suggestions"
)

// Error messages returned to clients.
const (
	msgMethodNotAllowed = "Method not allowed"
	msgNoKey            = "API_KEY not configured in environment variables"
	msgQueryRequired    = "Query is required"
	msgTextRequired     = "Text is required for TTS"
	msgNoAudio          = "No audio data received"
	msgFailed           = "Failed to process request"
	msgBadBody          = "Invalid request body"
	msgTooLarge         = "Request body too large"
	msgUnknownAction    = "Unknown action"
)

// ============================================================================
// TYPES
// ============================================================================

// Backend answers proxied requests. *cloud.Client implements it.
type Backend interface {
	IsConfigured() bool
	Query(ctx context.Context, req cloud.QueryRequest) (*model.CiscoQueryResponse, error)
	Suggestions(ctx context.Context, history []string) ([]string, error)
	Synthesize(ctx context.Context, text string) (*cloud.Audio, error)
}

// GeminiRequest is the POST /api/gemini body.
type GeminiRequest struct {
	Query          string `json:"query"`
	ImageBase64    string `json:"imageBase64,omitempty"`
	Attachment     string `json:"attachment,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
	Model          string `json:"model,omitempty"`
	ForceSearch    bool   `json:"forceSearch,omitempty"`
	Action         string `json:"action,omitempty"`
	Text           string `json:"text,omitempty"`
}

// TTSResponse is returned for action "tts".
type TTSResponse struct {
	AudioBase64 string `json:"audioBase64"`
	SampleRate  int    `json:"sampleRate"`
	Channels    int    `json:"channels"`
}

// SuggestionsResponse is returned for action "suggestions".
type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// ErrorResponse is every error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	API      string `json:"api"`
	Uptime   string `json:"uptime"`
	Requests int64  `json:"requests"`
	Failures int64  `json:"failures"`
}

// ServerStats counts proxied requests.
type ServerStats struct {
	StartTime time.Time
	requests  atomic.Int64
	failures  atomic.Int64
}

// NewServerStats creates stats starting now.
func NewServerStats() *ServerStats {
	return &ServerStats{StartTime: time.Now()}
}

// Record counts one request.
func (s *ServerStats) Record(failed bool) {
	s.requests.Add(1)
	if failed {
		s.failures.Add(1)
	}
}

// Uptime returns how long the server has been running.
func (s *ServerStats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// ============================================================================
// SERVER
// ============================================================================

// Server proxies model calls so the API key never reaches the browser.
type Server struct {
	cfg     config.ServerConfig
	backend Backend
	mux     *http.ServeMux
	stats   *ServerStats
	handler http.Handler
}

// NewServer creates a server for cfg. backend may be nil, in which case
// every model call answers 500 with the missing-key error.
func NewServer(cfg config.ServerConfig, backend Backend) *Server {
	s := &Server{
		cfg:     cfg,
		backend: backend,
		mux:     http.NewServeMux(),
		stats:   NewServerStats(),
	}
	s.setupRoutes()

	s.handler = Chain(
		RecoveryMiddleware(),
		LoggingMiddleware(log.Default()),
		SecurityHeadersMiddleware(),
		CORSMiddleware(CORSConfigFor(cfg.AllowedOrigin)),
		RateLimitMiddleware(NewRateLimiter(cfg.RequestsPerMinute)),
		BodyLimitMiddleware(cfg.MaxBodyBytes),
	)(s.mux)
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Stats returns the request counters.
func (s *Server) Stats() *ServerStats {
	return s.stats
}

func (s *Server) setupRoutes() {
	// Method checks happen in the handler so non-POST gets the JSON 405.
	s.mux.HandleFunc("/api/gemini", s.handleGemini)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ============================================================================
// LIFECYCLE
// ============================================================================

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("SERVER_START | addr=%s version=%s", ln.Addr(), Version)
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Printf("SERVER_SHUTDOWN | starting graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handleGemini(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: msgMethodNotAllowed})
		return
	}
	if s.backend == nil || !s.backend.IsConfigured() {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgNoKey})
		return
	}

	var req GeminiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: msgTooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgBadBody, Message: err.Error()})
		return
	}

	switch req.Action {
	case ActionTTS:
		s.handleTTS(w, r, req)
	case ActionSuggestions:
		s.handleSuggestions(w, r, req)
	case ActionQuery, "query":
		s.handleQuery(w, r, req)
	default:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgUnknownAction, Message: req.Action})
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request, req GeminiRequest) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgQueryRequired})
		return
	}
	if len(query) > MaxQueryLength {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgQueryRequired, Message: "query too long"})
		return
	}

	resp, err := s.backend.Query(r.Context(), cloud.QueryRequest{
		Query:          query,
		ImageBase64:    req.ImageBase64,
		Attachment:     req.Attachment,
		AttachmentName: req.AttachmentName,
		Model:          req.Model,
		ForceSearch:    req.ForceSearch,
	})
	if err != nil {
		s.fail(w, err)
		return
	}
	s.stats.Record(false)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request, req GeminiRequest) {
	var history []string
	if q := strings.TrimSpace(req.Query); q != "" {
		history = []string{q}
	}
	suggestions, err := s.backend.Suggestions(r.Context(), history)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.stats.Record(false)
	writeJSON(w, http.StatusOK, SuggestionsResponse{Suggestions: suggestions})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request, req GeminiRequest) {
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msgTextRequired})
		return
	}
	audio, err := s.backend.Synthesize(r.Context(), req.Text)
	if errors.Is(err, cloud.ErrNoAudio) {
		s.stats.Record(true)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: msgNoAudio})
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.stats.Record(false)
	writeJSON(w, http.StatusOK, TTSResponse{
		AudioBase64: audio.Base64(),
		SampleRate:  audio.SampleRate,
		Channels:    audio.Channels,
	})
}

// fail reports an upstream error. Unknown models are a client error.
func (s *Server) fail(w http.ResponseWriter, err error) {
	s.stats.Record(true)
	log.Printf("Gemini API Error: %v", err)
	status := http.StatusInternalServerError
	if errors.Is(err, cloud.ErrModelNotFound) && !isAPIError(err) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, ErrorResponse{Error: msgFailed, Message: err.Error()})
}

func isAPIError(err error) bool {
	var apiErr *cloud.APIError
	return errors.As(err, &apiErr)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:   "ok",
		Version:  Version,
		API:      "not_configured",
		Uptime:   s.stats.Uptime().Round(time.Second).String(),
		Requests: s.stats.requests.Load(),
		Failures: s.stats.failures.Load(),
	}
	if s.backend != nil && s.backend.IsConfigured() {
		health.API = "configured"
	} else {
		health.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, health)
}

// ============================================================================
// HELPERS
// ============================================================================

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
