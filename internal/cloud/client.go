// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"bytes"
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants for the Gemini API.
const (
	// DefaultBaseURL is the root of the Generative Language REST API.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultTimeout bounds a single attempt. Grounded pro answers with a
	// thinking budget routinely take over a minute.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxRetries is the default number of retries for transient errors.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay is the maximum delay for exponential backoff.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// SECURITY: Response size limit prevents memory exhaustion.
	MaxResponseSize = 10 * 1024 * 1024
)

// PERFORMANCE: Connection pooling reduces TLS handshake overhead.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
}

// =============================================================================
// ERRORS
// =============================================================================

// Error variables for common API failures.
var (
	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("Gemini API key not configured")

	// ErrAuthFailed indicates the API key was rejected.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrRateLimited indicates too many requests were made.
	ErrRateLimited = errors.New("rate limited")

	// ErrModelNotFound indicates the requested model does not exist.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrNoAudio indicates a speech request returned no audio data.
	ErrNoAudio = errors.New("no audio data received")

	// ErrInvalidRequest indicates the request was rejected as malformed.
	ErrInvalidRequest = errors.New("invalid request")
)

// APIError is an error reported by the API. Code is the HTTP status and
// Status the canonical error name (e.g. "INVALID_ARGUMENT").
type APIError struct {
	Code    int
	Message string
	Status  string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("Gemini error [%s] (HTTP %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("Gemini error (HTTP %d): %s", e.Code, e.Message)
}

// Is maps API errors onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAuthFailed:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden ||
			(e.Code == http.StatusBadRequest && strings.Contains(strings.ToLower(e.Message), "api key"))
	case ErrRateLimited:
		return e.Code == http.StatusTooManyRequests
	case ErrModelNotFound:
		return e.Code == http.StatusNotFound
	case ErrInvalidRequest:
		return e.Code == http.StatusBadRequest
	}
	return false
}

// Temporary reports whether retrying may succeed.
func (e *APIError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || (e.Code >= 500 && e.Code < 600)
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Gemini generateContent API. It is safe for concurrent
// use once configured.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	maxRetries int
	timeout    time.Duration
	voice      string
	limiter    *rate.Limiter

	retryBase time.Duration
}

// NewClient creates a client for the given API key. An empty key yields a
// client whose calls fail with ErrNotConfigured.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    DefaultBaseURL,
		httpClient: sharedHTTPClient,
		maxRetries: DefaultMaxRetries,
		timeout:    DefaultTimeout,
		voice:      DefaultVoice,
		retryBase:  retryBaseDelay,
	}
}

// WithBaseURL sets a custom API root.
func (c *Client) WithBaseURL(u string) *Client {
	if u != "" {
		c.baseURL = strings.TrimRight(u, "/")
	}
	return c
}

// WithTimeout sets the per-attempt timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

// WithMaxRetries sets the number of retries for transient errors.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries >= 0 {
		c.maxRetries = maxRetries
	}
	return c
}

// WithHTTPClient replaces the pooled HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithRateLimit throttles outgoing requests. A zero limit disables it.
func (c *Client) WithRateLimit(limit rate.Limit, burst int) *Client {
	if limit <= 0 {
		c.limiter = nil
		return c
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(limit, burst)
	return c
}

// WithVoice sets the prebuilt voice used by Synthesize.
func (c *Client) WithVoice(voice string) *Client {
	if voice != "" {
		c.voice = voice
	}
	return c
}

// PerMinute converts a requests-per-minute setting into a rate.Limit.
func PerMinute(n int) rate.Limit {
	if n <= 0 {
		return 0
	}
	return rate.Every(time.Minute / time.Duration(n))
}

// IsConfigured reports whether an API key is set.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// APIKeyMasked describes the key without revealing any part of it.
// SECURITY: Never exposes key fragments, only a fingerprint.
func (c *Client) APIKeyMasked() string {
	if c.apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(c.apiKey), c.KeyFingerprint())
}

// KeyFingerprint returns the first 8 hex chars of the key's SHA-256.
func (c *Client) KeyFingerprint() string {
	if c.apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.apiKey))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// TRANSPORT
// =============================================================================

// generate posts a generateContent request for modelID and decodes the reply.
// Transient failures are retried with exponential backoff.
func (c *Client) generate(ctx context.Context, modelID string, reqBody *generateRequest) (*generateResponse, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(modelID))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff(attempt)):
			}
		}

		resp, err := c.doRequest(ctx, endpoint, payload)
		if err == nil {
			return resp, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doRequest performs one attempt.
func (c *Client) doRequest(ctx context.Context, endpoint string, payload []byte) (*generateResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ciscocli")
	// SECURITY: Header, not query string, so the key never lands in URL logs.
	req.Header.Set("x-goog-api-key", c.apiKey)

	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	req.Header.Del("x-goog-api-key")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	log.Printf("API Response: %s (%v)", resp.Status, time.Since(start).Round(time.Millisecond))

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleErrorResponse(resp.StatusCode, body)
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &out, nil
}

// readResponse reads the response body with a size limit.
// SECURITY: Response size limit prevents memory exhaustion.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts an HTTP error body into an *APIError.
func handleErrorResponse(statusCode int, body []byte) error {
	var apiErr apiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return &APIError{Code: statusCode, Message: apiErr.Error.Message, Status: apiErr.Error.Status}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(statusCode)
	}
	return &APIError{Code: statusCode, Message: msg}
}

// isRetryable reports whether another attempt may succeed. Context errors
// are never retried.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return false
}

// backoff returns the delay before the given attempt: base, 2*base, ...
// capped at retryMaxDelay.
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<uint(attempt-1))
	if delay > retryMaxDelay || delay <= 0 {
		delay = retryMaxDelay
	}
	return delay
}
