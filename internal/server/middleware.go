// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ============================================================================
// CORS
// ============================================================================

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// AllowedOrigins lists allowed origins. "*" allows any origin.
	AllowedOrigins []string

	AllowedMethods []string
	AllowedHeaders []string
}

// DefaultCORSConfig matches the browser build's proxy headers.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS", "PATCH", "DELETE", "POST", "PUT"},
		AllowedHeaders: []string{
			"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
			"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
		},
	}
}

// CORSConfigFor builds a config from a comma-separated origin list.
func CORSConfigFor(origins string) *CORSConfig {
	cfg := DefaultCORSConfig()
	var list []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			list = append(list, o)
		}
	}
	if len(list) > 0 {
		cfg.AllowedOrigins = list
	}
	return cfg
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin, or
// "" when the origin is not allowed.
func (c *CORSConfig) allowOrigin(origin string) string {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin == "" {
			continue
		}
		if allowed == origin {
			return origin
		}
		// Wildcard subdomains, e.g. "*.example.com"
		if strings.HasPrefix(allowed, "*.") && strings.HasSuffix(origin, strings.TrimPrefix(allowed, "*")) {
			return origin
		}
	}
	return ""
}

// CORSMiddleware sets Access-Control-* headers and answers OPTIONS
// preflight requests with 200.
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allow := config.allowOrigin(r.Header.Get("Origin")); allow != "" {
				h := w.Header()
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Set("Access-Control-Allow-Origin", allow)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ","))
				h.Set("Access-Control-Allow-Headers", strings.Join(config.AllowedHeaders, ", "))
				if allow != "*" {
					h.Add("Vary", "Origin")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// RATE LIMITER
// ============================================================================

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	perMin  int
	idleTTL time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows perMinute requests per client with a burst of the
// same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 60
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		perMin:  perMinute,
		idleTTL: 10 * time.Minute,
	}
}

// Allow reports whether a request from ip may proceed.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = c
	}
	c.lastSeen = now
	allowed := c.limiter.AllowN(now, 1)

	// PERFORMANCE: Sweep idle clients opportunistically instead of a goroutine.
	if len(rl.clients) > 1024 {
		for k, v := range rl.clients {
			if now.Sub(v.lastSeen) > rl.idleTTL {
				delete(rl.clients, k)
			}
		}
	}
	return allowed
}

// RateLimitMiddleware answers 429 with a JSON error when a client exceeds
// its budget.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			clientIP := GetClientIP(r)
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.perMin))

			if !limiter.Allow(clientIP) {
				w.Header().Set("Retry-After", "60")
				log.Printf("RATE_LIMIT_EXCEEDED | ip=%s limit=%d/min", clientIP, limiter.perMin)
				writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// REQUEST LOGGING
// ============================================================================

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

// WriteHeader captures the status code before writing it.
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs one line per request:
// "2024-01-15 14:30:45 | POST /api/gemini | 200 | 1.234s"
func LoggingMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			logger.Printf("%s | %s %s | %d | %.3fs",
				start.Format("2006-01-02 15:04:05"),
				r.Method,
				r.URL.Path,
				wrapped.statusCode,
				time.Since(start).Seconds(),
			)
		})
	}
}

// ============================================================================
// SECURITY HEADERS
// ============================================================================

// SecurityHeadersMiddleware sets defensive response headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			// Answers may quote device configuration.
			h.Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// BODY LIMIT
// ============================================================================

// BodyLimitMiddleware caps request bodies at maxBytes. Handlers see a
// *http.MaxBytesError when the cap is hit.
func BodyLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// RECOVERY
// ============================================================================

// RecoveryMiddleware turns handler panics into a 500 and logs the stack.
func RecoveryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Printf("PANIC_RECOVERED | method=%s path=%s error=%v\n%s",
						r.Method, r.URL.Path, err, debug.Stack())
					writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ============================================================================
// CHAIN
// ============================================================================

// Chain composes middleware; the first one listed runs first.
func Chain(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// ============================================================================
// CLIENT IP
// ============================================================================

// trustedProxies may set X-Forwarded-For and X-Real-IP.
var trustedProxies = []string{
	"127.0.0.1/32",
	"::1/128",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"fc00::/7",
}

var (
	parsedTrustedProxies []*net.IPNet
	trustedProxiesOnce   sync.Once
)

func isTrustedProxy(ipStr string) bool {
	trustedProxiesOnce.Do(func() {
		for _, cidr := range trustedProxies {
			if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
				parsedTrustedProxies = append(parsedTrustedProxies, ipNet)
			}
		}
	})

	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	for _, cidr := range parsedTrustedProxies {
		if cidr.Contains(ip) {
			return true
		}
	}
	return false
}

// GetClientIP returns the client address. Forwarded headers are honoured
// only when the direct peer is a trusted proxy.
// SECURITY: Prevents header spoofing from bypassing rate limits.
func GetClientIP(r *http.Request) string {
	connIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		connIP = r.RemoteAddr
	}
	if !isTrustedProxy(connIP) {
		return connIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return connIP
}
