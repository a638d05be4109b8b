package api

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// ClientIDHeader optionally identifies the caller for rate limiting and logs.
const ClientIDHeader = "X-Client-ID"

func AdminAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request with the matched route and the
// case it touched. Server errors log at error level, client errors at warn.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"client", r.Header.Get(ClientIDHeader),
				"request_id", chiMiddleware.GetReqID(r.Context()),
			}
			// Routing fills the route context after the middleware chain starts.
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					attrs = append(attrs, "route", pattern)
				}
				if id := rctx.URLParam("id"); id != "" {
					attrs = append(attrs, "case_id", id)
				}
			}

			switch {
			case ww.Status() >= 500:
				logger.Error("request", attrs...)
			case ww.Status() >= 400:
				logger.Warn("request", attrs...)
			default:
				logger.Info("request", attrs...)
			}
		})
	}
}

// Request classes share one per-minute budget. Evaluations and optimizer
// runs get a fraction of it since they cost far more than reads.
const (
	classAPI      = "api"
	classEvaluate = "evaluate"
	classOptimize = "optimize"

	evaluateDivisor = 4
	optimizeDivisor = 10
)

func requestClass(r *http.Request) string {
	if r.Method != http.MethodPost {
		return classAPI
	}
	switch {
	case strings.HasSuffix(r.URL.Path, "/optimize"):
		return classOptimize
	case strings.HasSuffix(r.URL.Path, "/evaluate"):
		return classEvaluate
	}
	return classAPI
}

type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limits   map[string]int
	window   time.Duration
	now      func() time.Time
}

func newRateLimiter(requestsPerMinute int) *rateLimiter {
	share := func(d int) int { return max(1, requestsPerMinute/d) }
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		limits: map[string]int{
			classAPI:      requestsPerMinute,
			classEvaluate: share(evaluateDivisor),
			classOptimize: share(optimizeDivisor),
		},
		window: time.Minute,
		now:    time.Now,
	}
}

// allow records a request for key in class. When the budget is spent it
// returns how long until the oldest request leaves the window.
func (rl *rateLimiter) allow(key, class string) (remaining int, retryAfter time.Duration, ok bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limit := rl.limits[class]
	bucket := class + "|" + key
	now := rl.now()
	cutoff := now.Add(-rl.window)
	var valid []time.Time
	for _, t := range rl.requests[bucket] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	if len(valid) >= limit {
		rl.requests[bucket] = valid
		return 0, valid[0].Sub(cutoff), false
	}
	rl.requests[bucket] = append(valid, now)
	return limit - len(valid) - 1, 0, true
}

// RateLimitMiddleware allows requestsPerMinute per client in a sliding
// window, with smaller budgets for evaluate and optimize calls. A
// non-positive limit disables it.
func RateLimitMiddleware(requestsPerMinute int) func(http.Handler) http.Handler {
	return rateLimit(newRateLimiter(requestsPerMinute), requestsPerMinute > 0)
}

func rateLimit(rl *rateLimiter, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(ClientIDHeader)
			if key == "" {
				key = r.RemoteAddr
			}
			class := requestClass(r)
			remaining, retryAfter, ok := rl.allow(key, class)
			if !ok {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(math.Ceil(retryAfter.Seconds()))))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{
					"error": "rate limit exceeded for " + class + " requests",
				})
				return
			}
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			next.ServeHTTP(w, r)
		})
	}
}
