package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// requireAPIKey rejects requests without a configured key. An empty key list
// leaves the API open, which is the expected setup behind a private network.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys := s.cfg.API.APIKeys
		if len(keys) == 0 {
			next.ServeHTTP(w, r)
			return
		}

		provided := r.Header.Get("X-API-Key")
		for _, key := range keys {
			if provided == key {
				next.ServeHTTP(w, r)
				return
			}
		}
		respondError(w, http.StatusUnauthorized, "invalid or missing API key", nil)
	})
}

// rateLimit enforces a fixed per-minute window per caller. Authenticated
// callers are counted per key, anonymous ones per remote address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity := r.Header.Get("X-API-Key")
		if identity == "" {
			identity = r.RemoteAddr
		}

		if !s.limiter.allow(identity) {
			w.Header().Set("Retry-After", "60")
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type rateWindow struct {
	start time.Time
	count int
}

type rateLimiter struct {
	perMinute int

	mu      sync.Mutex
	windows map[string]*rateWindow
}

func newRateLimiter(perMinute int) *rateLimiter {
	return &rateLimiter{
		perMinute: perMinute,
		windows:   make(map[string]*rateWindow),
	}
}

func (l *rateLimiter) allow(identity string) bool {
	if l.perMinute <= 0 {
		return true
	}

	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.windows) > 1000 {
		l.sweep(now)
	}

	w, ok := l.windows[identity]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.windows[identity] = &rateWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.perMinute {
		return false
	}
	w.count++
	return true
}

// sweep drops expired windows. Caller holds the lock.
func (l *rateLimiter) sweep(now time.Time) {
	for identity, w := range l.windows {
		if now.Sub(w.start) >= time.Minute {
			delete(l.windows, identity)
		}
	}
}

// requestLogger logs one line per request with the chi request ID.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			slog.Info("API request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
