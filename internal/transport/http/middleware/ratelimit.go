package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"hrperf/internal/requestctx"
	"hrperf/internal/transport/http/api"
)

// pruneThreshold bounds the limiter map; idle limiters are dropped once it
// is exceeded.
const pruneThreshold = 10000

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	every   rate.Limit
	now     func() time.Time
	clients map[string]*clientLimiter
}

// RateLimit allows limit requests per window for each actor, or for each
// client address when the request is anonymous. Tokens refill evenly over
// the window and a full window of requests may burst. A non-positive limit
// disables it.
func RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	rl := newRateLimiter(limit, window, time.Now)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.enforce(w, r) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func newRateLimiter(limit int, window time.Duration, now func() time.Time) *rateLimiter {
	rl := &rateLimiter{
		limit:   limit,
		window:  window,
		now:     now,
		clients: map[string]*clientLimiter{},
	}
	if limit > 0 {
		rl.every = rate.Every(window / time.Duration(limit))
	}
	return rl
}

func rateKey(r *http.Request) string {
	if actor, ok := GetActor(r.Context()); ok && actor.UserID != "" {
		return "user:" + actor.TenantID + ":" + actor.UserID
	}
	if ip := requestctx.GetClientIP(r.Context()); ip != "" {
		return "ip:" + ip
	}
	return "ip:" + clientIP(r)
}

func (rl *rateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[key]
	if !ok {
		if len(rl.clients) >= pruneThreshold {
			rl.prune(now)
		}
		client = &clientLimiter{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter
}

func (rl *rateLimiter) enforce(w http.ResponseWriter, r *http.Request) bool {
	if rl.limit <= 0 {
		return true
	}

	key := rateKey(r)
	now := rl.now()
	limiter := rl.limiterFor(key, now)

	reservation := limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	remaining := int(math.Floor(limiter.TokensAt(now)))

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))

	if delay > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(max(int(math.Ceil(delay.Seconds())), 1)))
		slog.Warn("rate limit exceeded",
			"key", key,
			"path", r.URL.Path,
			"limit", rl.limit,
			"windowSec", int(rl.window.Seconds()),
		)
		api.Fail(w, http.StatusTooManyRequests, "too many requests")
		return false
	}
	return true
}

// prune drops limiters idle for a whole window. They have refilled, so a
// fresh limiter is equivalent.
func (rl *rateLimiter) prune(now time.Time) {
	for key, client := range rl.clients {
		if now.Sub(client.lastSeen) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
