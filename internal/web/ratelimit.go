package web

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	mw "github.com/JonMunkholm/datasweeper/internal/web/middleware"
)

var errRateLimited = errors.New("rate limit exceeded")

// ipRateLimiter keeps a token bucket per client IP. Each bucket refills at
// perMinute tokens a minute and holds at most perMinute tokens.
type ipRateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	perMinute int
	idle      time.Duration
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(perMinute int) *ipRateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	return &ipRateLimiter{
		visitors:  make(map[string]*visitor),
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		perMinute: perMinute,
		idle:      3 * time.Minute,
		now:       time.Now,
	}
}

// newRateLimiter creates a limiter whose idle entries are dropped until the
// server shuts down.
func (s *Server) newRateLimiter(perMinute int) *ipRateLimiter {
	rl := newIPRateLimiter(perMinute)
	s.limiters = append(s.limiters, rl)
	go rl.cleanup(s.stop)
	return rl
}

// allow reports whether ip may make a request now and consumes a token if so.
func (rl *ipRateLimiter) allow(ip string) bool {
	now := rl.now()

	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.perMinute)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// retryAfter is the wait, in whole seconds, until one token is available.
func (rl *ipRateLimiter) retryAfter() int {
	return (60 + rl.perMinute - 1) / rl.perMinute
}

// sweep removes visitors idle for longer than rl.idle.
func (rl *ipRateLimiter) sweep() int {
	cutoff := rl.now().Add(-rl.idle)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	removed := 0
	for ip, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, ip)
			removed++
		}
	}
	return removed
}

func (rl *ipRateLimiter) cleanup(stop <-chan struct{}) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

// middleware rejects requests from IPs that have used up their bucket.
func (rl *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(mw.ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(rl.retryAfter()))
			respondError(w, r, errRateLimited, http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
