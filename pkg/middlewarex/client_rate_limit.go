package middlewarex

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"wfm_flipper/pkg/logx"
)

const (
	visitorTTL             = 3 * time.Minute
	visitorCleanupInterval = time.Minute
)

// ClientRateLimiter throttles inbound requests per remote IP with a token
// bucket. Idle visitors expire from the cache.
type ClientRateLimiter struct {
	visitors *cache.Cache
	limit    rate.Limit
	burst    int
}

func NewClientRateLimiter(rps float64, burst int) *ClientRateLimiter {
	return &ClientRateLimiter{
		visitors: cache.New(visitorTTL, visitorCleanupInterval),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ClientRateLimiter) visitor(ip string) *rate.Limiter {
	if v, ok := l.visitors.Get(ip); ok {
		l.visitors.SetDefault(ip, v)
		return v.(*rate.Limiter) //nolint:forcetypeassert
	}

	limiter := rate.NewLimiter(l.limit, l.burst)
	if err := l.visitors.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race to another request from the same IP.
		if v, ok := l.visitors.Get(ip); ok {
			return v.(*rate.Limiter) //nolint:forcetypeassert
		}
	}

	return limiter
}

func (l *ClientRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !l.visitor(ip).Allow() {
			logger(r.Context()).Warn("client rate limit exceeded", slog.String(logx.FieldIP, ip))

			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"code":"RateLimited","message":"Too many requests"}` + "\n")) //nolint:errcheck

			return
		}

		next.ServeHTTP(w, r)
	})
}
