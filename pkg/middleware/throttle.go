package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const limiterIdle = 10 * time.Minute

type ThrottleConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle limits login attempts per client address. A rejected attempt
// gets the same 401 body as bad credentials, so clients learn nothing about
// the limit.
func Throttle(cfg ThrottleConfig, logger *slog.Logger, onReject func(r *http.Request)) func(http.Handler) http.Handler {
	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
	)

	allow := func(ip string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()

		for key, cl := range clients {
			if now.Sub(cl.lastSeen) > limiterIdle {
				delete(clients, key)
			}
		}

		cl, ok := clients[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		return cl.limiter.AllowN(now, 1)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !allow(ip, time.Now()) {
				logger.Warn("login throttled", "remote_addr", ip)
				if onReject != nil {
					onReject(r)
				}
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
