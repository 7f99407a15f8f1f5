package middleware

import (
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"project/utils"
)

// visitor tracks request count for a fixed window
type visitor struct {
	count       int
	windowStart time.Time
}

// IPRateLimiter is a fixed-window per-IP limiter with periodic cleanup.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	maxReq   int
	window   time.Duration
}

func NewIPRateLimiter(maxReq int, window time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		visitors: make(map[string]*visitor),
		maxReq:   maxReq,
		window:   window,
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *IPRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.window)
		for ip, v := range rl.visitors {
			if v.windowStart.Before(cutoff) {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether the given key may make another request in the
// current window.
func (rl *IPRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	v, ok := rl.visitors[key]
	if !ok || now.Sub(v.windowStart) >= rl.window {
		rl.visitors[key] = &visitor{count: 1, windowStart: now}
		return true
	}
	if v.count >= rl.maxReq {
		return false
	}
	v.count++
	return true
}

// trustedProxies holds CIDR ranges whose X-Forwarded-For headers we trust.
var trustedProxies = parseTrustedProxies()

func parseTrustedProxies() []*net.IPNet {
	raw := os.Getenv("TRUSTED_PROXY_CIDRS")
	if raw == "" {
		return nil
	}
	var nets []*net.IPNet
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, n, err := net.ParseCIDR(part); err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}

func isTrustedProxy(ip net.IP) bool {
	for _, n := range trustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP resolves the client address, honoring X-Forwarded-For only when
// the direct peer is a trusted proxy.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer := net.ParseIP(host)
	if peer == nil || !isTrustedProxy(peer) {
		return host
	}
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return host
	}
	parts := strings.Split(xff, ",")
	for i := len(parts) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(parts[i])
		ip := net.ParseIP(candidate)
		if ip == nil {
			continue
		}
		if !isTrustedProxy(ip) {
			return candidate
		}
	}
	return host
}

// RateLimitMiddleware applies a per-IP limit to every request.
func RateLimitMiddleware(rl *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(ClientIP(r)) {
				utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
					Success: false,
					Message: "Too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserRateLimitMiddleware applies a per-user limit on authenticated routes.
// It keys on the user id from context, falling back to the client IP.
func UserRateLimitMiddleware(rl *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ClientIP(r)
			if userID, ok := utils.GetUserID(r); ok {
				key = "u:" + strconv.FormatUint(uint64(userID), 10)
			}
			if !rl.Allow(key) {
				utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
					Success: false,
					Message: "Too many requests, please slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
