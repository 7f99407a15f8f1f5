package middleware

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewIPRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("4th request should be blocked")
	}
	// other keys are unaffected
	if !rl.Allow("10.0.0.2") {
		t.Fatal("different key should be allowed")
	}
}

func TestIPRateLimiterWindowReset(t *testing.T) {
	rl := NewIPRateLimiter(1, 50*time.Millisecond)
	if !rl.Allow("k") {
		t.Fatal("first request should be allowed")
	}
	if rl.Allow("k") {
		t.Fatal("second request in window should be blocked")
	}
	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("k") {
		t.Fatal("request after window should be allowed")
	}
}

func TestClientIPIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:4312"
	r.Header.Set("X-Forwarded-For", "1.2.3.4")
	if got := ClientIP(r); got != "203.0.113.7" {
		t.Fatalf("expected peer address, got %q", got)
	}
}
