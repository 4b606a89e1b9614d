package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestIPRateLimiter_GetLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(10, 20, time.Minute)
	defer limiter.Stop()

	l1 := limiter.GetLimiter("192.168.1.1")
	if l1 != limiter.GetLimiter("192.168.1.1") {
		t.Error("Expected same limiter instance for same IP")
	}
	if l1 == limiter.GetLimiter("192.168.1.2") {
		t.Error("Expected different limiter instance for different IP")
	}
	if limiter.Len() != 2 {
		t.Errorf("Expected 2 tracked addresses, got %d", limiter.Len())
	}
}

func TestIPRateLimiter_Allow(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2, time.Minute) // 1 per second, burst of 2
	defer limiter.Stop()

	ip := "192.168.1.1"
	if !limiter.Allow(ip) || !limiter.Allow(ip) {
		t.Error("Expected burst of 2 to be allowed")
	}
	if limiter.Allow(ip) {
		t.Error("Third request should be denied (burst exhausted)")
	}
	if !limiter.Allow("10.0.0.1") {
		t.Error("Other addresses keep their own budget")
	}
}

func TestIPRateLimiter_AllowAfterWait(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(10), 1, time.Minute)
	defer limiter.Stop()

	ip := "192.168.1.1"
	limiter.Allow(ip)
	if limiter.Allow(ip) {
		t.Error("Immediate second request should be denied")
	}

	time.Sleep(150 * time.Millisecond)

	if !limiter.Allow(ip) {
		t.Error("Request after wait should be allowed")
	}
}

func TestIPRateLimiter_EvictIdle(t *testing.T) {
	limiter := NewIPRateLimiter(10, 10, time.Minute)
	defer limiter.Stop()

	limiter.Allow("192.168.1.1")
	limiter.evictIdle(time.Now())
	if limiter.Len() != 1 {
		t.Fatalf("Expected recent visitor kept, got %d", limiter.Len())
	}

	limiter.evictIdle(time.Now().Add(2 * time.Minute))
	if limiter.Len() != 0 {
		t.Errorf("Expected idle visitor evicted, got %d", limiter.Len())
	}
}

func TestIPRateLimiter_Concurrency(t *testing.T) {
	limiter := NewIPRateLimiter(100, 100, time.Minute)
	defer limiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			limiter.Allow("192.168.1.1")
		}()
	}
	wg.Wait()

	if limiter.Len() != 1 {
		t.Errorf("Expected 1 tracked address, got %d", limiter.Len())
	}
}

func TestIPRateLimiter_StopTwice(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, time.Minute)
	limiter.Stop()
	limiter.Stop()
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1, time.Minute)
	defer limiter.Stop()

	handler := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// same host, different source ports share a budget
	req := httptest.NewRequest("POST", "/api/auth/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("First request should be OK, got %d", w.Code)
	}

	req.RemoteAddr = "192.168.1.1:54321"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("Second request should be rate limited, got %d", w.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"192.168.1.1:12345", "192.168.1.1"},
		{"[::1]:8080", "::1"},
		{"1.2.3.4", "1.2.3.4"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = tt.remote
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}
