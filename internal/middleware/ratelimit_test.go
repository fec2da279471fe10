package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(t *testing.T, authRate rate.Limit, burst int) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		AuthRate:        authRate,
		AuthBurst:       burst,
		CleanupInterval: time.Hour,
		IdleTTL:         time.Hour,
	})
	t.Cleanup(rl.Stop)
	return rl
}

func TestAuthMiddleware_AllowsWithinBurst(t *testing.T) {
	rl := newTestRateLimiter(t, rate.Limit(1), 3)

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_BlocksOverBurst(t *testing.T) {
	rl := newTestRateLimiter(t, rate.Limit(0.001), 2)

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		req.RemoteAddr = "192.0.2.1:12345"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}

	var body ErrorResponseBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if body.Code != "RATE_LIMITED" {
		t.Errorf("code = %q, want RATE_LIMITED", body.Code)
	}
}

func TestAuthMiddleware_LimitsPerClientIP(t *testing.T) {
	rl := newTestRateLimiter(t, rate.Limit(0.001), 1)

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 1つ目のIPがバーストを使い切る
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "192.0.2.1:12345"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same IP second request: status = %d, want 429", rec.Code)
	}

	// 別のIPは影響を受けない
	req = httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "192.0.2.2:12345"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("different IP: status = %d, want 200", rec.Code)
	}

	if got := rl.LimiterCount(); got != 2 {
		t.Errorf("LimiterCount() = %d, want 2", got)
	}
}

func TestAuthMiddleware_UsesXForwardedFor(t *testing.T) {
	rl := newTestRateLimiter(t, rate.Limit(0.001), 1)

	handler := rl.AuthMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同じRemoteAddrでもX-Forwarded-Forが異なれば別クライアント扱い
	req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first client: status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/auth/google", nil)
	req.RemoteAddr = "10.0.0.1:80"
	req.Header.Set("X-Forwarded-For", "203.0.113.2, 10.0.0.1")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("second client: status = %d, want 200", rec.Code)
	}
}

func TestCleanup_RemovesIdleEntries(t *testing.T) {
	rl := newTestRateLimiter(t, rate.Limit(1), 1)

	rl.getOrCreateLimiter("192.0.2.1")
	rl.getOrCreateLimiter("192.0.2.2")
	if got := rl.LimiterCount(); got != 2 {
		t.Fatalf("LimiterCount() = %d, want 2", got)
	}

	// 全エントリをIdleTTL超過の状態にする
	rl.mu.Lock()
	for _, il := range rl.limiters {
		il.lastAccess = time.Now().Add(-2 * time.Hour)
	}
	rl.mu.Unlock()

	rl.cleanup()

	if got := rl.LimiterCount(); got != 0 {
		t.Errorf("LimiterCount() after cleanup = %d, want 0", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"RemoteAddrのホスト部", "192.0.2.1:12345", "", "192.0.2.1"},
		{"X-Forwarded-Forの先頭", "10.0.0.1:80", "203.0.113.1, 10.0.0.1", "203.0.113.1"},
		{"X-Forwarded-For単一値", "10.0.0.1:80", "203.0.113.1", "203.0.113.1"},
		{"ポートなしRemoteAddr", "192.0.2.1", "", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
