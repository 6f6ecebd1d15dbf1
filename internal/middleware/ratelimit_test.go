// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("client-a") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.allow("client-a") {
		t.Error("request over the limit should be denied")
	}
	// A different client has its own window.
	if !rl.allow("client-b") {
		t.Error("independent client should be allowed")
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(2, 50*time.Millisecond)
	defer rl.Stop()

	rl.allow("client")
	rl.allow("client")
	if rl.allow("client") {
		t.Fatal("third request inside the window should be denied")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.allow("client") {
		t.Error("request after the window expired should be allowed")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first request: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("second request: got %d, want 429", rr.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		want       string
	}{
		{"remote addr", "192.0.2.1:5000", "", "", "192.0.2.1"},
		{"x-forwarded-for", "10.0.0.1:80", "203.0.113.9", "", "203.0.113.9"},
		{"x-forwarded-for chain", "10.0.0.1:80", "203.0.113.9, 10.0.0.2", "", "203.0.113.9"},
		{"x-real-ip", "10.0.0.1:80", "", "203.0.113.10", "203.0.113.10"},
		{"xff wins over xri", "10.0.0.1:80", "203.0.113.9", "203.0.113.10", "203.0.113.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
