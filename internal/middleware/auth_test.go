// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"ferrecms/internal/session"
)

func newTestSession(isAdmin, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    uuid.New(),
		Username:  "tester",
		IsAdmin:   isAdmin,
		TwoFADone: twoFADone,
	}
}

func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, SessionKey, data)
}

func okHandler() (http.Handler, *bool) {
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	return h, &called
}

func TestSessionFromCtx(t *testing.T) {
	sess := newTestSession(true, true)
	got := SessionFromCtx(ctxWithSession(context.Background(), sess))
	if got == nil {
		t.Fatal("expected session, got nil")
	}
	if got.Username != sess.Username || got.IsAdmin != sess.IsAdmin {
		t.Errorf("got %+v, want %+v", got, sess)
	}

	if got := SessionFromCtx(context.Background()); got != nil {
		t.Errorf("empty context: got %+v, want nil", got)
	}

	wrongType := context.WithValue(context.Background(), SessionKey, "not-a-session")
	if got := SessionFromCtx(wrongType); got != nil {
		t.Errorf("wrong type in context: got %+v, want nil", got)
	}
}

func TestRequireAuth(t *testing.T) {
	t.Run("redirects anonymous to login", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequireAuth(inner)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusSeeOther {
			t.Errorf("got %d, want 303", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/admin/login" {
			t.Errorf("Location = %q", loc)
		}
		if *called {
			t.Error("next handler should not run for anonymous request")
		}
	})

	t.Run("passes authenticated request", func(t *testing.T) {
		inner, called := okHandler()
		handler := RequireAuth(inner)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(true, true)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should run")
		}
	})
}

func TestRequire2FA(t *testing.T) {
	t.Run("redirects pending 2FA to setup", func(t *testing.T) {
		inner, called := okHandler()
		handler := Require2FA(inner)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(true, false)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusSeeOther {
			t.Errorf("got %d, want 303", rr.Code)
		}
		if loc := rr.Header().Get("Location"); loc != "/admin/2fa/setup" {
			t.Errorf("Location = %q", loc)
		}
		if *called {
			t.Error("next handler should not run before 2FA completes")
		}
	})

	t.Run("passes verified session", func(t *testing.T) {
		inner, called := okHandler()
		handler := Require2FA(inner)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req = req.WithContext(ctxWithSession(req.Context(), newTestSession(true, true)))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if !*called {
			t.Error("next handler should run")
		}
	})
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		sess     *session.Data
		wantCode int
	}{
		{"admin passes", newTestSession(true, true), http.StatusOK},
		{"non-admin forbidden", newTestSession(false, true), http.StatusForbidden},
		{"anonymous forbidden", nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner, _ := okHandler()
			handler := RequireAdmin(inner)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.sess != nil {
				req = req.WithContext(ctxWithSession(req.Context(), tt.sess))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("got %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}
