package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCartSessionMintsCookieForNewVisitor(t *testing.T) {
	t.Parallel()

	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if seen == "" {
		t.Fatal("expected a session id in context")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Fatalf("session id is not a uuid: %v", err)
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}
	cookie := cookies[0]
	if cookie.Name != CartSessionCookie || cookie.Value != seen {
		t.Fatalf("unexpected cookie %+v", cookie)
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("cookie attributes wrong: %+v", cookie)
	}
	if cookie.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("expected max-age %d got %d", int(time.Hour.Seconds()), cookie.MaxAge)
	}
}

func TestCartSessionReusesExistingCookie(t *testing.T) {
	t.Parallel()

	existing := uuid.NewString()
	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: existing})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if seen != existing {
		t.Fatalf("expected existing session %s, got %s", existing, seen)
	}
	if cookies := resp.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("expected no new cookie, got %v", cookies)
	}
}

func TestCartSessionReplacesMalformedCookie(t *testing.T) {
	t.Parallel()

	var seen string
	handler := CartSession(time.Hour, false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CartSessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "not-a-uuid"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if seen == "" || seen == "not-a-uuid" {
		t.Fatalf("expected a fresh session id, got %q", seen)
	}
	if cookies := resp.Result().Cookies(); len(cookies) != 1 {
		t.Fatalf("expected replacement cookie, got %v", cookies)
	}
}
