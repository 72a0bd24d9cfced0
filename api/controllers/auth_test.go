package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/averyhale/meadowcart-backend/api/middleware"
	authsvc "github.com/averyhale/meadowcart-backend/internal/auth"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/types"
)

type stubAuthService struct {
	resp *authsvc.LoginResponse
	err  error

	loggedOut []string
}

func (s *stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return s.resp, s.err
}

func (s *stubAuthService) Logout(ctx context.Context, accessID string) error {
	s.loggedOut = append(s.loggedOut, accessID)
	return s.err
}

func TestAdminAuthLoginSuccess(t *testing.T) {
	t.Parallel()

	adminID := uuid.New()
	svc := &stubAuthService{resp: &authsvc.LoginResponse{
		AccessToken: "access-token",
		Admin:       authsvc.AdminDTO{ID: adminID, Email: "admin@example.com"},
	}}
	handler := AdminAuthLogin(svc, nil)

	body := `{"email":"admin@example.com","password":"Secret#1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data authsvc.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" || envelope.Data.Admin.ID != adminID {
		t.Fatalf("unexpected login response: %+v", envelope.Data)
	}
}

func TestAdminAuthLoginRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	handler := AdminAuthLogin(&stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", bytes.NewReader([]byte(`{"email":"nope"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminAuthLoginBadCredentials(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}
	handler := AdminAuthLogin(svc, nil)

	body := `{"email":"admin@example.com","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	var envelope types.ErrorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding error envelope: %v", err)
	}
	if envelope.Error.Message != "invalid email or password" {
		t.Fatalf("expected uniform credential message, got %q", envelope.Error.Message)
	}
}

func TestAdminAuthLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	handler := AdminAuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "access-123"))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "access-123" {
		t.Fatalf("expected logout for access-123, got %v", svc.loggedOut)
	}
}

func TestAdminAuthLogoutWithoutSession(t *testing.T) {
	t.Parallel()

	svc := &stubAuthService{}
	handler := AdminAuthLogout(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 0 {
		t.Fatal("logout should not be called without a session")
	}
}
