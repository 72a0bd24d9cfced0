package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/averyhale/meadowcart-backend/pkg/config"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func healthTestConfig() *config.Config {
	return &config.Config{App: config.AppConfig{Env: "dev", Port: "0"}}
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	handler := HealthLive(healthTestConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if got := resp.Header().Get("X-MeadowCart-Env"); got != "dev" {
		t.Fatalf("expected env header dev got %q", got)
	}
}

func TestHealthReadyAllComponentsOK(t *testing.T) {
	t.Parallel()

	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{},
	})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding readiness: %v", err)
	}
	if envelope.Data.Status != "ready" {
		t.Fatalf("expected ready got %s", envelope.Data.Status)
	}
	if envelope.Data.Components["database"] != "ok" || envelope.Data.Components["redis"] != "ok" {
		t.Fatalf("unexpected components: %v", envelope.Data.Components)
	}
}

func TestHealthReadyDegradedOnFailure(t *testing.T) {
	t.Parallel()

	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding readiness: %v", err)
	}
	if envelope.Data.Status != "degraded" {
		t.Fatalf("expected degraded got %s", envelope.Data.Status)
	}
	if envelope.Data.Components["redis"] != "unavailable" {
		t.Fatalf("expected redis unavailable, got %v", envelope.Data.Components)
	}
}

func TestHealthReadyReportsUnconfiguredComponents(t *testing.T) {
	t.Parallel()

	handler := HealthReady(healthTestConfig(), nil, map[string]Pinger{"gcs": nil})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
