package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

const envHeader = "X-MeadowCart-Env"

type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings each dependency and reports per-component status. Any
// failing component flips the response to 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		components := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				components[name] = "not configured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				components[name] = "unavailable"
				healthy = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "component", name), "health.ready.failed", err)
				}
				continue
			}
			components[name] = "ok"
		}

		status := "ready"
		httpStatus := http.StatusOK
		if !healthy {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status":     status,
			"components": components,
		})
	}
}
