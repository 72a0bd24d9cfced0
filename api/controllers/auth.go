package controllers

import (
	"net/http"

	"github.com/averyhale/meadowcart-backend/api/middleware"
	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/api/validators"
	authsvc "github.com/averyhale/meadowcart-backend/internal/auth"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

// AdminAuthLogin exchanges admin credentials for an access token.
func AdminAuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// AdminAuthLogout revokes the session behind the caller's token.
func AdminAuthLogout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
			return
		}
		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
