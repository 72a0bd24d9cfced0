package controllers

import (
	"net/http"

	"github.com/averyhale/meadowcart-backend/api/middleware"
	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/api/validators"
	checkoutsvc "github.com/averyhale/meadowcart-backend/internal/checkout"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/averyhale/meadowcart-backend/pkg/types"
)

// ConfirmCheckoutRequest carries the shopper's instrument and billing details.
type ConfirmCheckoutRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	AddressLine1    string `json:"address_line1" validate:"required"`
	City            string `json:"city" validate:"required"`
	PostalCode      string `json:"postal_code" validate:"required"`
}

// CheckoutBegin prices the cart and returns the payment authorization the
// storefront needs to collect card details.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request context"))
			return
		}

		summary, err := svc.Begin(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// CheckoutConfirm submits the held authorization and reports where the
// storefront should send the shopper next.
func CheckoutConfirm(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request context"))
			return
		}

		var payload ConfirmCheckoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := svc.Submit(r.Context(), sessionID,
			checkoutsvc.Instrument{PaymentMethodID: payload.PaymentMethodID},
			types.BillingDetails{
				Name:  payload.Name,
				Email: payload.Email,
				Address: types.BillingAddress{
					Line1:      payload.AddressLine1,
					City:       payload.City,
					PostalCode: payload.PostalCode,
				},
			},
		)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, outcome)
	}
}
