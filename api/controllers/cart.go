package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/averyhale/meadowcart-backend/api/middleware"
	"github.com/averyhale/meadowcart-backend/api/responses"
	"github.com/averyhale/meadowcart-backend/api/validators"
	cartsvc "github.com/averyhale/meadowcart-backend/internal/cart"
	product "github.com/averyhale/meadowcart-backend/internal/products"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	pkgerrors "github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

// CartResponse is the full cart view returned by every cart endpoint.
type CartResponse struct {
	SessionID string             `json:"session_id"`
	Items     []cartsvc.LineItem `json:"items"`
	Totals    cartsvc.Totals     `json:"totals"`
}

// AddToCartRequest adds one unit of a product to the cart.
type AddToCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

func newCartResponse(store *cartsvc.Store, cfg config.CheckoutConfig) CartResponse {
	items := store.Items()
	return CartResponse{
		SessionID: store.SessionID(),
		Items:     items,
		Totals:    cartsvc.ComputeTotals(items, cfg.ShippingFeeAmount()),
	}
}

func sessionStore(r *http.Request, sessions *cartsvc.Sessions) (*cartsvc.Store, error) {
	sessionID := middleware.CartSessionFromContext(r.Context())
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request context")
	}
	return sessions.Get(r.Context(), sessionID), nil
}

// CartFetch returns the session's cart with computed totals.
func CartFetch(sessions *cartsvc.Sessions, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

// CartAddItem resolves the product and adds one unit to the cart.
func CartAddItem(sessions *cartsvc.Sessions, products product.Service, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload AddToCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := products.CartProduct(r.Context(), payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store.AddToCart(r.Context(), *snapshot)
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

// CartIncreaseItem bumps the quantity of an existing line.
func CartIncreaseItem(sessions *cartsvc.Sessions, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, productID, err := cartLineTarget(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.IncreaseQuantity(r.Context(), productID)
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

// CartDecreaseItem lowers the quantity of an existing line, removing it at zero.
func CartDecreaseItem(sessions *cartsvc.Sessions, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, productID, err := cartLineTarget(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.DecreaseQuantity(r.Context(), productID)
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

// CartRemoveItem drops a line from the cart.
func CartRemoveItem(sessions *cartsvc.Sessions, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, productID, err := cartLineTarget(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.RemoveFromCart(r.Context(), productID)
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

// CartClear empties the session's cart.
func CartClear(sessions *cartsvc.Sessions, cfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store, err := sessionStore(r, sessions)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		store.ClearCart(r.Context())
		responses.WriteSuccess(w, newCartResponse(store, cfg))
	}
}

func cartLineTarget(r *http.Request, sessions *cartsvc.Sessions) (*cartsvc.Store, string, error) {
	store, err := sessionStore(r, sessions)
	if err != nil {
		return nil, "", err
	}
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "product id must be a uuid")
	}
	return store, productID.String(), nil
}
