package middleware

import (
	"net/http"
	"time"

	"github.com/averyhale/meadowcart-backend/internal/cart"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/google/uuid"
)

// CartSessionCookie names the storefront session cookie.
const CartSessionCookie = "mc_cart_session"

// CartSession reads the storefront session cookie, minting one for first-time
// visitors, and injects the session id into the request context. The cookie
// TTL matches the cart snapshot TTL so the two expire together.
func CartSession(ttl time.Duration, secure bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(CartSessionCookie); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sessionID = cookie.Value
				}
			}

			if sessionID == "" {
				sessionID = cart.NewSessionID()
				http.SetCookie(w, &http.Cookie{
					Name:     CartSessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
