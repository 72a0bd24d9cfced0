package checkout

import (
	"context"
	"sync"

	"github.com/averyhale/meadowcart-backend/internal/cart"
	"github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/averyhale/meadowcart-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// State tracks where a checkout sits between the cart and the payment
// provider.
type State string

const (
	StateIdle                  State = "idle"
	StateAwaitingAuthorization State = "awaiting_authorization"
	StateReady                 State = "ready"
	StateSubmitting            State = "submitting"
	StateSucceeded             State = "succeeded"
	StateFailed                State = "failed"
)

// Post-payment destinations handed back to the storefront.
const (
	RedirectSuccess = "/shop/success"
	RedirectCancel  = "/shop/cancel"
)

// Authorization is the provider's opaque handle for a pending payment. The
// token is what the storefront needs to collect the payment instrument.
type Authorization struct {
	Token string `json:"token"`
}

// Instrument references the payment method the shopper selected.
type Instrument struct {
	PaymentMethodID string `json:"payment_method_id"`
}

// Complete reports whether the instrument can be submitted.
func (i Instrument) Complete() bool {
	return i.PaymentMethodID != ""
}

// ConfirmResult is the provider's verdict on a submitted payment. A decline
// is a modeled outcome, not a transport failure.
type ConfirmResult struct {
	Authorized    bool
	DeclineReason string
}

// Authorizer is the payment provider surface the reconciler depends on.
type Authorizer interface {
	RequestAuthorization(ctx context.Context, amount decimal.Decimal, currency string) (Authorization, error)
	ConfirmPayment(ctx context.Context, token string, instrument Instrument, billing types.BillingDetails) (ConfirmResult, error)
}

// cartAccess is the slice of the cart store the reconciler reads and, on
// success, clears.
type cartAccess interface {
	Items() []cart.LineItem
	ClearCart(ctx context.Context)
}

// Outcome is what a finished submission reports to the storefront.
type Outcome struct {
	Succeeded bool   `json:"succeeded"`
	Redirect  string `json:"redirect"`
	Reason    string `json:"reason,omitempty"`
}

// Summary is the begin-checkout response: the grand total the authorization
// covers plus the token the storefront uses to collect payment details.
type Summary struct {
	Totals        cart.Totals   `json:"totals"`
	Authorization Authorization `json:"authorization"`
}

// Reconciler drives one session's checkout. It never mutates the cart except
// to clear it exactly once after a confirmed payment, and it refuses
// overlapping submissions for the same session.
type Reconciler struct {
	mu sync.Mutex

	cart        cartAccess
	authorizer  Authorizer
	currency    string
	shippingFee decimal.Decimal
	logg        *logger.Logger

	state            State
	authorization    Authorization
	authorizedAmount decimal.Decimal
	totals           cart.Totals
	cleared          bool
}

// NewReconciler wires a reconciler to a session's cart and the payment
// provider.
func NewReconciler(cartStore cartAccess, authorizer Authorizer, currency string, shippingFee decimal.Decimal, logg *logger.Logger) (*Reconciler, error) {
	if cartStore == nil {
		return nil, errors.New(errors.CodeInternal, "checkout reconciler requires a cart store")
	}
	if authorizer == nil {
		return nil, errors.New(errors.CodeInternal, "checkout reconciler requires an authorizer")
	}
	if currency == "" {
		return nil, errors.New(errors.CodeInternal, "checkout reconciler requires a currency")
	}
	return &Reconciler{
		cart:        cartStore,
		authorizer:  authorizer,
		currency:    currency,
		shippingFee: shippingFee,
		logg:        logg,
		state:       StateIdle,
	}, nil
}

// Begin prices the cart and obtains a payment authorization for the grand
// total. An empty cart or a non-positive total is not an error: Begin returns
// bare totals without a token and leaves the reconciler idle, making no
// provider call. Calling Begin again after the cart changed discards
// the stale authorization and requests a fresh one for the new amount.
func (r *Reconciler) Begin(ctx context.Context) (Summary, error) {
	r.mu.Lock()

	if r.state == StateSubmitting {
		r.mu.Unlock()
		return Summary{}, errors.New(errors.CodeStateConflict, "payment submission already in progress")
	}
	if r.state == StateSucceeded {
		r.mu.Unlock()
		return Summary{}, errors.New(errors.CodeStateConflict, "checkout already completed")
	}

	items := r.cart.Items()
	totals := cart.ComputeTotals(items, r.shippingFee)

	if len(items) == 0 || !totals.GrandTotal.IsPositive() {
		r.state = StateIdle
		r.authorization = Authorization{}
		r.authorizedAmount = decimal.Zero
		r.totals = totals
		r.mu.Unlock()
		return Summary{Totals: totals}, nil
	}

	// An authorization already covering this exact amount stays valid.
	if r.state == StateReady && r.authorizedAmount.Equal(totals.GrandTotal) {
		r.totals = totals
		summary := Summary{Totals: totals, Authorization: r.authorization}
		r.mu.Unlock()
		return summary, nil
	}

	r.state = StateAwaitingAuthorization
	r.mu.Unlock()

	auth, err := r.authorizer.RequestAuthorization(ctx, totals.GrandTotal, r.currency)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.state = StateIdle
		r.authorization = Authorization{}
		return Summary{}, errors.Wrap(errors.CodeDependency, err, "payment authorization failed")
	}

	r.state = StateReady
	r.authorization = auth
	r.authorizedAmount = totals.GrandTotal
	r.totals = totals
	r.cleared = false
	return Summary{Totals: totals, Authorization: auth}, nil
}

// Submit confirms the held authorization with the shopper's instrument and
// billing details. Only one submission may be in flight per session; repeats
// while one is pending are rejected. A confirmed payment clears the cart
// exactly once; a decline or a provider error ends the attempt with a cancel
// redirect and the cart untouched.
func (r *Reconciler) Submit(ctx context.Context, instrument Instrument, billing types.BillingDetails) (Outcome, error) {
	r.mu.Lock()

	switch r.state {
	case StateReady:
	case StateSubmitting:
		r.mu.Unlock()
		return Outcome{}, errors.New(errors.CodeStateConflict, "payment submission already in progress")
	case StateSucceeded:
		r.mu.Unlock()
		return Outcome{}, errors.New(errors.CodeStateConflict, "checkout already completed")
	default:
		r.mu.Unlock()
		return Outcome{}, errors.New(errors.CodeStateConflict, "checkout has no pending authorization")
	}

	if !billing.Complete() {
		r.mu.Unlock()
		return Outcome{}, errors.New(errors.CodeValidation, "billing details are incomplete")
	}
	if !instrument.Complete() {
		r.mu.Unlock()
		return Outcome{}, errors.New(errors.CodeValidation, "payment instrument is missing")
	}

	token := r.authorization.Token
	r.state = StateSubmitting
	r.mu.Unlock()

	result, err := r.authorizer.ConfirmPayment(ctx, token, instrument, billing)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		// Confirmation failure is terminal for the attempt, provider
		// errors included. The cart survives; a new Begin starts over.
		r.state = StateFailed
		if r.logg != nil {
			r.logg.Error(ctx, "payment confirmation failed", err)
		}
		return Outcome{Succeeded: false, Redirect: RedirectCancel}, nil
	}

	if !result.Authorized {
		r.state = StateFailed
		r.info(ctx, "payment declined")
		return Outcome{Succeeded: false, Redirect: RedirectCancel, Reason: result.DeclineReason}, nil
	}

	if !r.cleared {
		r.cart.ClearCart(ctx)
		r.cleared = true
	}
	r.state = StateSucceeded
	r.info(ctx, "payment confirmed, cart cleared")
	return Outcome{Succeeded: true, Redirect: RedirectSuccess}, nil
}

// State reports the current checkout state.
func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Totals reports the totals captured by the most recent Begin.
func (r *Reconciler) Totals() cart.Totals {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totals
}

func (r *Reconciler) info(ctx context.Context, msg string) {
	if r.logg == nil {
		return
	}
	r.logg.Info(ctx, msg)
}
