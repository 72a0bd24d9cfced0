package payments

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/averyhale/meadowcart-backend/internal/checkout"
	"github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	pkgstripe "github.com/averyhale/meadowcart-backend/pkg/stripe"
	"github.com/averyhale/meadowcart-backend/pkg/types"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

// StripeIntentClient exposes the subset of Stripe payment intent operations
// the checkout flow requires.
type StripeIntentClient interface {
	New(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Confirm(ctx context.Context, id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error)
}

type stripeIntentWrapper struct{}

// NewStripeIntentClient wraps the configured Stripe client so the payments
// adapter can be tested.
func NewStripeIntentClient(api *pkgstripe.Client) StripeIntentClient {
	if api == nil {
		return nil
	}
	return &stripeIntentWrapper{}
}

func (w *stripeIntentWrapper) New(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

func (w *stripeIntentWrapper) Confirm(ctx context.Context, id string, params *stripe.PaymentIntentConfirmParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.Confirm(id, params)
}

// StripeAuthorizer adapts Stripe payment intents to the checkout flow. Cart
// amounts arrive in major units and are converted to minor units here; the
// intent's client secret doubles as the authorization token.
type StripeAuthorizer struct {
	client StripeIntentClient
	logg   *logger.Logger
}

// NewStripeAuthorizer builds the payments adapter.
func NewStripeAuthorizer(client StripeIntentClient, logg *logger.Logger) (*StripeAuthorizer, error) {
	if client == nil {
		return nil, errors.New(errors.CodeInternal, "payments adapter requires a stripe client")
	}
	return &StripeAuthorizer{client: client, logg: logg}, nil
}

// MinorUnits converts a major-unit amount to the provider's integer minor
// units, rounding half away from zero the way the storefront always has.
func MinorUnits(amount decimal.Decimal) (int64, error) {
	if !amount.IsPositive() {
		return 0, errors.New(errors.CodeValidation, "payment amount must be positive")
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}

// RequestAuthorization creates a payment intent for the amount and returns
// its client secret as the authorization token.
func (a *StripeAuthorizer) RequestAuthorization(ctx context.Context, amount decimal.Decimal, currency string) (checkout.Authorization, error) {
	minor, err := MinorUnits(amount)
	if err != nil {
		return checkout.Authorization{}, err
	}

	intent, err := a.client.New(ctx, &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(currency),
	})
	if err != nil {
		return checkout.Authorization{}, errors.Wrap(errors.CodeDependency, err, "create payment intent")
	}
	if intent.ClientSecret == "" {
		return checkout.Authorization{}, errors.New(errors.CodeDependency, "payment intent missing client secret")
	}
	return checkout.Authorization{Token: intent.ClientSecret}, nil
}

// ConfirmPayment confirms the intent referenced by the token with the
// shopper's payment method. Card declines come back as a modeled result;
// anything else is a transport error.
func (a *StripeAuthorizer) ConfirmPayment(ctx context.Context, token string, instrument checkout.Instrument, billing types.BillingDetails) (checkout.ConfirmResult, error) {
	intentID := IntentIDFromToken(token)
	if intentID == "" {
		return checkout.ConfirmResult{}, errors.New(errors.CodeValidation, "authorization token is malformed")
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(instrument.PaymentMethodID),
	}
	if billing.Email != "" {
		params.ReceiptEmail = stripe.String(billing.Email)
	}

	intent, err := a.client.Confirm(ctx, intentID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if stdErrors.As(err, &stripeErr) && stripeErr.Type == stripe.ErrorTypeCard {
			a.warn(ctx, "card declined by provider")
			return checkout.ConfirmResult{Authorized: false, DeclineReason: string(stripeErr.Code)}, nil
		}
		return checkout.ConfirmResult{}, errors.Wrap(errors.CodeDependency, err, "confirm payment intent")
	}

	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded, stripe.PaymentIntentStatusRequiresCapture:
		return checkout.ConfirmResult{Authorized: true}, nil
	default:
		return checkout.ConfirmResult{Authorized: false, DeclineReason: string(intent.Status)}, nil
	}
}

// IntentIDFromToken recovers the payment intent id from its client secret.
func IntentIDFromToken(token string) string {
	id, _, found := strings.Cut(token, "_secret")
	if !found {
		return ""
	}
	return id
}

func (a *StripeAuthorizer) warn(ctx context.Context, msg string) {
	if a.logg == nil {
		return
	}
	a.logg.Warn(ctx, msg)
}
