package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/averyhale/meadowcart-backend/internal/cart"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
)

func newTestService(t *testing.T, auth Authorizer) (Service, *cart.Sessions) {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test"})
	sessions, err := cart.NewSessions(cart.NewMemoryRepository(), logg)
	if err != nil {
		t.Fatalf("NewSessions: %v", err)
	}
	svc, err := NewService(sessions, auth, config.CheckoutConfig{Currency: "gbp", ShippingFee: "5.99"}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, sessions
}

func TestServiceBeginRequiresSessionID(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, &stubAuthorizer{})

	_, err := svc.Begin(context.Background(), "")
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceStateIdleForUnknownSession(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t, &stubAuthorizer{})

	if state := svc.State(context.Background(), "never-seen"); state != StateIdle {
		t.Fatalf("state = %s, want %s", state, StateIdle)
	}
}

func TestServiceTracksStatePerSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	auth := &stubAuthorizer{confirmResult: ConfirmResult{Authorized: true}}
	svc, sessions := newTestService(t, auth)

	first := cart.NewSessionID()
	second := cart.NewSessionID()
	seedCart(ctx, sessions.Get(ctx, first))
	seedCart(ctx, sessions.Get(ctx, second))

	if _, err := svc.Begin(ctx, first); err != nil {
		t.Fatalf("Begin first: %v", err)
	}
	if svc.State(ctx, first) != StateReady {
		t.Fatalf("first state = %s, want %s", svc.State(ctx, first), StateReady)
	}
	if svc.State(ctx, second) != StateIdle {
		t.Fatalf("second state = %s, want %s", svc.State(ctx, second), StateIdle)
	}
}

func TestServiceReleasesReconcilerAfterSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	auth := &stubAuthorizer{confirmResult: ConfirmResult{Authorized: true}}
	svc, sessions := newTestService(t, auth)

	sessionID := cart.NewSessionID()
	seedCart(ctx, sessions.Get(ctx, sessionID))

	if _, err := svc.Begin(ctx, sessionID); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	outcome, err := svc.Submit(ctx, sessionID, Instrument{PaymentMethodID: "pm_card_visa"}, completeBilling())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !outcome.Succeeded {
		t.Fatalf("expected success, got %+v", outcome)
	}

	// The session is back to a fresh checkout, not stuck in Succeeded.
	if state := svc.State(ctx, sessionID); state != StateIdle {
		t.Fatalf("state after success = %s, want %s", state, StateIdle)
	}

	// A new checkout on the same session starts from scratch.
	store := sessions.Get(ctx, sessionID)
	store.AddToCart(ctx, cart.Product{ID: "c", Name: "Soap", Price: decimal.RequireFromString("4.00")})
	summary, err := svc.Begin(ctx, sessionID)
	if err != nil {
		t.Fatalf("Begin after success: %v", err)
	}
	if !summary.Totals.GrandTotal.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("grand total = %s, want 9.99", summary.Totals.GrandTotal)
	}
}

func TestServiceReleasesCartStoreAfterSuccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	auth := &stubAuthorizer{confirmResult: ConfirmResult{Authorized: true}}
	svc, sessions := newTestService(t, auth)

	sessionID := cart.NewSessionID()
	before := sessions.Get(ctx, sessionID)
	seedCart(ctx, before)

	if _, err := svc.Begin(ctx, sessionID); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := svc.Submit(ctx, sessionID, Instrument{PaymentMethodID: "pm_card_visa"}, completeBilling()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// The registry no longer holds the old store; the next access
	// rehydrates from the (now removed) snapshot and comes back empty.
	after := sessions.Get(ctx, sessionID)
	if after == before {
		t.Fatal("cart store should be released after a successful checkout")
	}
	if !after.IsEmpty() {
		t.Fatal("rehydrated cart should be empty after checkout")
	}
}

func TestServiceSubmitBeforeBegin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, sessions := newTestService(t, &stubAuthorizer{})

	sessionID := cart.NewSessionID()
	seedCart(ctx, sessions.Get(ctx, sessionID))

	_, err := svc.Submit(ctx, sessionID, Instrument{PaymentMethodID: "pm_card_visa"}, completeBilling())
	typed := errors.As(err)
	if typed == nil || typed.Code() != errors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}
