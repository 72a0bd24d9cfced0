package checkout

import (
	"context"
	"sync"

	"github.com/averyhale/meadowcart-backend/internal/cart"
	"github.com/averyhale/meadowcart-backend/pkg/config"
	"github.com/averyhale/meadowcart-backend/pkg/errors"
	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/averyhale/meadowcart-backend/pkg/types"
)

// Service drives checkouts across storefront sessions.
type Service interface {
	Begin(ctx context.Context, sessionID string) (Summary, error)
	Submit(ctx context.Context, sessionID string, instrument Instrument, billing types.BillingDetails) (Outcome, error)
	State(ctx context.Context, sessionID string) State
}

type service struct {
	mu          sync.Mutex
	reconcilers map[string]*Reconciler

	carts      *cart.Sessions
	authorizer Authorizer
	cfg        config.CheckoutConfig
	logg       *logger.Logger
}

// NewService builds the checkout service on top of the cart session registry
// and the payment provider.
func NewService(carts *cart.Sessions, authorizer Authorizer, cfg config.CheckoutConfig, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, errors.New(errors.CodeInternal, "checkout service requires cart sessions")
	}
	if authorizer == nil {
		return nil, errors.New(errors.CodeInternal, "checkout service requires an authorizer")
	}
	if logg == nil {
		return nil, errors.New(errors.CodeInternal, "checkout service requires a logger")
	}
	return &service{
		reconcilers: map[string]*Reconciler{},
		carts:       carts,
		authorizer:  authorizer,
		cfg:         cfg,
		logg:        logg,
	}, nil
}

func (s *service) Begin(ctx context.Context, sessionID string) (Summary, error) {
	rec, err := s.reconciler(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	return rec.Begin(s.logg.WithCartSession(ctx, sessionID))
}

func (s *service) Submit(ctx context.Context, sessionID string, instrument Instrument, billing types.BillingDetails) (Outcome, error) {
	rec, err := s.reconciler(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	outcome, err := rec.Submit(s.logg.WithCartSession(ctx, sessionID), instrument, billing)
	if err != nil {
		return Outcome{}, err
	}

	// A finished checkout is terminal for the session's reconciler. The
	// cart store goes too; the next request rehydrates an empty one.
	if outcome.Succeeded {
		s.mu.Lock()
		delete(s.reconcilers, sessionID)
		s.mu.Unlock()
		s.carts.Release(sessionID)
	}
	return outcome, nil
}

func (s *service) State(ctx context.Context, sessionID string) State {
	s.mu.Lock()
	rec, ok := s.reconcilers[sessionID]
	s.mu.Unlock()
	if !ok {
		return StateIdle
	}
	return rec.State()
}

// reconciler returns the session's reconciler, constructing it on first use.
func (s *service) reconciler(ctx context.Context, sessionID string) (*Reconciler, error) {
	if sessionID == "" {
		return nil, errors.New(errors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.reconcilers[sessionID]; ok {
		return rec, nil
	}

	store := s.carts.Get(ctx, sessionID)
	rec, err := NewReconciler(store, s.authorizer, s.cfg.Currency, s.cfg.ShippingFeeAmount(), s.logg)
	if err != nil {
		return nil, err
	}
	s.reconcilers[sessionID] = rec
	return rec, nil
}
