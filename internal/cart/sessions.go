package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/averyhale/meadowcart-backend/pkg/logger"
	"github.com/google/uuid"
)

// Sessions hands out one Store per storefront session. The first request for
// a session rehydrates from the snapshot repository; subsequent requests get
// the same in-memory store.
type Sessions struct {
	mu     sync.Mutex
	stores map[string]*Store
	repo   SnapshotRepository
	logg   *logger.Logger
}

// NewSessions builds the session registry backed by the provided repository.
func NewSessions(repo SnapshotRepository, logg *logger.Logger) (*Sessions, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository is required")
	}
	return &Sessions{
		stores: map[string]*Store{},
		repo:   repo,
		logg:   logg,
	}, nil
}

// Get returns the store for the session, constructing and rehydrating it on
// first use.
func (s *Sessions) Get(ctx context.Context, sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	if store, ok := s.stores[sessionID]; ok {
		return store
	}
	store := NewStore(ctx, sessionID, s.repo, s.logg)
	s.stores[sessionID] = store
	return store
}

// Release drops the in-memory store for a session. The persisted snapshot is
// untouched, so the session rehydrates on next access.
func (s *Sessions) Release(sessionID string) {
	s.mu.Lock()
	delete(s.stores, sessionID)
	s.mu.Unlock()
}

// NewSessionID mints an identifier for a new storefront session.
func NewSessionID() string {
	return uuid.NewString()
}
