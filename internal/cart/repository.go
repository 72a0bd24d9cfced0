package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSnapshotNotFound signals that no snapshot exists for the session.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// SnapshotRepository persists whole-cart snapshots keyed by session id. The
// store serializes the full state on every write, so last-writer-wins is safe.
type SnapshotRepository interface {
	Load(ctx context.Context, sessionID string) (*Snapshot, error)
	Save(ctx context.Context, sessionID string, snapshot Snapshot) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryRepository keeps snapshots in process memory. Used in tests and as a
// fallback when no durable backend is configured.
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{snapshots: map[string][]byte{}}
}

func (r *MemoryRepository) Load(ctx context.Context, sessionID string) (*Snapshot, error) {
	r.mu.RLock()
	data, ok := r.snapshots[sessionID]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	snapshot, err := DecodeSnapshot(data)
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func (r *MemoryRepository) Save(ctx context.Context, sessionID string, snapshot Snapshot) error {
	data, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.snapshots[sessionID] = data
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.snapshots, sessionID)
	r.mu.Unlock()
	return nil
}
