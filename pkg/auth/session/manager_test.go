package session

import (
	"context"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	f.values[key] = "1"
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

type fakeKeyer struct{}

func (fakeKeyer) AccessSessionKey(accessID string) string { return "session:access:" + accessID }

func TestSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	m := &Manager{store: newFakeStore(), keyer: fakeKeyer{}, ttl: time.Hour}

	accessID := NewAccessID()
	if err := m.Create(ctx, accessID); err != nil {
		t.Fatalf("create session: %v", err)
	}

	ok, err := m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session: %v", err)
	}
	if !ok {
		t.Fatal("expected session to exist after create")
	}

	if err := m.Revoke(ctx, accessID); err != nil {
		t.Fatalf("revoke session: %v", err)
	}

	ok, err = m.HasSession(ctx, accessID)
	if err != nil {
		t.Fatalf("has session after revoke: %v", err)
	}
	if ok {
		t.Fatal("expected session gone after revoke")
	}
}

func TestSessionRequiresAccessID(t *testing.T) {
	m := &Manager{store: newFakeStore(), keyer: fakeKeyer{}, ttl: time.Hour}
	if err := m.Create(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank access id")
	}
	if _, err := m.HasSession(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank access id")
	}
}
