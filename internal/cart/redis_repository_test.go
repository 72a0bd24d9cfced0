package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type fakeCache struct {
	values  map[string]string
	lastTTL time.Duration
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value.(string)
	f.lastTTL = ttl
	return nil
}

func (f *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.values, k)
	}
	return nil
}

func (f *fakeCache) CartSnapshotKey(sessionID string) string {
	return "mc:cart:" + sessionID
}

func TestRedisRepositoryRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := newFakeCache()
	repo, err := NewRedisRepository(cache, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisRepository: %v", err)
	}

	in := Snapshot{
		SchemaVersion: SnapshotSchemaVersion,
		Items: []LineItem{
			{ProductID: "p1", Name: "A", Price: decimal.RequireFromString("12.50"), Quantity: 2},
		},
	}
	if err := repo.Save(ctx, "sess", in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if cache.lastTTL != time.Hour {
		t.Fatalf("ttl = %s, want 1h", cache.lastTTL)
	}

	out, err := repo.Load(ctx, "sess")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Quantity != 2 || !out.Items[0].Price.Equal(in.Items[0].Price) {
		t.Fatalf("restored snapshot mismatch: %+v", out)
	}
}

func TestRedisRepositoryMissingSnapshot(t *testing.T) {
	t.Parallel()
	repo, err := NewRedisRepository(newFakeCache(), time.Hour)
	if err != nil {
		t.Fatalf("NewRedisRepository: %v", err)
	}

	if _, err := repo.Load(context.Background(), "nope"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound, got %v", err)
	}
}

func TestRedisRepositoryDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cache := newFakeCache()
	repo, err := NewRedisRepository(cache, time.Hour)
	if err != nil {
		t.Fatalf("NewRedisRepository: %v", err)
	}

	if err := repo.Save(ctx, "sess", Snapshot{SchemaVersion: SnapshotSchemaVersion}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Delete(ctx, "sess"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Load(ctx, "sess"); !errors.Is(err, ErrSnapshotNotFound) {
		t.Fatalf("expected ErrSnapshotNotFound after delete, got %v", err)
	}
}

func TestRedisRepositoryRejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewRedisRepository(nil, time.Hour); err == nil {
		t.Fatal("expected error for nil cache")
	}
	if _, err := NewRedisRepository(newFakeCache(), 0); err == nil {
		t.Fatal("expected error for non-positive ttl")
	}
}
