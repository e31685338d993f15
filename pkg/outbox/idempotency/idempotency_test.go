package idempotency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type memoryStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	failSet error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (s *memoryStore) SetNX(_ context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.failSet != nil {
		return false, s.failSet
	}
	if _, ok := s.values[key]; ok {
		return false, nil
	}
	s.values[key] = value.(string)
	s.ttls[key] = ttl
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return "elarose:idempotency:" + scope + ":" + id
}

func (s *memoryStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func TestClaimOnlyOnce(t *testing.T) {
	store := newMemoryStore()
	manager, err := NewManager(store, 24*time.Hour)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	ctx := context.Background()
	eventID := uuid.New()

	if won, err := manager.Claim(ctx, "invoice-worker", eventID); err != nil || !won {
		t.Fatalf("first claim: won=%v err=%v", won, err)
	}
	if won, _ := manager.Claim(ctx, "invoice-worker", eventID); won {
		t.Fatal("second claim should lose")
	}
	if won, _ := manager.Claim(ctx, "audit-worker", eventID); !won {
		t.Fatal("claims are scoped per consumer")
	}

	key := "elarose:idempotency:evt:claimed:invoice-worker:" + eventID.String()
	if store.ttls[key] != 24*time.Hour {
		t.Fatalf("unexpected ttl %v for %s", store.ttls[key], key)
	}
}

func TestReleaseAllowsRetry(t *testing.T) {
	store := newMemoryStore()
	manager, _ := NewManager(store, time.Hour)
	ctx := context.Background()
	eventID := uuid.New()

	_, _ = manager.Claim(ctx, "invoice-worker", eventID)
	if err := manager.Release(ctx, "invoice-worker", eventID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if won, _ := manager.Claim(ctx, "invoice-worker", eventID); !won {
		t.Fatal("expected claim after release")
	}
}

func TestClaimedAt(t *testing.T) {
	store := newMemoryStore()
	manager, _ := NewManager(store, time.Hour)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return fixed }
	ctx := context.Background()
	eventID := uuid.New()

	if _, ok, err := manager.ClaimedAt(ctx, "invoice-worker", eventID); err != nil || ok {
		t.Fatalf("expected no claim, ok=%v err=%v", ok, err)
	}
	_, _ = manager.Claim(ctx, "invoice-worker", eventID)
	at, ok, err := manager.ClaimedAt(ctx, "invoice-worker", eventID)
	if err != nil || !ok || !at.Equal(fixed) {
		t.Fatalf("unexpected claim time %v ok=%v err=%v", at, ok, err)
	}
}

func TestClaimErrors(t *testing.T) {
	store := newMemoryStore()
	store.failSet = errors.New("boom")
	manager, _ := NewManager(store, time.Hour)
	if _, err := manager.Claim(context.Background(), "invoice-worker", uuid.New()); err == nil {
		t.Fatal("expected store error")
	}
	if _, err := manager.Claim(context.Background(), "", uuid.New()); err == nil {
		t.Fatal("expected consumer error")
	}
	if _, err := manager.Claim(context.Background(), "invoice-worker", uuid.Nil); err == nil {
		t.Fatal("expected event id error")
	}
	if _, err := NewManager(store, -time.Second); err == nil {
		t.Fatal("expected negative ttl error")
	}
}
