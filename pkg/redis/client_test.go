package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	allowed, count, err := client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Fatalf("expected allowed on first request")
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expire for first increment")
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "test-scope", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}
}

func TestIncrWithTTLSetsExpiryOnce(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	for i := 0; i < 3; i++ {
		if _, err := client.IncrWithTTL(ctx, "k", time.Minute); err != nil {
			t.Fatalf("incr failed: %v", err)
		}
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].ttl != time.Minute {
		t.Fatalf("expected a single expire call, got %+v", mock.expireCalls)
	}
}

func TestGetMissingKeyReturnsNil(t *testing.T) {
	client := &Client{store: newMockCmdable()}
	if _, err := client.Get(context.Background(), "missing"); err != redis.Nil {
		t.Fatalf("expected redis.Nil, got %v", err)
	}
}

func TestUpdateWithoutConnection(t *testing.T) {
	client := &Client{}
	err := client.Update(context.Background(), "k", 0, func(string, bool) (string, error) { return "v", nil })
	if err == nil {
		t.Fatal("expected error without watcher")
	}
}

func TestUpdateRetriesWatchConflicts(t *testing.T) {
	noop := func(string, bool) (string, error) { return "v", nil }

	tests := []struct {
		name      string
		failures  int
		wantErr   error
		wantCalls int
	}{
		{name: "first attempt", failures: 0, wantCalls: 1},
		{name: "recovers after conflicts", failures: maxWatchAttempts - 1, wantCalls: maxWatchAttempts},
		{name: "gives up", failures: maxWatchAttempts, wantErr: ErrTxConflict, wantCalls: maxWatchAttempts},
		{name: "keeps conflicting", failures: maxWatchAttempts + 3, wantErr: ErrTxConflict, wantCalls: maxWatchAttempts},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := &scriptedWatcher{failures: tc.failures}
			client := &Client{watch: w}

			err := client.Update(context.Background(), "slot", time.Minute, noop)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if w.calls != tc.wantCalls {
				t.Fatalf("expected %d watch attempts, got %d", tc.wantCalls, w.calls)
			}
			if len(w.keys) == 0 || w.keys[0] != "slot" {
				t.Fatalf("expected key to be watched, got %v", w.keys)
			}
		})
	}
}

func TestUpdateReturnsOtherErrorsWithoutRetry(t *testing.T) {
	cause := errors.New("connection reset")
	w := &scriptedWatcher{err: cause}
	client := &Client{watch: w}

	err := client.Update(context.Background(), "slot", 0, func(string, bool) (string, error) { return "", nil })
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause, got %v", err)
	}
	if errors.Is(err, ErrTxConflict) {
		t.Fatal("a transport error is not a conflict")
	}
	if w.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", w.calls)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("scope", "id"); got != "elarose:idempotency:scope:id" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.RateLimitKey("scope"); got != "elarose:rate_limit:scope" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.CounterKey("hits"); got != "elarose:counter:hits" {
		t.Fatalf("unexpected counter key %s", got)
	}
	if got := client.SlotKey("cart", "user-1"); got != "elarose:slot:cart:user:user-1" {
		t.Fatalf("unexpected slot key %s", got)
	}
	if got := client.SlotKey("cart", " "); got != "elarose:slot:cart:user" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
	if got := client.LockKey("cron"); got != "elarose:lock:cron" {
		t.Fatalf("unexpected lock key %s", got)
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

// scriptedWatcher fails the first failures attempts with TxFailedErr, the way
// EXEC reports a watched key that changed, then returns err.
type scriptedWatcher struct {
	failures int
	err      error
	calls    int
	keys     []string
}

func (w *scriptedWatcher) Watch(_ context.Context, _ func(*redis.Tx) error, keys ...string) error {
	w.calls++
	w.keys = keys
	if w.calls <= w.failures {
		return redis.TxFailedErr
	}
	return w.err
}
