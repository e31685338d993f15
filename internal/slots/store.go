// Package slots persists one JSON document per user and kind in Redis.
package slots

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/elarose/storefront/pkg/errors"
	"github.com/elarose/storefront/pkg/redis"
)

// KV is the Redis surface the slot store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Update(ctx context.Context, key string, ttl time.Duration, mutate redis.SlotMutation) error
	SlotKey(kind, userID string) string
}

// Emptier is implemented by slot payloads that can be dropped once empty.
type Emptier interface {
	IsEmpty() bool
}

// Store reads and writes slots of type T for a single kind.
type Store[T any] struct {
	kv   KV
	kind string
	ttl  time.Duration
}

func New[T any](kv KV, kind string, ttl time.Duration) (*Store[T], error) {
	if kv == nil {
		return nil, errors.New("slot kv store required")
	}
	if strings.TrimSpace(kind) == "" {
		return nil, errors.New("slot kind required")
	}
	return &Store[T]{kv: kv, kind: kind, ttl: ttl}, nil
}

// Key returns the Redis key for userID.
func (s *Store[T]) Key(userID string) string {
	return s.kv.SlotKey(s.kind, userID)
}

// Load returns the stored value or the zero value when the slot is empty.
func (s *Store[T]) Load(ctx context.Context, userID string) (T, error) {
	var value T
	if err := requireUser(userID); err != nil {
		return value, err
	}
	raw, err := s.kv.Get(ctx, s.Key(userID))
	if errors.Is(err, goredis.Nil) {
		return value, nil
	}
	if err != nil {
		return value, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+s.kind)
	}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return value, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode "+s.kind)
	}
	return value, nil
}

// Save replaces the slot for userID with value.
func (s *Store[T]) Save(ctx context.Context, userID string, value T) error {
	_, err := s.Update(ctx, userID, func(current *T) error {
		*current = value
		return nil
	})
	return err
}

// Update applies fn to the current value inside an optimistic transaction and
// returns the value that was written.
func (s *Store[T]) Update(ctx context.Context, userID string, fn func(*T) error) (T, error) {
	var result T
	if err := requireUser(userID); err != nil {
		return result, err
	}

	err := s.kv.Update(ctx, s.Key(userID), s.ttl, func(current string, exists bool) (string, error) {
		var value T
		if exists && current != "" {
			if err := json.Unmarshal([]byte(current), &value); err != nil {
				return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode "+s.kind)
			}
		}
		if err := fn(&value); err != nil {
			return "", err
		}
		result = value
		if e, ok := any(&value).(Emptier); ok && e.IsEmpty() {
			return "", nil
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode "+s.kind)
		}
		return string(encoded), nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return result, err
		}
		if errors.Is(err, redis.ErrTxConflict) {
			return result, pkgerrors.Wrap(pkgerrors.CodeConflict, err, s.kind+" was modified concurrently, retry")
		}
		return result, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save "+s.kind)
	}
	return result, nil
}

// Clear removes the slot for userID.
func (s *Store[T]) Clear(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.kv.Del(ctx, s.Key(userID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear "+s.kind)
	}
	return nil
}

func requireUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	return nil
}
