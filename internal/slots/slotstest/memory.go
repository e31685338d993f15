// Package slotstest provides an in-memory stand-in for the Redis slot store.
package slotstest

import (
	"context"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/elarose/storefront/pkg/redis"
)

// Memory implements slots.KV with a mutex-guarded map.
type Memory struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration

	// GetErr and UpdateErr force failures when set.
	GetErr    error
	UpdateErr error
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", m.GetErr
	}
	v, ok := m.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.ttls[key] = ttl
	return nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
		delete(m.ttls, key)
	}
	return nil
}

func (m *Memory) Update(_ context.Context, key string, ttl time.Duration, mutate redis.SlotMutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	current, exists := m.data[key]
	next, err := mutate(current, exists)
	if err != nil {
		return err
	}
	if next == "" {
		delete(m.data, key)
		delete(m.ttls, key)
		return nil
	}
	m.data[key] = next
	m.ttls[key] = ttl
	return nil
}

func (m *Memory) SlotKey(kind, userID string) string {
	return strings.Join([]string{"test", "slot", kind, "user", userID}, ":")
}

// Has reports whether key is stored.
func (m *Memory) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// TTL returns the TTL recorded for key.
func (m *Memory) TTL(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ttls[key]
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
