package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/marketcat/storefront-api/internal/redisx"
)

var ErrNotFound = errors.New("cart not found")

// Store persists one cart document per session.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, st State) error
	Delete(ctx context.Context, sessionID string) error
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: redisx.TTLCart}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (State, error) {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, ErrNotFound
	}
	if err != nil {
		return State{}, fmt.Errorf("redis get failed: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return st, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, st State) error {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf(redisx.KeyCart, sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// MemoryStore keeps carts in process memory. Used in tests and when running
// without Redis. Documents go through JSON so behavior matches RedisStore.
type MemoryStore struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{store: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, sessionID string) (State, error) {
	m.mu.RLock()
	data, ok := m.store[sessionID]
	m.mu.RUnlock()
	if !ok {
		return State{}, ErrNotFound
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return st, nil
}

func (m *MemoryStore) Save(ctx context.Context, sessionID string, st State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	m.mu.Lock()
	m.store[sessionID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.store, sessionID)
	m.mu.Unlock()
	return nil
}
