package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"delivery-marketplace/internal/models"

	"github.com/go-redis/redis/v8"
)

// SessionStore persists checkout sessions keyed by customer id. Get returns
// models.ErrNotFound for customers without a session.
type SessionStore interface {
	Get(ctx context.Context, customerID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, customerID string) error
}

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, customerID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[customerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	m.sessions[s.CustomerID] = s.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, customerID string) error {
	m.mu.Lock()
	delete(m.sessions, customerID)
	m.mu.Unlock()
	return nil
}

const redisKeyPrefix = "checkout:session:"

// RedisStore keeps sessions as JSON values that expire after ttl of
// inactivity.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(customerID string) string {
	return redisKeyPrefix + customerID
}

func (r *RedisStore) Get(ctx context.Context, customerID string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get checkout session: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode checkout session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.CustomerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set checkout session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, customerID string) error {
	if err := r.client.Del(ctx, r.key(customerID)).Err(); err != nil {
		return fmt.Errorf("redis del checkout session: %w", err)
	}
	return nil
}
