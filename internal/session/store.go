// Package session keeps browsing sessions: a navigator per visitor plus its persisted cursor and selection.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"visitbook/internal/access"
	"visitbook/internal/models"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 30 * time.Minute

// State is the persisted part of a session.
type State struct {
	ID        string                   `json:"id"`
	Privilege access.Privilege         `json:"privilege"`
	Year      int                      `json:"year"`
	Month     time.Month               `json:"month"`
	Selection *models.BookingSelection `json:"selection,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// IsExpired checks if the state has not been updated within ttl.
func (s *State) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.UpdatedAt) > ttl
}

// Store persists session state.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps states in process memory.
type MemoryStore struct {
	states map[string]State
	mu     sync.RWMutex
	ttl    time.Duration
	clock  models.Clock
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(ttl time.Duration, clock models.Clock) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = models.SystemClock{}
	}
	return &MemoryStore{states: make(map[string]State), ttl: ttl, clock: clock}
}

// Get returns a copy of the state for id.
func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[id]
	if !ok || st.IsExpired(m.clock.Now(), m.ttl) {
		return nil, ErrNotFound
	}
	return &st, nil
}

// Save stores a copy of state.
func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state.ID] = *state
	return nil
}

// Delete removes a state.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

// Cleanup removes expired states.
func (m *MemoryStore) Cleanup() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	removed := 0
	for id, st := range m.states {
		if st.IsExpired(now, m.ttl) {
			delete(m.states, id)
			removed++
		}
	}
	return removed
}

// RedisStore keeps states as JSON values with a TTL.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a store on client; keys are prefix + id.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = "visitbook:session:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

// Get loads the state for id.
func (r *RedisStore) Get(ctx context.Context, id string) (*State, error) {
	val, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", id, err)
	}
	var st State
	if err := json.Unmarshal(val, &st); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &st, nil
}

// Save writes state and resets its TTL.
func (r *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", state.ID, err)
	}
	if err := r.client.Set(ctx, r.key(state.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", state.ID, err)
	}
	return nil
}

// Delete removes a state.
func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
