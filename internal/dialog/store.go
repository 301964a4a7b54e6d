package dialog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

var storeTracer = otel.Tracer("agendazap.internal.dialog.store")

// DefaultSessionTTL bounds how long an abandoned conversation survives.
const DefaultSessionTTL = 24 * time.Hour

// SessionStore persists sessions in Redis and serializes access per identity.
// Messages from the same phone take the identity's lock for the whole turn;
// different identities run fully in parallel.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration
	locks keyedMutex
}

// NewSessionStore builds a store with the given TTL; zero means the default.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if client == nil {
		panic("dialog: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{redis: client, ttl: ttl}
}

// Acquire takes the identity's lock and returns its release func.
func (s *SessionStore) Acquire(identity string) func() {
	return s.locks.lock(identity)
}

// Load returns the identity's session, or nil when none exists.
func (s *SessionStore) Load(ctx context.Context, identity string) (*Session, error) {
	ctx, span := storeTracer.Start(ctx, "dialog.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("dialog: load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("dialog: decode session: %w", err)
	}
	return &sess, nil
}

// Save replaces the identity's session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, identity string, sess *Session) error {
	ctx, span := storeTracer.Start(ctx, "dialog.save_session")
	defer span.End()

	data, err := json.Marshal(sess)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(identity), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: persist session: %w", err)
	}
	return nil
}

// Delete removes the identity's session. Deleting an absent session is fine.
func (s *SessionStore) Delete(ctx context.Context, identity string) error {
	ctx, span := storeTracer.Start(ctx, "dialog.delete_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(identity)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: delete session: %w", err)
	}
	return nil
}

func sessionKey(identity string) string {
	return fmt.Sprintf("session:%s", identity)
}

// keyedMutex hands out one mutex per key, reclaiming entries once the last
// holder releases.
type keyedMutex struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	if k.entries == nil {
		k.entries = make(map[string]*lockEntry)
	}
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.entries, key)
		}
		k.mu.Unlock()
	}
}
