package auth

import (
	"context"
	"time"

	"devrush/internal/cache"
	"devrush/internal/session"
)

const sessionKeyPrefix = "session:"

// SessionSlots stores each session's persisted user in Redis.
type SessionSlots struct {
	cache *cache.Client
	ttl   time.Duration
}

// Ensure SessionSlots implements session.Provider
var _ session.Provider = (*SessionSlots)(nil)

// NewSessionSlots creates a Redis-backed slot provider whose entries expire after ttl.
func NewSessionSlots(cache *cache.Client, ttl time.Duration) *SessionSlots {
	return &SessionSlots{cache: cache, ttl: ttl}
}

// Slot returns the slot stored under session:<id>.
func (s *SessionSlots) Slot(id string) session.Slot {
	return &redisSlot{cache: s.cache, key: sessionKeyPrefix + id, ttl: s.ttl}
}

type redisSlot struct {
	cache *cache.Client
	key   string
	ttl   time.Duration
}

func (s *redisSlot) Read(ctx context.Context) ([]byte, error) {
	return s.cache.Get(ctx, s.key)
}

func (s *redisSlot) Write(ctx context.Context, data []byte) error {
	return s.cache.Set(ctx, s.key, data, s.ttl)
}

func (s *redisSlot) Clear(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}
