package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const sessionKeyPrefix = "session:"

var now = time.Now

// KV is the byte-level cache SessionCache sits on; *Client implements it.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// SessionCache keeps live sessions close to the auth middleware. Postgres
// stays the source of truth; entries never outlive the session itself.
type SessionCache struct {
	kv  KV
	ttl time.Duration
}

func NewSessionCache(kv KV, ttl time.Duration) *SessionCache {
	return &SessionCache{kv: kv, ttl: ttl}
}

func sessionKey(id string) string { return sessionKeyPrefix + id }

// Get returns the cached session, or nil on a miss, a decode failure or an
// already expired entry.
func (c *SessionCache) Get(ctx context.Context, id string) *models.Session {
	raw, _ := c.kv.Get(ctx, sessionKey(id))
	if len(raw) == 0 {
		return nil
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	if !s.ExpiresAt.After(now()) {
		return nil
	}
	return &s
}

func (c *SessionCache) Put(ctx context.Context, s *models.Session) {
	ttl := c.ttl
	if left := s.ExpiresAt.Sub(now()); left < ttl {
		ttl = left
	}
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return
	}
	_ = c.kv.Set(ctx, sessionKey(s.ID), raw, ttl)
}

// Evict drops the given sessions, typically right after they were revoked.
func (c *SessionCache) Evict(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = sessionKey(id)
	}
	_ = c.kv.Delete(ctx, keys...)
}
