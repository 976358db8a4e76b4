package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"routegraph/dashboard/internal/auth"
	"routegraph/dashboard/internal/constants"
	"routegraph/dashboard/internal/store"
)

var (
	_ store.IdentityStorage = (*MemoryIdentityStorage)(nil)
	_ store.IdentityStorage = (*RedisIdentityStorage)(nil)
)

// MemoryIdentityStorage keeps identities in process memory. They survive a
// page reload but not a restart.
type MemoryIdentityStorage struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewMemoryIdentityStorage(ttl time.Duration) *MemoryIdentityStorage {
	return &MemoryIdentityStorage{cache: cache.New(ttl, ttl/2), ttl: ttl}
}

func (s *MemoryIdentityStorage) Save(_ context.Context, sessionID string, id auth.Identity) error {
	s.cache.Set(identityKey(sessionID), id, s.ttl)
	return nil
}

func (s *MemoryIdentityStorage) Load(_ context.Context, sessionID string) (*auth.Identity, error) {
	val, found := s.cache.Get(identityKey(sessionID))
	if !found {
		return nil, nil
	}
	id, ok := val.(auth.Identity)
	if !ok {
		return nil, fmt.Errorf("identity for session %s has type %T", sessionID, val)
	}
	return &id, nil
}

func (s *MemoryIdentityStorage) Delete(_ context.Context, sessionID string) error {
	s.cache.Delete(identityKey(sessionID))
	return nil
}

// RedisIdentityStorage keeps identities in Redis so any dashboard replica
// can restore a session.
type RedisIdentityStorage struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisIdentityStorage(client *redis.Client, ttl time.Duration) *RedisIdentityStorage {
	return &RedisIdentityStorage{redis: client, ttl: ttl}
}

func (s *RedisIdentityStorage) Save(ctx context.Context, sessionID string, id auth.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := s.redis.Set(ctx, identityKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store identity: %w", err)
	}
	return nil
}

// Load returns nil, nil when the session has no stored identity.
func (s *RedisIdentityStorage) Load(ctx context.Context, sessionID string) (*auth.Identity, error) {
	val, err := s.redis.Get(ctx, identityKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get identity: %w", err)
	}

	var id auth.Identity
	if err := json.Unmarshal([]byte(val), &id); err != nil {
		return nil, fmt.Errorf("failed to unmarshal identity: %w", err)
	}
	return &id, nil
}

func (s *RedisIdentityStorage) Delete(ctx context.Context, sessionID string) error {
	if err := s.redis.Del(ctx, identityKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	return nil
}

func identityKey(sessionID string) string {
	return string(constants.CachePrefixIdentity) + sessionID
}
