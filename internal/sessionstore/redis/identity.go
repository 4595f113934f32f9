// Package redis persists session identities in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const keyPrefix = "storefront:session:"

// record is the stored form of an identity. domain.Identity keeps its token
// out of JSON, so the token gets its own field here.
type record struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// IdentityStore implements auth.Store using Redis.
type IdentityStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityStore creates a Redis-backed identity store. Entries expire
// ttl after the last Save or Touch.
func NewIdentityStore(client *redis.Client, ttl time.Duration) *IdentityStore {
	return &IdentityStore{
		client: client,
		ttl:    ttl,
	}
}

func key(sessionID string) string {
	return keyPrefix + sessionID + ":identity"
}

// Load returns the identity stored for sessionID.
func (s *IdentityStore) Load(ctx context.Context, sessionID string) (domain.Identity, error) {
	data, err := s.client.Get(ctx, key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Identity{}, apperrors.NotFound("session identity", sessionID)
		}
		return domain.Identity{}, fmt.Errorf("redis get identity: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.Identity{}, fmt.Errorf("unmarshal identity: %w", err)
	}

	return domain.Identity{
		ID:       rec.ID,
		Username: rec.Username,
		Email:    rec.Email,
		Token:    rec.Token,
	}, nil
}

// Save stores id for sessionID with the configured TTL.
func (s *IdentityStore) Save(ctx context.Context, sessionID string, id domain.Identity) error {
	data, err := json.Marshal(record{
		ID:       id.ID,
		Username: id.Username,
		Email:    id.Email,
		Token:    id.Token,
	})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	if err := s.client.Set(ctx, key(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set identity: %w", err)
	}
	return nil
}

// Delete removes the identity stored for sessionID.
func (s *IdentityStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del identity: %w", err)
	}
	return nil
}

// Touch extends the TTL of a stored identity. A missing entry is not an
// error.
func (s *IdentityStore) Touch(ctx context.Context, sessionID string) error {
	if err := s.client.Expire(ctx, key(sessionID), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire identity: %w", err)
	}
	return nil
}
