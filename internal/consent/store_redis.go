package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "openid-gateway/pkg/domain-errors"
)

// RedisStore keeps granted decisions in Redis under consent:{user}:{client}.
// Grants expire so consent is re-asked periodically.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultGrantTTL bounds how long a recorded grant suppresses the consent
// screen before the user is asked again.
const DefaultGrantTTL = 90 * 24 * time.Hour

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Grant records a consent decision with expiry. Called by the authorization
// core's consent-submission path, not by the gateway's read-only flow.
func (s *RedisStore) Grant(ctx context.Context, userID, clientID string) error {
	if err := s.client.Set(ctx, redisKey(userID, clientID), "granted", s.ttl).Err(); err != nil {
		return fmt.Errorf("record consent grant: %w", err)
	}
	return nil
}

// Revoke forgets a prior grant.
func (s *RedisStore) Revoke(ctx context.Context, userID, clientID string) error {
	if err := s.client.Del(ctx, redisKey(userID, clientID)).Err(); err != nil {
		return fmt.Errorf("revoke consent grant: %w", err)
	}
	return nil
}

func (s *RedisStore) NeedsConsent(ctx context.Context, userID, clientID string) (bool, error) {
	exists, err := s.client.Exists(ctx, redisKey(userID, clientID)).Result()
	if err != nil {
		return false, dErrors.Wrap(dErrors.CodeUnavailable, "check consent grant", err)
	}
	return exists == 0, nil
}

func redisKey(userID, clientID string) string {
	return fmt.Sprintf("consent:%s:%s", userID, clientID)
}
