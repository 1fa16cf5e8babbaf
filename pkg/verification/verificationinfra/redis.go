package verificationinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/errx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/verification"
)

// RedisStore keeps pending verification codes in Redis, letting key TTLs
// handle expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed verification store.
func NewRedisStore(client *redis.Client) verification.Store {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, code *verification.Code, ttl time.Duration) error {
	payload, err := json.Marshal(code)
	if err != nil {
		return errx.Wrap(err, "failed to marshal verification code", errx.TypeInternal)
	}

	if ttl <= 0 {
		ttl = time.Until(code.ExpiresAt)
	}
	if ttl <= 0 {
		return verification.ErrCodeExpired()
	}

	key := codeKey(code.Email, code.Purpose)
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return errx.Wrap(err, "failed to store verification code", errx.TypeInternal).
			WithDetail("email", code.Email)
	}

	return nil
}

func (s *RedisStore) Find(ctx context.Context, email string, purpose verification.Purpose) (*verification.Code, error) {
	payload, err := s.client.Get(ctx, codeKey(email, purpose)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, verification.ErrCodeNotFound().WithDetail("email", email)
		}
		return nil, errx.Wrap(err, "failed to read verification code", errx.TypeInternal).
			WithDetail("email", email)
	}

	var code verification.Code
	if err := json.Unmarshal([]byte(payload), &code); err != nil {
		return nil, errx.Wrap(err, "failed to unmarshal verification code", errx.TypeInternal)
	}

	return &code, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string, purpose verification.Purpose) error {
	if err := s.client.Del(ctx, codeKey(email, purpose)).Err(); err != nil {
		return errx.Wrap(err, "failed to delete verification code", errx.TypeInternal).
			WithDetail("email", email)
	}
	return nil
}

func codeKey(email string, purpose verification.Purpose) string {
	return fmt.Sprintf("verification:%s:%s", purpose, email)
}
