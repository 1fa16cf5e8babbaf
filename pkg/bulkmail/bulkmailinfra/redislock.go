package bulkmailinfra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const batchLockKey = "bulkmail:batch:lock"

// RedisBatchLock serializes batch runs across processes with SET NX. The TTL
// bounds how long a crashed holder can block the next batch.
type RedisBatchLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	token  string
}

func NewRedisBatchLock(client *redis.Client, ttl time.Duration) *RedisBatchLock {
	return &RedisBatchLock{
		client: client,
		key:    batchLockKey,
		ttl:    ttl,
	}
}

func (l *RedisBatchLock) TryAcquire(ctx context.Context) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		l.token = token
	}
	return ok, nil
}

func (l *RedisBatchLock) Release(ctx context.Context) error {
	if l.token == "" {
		return nil
	}

	// Only the holder's token releases the lock, so an expired lock taken
	// over by another batch is left alone.
	held, err := l.client.Get(ctx, l.key).Result()
	if err == redis.Nil {
		l.token = ""
		return nil
	}
	if err != nil {
		return err
	}
	if held != l.token {
		l.token = ""
		return nil
	}

	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return err
	}
	l.token = ""
	return nil
}
