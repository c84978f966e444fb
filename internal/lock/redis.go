package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	keyPrefix     = "dcs:lock:"
	retryInterval = 25 * time.Millisecond
	maxRetryDelay = 250 * time.Millisecond
)

// ErrNotHeld is returned by Release when the lock expired or was taken over.
var ErrNotHeld = errors.New("lock not held")

// Удаляем ключ только если он всё ещё наш
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lock shared by every instance connected to the same Redis.
// A holder that crashes loses the lock after ttl. The ttl is not extended,
// so an operation that outlives it runs unprotected; release logs that case.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedis(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// Lock retries SET NX with growing delay until it succeeds or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := keyPrefix + key
	delay := retryInterval

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			acquired := time.Now()
			return func() {
				// контекст вызова мог уже истечь, а ключ надо отпустить
				if err := r.release(context.Background(), redisKey, token); err != nil {
					r.logRelease(key, time.Since(acquired), err)
				}
			}, nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		if delay *= 2; delay > maxRetryDelay {
			delay = maxRetryDelay
		}
	}
}

func (r *Redis) release(ctx context.Context, redisKey, token string) error {
	n, err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Int()
	if err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if n == 0 {
		return ErrNotHeld
	}
	return nil
}

func (r *Redis) logRelease(key string, held time.Duration, err error) {
	if errors.Is(err, ErrNotHeld) {
		r.logger.Warn("Lock expired before release, operation ran unprotected",
			zap.String("key", key),
			zap.Duration("held", held),
			zap.Duration("ttl", r.ttl),
		)
		return
	}
	r.logger.Error("Failed to release lock", zap.String("key", key), zap.Error(err))
}
