package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/juju/loggo"
	"github.com/redis/go-redis/v9"
)

var logger = loggo.GetLogger("flashwash.lock")

const (
	redisKeyPrefix     = "flashwash:lock:"
	defaultRetryPeriod = 25 * time.Millisecond
)

var ErrLockTTL = errors.New("lock ttl must be positive")

// Deletes the key only if it still carries our token, so an expired lock
// taken over by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// redisClient is the part of *redis.Client the lock uses.
type redisClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// Redis serializes callers across instances sharing one Redis server.
// The TTL bounds how long a crashed holder can block an offer; the section
// context expires at holdFor(ttl) so a slow holder stops before the key does.
type Redis struct {
	client redisClient
	ttl    time.Duration
	retry  time.Duration
}

// holdFor leaves a fifth of the TTL between the section deadline and key expiry.
func holdFor(ttl time.Duration) time.Duration {
	return ttl - ttl/5
}

func NewRedis(client *redis.Client, ttl time.Duration) (*Redis, error) {
	return newRedis(client, ttl)
}

func newRedis(client redisClient, ttl time.Duration) (*Redis, error) {
	if ttl <= 0 {
		return nil, ErrLockTTL
	}
	return &Redis{client: client, ttl: ttl, retry: defaultRetryPeriod}, nil
}

func (r *Redis) Acquire(ctx context.Context, key string) (context.Context, func(), error) {
	token, err := randomToken(16)
	if err != nil {
		return nil, nil, err
	}
	k := redisKeyPrefix + key

	var attempt time.Time
	for {
		attempt = time.Now()
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, nil, fmt.Errorf("acquire %s: %w", k, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	// Measured from before SETNX so the deadline precedes the key's expiry.
	sectionCtx, cancel := context.WithDeadline(ctx, attempt.Add(holdFor(r.ttl)))

	return sectionCtx, func() {
		cancel()
		ctx, cancelRelease := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancelRelease()
		if err := releaseScript.Run(ctx, r.client, []string{k}, token).Err(); err != nil {
			logger.Warningf("release %s: %v", k, err)
		}
	}, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
