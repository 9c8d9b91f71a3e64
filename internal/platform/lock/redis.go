package lock

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// releaseScript deletes the key only if it still carries our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica pointed at the same server.
type Redis struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

func NewRedis(addr, prefix string, log *logger.Logger) (*Redis, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	if strings.TrimSpace(prefix) == "" {
		prefix = "certchain:lock:"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		log:    log.With("service", "RedisLocker"),
		rdb:    rdb,
		prefix: prefix,
	}, nil
}

func (r *Redis) Close() error { return r.rdb.Close() }

func (r *Redis) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	full := r.prefix + key
	token := uuid.NewString()

	ok, err := r.rdb.SetNX(ctx, full, token, ttl).Result()
	if err != nil {
		return nil, faults.New(faults.CodeInternal, OpAcquire, "lock backend unavailable", err)
	}
	if !ok {
		return nil, held(key)
	}

	return func() {
		// The caller's ctx may already be done by the time we release.
		rctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, r.rdb, []string{full}, token).Err(); err != nil {
			r.log.Warn("lock release failed", "key", full, "error", err)
		}
	}, nil
}
