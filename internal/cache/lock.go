package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// TryLock 尝试获取跨进程互斥锁；未启用 Redis 时直接成功
func TryLock(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	if !Enabled() {
		return func() {}, true, nil
	}
	token := uuid.NewString()
	fullKey := BuildKey("lock:" + key)
	ok, err := redisClient.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	client := redisClient
	return func() {
		_ = unlockScript.Run(context.Background(), client, []string{fullKey}, token).Err()
	}, true, nil
}
