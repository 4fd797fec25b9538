// services/sweep_lock.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// acquireSweepLock takes a Redis advisory lock so a periodic sweep runs on a
// single instance at a time. Returns true when this instance owns the lock.
// Without Redis the sweep runs unguarded, which is safe for single-process
// deployments.
func acquireSweepLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) bool {
	if rdb == nil {
		return true
	}

	ok, err := rdb.SetNX(ctx, key, time.Now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		log.Printf("Sweep lock %s: redis error, running unguarded: %v", key, err)
		return true
	}
	return ok
}

// releaseSweepLock releases a previously acquired advisory lock
func releaseSweepLock(ctx context.Context, rdb *redis.Client, key string) {
	if rdb == nil {
		return
	}
	if err := rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("Sweep lock %s: failed to release: %v", key, err)
	}
}
