// file: service/cache.go

package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ILeaseClient defines the Redis commands the cleanup lease needs.
// *redis.Client satisfies it; tests use a miniredis-backed client.
type ILeaseClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	redis.Scripter
}

// releaseLeaseLua deletes the lease only if it is still held by the caller.
var releaseLeaseLua = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLease is a best-effort, expiring mutual-exclusion lease shared by all
// service instances.
type RedisLease struct {
	client ILeaseClient
	key    string
	ttl    time.Duration
}

// NewRedisLease creates a lease stored under key that expires after ttl.
func NewRedisLease(client ILeaseClient, key string, ttl time.Duration) *RedisLease {
	return &RedisLease{client: client, key: key, ttl: ttl}
}

// Acquire tries to take the lease for owner. It reports false when another
// holder has it.
func (l *RedisLease) Acquire(ctx context.Context, owner string) (bool, error) {
	return l.client.SetNX(ctx, l.key, owner, l.ttl).Result()
}

// Release drops the lease if owner still holds it.
func (l *RedisLease) Release(ctx context.Context, owner string) error {
	return releaseLeaseLua.Run(ctx, l.client, []string{l.key}, owner).Err()
}
