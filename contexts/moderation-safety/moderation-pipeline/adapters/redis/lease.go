package redisadapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"warden/contexts/moderation-safety/moderation-pipeline/ports"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lease is a per-key run lease shared by every worker instance.
type Lease struct {
	client redis.UniversalClient
}

func NewLease(client redis.UniversalClient) *Lease {
	return &Lease{client: client}
}

func (l *Lease) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

func (l *Lease) Release(ctx context.Context, key string, token string) error {
	if token == "" {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
}

var _ ports.RunLease = (*Lease)(nil)
