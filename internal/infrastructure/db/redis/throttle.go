package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/screengrabber/account-api/internal/core/ports"
)

// throttleScript increments the counter and gives it an expiry if it has
// none, in one atomic step. A counter left without a TTL heals on its next hit.
var throttleScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// Throttle is a fixed-window counter. The first hit in a window sets the
// key's expiry; every hit beyond limit is refused until the key expires.
// Key format: throttle:<key>
type Throttle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewThrottle creates a Throttle allowing limit hits per window.
func NewThrottle(client *redis.Client, limit int64, window time.Duration) *Throttle {
	return &Throttle{client: client, limit: limit, window: window}
}

var _ ports.Throttle = (*Throttle)(nil)

func (t *Throttle) Allow(ctx context.Context, key string) (bool, error) {
	if t.limit <= 0 {
		return true, nil
	}

	n, err := throttleScript.Run(ctx, t.client, []string{throttleKey(key)}, t.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("throttle: %w", err)
	}
	return n <= t.limit, nil
}

func throttleKey(key string) string {
	return "throttle:" + key
}
