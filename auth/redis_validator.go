package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisTokenValidator is a demonstration AsyncValidator: it treats the
// bearer token as a key into Redis and authorizes the request if the key
// exists, returning the stored value (e.g. a user id) as the request
// extension. It performs a read-through lookup only — it does not own or
// mutate persistent state, matching §3's note that this stays inside the
// Non-goal boundary on persistent storage. Grounded on the teacher's
// internal/token/redis_adapter.go adapter-over-go-redis pattern.
type RedisTokenValidator struct {
	Client *redis.Client
	// KeyPrefix is prepended to the bearer token to form the Redis key,
	// e.g. "token:".
	KeyPrefix string
}

func (v *RedisTokenValidator) Authorize(ctx context.Context, r *http.Request) (any, bool, error) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return nil, false, nil
	}

	value, err := v.Client.Get(ctx, v.KeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}
