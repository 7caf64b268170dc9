package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCodeNotFound     = errors.New("signup code not found")
	ErrCodeMismatch     = errors.New("signup code mismatch")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

// consumeSignupLua atomically performs GET→compare→DEL on a signup code.
// KEYS[1] = code key, ARGV[1] = presented code.
// A mismatch does not consume the stored code.
var consumeSignupLua = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return {err='not_found'}
end
if v ~= ARGV[1] then
  return {err='mismatch'}
end
redis.call('DEL', KEYS[1])
return v
`)

// SignupLedger holds pending, not-yet-materialized registrations keyed by
// email. Records self-expire via Redis TTL, so an expired code is
// indistinguishable from an absent one — which is the contract.
type SignupLedger struct {
	redis  redis.UniversalClient
	prefix string
}

func NewSignupLedger(client redis.UniversalClient, prefix string) *SignupLedger {
	if prefix == "" {
		prefix = "signup"
	}
	return &SignupLedger{redis: client, prefix: prefix}
}

func (l *SignupLedger) key(email string) string {
	return l.prefix + ":" + email
}

// Upsert overwrites any outstanding code for email and restarts its TTL.
func (l *SignupLedger) Upsert(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := l.redis.Set(ctx, l.key(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Consume validates the presented code and deletes it in one atomic step.
// Exactly one of two concurrent calls with the correct code can succeed.
func (l *SignupLedger) Consume(ctx context.Context, email, code string) error {
	err := consumeSignupLua.Run(ctx, l.redis, []string{l.key(email)}, code).Err()
	if err == nil {
		return nil
	}
	switch err.Error() {
	case "not_found":
		return ErrCodeNotFound
	case "mismatch":
		return ErrCodeMismatch
	default:
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
}
