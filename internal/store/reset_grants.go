package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const grantSecretSize = 32

var (
	ErrGrantNotFound = errors.New("reset grant not found")
	ErrGrantMismatch = errors.New("reset grant secret mismatch")
)

// consumeGrantLua atomically performs GET→compare→DEL on a grant record.
// KEYS[1] = grant key, ARGV[1] = hex-encoded SHA-256 of the presented secret.
// The stored value is "<hash-hex>:<email>". Any failed presentation burns the
// grant: it is single-use in both directions.
var consumeGrantLua = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return {err='not_found'}
end
redis.call('DEL', KEYS[1])
local sep = string.find(v, ':', 1, true)
if not sep then
  return {err='not_found'}
end
if string.sub(v, 1, sep-1) ~= ARGV[1] then
  return {err='mismatch'}
end
return string.sub(v, sep+1)
`)

// ResetGrantStore records short-lived, single-use capabilities minted after a
// successful reset-OTP verification. The token handed to the client is
// base64url(grantID || secret); only the SHA-256 of the secret is stored.
type ResetGrantStore struct {
	redis  redis.UniversalClient
	prefix string
}

func NewResetGrantStore(client redis.UniversalClient, prefix string) *ResetGrantStore {
	if prefix == "" {
		prefix = "rg"
	}
	return &ResetGrantStore{redis: client, prefix: prefix}
}

func (s *ResetGrantStore) key(grantID string) string {
	return s.prefix + ":" + grantID
}

// Create mints a grant for email and returns the opaque token.
func (s *ResetGrantStore) Create(ctx context.Context, email string, ttl time.Duration) (string, error) {
	id := uuid.New()

	var secret [grantSecretSize]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return "", err
	}
	hash := sha256.Sum256(secret[:])

	value := fmt.Sprintf("%x:%s", hash, email)
	if err := s.redis.Set(ctx, s.key(id.String()), value, ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	raw := make([]byte, 0, len(id)+grantSecretSize)
	raw = append(raw, id[:]...)
	raw = append(raw, secret[:]...)
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Consume validates and deletes the grant behind token, returning the email
// it was minted for. A second call with the same token fails with
// ErrGrantNotFound.
func (s *ResetGrantStore) Consume(ctx context.Context, token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) != 16+grantSecretSize {
		return "", ErrGrantNotFound
	}

	id, err := uuid.FromBytes(raw[:16])
	if err != nil {
		return "", ErrGrantNotFound
	}
	hash := sha256.Sum256(raw[16:])
	hashHex := fmt.Sprintf("%x", hash)

	res, err := consumeGrantLua.Run(ctx, s.redis, []string{s.key(id.String())}, hashHex).Result()
	if err != nil {
		switch err.Error() {
		case "not_found":
			return "", ErrGrantNotFound
		case "mismatch":
			return "", ErrGrantMismatch
		default:
			return "", fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}

	email, ok := res.(string)
	if !ok {
		return "", fmt.Errorf("%w: unexpected lua result type", ErrRedisUnavailable)
	}

	return email, nil
}
