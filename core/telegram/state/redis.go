package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "tg:session:"

type redisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore constructs a Store backed by Redis. Each session is a JSON
// value under prefix+userID that expires after ttl (0 disables expiry).
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) Store {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisStore{client: client, prefix: prefix, ttl: ttl}
}

func (r *redisStore) key(userID int64) string {
	return r.prefix + strconv.FormatInt(userID, 10)
}

// Load reads and decodes the session, mapping a missing key to an idle session.
func (r *redisStore) Load(ctx context.Context, userID int64) (Session, error) {
	raw, err := r.client.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Idle(), nil
	}
	if err != nil {
		return Idle(), fmt.Errorf("session load: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Idle(), fmt.Errorf("session decode: %w", err)
	}
	return s, nil
}

// Save encodes the session and writes it with the configured expiry, or the
// session's own TTL when that is shorter.
func (r *redisStore) Save(ctx context.Context, userID int64, s Session) error {
	if !s.Active() {
		return r.Clear(ctx, userID)
	}
	s.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := r.client.Set(ctx, r.key(userID), raw, s.expiry(r.ttl)).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// Clear deletes the session key.
func (r *redisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, r.key(userID)).Err(); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}
