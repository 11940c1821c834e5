package httpapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "admin_session:"

var ErrSessionInvalid = errors.New("httpapi: session invalid or expired")

// SessionStore keeps admin panel sessions in Redis so a restart does not log
// everyone out. Each session is an opaque token mapped to the admin username.
type SessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSessionStore(rdb *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{rdb: rdb, ttl: ttl}
}

// Create issues a new session token for the given admin.
func (s *SessionStore) Create(ctx context.Context, username string) (string, error) {
	token := uuid.NewString()

	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, username, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return token, nil
}

// Validate returns the admin username behind a token and slides its expiry.
func (s *SessionStore) Validate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrSessionInvalid
	}

	key := sessionKeyPrefix + token
	username, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSessionInvalid
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}

	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("refresh session: %w", err)
	}

	return username, nil
}

// Destroy removes a session token.
func (s *SessionStore) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, sessionKeyPrefix+token).Err()
}
