package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldToken = "token"
	redisFieldUser  = "user"

	defaultRedisOpTimeout = 3 * time.Second
)

// RedisStore is a [Store] shared by several dashboard terminals. The whole
// session lives in one hash key, so SetSession and Clear are single Redis
// commands and remain atomic across terminals.
//
// The Store interface is synchronous by contract, so each operation runs
// under an internal deadline rather than a caller-supplied context.
type RedisStore struct {
	client    *redis.Client
	key       string
	opTimeout time.Duration
}

// NewRedis creates a RedisStore using the given client. prefix namespaces
// the hash key; an empty prefix defaults to "linesight".
func NewRedis(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "linesight"
	}
	return &RedisStore{
		client:    client,
		key:       prefix + ":session",
		opTimeout: defaultRedisOpTimeout,
	}
}

// SetSession describes the setsession operation and its observable behavior.
func (s *RedisStore) SetSession(token string, user *UserRecord) error {
	ctx, cancel := s.opContext()
	defer cancel()

	fields := map[string]any{redisFieldToken: token}
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("credstore: encode user record: %w", err)
		}
		fields[redisFieldUser] = string(data)
	}

	// One DEL+HSET transaction so a new session never inherits the old
	// session's user field.
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key)
	pipe.HSet(ctx, s.key, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("credstore: store session: %w", err)
	}
	return nil
}

// Token describes the token operation and its observable behavior.
func (s *RedisStore) Token() (string, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	token, err := s.client.HGet(ctx, s.key, redisFieldToken).Result()
	if err != nil || token == "" {
		return "", false
	}
	return token, true
}

// User describes the user operation and its observable behavior.
func (s *RedisStore) User() (*UserRecord, bool) {
	ctx, cancel := s.opContext()
	defer cancel()

	data, err := s.client.HGet(ctx, s.key, redisFieldUser).Result()
	if err != nil || data == "" {
		return nil, false
	}

	var user UserRecord
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Clear describes the clear operation and its observable behavior.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.opContext()
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("credstore: clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}
