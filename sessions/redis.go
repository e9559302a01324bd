package sessions

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	fieldVerificationCode = "verification_code"
	fieldUserID           = "user_id"
)

// redisStore хранит сессии в Redis: по хешу на сессию со скользящим TTL.
type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) key(sessionID string) string {
	return "session:" + sessionID
}

func (s *redisStore) setField(ctx context.Context, sessionID, field, value string) error {
	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, field, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write session field %s: %w", field, err)
	}
	return nil
}

func (s *redisStore) SetVerificationCode(ctx context.Context, sessionID, code string) error {
	return s.setField(ctx, sessionID, fieldVerificationCode, code)
}

func (s *redisStore) VerificationCode(ctx context.Context, sessionID string) (string, error) {
	code, err := s.client.HGet(ctx, s.key(sessionID), fieldVerificationCode).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("failed to read verification code: %w", err)
	}
	return code, nil
}

func (s *redisStore) SetUserID(ctx context.Context, sessionID string, userID int) error {
	return s.setField(ctx, sessionID, fieldUserID, strconv.Itoa(userID))
}

func (s *redisStore) UserID(ctx context.Context, sessionID string) (int, error) {
	raw, err := s.client.HGet(ctx, s.key(sessionID), fieldUserID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrNotAuthenticated
		}
		return 0, fmt.Errorf("failed to read session user: %w", err)
	}

	userID, err := strconv.Atoi(raw)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid user id in session: %q", raw)
	}
	return userID, nil
}

func (s *redisStore) Destroy(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// NewRedisClient создаёт клиент Redis и проверяет соединение.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}
	return client, nil
}
