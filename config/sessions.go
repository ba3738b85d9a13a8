package config

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessions keeps issued token ids in Redis so logout is honoured by
// every instance.
type RedisSessions struct {
	client *redis.Client
}

func NewRedisSessions(client *redis.Client) *RedisSessions {
	return &RedisSessions{client: client}
}

func sessionKey(tokenID string) string {
	return "session:" + tokenID
}

func (r *RedisSessions) Save(ctx context.Context, tokenID string, userID int, ttl time.Duration) error {
	return r.client.Set(ctx, sessionKey(tokenID), strconv.Itoa(userID), ttl).Err()
}

func (r *RedisSessions) Exists(ctx context.Context, tokenID string) (bool, error) {
	err := r.client.Get(ctx, sessionKey(tokenID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisSessions) Delete(ctx context.Context, tokenID string) error {
	return r.client.Del(ctx, sessionKey(tokenID)).Err()
}
