package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTokenPrefix = "access_token:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisTokenRepo keeps issued tokens as keys that expire with the token itself.
type RedisTokenRepo struct {
	client *redis.Client
}

// NewRedisClient dials and pings Redis.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return rdb, nil
}

func NewRedisTokenRepo(client *redis.Client) *RedisTokenRepo {
	return &RedisTokenRepo{client: client}
}

func (r *RedisTokenRepo) Save(ctx context.Context, token, subject string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return errors.New("token already expired")
	}
	return r.client.Set(ctx, redisTokenPrefix+token, subject, ttl).Err()
}

func (r *RedisTokenRepo) Exists(ctx context.Context, token string) (bool, error) {
	n, err := r.client.Exists(ctx, redisTokenPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RedisTokenRepo) DeleteByToken(ctx context.Context, token string) (int64, error) {
	return r.client.Del(ctx, redisTokenPrefix+token).Result()
}

// PurgeExpired is a no-op: Redis evicts keys at their TTL.
func (r *RedisTokenRepo) PurgeExpired(ctx context.Context) (int64, error) {
	return 0, nil
}
