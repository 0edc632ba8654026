package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"messenger-api/config/common"
)

func NewRedis(cfg *common.Config) (*redis.Client, error) {
	redisConfig := cfg.GetRedisConfig()
	client := redis.NewClient(&redis.Options{
		Addr:     redisConfig.Addr,
		Password: redisConfig.Password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", redisConfig.Addr, err)
	}
	return client, nil
}
