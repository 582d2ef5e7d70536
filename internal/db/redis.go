package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignatzorin/rewards-admin/internal/logger"
)

// NewRedis создаёт клиент Redis.
// Пустой URL не ошибка: без Redis лимиты входа хранятся в памяти процесса.
func NewRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	log := logger.Entry("redis")
	if redisURL == "" {
		log.Warn("REDIS_URL не задан, работаем без Redis")
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: некорректный URL: %w", err)
	}

	opt.PoolSize = 10
	opt.MinIdleConns = 2
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping не прошёл: %w", err)
	}

	log.Info("подключение к Redis установлено")
	return client, nil
}

// CloseRedis закрывает клиент, nil допустим.
func CloseRedis(client *redis.Client) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Entry("redis").WithError(err).Error("ошибка закрытия соединения")
	}
}
