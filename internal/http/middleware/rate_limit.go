package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/ignatzorin/rewards-admin/internal/notify"
	"github.com/ignatzorin/rewards-admin/internal/pkg/apperror"
)

const (
	rateLimitPrefix  = "console_login"
	rateLimitMessage = "Too many login attempts. Please try again later."
)

// NewRateLimitStore возвращает хранилище счётчиков: Redis, если клиент задан,
// иначе память процесса.
func NewRateLimitStore(client *redis.Client) (limiter.Store, error) {
	if client == nil {
		return memory.NewStore(), nil
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: rateLimitPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return store, nil
}

// RateLimitMiddleware создаёт middleware для ограничения количества запросов.
// По умолчанию: 5 запросов в минуту с одного IP.
func RateLimitMiddleware(store limiter.Store, limit int64, period time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		limit = 5
	}
	if period <= 0 {
		period = 1 * time.Minute
	}

	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  limit,
	})

	return func(c *gin.Context) {
		key := c.ClientIP()
		context, err := instance.Get(c, key)
		if err != nil {
			// Недоступное хранилище счётчиков не должно закрывать вход.
			_ = c.Error(apperror.Wrap(err, apperror.ErrCodeInternal, "rate limit недоступен"))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", context.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", context.Reset))

		if context.Reached {
			_ = c.Error(apperror.ErrTooManyRequests)
			c.AbortWithStatusJSON(apperror.ErrTooManyRequests.HTTPStatus, gin.H{
				"error":        apperror.ErrTooManyRequests.Code,
				"notification": notify.New(rateLimitMessage, notify.Warning),
			})
			return
		}

		c.Next()
	}
}
