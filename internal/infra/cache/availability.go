package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ErrCacheMiss возвращается, когда значения в кеше нет
var ErrCacheMiss = errors.New("cache: miss")

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// AvailabilityCache кеш ответов запроса доступности в Redis
//
// Ключ данных включает поколение даты: инвалидация даты - это INCR ключа
// поколения, после чего все закешированные ответы по дате перестают
// находиться и доживают свой TTL. Так не нужен SCAN по ключам сессий
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger Logger
}

// NewAvailabilityCache создает кеш доступности с TTL записей
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}
}

// Get возвращает закешированный ответ для (date, sessionID)
func (c *AvailabilityCache) Get(ctx context.Context, date time.Time, sessionID string) ([]byte, error) {
	gen, err := c.generation(ctx, date)
	if err != nil {
		return nil, err
	}

	payload, err := c.client.Get(ctx, c.dataKey(date, gen, sessionID)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: get: %w", err)
	}

	return payload, nil
}

// Set кеширует ответ для (date, sessionID)
func (c *AvailabilityCache) Set(ctx context.Context, date time.Time, sessionID string, payload []byte) error {
	gen, err := c.generation(ctx, date)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.dataKey(date, gen, sessionID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set: %w", err)
	}

	return nil
}

// InvalidateDate сбрасывает все закешированные ответы по дате
// Вызывается после каждой мутации, влияющей на доступность даты
func (c *AvailabilityCache) InvalidateDate(ctx context.Context, date time.Time) error {
	key := c.genKey(date)

	if err := c.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("cache: invalidate: %w", err)
	}
	// Ключ поколения не должен жить вечно
	if err := c.client.Expire(ctx, key, 24*time.Hour).Err(); err != nil {
		c.logger.Warn("cache: failed to set generation TTL for %s: %v", key, err)
	}

	return nil
}

func (c *AvailabilityCache) generation(ctx context.Context, date time.Time) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey(date)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache: get generation: %w", err)
	}
	return gen, nil
}

func (c *AvailabilityCache) genKey(date time.Time) string {
	return "availability:gen:" + date.Format(domain.DateFormat)
}

func (c *AvailabilityCache) dataKey(date time.Time, gen int64, sessionID string) string {
	if sessionID == "" {
		sessionID = "-"
	}
	return fmt.Sprintf("availability:%s:%d:%s", date.Format(domain.DateFormat), gen, sessionID)
}
