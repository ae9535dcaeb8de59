package redisbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/gymflow-backend/internal/platform/logger"
)

// BookingBus publishes booking events as JSON on a single pub/sub channel.
type BookingBus interface {
	Publish(ctx context.Context, event any) error
	Client() goredis.UniversalClient
	Close() error
}

type Config struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type bookingBus struct {
	log     *logger.Logger
	rdb     goredis.UniversalClient
	channel string
}

func NewBookingBus(log *logger.Logger, cfg Config) (BookingBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(cfg.Channel)
	if ch == "" {
		ch = "bookings"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewBookingBusWithClient(log, rdb, ch), nil
}

func NewBookingBusWithClient(log *logger.Logger, rdb goredis.UniversalClient, channel string) BookingBus {
	return &bookingBus{
		log:     log.With("client", "RedisBookingBus"),
		rdb:     rdb,
		channel: channel,
	}
}

func (b *bookingBus) Publish(ctx context.Context, event any) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis booking bus not initialized")
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return err
	}
	n, err := b.rdb.Publish(ctx, b.channel, raw).Result()
	if err != nil {
		return err
	}
	b.log.Debug("booking event published", "channel", b.channel, "receivers", n)
	return nil
}

func (b *bookingBus) Client() goredis.UniversalClient {
	if b == nil {
		return nil
	}
	return b.rdb
}

func (b *bookingBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
