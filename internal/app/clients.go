package app

import (
	"fmt"

	"github.com/yungbote/gymflow-backend/internal/platform/logger"
	"github.com/yungbote/gymflow-backend/internal/platform/redisbus"
	"github.com/yungbote/gymflow-backend/internal/platform/sendgrid"
	"github.com/yungbote/gymflow-backend/internal/platform/twilio"
)

// Clients holds the optional outbound integrations. A nil field means the
// integration is not configured.
type Clients struct {
	Email    sendgrid.Client
	SMS      twilio.Client
	Bookings redisbus.BookingBus
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.RedisAddr != "" {
		bus, err := redisbus.NewBookingBus(log, redisbus.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Channel:  cfg.RedisChannel,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init redis booking bus: %w", err)
		}
		out.Bookings = bus
	}

	if cfg.SendGridEnabled {
		c, err := sendgrid.NewFromEnv(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.Email = c
	}

	if cfg.TwilioEnabled {
		c, err := twilio.NewFromEnv(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		out.SMS = c
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bookings != nil {
		_ = c.Bookings.Close()
	}
}
