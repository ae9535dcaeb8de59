package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/gymflow-backend/internal/observability"
	"github.com/yungbote/gymflow-backend/internal/platform/logger"
	"github.com/yungbote/gymflow-backend/internal/platform/redisbus"
	"github.com/yungbote/gymflow-backend/internal/platform/sendgrid"
	"github.com/yungbote/gymflow-backend/internal/platform/twilio"
)

// BookingConfirmation is the payload sent once a session is committed.
type BookingConfirmation struct {
	SessionID      uint      `json:"session_id"`
	Title          string    `json:"title"`
	Start          time.Time `json:"start_time"`
	End            time.Time `json:"end_time"`
	ClientPersonID uint      `json:"client_id"`
	ClientName     string    `json:"client_name"`
	ClientEmail    string    `json:"-"`
	ClientPhone    string    `json:"-"`
	TrainerUserID  uint      `json:"trainer_id"`
	TrainerName    string    `json:"trainer_name"`
}

type BookingNotifier interface {
	Channel() string
	SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error
}

// =========================
// No-op
// =========================

type noopBookingNotifier struct{}

func NewNoopBookingNotifier() BookingNotifier { return noopBookingNotifier{} }

func (noopBookingNotifier) Channel() string { return "noop" }

func (noopBookingNotifier) SendBookingConfirmation(context.Context, BookingConfirmation) error {
	return nil
}

// =========================
// E-mail (SendGrid)
// =========================

type emailBookingNotifier struct {
	log      *logger.Logger
	client   sendgrid.Client
	template *BookingTemplate
	loc      *time.Location
}

func NewEmailBookingNotifier(log *logger.Logger, client sendgrid.Client, tpl *BookingTemplate, loc *time.Location) (BookingNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("email notifier: sendgrid client required")
	}
	if tpl == nil {
		return nil, fmt.Errorf("email notifier: template required")
	}
	return &emailBookingNotifier{
		log:      log.With("notifier", "email"),
		client:   client,
		template: tpl,
		loc:      loc,
	}, nil
}

func (n *emailBookingNotifier) Channel() string { return "email" }

func (n *emailBookingNotifier) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	to := strings.TrimSpace(c.ClientEmail)
	if to == "" {
		n.log.Debug("booking confirmation skipped: client has no email", "session_id", c.SessionID)
		return nil
	}
	msg, err := n.template.Render(c, n.loc)
	if err != nil {
		return fmt.Errorf("render booking email: %w", err)
	}
	res, err := n.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: to, Name: c.ClientName}},
		Subject:    msg.Subject,
		Text:       msg.Text,
		HTML:       msg.HTML,
		Categories: []string{"booking_confirmation"},
		CustomArgs: map[string]string{"session_id": strconv.FormatUint(uint64(c.SessionID), 10)},
	})
	if err != nil {
		return err
	}
	n.log.Debug("booking confirmation emailed", "session_id", c.SessionID, "message_id", res.MessageID)
	return nil
}

// =========================
// SMS (Twilio)
// =========================

type smsBookingNotifier struct {
	log      *logger.Logger
	client   twilio.Client
	template *BookingTemplate
	loc      *time.Location
}

func NewSMSBookingNotifier(log *logger.Logger, client twilio.Client, tpl *BookingTemplate, loc *time.Location) (BookingNotifier, error) {
	if client == nil {
		return nil, fmt.Errorf("sms notifier: twilio client required")
	}
	if tpl == nil {
		return nil, fmt.Errorf("sms notifier: template required")
	}
	return &smsBookingNotifier{
		log:      log.With("notifier", "sms"),
		client:   client,
		template: tpl,
		loc:      loc,
	}, nil
}

func (n *smsBookingNotifier) Channel() string { return "sms" }

func (n *smsBookingNotifier) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	to := strings.TrimSpace(c.ClientPhone)
	if to == "" {
		return nil
	}
	msg, err := n.template.Render(c, n.loc)
	if err != nil {
		return fmt.Errorf("render booking sms: %w", err)
	}
	if msg.SMS == "" {
		return nil
	}
	sent, err := n.client.SendSMS(ctx, to, msg.SMS)
	if err != nil {
		return err
	}
	n.log.Debug("booking confirmation texted", "session_id", c.SessionID, "sid", sent.SID)
	return nil
}

// =========================
// Redis publish
// =========================

// BookingEvent is the JSON document published on the booking channel.
type BookingEvent struct {
	Type string              `json:"type"`
	At   time.Time           `json:"at"`
	Data BookingConfirmation `json:"data"`
}

type redisBookingNotifier struct {
	bus redisbus.BookingBus
	now func() time.Time
}

func NewRedisBookingNotifier(bus redisbus.BookingBus) (BookingNotifier, error) {
	if bus == nil {
		return nil, fmt.Errorf("redis notifier: bus required")
	}
	return &redisBookingNotifier{bus: bus, now: time.Now}, nil
}

func (n *redisBookingNotifier) Channel() string { return "redis" }

func (n *redisBookingNotifier) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	return n.bus.Publish(ctx, BookingEvent{
		Type: "session.booked",
		At:   n.now().UTC(),
		Data: c,
	})
}

// =========================
// Fan-out
// =========================

type fanoutBookingNotifier struct {
	targets []BookingNotifier
	metrics *observability.Metrics
}

// NewFanoutBookingNotifier sends to every target in order. Each attempt is counted
// per channel; failures are joined and do not stop the remaining targets.
func NewFanoutBookingNotifier(metrics *observability.Metrics, targets ...BookingNotifier) BookingNotifier {
	out := make([]BookingNotifier, 0, len(targets))
	for _, t := range targets {
		if t != nil {
			out = append(out, t)
		}
	}
	return &fanoutBookingNotifier{targets: out, metrics: metrics}
}

func (n *fanoutBookingNotifier) Channel() string {
	names := make([]string, 0, len(n.targets))
	for _, t := range n.targets {
		names = append(names, t.Channel())
	}
	return "fanout(" + strings.Join(names, ",") + ")"
}

func (n *fanoutBookingNotifier) SendBookingConfirmation(ctx context.Context, c BookingConfirmation) error {
	var errs []error
	for _, t := range n.targets {
		start := time.Now()
		err := t.SendBookingConfirmation(ctx, c)
		status := "sent"
		if err != nil {
			status = "failed"
			errs = append(errs, fmt.Errorf("%s: %w", t.Channel(), err))
		}
		n.metrics.ObserveNotification(t.Channel(), status, time.Since(start))
	}
	return errors.Join(errs...)
}
