package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/gymflow-backend/internal/platform/sendgrid"
)

func sampleConfirmation() BookingConfirmation {
	return BookingConfirmation{
		SessionID:   7,
		Title:       "Leg day",
		Start:       time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
		End:         time.Date(2025, 3, 3, 11, 0, 0, 0, time.UTC),
		ClientName:  "Ada <Lovelace>",
		ClientEmail: "ada@example.com",
		ClientPhone: "+15550001111",
		TrainerName: "Sam Trainer",
	}
}

func TestDefaultBookingTemplateRenders(t *testing.T) {
	tpl, err := LoadBookingTemplate("")
	if err != nil {
		t.Fatalf("LoadBookingTemplate: %v", err)
	}
	out, err := tpl.Render(sampleConfirmation(), time.UTC)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out.Subject, "Leg day") {
		t.Fatalf("subject: got %q", out.Subject)
	}
	if !strings.Contains(out.Text, "Mon 03 Mar 2025 10:00 - 11:00") {
		t.Fatalf("text: got %q", out.Text)
	}
	if !strings.Contains(out.HTML, "Ada &lt;Lovelace&gt;") {
		t.Fatalf("html should escape names: got %q", out.HTML)
	}
	if !strings.Contains(out.SMS, "Sam Trainer") {
		t.Fatalf("sms: got %q", out.SMS)
	}
}

func TestParseBookingTemplateRejectsMissingBody(t *testing.T) {
	if _, err := ParseBookingTemplate([]byte("subject: hi\n")); err == nil {
		t.Fatalf("expected error for template without body")
	}
	if _, err := ParseBookingTemplate([]byte("subject: \"{{ .Title\"\ntext: x\n")); err == nil {
		t.Fatalf("expected parse error for broken action")
	}
}

type fakeSendgrid struct {
	reqs []sendgrid.SendEmailRequest
	err  error
}

func (f *fakeSendgrid) Send(_ context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &sendgrid.SendEmailResult{StatusCode: 202, MessageID: "m-1"}, nil
}

func TestEmailBookingNotifier(t *testing.T) {
	tpl, err := LoadBookingTemplate("")
	if err != nil {
		t.Fatalf("LoadBookingTemplate: %v", err)
	}
	sg := &fakeSendgrid{}
	n, err := NewEmailBookingNotifier(testLogger(t), sg, tpl, time.UTC)
	if err != nil {
		t.Fatalf("NewEmailBookingNotifier: %v", err)
	}
	if err := n.SendBookingConfirmation(context.Background(), sampleConfirmation()); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(sg.reqs) != 1 {
		t.Fatalf("requests: want=1 got=%d", len(sg.reqs))
	}
	req := sg.reqs[0]
	if len(req.To) != 1 || req.To[0].Email != "ada@example.com" || req.CustomArgs["session_id"] != "7" {
		t.Fatalf("request: got %+v", req)
	}

	noEmail := sampleConfirmation()
	noEmail.ClientEmail = ""
	if err := n.SendBookingConfirmation(context.Background(), noEmail); err != nil {
		t.Fatalf("missing email should be skipped: %v", err)
	}
	if len(sg.reqs) != 1 {
		t.Fatalf("no request expected without an address")
	}
}

type stubNotifier struct {
	channel string
	err     error
	calls   int
}

func (s *stubNotifier) Channel() string { return s.channel }

func (s *stubNotifier) SendBookingConfirmation(context.Context, BookingConfirmation) error {
	s.calls++
	return s.err
}

func TestFanoutBookingNotifierJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &stubNotifier{channel: "a", err: boom}
	b := &stubNotifier{channel: "b"}
	n := NewFanoutBookingNotifier(nil, a, nil, b)

	err := n.SendBookingConfirmation(context.Background(), sampleConfirmation())
	if !errors.Is(err, boom) {
		t.Fatalf("want joined boom error, got %v", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Fatalf("every target should be attempted: a=%d b=%d", a.calls, b.calls)
	}
	if n.Channel() != "fanout(a,b)" {
		t.Fatalf("channel: got %q", n.Channel())
	}
}
