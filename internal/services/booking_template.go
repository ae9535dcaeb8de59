package services

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"strings"
	texttemplate "text/template"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed templates/booking_confirmation.yaml
var defaultBookingTemplate []byte

// BookingTemplate holds the message bodies for a booking confirmation.
type BookingTemplate struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	HTML    string `yaml:"html"`
	SMS     string `yaml:"sms"`

	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
	sms     *texttemplate.Template
}

// RenderedBooking is a template rendered for one confirmation.
type RenderedBooking struct {
	Subject string
	Text    string
	HTML    string
	SMS     string
}

// LoadBookingTemplate parses the YAML at path, or the embedded default when path is empty.
func LoadBookingTemplate(path string) (*BookingTemplate, error) {
	raw := defaultBookingTemplate
	if p := strings.TrimSpace(path); p != "" {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read booking template: %w", err)
		}
		raw = b
	}
	return ParseBookingTemplate(raw)
}

func ParseBookingTemplate(raw []byte) (*BookingTemplate, error) {
	var t BookingTemplate
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("parse booking template: %w", err)
	}
	if strings.TrimSpace(t.Subject) == "" || (strings.TrimSpace(t.Text) == "" && strings.TrimSpace(t.HTML) == "") {
		return nil, fmt.Errorf("booking template needs a subject and a text or html body")
	}
	var err error
	if t.subject, err = texttemplate.New("subject").Parse(t.Subject); err != nil {
		return nil, fmt.Errorf("booking template subject: %w", err)
	}
	if t.text, err = texttemplate.New("text").Parse(t.Text); err != nil {
		return nil, fmt.Errorf("booking template text: %w", err)
	}
	if t.html, err = htmltemplate.New("html").Parse(t.HTML); err != nil {
		return nil, fmt.Errorf("booking template html: %w", err)
	}
	if t.sms, err = texttemplate.New("sms").Parse(t.SMS); err != nil {
		return nil, fmt.Errorf("booking template sms: %w", err)
	}
	return &t, nil
}

type bookingView struct {
	BookingConfirmation
	Day        string
	StartClock string
	EndClock   string
}

// Render formats the confirmation in loc.
func (t *BookingTemplate) Render(c BookingConfirmation, loc *time.Location) (RenderedBooking, error) {
	if loc == nil {
		loc = time.UTC
	}
	v := bookingView{
		BookingConfirmation: c,
		Day:                 c.Start.In(loc).Format("Mon 02 Jan 2006"),
		StartClock:          c.Start.In(loc).Format("15:04"),
		EndClock:            c.End.In(loc).Format("15:04"),
	}
	var out RenderedBooking
	var buf bytes.Buffer
	exec := func(run func(*bytes.Buffer) error) (string, error) {
		buf.Reset()
		if err := run(&buf); err != nil {
			return "", err
		}
		return strings.TrimSpace(buf.String()), nil
	}
	var err error
	if out.Subject, err = exec(func(b *bytes.Buffer) error { return t.subject.Execute(b, v) }); err != nil {
		return out, err
	}
	if out.Text, err = exec(func(b *bytes.Buffer) error { return t.text.Execute(b, v) }); err != nil {
		return out, err
	}
	if out.HTML, err = exec(func(b *bytes.Buffer) error { return t.html.Execute(b, v) }); err != nil {
		return out, err
	}
	if out.SMS, err = exec(func(b *bytes.Buffer) error { return t.sms.Execute(b, v) }); err != nil {
		return out, err
	}
	return out, nil
}
