// Package mailer delivers transactional email through SES, SendGrid or the log.
package mailer

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"sync"
)

// Provider names accepted by New
const (
	ProviderConsole  = "console"
	ProviderSES      = "ses"
	ProviderSendGrid = "sendgrid"
)

// Message is a single outbound email
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Mailer sends messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Options configure New
type Options struct {
	Provider       string
	From           string
	FromName       string
	AWSRegion      string
	SendGridAPIKey string
}

// New builds the mailer for opts.Provider. Without a sender address it falls back to the console.
func New(ctx context.Context, opts Options) (Mailer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider != ProviderConsole && opts.From == "" {
		log.Printf("Email provider %q disabled: EMAIL_FROM not configured, using console", provider)
		provider = ProviderConsole
	}

	from := mail.Address{Name: opts.FromName, Address: opts.From}

	switch provider {
	case "", ProviderConsole:
		return NewConsoleMailer(from), nil
	case ProviderSES:
		return NewSESMailer(ctx, from, opts.AWSRegion)
	case ProviderSendGrid:
		if opts.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return NewSendGridMailer(from, opts.SendGridAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", opts.Provider)
	}
}

func validate(msg Message) error {
	if msg.To.Address == "" {
		return fmt.Errorf("recipient is required")
	}
	if msg.Text == "" && msg.HTML == "" {
		return fmt.Errorf("message body is required")
	}
	return nil
}

// ConsoleMailer logs messages instead of sending them
type ConsoleMailer struct {
	from mail.Address
	mu   sync.Mutex
	sent []Message
}

// NewConsoleMailer creates a mailer that writes to the log
func NewConsoleMailer(from mail.Address) *ConsoleMailer {
	return &ConsoleMailer{from: from}
}

// Send logs the message and remembers it
func (m *ConsoleMailer) Send(_ context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	log.Printf("Email (console): from=%s to=%s subject=%q\n%s", m.from.String(), msg.To.String(), msg.Subject, msg.Text)

	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	return nil
}

// Sent returns the messages logged so far
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}
