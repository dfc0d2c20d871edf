package mailer

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/mail"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

var (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridMailer sends email via the SendGrid v3 API
type SendGridMailer struct {
	key  string
	from *sgmail.Email
	api  func(rest.Request) (*rest.Response, error)
}

// NewSendGridMailer creates a SendGrid mailer
func NewSendGridMailer(from mail.Address, key string) *SendGridMailer {
	log.Printf("Email service enabled: provider=sendgrid from=%s", from.Address)
	return &SendGridMailer{
		key:  key,
		from: sgmail.NewEmail(from.Name, from.Address),
		api:  sendgrid.API,
	}
}

func (m *SendGridMailer) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.To.Name, msg.To.Address))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(m.from)
	v3.AddPersonalizations(p)

	if msg.Text != "" {
		v3.AddContent(sgmail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		v3.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return v3
}

// Send delivers msg through SendGrid
func (m *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if err := validate(msg); err != nil {
		return err
	}

	req := sendgrid.GetRequest(m.key, sendGridEndpoint, sendGridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(m.prepare(msg))

	if err := ctx.Err(); err != nil {
		return err
	}

	res, err := m.api(req)
	if err != nil {
		return fmt.Errorf("failed to send email via SendGrid: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid returned status %d: %s", res.StatusCode, res.Body)
	}

	log.Printf("Email sent: provider=sendgrid to=%s", msg.To.Address)
	return nil
}
