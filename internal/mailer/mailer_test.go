package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessage = Message{
	To:      mail.Address{Name: "Ms Hill", Address: "hill@example.com"},
	Subject: "Your invitation",
	Text:    "Welcome",
	HTML:    "<p>Welcome</p>",
}

func TestNewFallsBackToConsole(t *testing.T) {
	m, err := New(context.Background(), Options{Provider: "ses"})
	require.NoError(t, err)
	assert.IsType(t, &ConsoleMailer{}, m)

	_, err = New(context.Background(), Options{Provider: "pigeon", From: "bee@example.com"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Provider: "sendgrid", From: "bee@example.com"})
	assert.Error(t, err)

	m, err = New(context.Background(), Options{Provider: "sendgrid", From: "bee@example.com", SendGridAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, m)
}

func TestConsoleMailer(t *testing.T) {
	m := NewConsoleMailer(mail.Address{Address: "bee@example.com"})

	require.NoError(t, m.Send(context.Background(), testMessage))
	assert.Error(t, m.Send(context.Background(), Message{Subject: "no recipient", Text: "x"}))
	assert.Error(t, m.Send(context.Background(), Message{To: testMessage.To}))

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Your invitation", sent[0].Subject)
}

type fakeSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(_ context.Context, params *sesv2.SendEmailInput, _ ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer(t *testing.T) {
	fake := &fakeSES{}
	m := &SESMailer{client: fake, from: mail.Address{Name: "Spelling Bee", Address: "bee@example.com"}}

	require.NoError(t, m.Send(context.Background(), testMessage))
	require.NotNil(t, fake.input)
	assert.Equal(t, `"Spelling Bee" <bee@example.com>`, aws.ToString(fake.input.FromEmailAddress))
	assert.Equal(t, []string{`"Ms Hill" <hill@example.com>`}, fake.input.Destination.ToAddresses)
	assert.Equal(t, "<p>Welcome</p>", aws.ToString(fake.input.Content.Simple.Body.Html.Data))

	fake.err = errors.New("throttled")
	assert.ErrorContains(t, m.Send(context.Background(), testMessage), "throttled")
}

func TestSendGridMailer(t *testing.T) {
	var captured rest.Request
	m := NewSendGridMailer(mail.Address{Name: "Spelling Bee", Address: "bee@example.com"}, "key")
	m.api = func(req rest.Request) (*rest.Response, error) {
		captured = req
		return &rest.Response{StatusCode: 202}, nil
	}

	require.NoError(t, m.Send(context.Background(), testMessage))
	assert.Equal(t, "https://api.sendgrid.com/v3/mail/send", captured.BaseURL)
	assert.Equal(t, "Bearer key", captured.Headers["Authorization"])

	var body struct {
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(captured.Body, &body))
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "Your invitation", body.Personalizations[0].Subject)
	assert.Equal(t, "hill@example.com", body.Personalizations[0].To[0].Email)
	assert.Len(t, body.Content, 2)

	m.api = func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: 401, Body: "unauthorized"}, nil
	}
	assert.ErrorContains(t, m.Send(context.Background(), testMessage), "401")
}
