// Package notification delivers transactional email about orders.
package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/ridloal/woodkits-store/internal/platform/logger"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// sendClient is the part of *sendgrid.Client used for delivery.
type sendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client   sendClient
	fromName string
	fromAddr string
}

func NewSendGridSender(apiKey, fromAddr, fromName string) (*SendGridSender, error) {
	if apiKey == "" {
		return nil, errors.New("sendgrid api key is empty")
	}
	if fromAddr == "" {
		return nil, errors.New("from address is empty")
	}
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey), fromAddr: fromAddr, fromName: fromName}, nil
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("to address is empty")
	}
	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromAddr),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		msg.HTML,
	)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send failed: status=%d, body=%s", response.StatusCode, response.Body)
	}

	logger.Info("mail sent", logger.Fields{"status": response.StatusCode, "to": msg.To, "subject": msg.Subject})
	return nil
}

// LogSender only logs messages. It is used when no mail provider is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	logger.Info("mail not sent, no provider configured", logger.Fields{"to": msg.To, "subject": msg.Subject})
	return nil
}
