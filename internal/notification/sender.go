package notification

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Sender is the seam to the transactional-email provider.
type Sender interface {
	Send(ctx context.Context, email *Email) (string, error)
}

type Email struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

type resendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) Sender {
	return &resendSender{client: resend.NewClient(apiKey)}
}

func (s *resendSender) Send(ctx context.Context, email *Email) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      []string{email.To},
		ReplyTo: email.ReplyTo,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("resend send: %w", err)
	}
	return sent.Id, nil
}
