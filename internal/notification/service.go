package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Config carries the addressing for outgoing mail and the public base URL
// used to build download links.
type Config struct {
	From          string
	FromName      string
	AdminEmail    string
	ReplyTo       string
	PublicBaseURL string
}

// EmailResult reports the two notification sends independently. One
// outcome never couples to the other.
type EmailResult struct {
	CustomerEmailSent bool `json:"customerEmailSent"`
	AdminEmailSent    bool `json:"adminEmailSent"`
}

// PaymentEmailData is everything both notification emails need.
type PaymentEmailData struct {
	CustomerName     string
	CustomerEmail    string
	CustomerPhone    string
	DocumentTitle    string
	DocumentCategory string
	DocumentID       string
	Amount           float64
	Reference        string
	PaymentDate      time.Time
}

// Service sends the two post-payment emails. Sends return booleans, never
// errors: a provider failure degrades to false.
type Service interface {
	SendCustomerDocumentEmail(ctx context.Context, data *CustomerEmailData) bool
	SendAdminNotificationEmail(ctx context.Context, data *AdminEmailData) bool
	SendPaymentNotificationEmails(ctx context.Context, data *PaymentEmailData) EmailResult
}

type emailService struct {
	sender Sender
	cfg    Config
	logger *slog.Logger
}

// NewService builds the email service. A nil sender marks the provider as
// unconfigured: every send short-circuits to false without a network call.
func NewService(sender Sender, cfg Config, logger *slog.Logger) Service {
	return &emailService{
		sender: sender,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *emailService) available() bool {
	return s.sender != nil
}

func (s *emailService) SendCustomerDocumentEmail(ctx context.Context, data *CustomerEmailData) bool {
	if !s.available() {
		s.logger.Warn("email service not configured, skipping customer email", "reference", data.Reference)
		return false
	}

	html, err := renderTemplate("customer_email.html.tmpl", data)
	if err != nil {
		s.logger.Error("failed to render customer email", "reference", data.Reference, "error", err)
		return false
	}

	id, err := s.sender.Send(ctx, &Email{
		From:    fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From),
		To:      data.CustomerEmail,
		ReplyTo: s.cfg.ReplyTo,
		Subject: fmt.Sprintf("Your Legal Document: %s - Reference %s", data.DocumentTitle, data.Reference),
		HTML:    html,
	})
	if err != nil {
		s.logger.Error("failed to send customer email", "reference", data.Reference, "error", err)
		return false
	}

	s.logger.Info("customer document email sent",
		"emailId", id,
		"recipient", data.CustomerEmail,
		"reference", data.Reference)
	return true
}

func (s *emailService) SendAdminNotificationEmail(ctx context.Context, data *AdminEmailData) bool {
	if !s.available() {
		s.logger.Warn("email service not configured, skipping admin notification", "reference", data.Reference)
		return false
	}

	html, err := renderTemplate("admin_email.html.tmpl", data)
	if err != nil {
		s.logger.Error("failed to render admin email", "reference", data.Reference, "error", err)
		return false
	}

	id, err := s.sender.Send(ctx, &Email{
		From:    fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From),
		To:      s.cfg.AdminEmail,
		ReplyTo: s.cfg.ReplyTo,
		Subject: fmt.Sprintf("New Document Purchase - R%.0f - %s", data.Amount, data.CustomerName),
		HTML:    html,
	})
	if err != nil {
		s.logger.Error("failed to send admin notification", "reference", data.Reference, "error", err)
		return false
	}

	s.logger.Info("admin notification email sent",
		"emailId", id,
		"reference", data.Reference)
	return true
}

// SendPaymentNotificationEmails runs both sends concurrently and joins
// them. There is no ordering between the two and a failure in one does not
// prevent or delay the other.
func (s *emailService) SendPaymentNotificationEmails(ctx context.Context, data *PaymentEmailData) EmailResult {
	downloadURL := fmt.Sprintf("%s/api/download/%s", s.cfg.PublicBaseURL, data.Reference)

	customerData := &CustomerEmailData{
		CustomerName:  data.CustomerName,
		CustomerEmail: data.CustomerEmail,
		DocumentTitle: data.DocumentTitle,
		Amount:        data.Amount,
		Reference:     data.Reference,
		DownloadURL:   downloadURL,
	}

	adminData := &AdminEmailData{
		CustomerName:     data.CustomerName,
		CustomerEmail:    data.CustomerEmail,
		CustomerPhone:    data.CustomerPhone,
		DocumentTitle:    data.DocumentTitle,
		DocumentCategory: data.DocumentCategory,
		Amount:           data.Amount,
		Reference:        data.Reference,
		PaymentDate:      data.PaymentDate.Format("Monday, 2 January 2006 15:04"),
	}

	customerSent := make(chan bool, 1)
	adminSent := make(chan bool, 1)

	go func() { customerSent <- s.SendCustomerDocumentEmail(ctx, customerData) }()
	go func() { adminSent <- s.SendAdminNotificationEmail(ctx, adminData) }()

	result := EmailResult{
		CustomerEmailSent: <-customerSent,
		AdminEmailSent:    <-adminSent,
	}

	s.logger.Info("payment notification emails finished",
		"reference", data.Reference,
		"customerEmailSent", result.CustomerEmailSent,
		"adminEmailSent", result.AdminEmailSent)

	return result
}
