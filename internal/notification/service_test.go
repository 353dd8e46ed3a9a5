package notification

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

var errMockSend = errors.New("send error")

// mockSender implements Sender for testing
type mockSender struct {
	mu       sync.Mutex
	sent     []*Email
	SendFunc func(ctx context.Context, email *Email) (string, error)
}

func (m *mockSender) Send(ctx context.Context, email *Email) (string, error) {
	m.mu.Lock()
	m.sent = append(m.sent, email)
	m.mu.Unlock()
	if m.SendFunc != nil {
		return m.SendFunc(ctx, email)
	}
	return "email-id", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	return Config{
		From:          "info@akalaw.co.za",
		FromName:      "AKA Law",
		AdminEmail:    "websales@akalaw.co.za",
		ReplyTo:       "info@akalaw.co.za",
		PublicBaseURL: "http://localhost:8080",
	}
}

func paymentData() *PaymentEmailData {
	return &PaymentEmailData{
		CustomerName:     "A",
		CustomerEmail:    "a@b.com",
		DocumentTitle:    "Last Will & Testament",
		DocumentCategory: "estate",
		DocumentID:       "2",
		Amount:           550,
		Reference:        "AKA_LAW_1700000000000_ABC123",
		PaymentDate:      time.Now(),
	}
}

func TestSendPaymentNotificationEmailsBothSent(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, testConfig(), testLogger())

	result := svc.SendPaymentNotificationEmails(context.Background(), paymentData())

	if !result.CustomerEmailSent || !result.AdminEmailSent {
		t.Fatalf("result = %+v, want both true", result)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("sent %d emails, want 2", len(sender.sent))
	}
}

func TestSendPaymentNotificationEmailsIndependentOutcomes(t *testing.T) {
	// Only the customer email fails; the admin outcome must be unaffected.
	sender := &mockSender{
		SendFunc: func(ctx context.Context, email *Email) (string, error) {
			if email.To == "a@b.com" {
				return "", errMockSend
			}
			return "email-id", nil
		},
	}
	svc := NewService(sender, testConfig(), testLogger())

	result := svc.SendPaymentNotificationEmails(context.Background(), paymentData())

	if result.CustomerEmailSent {
		t.Error("customer email reported sent despite provider failure")
	}
	if !result.AdminEmailSent {
		t.Error("admin email outcome coupled to customer failure")
	}
}

func TestSendsShortCircuitWithoutProvider(t *testing.T) {
	// nil sender = provider not configured; no network call is attempted.
	svc := NewService(nil, testConfig(), testLogger())

	result := svc.SendPaymentNotificationEmails(context.Background(), paymentData())

	if result.CustomerEmailSent || result.AdminEmailSent {
		t.Fatalf("result = %+v, want both false", result)
	}
}

func TestCustomerEmailContent(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, testConfig(), testLogger())

	svc.SendPaymentNotificationEmails(context.Background(), paymentData())

	var customerEmail *Email
	for _, email := range sender.sent {
		if email.To == "a@b.com" {
			customerEmail = email
		}
	}
	if customerEmail == nil {
		t.Fatal("customer email not sent")
	}

	if !strings.Contains(customerEmail.Subject, "Last Will & Testament") {
		t.Errorf("subject missing document title: %q", customerEmail.Subject)
	}
	if !strings.Contains(customerEmail.Subject, "AKA_LAW_1700000000000_ABC123") {
		t.Errorf("subject missing reference: %q", customerEmail.Subject)
	}
	downloadURL := "http://localhost:8080/api/download/AKA_LAW_1700000000000_ABC123"
	if !strings.Contains(customerEmail.HTML, downloadURL) {
		t.Error("body missing download link")
	}
	if customerEmail.From != "AKA Law <info@akalaw.co.za>" {
		t.Errorf("from = %q", customerEmail.From)
	}
}

func TestAdminEmailAddressing(t *testing.T) {
	sender := &mockSender{}
	svc := NewService(sender, testConfig(), testLogger())

	ok := svc.SendAdminNotificationEmail(context.Background(), &AdminEmailData{
		CustomerName:     "A",
		CustomerEmail:    "a@b.com",
		DocumentTitle:    "Living Will",
		DocumentCategory: "estate",
		Amount:           550,
		Reference:        "AKA_LAW_1700000000000_ABC123",
		PaymentDate:      "Monday, 1 September 2025 10:00",
	})
	if !ok {
		t.Fatal("admin send failed")
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "websales@akalaw.co.za" {
		t.Fatalf("admin email not addressed to admin: %+v", sender.sent)
	}
}
