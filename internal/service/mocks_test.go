package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/XSparkDev/akalaw/internal/gateway"
	"github.com/XSparkDev/akalaw/internal/models"
	"github.com/XSparkDev/akalaw/internal/notification"
	"github.com/XSparkDev/akalaw/internal/repository"
)

// Test errors
var (
	errMockStore   = errors.New("store error")
	errMockGateway = errors.New("gateway error")
)

// mockRepository implements repository.PaymentRepository for testing
type mockRepository struct {
	CreatePaymentRecordFunc   func(ctx context.Context, record *models.PaymentRecord) (string, error)
	UpdatePaymentRecordFunc   func(ctx context.Context, reference string, update repository.PaymentUpdate) error
	GetPaymentByReferenceFunc func(ctx context.Context, reference string) (*models.PaymentRecord, error)

	mu        sync.Mutex
	created   []*models.PaymentRecord
	updates   []repository.PaymentUpdate
	downloads []*models.DocumentDownload
	errorLogs []*models.PaymentErrorLog
}

func (m *mockRepository) CreatePaymentRecord(ctx context.Context, record *models.PaymentRecord) (string, error) {
	m.mu.Lock()
	m.created = append(m.created, record)
	m.mu.Unlock()
	if m.CreatePaymentRecordFunc != nil {
		return m.CreatePaymentRecordFunc(ctx, record)
	}
	return "mock-id", nil
}

func (m *mockRepository) UpdatePaymentRecord(ctx context.Context, reference string, update repository.PaymentUpdate) error {
	m.mu.Lock()
	m.updates = append(m.updates, update)
	m.mu.Unlock()
	if m.UpdatePaymentRecordFunc != nil {
		return m.UpdatePaymentRecordFunc(ctx, reference, update)
	}
	return nil
}

func (m *mockRepository) GetPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	if m.GetPaymentByReferenceFunc != nil {
		return m.GetPaymentByReferenceFunc(ctx, reference)
	}
	return nil, models.ErrPaymentNotFound
}

func (m *mockRepository) GetCustomerPayments(ctx context.Context, customerEmail string) ([]models.PaymentRecord, error) {
	return nil, nil
}

func (m *mockRepository) UpdateCustomerRecord(ctx context.Context, record *models.PaymentRecord) error {
	return nil
}

func (m *mockRepository) RecordDocumentDownload(ctx context.Context, download *models.DocumentDownload) error {
	m.mu.Lock()
	m.downloads = append(m.downloads, download)
	m.mu.Unlock()
	return nil
}

func (m *mockRepository) LogPaymentError(ctx context.Context, errLog *models.PaymentErrorLog) error {
	m.mu.Lock()
	m.errorLogs = append(m.errorLogs, errLog)
	m.mu.Unlock()
	return nil
}

func (m *mockRepository) HasCustomerPurchasedDocument(ctx context.Context, customerEmail, documentID string) (bool, error) {
	return false, nil
}

func (m *mockRepository) GetPaymentStatistics(ctx context.Context, days int) (*models.PaymentStatistics, error) {
	return &models.PaymentStatistics{}, nil
}

func (m *mockRepository) EnsureIndexes(ctx context.Context) error { return nil }

// mockGateway implements gateway.Client for testing
type mockGateway struct {
	InitializeFunc func(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error)
	VerifyFunc     func(ctx context.Context, reference string) (*gateway.VerifyResponse, error)

	initRequests []*gateway.InitializeRequest
}

func (m *mockGateway) Initialize(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	m.initRequests = append(m.initRequests, req)
	if m.InitializeFunc != nil {
		return m.InitializeFunc(ctx, req)
	}
	return &gateway.InitializeResponse{
		Status:  true,
		Message: "Authorization URL created",
		Data: gateway.InitializeData{
			AuthorizationURL: "https://checkout.example.com/abc",
			AccessCode:       "access_abc",
			Reference:        req.Reference,
		},
	}, nil
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(ctx, reference)
	}
	return nil, errMockGateway
}

// mockNotifier implements notification.Service for testing
type mockNotifier struct {
	SendPaymentNotificationEmailsFunc func(ctx context.Context, data *notification.PaymentEmailData) notification.EmailResult

	notified []*notification.PaymentEmailData
}

func (m *mockNotifier) SendCustomerDocumentEmail(ctx context.Context, data *notification.CustomerEmailData) bool {
	return true
}

func (m *mockNotifier) SendAdminNotificationEmail(ctx context.Context, data *notification.AdminEmailData) bool {
	return true
}

func (m *mockNotifier) SendPaymentNotificationEmails(ctx context.Context, data *notification.PaymentEmailData) notification.EmailResult {
	m.notified = append(m.notified, data)
	if m.SendPaymentNotificationEmailsFunc != nil {
		return m.SendPaymentNotificationEmailsFunc(ctx, data)
	}
	return notification.EmailResult{CustomerEmailSent: true, AdminEmailSent: true}
}

// mockProducer implements messaging.EventProducer for testing
type mockProducer struct {
	events []*models.PaymentEvent
}

func (m *mockProducer) PublishPaymentEvent(ctx context.Context, event *models.PaymentEvent) error {
	m.events = append(m.events, event)
	return nil
}

func (m *mockProducer) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(documentsDir string) Config {
	return Config{
		PublicBaseURL: "http://localhost:8080",
		DocumentsDir:  documentsDir,
	}
}
