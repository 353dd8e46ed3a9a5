package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/XSparkDev/akalaw/internal/gateway"
	"github.com/XSparkDev/akalaw/internal/messaging"
	"github.com/XSparkDev/akalaw/internal/models"
	"github.com/XSparkDev/akalaw/internal/notification"
	"github.com/XSparkDev/akalaw/internal/repository"
	"github.com/shopspring/decimal"
)

const currency = "ZAR"

// Config is the slice of application config the workflow needs.
type Config struct {
	PublicBaseURL string
	DocumentsDir  string
}

// Download points at the archive to stream for a paid-for document.
type Download struct {
	Path     string
	FileName string
	Record   *models.PaymentRecord
}

// NotReadyError means the payment is good but the archive is not on disk
// yet. Handlers answer it distinctly from a plain not-found.
type NotReadyError struct {
	Reference     string
	DocumentTitle string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("document file not available yet for %s", e.Reference)
}

// PaymentService sequences the purchase workflow: initialize with the
// gateway, persist a pending record, verify, notify, and gate downloads on
// payment status.
type PaymentService interface {
	InitializePayment(ctx context.Context, req *models.InitializePaymentRequest, meta *models.RequestMetadata) (*gateway.InitializeResponse, error)
	SavePaymentRecord(ctx context.Context, req *models.SavePaymentRequest, meta *models.RequestMetadata) (string, error)
	VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyResponse, error)
	PrepareDownload(ctx context.Context, reference string, meta *models.RequestMetadata) (*Download, error)
	PaymentStatistics(ctx context.Context, days int) (*models.PaymentStatistics, error)
	CustomerPayments(ctx context.Context, customerEmail string) ([]models.PaymentRecord, error)
}

type paymentService struct {
	repo     repository.PaymentRepository
	gateway  gateway.Client
	notifier notification.Service
	producer messaging.EventProducer
	cfg      Config
	logger   *slog.Logger

	// newReference is swappable so tests can force a known reference.
	newReference func() string
}

func NewPaymentService(
	repo repository.PaymentRepository,
	gatewayClient gateway.Client,
	notifier notification.Service,
	producer messaging.EventProducer,
	cfg Config,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		repo:         repo,
		gateway:      gatewayClient,
		notifier:     notifier,
		producer:     producer,
		cfg:          cfg,
		logger:       logger,
		newReference: gateway.GenerateReference,
	}
}

// InitializePayment starts a purchase with the gateway. The pending record
// is persisted best-effort: a store failure is logged but the browser still
// proceeds to the hosted payment page.
func (s *paymentService) InitializePayment(ctx context.Context, req *models.InitializePaymentRequest, meta *models.RequestMetadata) (*gateway.InitializeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	reference := s.newReference()
	amount := gateway.RandToCents(decimal.NewFromFloat(req.DocumentPrice))

	resp, err := s.gateway.Initialize(ctx, &gateway.InitializeRequest{
		Email:       req.CustomerEmail,
		Amount:      amount,
		Currency:    currency,
		Reference:   reference,
		CallbackURL: fmt.Sprintf("%s/payment/verify?reference=%s", s.cfg.PublicBaseURL, reference),
		Metadata: gateway.Metadata{
			DocumentID:    req.DocumentID,
			DocumentTitle: req.DocumentTitle,
			CustomerName:  req.CustomerName,
			CustomerPhone: req.CustomerPhone,
		},
	})
	if err != nil {
		s.logWorkflowError(ctx, models.ErrorTypeInitialization, "Payment initialization failed", err, reference, req.CustomerEmail, req.DocumentID)
		return nil, err
	}

	if _, saveErr := s.SavePaymentRecord(ctx, &models.SavePaymentRequest{
		PaymentReference: resp.Data.Reference,
		DocumentID:       req.DocumentID,
		DocumentTitle:    req.DocumentTitle,
		DocumentPrice:    models.Price(req.DocumentPrice),
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
	}, meta); saveErr != nil {
		// Non-blocking: the gateway redirect must not wait on the store.
		s.logger.Warn("failed to persist pending payment record",
			"reference", resp.Data.Reference,
			"error", saveErr)
	}

	s.logger.Info("payment initialized",
		"reference", resp.Data.Reference,
		"amount", req.DocumentPrice,
		"currency", currency,
		"customer", req.CustomerEmail,
		"document", req.DocumentTitle)

	return resp, nil
}

// SavePaymentRecord creates the pending record. Unlike every other store
// write in the workflow, a failure here propagates: without a record
// nothing later can resolve the reference.
func (s *paymentService) SavePaymentRecord(ctx context.Context, req *models.SavePaymentRequest, meta *models.RequestMetadata) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	format := "PDF & Word"
	if entry, ok := models.DocumentByID(req.DocumentID); ok {
		format = entry.Format
	}

	price := float64(req.DocumentPrice)

	now := time.Now()
	record := &models.PaymentRecord{
		PaymentReference: req.PaymentReference,
		CustomerName:     req.CustomerName,
		CustomerEmail:    req.CustomerEmail,
		CustomerPhone:    req.CustomerPhone,
		DocumentID:       req.DocumentID,
		DocumentTitle:    req.DocumentTitle,
		DocumentCategory: models.DocumentCategory(req.DocumentID),
		DocumentPrice:    price,
		DocumentFormat:   format,
		PaymentStatus:    models.PaymentStatusPending,
		Amount:           gateway.RandToCents(decimal.NewFromFloat(price)),
		Currency:         currency,
		Gateway: &models.GatewayDetails{
			AuthorizationURL: req.AuthorizationURL,
			AccessCode:       req.AccessCode,
			Channel:          "unknown", // updated after verification
			Domain:           "test",
		},
		Metadata: models.RequestMetadata{
			UserAgent:            metaUserAgent(meta),
			IPAddress:            metaIPAddress(meta),
			Source:               "web",
			DisclaimerAccepted:   true,
			DisclaimerAcceptedAt: now,
		},
	}

	id, err := s.repo.CreatePaymentRecord(ctx, record)
	if err != nil {
		return "", err
	}

	if owned, checkErr := s.repo.HasCustomerPurchasedDocument(ctx, req.CustomerEmail, req.DocumentID); checkErr == nil && owned {
		s.logger.Info("repeat purchase",
			"customer", req.CustomerEmail,
			"document", req.DocumentID,
			"reference", req.PaymentReference)
	}

	return id, nil
}

// VerifyPayment asks the gateway for the transaction result and reflects it
// into the store. Every step after the gateway call is best-effort; the
// returned response is always the raw verification result.
func (s *paymentService) VerifyPayment(ctx context.Context, reference string) (*gateway.VerifyResponse, error) {
	resp, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.logWorkflowError(ctx, models.ErrorTypeVerification, "Payment verification failed", err, reference, "", "")
		return nil, err
	}

	status := models.PaymentStatus(resp.Data.Status)

	update := repository.PaymentUpdate{
		Status:               status,
		Amount:               resp.Data.Amount,
		GatewayResponse:      resp.Data.GatewayResponse,
		GatewayTransactionID: resp.Data.ID,
		Channel:              resp.Data.Channel,
		Domain:               resp.Data.Domain,
		IPAddress:            resp.Data.IPAddress,
		Customer: &models.GatewayCustomer{
			ID:           resp.Data.Customer.ID,
			CustomerCode: resp.Data.Customer.CustomerCode,
			FirstName:    resp.Data.Customer.FirstName,
			LastName:     resp.Data.Customer.LastName,
		},
	}

	if err := s.repo.UpdatePaymentRecord(ctx, reference, update); err != nil {
		s.logger.Warn("failed to reflect verification into store",
			"reference", reference,
			"status", status,
			"error", err)
	}

	s.publishVerificationEvent(ctx, resp, status)

	if status == models.PaymentStatusSuccess {
		s.sendNotifications(ctx, reference)
	}

	s.logger.Info("payment verification result",
		"reference", reference,
		"status", resp.Data.Status,
		"amount", resp.Data.Amount,
		"currency", resp.Data.Currency,
		"gatewayResponse", resp.Data.GatewayResponse)

	return resp, nil
}

func (s *paymentService) sendNotifications(ctx context.Context, reference string) {
	record, err := s.repo.GetPaymentByReference(ctx, reference)
	if err != nil {
		s.logger.Error("no payment record found for email sending", "reference", reference, "error", err)
		return
	}

	result := s.notifier.SendPaymentNotificationEmails(ctx, &notification.PaymentEmailData{
		CustomerName:     record.CustomerName,
		CustomerEmail:    record.CustomerEmail,
		CustomerPhone:    record.CustomerPhone,
		DocumentTitle:    record.DocumentTitle,
		DocumentCategory: record.DocumentCategory,
		DocumentID:       record.DocumentID,
		Amount:           record.DocumentPrice,
		Reference:        record.PaymentReference,
		PaymentDate:      time.Now(),
	})

	s.logger.Info("email notifications completed",
		"reference", reference,
		"customerEmailSent", result.CustomerEmailSent,
		"adminEmailSent", result.AdminEmailSent)
}

func (s *paymentService) publishVerificationEvent(ctx context.Context, resp *gateway.VerifyResponse, status models.PaymentStatus) {
	if s.producer == nil {
		return
	}
	eventType := models.EventPaymentFailed
	if status == models.PaymentStatusSuccess {
		eventType = models.EventPaymentVerified
	}
	event := &models.PaymentEvent{
		Type:          eventType,
		Reference:     resp.Data.Reference,
		CustomerEmail: resp.Data.Customer.Email,
		DocumentID:    resp.Data.Metadata.DocumentID,
		Amount:        resp.Data.Amount,
		Status:        resp.Data.Status,
		Timestamp:     time.Now(),
	}
	if err := s.producer.PublishPaymentEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish verification event", "reference", event.Reference, "error", err)
	}
}

var (
	fileNameStrip    = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	fileNameCollapse = regexp.MustCompile(`\s+`)
)

func sanitizeFileName(title string) string {
	clean := fileNameStrip.ReplaceAllString(title, "")
	return fileNameCollapse.ReplaceAllString(clean, "_") + ".zip"
}

// PrepareDownload gates the file on payment status and resolves the
// document archive through the catalog. The download log is best-effort
// and written only once the file is known to exist.
func (s *paymentService) PrepareDownload(ctx context.Context, reference string, meta *models.RequestMetadata) (*Download, error) {
	record, err := s.repo.GetPaymentByReference(ctx, reference)
	if err != nil {
		if !errors.Is(err, models.ErrPaymentNotFound) {
			s.logger.Error("failed to load payment record for download", "reference", reference, "error", err)
		}
		return nil, models.ErrPaymentNotFound
	}

	if record.PaymentStatus != models.PaymentStatusSuccess {
		return nil, models.ErrPaymentNotCompleted
	}

	entry, ok := models.DocumentByID(record.DocumentID)
	if !ok {
		return nil, models.ErrDocumentNotFound
	}

	path := filepath.Join(s.cfg.DocumentsDir, entry.ArchiveFile)
	if _, err := os.Stat(path); err != nil {
		s.logger.Error("document archive missing on disk", "reference", reference, "path", path)
		return nil, &NotReadyError{Reference: reference, DocumentTitle: record.DocumentTitle}
	}

	if err := s.repo.RecordDocumentDownload(ctx, &models.DocumentDownload{
		PaymentReference: reference,
		CustomerEmail:    record.CustomerEmail,
		DocumentID:       record.DocumentID,
		IPAddress:        metaIPAddress(meta),
		UserAgent:        metaUserAgent(meta),
	}); err != nil {
		s.logger.Warn("failed to record download", "reference", reference, "error", err)
	}

	return &Download{
		Path:     path,
		FileName: sanitizeFileName(record.DocumentTitle),
		Record:   record,
	}, nil
}

func (s *paymentService) PaymentStatistics(ctx context.Context, days int) (*models.PaymentStatistics, error) {
	return s.repo.GetPaymentStatistics(ctx, days)
}

func (s *paymentService) CustomerPayments(ctx context.Context, customerEmail string) ([]models.PaymentRecord, error) {
	return s.repo.GetCustomerPayments(ctx, customerEmail)
}

func (s *paymentService) logWorkflowError(ctx context.Context, errType models.ErrorType, message string, cause error, reference, customerEmail, documentID string) {
	s.logger.Error(message, "reference", reference, "error", cause)
	if err := s.repo.LogPaymentError(ctx, &models.PaymentErrorLog{
		PaymentReference: reference,
		ErrorType:        errType,
		ErrorMessage:     message,
		ErrorDetails:     cause.Error(),
		CustomerEmail:    customerEmail,
		DocumentID:       documentID,
	}); err != nil {
		s.logger.Warn("failed to write payment error log", "reference", reference, "error", err)
	}
}

func metaUserAgent(meta *models.RequestMetadata) string {
	if meta == nil {
		return ""
	}
	return meta.UserAgent
}

func metaIPAddress(meta *models.RequestMetadata) string {
	if meta == nil {
		return ""
	}
	return meta.IPAddress
}
