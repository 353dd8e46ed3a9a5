package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/XSparkDev/akalaw/internal/messaging"
	"github.com/XSparkDev/akalaw/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionPayments  = "payments"
	collectionCustomers = "customers"
	collectionDownloads = "downloads"
	collectionErrors    = "payment_errors"
)

// PaymentUpdate carries the verification result merged into a payment
// record. Zero-value fields are not written.
type PaymentUpdate struct {
	Status               models.PaymentStatus
	Amount               int64
	GatewayResponse      string
	GatewayTransactionID int64
	Channel              string
	Domain               string
	IPAddress            string
	Customer             *models.GatewayCustomer
}

// PaymentRepository is the record-store contract. Create propagates
// failure; the append-only logs and the customer upsert are best-effort for
// callers, which log and move on.
type PaymentRepository interface {
	CreatePaymentRecord(ctx context.Context, record *models.PaymentRecord) (string, error)
	UpdatePaymentRecord(ctx context.Context, reference string, update PaymentUpdate) error
	GetPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error)
	GetCustomerPayments(ctx context.Context, customerEmail string) ([]models.PaymentRecord, error)
	UpdateCustomerRecord(ctx context.Context, record *models.PaymentRecord) error
	RecordDocumentDownload(ctx context.Context, download *models.DocumentDownload) error
	LogPaymentError(ctx context.Context, errLog *models.PaymentErrorLog) error
	HasCustomerPurchasedDocument(ctx context.Context, customerEmail, documentID string) (bool, error)
	GetPaymentStatistics(ctx context.Context, days int) (*models.PaymentStatistics, error)
	EnsureIndexes(ctx context.Context) error
}

type paymentRepository struct {
	payments  *mongo.Collection
	customers *mongo.Collection
	downloads *mongo.Collection
	errorLogs *mongo.Collection
	producer  messaging.EventProducer
	logger    *slog.Logger
}

func NewPaymentRepository(db *mongo.Database, producer messaging.EventProducer, logger *slog.Logger) PaymentRepository {
	return &paymentRepository{
		payments:  db.Collection(collectionPayments),
		customers: db.Collection(collectionCustomers),
		downloads: db.Collection(collectionDownloads),
		errorLogs: db.Collection(collectionErrors),
		producer:  producer,
		logger:    logger,
	}
}

func (r *paymentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.payments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "paymentReference", Value: 1}}},
		{Keys: bson.D{{Key: "customerEmail", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create payment indexes: %w", err)
	}

	_, err = r.customers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create customer index: %w", err)
	}
	return nil
}

// CreatePaymentRecord inserts a new record with status forced to pending.
// This is the one store write allowed to fail the originating request.
func (r *paymentRepository) CreatePaymentRecord(ctx context.Context, record *models.PaymentRecord) (string, error) {
	now := time.Now()
	record.PaymentStatus = models.PaymentStatusPending
	record.CreatedAt = now
	record.UpdatedAt = now

	result, err := r.payments.InsertOne(ctx, record)
	if err != nil {
		r.logStoreError(ctx, record.PaymentReference, "Failed to create payment record", err, record.CustomerEmail, record.DocumentID)
		return "", fmt.Errorf("create payment record: %w", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}

	r.logger.Info("payment record created",
		"id", id.Hex(),
		"reference", record.PaymentReference,
		"customer", record.CustomerEmail,
		"amount", record.DocumentPrice)

	return id.Hex(), nil
}

// UpdatePaymentRecord merges the verification result into the record. The
// lookup is by reference and the first match wins. paidAt is stamped once,
// only on the transition into success. A successful transition also upserts
// the customer aggregate; that side effect is swallowed on failure.
func (r *paymentRepository) UpdatePaymentRecord(ctx context.Context, reference string, update PaymentUpdate) error {
	var existing models.PaymentRecord
	err := r.payments.FindOne(ctx, bson.M{"paymentReference": reference}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		r.logStoreError(ctx, reference, "Payment record not found for update", err, "", "")
		return fmt.Errorf("update payment record %s: %w", reference, models.ErrPaymentNotFound)
	}
	if err != nil {
		r.logStoreError(ctx, reference, "Failed to load payment record for update", err, "", "")
		return fmt.Errorf("load payment record %s: %w", reference, err)
	}

	now := time.Now()
	set := buildPaymentUpdate(&existing, update, now)

	if _, err := r.payments.UpdateByID(ctx, existing.ID, bson.M{"$set": set}); err != nil {
		r.logStoreError(ctx, reference, "Failed to update payment record", err, existing.CustomerEmail, existing.DocumentID)
		return fmt.Errorf("update payment record %s: %w", reference, err)
	}

	r.logger.Info("payment record updated",
		"id", existing.ID.Hex(),
		"reference", reference,
		"status", update.Status)

	if update.Status == models.PaymentStatusSuccess {
		if err := r.UpdateCustomerRecord(ctx, &existing); err != nil {
			// Non-blocking: the aggregate is flagged for monitoring
			// instead of silently lost.
			r.logger.Error("customer aggregate update failed",
				"reference", reference,
				"customer", existing.CustomerEmail,
				"error", err)
			r.publishEvent(ctx, &models.PaymentEvent{
				Type:          models.EventCustomerUpdateFailed,
				Reference:     reference,
				CustomerEmail: existing.CustomerEmail,
				DocumentID:    existing.DocumentID,
				Timestamp:     now,
			})
		}
	}

	return nil
}

// buildPaymentUpdate computes the $set document for a verification merge.
// Kept pure so the paidAt-once rule is testable without a database.
func buildPaymentUpdate(existing *models.PaymentRecord, update PaymentUpdate, now time.Time) bson.M {
	set := bson.M{
		"updatedAt": now,
	}
	if update.Status != "" {
		set["paymentStatus"] = update.Status
	}
	if update.Amount != 0 {
		set["amount"] = update.Amount
	}
	if update.GatewayResponse != "" {
		set["gatewayResponse"] = update.GatewayResponse
	}
	if update.GatewayTransactionID != 0 {
		set["gatewayTransactionId"] = update.GatewayTransactionID
	}
	if update.Channel != "" {
		set["gateway.channel"] = update.Channel
	}
	if update.Domain != "" {
		set["gateway.domain"] = update.Domain
	}
	if update.IPAddress != "" {
		set["gateway.ipAddress"] = update.IPAddress
	}
	if update.Customer != nil {
		set["gatewayCustomer"] = update.Customer
	}
	if update.Status == models.PaymentStatusSuccess && existing.PaidAt.IsZero() {
		set["paidAt"] = now
	}
	return set
}

// GetPaymentByReference returns the first record matching the reference.
func (r *paymentRepository) GetPaymentByReference(ctx context.Context, reference string) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	err := r.payments.FindOne(ctx, bson.M{"paymentReference": reference}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find payment by reference %s: %w", reference, err)
	}
	return &record, nil
}

func (r *paymentRepository) GetCustomerPayments(ctx context.Context, customerEmail string) ([]models.PaymentRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(50)

	cursor, err := r.payments.Find(ctx, bson.M{"customerEmail": customerEmail}, opts)
	if err != nil {
		return nil, fmt.Errorf("find customer payments: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.PaymentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode customer payments: %w", err)
	}
	return records, nil
}

// UpdateCustomerRecord upserts the per-email customer aggregate. Counters
// grow via $inc and the purchased-document set via $addToSet, so concurrent
// successful payments for the same email cannot lose increments.
func (r *paymentRepository) UpdateCustomerRecord(ctx context.Context, record *models.PaymentRecord) error {
	now := time.Now()

	var existing models.Customer
	err := r.customers.FindOne(ctx, bson.M{"email": record.CustomerEmail}).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := r.customers.InsertOne(ctx, buildNewCustomer(record, now)); err != nil {
			return fmt.Errorf("create customer %s: %w", record.CustomerEmail, err)
		}
		r.logger.Info("new customer created", "email", record.CustomerEmail)
		return nil
	}
	if err != nil {
		return fmt.Errorf("find customer %s: %w", record.CustomerEmail, err)
	}

	if _, err := r.customers.UpdateByID(ctx, existing.ID, buildCustomerUpdate(record, now)); err != nil {
		return fmt.Errorf("update customer %s: %w", record.CustomerEmail, err)
	}

	r.logger.Info("customer updated", "email", record.CustomerEmail)
	return nil
}

// buildNewCustomer seeds the aggregate on a customer's first purchase.
func buildNewCustomer(record *models.PaymentRecord, now time.Time) *models.Customer {
	return &models.Customer{
		Email:              record.CustomerEmail,
		Name:               record.CustomerName,
		Phone:              record.CustomerPhone,
		TotalPurchases:     1,
		TotalSpent:         record.DocumentPrice,
		FirstPurchaseAt:    now,
		LastPurchaseAt:     now,
		PurchasedDocuments: []string{record.DocumentID},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// buildCustomerUpdate computes the update for an existing aggregate. The
// counters grow by exactly one purchase via $inc and the document set via
// $addToSet; a payment without a phone keeps the stored one.
func buildCustomerUpdate(record *models.PaymentRecord, now time.Time) bson.M {
	set := bson.M{
		"name":           record.CustomerName,
		"lastPurchaseAt": now,
		"updatedAt":      now,
	}
	if record.CustomerPhone != "" {
		set["phone"] = record.CustomerPhone
	}

	return bson.M{
		"$set": set,
		"$inc": bson.M{
			"totalPurchases": 1,
			"totalSpent":     record.DocumentPrice,
		},
		"$addToSet": bson.M{
			"purchasedDocuments": record.DocumentID,
		},
	}
}

// RecordDocumentDownload appends a download log entry. Callers treat
// failure as non-fatal.
func (r *paymentRepository) RecordDocumentDownload(ctx context.Context, download *models.DocumentDownload) error {
	download.DownloadedAt = time.Now()
	if _, err := r.downloads.InsertOne(ctx, download); err != nil {
		return fmt.Errorf("record document download: %w", err)
	}
	r.logger.Info("download recorded",
		"reference", download.PaymentReference,
		"document", download.DocumentID)
	return nil
}

// LogPaymentError appends a diagnostic entry. It never blocks the flow that
// produced the error.
func (r *paymentRepository) LogPaymentError(ctx context.Context, errLog *models.PaymentErrorLog) error {
	errLog.CreatedAt = time.Now()
	errLog.Resolved = false
	if _, err := r.errorLogs.InsertOne(ctx, errLog); err != nil {
		return fmt.Errorf("log payment error: %w", err)
	}
	return nil
}

func (r *paymentRepository) HasCustomerPurchasedDocument(ctx context.Context, customerEmail, documentID string) (bool, error) {
	count, err := r.payments.CountDocuments(ctx, bson.M{
		"customerEmail": customerEmail,
		"documentId":    documentID,
		"paymentStatus": models.PaymentStatusSuccess,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check document purchase: %w", err)
	}
	return count > 0, nil
}

func (r *paymentRepository) GetPaymentStatistics(ctx context.Context, days int) (*models.PaymentStatistics, error) {
	cutoff := time.Now().AddDate(0, 0, -days)

	cursor, err := r.payments.Find(ctx, bson.M{"createdAt": bson.M{"$gte": cutoff}})
	if err != nil {
		return nil, fmt.Errorf("find recent payments: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.PaymentRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode recent payments: %w", err)
	}

	stats := &models.PaymentStatistics{TotalPayments: len(records)}
	for _, record := range records {
		if record.PaymentStatus == models.PaymentStatusSuccess {
			stats.SuccessfulPayments++
			stats.TotalRevenue += record.DocumentPrice
		}
	}
	if stats.SuccessfulPayments > 0 {
		stats.AverageOrderValue = stats.TotalRevenue / float64(stats.SuccessfulPayments)
	}
	return stats, nil
}

func (r *paymentRepository) logStoreError(ctx context.Context, reference, message string, cause error, customerEmail, documentID string) {
	if err := r.LogPaymentError(ctx, &models.PaymentErrorLog{
		PaymentReference: reference,
		ErrorType:        models.ErrorTypeDatabase,
		ErrorMessage:     message,
		ErrorDetails:     cause.Error(),
		CustomerEmail:    customerEmail,
		DocumentID:       documentID,
	}); err != nil {
		r.logger.Warn("failed to write payment error log", "reference", reference, "error", err)
	}
}

func (r *paymentRepository) publishEvent(ctx context.Context, event *models.PaymentEvent) {
	if r.producer == nil {
		return
	}
	if err := r.producer.PublishPaymentEvent(ctx, event); err != nil {
		r.logger.Warn("failed to publish payment event", "type", event.Type, "reference", event.Reference, "error", err)
	}
}
