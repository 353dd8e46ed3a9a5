package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSuccess   PaymentStatus = "success"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusAbandoned PaymentStatus = "abandoned"
)

// PaymentRecord is one purchase attempt, keyed externally by PaymentReference.
type PaymentRecord struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PaymentReference     string             `bson:"paymentReference" json:"paymentReference"`
	GatewayTransactionID int64              `bson:"gatewayTransactionId,omitempty" json:"gatewayTransactionId,omitempty"`

	CustomerName  string `bson:"customerName" json:"customerName"`
	CustomerEmail string `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`

	DocumentID       string  `bson:"documentId" json:"documentId"`
	DocumentTitle    string  `bson:"documentTitle" json:"documentTitle"`
	DocumentCategory string  `bson:"documentCategory" json:"documentCategory"`
	DocumentPrice    float64 `bson:"documentPrice" json:"documentPrice"`
	DocumentFormat   string  `bson:"documentFormat" json:"documentFormat"`

	PaymentStatus   PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	Amount          int64         `bson:"amount" json:"amount"` // minor currency units
	Currency        string        `bson:"currency" json:"currency"`
	GatewayResponse string        `bson:"gatewayResponse,omitempty" json:"gatewayResponse,omitempty"`

	Gateway         *GatewayDetails  `bson:"gateway,omitempty" json:"gateway,omitempty"`
	GatewayCustomer *GatewayCustomer `bson:"gatewayCustomer,omitempty" json:"gatewayCustomer,omitempty"`

	Metadata RequestMetadata `bson:"metadata" json:"metadata"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	PaidAt    time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// GatewayDetails holds provider-side transaction details, overwritten as
// verification proceeds.
type GatewayDetails struct {
	Channel          string `bson:"channel,omitempty" json:"channel,omitempty"`
	AuthorizationURL string `bson:"authorizationUrl,omitempty" json:"authorizationUrl,omitempty"`
	AccessCode       string `bson:"accessCode,omitempty" json:"accessCode,omitempty"`
	Domain           string `bson:"domain,omitempty" json:"domain,omitempty"`
	IPAddress        string `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
}

// GatewayCustomer is the provider's own customer record, populated only
// after verification.
type GatewayCustomer struct {
	ID           int64  `bson:"id" json:"id"`
	CustomerCode string `bson:"customerCode,omitempty" json:"customerCode,omitempty"`
	FirstName    string `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string `bson:"lastName,omitempty" json:"lastName,omitempty"`
}

type RequestMetadata struct {
	UserAgent            string    `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
	IPAddress            string    `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	Source               string    `bson:"source" json:"source"`
	DisclaimerAccepted   bool      `bson:"disclaimerAccepted" json:"disclaimerAccepted"`
	DisclaimerAcceptedAt time.Time `bson:"disclaimerAcceptedAt" json:"disclaimerAcceptedAt"`
}

// PaymentStatistics is an aggregate over a recent window of payments.
type PaymentStatistics struct {
	TotalPayments      int     `json:"totalPayments"`
	SuccessfulPayments int     `json:"successfulPayments"`
	TotalRevenue       float64 `json:"totalRevenue"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
}

// PaymentEvent is published to the monitoring topic after verification and
// on swallowed customer-aggregate failures. Fire-and-forget.
type PaymentEvent struct {
	Type          string    `json:"type"`
	Reference     string    `json:"reference"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	DocumentID    string    `json:"document_id,omitempty"`
	Amount        int64     `json:"amount,omitempty"`
	Status        string    `json:"status,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

const (
	EventPaymentVerified      = "payment.verified"
	EventPaymentFailed        = "payment.failed"
	EventCustomerUpdateFailed = "customer.update_failed"
)
