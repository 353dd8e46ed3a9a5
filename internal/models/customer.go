package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer is an aggregate per distinct email, upserted as a side effect of
// each successful payment. Purchase count and spend only ever grow.
type Customer struct {
	ID    primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email string             `bson:"email" json:"email"`
	Name  string             `bson:"name" json:"name"`
	Phone string             `bson:"phone,omitempty" json:"phone,omitempty"`

	TotalPurchases  int       `bson:"totalPurchases" json:"totalPurchases"`
	TotalSpent      float64   `bson:"totalSpent" json:"totalSpent"`
	FirstPurchaseAt time.Time `bson:"firstPurchaseAt" json:"firstPurchaseAt"`
	LastPurchaseAt  time.Time `bson:"lastPurchaseAt" json:"lastPurchaseAt"`

	PurchasedDocuments []string `bson:"purchasedDocuments" json:"purchasedDocuments"`

	Preferences MarketingPreferences `bson:"preferences" json:"preferences"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type MarketingPreferences struct {
	EmailMarketing bool `bson:"emailMarketing" json:"emailMarketing"`
	SMSMarketing   bool `bson:"smsMarketing" json:"smsMarketing"`
}

// DocumentDownload is an append-only log entry. No update or delete.
type DocumentDownload struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PaymentReference string             `bson:"paymentReference" json:"paymentReference"`
	CustomerEmail    string             `bson:"customerEmail" json:"customerEmail"`
	DocumentID       string             `bson:"documentId" json:"documentId"`
	DownloadedAt     time.Time          `bson:"downloadedAt" json:"downloadedAt"`
	IPAddress        string             `bson:"ipAddress,omitempty" json:"ipAddress,omitempty"`
	UserAgent        string             `bson:"userAgent,omitempty" json:"userAgent,omitempty"`
}

type ErrorType string

const (
	ErrorTypeInitialization ErrorType = "initialization"
	ErrorTypeVerification   ErrorType = "verification"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeUnknown        ErrorType = "unknown"
)

// PaymentErrorLog is an append-only diagnostic entry. Writing one never
// blocks the operation that produced it.
type PaymentErrorLog struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PaymentReference string             `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	ErrorType        ErrorType          `bson:"errorType" json:"errorType"`
	ErrorMessage     string             `bson:"errorMessage" json:"errorMessage"`
	ErrorDetails     string             `bson:"errorDetails,omitempty" json:"errorDetails,omitempty"`
	CustomerEmail    string             `bson:"customerEmail,omitempty" json:"customerEmail,omitempty"`
	DocumentID       string             `bson:"documentId,omitempty" json:"documentId,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	Resolved         bool               `bson:"resolved" json:"resolved"`
}
