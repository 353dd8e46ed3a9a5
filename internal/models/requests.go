package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	priceDigits  = regexp.MustCompile(`\d+`)
)

// Price accepts a JSON number or the storefront's display string
// ("R 450"). A string without digits parses as zero and is caught by
// Validate.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Price(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("price must be a number or string, got %s", data)
	}
	match := priceDigits.FindString(s)
	if match == "" {
		*p = 0
		return nil
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return fmt.Errorf("invalid price %q: %w", s, err)
	}
	*p = Price(n)
	return nil
}

type InitializePaymentRequest struct {
	DocumentID    string  `json:"documentId"`
	DocumentTitle string  `json:"documentTitle"`
	DocumentPrice float64 `json:"documentPrice"`
	CustomerName  string  `json:"customerName"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerPhone string  `json:"customerPhone,omitempty"`
}

func (r *InitializePaymentRequest) Validate() error {
	if r.DocumentID == "" || r.DocumentTitle == "" || r.DocumentPrice == 0 || r.CustomerName == "" || r.CustomerEmail == "" {
		return NewValidationError("Missing required fields: documentId, documentTitle, documentPrice, customerName, customerEmail")
	}
	if !emailPattern.MatchString(r.CustomerEmail) {
		return NewValidationError("Invalid email format")
	}
	if r.DocumentPrice <= 0 {
		return NewValidationError("Document price must be a positive number")
	}
	return nil
}

type SavePaymentRequest struct {
	PaymentReference string `json:"paymentReference"`
	DocumentID       string `json:"documentId"`
	DocumentTitle    string `json:"documentTitle"`
	DocumentPrice    Price  `json:"documentPrice"`
	CustomerName     string `json:"customerName"`
	CustomerEmail    string `json:"customerEmail"`
	CustomerPhone    string `json:"customerPhone,omitempty"`
	AuthorizationURL string `json:"authorizationUrl,omitempty"`
	AccessCode       string `json:"accessCode,omitempty"`
}

func (r *SavePaymentRequest) Validate() error {
	if r.PaymentReference == "" || r.DocumentID == "" || r.DocumentTitle == "" || r.DocumentPrice == 0 || r.CustomerName == "" || r.CustomerEmail == "" {
		return NewValidationError("Missing required fields")
	}
	return nil
}
