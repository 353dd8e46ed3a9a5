package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestInitializeSuccess(t *testing.T) {
	var gotAuth string
	var gotBody InitializeRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transaction/initialize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request body: %v", err)
		}

		json.NewEncoder(w).Encode(InitializeResponse{
			Status:  true,
			Message: "Authorization URL created",
			Data: InitializeData{
				AuthorizationURL: "https://checkout.example.com/abc",
				AccessCode:       "access_abc",
				Reference:        gotBody.Reference,
			},
		})
	}))
	defer server.Close()

	client := NewPaystackClient(server.URL, "sk_test_secret")

	resp, err := client.Initialize(context.Background(), &InitializeRequest{
		Email:       "a@b.com",
		Amount:      55000,
		Currency:    "ZAR",
		Reference:   "AKA_LAW_1700000000000_ABC123",
		CallbackURL: "http://localhost:8080/payment/verify?reference=AKA_LAW_1700000000000_ABC123",
		Metadata:    Metadata{DocumentID: "2", DocumentTitle: "Last Will & Testament", CustomerName: "A"},
	})
	if err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	if gotAuth != "Bearer sk_test_secret" {
		t.Errorf("authorization header = %q", gotAuth)
	}
	if gotBody.Amount != 55000 {
		t.Errorf("amount sent = %d, want minor units 55000", gotBody.Amount)
	}
	if resp.Data.AuthorizationURL != "https://checkout.example.com/abc" {
		t.Errorf("authorization url = %q", resp.Data.AuthorizationURL)
	}
	if resp.Data.Reference != "AKA_LAW_1700000000000_ABC123" {
		t.Errorf("reference not echoed: %q", resp.Data.Reference)
	}
}

func TestInitializeUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
	}))
	defer server.Close()

	client := NewPaystackClient(server.URL, "bad_key")

	_, err := client.Initialize(context.Background(), &InitializeRequest{Email: "a@b.com", Amount: 45000})
	if err == nil {
		t.Fatal("expected error on upstream 401")
	}

	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *GatewayError, got %T: %v", err, err)
	}
	if gatewayErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", gatewayErr.StatusCode)
	}
	if gatewayErr.Body == "" {
		t.Error("upstream body not captured")
	}
}

func TestVerifySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/AKA_LAW_1700000000000_ABC123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(VerifyResponse{
			Status:  true,
			Message: "Verification successful",
			Data: VerifyData{
				ID:              12345,
				Domain:          "test",
				Status:          "success",
				Reference:       "AKA_LAW_1700000000000_ABC123",
				Amount:          55000,
				GatewayResponse: "Successful",
				Channel:         "card",
				Currency:        "ZAR",
				Customer: VerifyCustomer{
					ID:           9,
					Email:        "a@b.com",
					CustomerCode: "CUS_abc",
				},
			},
		})
	}))
	defer server.Close()

	client := NewPaystackClient(server.URL, "sk_test_secret")

	resp, err := client.Verify(context.Background(), "AKA_LAW_1700000000000_ABC123")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if resp.Data.Status != "success" {
		t.Errorf("status = %q", resp.Data.Status)
	}
	if resp.Data.Amount != 55000 {
		t.Errorf("amount = %d", resp.Data.Amount)
	}
	if resp.Data.Customer.CustomerCode != "CUS_abc" {
		t.Errorf("customer code = %q", resp.Data.Customer.CustomerCode)
	}
}

func TestVerifyDeclinedBody(t *testing.T) {
	// Paystack answers 200 with status:false when the reference is unknown.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer server.Close()

	client := NewPaystackClient(server.URL, "sk_test_secret")

	_, err := client.Verify(context.Background(), "UNKNOWN_REF")
	if err == nil {
		t.Fatal("expected error for status:false body")
	}
	var gatewayErr *GatewayError
	if !errors.As(err, &gatewayErr) {
		t.Fatalf("expected *GatewayError, got %T", err)
	}
}
