package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"grao-wallet-go/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(models.GatewayConfig{
		BaseUrl:        server.URL,
		PublicKey:      "pk_test",
		SecretKey:      "sk_test",
		RequestTimeout: 2 * time.Second,
	})
	return client, server
}

func TestCharge_SendsBasicAuthAndPayload(t *testing.T) {
	var captured chargeRequest
	var authHeader string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":90210,"status":"waiting_payment","pix":{"qrcode":"00020126qr"}}`))
	})

	result, err := client.Charge(context.Background(), models.ChargeParams{
		AmountCents:   15000,
		Method:        "pix",
		CustomerName:  "Maria Silva",
		CustomerEmail: "maria@example.com",
		CustomerCpf:   "123.456.789-09",
		PostbackUrl:   "https://wallet.example.com/api/webhook",
		ExternalRef:   "tx-local-1",
	})
	if err != nil {
		t.Fatalf("Charge failed: %v", err)
	}

	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("pk_test:sk_test"))
	if authHeader != expectedAuth {
		t.Errorf("Wrong Authorization header: %s", authHeader)
	}

	if captured.Amount != 15000 {
		t.Errorf("Expected amount 15000, got %d", captured.Amount)
	}
	if captured.Customer.Document.Number != "12345678909" {
		t.Errorf("Document not sanitized: %s", captured.Customer.Document.Number)
	}
	if captured.ExternalRef != "tx-local-1" {
		t.Errorf("Expected externalRef tx-local-1, got %s", captured.ExternalRef)
	}

	if result.GatewayId != "90210" {
		t.Errorf("Expected gateway id 90210, got %s", result.GatewayId)
	}
	if result.PixQrcode != "00020126qr" {
		t.Errorf("Expected qrcode, got %q", result.PixQrcode)
	}
}

func TestCharge_ProviderRejection(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid card"}`))
	})

	_, err := client.Charge(context.Background(), models.ChargeParams{
		AmountCents: 1000,
		Method:      "credit_card",
	})
	if err == nil {
		t.Fatal("Expected error for rejected charge")
	}
}

func TestQueryStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transactions/90210" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":90210,"status":"PAID"}`))
	})

	status, err := client.QueryStatus(context.Background(), "90210")
	if err != nil {
		t.Fatalf("QueryStatus failed: %v", err)
	}
	if status.Status != "paid" {
		t.Errorf("Expected paid, got %s", status.Status)
	}
	if !IsPaid(status.Status) {
		t.Error("Settled status not recognized by IsPaid")
	}
}

func TestSanitizeDocument(t *testing.T) {
	cases := map[string]string{
		"123.456.789-09":     "12345678909",
		"":                   "00000000000",
		"abc":                "00000000000",
		"12.345.678/0001-95": "12345678000195",
	}
	for input, expected := range cases {
		if got := sanitizeDocument(input); got != expected {
			t.Errorf("sanitizeDocument(%q) = %q, expected %q", input, got, expected)
		}
	}
}
