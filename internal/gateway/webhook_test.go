package gateway

import (
	"testing"
)

func TestParseWebhook_TransactionEvent(t *testing.T) {
	cases := []struct {
		name       string
		body       string
		externalId string
		status     string
	}{
		{
			name:       "numeric id",
			body:       `{"type":"transaction","data":{"id":482190,"status":"PAID"}}`,
			externalId: "482190",
			status:     "paid",
		},
		{
			name:       "string id",
			body:       `{"type":"transaction","data":{"id":"gw-77","status":"waiting_payment"}}`,
			externalId: "gw-77",
			status:     "waiting_payment",
		},
	}

	for _, tc := range cases {
		event := ParseWebhook([]byte(tc.body))
		if event.Kind != EventTransaction {
			t.Errorf("%s: expected transaction event, got %s", tc.name, event.Kind)
			continue
		}
		if event.ExternalId != tc.externalId {
			t.Errorf("%s: expected external id %s, got %s", tc.name, tc.externalId, event.ExternalId)
		}
		if event.Status != tc.status {
			t.Errorf("%s: expected status %s, got %s", tc.name, tc.status, event.Status)
		}
	}
}

func TestParseWebhook_WithdrawEvent(t *testing.T) {
	body := `{"type":"withdraw","data":{"externalRef":"tx-123","status":"Completed"}}`
	event := ParseWebhook([]byte(body))

	if event.Kind != EventWithdraw {
		t.Fatalf("Expected withdraw event, got %s", event.Kind)
	}
	if event.ExternalRef != "tx-123" {
		t.Errorf("Expected externalRef tx-123, got %s", event.ExternalRef)
	}
	if event.Status != "completed" {
		t.Errorf("Expected lowercased status, got %s", event.Status)
	}
}

func TestParseWebhook_MalformedNeverErrors(t *testing.T) {
	cases := []string{
		``,
		`not json at all`,
		`{"type":"transaction"}`,
		`{"type":"transaction","data":{"status":"paid"}}`,
		`{"type":"transaction","data":{"id":null,"status":"paid"}}`,
		`{"type":"withdraw","data":{"status":"failed"}}`,
		`{"type":"pix_key_created","data":{"id":1}}`,
	}

	for _, body := range cases {
		event := ParseWebhook([]byte(body))
		if event.Kind != EventUnknown {
			t.Errorf("body %q: expected unknown event, got %s", body, event.Kind)
		}
	}
}

func TestIsPaid(t *testing.T) {
	if !IsPaid("paid") || !IsPaid("PAID") {
		t.Error("paid statuses not recognized")
	}
	if IsPaid("waiting_payment") || IsPaid("refused") || IsPaid("") {
		t.Error("non-paid status recognized as paid")
	}
}
