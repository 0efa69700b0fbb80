package gateway

import (
	"encoding/json"
	"strings"
)

// Webhook event kinds after boundary decoding. Anything that does not
// decode into a known shape becomes EventUnknown, which receivers must
// acknowledge as a no-op.
const (
	EventTransaction = "transaction"
	EventWithdraw    = "withdraw"
	EventUnknown     = "unknown"
)

// WebhookEvent is the closed decoded form of a provider callback.
type WebhookEvent struct {
	Kind string

	// EventTransaction: gateway external id and charge status.
	ExternalId string
	Status     string

	// EventWithdraw: local withdraw transaction id echoed back by the
	// provider (externalRef on the payout request).
	ExternalRef string
}

type webhookEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Providers send charge ids either as JSON numbers or as strings.
type transactionEventData struct {
	Id     json.RawMessage `json:"id"`
	Status string          `json:"status"`
}

func externalIdString(raw json.RawMessage) string {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return asNumber.String()
	}
	return ""
}

type withdrawEventData struct {
	ExternalRef string `json:"externalRef"`
	Status      string `json:"status"`
}

// ParseWebhook decodes a raw provider payload into the closed event set.
// Malformed or unrecognized payloads yield EventUnknown, never an error:
// a stale or malicious webhook must not be able to probe the system.
func ParseWebhook(body []byte) WebhookEvent {
	var envelope webhookEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return WebhookEvent{Kind: EventUnknown}
	}

	switch envelope.Type {
	case EventTransaction:
		var data transactionEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return WebhookEvent{Kind: EventUnknown}
		}
		externalId := externalIdString(data.Id)
		if externalId == "" {
			return WebhookEvent{Kind: EventUnknown}
		}
		return WebhookEvent{
			Kind:       EventTransaction,
			ExternalId: externalId,
			Status:     strings.ToLower(data.Status),
		}
	case EventWithdraw:
		var data withdrawEventData
		if err := json.Unmarshal(envelope.Data, &data); err != nil || data.ExternalRef == "" {
			return WebhookEvent{Kind: EventUnknown}
		}
		return WebhookEvent{
			Kind:        EventWithdraw,
			ExternalRef: data.ExternalRef,
			Status:      strings.ToLower(data.Status),
		}
	default:
		return WebhookEvent{Kind: EventUnknown}
	}
}
