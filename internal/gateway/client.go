/**
 * Copyright 2025-present Grão Investimentos Ltda.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"grao-wallet-go/internal/models"

	"go.uber.org/zap"
)

// PaymentGateway is the opaque payment-provider contract the ledger
// depends on. The provider's status vocabulary is its own; callers only
// normalize through IsPaid.
type PaymentGateway interface {
	Charge(ctx context.Context, params models.ChargeParams) (*models.ChargeResult, error)
	QueryStatus(ctx context.Context, gatewayId string) (*models.GatewayStatus, error)
}

// IsPaid reports whether a provider status is terminal success.
func IsPaid(status string) bool {
	return strings.ToLower(status) == "paid"
}

// Client talks to the PSP's REST API with basic-auth key pair.
type Client struct {
	baseUrl    string
	authHeader string
	httpClient *http.Client
}

var _ PaymentGateway = (*Client)(nil)

func NewClient(cfg models.GatewayConfig) *Client {
	token := base64.StdEncoding.EncodeToString([]byte(cfg.PublicKey + ":" + cfg.SecretKey))
	return &Client{
		baseUrl:    strings.TrimSuffix(cfg.BaseUrl, "/"),
		authHeader: "Basic " + token,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

type chargeRequest struct {
	Amount        int64           `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	Items         []chargeItem    `json:"items"`
	Customer      chargeCustomer  `json:"customer"`
	Card          *chargeCard     `json:"card,omitempty"`
	PostbackUrl   string          `json:"postbackUrl"`
	ExternalRef   string          `json:"externalRef"`
	Metadata      string          `json:"metadata"`
}

type chargeItem struct {
	Title     string `json:"title"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Tangible  bool   `json:"tangible"`
}

type chargeCustomer struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Document chargeDocument `json:"document"`
}

type chargeDocument struct {
	Number string `json:"number"`
	Type   string `json:"type"`
}

type chargeCard struct {
	Number          string `json:"number"`
	HolderName      string `json:"holderName"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
	Cvv             string `json:"cvv"`
}

type chargeResponse struct {
	Id      json.Number `json:"id"`
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Pix     *struct {
		Qrcode string `json:"qrcode"`
	} `json:"pix"`
}

// Charge opens a transaction with the provider. The caller has already
// committed its local pending record before this runs.
func (c *Client) Charge(ctx context.Context, params models.ChargeParams) (*models.ChargeResult, error) {
	document := sanitizeDocument(params.CustomerCpf)

	reqBody := chargeRequest{
		Amount:        params.AmountCents,
		PaymentMethod: params.Method,
		Items: []chargeItem{
			{Title: "Depósito", UnitPrice: params.AmountCents, Quantity: 1, Tangible: false},
		},
		Customer: chargeCustomer{
			Name:  params.CustomerName,
			Email: params.CustomerEmail,
			Document: chargeDocument{
				Number: document,
				Type:   "cpf",
			},
		},
		PostbackUrl: params.PostbackUrl,
		ExternalRef: params.ExternalRef,
		Metadata:    `{"source":"wallet"}`,
	}
	if params.Card != nil {
		reqBody.Card = &chargeCard{
			Number:          params.Card.Number,
			HolderName:      params.Card.HolderName,
			ExpirationMonth: params.Card.ExpirationMonth,
			ExpirationYear:  params.Card.ExpirationYear,
			Cvv:             params.Card.Cvv,
		}
	}

	var resp chargeResponse
	if err := c.post(ctx, "/transactions", reqBody, &resp); err != nil {
		return nil, err
	}

	result := &models.ChargeResult{
		GatewayId: resp.Id.String(),
		Status:    resp.Status,
	}
	if result.Status == "" {
		result.Status = "waiting_payment"
	}
	if resp.Pix != nil {
		result.PixQrcode = resp.Pix.Qrcode
	}

	zap.L().Info("Gateway charge created",
		zap.String("gateway_id", result.GatewayId),
		zap.String("status", result.Status),
		zap.String("external_ref", params.ExternalRef))
	return result, nil
}

// QueryStatus asks the provider for the current state of a charge.
func (c *Client) QueryStatus(ctx context.Context, gatewayId string) (*models.GatewayStatus, error) {
	endpoint := c.baseUrl + "/transactions/" + url.PathEscape(gatewayId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status query failed: %w", err)
	}
	defer httpResp.Body.Close()

	var resp chargeResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("unable to decode status response: %w", err)
	}
	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("provider rejected status query (%d): %s", httpResp.StatusCode, resp.Message)
	}

	return &models.GatewayStatus{Status: strings.ToLower(resp.Status)}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("unable to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.authHeader)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer httpResp.Body.Close()

	if err := json.NewDecoder(httpResp.Body).Decode(out); err != nil {
		return fmt.Errorf("unable to decode gateway response: %w", err)
	}
	if httpResp.StatusCode >= 400 {
		if resp, ok := out.(*chargeResponse); ok && resp.Message != "" {
			return fmt.Errorf("provider rejected charge (%d): %s", httpResp.StatusCode, resp.Message)
		}
		return fmt.Errorf("provider rejected charge (%d)", httpResp.StatusCode)
	}
	return nil
}

// sanitizeDocument strips non-digits and clamps to CPF/CNPJ length; the
// provider requires a value even when the profile has none.
func sanitizeDocument(cpf string) string {
	var digits []rune
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return "00000000000"
	}
	if len(digits) > 14 {
		digits = digits[:14]
	}
	return string(digits)
}
