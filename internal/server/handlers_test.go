package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"grao-wallet-go/internal/api"
	"grao-wallet-go/internal/auth"
	"grao-wallet-go/internal/database"
	"grao-wallet-go/internal/models"
)

type stubGateway struct{}

func (stubGateway) Charge(ctx context.Context, params models.ChargeParams) (*models.ChargeResult, error) {
	return &models.ChargeResult{GatewayId: "gw-1", Status: "waiting_payment", PixQrcode: "qr"}, nil
}

func (stubGateway) QueryStatus(ctx context.Context, gatewayId string) (*models.GatewayStatus, error) {
	return &models.GatewayStatus{Status: "waiting_payment"}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewService(context.Background(), models.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		PingTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(db.Close)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	ledger := api.NewLedgerService(db, stubGateway{}, tokens, "http://localhost:8080")
	return NewServer(ledger, tokens, models.ServerConfig{
		Port:            "0",
		KycReviewSecret: "review-secret",
		ShutdownTimeout: time.Second,
	})
}

func doJSON(t *testing.T, server *Server, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func registerViaHTTP(t *testing.T, server *Server, email string) *models.AuthResult {
	t.Helper()
	resp := doJSON(t, server, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "long-enough-password",
	}, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", resp.Code, resp.Body.String())
	}

	var result models.AuthResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode register response: %v", err)
	}
	return &result
}

func TestWalletRoutes_RequireBearerToken(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, server, http.MethodGet, "/api/wallet", nil, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.Code)
	}

	resp = doJSON(t, server, http.MethodGet, "/api/wallet", nil, map[string]string{
		"Authorization": "Bearer garbage",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad token, got %d", resp.Code)
	}

	user := registerViaHTTP(t, server, "alice@example.com")
	resp = doJSON(t, server, http.MethodGet, "/api/wallet", nil, map[string]string{
		"Authorization": "Bearer " + user.Token,
	})
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got %d: %s", resp.Code, resp.Body.String())
	}

	var summary models.WalletSummary
	if err := json.Unmarshal(resp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.UserId != user.UserId {
		t.Errorf("Summary for wrong user: %s", summary.UserId)
	}
}

func TestDepositEndpoint(t *testing.T) {
	server := newTestServer(t)
	user := registerViaHTTP(t, server, "alice@example.com")

	resp := doJSON(t, server, http.MethodPost, "/api/wallet/deposit", models.DepositRequest{
		Amount: decimal.RequireFromString("100"),
		Method: "pix",
	}, map[string]string{"Authorization": "Bearer " + user.Token})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var result models.DepositResult
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to decode deposit response: %v", err)
	}
	if result.PixQrcode == "" {
		t.Error("Expected pix qrcode in response")
	}

	// Below-minimum amounts map to 422.
	resp = doJSON(t, server, http.MethodPost, "/api/wallet/deposit", models.DepositRequest{
		Amount: decimal.RequireFromString("1"),
		Method: "pix",
	}, map[string]string{"Authorization": "Bearer " + user.Token})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for below-minimum deposit, got %d", resp.Code)
	}
}

func TestWithdrawEndpoint_KycForbidden(t *testing.T) {
	server := newTestServer(t)
	user := registerViaHTTP(t, server, "alice@example.com")

	resp := doJSON(t, server, http.MethodPost, "/api/wallet/withdraw", models.WithdrawRequest{
		Amount:     decimal.RequireFromString("100"),
		PixKey:     "alice@example.com",
		PixKeyType: "email",
	}, map[string]string{"Authorization": "Bearer " + user.Token})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 before KYC approval, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestWebhookEndpoint_AlwaysAcknowledges(t *testing.T) {
	server := newTestServer(t)

	for _, body := range []string{
		`{"type":"transaction","data":{"id":"unknown","status":"paid"}}`,
		`garbage`,
		`{}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/webhook", bytes.NewReader([]byte(body)))
		recorder := httptest.NewRecorder()
		server.Handler().ServeHTTP(recorder, req)
		if recorder.Code != http.StatusOK {
			t.Errorf("body %q: expected 200, got %d", body, recorder.Code)
		}

		var ack struct {
			Ok bool `json:"ok"`
		}
		if err := json.Unmarshal(recorder.Body.Bytes(), &ack); err != nil {
			t.Errorf("body %q: unparseable ack: %v", body, err)
		}
	}
}

func TestKycReviewEndpoint_SharedSecret(t *testing.T) {
	server := newTestServer(t)
	user := registerViaHTTP(t, server, "alice@example.com")

	payload := map[string]string{"userId": user.UserId, "status": models.KycApproved}

	resp := doJSON(t, server, http.MethodPost, "/api/kyc/review", payload, nil)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without secret, got %d", resp.Code)
	}

	resp = doJSON(t, server, http.MethodPost, "/api/kyc/review", payload, map[string]string{
		"X-Review-Secret": "review-secret",
	})
	if resp.Code != http.StatusOK {
		t.Errorf("Expected 200 with secret, got %d: %s", resp.Code, resp.Body.String())
	}

	// The gate is observable on the wallet summary.
	walletResp := doJSON(t, server, http.MethodGet, "/api/wallet", nil, map[string]string{
		"Authorization": "Bearer " + user.Token,
	})
	var summary models.WalletSummary
	if err := json.Unmarshal(walletResp.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Failed to decode summary: %v", err)
	}
	if summary.KycStatus != models.KycApproved {
		t.Errorf("Expected approved, got %s", summary.KycStatus)
	}
}

func TestRegisterEndpoint_DuplicateEmailConflict(t *testing.T) {
	server := newTestServer(t)
	registerViaHTTP(t, server, "alice@example.com")

	resp := doJSON(t, server, http.MethodPost, "/api/auth/register", models.RegisterRequest{
		Name:     "Another",
		Email:    "alice@example.com",
		Password: "long-enough-password",
	}, nil)
	if resp.Code != http.StatusConflict {
		t.Errorf("Expected 409, got %d", resp.Code)
	}
}
