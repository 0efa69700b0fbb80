package api

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"grao-wallet-go/internal/models"
)

func webhookBody(eventType string, fields string) []byte {
	return []byte(fmt.Sprintf(`{"type":%q,"data":{%s}}`, eventType, fields))
}

func TestHandleWebhook_DepositPaidSettlesOnce(t *testing.T) {
	service, db, _ := newTestService(t)
	ctx := context.Background()

	user := registerTestUser(t, service, "alice@example.com")
	deposit, err := service.InitiateDeposit(ctx, user.UserId, &models.DepositRequest{
		Amount: decimal.RequireFromString("150"),
		Method: "pix",
	})
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}

	body := webhookBody("transaction", fmt.Sprintf(`"id":%q,"status":"paid"`, deposit.ExternalId))
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Webhook processing reported failure")
	}

	userRow, err := db.GetUserById(ctx, user.UserId)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if !userRow.Balance.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Expected balance 150, got %s", userRow.Balance.String())
	}

	// Provider retry: acknowledged, not re-credited.
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Replayed webhook reported failure")
	}
	userRow, _ = db.GetUserById(ctx, user.UserId)
	if !userRow.Balance.Equal(decimal.RequireFromString("150")) {
		t.Errorf("Replay double-credited: %s", userRow.Balance.String())
	}
}

func TestHandleWebhook_DepositNonTerminalStatusIgnored(t *testing.T) {
	service, db, _ := newTestService(t)
	ctx := context.Background()

	user := registerTestUser(t, service, "alice@example.com")
	deposit, err := service.InitiateDeposit(ctx, user.UserId, &models.DepositRequest{
		Amount: decimal.RequireFromString("150"),
		Method: "pix",
	})
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}

	body := webhookBody("transaction", fmt.Sprintf(`"id":%q,"status":"waiting_payment"`, deposit.ExternalId))
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Webhook processing reported failure")
	}

	userRow, _ := db.GetUserById(ctx, user.UserId)
	if !userRow.Balance.IsZero() {
		t.Errorf("Non-terminal status credited balance: %s", userRow.Balance.String())
	}
}

func TestHandleWebhook_WithdrawLifecycle(t *testing.T) {
	service, db, gw := newTestService(t)
	ctx := context.Background()

	user := registerTestUser(t, service, "alice@example.com")
	if err := db.SetKycStatus(ctx, user.UserId, models.KycApproved); err != nil {
		t.Fatalf("SetKycStatus failed: %v", err)
	}

	deposit, err := service.InitiateDeposit(ctx, user.UserId, &models.DepositRequest{
		Amount: decimal.RequireFromString("500"),
		Method: "pix",
	})
	if err != nil {
		t.Fatalf("InitiateDeposit failed: %v", err)
	}
	gw.queryStatus = "paid"
	if _, err := service.ResolveDepositStatus(ctx, user.UserId, deposit.ExternalId); err != nil {
		t.Fatalf("Settlement failed: %v", err)
	}

	withdrawal, err := service.RequestWithdrawal(ctx, user.UserId, &models.WithdrawRequest{
		Amount:     decimal.RequireFromString("100"),
		PixKey:     "alice@example.com",
		PixKeyType: "email",
	})
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	// 500 - 100 - 2.50 fee
	balanceAfterReserve := decimal.RequireFromString("397.50")

	// Payout failure refunds amount + fee.
	body := webhookBody("withdraw", fmt.Sprintf(`"externalRef":%q,"status":"failed"`, withdrawal.TransactionId))
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Webhook processing reported failure")
	}
	userRow, _ := db.GetUserById(ctx, user.UserId)
	if !userRow.Balance.Equal(decimal.RequireFromString("500")) {
		t.Errorf("Expected refund to 500, got %s", userRow.Balance.String())
	}

	// New withdrawal that completes: balance stays at the reserved level.
	withdrawal, err = service.RequestWithdrawal(ctx, user.UserId, &models.WithdrawRequest{
		Amount:     decimal.RequireFromString("100"),
		PixKey:     "alice@example.com",
		PixKeyType: "email",
	})
	if err != nil {
		t.Fatalf("RequestWithdrawal failed: %v", err)
	}
	body = webhookBody("withdraw", fmt.Sprintf(`"externalRef":%q,"status":"completed"`, withdrawal.TransactionId))
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Webhook processing reported failure")
	}
	userRow, _ = db.GetUserById(ctx, user.UserId)
	if !userRow.Balance.Equal(balanceAfterReserve) {
		t.Errorf("Expected balance %s, got %s", balanceAfterReserve.String(), userRow.Balance.String())
	}

	// A late failure event for the completed payout must not refund.
	body = webhookBody("withdraw", fmt.Sprintf(`"externalRef":%q,"status":"failed"`, withdrawal.TransactionId))
	if ok := service.HandleWebhook(ctx, body); !ok {
		t.Fatal("Webhook processing reported failure")
	}
	userRow, _ = db.GetUserById(ctx, user.UserId)
	if !userRow.Balance.Equal(balanceAfterReserve) {
		t.Errorf("Late failure refunded a completed payout: %s", userRow.Balance.String())
	}
}

func TestHandleWebhook_UnknownPayloadsAcknowledged(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	cases := [][]byte{
		[]byte(`not json`),
		[]byte(`{}`),
		[]byte(`{"type":"mystery","data":{"id":"1"}}`),
		webhookBody("transaction", `"id":"unknown-gateway-id","status":"paid"`),
	}
	for i, body := range cases {
		if ok := service.HandleWebhook(ctx, body); !ok {
			t.Errorf("case %d: expected acknowledged no-op", i)
		}
	}
}
