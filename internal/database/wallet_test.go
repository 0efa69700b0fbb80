package database

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

func TestGetWalletSummary_PortfolioShares(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestUser(t, service, "1000", models.KycApproved)
	planA := createTestPlan(t, service, "50", "", true)
	planB := createTestPlan(t, service, "100", "", true)

	placementA, err := service.PlaceInvestment(ctx, store.PlaceInvestmentParams{
		UserId: user.Id, PlanId: planA.Id, Amount: decimal.RequireFromString("300"),
	})
	if err != nil {
		t.Fatalf("PlaceInvestment failed: %v", err)
	}
	if _, err := service.PlaceInvestment(ctx, store.PlaceInvestmentParams{
		UserId: user.Id, PlanId: planB.Id, Amount: decimal.RequireFromString("100"),
	}); err != nil {
		t.Fatalf("PlaceInvestment failed: %v", err)
	}

	if err := service.RecordInvestmentReturn(ctx, store.ReturnParams{
		InvestmentId: placementA.InvestmentId,
		Amount:       decimal.RequireFromString("4.05"),
	}); err != nil {
		t.Fatalf("RecordInvestmentReturn failed: %v", err)
	}

	summary, err := service.GetWalletSummary(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetWalletSummary failed: %v", err)
	}

	if !summary.TotalInvested.Equal(decimal.RequireFromString("400")) {
		t.Errorf("Expected total invested 400, got %s", summary.TotalInvested.String())
	}
	if len(summary.Portfolio) != 2 {
		t.Fatalf("Expected 2 positions, got %d", len(summary.Portfolio))
	}

	for _, item := range summary.Portfolio {
		switch item.InvestmentId {
		case placementA.InvestmentId:
			// 300 of 400 invested.
			if !item.SharePct.Equal(decimal.RequireFromString("75")) {
				t.Errorf("Expected share 75%%, got %s", item.SharePct.String())
			}
			if len(item.Dividends) != 1 {
				t.Errorf("Expected 1 dividend, got %d", len(item.Dividends))
			}
		default:
			if !item.SharePct.Equal(decimal.RequireFromString("25")) {
				t.Errorf("Expected share 25%%, got %s", item.SharePct.String())
			}
		}
	}
}

func TestGetAppConfig_DefaultsWhenUnseeded(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()

	cfg, err := service.GetAppConfig(context.Background())
	if err != nil {
		t.Fatalf("GetAppConfig failed: %v", err)
	}

	if !cfg.ServiceFeePercent.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected fee 2.5, got %s", cfg.ServiceFeePercent.String())
	}
	if !cfg.MinWithdrawAmount.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Expected min withdraw 50, got %s", cfg.MinWithdrawAmount.String())
	}
	if !cfg.MinDepositAmount.Equal(decimal.RequireFromString("10")) {
		t.Errorf("Expected min deposit 10, got %s", cfg.MinDepositAmount.String())
	}
}
