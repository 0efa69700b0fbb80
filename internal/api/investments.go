package api

import (
	"context"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

// PlaceInvestment moves balance into a plan position. All the business
// gating (plan active, minimum, balance, funding cap) happens inside the
// store under the row locks, so a stale read here cannot oversubscribe.
func (s *LedgerService) PlaceInvestment(ctx context.Context, userId string, request *models.InvestRequest) (*models.InvestResult, error) {
	if request.PlanId == "" {
		return nil, invalidInput("planId is required")
	}

	if request.Amount.Sign() <= 0 {
		return nil, invalidInput("investment amount must be positive")
	}

	result, err := s.db.PlaceInvestment(ctx, store.PlaceInvestmentParams{
		UserId: userId,
		PlanId: request.PlanId,
		Amount: request.Amount,
	})
	if err != nil {
		return nil, err
	}

	return &models.InvestResult{
		InvestmentId:  result.InvestmentId,
		TransactionId: result.TransactionId,
		PlanId:        request.PlanId,
		Amount:        request.Amount,
		Balance:       result.NewBalance,
	}, nil
}

func (s *LedgerService) ListPlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	return s.db.ListActivePlans(ctx)
}
