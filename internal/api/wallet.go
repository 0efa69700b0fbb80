package api

import (
	"context"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

const defaultHistoryLimit = 20

func (s *LedgerService) GetWallet(ctx context.Context, userId string) (*models.WalletSummary, error) {
	return s.db.GetWalletSummary(ctx, userId)
}

func (s *LedgerService) GetHistory(ctx context.Context, userId string, limit int) (*models.WalletHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return s.db.GetWalletHistory(ctx, userId, limit)
}

func (s *LedgerService) ListReferrals(ctx context.Context, userId string) ([]models.ReferralEntry, error) {
	return s.db.ListReferrals(ctx, userId)
}

func (s *LedgerService) GetKycStatus(ctx context.Context, userId string) (string, error) {
	user, err := s.db.GetUserById(ctx, userId)
	if err != nil {
		return "", err
	}
	return user.KycStatus, nil
}

// SubmitKyc moves the user into review. Documents themselves are handled
// by the review back office; the wallet only tracks the gate status.
func (s *LedgerService) SubmitKyc(ctx context.Context, userId string) error {
	user, err := s.db.GetUserById(ctx, userId)
	if err != nil {
		return err
	}
	if user.KycStatus == models.KycApproved {
		return invalidInput("identity verification already approved")
	}
	return s.db.SetKycStatus(ctx, userId, models.KycPending)
}

// ReviewKyc is the back-office decision. Only terminal review outcomes are
// accepted here.
func (s *LedgerService) ReviewKyc(ctx context.Context, userId, status string) error {
	if status != models.KycApproved && status != models.KycRejected {
		return invalidInput("invalid review outcome: %q", status)
	}
	return s.db.SetKycStatus(ctx, userId, status)
}

// RecordReturn is the distribution entry point used by the back office to
// pay yield into a position.
func (s *LedgerService) RecordReturn(ctx context.Context, record models.InvestmentReturn) error {
	if record.Amount.Sign() <= 0 {
		return invalidInput("return amount must be positive")
	}
	return s.db.RecordInvestmentReturn(ctx, store.ReturnParams{
		InvestmentId: record.InvestmentId,
		Amount:       record.Amount,
		ReturnType:   record.ReturnType,
		PaidAt:       record.PaidAt,
	})
}
