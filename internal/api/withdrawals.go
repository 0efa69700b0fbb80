package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

var validPixKeyTypes = map[string]bool{
	"email":  true,
	"phone":  true,
	"cpf":    true,
	"cnpj":   true,
	"random": true,
}

var oneHundred = decimal.NewFromInt(100)

// RequestWithdrawal reserves amount plus the service fee against the user's
// balance. The payout itself is asynchronous; settlement arrives on the
// webhook as CompleteWithdrawal or FailWithdrawal.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, userId string, request *models.WithdrawRequest) (*models.WithdrawResult, error) {
	if request.Amount.Sign() <= 0 {
		return nil, invalidInput("withdrawal amount must be positive")
	}

	if len(request.PixKey) < 3 {
		return nil, invalidInput("pix key is required")
	}

	if !validPixKeyTypes[request.PixKeyType] {
		return nil, invalidInput("unsupported pix key type: %q", request.PixKeyType)
	}

	appConfig, err := s.db.GetAppConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load app config: %w", err)
	}

	fee := request.Amount.Mul(appConfig.ServiceFeePercent).Div(oneHundred).Round(2)

	result, err := s.db.RequestWithdrawal(ctx, store.WithdrawalParams{
		UserId:     userId,
		Amount:     request.Amount,
		Fee:        fee,
		PixKey:     request.PixKey,
		PixKeyType: request.PixKeyType,
		MinAmount:  appConfig.MinWithdrawAmount,
	})
	if err != nil {
		return nil, err
	}

	return &models.WithdrawResult{
		TransactionId: result.TransactionId,
		Balance:       result.NewBalance,
		Fee:           fee,
		Net:           request.Amount,
	}, nil
}
