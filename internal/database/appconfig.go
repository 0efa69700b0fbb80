package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grao-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

// GetAppConfig returns the platform business configuration. A missing row
// yields safe defaults rather than an error.
func (s *Service) GetAppConfig(ctx context.Context) (*models.AppConfig, error) {
	var feeStr, minWithdrawStr, minDepositStr, postbackUrl string
	err := s.db.QueryRowContext(ctx, queryGetAppConfig).
		Scan(&feeStr, &minWithdrawStr, &minDepositStr, &postbackUrl)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.AppConfig{
			ServiceFeePercent: decimal.NewFromFloat(2.5),
			MinWithdrawAmount: decimal.NewFromInt(50),
			MinDepositAmount:  decimal.NewFromInt(10),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to query app config: %w", err)
	}

	cfg := &models.AppConfig{PostbackUrl: postbackUrl}
	if cfg.ServiceFeePercent, err = decimal.NewFromString(feeStr); err != nil {
		return nil, fmt.Errorf("failed to parse service_fee_percent %q: %w", feeStr, err)
	}
	if cfg.MinWithdrawAmount, err = decimal.NewFromString(minWithdrawStr); err != nil {
		return nil, fmt.Errorf("failed to parse min_withdraw_amount %q: %w", minWithdrawStr, err)
	}
	if cfg.MinDepositAmount, err = decimal.NewFromString(minDepositStr); err != nil {
		return nil, fmt.Errorf("failed to parse min_deposit_amount %q: %w", minDepositStr, err)
	}
	return cfg, nil
}
