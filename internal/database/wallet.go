package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"grao-wallet-go/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var oneHundred = decimal.NewFromInt(100)

// GetWalletSummary assembles the authoritative wallet view: aggregates,
// portfolio with share percentages and the five most recent dividends per
// position. Reads only; no locking needed.
func (s *Service) GetWalletSummary(ctx context.Context, userId string) (*models.WalletSummary, error) {
	user, err := s.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryListUserInvestments, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query investments: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var portfolio []models.PortfolioItem
	for rows.Next() {
		var item models.PortfolioItem
		var amountStr, rateStr string
		if err := rows.Scan(&item.InvestmentId, &item.PlanId, &item.PlanName, &item.Category,
			&amountStr, &rateStr, &item.DurationMonths, &item.RiskLevel); err != nil {
			return nil, fmt.Errorf("unable to scan investment row: %w", err)
		}
		if item.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		rate, err := decimal.NewFromString(rateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse monthly_return_rate %q: %w", rateStr, err)
		}
		// monthly_return_rate is already stored as a percentage.
		item.MonthlyReturnPct = rate
		if user.TotalInvested.IsPositive() {
			item.SharePct = item.Amount.Div(user.TotalInvested).Mul(oneHundred)
		}
		item.Dividends = []models.DividendRecord{}
		portfolio = append(portfolio, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investment rows: %w", err)
	}

	for i := range portfolio {
		dividends, err := s.recentDividends(ctx, portfolio[i].InvestmentId)
		if err != nil {
			return nil, err
		}
		portfolio[i].Dividends = dividends
	}

	return &models.WalletSummary{
		UserId:        user.Id,
		Name:          user.Name,
		Balance:       user.Balance,
		TotalInvested: user.TotalInvested,
		TotalReturns:  user.TotalReturns,
		KycStatus:     user.KycStatus,
		Portfolio:     portfolio,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

func (s *Service) recentDividends(ctx context.Context, investmentId string) ([]models.DividendRecord, error) {
	rows, err := s.db.QueryContext(ctx, queryRecentReturns, investmentId)
	if err != nil {
		return nil, fmt.Errorf("unable to query returns: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	dividends := []models.DividendRecord{}
	for rows.Next() {
		var record models.DividendRecord
		var investmentId, amountStr string
		if err := rows.Scan(&investmentId, &amountStr, &record.Type, &record.Date); err != nil {
			return nil, fmt.Errorf("unable to scan return row: %w", err)
		}
		if record.Value, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse return amount %q: %w", amountStr, err)
		}
		dividends = append(dividends, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating return rows: %w", err)
	}
	return dividends, nil
}
