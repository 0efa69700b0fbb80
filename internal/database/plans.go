package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanPlanRow(scan func(dest ...any) error) (*models.InvestmentPlan, error) {
	var plan models.InvestmentPlan
	var minStr, totalStr, rateStr string
	var maxStr sql.NullString
	var active int
	err := scan(&plan.Id, &plan.Name, &plan.Category, &minStr, &maxStr, &totalStr,
		&rateStr, &plan.DurationMonths, &plan.RiskLevel, &active, &plan.Version,
		&plan.CreatedAt, &plan.UpdatedAt)
	if err != nil {
		return nil, err
	}

	plan.IsActive = active != 0
	if plan.MinInvestment, err = decimal.NewFromString(minStr); err != nil {
		return nil, fmt.Errorf("failed to parse min_investment %q: %w", minStr, err)
	}
	if plan.TotalInvested, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_invested %q: %w", totalStr, err)
	}
	if plan.MonthlyReturnRate, err = decimal.NewFromString(rateStr); err != nil {
		return nil, fmt.Errorf("failed to parse monthly_return_rate %q: %w", rateStr, err)
	}
	if maxStr.Valid {
		max, err := decimal.NewFromString(maxStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse max_investment_limit %q: %w", maxStr.String, err)
		}
		plan.MaxInvestmentLimit = &max
	}
	return &plan, nil
}

func (s *Service) GetPlan(ctx context.Context, planId string) (*models.InvestmentPlan, error) {
	row := s.db.QueryRowContext(ctx, queryGetPlan, planId)
	plan, err := scanPlanRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlanNotFound
		}
		return nil, fmt.Errorf("unable to query plan: %w", err)
	}
	return plan, nil
}

func (s *Service) ListActivePlans(ctx context.Context) ([]models.InvestmentPlan, error) {
	rows, err := s.db.QueryContext(ctx, queryListActivePlans)
	if err != nil {
		return nil, fmt.Errorf("unable to query plans: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var plans []models.InvestmentPlan
	for rows.Next() {
		plan, err := scanPlanRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("unable to scan plan row: %w", err)
		}
		plans = append(plans, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating plan rows: %w", err)
	}
	return plans, nil
}

// SeedPlan inserts a plan from the catalog file if it does not exist yet.
// Existing rows are left untouched so reseeding never clobbers aggregates.
func (s *Service) SeedPlan(ctx context.Context, plan models.InvestmentPlan) error {
	var maxLimit any
	if plan.MaxInvestmentLimit != nil {
		maxLimit = plan.MaxInvestmentLimit.String()
	}

	active := 0
	if plan.IsActive {
		active = 1
	}

	_, err := s.db.ExecContext(ctx, queryInsertPlan,
		plan.Id, plan.Name, plan.Category, plan.MinInvestment.String(), maxLimit,
		plan.MonthlyReturnRate.String(), plan.DurationMonths, plan.RiskLevel, active)
	if err != nil {
		return fmt.Errorf("unable to seed plan %s: %w", plan.Id, err)
	}
	return nil
}
