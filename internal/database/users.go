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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var balanceStr, investedStr, returnsStr string
	err := row.Scan(&user.Id, &user.Name, &user.Email, &user.Cpf, &user.PasswordHash,
		&balanceStr, &investedStr, &returnsStr,
		&user.KycStatus, &user.ReferralCode, &user.ReferredBy, &user.Version,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if user.Balance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	if user.TotalInvested, err = decimal.NewFromString(investedStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_invested %q: %w", investedStr, err)
	}
	if user.TotalReturns, err = decimal.NewFromString(returnsStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_returns %q: %w", returnsStr, err)
	}
	return &user, nil
}

func (s *Service) CreateUser(ctx context.Context, params store.CreateUserParams) (*models.User, error) {
	userId := uuid.New().String()
	referralCode := params.ReferralCode
	if referralCode == "" {
		referralCode = strings.ToUpper(uuid.New().String()[:8])
	}

	zap.L().Info("Creating user",
		zap.String("id", userId),
		zap.String("email", params.Email),
		zap.String("referred_by", params.ReferredBy))

	_, err := s.db.ExecContext(ctx, queryInsertUser,
		userId, params.Name, params.Email, params.Cpf, params.PasswordHash,
		referralCode, params.ReferredBy)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return nil, store.ErrEmailTaken
		}
		zap.L().Error("Failed to insert user", zap.String("email", params.Email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	return s.GetUserById(ctx, userId)
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		zap.L().Error("Failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}
	return user, nil
}

func (s *Service) GetUserByReferralCode(ctx context.Context, code string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByReferralCode, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("unable to query user by referral code: %w", err)
	}
	return user, nil
}

// ListReferrals returns the direct (level-1) referrals of a user. Deeper
// levels are never materialized.
func (s *Service) ListReferrals(ctx context.Context, userId string) ([]models.ReferralEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryListReferrals, userId)
	if err != nil {
		return nil, fmt.Errorf("unable to query referrals: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var referrals []models.ReferralEntry
	for rows.Next() {
		var entry models.ReferralEntry
		if err := rows.Scan(&entry.UserId, &entry.Name, &entry.KycStatus, &entry.JoinedAt); err != nil {
			return nil, fmt.Errorf("unable to scan referral row: %w", err)
		}
		referrals = append(referrals, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referral rows: %w", err)
	}
	return referrals, nil
}

// SetKycStatus records the identity-verification feed's output for a user.
func (s *Service) SetKycStatus(ctx context.Context, userId, status string) error {
	switch status {
	case models.KycNotStarted, models.KycPending, models.KycApproved, models.KycRejected:
	default:
		return fmt.Errorf("invalid kyc status %q", status)
	}

	result, err := s.db.ExecContext(ctx, querySetKycStatus, status, userId)
	if err != nil {
		return fmt.Errorf("unable to update kyc status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrUserNotFound
	}

	zap.L().Info("KYC status updated", zap.String("user_id", userId), zap.String("status", status))
	return nil
}
