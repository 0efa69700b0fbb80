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
	"fmt"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Compile-time check: *Service must satisfy store.LedgerStore.
var _ store.LedgerStore = (*Service)(nil)

type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.DatabaseConfig) (*Service, error) {
	// Validate configuration
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns < 0 {
		return nil, fmt.Errorf("max idle connections cannot be negative, got %d", cfg.MaxIdleConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening SQLite database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	service := &Service{db: db}
	if err := service.InitSchema(); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("unable to initialize schema: %w", err)
	}

	if cfg.SeedDemoUsers {
		if err := service.seedDemoUsers(ctx); err != nil {
			zap.L().Warn("Failed to seed demo users", zap.Error(err))
		}
	}

	zap.L().Info("Database service initialized successfully")
	return service, nil
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close database connection", zap.Error(err))
	}
}

func (s *Service) InitSchema() error {
	schema := `
	-- Users with their financial aggregates. version guards every
	-- balance/aggregate write (optimistic row lock).
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		cpf TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		balance TEXT NOT NULL DEFAULT '0',
		total_invested TEXT NOT NULL DEFAULT '0',
		total_returns TEXT NOT NULL DEFAULT '0',
		kyc_status TEXT NOT NULL DEFAULT 'not_started',
		referral_code TEXT NOT NULL UNIQUE,
		referred_by TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_referral_code ON users(referral_code);
	CREATE INDEX IF NOT EXISTS idx_users_referred_by ON users(referred_by);

	-- Investable products. total_invested is the plan-wide aggregate and
	-- shares the versioned-write discipline with users.
	CREATE TABLE IF NOT EXISTS investment_plans (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		min_investment TEXT NOT NULL DEFAULT '0',
		max_investment_limit TEXT,
		total_invested TEXT NOT NULL DEFAULT '0',
		monthly_return_rate TEXT NOT NULL DEFAULT '0',
		duration_months INTEGER NOT NULL DEFAULT 0,
		risk_level TEXT NOT NULL DEFAULT '',
		is_active INTEGER NOT NULL DEFAULT 1,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_plans_active ON investment_plans(is_active);

	-- Positions. amount is immutable after insert.
	CREATE TABLE IF NOT EXISTS user_investments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		plan_id TEXT NOT NULL REFERENCES investment_plans(id),
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active',
		total_returns TEXT NOT NULL DEFAULT '0',
		start_date TIMESTAMP NOT NULL,
		end_date TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_investments_user ON user_investments(user_id);
	CREATE INDEX IF NOT EXISTS idx_investments_plan ON user_investments(plan_id);

	-- Ledger audit/settlement records.
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id),
		investment_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		amount TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		description TEXT NOT NULL DEFAULT '',
		payment_method TEXT NOT NULL DEFAULT '',
		pix_key TEXT NOT NULL DEFAULT '',
		pix_key_type TEXT NOT NULL DEFAULT '',
		external_transaction_id TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		completed_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_user_type ON transactions(user_id, type);
	CREATE INDEX IF NOT EXISTS idx_transactions_external_id ON transactions(external_transaction_id);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at);

	-- Yield distributions against positions, inserted by the external
	-- distribution process via RecordInvestmentReturn.
	CREATE TABLE IF NOT EXISTS investment_returns (
		id TEXT PRIMARY KEY,
		investment_id TEXT NOT NULL REFERENCES user_investments(id),
		amount TEXT NOT NULL,
		return_type TEXT NOT NULL DEFAULT 'dividend',
		paid_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_returns_investment ON investment_returns(investment_id);

	-- Single-row platform business configuration.
	CREATE TABLE IF NOT EXISTS app_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		service_fee_percent TEXT NOT NULL DEFAULT '2.5',
		min_withdraw_amount TEXT NOT NULL DEFAULT '50',
		min_deposit_amount TEXT NOT NULL DEFAULT '10',
		postback_url TEXT NOT NULL DEFAULT ''
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *Service) seedDemoUsers(ctx context.Context) error {
	demo := []struct {
		name  string
		email string
	}{
		{"Alice Martins", "alice.martins@example.com"},
		{"Bruno Costa", "bruno.costa@example.com"},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, u := range demo {
		_, err := s.CreateUser(ctx, store.CreateUserParams{
			Name:         u.name,
			Email:        u.email,
			PasswordHash: string(hash),
			ReferralCode: uuid.New().String()[:8],
		})
		if err != nil {
			zap.L().Debug("Demo user not created", zap.String("email", u.email), zap.Error(err))
		} else {
			zap.L().Info("Demo user created", zap.String("email", u.email))
		}
	}
	return nil
}
