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

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (id, name, email, cpf, password_hash, referral_code, referred_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	queryGetUserById = `
		SELECT id, name, email, cpf, password_hash, balance, total_invested, total_returns,
		       kyc_status, referral_code, referred_by, version, created_at, updated_at
		FROM users
		WHERE id = ?`

	queryGetUserByEmail = `
		SELECT id, name, email, cpf, password_hash, balance, total_invested, total_returns,
		       kyc_status, referral_code, referred_by, version, created_at, updated_at
		FROM users
		WHERE email = ?`

	queryGetUserByReferralCode = `
		SELECT id, name, email, cpf, password_hash, balance, total_invested, total_returns,
		       kyc_status, referral_code, referred_by, version, created_at, updated_at
		FROM users
		WHERE referral_code = ?`

	queryListReferrals = `
		SELECT id, name, kyc_status, created_at
		FROM users
		WHERE referred_by = ?
		ORDER BY created_at DESC`

	querySetKycStatus = `
		UPDATE users
		SET kyc_status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`

	// Locked read of the user row inside a mutation transaction. The
	// returned version must accompany every subsequent write.
	queryLockUser = `
		SELECT id, balance, total_invested, total_returns, kyc_status, version
		FROM users
		WHERE id = ?`

	// Versioned aggregate write; zero rows affected means a concurrent
	// writer got there first and the whole scope must roll back.
	queryUpdateUserAggregates = `
		UPDATE users
		SET balance = ?, total_invested = ?, total_returns = ?,
		    version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	// Plan queries
	queryInsertPlan = `
		INSERT OR IGNORE INTO investment_plans
			(id, name, category, min_investment, max_investment_limit,
			 monthly_return_rate, duration_months, risk_level, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryGetPlan = `
		SELECT id, name, category, min_investment, max_investment_limit, total_invested,
		       monthly_return_rate, duration_months, risk_level, is_active, version,
		       created_at, updated_at
		FROM investment_plans
		WHERE id = ?`

	queryListActivePlans = `
		SELECT id, name, category, min_investment, max_investment_limit, total_invested,
		       monthly_return_rate, duration_months, risk_level, is_active, version,
		       created_at, updated_at
		FROM investment_plans
		WHERE is_active = 1
		ORDER BY min_investment ASC`

	queryLockPlan = `
		SELECT id, min_investment, max_investment_limit, total_invested, is_active, version
		FROM investment_plans
		WHERE id = ?`

	queryUpdatePlanTotal = `
		UPDATE investment_plans
		SET total_invested = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?`

	// Config queries
	queryGetAppConfig = `
		SELECT service_fee_percent, min_withdraw_amount, min_deposit_amount, postback_url
		FROM app_config
		WHERE id = 1`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions
			(id, user_id, investment_id, type, amount, status, description,
			 payment_method, pix_key, pix_key_type, external_transaction_id, metadata,
			 created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	queryAttachExternalId = `
		UPDATE transactions
		SET external_transaction_id = ?
		WHERE id = ?`

	queryGetTransactionById = `
		SELECT id, user_id, investment_id, type, amount, status, description,
		       payment_method, pix_key, pix_key_type, external_transaction_id, metadata,
		       created_at, completed_at
		FROM transactions
		WHERE id = ?`

	queryFindDepositByExternalId = `
		SELECT id, user_id, investment_id, type, amount, status, description,
		       payment_method, pix_key, pix_key_type, external_transaction_id, metadata,
		       created_at, completed_at
		FROM transactions
		WHERE external_transaction_id = ? AND user_id = ? AND type = 'deposit'
		LIMIT 1`

	queryFindTransactionByExternalId = `
		SELECT id, user_id, investment_id, type, amount, status, description,
		       payment_method, pix_key, pix_key_type, external_transaction_id, metadata,
		       created_at, completed_at
		FROM transactions
		WHERE external_transaction_id = ?
		LIMIT 1`

	// Guarded status transitions. The status predicate makes completion
	// idempotent: zero rows affected means someone already moved the row.
	queryMarkTransactionCompleted = `
		UPDATE transactions
		SET status = 'completed', completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status != 'completed'`

	queryMarkWithdrawCompleted = `
		UPDATE transactions
		SET status = 'completed', completed_at = CURRENT_TIMESTAMP
		WHERE id = ? AND type = 'withdraw' AND status = 'pending'`

	queryMarkWithdrawalFailed = `
		UPDATE transactions
		SET status = ?, metadata = ?
		WHERE id = ? AND type = 'withdraw' AND status = 'pending'`

	queryHistoryByType = `
		SELECT id, amount, status, payment_method, description, created_at
		FROM transactions
		WHERE user_id = ? AND type = ?
		ORDER BY created_at DESC
		LIMIT ?`

	// Investment queries
	queryInsertInvestment = `
		INSERT INTO user_investments (id, user_id, plan_id, amount, status, start_date)
		VALUES (?, ?, ?, ?, 'active', ?)`

	queryListUserInvestments = `
		SELECT ui.id, ui.plan_id, ip.name, ip.category, ui.amount,
		       ip.monthly_return_rate, ip.duration_months, ip.risk_level
		FROM user_investments ui
		JOIN investment_plans ip ON ip.id = ui.plan_id
		WHERE ui.user_id = ?
		ORDER BY ui.created_at DESC`

	queryGetInvestment = `
		SELECT id, user_id, plan_id, amount, status, total_returns, start_date, end_date, created_at
		FROM user_investments
		WHERE id = ?`

	queryBumpInvestmentReturns = `
		UPDATE user_investments
		SET total_returns = ?
		WHERE id = ?`

	queryInsertReturn = `
		INSERT INTO investment_returns (id, investment_id, amount, return_type, paid_at)
		VALUES (?, ?, ?, ?, ?)`

	queryRecentReturns = `
		SELECT investment_id, amount, return_type, paid_at
		FROM investment_returns
		WHERE investment_id = ?
		ORDER BY paid_at DESC
		LIMIT 5`
)
