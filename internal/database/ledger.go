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
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// lockedUser is the tx-scoped snapshot of a user row taken at the start of
// every balance mutation. The version must accompany the write-back; a
// stale version aborts the whole scope.
type lockedUser struct {
	Id            string
	Balance       decimal.Decimal
	TotalInvested decimal.Decimal
	TotalReturns  decimal.Decimal
	KycStatus     string
	version       int64
}

type lockedPlan struct {
	Id            string
	MinInvestment decimal.Decimal
	MaxLimit      *decimal.Decimal
	TotalInvested decimal.Decimal
	IsActive      bool
	version       int64
}

func lockUser(ctx context.Context, tx *sql.Tx, userId string) (*lockedUser, error) {
	var u lockedUser
	var balanceStr, investedStr, returnsStr string
	err := tx.QueryRowContext(ctx, queryLockUser, userId).
		Scan(&u.Id, &balanceStr, &investedStr, &returnsStr, &u.KycStatus, &u.version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("unable to read user row: %w", err)
	}

	if u.Balance, err = decimal.NewFromString(balanceStr); err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", balanceStr, err)
	}
	if u.TotalInvested, err = decimal.NewFromString(investedStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_invested %q: %w", investedStr, err)
	}
	if u.TotalReturns, err = decimal.NewFromString(returnsStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_returns %q: %w", returnsStr, err)
	}
	return &u, nil
}

// lockPlan follows lockUser; the fixed user-then-plan order is the
// deadlock-avoidance rule shared by every multi-row mutation.
func lockPlan(ctx context.Context, tx *sql.Tx, planId string) (*lockedPlan, error) {
	var p lockedPlan
	var minStr, totalStr string
	var maxStr sql.NullString
	var active int
	err := tx.QueryRowContext(ctx, queryLockPlan, planId).
		Scan(&p.Id, &minStr, &maxStr, &totalStr, &active, &p.version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPlanNotFound
		}
		return nil, fmt.Errorf("unable to read plan row: %w", err)
	}

	p.IsActive = active != 0
	if p.MinInvestment, err = decimal.NewFromString(minStr); err != nil {
		return nil, fmt.Errorf("failed to parse min_investment %q: %w", minStr, err)
	}
	if p.TotalInvested, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_invested %q: %w", totalStr, err)
	}
	if maxStr.Valid {
		max, err := decimal.NewFromString(maxStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse max_investment_limit %q: %w", maxStr.String, err)
		}
		p.MaxLimit = &max
	}
	return &p, nil
}

func writeUserAggregates(ctx context.Context, tx *sql.Tx, u *lockedUser, balance, invested, returns decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, queryUpdateUserAggregates,
		balance.String(), invested.String(), returns.String(), u.Id, u.version)
	if err != nil {
		return fmt.Errorf("unable to update user aggregates: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrConcurrentModification
	}
	return nil
}

func writePlanTotal(ctx context.Context, tx *sql.Tx, p *lockedPlan, total decimal.Decimal) error {
	result, err := tx.ExecContext(ctx, queryUpdatePlanTotal, total.String(), p.Id, p.version)
	if err != nil {
		return fmt.Errorf("unable to update plan total: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrConcurrentModification
	}
	return nil
}

// withTx runs fn inside a database transaction, rolling back on any error.
func (s *Service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit transaction: %w", err)
	}
	return nil
}

// SettleDeposit credits a pending deposit to the owner's balance and marks
// it completed, all inside one locked scope. Calling it again for the same
// transaction is a successful no-op: the status guard is evaluated on the
// row read taken in the same transaction as the credit, so concurrent
// pollers and webhooks can never double-credit.
func (s *Service) SettleDeposit(ctx context.Context, transactionId string) (*store.SettlementResult, error) {
	result := &store.SettlementResult{TransactionId: transactionId}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, queryGetTransactionById, transactionId)
		deposit, err := scanTransaction(row.Scan)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrTransactionNotFound
			}
			return fmt.Errorf("unable to read transaction: %w", err)
		}

		if deposit.Type != models.TxTypeDeposit {
			return fmt.Errorf("transaction %s is not a deposit", transactionId)
		}
		if deposit.Status == models.TxStatusCompleted {
			result.AlreadySettled = true
			return nil
		}

		user, err := lockUser(ctx, tx, deposit.UserId)
		if err != nil {
			return err
		}

		newBalance := user.Balance.Add(deposit.Amount)
		if err := writeUserAggregates(ctx, tx, user, newBalance, user.TotalInvested, user.TotalReturns); err != nil {
			return err
		}

		marked, err := tx.ExecContext(ctx, queryMarkTransactionCompleted, transactionId)
		if err != nil {
			return fmt.Errorf("unable to mark deposit completed: %w", err)
		}
		affected, err := marked.RowsAffected()
		if err != nil {
			return fmt.Errorf("unable to check rows affected: %w", err)
		}
		if affected == 0 {
			return store.ErrConcurrentModification
		}

		result.NewBalance = newBalance
		zap.L().Info("Deposit settled",
			zap.String("transaction_id", transactionId),
			zap.String("user_id", user.Id),
			zap.String("amount", deposit.Amount.String()),
			zap.String("new_balance", newBalance.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PlaceInvestment atomically moves balance into a plan position. All
// preconditions are checked against rows read inside the same transaction
// that performs the writes; any violation rolls back the whole scope.
func (s *Service) PlaceInvestment(ctx context.Context, params store.PlaceInvestmentParams) (*store.PlacementResult, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: investment amount must be positive", store.ErrBelowMinimum)
	}

	result := &store.PlacementResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// User row first, then plan row. The withdrawal path locks only
		// the user row, so this order cannot invert against it.
		user, err := lockUser(ctx, tx, params.UserId)
		if err != nil {
			return err
		}
		plan, err := lockPlan(ctx, tx, params.PlanId)
		if err != nil {
			return err
		}

		if !plan.IsActive {
			return store.ErrPlanInactive
		}
		if params.Amount.LessThan(plan.MinInvestment) {
			return fmt.Errorf("%w: plan minimum is %s", store.ErrBelowMinimum, plan.MinInvestment.String())
		}
		if user.Balance.LessThan(params.Amount) {
			return store.ErrInsufficientBalance
		}
		newPlanTotal := plan.TotalInvested.Add(params.Amount)
		if plan.MaxLimit != nil && newPlanTotal.GreaterThan(*plan.MaxLimit) {
			return store.ErrPlanCapExceeded
		}

		now := time.Now().UTC()
		investmentId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertInvestment,
			investmentId, user.Id, plan.Id, params.Amount.String(), now); err != nil {
			return fmt.Errorf("unable to insert investment: %w", err)
		}

		// Investment transactions are synchronously completed.
		transactionId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertTransaction,
			transactionId, user.Id, investmentId, models.TxTypeInvestment,
			params.Amount.String(), models.TxStatusCompleted, "Aplicação no plano",
			"", "", "", "", "{}", now, now); err != nil {
			return fmt.Errorf("unable to insert investment transaction: %w", err)
		}

		newBalance := user.Balance.Sub(params.Amount)
		newInvested := user.TotalInvested.Add(params.Amount)
		if err := writeUserAggregates(ctx, tx, user, newBalance, newInvested, user.TotalReturns); err != nil {
			return err
		}
		if err := writePlanTotal(ctx, tx, plan, newPlanTotal); err != nil {
			return err
		}

		result.InvestmentId = investmentId
		result.TransactionId = transactionId
		result.NewBalance = newBalance
		zap.L().Info("Investment placed",
			zap.String("investment_id", investmentId),
			zap.String("user_id", user.Id),
			zap.String("plan_id", plan.Id),
			zap.String("amount", params.Amount.String()),
			zap.String("new_balance", newBalance.String()),
			zap.String("plan_total", newPlanTotal.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RequestWithdrawal reserves amount+fee against the balance and opens a
// pending withdraw transaction. The debit happens now, at request time, so
// concurrent requests cannot both pass the funds check; payout rejection
// later is compensated by FailWithdrawal.
func (s *Service) RequestWithdrawal(ctx context.Context, params store.WithdrawalParams) (*store.WithdrawalResult, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: withdrawal amount must be positive", store.ErrBelowMinimum)
	}
	if params.Amount.LessThan(params.MinAmount) {
		return nil, fmt.Errorf("%w: withdrawal minimum is %s", store.ErrBelowMinimum, params.MinAmount.String())
	}

	result := &store.WithdrawalResult{}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		user, err := lockUser(ctx, tx, params.UserId)
		if err != nil {
			return err
		}

		// Hard gate: no withdrawal path bypasses identity verification.
		if user.KycStatus != models.KycApproved {
			return store.ErrKycNotApproved
		}

		totalDebit := params.Amount.Add(params.Fee)
		if user.Balance.LessThan(totalDebit) {
			return store.ErrInsufficientBalance
		}

		metadata, err := json.Marshal(map[string]string{"fee": params.Fee.String()})
		if err != nil {
			return fmt.Errorf("unable to marshal metadata: %w", err)
		}

		now := time.Now().UTC()
		transactionId := uuid.New().String()
		if _, err := tx.ExecContext(ctx, queryInsertTransaction,
			transactionId, user.Id, "", models.TxTypeWithdraw, params.Amount.String(),
			models.TxStatusPending, "Saque solicitado", "pix",
			params.PixKey, params.PixKeyType, "", string(metadata), now, nil); err != nil {
			return fmt.Errorf("unable to insert withdraw transaction: %w", err)
		}

		newBalance := user.Balance.Sub(totalDebit)
		if err := writeUserAggregates(ctx, tx, user, newBalance, user.TotalInvested, user.TotalReturns); err != nil {
			return err
		}

		result.TransactionId = transactionId
		result.NewBalance = newBalance
		zap.L().Info("Withdrawal reserved",
			zap.String("transaction_id", transactionId),
			zap.String("user_id", user.Id),
			zap.String("amount", params.Amount.String()),
			zap.String("fee", params.Fee.String()),
			zap.String("new_balance", newBalance.String()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompleteWithdrawal marks a pending withdrawal completed. The balance was
// already debited at request time, so this never touches it; repeating the
// call is a no-op by the status guard.
func (s *Service) CompleteWithdrawal(ctx context.Context, transactionId string) error {
	result, err := s.db.ExecContext(ctx, queryMarkWithdrawCompleted, transactionId)
	if err != nil {
		return fmt.Errorf("unable to complete withdrawal: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if affected > 0 {
		zap.L().Info("Withdrawal completed", zap.String("transaction_id", transactionId))
	}
	return nil
}

// FailWithdrawal compensates a rejected payout: it credits amount+fee back
// to the owner and marks the transaction failed, atomically. Only a pending
// withdrawal can fail, so repeated provider events cannot credit twice.
func (s *Service) FailWithdrawal(ctx context.Context, transactionId, providerStatus string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, queryGetTransactionById, transactionId)
		withdrawal, err := scanTransaction(row.Scan)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrTransactionNotFound
			}
			return fmt.Errorf("unable to read transaction: %w", err)
		}

		if withdrawal.Type != models.TxTypeWithdraw || withdrawal.Status != models.TxStatusPending {
			// Already terminal; nothing to compensate.
			return nil
		}

		fee := decimal.Zero
		var meta map[string]string
		if err := json.Unmarshal([]byte(withdrawal.Metadata), &meta); err == nil {
			if feeStr, ok := meta["fee"]; ok {
				if parsed, perr := decimal.NewFromString(feeStr); perr == nil {
					fee = parsed
				}
			}
		}

		user, err := lockUser(ctx, tx, withdrawal.UserId)
		if err != nil {
			return err
		}

		refund := withdrawal.Amount.Add(fee)
		newBalance := user.Balance.Add(refund)
		if err := writeUserAggregates(ctx, tx, user, newBalance, user.TotalInvested, user.TotalReturns); err != nil {
			return err
		}

		if meta == nil {
			meta = map[string]string{}
		}
		meta["provider_status"] = providerStatus
		metadata, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("unable to marshal metadata: %w", err)
		}

		marked, err := tx.ExecContext(ctx, queryMarkWithdrawalFailed,
			models.TxStatusFailed, string(metadata), transactionId)
		if err != nil {
			return fmt.Errorf("unable to mark withdrawal failed: %w", err)
		}
		affected, err := marked.RowsAffected()
		if err != nil {
			return fmt.Errorf("unable to check rows affected: %w", err)
		}
		if affected == 0 {
			return store.ErrConcurrentModification
		}

		zap.L().Warn("Withdrawal failed, balance credited back",
			zap.String("transaction_id", transactionId),
			zap.String("provider_status", providerStatus),
			zap.String("refund", refund.String()),
			zap.String("new_balance", newBalance.String()))
		return nil
	})
}

// RecordInvestmentReturn applies a yield distribution: it credits the
// owner's balance, bumps both total_returns aggregates and appends the
// return record plus a completed ledger transaction.
func (s *Service) RecordInvestmentReturn(ctx context.Context, params store.ReturnParams) error {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("return amount must be positive, got %s", params.Amount.String())
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var investment models.UserInvestment
		var amountStr, returnsStr string
		var endDate sql.NullTime
		err := tx.QueryRowContext(ctx, queryGetInvestment, params.InvestmentId).
			Scan(&investment.Id, &investment.UserId, &investment.PlanId, &amountStr,
				&investment.Status, &returnsStr, &investment.StartDate, &endDate,
				&investment.CreatedAt)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("investment not found: %s", params.InvestmentId)
			}
			return fmt.Errorf("unable to read investment: %w", err)
		}

		currentReturns, err := decimal.NewFromString(returnsStr)
		if err != nil {
			return fmt.Errorf("failed to parse total_returns %q: %w", returnsStr, err)
		}

		user, err := lockUser(ctx, tx, investment.UserId)
		if err != nil {
			return err
		}

		returnType := params.ReturnType
		if returnType == "" {
			returnType = "dividend"
		}
		paidAt := params.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now().UTC()
		}

		if _, err := tx.ExecContext(ctx, queryInsertReturn,
			uuid.New().String(), investment.Id, params.Amount.String(), returnType, paidAt); err != nil {
			return fmt.Errorf("unable to insert return record: %w", err)
		}

		if _, err := tx.ExecContext(ctx, queryBumpInvestmentReturns,
			currentReturns.Add(params.Amount).String(), investment.Id); err != nil {
			return fmt.Errorf("unable to bump investment returns: %w", err)
		}

		if _, err := tx.ExecContext(ctx, queryInsertTransaction,
			uuid.New().String(), user.Id, investment.Id, models.TxTypeReturn,
			params.Amount.String(), models.TxStatusCompleted, "Rendimento distribuído",
			"", "", "", "", "{}", paidAt, paidAt); err != nil {
			return fmt.Errorf("unable to insert return transaction: %w", err)
		}

		newBalance := user.Balance.Add(params.Amount)
		newReturns := user.TotalReturns.Add(params.Amount)
		return writeUserAggregates(ctx, tx, user, newBalance, user.TotalInvested, newReturns)
	})
}
