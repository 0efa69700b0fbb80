package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func scanTransaction(scan func(dest ...any) error) (*models.Transaction, error) {
	var tx models.Transaction
	var amountStr string
	var completedAt sql.NullTime
	err := scan(&tx.Id, &tx.UserId, &tx.InvestmentId, &tx.Type, &amountStr, &tx.Status,
		&tx.Description, &tx.PaymentMethod, &tx.PixKey, &tx.PixKeyType,
		&tx.ExternalTransactionId, &tx.Metadata, &tx.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if tx.Amount, err = decimal.NewFromString(amountStr); err != nil {
		return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
	}
	if completedAt.Valid {
		tx.CompletedAt = &completedAt.Time
	}
	return &tx, nil
}

// CreateDepositTransaction opens a pending deposit record. This runs in its
// own committed transaction before the gateway is ever contacted, so a
// gateway failure can never leave an unrecorded charge. Balance is not
// touched here; only settlement credits it.
func (s *Service) CreateDepositTransaction(ctx context.Context, params store.CreateDepositParams) (*models.Transaction, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: deposit amount must be positive", store.ErrBelowMinimum)
	}

	txId := uuid.New().String()
	now := time.Now().UTC()

	zap.L().Info("Opening pending deposit",
		zap.String("transaction_id", txId),
		zap.String("user_id", params.UserId),
		zap.String("amount", params.Amount.String()),
		zap.String("method", params.PaymentMethod))

	_, err := s.db.ExecContext(ctx, queryInsertTransaction,
		txId, params.UserId, "", models.TxTypeDeposit, params.Amount.String(),
		models.TxStatusPending, params.Description, params.PaymentMethod,
		"", "", "", `{"origin":"wallet-deposit"}`, now, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to insert deposit transaction: %w", err)
	}

	return s.getTransaction(ctx, txId)
}

func (s *Service) getTransaction(ctx context.Context, txId string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, queryGetTransactionById, txId)
	tx, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("unable to query transaction: %w", err)
	}
	return tx, nil
}

// AttachExternalId persists the gateway's charge id on the local record so
// later webhooks and polls can correlate.
func (s *Service) AttachExternalId(ctx context.Context, transactionId, externalId string) error {
	result, err := s.db.ExecContext(ctx, queryAttachExternalId, externalId, transactionId)
	if err != nil {
		return fmt.Errorf("unable to attach external id: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to get rows affected: %w", err)
	}
	if affected == 0 {
		return store.ErrTransactionNotFound
	}
	return nil
}

// FindDepositByExternalId is the poll-path lookup, scoped to the owner so a
// user can never probe someone else's deposit.
func (s *Service) FindDepositByExternalId(ctx context.Context, externalId, userId string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, queryFindDepositByExternalId, externalId, userId)
	tx, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("unable to query deposit by external id: %w", err)
	}
	return tx, nil
}

// FindTransactionByExternalId is the ownerless webhook-path lookup.
func (s *Service) FindTransactionByExternalId(ctx context.Context, externalId string) (*models.Transaction, error) {
	row := s.db.QueryRowContext(ctx, queryFindTransactionByExternalId, externalId)
	tx, err := scanTransaction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("unable to query transaction by external id: %w", err)
	}
	return tx, nil
}

// GetWalletHistory returns the most recent deposits and withdrawals.
func (s *Service) GetWalletHistory(ctx context.Context, userId string, limit int) (*models.WalletHistory, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 50 {
		limit = 50
	}

	deposits, err := s.historyByType(ctx, userId, models.TxTypeDeposit, limit)
	if err != nil {
		return nil, err
	}
	withdrawals, err := s.historyByType(ctx, userId, models.TxTypeWithdraw, limit)
	if err != nil {
		return nil, err
	}

	return &models.WalletHistory{Deposits: deposits, Withdrawals: withdrawals}, nil
}

func (s *Service) historyByType(ctx context.Context, userId, txType string, limit int) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryHistoryByType, userId, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s history: %w", txType, err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	entries := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var entry models.HistoryEntry
		var amountStr string
		if err := rows.Scan(&entry.Id, &amountStr, &entry.Status, &entry.Method,
			&entry.Description, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("unable to scan history row: %w", err)
		}
		if entry.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse amount %q: %w", amountStr, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, nil
}
