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

package api

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"grao-wallet-go/internal/gateway"
	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

// terminal failure statuses a provider can report for a payout.
var withdrawFailureStatuses = map[string]bool{
	"failed":    true,
	"cancelled": true,
	"canceled":  true,
	"rejected":  true,
	"refused":   true,
	"expired":   true,
}

// HandleWebhook processes a provider callback. It never returns an error:
// the receiver must always acknowledge, and the returned flag only drives
// the ok field of the response body. Replays and unknown payloads are
// acknowledged no-ops.
func (s *LedgerService) HandleWebhook(ctx context.Context, body []byte) bool {
	event := gateway.ParseWebhook(body)

	switch event.Kind {
	case gateway.EventTransaction:
		return s.handleTransactionEvent(ctx, event)
	case gateway.EventWithdraw:
		return s.handleWithdrawEvent(ctx, event)
	default:
		zap.L().Debug("ignoring unknown webhook payload")
		return true
	}
}

func (s *LedgerService) handleTransactionEvent(ctx context.Context, event gateway.WebhookEvent) bool {
	transaction, err := s.db.FindTransactionByExternalId(ctx, event.ExternalId)
	if err != nil {
		if errors.Is(err, store.ErrTransactionNotFound) {
			zap.L().Warn("webhook for unknown gateway transaction",
				zap.String("externalId", event.ExternalId))
			return true
		}
		zap.L().Error("webhook lookup failed", zap.Error(err))
		return false
	}

	switch transaction.Type {
	case models.TxTypeDeposit:
		if !gateway.IsPaid(event.Status) {
			return true
		}
		result, err := s.db.SettleDeposit(ctx, transaction.Id)
		if err != nil {
			zap.L().Error("webhook deposit settlement failed",
				zap.String("transactionId", transaction.Id),
				zap.Error(err))
			return false
		}
		if result.AlreadySettled {
			zap.L().Info("webhook replay for settled deposit",
				zap.String("transactionId", transaction.Id))
		}
		return true

	case models.TxTypeWithdraw:
		return s.settleWithdraw(ctx, transaction.Id, event.Status)

	default:
		zap.L().Warn("webhook for unexpected transaction type",
			zap.String("transactionId", transaction.Id),
			zap.String("type", transaction.Type))
		return true
	}
}

// handleWithdrawEvent handles the payout-shaped callback, where the
// provider echoes our local transaction id as externalRef.
func (s *LedgerService) handleWithdrawEvent(ctx context.Context, event gateway.WebhookEvent) bool {
	return s.settleWithdraw(ctx, event.ExternalRef, event.Status)
}

func (s *LedgerService) settleWithdraw(ctx context.Context, transactionId, status string) bool {
	switch {
	case status == "completed" || gateway.IsPaid(status):
		err := s.db.CompleteWithdrawal(ctx, transactionId)
		if err != nil && !errors.Is(err, store.ErrTransactionNotFound) && !errors.Is(err, store.ErrAlreadySettled) {
			zap.L().Error("webhook withdraw completion failed",
				zap.String("transactionId", transactionId),
				zap.Error(err))
			return false
		}
		return true

	case withdrawFailureStatuses[status]:
		err := s.db.FailWithdrawal(ctx, transactionId, status)
		if err != nil && !errors.Is(err, store.ErrTransactionNotFound) {
			zap.L().Error("webhook withdraw reversal failed",
				zap.String("transactionId", transactionId),
				zap.Error(err))
			return false
		}
		return true

	default:
		// processing, pending and friends: nothing to settle yet.
		return true
	}
}
