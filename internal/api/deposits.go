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
	"fmt"
	"strings"

	"go.uber.org/zap"

	"grao-wallet-go/internal/gateway"
	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

const (
	DepositMethodPix  = "pix"
	DepositMethodCard = "card"
)

// InitiateDeposit records a pending deposit and asks the gateway for a
// charge. The pending row is committed before the gateway call so that a
// provider-side success with a local crash still leaves a reconcilable
// trace; a gateway failure leaves the row pending with no external id.
func (s *LedgerService) InitiateDeposit(ctx context.Context, userId string, request *models.DepositRequest) (*models.DepositResult, error) {
	if request.Method != DepositMethodPix && request.Method != DepositMethodCard {
		return nil, invalidInput("unsupported deposit method: %q", request.Method)
	}

	if request.Method == DepositMethodCard && request.Card == nil {
		return nil, invalidInput("card details are required for card deposits")
	}

	if request.Amount.Sign() <= 0 {
		return nil, invalidInput("deposit amount must be positive")
	}

	appConfig, err := s.db.GetAppConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot load app config: %w", err)
	}

	if request.Amount.LessThan(appConfig.MinDepositAmount) {
		return nil, fmt.Errorf("%w: minimum deposit is %s", store.ErrBelowMinimum, appConfig.MinDepositAmount.StringFixed(2))
	}

	user, err := s.db.GetUserById(ctx, userId)
	if err != nil {
		return nil, err
	}

	transaction, err := s.db.CreateDepositTransaction(ctx, store.CreateDepositParams{
		UserId:        user.Id,
		Amount:        request.Amount,
		PaymentMethod: request.Method,
		Description:   "Depósito via " + strings.ToUpper(request.Method),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot record deposit: %w", err)
	}

	charge, err := s.gateway.Charge(ctx, models.ChargeParams{
		AmountCents:   request.Amount.Shift(2).Round(0).IntPart(),
		Method:        gatewayMethod(request.Method),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerCpf:   user.Cpf,
		Card:          request.Card,
		PostbackUrl:   postbackUrl(appConfig, s.publicUrl),
		ExternalRef:   transaction.Id,
	})
	if err != nil {
		zap.L().Error("gateway charge failed, deposit left pending",
			zap.String("transactionId", transaction.Id),
			zap.Error(err))
		return nil, &GatewayError{Err: err}
	}

	if err := s.db.AttachExternalId(ctx, transaction.Id, charge.GatewayId); err != nil {
		return nil, fmt.Errorf("cannot attach gateway id: %w", err)
	}

	status := charge.Status
	if status == "" {
		status = "waiting_payment"
	}

	return &models.DepositResult{
		TransactionId: transaction.Id,
		ExternalId:    charge.GatewayId,
		Method:        request.Method,
		Status:        status,
		PixQrcode:     charge.PixQrcode,
	}, nil
}

// ResolveDepositStatus is the client polling path for a deposit. Crediting
// goes through the same settlement routine as the webhook, so a poll racing
// a webhook credits at most once.
func (s *LedgerService) ResolveDepositStatus(ctx context.Context, userId, externalId string) (*models.DepositStatusResult, error) {
	transaction, err := s.db.FindDepositByExternalId(ctx, externalId, userId)
	if err != nil {
		return nil, err
	}

	if transaction.Status == models.TxStatusCompleted {
		return &models.DepositStatusResult{Status: "already_paid"}, nil
	}

	remote, err := s.gateway.QueryStatus(ctx, externalId)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	if !gateway.IsPaid(remote.Status) {
		return &models.DepositStatusResult{Status: remote.Status}, nil
	}

	settlement, err := s.db.SettleDeposit(ctx, transaction.Id)
	if err != nil {
		return nil, err
	}
	if settlement.AlreadySettled {
		return &models.DepositStatusResult{Status: "already_paid"}, nil
	}

	return &models.DepositStatusResult{
		Status:  "paid",
		Balance: &settlement.NewBalance,
	}, nil
}

func gatewayMethod(method string) string {
	if method == DepositMethodCard {
		return "credit_card"
	}
	return "pix"
}

// postbackUrl prefers the operator-configured postback from app config so
// a tunnel or staging host can be swapped without a redeploy.
func postbackUrl(appConfig *models.AppConfig, publicUrl string) string {
	if appConfig.PostbackUrl != "" {
		return appConfig.PostbackUrl
	}
	return publicUrl + "/api/webhook"
}
