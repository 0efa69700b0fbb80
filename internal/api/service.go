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
	"fmt"

	"grao-wallet-go/internal/auth"
	"grao-wallet-go/internal/gateway"
	"grao-wallet-go/internal/store"
)

// LedgerService orchestrates the money-movement operations over the store
// and the payment gateway. It owns no state beyond its collaborators.
type LedgerService struct {
	db        store.LedgerStore
	gateway   gateway.PaymentGateway
	tokens    *auth.TokenIssuer
	publicUrl string
}

func NewLedgerService(db store.LedgerStore, gw gateway.PaymentGateway, tokens *auth.TokenIssuer, publicUrl string) *LedgerService {
	return &LedgerService{
		db:        db,
		gateway:   gw,
		tokens:    tokens,
		publicUrl: publicUrl,
	}
}

func (s *LedgerService) HealthCheck(ctx context.Context) error {
	if _, err := s.db.GetAppConfig(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// ErrInvalidInput prefixes request validation failures so handlers can map
// them onto 400 without inspecting message text.
var ErrInvalidInput = errors.New("invalid input")

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// GatewayError marks failures originating at the payment provider. They
// need different user guidance than validation errors (retry or contact
// support, rather than correct the input), so handlers map them onto 502.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway failure: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}
