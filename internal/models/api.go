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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositRequest is the client payload for opening a deposit.
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"` // "pix" or "card"
	Card   *CardDetails    `json:"card,omitempty"`
}

// CardDetails carries card data straight through to the gateway;
// it is never persisted.
type CardDetails struct {
	Number          string `json:"number"`
	HolderName      string `json:"holderName"`
	ExpirationMonth int    `json:"expirationMonth"`
	ExpirationYear  int    `json:"expirationYear"`
	Cvv             string `json:"cvv"`
}

// DepositResult is returned when a deposit has been opened with the gateway.
type DepositResult struct {
	TransactionId string `json:"transactionId"`
	ExternalId    string `json:"externalId"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	PixQrcode     string `json:"pixQrcode,omitempty"`
}

// DepositStatusResult reports the settlement state of a deposit.
// Balance is the authoritative post-settlement balance and is only set
// when this call performed the settlement.
type DepositStatusResult struct {
	Status  string           `json:"status"`
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

// WithdrawRequest is the client payload for issuing a withdrawal.
type WithdrawRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	PixKey     string          `json:"pixKey"`
	PixKeyType string          `json:"pixKeyType"` // email, phone, cpf, random
}

// WithdrawResult reports the reservation made for a withdrawal request.
type WithdrawResult struct {
	TransactionId string          `json:"transactionId"`
	Balance       decimal.Decimal `json:"balance"`
	Fee           decimal.Decimal `json:"fee"`
	Net           decimal.Decimal `json:"net"`
}

// InvestRequest is the client payload for placing an investment.
type InvestRequest struct {
	PlanId string          `json:"planId"`
	Amount decimal.Decimal `json:"amount"`
}

// InvestResult reports a placed position; Balance is the post-debit balance.
type InvestResult struct {
	InvestmentId  string          `json:"investmentId"`
	TransactionId string          `json:"transactionId"`
	PlanId        string          `json:"planId"`
	Amount        decimal.Decimal `json:"amount"`
	Balance       decimal.Decimal `json:"balance"`
}

// RegisterRequest creates a new user, optionally linked to a referrer.
type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Cpf          string `json:"cpf"`
	Password     string `json:"password"`
	ReferralCode string `json:"referralCode,omitempty"`
}

// LoginRequest authenticates an existing user.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	UserId       string `json:"userId"`
	Token        string `json:"token"`
	ReferralCode string `json:"referralCode"`
}

// WalletSummary is the authoritative wallet view rendered by the UI.
type WalletSummary struct {
	UserId        string          `json:"userId"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	TotalInvested decimal.Decimal `json:"totalInvested"`
	TotalReturns  decimal.Decimal `json:"totalReturns"`
	KycStatus     string          `json:"kycStatus"`
	Portfolio     []PortfolioItem `json:"portfolio"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// PortfolioItem is one position in the wallet summary.
type PortfolioItem struct {
	InvestmentId     string           `json:"investmentId"`
	PlanId           string           `json:"planId"`
	PlanName         string           `json:"planName"`
	Category         string           `json:"category"`
	Amount           decimal.Decimal  `json:"amount"`
	SharePct         decimal.Decimal  `json:"sharePct"`
	MonthlyReturnPct decimal.Decimal  `json:"monthlyReturnPct"`
	DurationMonths   int              `json:"durationMonths"`
	RiskLevel        string           `json:"riskLevel,omitempty"`
	Dividends        []DividendRecord `json:"dividends"`
}

// DividendRecord is a recent yield payment shown against a position.
type DividendRecord struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
	Type  string          `json:"type"`
}

// HistoryEntry is one row of the wallet movement history.
type HistoryEntry struct {
	Id          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	Method      string          `json:"method,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// WalletHistory splits recent movements by direction.
type WalletHistory struct {
	Deposits    []HistoryEntry `json:"deposits"`
	Withdrawals []HistoryEntry `json:"withdrawals"`
}

// ReferralEntry is a direct (level-1) referral of the requesting user.
type ReferralEntry struct {
	UserId    string    `json:"userId"`
	Name      string    `json:"name"`
	KycStatus string    `json:"kycStatus"`
	JoinedAt  time.Time `json:"joinedAt"`
}
