package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// KYC statuses a user can be in. Withdrawals are gated on KycApproved.
const (
	KycNotStarted = "not_started"
	KycPending    = "pending"
	KycApproved   = "approved"
	KycRejected   = "rejected"
)

// Transaction types recorded in the ledger.
const (
	TxTypeDeposit    = "deposit"
	TxTypeWithdraw   = "withdraw"
	TxTypeInvestment = "investment"
	TxTypeReturn     = "return"
)

// Transaction statuses. A transaction is created pending and moves to
// completed exactly once; it never moves backward.
const (
	TxStatusPending   = "pending"
	TxStatusCompleted = "completed"
	TxStatusFailed    = "failed"
)

// Investment position statuses.
const (
	InvestmentActive    = "active"
	InvestmentCompleted = "completed"
)

// User represents a platform user with their financial aggregates.
// Balance, TotalInvested and TotalReturns are only ever mutated inside
// a locked transaction scope in the database package.
type User struct {
	Id            string          `db:"id"`
	Name          string          `db:"name"`
	Email         string          `db:"email"`
	Cpf           string          `db:"cpf"`
	PasswordHash  string          `db:"password_hash"`
	Balance       decimal.Decimal `db:"balance"`
	TotalInvested decimal.Decimal `db:"total_invested"`
	TotalReturns  decimal.Decimal `db:"total_returns"`
	KycStatus     string          `db:"kyc_status"`
	ReferralCode  string          `db:"referral_code"`
	ReferredBy    string          `db:"referred_by"`
	Version       int64           `db:"version"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// InvestmentPlan is an investable product. TotalInvested is the plan-wide
// aggregate across all users; when MaxInvestmentLimit is set the placer
// keeps TotalInvested <= MaxInvestmentLimit.
type InvestmentPlan struct {
	Id                 string           `db:"id"`
	Name               string           `db:"name"`
	Category           string           `db:"category"`
	MinInvestment      decimal.Decimal  `db:"min_investment"`
	MaxInvestmentLimit *decimal.Decimal `db:"max_investment_limit"`
	TotalInvested      decimal.Decimal  `db:"total_invested"`
	MonthlyReturnRate  decimal.Decimal  `db:"monthly_return_rate"`
	DurationMonths     int              `db:"duration_months"`
	RiskLevel          string           `db:"risk_level"`
	IsActive           bool             `db:"is_active"`
	Version            int64            `db:"version"`
	CreatedAt          time.Time        `db:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at"`
}

// UserInvestment is a user's position in a plan. Amount is immutable after
// creation; TotalReturns accumulates as yield is distributed.
type UserInvestment struct {
	Id           string          `db:"id"`
	UserId       string          `db:"user_id"`
	PlanId       string          `db:"plan_id"`
	Amount       decimal.Decimal `db:"amount"`
	Status       string          `db:"status"`
	TotalReturns decimal.Decimal `db:"total_returns"`
	StartDate    time.Time       `db:"start_date"`
	EndDate      *time.Time      `db:"end_date"`
	CreatedAt    time.Time       `db:"created_at"`
}

// Transaction is the append-mostly audit and settlement record.
type Transaction struct {
	Id                    string          `db:"id"`
	UserId                string          `db:"user_id"`
	InvestmentId          string          `db:"investment_id"`
	Type                  string          `db:"type"`
	Amount                decimal.Decimal `db:"amount"`
	Status                string          `db:"status"`
	Description           string          `db:"description"`
	PaymentMethod         string          `db:"payment_method"`
	PixKey                string          `db:"pix_key"`
	PixKeyType            string          `db:"pix_key_type"`
	ExternalTransactionId string          `db:"external_transaction_id"`
	Metadata              string          `db:"metadata"`
	CreatedAt             time.Time       `db:"created_at"`
	CompletedAt           *time.Time      `db:"completed_at"`
}

// InvestmentReturn is a distributed yield record against a position,
// inserted by the (external) distribution process.
type InvestmentReturn struct {
	Id           string          `db:"id"`
	InvestmentId string          `db:"investment_id"`
	Amount       decimal.Decimal `db:"amount"`
	ReturnType   string          `db:"return_type"`
	PaidAt       time.Time       `db:"paid_at"`
}

// AppConfig is the platform business configuration row. Defaults are
// supplied by the store when the row is missing.
type AppConfig struct {
	ServiceFeePercent decimal.Decimal `db:"service_fee_percent"`
	MinWithdrawAmount decimal.Decimal `db:"min_withdraw_amount"`
	MinDepositAmount  decimal.Decimal `db:"min_deposit_amount"`
	PostbackUrl       string          `db:"postback_url"`
}
