package store

import (
	"context"
	"errors"
	"time"

	"grao-wallet-go/internal/models"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations. Handlers map
// these onto HTTP statuses; everything else is a server-side failure.
var (
	ErrDuplicateTransaction   = errors.New("duplicate transaction")
	ErrConcurrentModification = errors.New("concurrent modification detected")
	ErrUserNotFound           = errors.New("user not found")
	ErrPlanNotFound           = errors.New("plan not found")
	ErrTransactionNotFound    = errors.New("transaction not found")
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrBelowMinimum           = errors.New("amount below configured minimum")
	ErrPlanInactive           = errors.New("plan is not active")
	ErrPlanCapExceeded        = errors.New("plan funding cap exceeded")
	ErrKycNotApproved         = errors.New("identity verification not approved")
	ErrEmailTaken             = errors.New("email already registered")
	ErrAlreadySettled         = errors.New("transaction already settled")
)

// CreateUserParams contains the parameters for registering a user.
type CreateUserParams struct {
	Name         string
	Email        string
	Cpf          string
	PasswordHash string
	ReferralCode string // the new user's own code
	ReferredBy   string // referring user's id, empty if none
}

// CreateDepositParams opens a pending deposit transaction. No balance is
// touched until settlement.
type CreateDepositParams struct {
	UserId        string
	Amount        decimal.Decimal
	PaymentMethod string
	Description   string
}

// PlaceInvestmentParams moves balance into a plan position atomically.
type PlaceInvestmentParams struct {
	UserId string
	PlanId string
	Amount decimal.Decimal
}

// PlacementResult reports the rows created by an investment placement and
// the authoritative post-debit balance.
type PlacementResult struct {
	InvestmentId  string
	TransactionId string
	NewBalance    decimal.Decimal
}

// WithdrawalParams reserves balance (amount + fee) pending payout.
type WithdrawalParams struct {
	UserId     string
	Amount     decimal.Decimal
	Fee        decimal.Decimal
	PixKey     string
	PixKeyType string
	MinAmount  decimal.Decimal
}

// WithdrawalResult reports the reservation and the post-debit balance.
type WithdrawalResult struct {
	TransactionId string
	NewBalance    decimal.Decimal
}

// SettlementResult reports a deposit settlement. AlreadySettled is true when
// the credit had happened before this call; NewBalance is only meaningful
// when the credit happened now.
type SettlementResult struct {
	TransactionId  string
	AlreadySettled bool
	NewBalance     decimal.Decimal
}

// ReturnParams records a yield distribution against a position.
type ReturnParams struct {
	InvestmentId string
	Amount       decimal.Decimal
	ReturnType   string
	PaidAt       time.Time
}

// LedgerStore defines the contract the HTTP layer and the webhook receiver
// program against. The SQLite service in internal/database is the only
// production implementation.
type LedgerStore interface {
	// --- Users ---
	CreateUser(ctx context.Context, params CreateUserParams) (*models.User, error)
	GetUserById(ctx context.Context, userId string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByReferralCode(ctx context.Context, code string) (*models.User, error)
	ListReferrals(ctx context.Context, userId string) ([]models.ReferralEntry, error)
	SetKycStatus(ctx context.Context, userId, status string) error

	// --- Plans ---
	GetPlan(ctx context.Context, planId string) (*models.InvestmentPlan, error)
	ListActivePlans(ctx context.Context) ([]models.InvestmentPlan, error)
	SeedPlan(ctx context.Context, plan models.InvestmentPlan) error

	// --- Configuration ---
	GetAppConfig(ctx context.Context) (*models.AppConfig, error)

	// --- Deposits & settlement ---
	CreateDepositTransaction(ctx context.Context, params CreateDepositParams) (*models.Transaction, error)
	AttachExternalId(ctx context.Context, transactionId, externalId string) error
	FindDepositByExternalId(ctx context.Context, externalId, userId string) (*models.Transaction, error)
	FindTransactionByExternalId(ctx context.Context, externalId string) (*models.Transaction, error)
	SettleDeposit(ctx context.Context, transactionId string) (*SettlementResult, error)

	// --- Investments ---
	PlaceInvestment(ctx context.Context, params PlaceInvestmentParams) (*PlacementResult, error)
	RecordInvestmentReturn(ctx context.Context, params ReturnParams) error

	// --- Withdrawals ---
	RequestWithdrawal(ctx context.Context, params WithdrawalParams) (*WithdrawalResult, error)
	CompleteWithdrawal(ctx context.Context, transactionId string) error
	FailWithdrawal(ctx context.Context, transactionId, status string) error

	// --- Views ---
	GetWalletSummary(ctx context.Context, userId string) (*models.WalletSummary, error)
	GetWalletHistory(ctx context.Context, userId string, limit int) (*models.WalletHistory, error)

	// --- Lifecycle ---
	Close()
}
