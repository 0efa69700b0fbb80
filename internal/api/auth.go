package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"grao-wallet-go/internal/auth"
	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

// ErrInvalidCredentials is deliberately blind to whether the email or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Register creates a user account, resolves an optional referral code and
// returns a signed session token. An unknown referral code is ignored
// rather than rejected so a mistyped code does not block signup.
func (s *LedgerService) Register(ctx context.Context, request *models.RegisterRequest) (*models.AuthResult, error) {
	name := strings.TrimSpace(request.Name)
	email := strings.ToLower(strings.TrimSpace(request.Email))

	if name == "" || email == "" {
		return nil, invalidInput("name and email are required")
	}
	if !strings.Contains(email, "@") {
		return nil, invalidInput("invalid email address")
	}
	if len(request.Password) < 8 {
		return nil, invalidInput("password must be at least 8 characters")
	}

	referredBy := ""
	if code := strings.TrimSpace(request.ReferralCode); code != "" {
		referrer, err := s.db.GetUserByReferralCode(ctx, strings.ToUpper(code))
		switch {
		case err == nil:
			referredBy = referrer.Id
		case errors.Is(err, store.ErrUserNotFound):
			zap.L().Info("ignoring unknown referral code", zap.String("code", code))
		default:
			return nil, fmt.Errorf("cannot resolve referral code: %w", err)
		}
	}

	passwordHash, err := auth.HashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("cannot hash password: %w", err)
	}

	user, err := s.db.CreateUser(ctx, store.CreateUserParams{
		Name:         name,
		Email:        email,
		Cpf:          request.Cpf,
		PasswordHash: passwordHash,
		ReferredBy:   referredBy,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user.Id)
	if err != nil {
		return nil, fmt.Errorf("cannot issue token: %w", err)
	}

	return &models.AuthResult{
		UserId:       user.Id,
		Token:        token,
		ReferralCode: user.ReferralCode,
	}, nil
}

// Login verifies credentials and returns a signed session token.
func (s *LedgerService) Login(ctx context.Context, request *models.LoginRequest) (*models.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(request.Email))

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, request.Password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Id)
	if err != nil {
		return nil, fmt.Errorf("cannot issue token: %w", err)
	}

	return &models.AuthResult{
		UserId:       user.Id,
		Token:        token,
		ReferralCode: user.ReferralCode,
	}, nil
}
