package database

import (
	"context"
	"errors"
	"testing"

	"grao-wallet-go/internal/models"
	"grao-wallet-go/internal/store"
)

func TestCreateUser_GeneratesReferralCode(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user, err := service.CreateUser(ctx, store.CreateUserParams{
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if len(user.ReferralCode) != 8 {
		t.Errorf("Expected 8-char referral code, got %q", user.ReferralCode)
	}
	if user.KycStatus != models.KycNotStarted {
		t.Errorf("Expected kyc not_started, got %s", user.KycStatus)
	}
	if !user.Balance.IsZero() {
		t.Errorf("Expected zero starting balance, got %s", user.Balance.String())
	}

	byCode, err := service.GetUserByReferralCode(ctx, user.ReferralCode)
	if err != nil {
		t.Fatalf("GetUserByReferralCode failed: %v", err)
	}
	if byCode.Id != user.Id {
		t.Errorf("Referral code lookup returned wrong user")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	params := store.CreateUserParams{
		Name:         "Maria Silva",
		Email:        "maria@example.com",
		PasswordHash: "hash",
	}
	if _, err := service.CreateUser(ctx, params); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := service.CreateUser(ctx, params)
	if !errors.Is(err, store.ErrEmailTaken) {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestListReferrals_DirectOnly(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	root, err := service.CreateUser(ctx, store.CreateUserParams{
		Name: "Root", Email: "root@example.com", PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	child, err := service.CreateUser(ctx, store.CreateUserParams{
		Name: "Child", Email: "child@example.com", PasswordHash: "hash",
		ReferredBy: root.Id,
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	// Grandchild is referred by child, not root.
	if _, err := service.CreateUser(ctx, store.CreateUserParams{
		Name: "Grandchild", Email: "grandchild@example.com", PasswordHash: "hash",
		ReferredBy: child.Id,
	}); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	referrals, err := service.ListReferrals(ctx, root.Id)
	if err != nil {
		t.Fatalf("ListReferrals failed: %v", err)
	}
	if len(referrals) != 1 {
		t.Fatalf("Expected 1 direct referral, got %d", len(referrals))
	}
	if referrals[0].UserId != child.Id {
		t.Errorf("Expected referral %s, got %s", child.Id, referrals[0].UserId)
	}
}

func TestSetKycStatus(t *testing.T) {
	service, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestUser(t, service, "0", models.KycNotStarted)

	if err := service.SetKycStatus(ctx, user.Id, models.KycApproved); err != nil {
		t.Fatalf("SetKycStatus failed: %v", err)
	}
	updated, err := service.GetUserById(ctx, user.Id)
	if err != nil {
		t.Fatalf("GetUserById failed: %v", err)
	}
	if updated.KycStatus != models.KycApproved {
		t.Errorf("Expected approved, got %s", updated.KycStatus)
	}

	if err := service.SetKycStatus(ctx, user.Id, "bogus"); err == nil {
		t.Error("Expected error for invalid status")
	}
	if err := service.SetKycStatus(ctx, "missing", models.KycApproved); !errors.Is(err, store.ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}
