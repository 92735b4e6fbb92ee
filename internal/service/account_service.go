package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/util"
)

type AccountService struct {
	accounts   account.Repository
	keys       apikey.Repository
	bcryptCost int
	dummyHash  []byte
	logger     *zap.Logger
}

func NewAccountService(accounts account.Repository, keys apikey.Repository, logger *zap.Logger) *AccountService {
	// Compared against when the email is unknown, so that the miss and the
	// wrong-password path cost the same bcrypt work. Generation only fails
	// on an out-of-range cost; without the hash the equalizer is gone, so
	// refuse to start.
	dummyHash, err := bcrypt.GenerateFromPassword([]byte("login-timing-equalizer"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("account service: dummy hash generation failed: %v", err))
	}

	return &AccountService{
		accounts:   accounts,
		keys:       keys,
		bcryptCost: bcrypt.DefaultCost,
		dummyHash:  dummyHash,
		logger:     logger.Named("AccountService"),
	}
}

// Register creates a developer account together with its default API key.
// Both rows are written in one transaction; a taken email fails with
// ierr.ErrConflict before anything is written.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*account.Account, string, error) {
	s.logger.Info("Registering new account", zap.String("email", email))

	_, err := s.accounts.FindByEmail(ctx, email)
	if err == nil {
		s.logger.Warn("Registration with already used email", zap.String("email", email))
		return nil, "", fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrEmailTaken)
	}
	if !errors.Is(err, ierr.ErrAccountNotFound) {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, "", fmt.Errorf("repository error checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, "", fmt.Errorf("%w: password hashing failed: %v", ierr.ErrInternalServer, err)
	}

	keyValue, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate default api key", zap.Error(err))
		return nil, "", fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	acct := &account.Account{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         account.RoleDeveloper,
	}

	accountID, _, err := s.accounts.CreateWithKey(ctx, acct, keyValue, apikey.LabelDefault)
	if err != nil {
		// The unique index on email is the real guard against a concurrent
		// registration slipping between the check above and this insert.
		if errors.Is(err, ierr.ErrConflict) {
			return nil, "", fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrEmailTaken)
		}
		s.logger.Error("Failed to create account with default key", zap.Error(err))
		return nil, "", fmt.Errorf("repository error creating account: %w", err)
	}
	acct.ID = accountID

	s.logger.Info("Account registered", zap.String("id", accountID.String()), zap.String("email", email))
	return acct, keyValue, nil
}

// Login authenticates by email and password and guarantees the caller
// leaves with a resolvable key: the first active key is reused, or a new
// one is minted when none exists.
func (s *AccountService) Login(ctx context.Context, email, password string) (*account.Account, string, error) {
	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ierr.ErrAccountNotFound) {
			// Burn the same bcrypt work as the known-email path; the two
			// failures must be indistinguishable by timing and by shape.
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Info("Login attempt for unknown email", zap.String("email", email))
			return nil, "", ierr.ErrInvalidCredentials
		}
		s.logger.Error("Failed to look up account", zap.Error(err))
		return nil, "", fmt.Errorf("repository error finding account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("Login attempt with wrong password", zap.String("email", email))
		return nil, "", ierr.ErrInvalidCredentials
	}

	key, err := s.keys.FindActiveForOwner(ctx, acct.ID)
	if err == nil {
		return acct, key.KeyValue, nil
	}
	if !errors.Is(err, ierr.ErrAPIKeyNotFound) {
		s.logger.Error("Failed to look up active key", zap.String("account_id", acct.ID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("repository error finding active key: %w", err)
	}

	value, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate replacement key on login", zap.Error(err))
		return nil, "", fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	newKey := &apikey.APIKey{
		OwnerID:  acct.ID,
		KeyValue: value,
		Label:    apikey.LabelAutoCreated,
		Status:   apikey.StatusActive,
	}
	if _, err := s.keys.Create(ctx, newKey); err != nil {
		s.logger.Error("Failed to mint key on login", zap.String("account_id", acct.ID.String()), zap.Error(err))
		return nil, "", fmt.Errorf("repository error creating api key: %w", err)
	}

	s.logger.Info("Minted key for account without one", zap.String("account_id", acct.ID.String()))
	return acct, value, nil
}

// ListAccounts returns every account, newest first. Admin-gated at the
// route level.
func (s *AccountService) ListAccounts(ctx context.Context) ([]account.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("repository error listing accounts: %w", err)
	}
	return accounts, nil
}
