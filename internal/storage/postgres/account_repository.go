package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type AccountRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAccountRepository(db *pgxpool.Pool, logger *zap.Logger) *AccountRepository {
	return &AccountRepository{
		db:     db,
		logger: logger.Named("AccountRepository"),
	}
}

var _ account.Repository = (*AccountRepository)(nil)

// CreateWithKey inserts the account row and its default key in one
// transaction, so registration can never leave an account without a key.
func (r *AccountRepository) CreateWithKey(ctx context.Context, acct *account.Account, keyValue, keyLabel string) (uuid.UUID, uuid.UUID, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Error("Failed to begin registration transaction", zap.Error(err))
		return uuid.Nil, uuid.Nil, fmt.Errorf("db error beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var accountID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, acct.Name, acct.Email, acct.PasswordHash, acct.Role).Scan(&accountID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Account insert hit unique constraint", zap.String("email", acct.Email))
			return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %w", ierr.ErrConflict, ierr.ErrEmailTaken)
		}
		r.logger.Error("Failed to insert account", zap.Error(err))
		return uuid.Nil, uuid.Nil, fmt.Errorf("db error creating account: %w", err)
	}

	var keyID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO api_keys (owner_id, key_value, label, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, accountID, keyValue, keyLabel, apikey.StatusActive).Scan(&keyID)
	if err != nil {
		if isUniqueViolation(err) {
			// A 192-bit collision. Treat it as a hard failure; the caller's
			// account insert rolls back with it.
			r.logger.Error("API key value collided on registration")
			return uuid.Nil, uuid.Nil, fmt.Errorf("%w: api key value collision", ierr.ErrConflict)
		}
		r.logger.Error("Failed to insert default api key", zap.Error(err))
		return uuid.Nil, uuid.Nil, fmt.Errorf("db error creating default api key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit registration transaction", zap.Error(err))
		return uuid.Nil, uuid.Nil, fmt.Errorf("db error committing registration: %w", err)
	}

	r.logger.Info("Account created with default key",
		zap.String("account_id", accountID.String()),
		zap.String("key_id", keyID.String()),
	)
	return accountID, keyID, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	// Exact, case-sensitive match; the unique index uses the same collation.
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts
		WHERE email = $1
	`, email)

	var acct account.Account
	err := row.Scan(&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.Role, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrAccountNotFound
		}
		r.logger.Error("Failed to find account by email", zap.Error(err))
		return nil, fmt.Errorf("db error finding account: %w", err)
	}

	return &acct, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts
		WHERE id = $1
	`, id)

	var acct account.Account
	err := row.Scan(&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.Role, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrAccountNotFound
		}
		r.logger.Error("Failed to find account by id", zap.String("id", id.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding account: %w", err)
	}

	return &acct, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]account.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, email, password_hash, role, created_at
		FROM accounts
		ORDER BY created_at DESC
	`)
	if err != nil {
		r.logger.Error("Failed to list accounts", zap.Error(err))
		return nil, fmt.Errorf("db error listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []account.Account
	for rows.Next() {
		var acct account.Account
		if err := rows.Scan(&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.Role, &acct.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning account: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating accounts: %w", err)
	}

	return accounts, nil
}
