package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type APIKeyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAPIKeyRepository(db *pgxpool.Pool, logger *zap.Logger) *APIKeyRepository {
	return &APIKeyRepository{
		db:     db,
		logger: logger.Named("APIKeyRepository"),
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	var insertedID uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO api_keys (owner_id, key_value, label, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, key.OwnerID, key.KeyValue, key.Label, key.Status).Scan(&insertedID)

	if err != nil {
		if isUniqueViolation(err) {
			// Either the 192-bit value collided or the owner is gone; both
			// are hard errors, nothing is overwritten.
			r.logger.Error("API key insert hit unique constraint", zap.String("owner_id", key.OwnerID.String()))
			return uuid.Nil, fmt.Errorf("%w: api key value collision", ierr.ErrConflict)
		}
		r.logger.Error("Failed to create api key", zap.Error(err))
		return uuid.Nil, fmt.Errorf("db error creating api key: %w", err)
	}

	return insertedID, nil
}

func (r *APIKeyRepository) FindActiveForOwner(ctx context.Context, ownerID uuid.UUID) (*apikey.APIKey, error) {
	// created_at, id breaks ties: stable order across repeated calls.
	row := r.db.QueryRow(ctx, `
		SELECT id, owner_id, key_value, label, status, created_at
		FROM api_keys
		WHERE owner_id = $1 AND status = $2
		ORDER BY created_at, id
		LIMIT 1
	`, ownerID, apikey.StatusActive)

	var key apikey.APIKey
	err := row.Scan(&key.ID, &key.OwnerID, &key.KeyValue, &key.Label, &key.Status, &key.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to find active key", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error finding active api key: %w", err)
	}

	return &key, nil
}

func (r *APIKeyRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]apikey.APIKey, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, owner_id, key_value, label, status, created_at
		FROM api_keys
		WHERE owner_id = $1
		ORDER BY created_at, id
	`, ownerID)
	if err != nil {
		r.logger.Error("Failed to list api keys", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("db error listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []apikey.APIKey
	for rows.Next() {
		var key apikey.APIKey
		if err := rows.Scan(&key.ID, &key.OwnerID, &key.KeyValue, &key.Label, &key.Status, &key.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error scanning api key: %w", err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error iterating api keys: %w", err)
	}

	return keys, nil
}

func (r *APIKeyRepository) Resolve(ctx context.Context, keyValue string) (*apikey.ResolvedKey, error) {
	// Single joined lookup, filtered to active rows. Unknown and revoked
	// values fall into the same no-rows branch on purpose.
	row := r.db.QueryRow(ctx, `
		SELECT k.id, k.owner_id, k.key_value, k.label, k.status, k.created_at,
		       a.id, a.name, a.role
		FROM api_keys k
		JOIN accounts a ON a.id = k.owner_id
		WHERE k.key_value = $1 AND k.status = $2
	`, keyValue, apikey.StatusActive)

	var resolved apikey.ResolvedKey
	err := row.Scan(
		&resolved.Key.ID,
		&resolved.Key.OwnerID,
		&resolved.Key.KeyValue,
		&resolved.Key.Label,
		&resolved.Key.Status,
		&resolved.Key.CreatedAt,
		&resolved.OwnerID,
		&resolved.OwnerName,
		&resolved.Role,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrAPIKeyNotFound
		}
		r.logger.Error("Failed to resolve api key", zap.Error(err))
		return nil, fmt.Errorf("db error resolving api key: %w", err)
	}

	return &resolved, nil
}

func (r *APIKeyRepository) Regenerate(ctx context.Context, keyID uuid.UUID, newValue, newLabel string) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE api_keys
		SET key_value = $1, label = $2
		WHERE id = $3
	`, newValue, newLabel, keyID)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Error("Regenerated api key value collided", zap.String("key_id", keyID.String()))
			return fmt.Errorf("%w: api key value collision", ierr.ErrConflict)
		}
		r.logger.Error("Failed to regenerate api key", zap.String("key_id", keyID.String()), zap.Error(err))
		return fmt.Errorf("db error regenerating api key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrAPIKeyNotFound
	}

	return nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, keyID, ownerID uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE api_keys
		SET status = $1
		WHERE id = $2 AND owner_id = $3
	`, apikey.StatusRevoked, keyID, ownerID)
	if err != nil {
		r.logger.Error("Failed to revoke api key", zap.String("key_id", keyID.String()), zap.Error(err))
		return fmt.Errorf("db error revoking api key: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ierr.ErrAPIKeyNotFound
	}

	return nil
}
