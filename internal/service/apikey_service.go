package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/util"
)

type APIKeyService struct {
	repo   apikey.Repository
	logger *zap.Logger
}

func NewAPIKeyService(repo apikey.Repository, logger *zap.Logger) *APIKeyService {
	return &APIKeyService{
		repo:   repo,
		logger: logger.Named("APIKeyService"),
	}
}

// Issue mints a fresh key value and inserts it as an active key of the
// given owner.
func (s *APIKeyService) Issue(ctx context.Context, ownerID uuid.UUID, label string) (*apikey.APIKey, error) {
	value, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate api key value", zap.Error(err))
		return nil, fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	newKey := &apikey.APIKey{
		OwnerID:  ownerID,
		KeyValue: value,
		Label:    label,
		Status:   apikey.StatusActive,
	}

	insertedID, err := s.repo.Create(ctx, newKey)
	if err != nil {
		s.logger.Error("Failed to save new api key", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error creating api key: %w", err)
	}
	newKey.ID = insertedID

	s.logger.Info("API key issued", zap.String("id", insertedID.String()), zap.String("owner_id", ownerID.String()))
	return newKey, nil
}

// FindActiveForOwner returns the owner's first active key, or
// ierr.ErrAPIKeyNotFound when there is none. The ordering is stable across
// repeated calls without intervening writes, nothing more.
func (s *APIKeyService) FindActiveForOwner(ctx context.Context, ownerID uuid.UUID) (*apikey.APIKey, error) {
	return s.repo.FindActiveForOwner(ctx, ownerID)
}

// Resolve maps a presented bearer value to the key row and owning account.
// An empty value, an unknown value and a revoked key all fail with
// ierr.ErrAPIKeyNotFound: the caller must not be able to distinguish them,
// otherwise the endpoint becomes a key-enumeration oracle.
func (s *APIKeyService) Resolve(ctx context.Context, keyValue string) (*apikey.ResolvedKey, error) {
	if keyValue == "" {
		return nil, ierr.ErrAPIKeyNotFound
	}

	resolved, err := s.repo.Resolve(ctx, keyValue)
	if err != nil {
		if errors.Is(err, ierr.ErrAPIKeyNotFound) {
			return nil, ierr.ErrAPIKeyNotFound
		}
		s.logger.Error("Failed to resolve api key", zap.Error(err))
		return nil, fmt.Errorf("repository error resolving api key: %w", err)
	}

	return resolved, nil
}

// Regenerate replaces value and label of the given key row in place and
// returns the new value. The old value is invalid the instant the update
// lands; there is no window where both resolve.
func (s *APIKeyService) Regenerate(ctx context.Context, keyID uuid.UUID, newLabel string) (string, error) {
	if newLabel == "" {
		newLabel = apikey.LabelRegenerated
	}

	value, err := util.GenerateAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate replacement api key value", zap.Error(err))
		return "", fmt.Errorf("%w: failed generating key: %v", ierr.ErrInternalServer, err)
	}

	if err := s.repo.Regenerate(ctx, keyID, value, newLabel); err != nil {
		s.logger.Error("Failed to regenerate api key", zap.String("key_id", keyID.String()), zap.Error(err))
		return "", fmt.Errorf("repository error regenerating api key %s: %w", keyID, err)
	}

	s.logger.Info("API key regenerated", zap.String("key_id", keyID.String()))
	return value, nil
}

func (s *APIKeyService) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]apikey.APIKey, error) {
	keys, err := s.repo.ListForOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("Failed to list api keys", zap.String("owner_id", ownerID.String()), zap.Error(err))
		return nil, fmt.Errorf("repository error listing api keys: %w", err)
	}
	return keys, nil
}

// Revoke flips the key to revoked status. With no caching anywhere the
// revocation is visible on the very next request.
func (s *APIKeyService) Revoke(ctx context.Context, keyID, ownerID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, keyID, ownerID); err != nil {
		s.logger.Error("Failed to revoke api key", zap.String("key_id", keyID.String()), zap.Error(err))
		return fmt.Errorf("repository error revoking api key %s: %w", keyID, err)
	}
	s.logger.Info("API key revoked", zap.String("key_id", keyID.String()))
	return nil
}
