package apikey

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, key *APIKey) (uuid.UUID, error)
	// FindActiveForOwner returns the oldest active key of the owner, or
	// ierr.ErrAPIKeyNotFound when the owner has none.
	FindActiveForOwner(ctx context.Context, ownerID uuid.UUID) (*APIKey, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]APIKey, error)
	// Resolve looks a presented key value up joined against its owning
	// account, filtered to active status. Unknown and revoked values both
	// come back as ierr.ErrAPIKeyNotFound; callers cannot tell them apart.
	Resolve(ctx context.Context, keyValue string) (*ResolvedKey, error)
	// Regenerate overwrites value and label of the given key row in place.
	// The row id is unchanged; the previous value stops resolving the moment
	// the update commits.
	Regenerate(ctx context.Context, keyID uuid.UUID, newValue, newLabel string) error
	Revoke(ctx context.Context, keyID, ownerID uuid.UUID) error
}
