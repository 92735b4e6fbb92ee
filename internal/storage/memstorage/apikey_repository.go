package memstorage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
)

type APIKeyRepository struct {
	accounts func(id uuid.UUID) (*account.Account, bool)

	mu      sync.RWMutex
	keys    map[uuid.UUID]*apikey.APIKey
	byValue map[string]uuid.UUID
}

// NewAPIKeyRepository builds the key store; wire it to its account
// repository with Bind before resolving.
func NewAPIKeyRepository() *APIKeyRepository {
	return &APIKeyRepository{
		keys:    make(map[uuid.UUID]*apikey.APIKey),
		byValue: make(map[string]uuid.UUID),
	}
}

// Bind gives Resolve access to account rows for the join.
func (r *APIKeyRepository) Bind(accounts *AccountRepository) {
	r.accounts = func(id uuid.UUID) (*account.Account, bool) {
		acct, err := accounts.FindByID(context.Background(), id)
		if err != nil {
			return nil, false
		}
		return acct, true
	}
}

var _ apikey.Repository = (*APIKeyRepository)(nil)

func (r *APIKeyRepository) insert(key *apikey.APIKey) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byValue[key.KeyValue]; exists {
		return uuid.Nil, ierr.ErrConflict
	}

	stored := *key
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	r.keys[stored.ID] = &stored
	r.byValue[stored.KeyValue] = stored.ID
	return stored.ID, nil
}

func (r *APIKeyRepository) Create(ctx context.Context, key *apikey.APIKey) (uuid.UUID, error) {
	return r.insert(key)
}

func (r *APIKeyRepository) FindActiveForOwner(ctx context.Context, ownerID uuid.UUID) (*apikey.APIKey, error) {
	keys, err := r.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		if keys[i].Status == apikey.StatusActive {
			return &keys[i], nil
		}
	}
	return nil, ierr.ErrAPIKeyNotFound
}

func (r *APIKeyRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]apikey.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []apikey.APIKey
	for _, key := range r.keys {
		if key.OwnerID == ownerID {
			keys = append(keys, *key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].CreatedAt.Equal(keys[j].CreatedAt) {
			return keys[i].ID.String() < keys[j].ID.String()
		}
		return keys[i].CreatedAt.Before(keys[j].CreatedAt)
	})
	return keys, nil
}

func (r *APIKeyRepository) Resolve(ctx context.Context, keyValue string) (*apikey.ResolvedKey, error) {
	r.mu.RLock()
	id, ok := r.byValue[keyValue]
	if !ok {
		r.mu.RUnlock()
		return nil, ierr.ErrAPIKeyNotFound
	}
	key := *r.keys[id]
	r.mu.RUnlock()

	if key.Status != apikey.StatusActive {
		return nil, ierr.ErrAPIKeyNotFound
	}

	acct, ok := r.accounts(key.OwnerID)
	if !ok {
		return nil, ierr.ErrAPIKeyNotFound
	}

	return &apikey.ResolvedKey{
		Key:       key,
		OwnerID:   acct.ID,
		OwnerName: acct.Name,
		Role:      acct.Role,
	}, nil
}

func (r *APIKeyRepository) Regenerate(ctx context.Context, keyID uuid.UUID, newValue, newLabel string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[keyID]
	if !ok {
		return ierr.ErrAPIKeyNotFound
	}
	if existing, taken := r.byValue[newValue]; taken && existing != keyID {
		return ierr.ErrConflict
	}

	delete(r.byValue, key.KeyValue)
	key.KeyValue = newValue
	key.Label = newLabel
	r.byValue[newValue] = keyID
	return nil
}

func (r *APIKeyRepository) Revoke(ctx context.Context, keyID, ownerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.keys[keyID]
	if !ok || key.OwnerID != ownerID {
		return ierr.ErrAPIKeyNotFound
	}
	key.Status = apikey.StatusRevoked
	return nil
}
