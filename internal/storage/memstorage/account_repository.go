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

// AccountRepository is the in-memory twin of the postgres implementation.
// It shares the key map with an APIKeyRepository so the registration
// transaction can write both under one lock, mirroring the real
// transactional behavior.
type AccountRepository struct {
	keys *APIKeyRepository

	mu       sync.RWMutex
	accounts map[uuid.UUID]*account.Account
	byEmail  map[string]uuid.UUID
}

func NewAccountRepository(keys *APIKeyRepository) *AccountRepository {
	return &AccountRepository{
		keys:     keys,
		accounts: make(map[uuid.UUID]*account.Account),
		byEmail:  make(map[string]uuid.UUID),
	}
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) CreateWithKey(ctx context.Context, acct *account.Account, keyValue, keyLabel string) (uuid.UUID, uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[acct.Email]; taken {
		return uuid.Nil, uuid.Nil, ierr.ErrConflict
	}

	stored := *acct
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().UTC()
	r.accounts[stored.ID] = &stored
	r.byEmail[stored.Email] = stored.ID

	keyID, err := r.keys.insert(&apikey.APIKey{
		OwnerID:  stored.ID,
		KeyValue: keyValue,
		Label:    keyLabel,
		Status:   apikey.StatusActive,
	})
	if err != nil {
		delete(r.accounts, stored.ID)
		delete(r.byEmail, stored.Email)
		return uuid.Nil, uuid.Nil, err
	}

	return stored.ID, keyID, nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, ierr.ErrAccountNotFound
	}
	acctCopy := *r.accounts[id]
	return &acctCopy, nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acct, ok := r.accounts[id]
	if !ok {
		return nil, ierr.ErrAccountNotFound
	}
	acctCopy := *acct
	return &acctCopy, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]account.Account, 0, len(r.accounts))
	for _, acct := range r.accounts {
		accounts = append(accounts, *acct)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].CreatedAt.After(accounts[j].CreatedAt)
	})
	return accounts, nil
}

// Count supports test assertions about write-free failure paths.
func (r *AccountRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.accounts)
}
