package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/domain/apikey"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/storage/memstorage"
	"github.com/bukudev/catalog-api/internal/util"
)

func newTestStores(t *testing.T) (*memstorage.AccountRepository, *memstorage.APIKeyRepository) {
	t.Helper()
	keys := memstorage.NewAPIKeyRepository()
	accounts := memstorage.NewAccountRepository(keys)
	keys.Bind(accounts)
	return accounts, keys
}

func seedAccount(t *testing.T, accounts *memstorage.AccountRepository, email string, role account.Role) (uuid.UUID, string) {
	t.Helper()
	keyValue, err := util.GenerateAPIKey()
	require.NoError(t, err)
	acctID, _, err := accounts.CreateWithKey(context.Background(), &account.Account{
		Name:         "Test Owner",
		Email:        email,
		PasswordHash: "irrelevant",
		Role:         role,
	}, keyValue, apikey.LabelDefault)
	require.NoError(t, err)
	return acctID, keyValue
}

func TestAPIKeyServiceResolve(t *testing.T) {
	accounts, keys := newTestStores(t)
	svc := NewAPIKeyService(keys, zap.NewNop())
	ctx := context.Background()

	acctID, keyValue := seedAccount(t, accounts, "owner@example.com", account.RoleDeveloper)

	t.Run("valid key resolves to its owner", func(t *testing.T) {
		resolved, err := svc.Resolve(ctx, keyValue)
		require.NoError(t, err)
		assert.Equal(t, acctID, resolved.OwnerID)
		assert.Equal(t, "Test Owner", resolved.OwnerName)
		assert.Equal(t, account.RoleDeveloper, resolved.Role)
		assert.Equal(t, keyValue, resolved.Key.KeyValue)
	})

	t.Run("empty value fails without touching the store", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "")
		assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)
	})

	t.Run("unknown value fails the same way", func(t *testing.T) {
		_, err := svc.Resolve(ctx, "sk_000000000000000000000000000000000000000000000000")
		assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)
	})

	t.Run("revoked key fails the same way", func(t *testing.T) {
		resolved, err := svc.Resolve(ctx, keyValue)
		require.NoError(t, err)

		require.NoError(t, svc.Revoke(ctx, resolved.Key.ID, acctID))

		_, err = svc.Resolve(ctx, keyValue)
		assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)
	})
}

func TestAPIKeyServiceIssueAndList(t *testing.T) {
	accounts, keys := newTestStores(t)
	svc := NewAPIKeyService(keys, zap.NewNop())
	ctx := context.Background()

	acctID, _ := seedAccount(t, accounts, "owner@example.com", account.RoleDeveloper)

	issued, err := svc.Issue(ctx, acctID, "CI Key")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, issued.ID)
	assert.Equal(t, apikey.StatusActive, issued.Status)

	listed, err := svc.ListForOwner(ctx, acctID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	labels := []string{listed[0].Label, listed[1].Label}
	assert.ElementsMatch(t, []string{apikey.LabelDefault, "CI Key"}, labels)
}

func TestAPIKeyServiceRegenerate(t *testing.T) {
	accounts, keys := newTestStores(t)
	svc := NewAPIKeyService(keys, zap.NewNop())
	ctx := context.Background()

	_, oldValue := seedAccount(t, accounts, "owner@example.com", account.RoleAdmin)

	resolved, err := svc.Resolve(ctx, oldValue)
	require.NoError(t, err)

	newValue, err := svc.Regenerate(ctx, resolved.Key.ID, "")
	require.NoError(t, err)
	require.NotEqual(t, oldValue, newValue)

	// The old value stops resolving the moment the new one lands.
	_, err = svc.Resolve(ctx, oldValue)
	assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)

	replaced, err := svc.Resolve(ctx, newValue)
	require.NoError(t, err)
	assert.Equal(t, resolved.Key.ID, replaced.Key.ID, "regeneration rewrites the row, it does not add one")
	assert.Equal(t, apikey.LabelRegenerated, replaced.Key.Label)

	_, err = svc.Regenerate(ctx, uuid.New(), "whatever")
	assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)
}

func TestAPIKeyServiceRevokeRequiresOwnership(t *testing.T) {
	accounts, keys := newTestStores(t)
	svc := NewAPIKeyService(keys, zap.NewNop())
	ctx := context.Background()

	acctID, keyValue := seedAccount(t, accounts, "owner@example.com", account.RoleDeveloper)
	otherID, _ := seedAccount(t, accounts, "other@example.com", account.RoleDeveloper)

	resolved, err := svc.Resolve(ctx, keyValue)
	require.NoError(t, err)

	err = svc.Revoke(ctx, resolved.Key.ID, otherID)
	assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)

	require.NoError(t, svc.Revoke(ctx, resolved.Key.ID, acctID))
	_, err = svc.Resolve(ctx, keyValue)
	assert.ErrorIs(t, err, ierr.ErrAPIKeyNotFound)
}
