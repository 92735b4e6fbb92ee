package account

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateWithKey inserts the account and its default API key in a single
	// transaction. Either both rows exist afterwards or neither does.
	CreateWithKey(ctx context.Context, acct *Account, keyValue, keyLabel string) (accountID uuid.UUID, keyID uuid.UUID, err error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	List(ctx context.Context) ([]Account, error)
}
