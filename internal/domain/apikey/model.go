package apikey

import (
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/account"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

type APIKey struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   uuid.UUID `db:"owner_id"`
	KeyValue  string    `db:"key_value"`
	Label     string    `db:"label"`
	Status    Status    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
}

// ResolvedKey is what the auth gate attaches to a request: the key row that
// matched plus the owning identity. The owner's password hash is never
// carried here.
type ResolvedKey struct {
	Key       APIKey
	OwnerID   uuid.UUID
	OwnerName string
	Role      account.Role
}

const (
	// Key values are "sk_" + hex of KeySecretBytes random bytes.
	KeyPrefix      = "sk_"
	KeySecretBytes = 24
)

// Labels assigned by the flows that mint keys.
const (
	LabelDefault     = "Default Key"
	LabelAutoCreated = "Auto-generated Key"
	LabelRegenerated = "Regenerated Key"
)
