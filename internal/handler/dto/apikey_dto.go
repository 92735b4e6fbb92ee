package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/apikey"
)

type APIKeyResponse struct {
	ID        uuid.UUID     `json:"id"`
	APIKey    string        `json:"api_key"`
	Label     string        `json:"label"`
	Status    apikey.Status `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

func NewAPIKeyResponse(key *apikey.APIKey) *APIKeyResponse {
	return &APIKeyResponse{
		ID:        key.ID,
		APIKey:    key.KeyValue,
		Label:     key.Label,
		Status:    key.Status,
		CreatedAt: key.CreatedAt,
	}
}

type RegenerateKeyRequest struct {
	Label string `json:"name"`
}

type RegenerateKeyData struct {
	APIKey string `json:"api_key"`
}
