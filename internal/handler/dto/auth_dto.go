package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bukudev/catalog-api/internal/domain/account"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type RegisterData struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	APIKey string    `json:"api_key"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginData struct {
	UserID uuid.UUID    `json:"user_id"`
	Name   string       `json:"name"`
	Role   account.Role `json:"role"`
	APIKey string       `json:"api_key"`
}

type AccountResponse struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Role      account.Role `json:"role"`
	CreatedAt time.Time    `json:"created_at"`
}

func NewAccountResponse(acct *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:        acct.ID,
		Name:      acct.Name,
		Email:     acct.Email,
		Role:      acct.Role,
		CreatedAt: acct.CreatedAt,
	}
}
