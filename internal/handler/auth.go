package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/handler/dto"
	"github.com/bukudev/catalog-api/internal/handler/middleware"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/service"
)

type AuthHandler struct {
	accounts *service.AccountService
	keys     *service.APIKeyService
	logger   *zap.Logger
}

func NewAuthHandler(accounts *service.AccountService, keys *service.APIKeyService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		keys:     keys,
		logger:   logger.Named("AuthHandler"),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind register request", zap.Error(err))
		reportBindingError(c, err)
		return
	}

	acct, keyValue, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Account registered via handler", zap.String("id", acct.ID.String()))
	c.JSON(http.StatusCreated, dto.OK("Registration successful", dto.RegisterData{
		UserID: acct.ID,
		Name:   acct.Name,
		APIKey: keyValue,
	}))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Failed to bind login request", zap.Error(err))
		reportBindingError(c, err)
		return
	}

	acct, keyValue, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("Account logged in", zap.String("id", acct.ID.String()))
	c.JSON(http.StatusOK, dto.OK("Login successful", dto.LoginData{
		UserID: acct.ID,
		Name:   acct.Name,
		Role:   acct.Role,
		APIKey: keyValue,
	}))
}

// MyKeys lists every key of the authenticated caller, active or revoked.
func (h *AuthHandler) MyKeys(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		_ = c.Error(fmt.Errorf("%w: no identity", ierr.ErrForbidden))
		return
	}

	keys, err := h.keys.ListForOwner(c.Request.Context(), identity.AccountID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.APIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = dto.NewAPIKeyResponse(&keys[i])
	}
	c.JSON(http.StatusOK, dto.OK("", responses))
}

// RegenerateKey replaces the value of the key that authenticated this
// request. The presented value stops working immediately; the response body
// is the only place the new value ever appears.
func (h *AuthHandler) RegenerateKey(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		_ = c.Error(fmt.Errorf("%w: no identity", ierr.ErrForbidden))
		return
	}

	var req dto.RegenerateKeyRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warn("Failed to bind regenerate request", zap.Error(err))
			reportBindingError(c, err)
			return
		}
	}

	newValue, err := h.keys.Regenerate(c.Request.Context(), identity.KeyID, req.Label)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.logger.Info("API key regenerated via handler", zap.String("key_id", identity.KeyID.String()))
	c.JSON(http.StatusOK, dto.OK("API key regenerated", dto.RegenerateKeyData{APIKey: newValue}))
}

// ListUsers is admin-gated at the route level.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	accounts, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	responses := make([]*dto.AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = dto.NewAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, dto.OK("", responses))
}
