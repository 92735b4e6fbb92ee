package middleware

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/domain/account"
	"github.com/bukudev/catalog-api/internal/ierr"
	"github.com/bukudev/catalog-api/internal/service"
)

const (
	apiKeyHeader       = "X-API-Key"
	identityContextKey = "authIdentity"
)

// Identity is what a validated request carries downstream. Handlers read
// it from the gin context and never re-derive it from the store.
type Identity struct {
	AccountID uuid.UUID
	Name      string
	Role      account.Role
	KeyID     uuid.UUID
}

// APIKeyAuthMiddleware is the gate in front of every protected route. One
// resolve attempt per request, no retries, no caching: a revoked key stops
// working on the very next request. Every failure path fails closed.
func APIKeyAuthMiddleware(keys *service.APIKeyService, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("APIKeyAuthMiddleware")
	return func(c *gin.Context) {
		keyValue := c.GetHeader(apiKeyHeader)
		if keyValue == "" {
			log.Debug("API key header is missing", zap.String("header", apiKeyHeader))
			_ = c.Error(fmt.Errorf("%w: api key required", ierr.ErrUnauthorized))
			c.Abort()
			return
		}

		resolved, err := keys.Resolve(c.Request.Context(), keyValue)
		if err != nil {
			// Unknown and revoked keys are reported identically; only a
			// store failure maps differently, and that one still denies.
			if errors.Is(err, ierr.ErrAPIKeyNotFound) {
				log.Warn("Presented api key did not resolve")
				_ = c.Error(fmt.Errorf("%w: %w", ierr.ErrForbidden, ierr.ErrAPIKeyNotFound))
				c.Abort()
				return
			}

			log.Error("API key resolution hit a store error", zap.Error(err))
			_ = c.Error(fmt.Errorf("%w: api key validation failed", ierr.ErrInternalServer))
			c.Abort()
			return
		}

		c.Set(identityContextKey, &Identity{
			AccountID: resolved.OwnerID,
			Name:      resolved.OwnerName,
			Role:      resolved.Role,
			KeyID:     resolved.Key.ID,
		})

		log.Debug("API key validated",
			zap.String("account_id", resolved.OwnerID.String()),
			zap.String("key_id", resolved.Key.ID.String()),
		)
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *Identity {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return nil
	}
	identity, ok := value.(*Identity)
	if !ok {
		return nil
	}
	return identity
}
