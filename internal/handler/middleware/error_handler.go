package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bukudev/catalog-api/internal/handler/dto"
	"github.com/bukudev/catalog-api/internal/ierr"
)

// ErrorHandlerMiddleware is the single boundary where internal errors turn
// into the public envelope. No SQL text, stack trace or wrapped detail ever
// reaches the caller; the full error is only logged.
func ErrorHandlerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("ErrorHandler")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)

		status, message := mapError(err)
		c.AbortWithStatusJSON(status, dto.Fail(message))
	}
}

func mapError(err error) (int, string) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return http.StatusBadRequest, validationMessage(ve)
	}

	switch {
	case errors.Is(err, ierr.ErrValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, ierr.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, ierr.ErrUnauthorized):
		return http.StatusUnauthorized, "API key required"
	case errors.Is(err, ierr.ErrForbidden):
		if errors.Is(err, ierr.ErrAPIKeyNotFound) {
			return http.StatusForbidden, "Invalid or inactive API key"
		}
		return http.StatusForbidden, "Admin access required"
	case errors.Is(err, ierr.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, ierr.ErrConflict):
		switch {
		case errors.Is(err, ierr.ErrEmailTaken):
			return http.StatusConflict, "Email already registered"
		case errors.Is(err, ierr.ErrCategoryExists):
			return http.StatusConflict, "Category already exists"
		case errors.Is(err, ierr.ErrCategoryInUse):
			return http.StatusConflict, "Category is in use"
		}
		return http.StatusConflict, "Resource conflict"
	}

	return http.StatusInternalServerError, "Internal server error"
}

func validationMessage(ve validator.ValidationErrors) string {
	msgs := make([]string, len(ve))
	for i, fe := range ve {
		msgs[i] = fieldErrorMessage(fe)
	}
	return strings.Join(msgs, "; ")
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", fe.Field())
	case "email":
		return fmt.Sprintf("Field '%s' must be a valid email address", fe.Field())
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("Field '%s' must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("Field '%s' must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("Field '%s' must be less than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("Field '%s' failed validation on the '%s' tag", fe.Field(), fe.Tag())
	}
}
