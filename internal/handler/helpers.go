package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bukudev/catalog-api/internal/ierr"
)

// reportBindingError forwards validator failures as-is so the boundary can
// render per-field messages, and folds everything else (malformed JSON,
// bad uuids) into the generic validation error.
func reportBindingError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		_ = c.Error(ve)
		return
	}
	_ = c.Error(fmt.Errorf("%w: %v", ierr.ErrValidation, err))
}
