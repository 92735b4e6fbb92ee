package ierr

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrInternalServer = errors.New("internal server error")

	ErrAccountNotFound    = errors.New("account not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAPIKeyNotFound     = errors.New("api key not found or inactive")

	ErrEmailTaken     = errors.New("email already registered")
	ErrCategoryExists = errors.New("category already exists")
	ErrCategoryInUse  = errors.New("category is in use")
)
