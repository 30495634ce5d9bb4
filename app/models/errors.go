package models

import "errors"

// Sentinel errors for the domain. Controllers map these onto HTTP statuses;
// services and repositories return them (possibly wrapped) so callers can
// test with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidCredential = errors.New("invalid username or password")
	ErrProductNotFound   = errors.New("product not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrConflict          = errors.New("resource already exists")
	ErrInternal          = errors.New("internal error")
)
