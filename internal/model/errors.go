package model

import "errors"

// Error taxonomy shared by all stores and services.
var (
	ErrNotFound          = errors.New("not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrDuplicateEvent    = errors.New("duplicate event")
)
