package domain

import "errors"

var (
	ErrValidation              = errors.New("validation failed")
	ErrNotFound                = errors.New("record not found")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrPersistence             = errors.New("persistence failure")
	ErrLockTimeout             = errors.New("account lock wait timed out")
	ErrInvalidStatusTransition = errors.New("invalid transfer status transition")
	ErrDuplicate               = errors.New("record already exists")
)
