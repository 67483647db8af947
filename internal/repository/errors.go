package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientBalance is returned when a debit would drive a wallet
	// balance below zero. The balance is left unchanged.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")

	// ErrStaleStatus is returned when a guarded status update matched no
	// row because the entity was no longer in the expected status.
	ErrStaleStatus = errors.New("entity not in expected status")
)
