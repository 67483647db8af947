package repository

import (
	"context"

	"rideshare/internal/domain"
)

// WalletRepository defines the persistence operations for the wallet ledger.
type WalletRepository interface {
	// GetByOwner retrieves the wallet for an owner.
	GetByOwner(ctx context.Context, ownerID string, ownerType domain.OwnerType) (*domain.Wallet, error)

	// Ensure materializes a zero-balance wallet for the owner if none
	// exists yet. Existing wallets are left untouched.
	Ensure(ctx context.Context, ownerID string, ownerType domain.OwnerType) error

	// Credit adds amount to the owner's balance and returns the new balance.
	Credit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error)

	// Debit subtracts amount from the owner's balance and returns the new
	// balance. A debit that would underflow returns ErrInsufficientBalance
	// and leaves the balance unchanged; the guard is a single conditional
	// update, so concurrent debits against one owner cannot overdraw it.
	Debit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error)
}
