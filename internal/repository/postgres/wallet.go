package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// WalletRepository is a PostgreSQL implementation of repository.WalletRepository.
type WalletRepository struct {
	q Querier
}

// NewWalletRepository creates a new PostgreSQL wallet repository.
func NewWalletRepository(db *sql.DB) *WalletRepository {
	return &WalletRepository{q: db}
}

// NewWalletRepositoryWithTx creates a wallet repository using a transaction.
func NewWalletRepositoryWithTx(tx *sql.Tx) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByOwner retrieves the wallet for an owner.
func (r *WalletRepository) GetByOwner(ctx context.Context, ownerID string, ownerType domain.OwnerType) (*domain.Wallet, error) {
	query := `
		SELECT owner_id, owner_type, balance, created_at, updated_at
		FROM wallets WHERE owner_id = $1 AND owner_type = $2
	`

	var wallet domain.Wallet
	err := r.q.QueryRowContext(ctx, query, ownerID, ownerType).Scan(
		&wallet.OwnerID,
		&wallet.OwnerType,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

// Ensure materializes a zero-balance wallet for the owner if none exists.
func (r *WalletRepository) Ensure(ctx context.Context, ownerID string, ownerType domain.OwnerType) error {
	query := `
		INSERT INTO wallets (owner_id, owner_type, balance, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		ON CONFLICT (owner_id, owner_type) DO NOTHING
	`

	_, err := r.q.ExecContext(ctx, query, ownerID, ownerType)
	return err
}

// Credit adds amount to the owner's balance and returns the new balance.
func (r *WalletRepository) Credit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error) {
	query := `
		UPDATE wallets
		SET balance = balance + $3, updated_at = NOW()
		WHERE owner_id = $1 AND owner_type = $2
		RETURNING balance
	`

	var balance float64
	err := r.q.QueryRowContext(ctx, query, ownerID, ownerType, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}

	return balance, nil
}

// Debit subtracts amount from the owner's balance and returns the new
// balance. The balance predicate keeps the write conditional: a debit that
// would take the balance below zero updates no row and the balance is left
// untouched, even under concurrent debits.
func (r *WalletRepository) Debit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $3, updated_at = NOW()
		WHERE owner_id = $1 AND owner_type = $2 AND balance >= $3
		RETURNING balance
	`

	var balance float64
	err := r.q.QueryRowContext(ctx, query, ownerID, ownerType, amount).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the wallet is missing or the guard failed. Look the
			// wallet up to tell the two apart.
			if _, lookupErr := r.GetByOwner(ctx, ownerID, ownerType); lookupErr != nil {
				return 0, lookupErr
			}
			return 0, repository.ErrInsufficientBalance
		}
		return 0, err
	}

	return balance, nil
}

// Ensure WalletRepository implements repository.WalletRepository.
var _ repository.WalletRepository = (*WalletRepository)(nil)
