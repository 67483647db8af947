package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// WalletService handles the wallet ledger.
type WalletService struct {
	walletRepo          repository.WalletRepository
	cacheStore          *redis.CacheStore
	notificationService *NotificationService
	logger              *zap.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	walletRepo repository.WalletRepository,
	cacheStore *redis.CacheStore,
	notificationService *NotificationService,
	logger *zap.Logger,
) *WalletService {
	return &WalletService{
		walletRepo:          walletRepo,
		cacheStore:          cacheStore,
		notificationService: notificationService,
		logger:              logger,
	}
}

// validateOwner checks a wallet owner reference.
func validateOwner(ownerID string, ownerType domain.OwnerType) error {
	if ownerID == "" || !ownerType.Valid() {
		return ErrInvalidOwner
	}
	return nil
}

// GetWallet retrieves a wallet, materializing a zero-balance one on first
// reference. Reads go through the balance cache when one is configured.
func (s *WalletService) GetWallet(ctx context.Context, ownerID string, ownerType domain.OwnerType) (*domain.Wallet, error) {
	if err := validateOwner(ownerID, ownerType); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetWallet(ctx, ownerID, ownerType)
		if err != nil {
			s.logger.Warn("wallet cache read failed", zap.String("owner_id", ownerID), zap.Error(err))
		} else if cached != nil {
			return &domain.Wallet{
				OwnerID:   cached.OwnerID,
				OwnerType: domain.OwnerType(cached.OwnerType),
				Balance:   cached.Balance,
			}, nil
		}
	}

	wallet, err := s.walletRepo.GetByOwner(ctx, ownerID, ownerType)
	if errors.Is(err, repository.ErrNotFound) {
		if err := s.walletRepo.Ensure(ctx, ownerID, ownerType); err != nil {
			return nil, err
		}
		wallet, err = s.walletRepo.GetByOwner(ctx, ownerID, ownerType)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	s.cacheBalance(ctx, wallet)

	return wallet, nil
}

// AdjustBalanceRequest contains the parameters for a balance adjustment.
type AdjustBalanceRequest struct {
	OwnerID   string
	OwnerType domain.OwnerType
	Delta     float64 // positive credits, negative debits
	Reason    string
}

// AdjustBalance credits or debits a wallet and returns the new balance. A
// debit that would take the balance below zero fails with
// ErrInsufficientFunds and changes nothing.
func (s *WalletService) AdjustBalance(ctx context.Context, req AdjustBalanceRequest) (float64, error) {
	if err := validateOwner(req.OwnerID, req.OwnerType); err != nil {
		return 0, err
	}

	if req.Delta == 0 {
		return 0, ErrInvalidAmount
	}

	// The wallet row must exist before the first credit or debit lands.
	if err := s.walletRepo.Ensure(ctx, req.OwnerID, req.OwnerType); err != nil {
		return 0, err
	}

	var balance float64
	var err error
	if req.Delta > 0 {
		balance, err = s.walletRepo.Credit(ctx, req.OwnerID, req.OwnerType, req.Delta)
	} else {
		balance, err = s.walletRepo.Debit(ctx, req.OwnerID, req.OwnerType, -req.Delta)
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return 0, ErrInsufficientFunds
		}
	}
	if err != nil {
		return 0, err
	}

	s.invalidateBalance(ctx, req.OwnerID, req.OwnerType)

	// The platform wallet has no user behind it to notify.
	if s.notificationService != nil && req.OwnerType != domain.OwnerTypePlatform {
		role := domain.RoleRider
		if req.OwnerType == domain.OwnerTypeDriver {
			role = domain.RoleDriver
		}
		s.notificationService.CreateNotification(ctx, req.OwnerID, role,
			"Wallet Updated",
			fmt.Sprintf("Your balance changed by %+.2f. New balance: %.2f", req.Delta, balance),
			domain.NotificationWalletUpdate,
			map[string]any{"delta": req.Delta, "balance": balance, "reason": req.Reason})
	}

	return balance, nil
}

// CanAfford reports whether the rider's balance covers the amount.
func (s *WalletService) CanAfford(ctx context.Context, riderID string, amount float64) (bool, error) {
	if riderID == "" {
		return false, ErrInvalidRiderID
	}
	if amount < 0 {
		return false, ErrInvalidAmount
	}

	wallet, err := s.GetWallet(ctx, riderID, domain.OwnerTypeRider)
	if err != nil {
		return false, err
	}

	return wallet.Balance >= amount, nil
}

// EnsurePlatformWallet materializes the singleton platform wallet. Called
// once at startup so commission always has somewhere to land.
func (s *WalletService) EnsurePlatformWallet(ctx context.Context) error {
	return s.walletRepo.Ensure(ctx, domain.PlatformOwnerID, domain.OwnerTypePlatform)
}

func (s *WalletService) cacheBalance(ctx context.Context, wallet *domain.Wallet) {
	if s.cacheStore == nil {
		return
	}
	err := s.cacheStore.SetWallet(ctx, &redis.CachedWallet{
		OwnerID:   wallet.OwnerID,
		OwnerType: string(wallet.OwnerType),
		Balance:   wallet.Balance,
	})
	if err != nil {
		s.logger.Warn("wallet cache write failed", zap.String("owner_id", wallet.OwnerID), zap.Error(err))
	}
}

func (s *WalletService) invalidateBalance(ctx context.Context, ownerID string, ownerType domain.OwnerType) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateWallet(ctx, ownerID, ownerType); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.String("owner_id", ownerID), zap.Error(err))
	}
}
