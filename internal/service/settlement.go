package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rideshare/internal/config"
	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
	"rideshare/internal/repository/postgres"
)

// SettlementEngine is the contract for the escrow settlement engine.
// This interface allows for testing with mock implementations.
type SettlementEngine interface {
	// CaptureFare debits the rider for the fare and moves the trip to its
	// new status in one transaction. The trip must already carry the target
	// status; from is the status the row must still hold.
	CaptureFare(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error

	// SettleCompletion releases escrow on completion: driver and platform
	// are credited their shares and the trip row moves status, all in one
	// transaction. Captures from the rider first when escrow was never
	// held. Also records the driver payout.
	SettleCompletion(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error

	// RefundCancellation returns held escrow to the rider (full fare, no
	// commission) and moves the trip row to its new status in one
	// transaction.
	RefundCancellation(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error
}

// PayoutScheduler schedules the deferred auto-release of a held payout.
type PayoutScheduler interface {
	SchedulePayoutRelease(ctx context.Context, payoutID string, delay time.Duration) error
}

// SplitFare splits a fare into the driver share and the platform commission.
// Commission is rounded to cents; the driver share is the exact remainder,
// so the two always sum back to the fare.
func SplitFare(fare, commissionRate float64) (driverShare, commission float64) {
	commission = math.Round(fare*commissionRate*100) / 100
	driverShare = fare - commission
	return driverShare, commission
}

// SettlementService moves money between trip parties. Every ledger write
// shares a transaction with the trip status change it belongs to, so a trip
// can never be observed settled without the funds having moved.
type SettlementService struct {
	db                  *sql.DB
	payoutRepo          repository.PayoutRepository
	cacheStore          *redis.CacheStore
	scheduler           PayoutScheduler
	notificationService *NotificationService
	cfg                 config.SettlementConfig
	logger              *zap.Logger
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(
	db *sql.DB,
	payoutRepo repository.PayoutRepository,
	cacheStore *redis.CacheStore,
	scheduler PayoutScheduler,
	notificationService *NotificationService,
	cfg config.SettlementConfig,
	logger *zap.Logger,
) *SettlementService {
	return &SettlementService{
		db:                  db,
		payoutRepo:          payoutRepo,
		cacheStore:          cacheStore,
		scheduler:           scheduler,
		notificationService: notificationService,
		cfg:                 cfg,
		logger:              logger,
	}
}

// CaptureFare debits the rider and flags escrow inside one transaction with
// the status-guarded trip update.
func (s *SettlementService) CaptureFare(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)

	if err = s.debitRider(ctx, txWalletRepo, trip); err != nil {
		return err
	}

	if err = txTripRepo.UpdateFromStatus(ctx, trip, from); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.invalidateWallets(ctx, redis.WalletRef{OwnerID: trip.RiderID, OwnerType: domain.OwnerTypeRider})
	s.invalidateTrip(ctx, trip.ID)

	s.logger.Info("fare captured",
		zap.String("trip_id", trip.ID),
		zap.String("rider_id", trip.RiderID),
		zap.Float64("fare", trip.Fare))

	return nil
}

// SettleCompletion splits the escrowed fare between driver and platform and
// records the payout, all in the same transaction as the status change.
func (s *SettlementService) SettleCompletion(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	driverShare, commission := SplitFare(trip.Fare, s.cfg.CommissionRate)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txPayoutRepo := postgres.NewPayoutRepositoryWithTx(tx)

	// Trips that went straight from REQUESTED to IN_PROGRESS never passed
	// the confirmation capture; collect the fare now or fail the whole
	// completion.
	if !trip.Payment.EscrowHeld {
		if err = s.debitRider(ctx, txWalletRepo, trip); err != nil {
			return err
		}
	}

	if err = s.creditOwner(ctx, txWalletRepo, trip.DriverID, domain.OwnerTypeDriver, driverShare); err != nil {
		return err
	}

	if err = s.creditOwner(ctx, txWalletRepo, domain.PlatformOwnerID, domain.OwnerTypePlatform, commission); err != nil {
		return err
	}

	trip.Payment.DriverPaid = true
	trip.Payment.PlatformCommission = commission
	trip.Payment.EscrowHeld = false

	if err = txTripRepo.UpdateFromStatus(ctx, trip, from); err != nil {
		return err
	}

	payout := s.buildPayout(trip, driverShare)
	if err = txPayoutRepo.Create(ctx, payout); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	s.invalidateWallets(ctx,
		redis.WalletRef{OwnerID: trip.RiderID, OwnerType: domain.OwnerTypeRider},
		redis.WalletRef{OwnerID: trip.DriverID, OwnerType: domain.OwnerTypeDriver},
		redis.WalletRef{OwnerID: domain.PlatformOwnerID, OwnerType: domain.OwnerTypePlatform},
	)
	s.invalidateTrip(ctx, trip.ID)

	s.logger.Info("trip settled",
		zap.String("trip_id", trip.ID),
		zap.Float64("fare", trip.Fare),
		zap.Float64("driver_share", driverShare),
		zap.Float64("commission", commission),
		zap.String("payout_status", string(payout.Status)))

	s.afterPayout(ctx, payout)

	return nil
}

// RefundCancellation returns the full escrowed fare to the rider, keeping no
// commission, in the same transaction as the status change. Trips without
// held escrow only move status.
func (s *SettlementService) RefundCancellation(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	refund := trip.Payment.EscrowHeld

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txWalletRepo := postgres.NewWalletRepositoryWithTx(tx)
	txTripRepo := postgres.NewTripRepositoryWithTx(tx)

	if refund {
		if err = s.creditOwner(ctx, txWalletRepo, trip.RiderID, domain.OwnerTypeRider, trip.Fare); err != nil {
			return err
		}
		trip.Payment.RiderPaid = false
		trip.Payment.EscrowHeld = false
	}

	if err = txTripRepo.UpdateFromStatus(ctx, trip, from); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	if refund {
		s.invalidateWallets(ctx, redis.WalletRef{OwnerID: trip.RiderID, OwnerType: domain.OwnerTypeRider})
	}
	s.invalidateTrip(ctx, trip.ID)

	s.logger.Info("trip cancelled",
		zap.String("trip_id", trip.ID),
		zap.Bool("refunded", refund),
		zap.Float64("fare", trip.Fare))

	return nil
}

// ReleasePayout flips a held payout to sent and notifies the driver. A
// payout releases exactly once: a second call gets ErrPayoutAlreadySent.
func (s *SettlementService) ReleasePayout(ctx context.Context, payoutID string) (*domain.Payout, error) {
	if payoutID == "" {
		return nil, ErrInvalidPayoutID
	}

	err := s.payoutRepo.MarkSent(ctx, payoutID)
	if errors.Is(err, repository.ErrStaleStatus) {
		return nil, ErrPayoutAlreadySent
	}
	if err != nil {
		return nil, err
	}

	payout, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("payout released",
		zap.String("payout_id", payout.ID),
		zap.String("driver_id", payout.DriverID),
		zap.Float64("amount", payout.Amount))

	if s.notificationService != nil {
		s.notificationService.NotifyPayoutSent(ctx, payout)
	}

	return payout, nil
}

// ListDriverPayouts retrieves a driver's payouts, newest first.
func (s *SettlementService) ListDriverPayouts(ctx context.Context, driverID string) ([]*domain.Payout, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	return s.payoutRepo.ListByDriver(ctx, driverID)
}

// buildPayout records the driver's earnings. Amounts at or above the review
// threshold are parked HELD for the review window; smaller ones go out
// immediately as SENT.
func (s *SettlementService) buildPayout(trip *domain.Trip, amount float64) *domain.Payout {
	payout := &domain.Payout{
		ID:       uuid.New().String(),
		DriverID: trip.DriverID,
		TripID:   trip.ID,
		Amount:   amount,
		Status:   domain.PayoutStatusHeld,
		HeldAt:   time.Now(),
	}

	if amount < s.cfg.PayoutReviewThreshold {
		payout.Status = domain.PayoutStatusSent
		payout.ReleasedAt = payout.HeldAt
	}

	return payout
}

// afterPayout runs the post-commit side of the payout record: notifications
// and, for held payouts, the deferred auto-release.
func (s *SettlementService) afterPayout(ctx context.Context, payout *domain.Payout) {
	if payout.Status == domain.PayoutStatusSent {
		if s.notificationService != nil {
			s.notificationService.NotifyPayoutSent(ctx, payout)
		}
		return
	}

	if s.notificationService != nil {
		s.notificationService.NotifyPayoutHeld(ctx, payout, s.cfg.PayoutReviewWindow)
	}

	if s.scheduler != nil {
		if err := s.scheduler.SchedulePayoutRelease(ctx, payout.ID, s.cfg.PayoutReviewWindow); err != nil {
			// The admin release endpoint remains as the fallback.
			s.logger.Error("payout auto-release not scheduled",
				zap.String("payout_id", payout.ID),
				zap.Error(err))
		}
	}
}

// debitRider captures the fare from the rider's wallet and marks escrow.
func (s *SettlementService) debitRider(ctx context.Context, walletRepo repository.WalletRepository, trip *domain.Trip) error {
	if err := walletRepo.Ensure(ctx, trip.RiderID, domain.OwnerTypeRider); err != nil {
		return err
	}

	_, err := walletRepo.Debit(ctx, trip.RiderID, domain.OwnerTypeRider, trip.Fare)
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return ErrInsufficientFunds
	}
	if err != nil {
		return err
	}

	trip.Payment.RiderPaid = true
	trip.Payment.EscrowHeld = true
	return nil
}

// creditOwner credits one settlement leg.
func (s *SettlementService) creditOwner(ctx context.Context, walletRepo repository.WalletRepository, ownerID string, ownerType domain.OwnerType, amount float64) error {
	if err := walletRepo.Ensure(ctx, ownerID, ownerType); err != nil {
		return err
	}

	_, err := walletRepo.Credit(ctx, ownerID, ownerType, amount)
	return err
}

func (s *SettlementService) invalidateWallets(ctx context.Context, refs ...redis.WalletRef) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateWallets(ctx, refs); err != nil {
		s.logger.Warn("wallet cache invalidation failed", zap.Error(err))
	}
}

func (s *SettlementService) invalidateTrip(ctx context.Context, tripID string) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateTrip(ctx, tripID); err != nil {
		s.logger.Warn("trip cache invalidation failed", zap.String("trip_id", tripID), zap.Error(err))
	}
}

// Ensure SettlementService implements SettlementEngine.
var _ SettlementEngine = (*SettlementService)(nil)
