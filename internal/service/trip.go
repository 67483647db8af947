package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rideshare/internal/domain"
	"rideshare/internal/redis"
	"rideshare/internal/repository"
)

// tripLockTTL bounds how long a crashed settlement attempt can keep a trip
// locked.
const tripLockTTL = 10 * time.Second

// TripService drives trips through the lifecycle graph. Transitions that
// move money delegate their atomic part to the settlement engine; this
// service owns validation, locking, the active-trip registry and the
// post-commit fan-out.
type TripService struct {
	tripRepo            repository.TripRepository
	userRepo            repository.UserRepository
	settlement          SettlementEngine
	lockStore           redis.LockStoreInterface
	cacheStore          *redis.CacheStore
	registry            *ActiveTripRegistry
	notificationService *NotificationService
	logger              *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(
	tripRepo repository.TripRepository,
	userRepo repository.UserRepository,
	settlement SettlementEngine,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
	registry *ActiveTripRegistry,
	notificationService *NotificationService,
	logger *zap.Logger,
) *TripService {
	return &TripService{
		tripRepo:            tripRepo,
		userRepo:            userRepo,
		settlement:          settlement,
		lockStore:           lockStore,
		cacheStore:          cacheStore,
		registry:            registry,
		notificationService: notificationService,
		logger:              logger,
	}
}

// RequestTripRequest contains the parameters for requesting a trip.
type RequestTripRequest struct {
	RiderID    string
	Pickup     string
	Dropoff    string
	DistanceKm float64
	Duration   time.Duration
	Fare       float64
	Method     domain.PaymentMethod // optional, defaults to WALLET
}

// RequestTrip creates a trip in REQUESTED state. No funds move yet.
func (s *TripService) RequestTrip(ctx context.Context, req RequestTripRequest) (*domain.Trip, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	method, err := ValidatePaymentMethod(string(req.Method))
	if err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:         uuid.New().String(),
		RiderID:    req.RiderID,
		Pickup:     req.Pickup,
		Dropoff:    req.Dropoff,
		DistanceKm: req.DistanceKm,
		Duration:   req.Duration,
		Fare:       req.Fare,
		Status:     domain.TripStatusRequested,
		Method:     method,
		CreatedAt:  time.Now(),
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.registry.Put(trip)

	s.logger.Info("trip requested",
		zap.String("trip_id", trip.ID),
		zap.String("rider_id", trip.RiderID),
		zap.Float64("fare", trip.Fare))

	if s.notificationService != nil {
		s.notificationService.NotifyTripRequested(ctx, trip)
	}

	return trip, nil
}

// ConfirmTrip moves a trip REQUESTED → CONFIRMED and captures the fare into
// escrow. The capture and the status change share one transaction; a rider
// who cannot cover the fare gets ErrInsufficientFunds and the trip stays
// REQUESTED.
func (s *TripService) ConfirmTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	// Transitions always read the row fresh; the cache only serves reads.
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	from := trip.Status
	if !from.CanTransitionTo(domain.TripStatusConfirmed) {
		return nil, ErrInvalidTransition
	}

	trip.Status = domain.TripStatusConfirmed

	if err := s.settlement.CaptureFare(ctx, trip, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.registry.Put(trip)

	if s.notificationService != nil {
		s.notificationService.NotifyFareCaptured(ctx, trip)
	}

	return trip, nil
}

// AssignDriverRequest contains the parameters for assigning a driver.
type AssignDriverRequest struct {
	TripID       string
	DriverID     string
	DriverName   string
	VehiclePlate string
}

// AssignDriver records the driver on the trip and starts it. Valid from
// REQUESTED or CONFIRMED; assigning a started or terminal trip fails with
// ErrInvalidTransition.
func (s *TripService) AssignDriver(ctx context.Context, req AssignDriverRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	from := trip.Status
	if !from.CanTransitionTo(domain.TripStatusInProgress) {
		return nil, ErrInvalidTransition
	}

	trip.DriverID = req.DriverID
	trip.DriverName = req.DriverName
	trip.VehiclePlate = req.VehiclePlate
	trip.Status = domain.TripStatusInProgress

	if err := s.tripRepo.UpdateFromStatus(ctx, trip, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.invalidateTripCache(ctx, trip.ID)
	s.registry.Put(trip)

	s.logger.Info("driver assigned",
		zap.String("trip_id", trip.ID),
		zap.String("driver_id", trip.DriverID))

	if s.notificationService != nil {
		s.notificationService.NotifyTripStarted(ctx, trip)
	}

	return trip, nil
}

// CancelTripRequest contains the parameters for cancelling a trip.
type CancelTripRequest struct {
	TripID string
	Reason string
}

// CancelTrip cancels a trip that has not started. When escrow is held the
// rider is refunded the full fare in the same transaction; the platform
// keeps no commission on cancellations.
func (s *TripService) CancelTrip(ctx context.Context, req CancelTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if !trip.CanCancel() {
		return nil, ErrInvalidTransition
	}

	from := trip.Status
	refunded := trip.Payment.EscrowHeld

	trip.Status = domain.TripStatusCancelled
	trip.CancelledAt = time.Now()
	trip.CancelReason = req.Reason

	if err := s.settlement.RefundCancellation(ctx, trip, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.registry.Put(trip)
	s.registry.ScheduleEviction(trip.RiderID, trip.ID)

	if s.notificationService != nil {
		s.notificationService.NotifyTripCancelled(ctx, trip, refunded)
	}

	return trip, nil
}

// CompleteTrip settles a trip: the escrowed fare is split between the
// driver and the platform commission, atomically with the status change.
// Completion is serialized per trip by the settlement lock plus the
// status-guarded update, so concurrent calls settle exactly once.
func (s *TripService) CompleteTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	locked, err := s.lockStore.AcquireTripLock(ctx, tripID, tripLockTTL)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrTripBusy
	}
	defer s.lockStore.ReleaseTripLock(ctx, tripID)

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	from := trip.Status
	if !from.CanTransitionTo(domain.TripStatusCompleted) {
		return nil, ErrInvalidTransition
	}

	trip.Status = domain.TripStatusCompleted
	trip.CompletedAt = time.Now()

	if err := s.settlement.SettleCompletion(ctx, trip, from); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.registry.Put(trip)
	s.registry.ScheduleEviction(trip.RiderID, trip.ID)

	if s.notificationService != nil {
		s.notificationService.NotifyTripCompleted(ctx, trip)
	}

	return trip, nil
}

// RateTripRequest contains the parameters for rating a trip.
type RateTripRequest struct {
	TripID  string
	Stars   int
	Comment string
}

// RateTrip records the rider's rating on a completed trip, once, and folds
// it into the driver's aggregate.
func (s *TripService) RateTrip(ctx context.Context, req RateTripRequest) (*domain.Trip, error) {
	if req.TripID == "" {
		return nil, ErrInvalidTripID
	}
	if req.Stars < 1 || req.Stars > 5 {
		return nil, ErrInvalidRating
	}

	trip, err := s.tripRepo.GetByID(ctx, req.TripID)
	if err != nil {
		return nil, err
	}

	if trip.Status != domain.TripStatusCompleted {
		return nil, ErrTripNotCompleted
	}
	if trip.Rating != 0 {
		return nil, ErrTripAlreadyRated
	}

	trip.Rating = req.Stars
	if err := s.tripRepo.Update(ctx, trip); err != nil {
		return nil, err
	}

	s.invalidateTripCache(ctx, trip.ID)

	// Drivers are not required to exist as registered users.
	if err := s.userRepo.AddRating(ctx, trip.DriverID, req.Stars); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if s.notificationService != nil {
		s.notificationService.NotifyTripRated(ctx, trip, req.Comment)
	}

	return trip, nil
}

// GetTrip retrieves a trip, serving from cache when possible.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetTrip(ctx, tripID)
		if err != nil {
			s.logger.Warn("trip cache read failed", zap.String("trip_id", tripID), zap.Error(err))
		} else if cached != nil {
			return tripFromCache(cached), nil
		}
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	s.cacheTrip(ctx, trip)

	return trip, nil
}

// GetAllTrips retrieves recent trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// GetRiderTrips retrieves a rider's trips, newest first.
func (s *TripService) GetRiderTrips(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	if riderID == "" {
		return nil, ErrInvalidRiderID
	}

	return s.tripRepo.GetByRiderID(ctx, riderID)
}

// ActiveTrip returns the rider's current trip from the registry.
func (s *TripService) ActiveTrip(riderID string) (*domain.Trip, bool) {
	return s.registry.Get(riderID)
}

func (s *TripService) validateRequest(req RequestTripRequest) error {
	if req.RiderID == "" {
		return ErrInvalidRiderID
	}
	if req.Pickup == "" {
		return ErrInvalidPickup
	}
	if req.Dropoff == "" {
		return ErrInvalidDropoff
	}
	if req.Fare < 0 {
		return ErrInvalidFare
	}
	if req.DistanceKm < 0 || req.Duration < 0 {
		return ErrInvalidTripMetrics
	}
	return nil
}

// ValidatePaymentMethod validates a payment method string.
func ValidatePaymentMethod(method string) (domain.PaymentMethod, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodWallet, domain.PaymentMethodCash, domain.PaymentMethodCard:
		return domain.PaymentMethod(method), nil
	case "":
		return domain.PaymentMethodWallet, nil // Default to wallet
	default:
		return "", ErrInvalidPaymentMethod
	}
}

func (s *TripService) cacheTrip(ctx context.Context, trip *domain.Trip) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.SetTrip(ctx, tripToCache(trip)); err != nil {
		s.logger.Warn("trip cache write failed", zap.String("trip_id", trip.ID), zap.Error(err))
	}
}

func (s *TripService) invalidateTripCache(ctx context.Context, tripID string) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateTrip(ctx, tripID); err != nil {
		s.logger.Warn("trip cache invalidation failed", zap.String("trip_id", tripID), zap.Error(err))
	}
}

// tripToCache converts a domain trip to its cached form.
func tripToCache(trip *domain.Trip) *redis.CachedTrip {
	return &redis.CachedTrip{
		ID:                 trip.ID,
		RiderID:            trip.RiderID,
		Pickup:             trip.Pickup,
		Dropoff:            trip.Dropoff,
		DistanceKm:         trip.DistanceKm,
		DurationSeconds:    int64(trip.Duration.Seconds()),
		Fare:               trip.Fare,
		Status:             string(trip.Status),
		DriverID:           trip.DriverID,
		DriverName:         trip.DriverName,
		VehiclePlate:       trip.VehiclePlate,
		Method:             string(trip.Method),
		RiderPaid:          trip.Payment.RiderPaid,
		DriverPaid:         trip.Payment.DriverPaid,
		PlatformCommission: trip.Payment.PlatformCommission,
		EscrowHeld:         trip.Payment.EscrowHeld,
		Rating:             trip.Rating,
		CreatedAt:          trip.CreatedAt,
		CompletedAt:        trip.CompletedAt,
		CancelledAt:        trip.CancelledAt,
		CancelReason:       trip.CancelReason,
	}
}

// tripFromCache converts a cached trip back to its domain form.
func tripFromCache(cached *redis.CachedTrip) *domain.Trip {
	return &domain.Trip{
		ID:           cached.ID,
		RiderID:      cached.RiderID,
		Pickup:       cached.Pickup,
		Dropoff:      cached.Dropoff,
		DistanceKm:   cached.DistanceKm,
		Duration:     time.Duration(cached.DurationSeconds) * time.Second,
		Fare:         cached.Fare,
		Status:       domain.TripStatus(cached.Status),
		DriverID:     cached.DriverID,
		DriverName:   cached.DriverName,
		VehiclePlate: cached.VehiclePlate,
		Method:       domain.PaymentMethod(cached.Method),
		Payment: domain.PaymentInfo{
			RiderPaid:          cached.RiderPaid,
			DriverPaid:         cached.DriverPaid,
			PlatformCommission: cached.PlatformCommission,
			EscrowHeld:         cached.EscrowHeld,
		},
		Rating:       cached.Rating,
		CreatedAt:    cached.CreatedAt,
		CompletedAt:  cached.CompletedAt,
		CancelledAt:  cached.CancelledAt,
		CancelReason: cached.CancelReason,
	}
}
