package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// NotificationService persists notifications and fans them out to trip
// parties. Delivery is best-effort: a failed send is recorded in the fan-out
// result and logged, never propagated to the caller's main flow.
type NotificationService struct {
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	sendTimeout      time.Duration
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	sendTimeout time.Duration,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		sendTimeout:      sendTimeout,
		logger:           logger,
	}
}

// FailedSend records one recipient whose notification was not persisted.
type FailedSend struct {
	UserID string
	Err    error
}

// FanOutResult partitions a fan-out into delivered and failed sends.
type FanOutResult struct {
	Delivered int
	Failed    []FailedSend
}

// newNotification builds a notification record.
func newNotification(userID string, role domain.Role, title, message string, typ domain.NotificationType, metadata map[string]any) *domain.Notification {
	return &domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      role,
		Title:     title,
		Message:   message,
		Type:      typ,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}

// CreateNotification persists a single notification, fire-and-forget: a
// persistence failure is logged and swallowed, so callers can notify from
// any code path without branching on the outcome. The record comes back only
// when it was actually stored; a failed persist returns nil.
func (s *NotificationService) CreateNotification(ctx context.Context, userID string, role domain.Role, title, message string, typ domain.NotificationType, metadata map[string]any) *domain.Notification {
	n := newNotification(userID, role, title, message, typ, metadata)
	if err := s.persist(ctx, n); err != nil {
		s.logger.Warn("notification not persisted",
			zap.String("user_id", userID),
			zap.String("type", string(typ)),
			zap.Error(err))
		return nil
	}
	return n
}

// ListUserNotifications retrieves a user's notifications, newest first.
func (s *NotificationService) ListUserNotifications(ctx context.Context, userID string) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	return s.notificationRepo.ListByUser(ctx, userID)
}

// persist writes one notification within the per-send timeout.
func (s *NotificationService) persist(ctx context.Context, n *domain.Notification) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	return s.notificationRepo.Create(sendCtx, n)
}

// fanOut sends each notification in its own goroutine and joins before
// returning. One slow or failing recipient delays the others by at most the
// per-send timeout and never fails them.
func (s *NotificationService) fanOut(ctx context.Context, notifications []*domain.Notification) FanOutResult {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result FanOutResult
	)

	for _, n := range notifications {
		n := n
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := s.persist(ctx, n); err != nil {
				s.logger.Warn("fan-out send failed",
					zap.String("user_id", n.UserID),
					zap.String("type", string(n.Type)),
					zap.Error(err))
				mu.Lock()
				result.Failed = append(result.Failed, FailedSend{UserID: n.UserID, Err: err})
				mu.Unlock()
				return
			}

			mu.Lock()
			result.Delivered++
			mu.Unlock()
		}()
	}

	wg.Wait()
	return result
}

// NotifyTripRequested notifies the rider that their trip was created.
func (s *NotificationService) NotifyTripRequested(ctx context.Context, trip *domain.Trip) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(trip.RiderID, domain.RoleRider, "Trip Requested",
			fmt.Sprintf("Your trip from %s to %s has been requested. Fare: %.2f", trip.Pickup, trip.Dropoff, trip.Fare),
			domain.NotificationTripRequested,
			map[string]any{"trip_id": trip.ID, "fare": trip.Fare}),
	})
}

// NotifyFareCaptured notifies the rider that their fare is held in escrow.
func (s *NotificationService) NotifyFareCaptured(ctx context.Context, trip *domain.Trip) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(trip.RiderID, domain.RoleRider, "Payment Captured",
			fmt.Sprintf("%.2f has been reserved for your trip.", trip.Fare),
			domain.NotificationPaymentCaptured,
			map[string]any{"trip_id": trip.ID, "fare": trip.Fare}),
	})
}

// NotifyTripStarted notifies both parties that a driver took the trip: the
// rider learns who is driving, the driver gets the start signal.
func (s *NotificationService) NotifyTripStarted(ctx context.Context, trip *domain.Trip) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(trip.RiderID, domain.RoleRider, "Driver Assigned",
			fmt.Sprintf("%s (%s) is on the way.", trip.DriverName, trip.VehiclePlate),
			domain.NotificationDriverAssigned,
			map[string]any{"trip_id": trip.ID, "driver_id": trip.DriverID, "vehicle_plate": trip.VehiclePlate}),
		newNotification(trip.DriverID, domain.RoleDriver, "Trip Started",
			fmt.Sprintf("Trip from %s to %s is now in progress.", trip.Pickup, trip.Dropoff),
			domain.NotificationTripStarted,
			map[string]any{"trip_id": trip.ID}),
	})
}

// NotifyTripCompleted notifies both parties that the trip settled.
func (s *NotificationService) NotifyTripCompleted(ctx context.Context, trip *domain.Trip) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(trip.RiderID, domain.RoleRider, "Trip Completed",
			fmt.Sprintf("Your trip has ended. Total fare: %.2f", trip.Fare),
			domain.NotificationTripCompleted,
			map[string]any{"trip_id": trip.ID, "fare": trip.Fare}),
		newNotification(trip.DriverID, domain.RoleDriver, "Trip Completed",
			fmt.Sprintf("Trip completed. You earned %.2f.", trip.Fare-trip.Payment.PlatformCommission),
			domain.NotificationTripCompleted,
			map[string]any{"trip_id": trip.ID, "fare": trip.Fare}),
	})
}

// NotifyTripCancelled notifies the rider about the cancellation and, when
// escrow was refunded, about the balance change.
func (s *NotificationService) NotifyTripCancelled(ctx context.Context, trip *domain.Trip, refunded bool) FanOutResult {
	notifications := []*domain.Notification{
		newNotification(trip.RiderID, domain.RoleRider, "Trip Cancelled",
			"Your trip has been cancelled.",
			domain.NotificationTripCancelled,
			map[string]any{"trip_id": trip.ID, "reason": trip.CancelReason}),
	}

	if refunded {
		notifications = append(notifications,
			newNotification(trip.RiderID, domain.RoleRider, "Refund Issued",
				fmt.Sprintf("%.2f has been returned to your wallet.", trip.Fare),
				domain.NotificationPaymentRefunded,
				map[string]any{"trip_id": trip.ID, "amount": trip.Fare}))
	}

	return s.fanOut(ctx, notifications)
}

// NotifyPayoutHeld tells the driver their earnings are parked for review.
func (s *NotificationService) NotifyPayoutHeld(ctx context.Context, payout *domain.Payout, window time.Duration) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(payout.DriverID, domain.RoleDriver, "Payout Under Review",
			fmt.Sprintf("Your payout of %.2f is held for review and will be released within %s.", payout.Amount, window),
			domain.NotificationPaymentHeld,
			map[string]any{"payout_id": payout.ID, "trip_id": payout.TripID, "amount": payout.Amount}),
	})
}

// NotifyPayoutSent tells the driver their earnings were transferred.
func (s *NotificationService) NotifyPayoutSent(ctx context.Context, payout *domain.Payout) FanOutResult {
	return s.fanOut(ctx, []*domain.Notification{
		newNotification(payout.DriverID, domain.RoleDriver, "Payout Sent",
			fmt.Sprintf("Your payout of %.2f has been sent.", payout.Amount),
			domain.NotificationPayoutSent,
			map[string]any{"payout_id": payout.ID, "trip_id": payout.TripID, "amount": payout.Amount}),
	})
}

// NotifyTripRated tells the driver how the rider rated the trip.
func (s *NotificationService) NotifyTripRated(ctx context.Context, trip *domain.Trip, comment string) FanOutResult {
	metadata := map[string]any{"trip_id": trip.ID, "rating": trip.Rating}
	if comment != "" {
		metadata["comment"] = comment
	}

	return s.fanOut(ctx, []*domain.Notification{
		newNotification(trip.DriverID, domain.RoleDriver, "New Rating",
			fmt.Sprintf("You received a %d-star rating.", trip.Rating),
			domain.NotificationRating,
			metadata),
	})
}

// SendAnnouncementRequest contains the parameters for an admin broadcast.
type SendAnnouncementRequest struct {
	Title    string
	Message  string
	Audience domain.Audience
	AdminID  string
}

// SendAdminAnnouncement expands an announcement to every currently active
// user matching the audience and fans the copies out. Returns how many were
// delivered; failed sends are dropped, not retried.
func (s *NotificationService) SendAdminAnnouncement(ctx context.Context, req SendAnnouncementRequest) (int, error) {
	if req.Title == "" || req.Message == "" {
		return 0, ErrInvalidAnnouncement
	}

	roles := req.Audience.Roles()
	if roles == nil {
		return 0, ErrInvalidAudience
	}

	users, err := s.userRepo.ListActiveByRoles(ctx, roles)
	if err != nil {
		return 0, err
	}

	notifications := make([]*domain.Notification, 0, len(users))
	for _, user := range users {
		notifications = append(notifications,
			newNotification(user.ID, user.Role, req.Title, req.Message,
				domain.NotificationAdminAnnouncement,
				map[string]any{"admin_id": req.AdminID}))
	}

	result := s.fanOut(ctx, notifications)
	if len(result.Failed) > 0 {
		s.logger.Warn("announcement partially delivered",
			zap.Int("delivered", result.Delivered),
			zap.Int("failed", len(result.Failed)),
			zap.String("audience", string(req.Audience)))
	}

	return result.Delivered, nil
}
