package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. SINGLE NOTIFICATIONS
// ──────────────────────────────────────────────

func TestNotificationCreate_PersistsRecord(t *testing.T) {
	t.Parallel()

	notifications, _, svc := newNotificationService(t, time.Second)

	n := svc.CreateNotification(context.Background(), "user-1", domain.RoleRider,
		"Welcome", "Thanks for signing up.", domain.NotificationSystem,
		map[string]any{"source": "signup"})

	if n.ID == "" {
		t.Error("expected notification ID to be generated")
	}
	if n.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	stored, err := svc.ListUserNotifications(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored notification, got %d", len(stored))
	}
	if stored[0].Title != "Welcome" || stored[0].Type != domain.NotificationSystem {
		t.Error("expected stored notification to carry title and type")
	}
	if notifications.CountForUser("user-2") != 0 {
		t.Error("expected no notifications for other users")
	}
}

func TestNotificationCreate_PersistFailure_Swallowed(t *testing.T) {
	t.Parallel()

	notifications, _, svc := newNotificationService(t, time.Second)
	notifications.CreateError = ErrMockUnavailable

	// Fire-and-forget: the failure is swallowed, and the nil result tells
	// the caller no record was stored.
	n := svc.CreateNotification(context.Background(), "user-1", domain.RoleRider,
		"Welcome", "Thanks for signing up.", domain.NotificationSystem, nil)

	if n != nil {
		t.Fatalf("expected nil when persistence fails, got record %q", n.ID)
	}
	if notifications.CountNotifications() != 0 {
		t.Error("expected nothing to be stored")
	}
}

func TestNotificationList_EmptyUserID_Rejected(t *testing.T) {
	t.Parallel()

	_, _, svc := newNotificationService(t, time.Second)

	_, err := svc.ListUserNotifications(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidUserID) {
		t.Errorf("expected ErrInvalidUserID, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. TRIP EVENT FAN-OUT
// ──────────────────────────────────────────────

func TestFanOut_NotifiesAllParties(t *testing.T) {
	t.Parallel()

	notifications, _, svc := newNotificationService(t, time.Second)

	trip := &domain.Trip{
		ID:         "trip-1",
		RiderID:    "rider-1",
		DriverID:   "driver-1",
		DriverName: "Sam",
		Pickup:     "A",
		Dropoff:    "B",
	}

	result := svc.NotifyTripStarted(context.Background(), trip)

	if result.Delivered != 2 {
		t.Errorf("expected 2 deliveries, got %d", result.Delivered)
	}
	if len(result.Failed) != 0 {
		t.Errorf("expected no failures, got %d", len(result.Failed))
	}
	if !notifications.HasType("rider-1", domain.NotificationDriverAssigned) {
		t.Error("expected rider notification")
	}
	if !notifications.HasType("driver-1", domain.NotificationTripStarted) {
		t.Error("expected driver notification")
	}
}

func TestFanOut_PartialFailure_PartitionsResult(t *testing.T) {
	t.Parallel()

	notifications, _, svc := newNotificationService(t, time.Second)
	notifications.FailForUser("driver-1", ErrMockUnavailable)

	trip := &domain.Trip{
		ID:       "trip-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
	}

	result := svc.NotifyTripStarted(context.Background(), trip)

	// One failing recipient never fails the others.
	if result.Delivered != 1 {
		t.Errorf("expected 1 delivery, got %d", result.Delivered)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if result.Failed[0].UserID != "driver-1" {
		t.Errorf("expected driver-1 to fail, got %s", result.Failed[0].UserID)
	}
	if !errors.Is(result.Failed[0].Err, ErrMockUnavailable) {
		t.Errorf("expected ErrMockUnavailable, got %v", result.Failed[0].Err)
	}
	if notifications.CountForUser("rider-1") != 1 {
		t.Error("expected rider delivery to land")
	}
	if notifications.CountForUser("driver-1") != 0 {
		t.Error("expected no driver delivery")
	}
}

func TestFanOut_SlowRecipient_CutOffByTimeout(t *testing.T) {
	t.Parallel()

	notifications, _, svc := newNotificationService(t, 50*time.Millisecond)
	notifications.DelayForUser("driver-1", 2*time.Second)

	trip := &domain.Trip{
		ID:       "trip-1",
		RiderID:  "rider-1",
		DriverID: "driver-1",
	}

	start := time.Now()
	result := svc.NotifyTripStarted(context.Background(), trip)
	elapsed := time.Since(start)

	if result.Delivered != 1 {
		t.Errorf("expected 1 delivery, got %d", result.Delivered)
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if result.Failed[0].UserID != "driver-1" {
		t.Errorf("expected the slow recipient to fail, got %s", result.Failed[0].UserID)
	}
	if !errors.Is(result.Failed[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", result.Failed[0].Err)
	}
	// The fan-out must not wait out the full 2s hang.
	if elapsed > time.Second {
		t.Errorf("expected the slow send to be cut off by the timeout, took %v", elapsed)
	}
}

// ──────────────────────────────────────────────
// 3. ADMIN ANNOUNCEMENTS
// ──────────────────────────────────────────────

func TestAnnouncement_DriversAudience_ActiveDriversOnly(t *testing.T) {
	t.Parallel()

	notifications, users, svc := newNotificationService(t, time.Second)
	seedAnnouncementUsers(users)

	count, err := svc.SendAdminAnnouncement(context.Background(), service.SendAnnouncementRequest{
		Title:    "Surge weekend",
		Message:  "Extra demand expected downtown.",
		Audience: domain.AudienceDrivers,
		AdminID:  "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 3 {
		t.Errorf("expected 3 deliveries, got %d", count)
	}
	for _, driverID := range []string{"driver-1", "driver-2", "driver-3"} {
		if !notifications.HasType(driverID, domain.NotificationAdminAnnouncement) {
			t.Errorf("expected %s to receive the announcement", driverID)
		}
	}
	// Suspended users are never part of the audience.
	if notifications.CountForUser("driver-4") != 0 {
		t.Error("expected the suspended driver to be skipped")
	}
	if notifications.CountForUser("rider-1") != 0 {
		t.Error("expected riders to be skipped for a drivers announcement")
	}
}

func TestAnnouncement_AllAudience_RidersAndDrivers(t *testing.T) {
	t.Parallel()

	notifications, users, svc := newNotificationService(t, time.Second)
	seedAnnouncementUsers(users)

	count, err := svc.SendAdminAnnouncement(context.Background(), service.SendAnnouncementRequest{
		Title:    "Maintenance window",
		Message:  "The app will be unavailable tonight.",
		Audience: domain.AudienceAll,
		AdminID:  "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 2 active riders + 3 active drivers; admins are not an audience.
	if count != 5 {
		t.Errorf("expected 5 deliveries, got %d", count)
	}
	if notifications.CountForUser("admin-1") != 0 {
		t.Error("expected the admin not to receive their own broadcast")
	}
}

func TestAnnouncement_InvalidInput_Rejected(t *testing.T) {
	t.Parallel()

	_, users, svc := newNotificationService(t, time.Second)
	seedAnnouncementUsers(users)

	testCases := []struct {
		name    string
		req     service.SendAnnouncementRequest
		wantErr error
	}{
		{
			"missing title",
			service.SendAnnouncementRequest{Message: "m", Audience: domain.AudienceAll},
			service.ErrInvalidAnnouncement,
		},
		{
			"missing message",
			service.SendAnnouncementRequest{Title: "t", Audience: domain.AudienceAll},
			service.ErrInvalidAnnouncement,
		},
		{
			"unknown audience",
			service.SendAnnouncementRequest{Title: "t", Message: "m", Audience: "admins"},
			service.ErrInvalidAudience,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SendAdminAnnouncement(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAnnouncement_UserLookupError_Propagates(t *testing.T) {
	t.Parallel()

	_, users, svc := newNotificationService(t, time.Second)
	users.ListError = ErrMockTimeout

	_, err := svc.SendAdminAnnouncement(context.Background(), service.SendAnnouncementRequest{
		Title:    "t",
		Message:  "m",
		Audience: domain.AudienceAll,
	})
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected ErrMockTimeout, got %v", err)
	}
}

func TestAnnouncement_PartialFailure_ReportsDelivered(t *testing.T) {
	t.Parallel()

	notifications, users, svc := newNotificationService(t, time.Second)
	seedAnnouncementUsers(users)
	notifications.FailForUser("driver-2", ErrMockUnavailable)

	count, err := svc.SendAdminAnnouncement(context.Background(), service.SendAnnouncementRequest{
		Title:    "Surge weekend",
		Message:  "Extra demand expected downtown.",
		Audience: domain.AudienceDrivers,
		AdminID:  "admin-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count != 2 {
		t.Errorf("expected 2 deliveries with one failing recipient, got %d", count)
	}
}

// ──────────────────────────────────────────────
// HELPER FUNCTIONS
// ──────────────────────────────────────────────

// newNotificationService builds a NotificationService over mocks with the
// given per-send timeout.
func newNotificationService(t *testing.T, sendTimeout time.Duration) (*MockNotificationRepository, *MockUserRepository, *service.NotificationService) {
	t.Helper()

	notifications := NewMockNotificationRepository()
	users := NewMockUserRepository()
	svc := service.NewNotificationService(notifications, users, sendTimeout, zap.NewNop())
	return notifications, users, svc
}

// seedAnnouncementUsers registers 2 active riders, 3 active drivers, one
// suspended driver and one admin.
func seedAnnouncementUsers(users *MockUserRepository) {
	users.AddUser(&domain.User{ID: "rider-1", Role: domain.RoleRider, Active: true})
	users.AddUser(&domain.User{ID: "rider-2", Role: domain.RoleRider, Active: true})
	users.AddUser(&domain.User{ID: "driver-1", Role: domain.RoleDriver, Active: true})
	users.AddUser(&domain.User{ID: "driver-2", Role: domain.RoleDriver, Active: true})
	users.AddUser(&domain.User{ID: "driver-3", Role: domain.RoleDriver, Active: true})
	users.AddUser(&domain.User{ID: "driver-4", Role: domain.RoleDriver, Active: false})
	users.AddUser(&domain.User{ID: "admin-1", Role: domain.RoleAdmin, Active: true})
}
