package domain

import "time"

// Role identifies the recipient side of a notification.
type Role string

const (
	RoleRider  Role = "rider"
	RoleDriver Role = "driver"
	RoleAdmin  Role = "admin"
)

// NotificationType categorizes a notification for the persisted record.
type NotificationType string

const (
	NotificationTripRequested     NotificationType = "TRIP_REQUESTED"
	NotificationDriverAssigned    NotificationType = "DRIVER_ASSIGNED"
	NotificationTripStarted       NotificationType = "TRIP_STARTED"
	NotificationTripCompleted     NotificationType = "TRIP_COMPLETED"
	NotificationTripCancelled     NotificationType = "TRIP_CANCELLED"
	NotificationPaymentCaptured   NotificationType = "PAYMENT_CAPTURED"
	NotificationPaymentRefunded   NotificationType = "PAYMENT_REFUNDED"
	NotificationPaymentHeld       NotificationType = "PAYMENT_HELD"
	NotificationPayoutSent        NotificationType = "PAYOUT_SENT"
	NotificationRating            NotificationType = "RATING"
	NotificationReportStatus      NotificationType = "REPORT_STATUS"
	NotificationWalletUpdate      NotificationType = "WALLET_UPDATE"
	NotificationStatusChange      NotificationType = "STATUS_CHANGE"
	NotificationAdminAnnouncement NotificationType = "ADMIN_ANNOUNCEMENT"
	NotificationSystem            NotificationType = "SYSTEM"
)

// Notification is one persisted message for one recipient. Notifications are
// created once and never mutated.
type Notification struct {
	ID        string
	UserID    string
	Role      Role
	Title     string
	Message   string
	Type      NotificationType
	Metadata  map[string]any // nil when the event carries no payload
	CreatedAt time.Time
}

// Audience selects which users an announcement expands to.
type Audience string

const (
	AudienceAll     Audience = "all"
	AudienceRiders  Audience = "riders"
	AudienceDrivers Audience = "drivers"
)

// Roles returns the recipient roles the audience covers.
func (a Audience) Roles() []Role {
	switch a {
	case AudienceAll:
		return []Role{RoleRider, RoleDriver}
	case AudienceRiders:
		return []Role{RoleRider}
	case AudienceDrivers:
		return []Role{RoleDriver}
	default:
		return nil
	}
}

// Announcement is an admin broadcast that expands at send time into one
// notification per matching active user.
type Announcement struct {
	Title     string
	Message   string
	Audience  Audience
	AdminID   string
	CreatedAt time.Time
}
