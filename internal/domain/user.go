package domain

import "time"

// User represents any party that can receive notifications: riders, drivers
// and admins share one record distinguished by role. Drivers additionally
// carry a rating aggregate.
type User struct {
	ID          string
	Name        string
	Phone       string
	Role        Role
	Active      bool // inactive users are excluded from announcement audiences
	RatingSum   int  // drivers only
	RatingCount int  // drivers only
	CreatedAt   time.Time
}

// AverageRating returns the driver's mean rating, or 0 before any rating.
func (u *User) AverageRating() float64 {
	if u.RatingCount == 0 {
		return 0
	}
	return float64(u.RatingSum) / float64(u.RatingCount)
}
