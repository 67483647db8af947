package service

import "errors"

var (
	// ErrInvalidTransition is returned when a trip is asked to move along an
	// edge the status graph does not permit, including any transition out of
	// a terminal status.
	ErrInvalidTransition = errors.New("invalid trip status transition")

	// ErrInsufficientFunds is returned when a debit would take a wallet
	// balance below zero. The balance is left unchanged.
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// ErrTripBusy is returned when another request holds the settlement lock
	// for the trip.
	ErrTripBusy = errors.New("trip is being settled by another request")

	// ErrPayoutAlreadySent is returned when releasing a payout that has
	// already been sent.
	ErrPayoutAlreadySent = errors.New("payout already sent")

	// ErrTripNotCompleted is returned when rating a trip that has not
	// completed.
	ErrTripNotCompleted = errors.New("trip not completed")

	// ErrTripAlreadyRated is returned when rating a trip a second time.
	ErrTripAlreadyRated = errors.New("trip already rated")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidAudience is returned when an announcement audience is not
	// one of all, riders or drivers.
	ErrInvalidAudience = errors.New("invalid announcement audience")

	// ErrInvalidAnnouncement is returned when an announcement has no title
	// or no message.
	ErrInvalidAnnouncement = errors.New("announcement title and message are required")

	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = errors.New("invalid rider id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidTripID is returned when trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidPayoutID is returned when payout ID is empty.
	ErrInvalidPayoutID = errors.New("invalid payout id")

	// ErrInvalidOwner is returned when a wallet owner reference is empty or
	// carries an unknown owner type.
	ErrInvalidOwner = errors.New("invalid wallet owner")

	// ErrInvalidAmount is returned when a wallet adjustment delta is zero or
	// an afford amount is negative.
	ErrInvalidAmount = errors.New("invalid adjustment amount")

	// ErrInvalidFare is returned when a trip fare is negative.
	ErrInvalidFare = errors.New("fare must not be negative")

	// ErrInvalidPickup is returned when the pickup descriptor is empty.
	ErrInvalidPickup = errors.New("invalid pickup")

	// ErrInvalidDropoff is returned when the dropoff descriptor is empty.
	ErrInvalidDropoff = errors.New("invalid dropoff")

	// ErrInvalidTripMetrics is returned when distance or duration is
	// negative.
	ErrInvalidTripMetrics = errors.New("distance and duration must not be negative")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
