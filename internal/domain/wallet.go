package domain

import "time"

// OwnerType identifies which kind of party a wallet belongs to.
type OwnerType string

const (
	OwnerTypeRider    OwnerType = "rider"
	OwnerTypeDriver   OwnerType = "driver"
	OwnerTypePlatform OwnerType = "platform"
)

// PlatformOwnerID is the fixed owner id of the singleton platform wallet,
// which accumulates commission from every settled trip.
const PlatformOwnerID = "platform"

// Valid reports whether the owner type is one of the known party kinds.
func (t OwnerType) Valid() bool {
	return t == OwnerTypeRider || t == OwnerTypeDriver || t == OwnerTypePlatform
}

// Wallet holds the balance for one party. Balances never go negative; a
// debit that would underflow is rejected before any mutation.
type Wallet struct {
	OwnerID   string
	OwnerType OwnerType
	Balance   float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
