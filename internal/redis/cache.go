package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/domain"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	WalletCacheTTL = 15 * time.Second // Balances move on every settlement
	TripCacheTTL   = 30 * time.Second // Trips are re-read on each transition
)

// Key prefixes
const (
	walletCachePrefix = "cache:wallet:"
	tripCachePrefix   = "cache:trip:"
)

// CachedWallet represents a cached wallet balance.
type CachedWallet struct {
	OwnerID   string  `json:"owner_id"`
	OwnerType string  `json:"owner_type"`
	Balance   float64 `json:"balance"`
}

// CachedTrip represents a cached trip. It carries the full record so reads
// can be served without touching the database.
type CachedTrip struct {
	ID                 string    `json:"id"`
	RiderID            string    `json:"rider_id"`
	Pickup             string    `json:"pickup"`
	Dropoff            string    `json:"dropoff"`
	DistanceKm         float64   `json:"distance_km"`
	DurationSeconds    int64     `json:"duration_seconds"`
	Fare               float64   `json:"fare"`
	Status             string    `json:"status"`
	DriverID           string    `json:"driver_id,omitempty"`
	DriverName         string    `json:"driver_name,omitempty"`
	VehiclePlate       string    `json:"vehicle_plate,omitempty"`
	Method             string    `json:"payment_method"`
	RiderPaid          bool      `json:"rider_paid"`
	DriverPaid         bool      `json:"driver_paid"`
	PlatformCommission float64   `json:"platform_commission"`
	EscrowHeld         bool      `json:"escrow_held"`
	Rating             int       `json:"rating,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	CompletedAt        time.Time `json:"completed_at,omitempty"`
	CancelledAt        time.Time `json:"cancelled_at,omitempty"`
	CancelReason       string    `json:"cancel_reason,omitempty"`
}

func walletKey(ownerID string, ownerType domain.OwnerType) string {
	return walletCachePrefix + string(ownerType) + ":" + ownerID
}

// GetWallet retrieves a wallet balance from cache.
func (s *CacheStore) GetWallet(ctx context.Context, ownerID string, ownerType domain.OwnerType) (*CachedWallet, error) {
	data, err := s.client.Get(ctx, walletKey(ownerID, ownerType)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var wallet CachedWallet
	if err := json.Unmarshal(data, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// SetWallet stores a wallet balance in cache.
func (s *CacheStore) SetWallet(ctx context.Context, wallet *CachedWallet) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	key := walletKey(wallet.OwnerID, domain.OwnerType(wallet.OwnerType))
	return s.client.Set(ctx, key, data, WalletCacheTTL).Err()
}

// InvalidateWallet removes a wallet balance from cache.
func (s *CacheStore) InvalidateWallet(ctx context.Context, ownerID string, ownerType domain.OwnerType) error {
	return s.client.Del(ctx, walletKey(ownerID, ownerType)).Err()
}

// WalletRef identifies one wallet for batch invalidation.
type WalletRef struct {
	OwnerID   string
	OwnerType domain.OwnerType
}

// InvalidateWallets removes several wallet balances from cache using a
// pipeline. Settlement touches up to three wallets in one transition, so
// their stale balances are dropped in a single round trip.
func (s *CacheStore) InvalidateWallets(ctx context.Context, refs []WalletRef) error {
	if len(refs) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for _, ref := range refs {
		pipe.Del(ctx, walletKey(ref.OwnerID, ref.OwnerType))
	}

	_, err := pipe.Exec(ctx)
	return err
}

// GetTrip retrieves a trip snapshot from cache.
func (s *CacheStore) GetTrip(ctx context.Context, tripID string) (*CachedTrip, error) {
	key := tripCachePrefix + tripID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var trip CachedTrip
	if err := json.Unmarshal(data, &trip); err != nil {
		return nil, err
	}
	return &trip, nil
}

// SetTrip stores a trip snapshot in cache.
func (s *CacheStore) SetTrip(ctx context.Context, trip *CachedTrip) error {
	key := tripCachePrefix + trip.ID
	data, err := json.Marshal(trip)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, TripCacheTTL).Err()
}

// InvalidateTrip removes a trip snapshot from cache.
func (s *CacheStore) InvalidateTrip(ctx context.Context, tripID string) error {
	key := tripCachePrefix + tripID
	return s.client.Del(ctx, key).Err()
}
