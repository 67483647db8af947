package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// MOCK TRIP REPOSITORY
// ──────────────────────────────────────────────

// MockTripRepository is a mock implementation of TripRepository.
type MockTripRepository struct {
	mu    sync.RWMutex
	trips map[string]*domain.Trip

	// Counters for verification
	CreateCallCount           int32
	UpdateCallCount           int32
	UpdateFromStatusCallCount int32

	// Error injection
	CreateError error
	UpdateError error
	GetError    error
}

// NewMockTripRepository creates a new mock trip repository.
func NewMockTripRepository() *MockTripRepository {
	return &MockTripRepository{
		trips: make(map[string]*domain.Trip),
	}
}

// AddTrip adds a trip to the mock repository.
func (m *MockTripRepository) AddTrip(trip *domain.Trip) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *trip
	m.trips[trip.ID] = &cp
}

func (m *MockTripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

func (m *MockTripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	trip, ok := m.trips[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	cp := *trip
	return &cp, nil
}

func (m *MockTripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Trip, 0, len(m.trips))
	for _, t := range m.trips {
		cp := *t
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockTripRepository) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Trip
	for _, t := range m.trips {
		if t.RiderID == riderID {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (m *MockTripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.trips[trip.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

func (m *MockTripRepository) UpdateFromStatus(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	atomic.AddInt32(&m.UpdateFromStatusCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.trips[trip.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Status != from {
		return repository.ErrStaleStatus
	}
	cp := *trip
	m.trips[trip.ID] = &cp
	return nil
}

// GetTrip returns the trip by ID (for test assertions).
func (m *MockTripRepository) GetTrip(id string) *domain.Trip {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.trips[id]
}

// CountTrips returns the number of trips.
func (m *MockTripRepository) CountTrips() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.trips)
}

// ──────────────────────────────────────────────
// MOCK WALLET REPOSITORY
// ──────────────────────────────────────────────

// MockWalletRepository is a mock implementation of WalletRepository. Debits
// enforce the non-negative balance floor the way the conditional update in
// postgres does.
type MockWalletRepository struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet

	// Counters for verification
	CreditCallCount int32
	DebitCallCount  int32

	// Error injection
	EnsureError error
	CreditError error
	DebitError  error
}

// NewMockWalletRepository creates a new mock wallet repository.
func NewMockWalletRepository() *MockWalletRepository {
	return &MockWalletRepository{
		wallets: make(map[string]*domain.Wallet),
	}
}

func ownerKey(ownerID string, ownerType domain.OwnerType) string {
	return string(ownerType) + ":" + ownerID
}

// SetBalance creates or overwrites a wallet with the given balance.
func (m *MockWalletRepository) SetBalance(ownerID string, ownerType domain.OwnerType, balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wallets[ownerKey(ownerID, ownerType)] = &domain.Wallet{
		OwnerID:   ownerID,
		OwnerType: ownerType,
		Balance:   balance,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (m *MockWalletRepository) GetByOwner(ctx context.Context, ownerID string, ownerType domain.OwnerType) (*domain.Wallet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[ownerKey(ownerID, ownerType)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *wallet
	return &cp, nil
}

func (m *MockWalletRepository) Ensure(ctx context.Context, ownerID string, ownerType domain.OwnerType) error {
	if m.EnsureError != nil {
		return m.EnsureError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ownerKey(ownerID, ownerType)
	if _, ok := m.wallets[key]; !ok {
		m.wallets[key] = &domain.Wallet{
			OwnerID:   ownerID,
			OwnerType: ownerType,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
	}
	return nil
}

func (m *MockWalletRepository) Credit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error) {
	atomic.AddInt32(&m.CreditCallCount, 1)
	if m.CreditError != nil {
		return 0, m.CreditError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[ownerKey(ownerID, ownerType)]
	if !ok {
		return 0, repository.ErrNotFound
	}
	wallet.Balance += amount
	wallet.UpdatedAt = time.Now()
	return wallet.Balance, nil
}

func (m *MockWalletRepository) Debit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) (float64, error) {
	atomic.AddInt32(&m.DebitCallCount, 1)
	if m.DebitError != nil {
		return 0, m.DebitError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	wallet, ok := m.wallets[ownerKey(ownerID, ownerType)]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if wallet.Balance < amount {
		return 0, repository.ErrInsufficientBalance
	}
	wallet.Balance -= amount
	wallet.UpdatedAt = time.Now()
	return wallet.Balance, nil
}

// Balance returns the current balance, or zero when no wallet exists.
func (m *MockWalletRepository) Balance(ownerID string, ownerType domain.OwnerType) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wallet, ok := m.wallets[ownerKey(ownerID, ownerType)]
	if !ok {
		return 0
	}
	return wallet.Balance
}

// HasWallet checks whether a wallet was materialized for the owner.
func (m *MockWalletRepository) HasWallet(ownerID string, ownerType domain.OwnerType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.wallets[ownerKey(ownerID, ownerType)]
	return ok
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Counters for verification
	AddRatingCallCount int32

	// Error injection
	CreateError error
	ListError   error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *MockUserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

func (m *MockUserRepository) ListActiveByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, u := range m.users {
		if !u.Active {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				cp := *u
				result = append(result, &cp)
				break
			}
		}
	}
	return result, nil
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.Active = active
	return nil
}

func (m *MockUserRepository) AddRating(ctx context.Context, id string, rating int) error {
	atomic.AddInt32(&m.AddRatingCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	user.RatingSum += rating
	user.RatingCount++
	return nil
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

// GetUser returns the user by ID (for test assertions).
func (m *MockUserRepository) GetUser(id string) *domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.users[id]
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION REPOSITORY
// ──────────────────────────────────────────────

// MockNotificationRepository is a mock implementation of
// NotificationRepository. Individual recipients can be made slow or failing
// to exercise the fan-out partitioning.
type MockNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
	failFor       map[string]error
	delayFor      map[string]time.Duration

	// Counters for verification
	CreateCallCount int32

	// Error injection (all sends)
	CreateError error
}

// NewMockNotificationRepository creates a new mock notification repository.
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		failFor:  make(map[string]error),
		delayFor: make(map[string]time.Duration),
	}
}

// FailForUser makes sends to one recipient fail while others succeed.
func (m *MockNotificationRepository) FailForUser(userID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFor[userID] = err
}

// DelayForUser makes sends to one recipient hang for the given duration,
// honoring context cancellation.
func (m *MockNotificationRepository) DelayForUser(userID string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delayFor[userID] = delay
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}

	m.mu.RLock()
	failErr, failing := m.failFor[n.UserID]
	delay := m.delayFor[n.UserID]
	m.mu.RUnlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	if failing {
		return failErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *n
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			cp := *n
			result = append(result, &cp)
		}
	}
	return result, nil
}

// CountForUser returns how many notifications a user received.
func (m *MockNotificationRepository) CountForUser(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID {
			count++
		}
	}
	return count
}

// HasType checks whether the user received a notification of the given type.
func (m *MockNotificationRepository) HasType(userID string, typ domain.NotificationType) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, n := range m.notifications {
		if n.UserID == userID && n.Type == typ {
			return true
		}
	}
	return false
}

// CountNotifications returns the total number of stored notifications.
func (m *MockNotificationRepository) CountNotifications() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notifications)
}

// ──────────────────────────────────────────────
// MOCK PAYOUT REPOSITORY
// ──────────────────────────────────────────────

// MockPayoutRepository is a mock implementation of PayoutRepository. MarkSent
// mirrors the conditional update in postgres: a payout leaves HELD exactly
// once.
type MockPayoutRepository struct {
	mu      sync.RWMutex
	payouts map[string]*domain.Payout

	// Counters for verification
	CreateCallCount   int32
	MarkSentCallCount int32

	// Error injection
	CreateError error
}

// NewMockPayoutRepository creates a new mock payout repository.
func NewMockPayoutRepository() *MockPayoutRepository {
	return &MockPayoutRepository{
		payouts: make(map[string]*domain.Payout),
	}
}

// AddPayout adds a payout to the mock repository.
func (m *MockPayoutRepository) AddPayout(p *domain.Payout) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payouts[p.ID] = &cp
}

func (m *MockPayoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.payouts[p.ID] = &cp
	return nil
}

func (m *MockPayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payout, ok := m.payouts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *payout
	return &cp, nil
}

func (m *MockPayoutRepository) MarkSent(ctx context.Context, id string) error {
	atomic.AddInt32(&m.MarkSentCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	payout, ok := m.payouts[id]
	if !ok {
		return repository.ErrNotFound
	}
	if payout.Status != domain.PayoutStatusHeld {
		return repository.ErrStaleStatus
	}
	payout.Status = domain.PayoutStatusSent
	payout.ReleasedAt = time.Now()
	return nil
}

func (m *MockPayoutRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Payout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payout
	for _, p := range m.payouts {
		if p.DriverID == driverID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

// GetPayout returns the payout by ID (for test assertions).
func (m *MockPayoutRepository) GetPayout(id string) *domain.Payout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payouts[id]
}

// PayoutForTrip returns the payout created for a trip, if any.
func (m *MockPayoutRepository) PayoutForTrip(tripID string) *domain.Payout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.payouts {
		if p.TripID == tripID {
			cp := *p
			return &cp
		}
	}
	return nil
}

// CountPayouts returns the number of payouts.
func (m *MockPayoutRepository) CountPayouts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payouts)
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of LockStoreInterface.
type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]time.Time

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error

	// Force lock failure
	ForceAcquireFailure bool
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{
		locks: make(map[string]time.Time),
	}
}

func (m *MockLockStore) AcquireTripLock(ctx context.Context, tripID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	if m.ForceAcquireFailure {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	key := "lock:trip:" + tripID
	if expiry, exists := m.locks[key]; exists {
		if time.Now().Before(expiry) {
			return false, nil // Lock still held.
		}
	}

	m.locks[key] = time.Now().Add(ttl)
	return true, nil
}

func (m *MockLockStore) ReleaseTripLock(ctx context.Context, tripID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, "lock:trip:"+tripID)
	return nil
}

// IsLocked checks if a trip is locked (for test assertions).
func (m *MockLockStore) IsLocked(tripID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, exists := m.locks["lock:trip:"+tripID]
	return exists && time.Now().Before(expiry)
}

// ──────────────────────────────────────────────
// MOCK SETTLEMENT ENGINE
// ──────────────────────────────────────────────

// MockSettlementEngine implements SettlementEngine against the mock
// repositories. A single mutex stands in for the database transaction: the
// status guard and the wallet writes of one settlement are atomic with
// respect to other settlements.
type MockSettlementEngine struct {
	mu      sync.Mutex
	wallets *MockWalletRepository
	trips   *MockTripRepository
	payouts *MockPayoutRepository

	CommissionRate        float64
	PayoutReviewThreshold float64

	// Counters for verification
	CaptureCallCount int32
	SettleCallCount  int32
	RefundCallCount  int32

	// Error injection
	CaptureError error
	SettleError  error
	RefundError  error
}

// NewMockSettlementEngine creates a settlement engine over mock storage with
// the default commission rate and review threshold.
func NewMockSettlementEngine(wallets *MockWalletRepository, trips *MockTripRepository, payouts *MockPayoutRepository) *MockSettlementEngine {
	return &MockSettlementEngine{
		wallets:               wallets,
		trips:                 trips,
		payouts:               payouts,
		CommissionRate:        0.10,
		PayoutReviewThreshold: 500,
	}
}

func (m *MockSettlementEngine) CaptureFare(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	atomic.AddInt32(&m.CaptureCallCount, 1)
	if m.CaptureError != nil {
		return m.CaptureError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkStatus(ctx, trip.ID, from); err != nil {
		return err
	}

	if err := m.debitRider(ctx, trip); err != nil {
		return err
	}

	return m.trips.Update(ctx, trip)
}

func (m *MockSettlementEngine) SettleCompletion(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	atomic.AddInt32(&m.SettleCallCount, 1)
	if m.SettleError != nil {
		return m.SettleError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkStatus(ctx, trip.ID, from); err != nil {
		return err
	}

	driverShare, commission := service.SplitFare(trip.Fare, m.CommissionRate)

	if !trip.Payment.EscrowHeld {
		if err := m.debitRider(ctx, trip); err != nil {
			return err
		}
	}

	if err := m.credit(ctx, trip.DriverID, domain.OwnerTypeDriver, driverShare); err != nil {
		return err
	}
	if err := m.credit(ctx, domain.PlatformOwnerID, domain.OwnerTypePlatform, commission); err != nil {
		return err
	}

	trip.Payment.DriverPaid = true
	trip.Payment.PlatformCommission = commission
	trip.Payment.EscrowHeld = false

	if err := m.trips.Update(ctx, trip); err != nil {
		return err
	}

	payout := &domain.Payout{
		ID:       "payout-" + trip.ID,
		DriverID: trip.DriverID,
		TripID:   trip.ID,
		Amount:   driverShare,
		Status:   domain.PayoutStatusHeld,
		HeldAt:   time.Now(),
	}
	if driverShare < m.PayoutReviewThreshold {
		payout.Status = domain.PayoutStatusSent
		payout.ReleasedAt = payout.HeldAt
	}

	return m.payouts.Create(ctx, payout)
}

func (m *MockSettlementEngine) RefundCancellation(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundError != nil {
		return m.RefundError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkStatus(ctx, trip.ID, from); err != nil {
		return err
	}

	if trip.Payment.EscrowHeld {
		if err := m.credit(ctx, trip.RiderID, domain.OwnerTypeRider, trip.Fare); err != nil {
			return err
		}
		trip.Payment.RiderPaid = false
		trip.Payment.EscrowHeld = false
	}

	return m.trips.Update(ctx, trip)
}

func (m *MockSettlementEngine) checkStatus(ctx context.Context, tripID string, from domain.TripStatus) error {
	stored, err := m.trips.GetByID(ctx, tripID)
	if err != nil {
		return err
	}
	if stored.Status != from {
		return repository.ErrStaleStatus
	}
	return nil
}

func (m *MockSettlementEngine) debitRider(ctx context.Context, trip *domain.Trip) error {
	if err := m.wallets.Ensure(ctx, trip.RiderID, domain.OwnerTypeRider); err != nil {
		return err
	}
	if _, err := m.wallets.Debit(ctx, trip.RiderID, domain.OwnerTypeRider, trip.Fare); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return service.ErrInsufficientFunds
		}
		return err
	}
	trip.Payment.RiderPaid = true
	trip.Payment.EscrowHeld = true
	return nil
}

func (m *MockSettlementEngine) credit(ctx context.Context, ownerID string, ownerType domain.OwnerType, amount float64) error {
	if err := m.wallets.Ensure(ctx, ownerID, ownerType); err != nil {
		return err
	}
	_, err := m.wallets.Credit(ctx, ownerID, ownerType, amount)
	return err
}

// ──────────────────────────────────────────────
// HELPER ERRORS
// ──────────────────────────────────────────────

var (
	ErrMockTimeout     = errors.New("mock: operation timeout")
	ErrMockUnavailable = errors.New("mock: store unavailable")
)
