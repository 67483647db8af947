package service

import (
	"sync"
	"time"

	"rideshare/internal/domain"
)

// ActiveTripRegistry tracks each rider's current trip in memory. Terminal
// trips stay visible for a grace period and are then evicted by a timer;
// the timer is cancelled if the rider requests a new trip first, so an
// eviction can never remove a trip it was not armed for.
type ActiveTripRegistry struct {
	mu            sync.Mutex
	entries       map[string]*registryEntry
	evictionDelay time.Duration
	closed        bool
}

type registryEntry struct {
	trip       *domain.Trip
	evictTimer *time.Timer // nil unless eviction is scheduled
}

// NewActiveTripRegistry creates a registry with the given eviction delay.
func NewActiveTripRegistry(evictionDelay time.Duration) *ActiveTripRegistry {
	return &ActiveTripRegistry{
		entries:       make(map[string]*registryEntry),
		evictionDelay: evictionDelay,
	}
}

// Put stores the rider's current trip, replacing any previous entry and
// cancelling its pending eviction.
func (r *ActiveTripRegistry) Put(trip *domain.Trip) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	if existing, ok := r.entries[trip.RiderID]; ok && existing.evictTimer != nil {
		existing.evictTimer.Stop()
	}

	r.entries[trip.RiderID] = &registryEntry{trip: trip}
}

// Get returns the rider's current trip, if any.
func (r *ActiveTripRegistry) Get(riderID string) (*domain.Trip, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[riderID]
	if !ok {
		return nil, false
	}
	return entry.trip, true
}

// ScheduleEviction arms the eviction timer for the rider's entry. The timer
// only removes the entry if it still holds the same trip when it fires.
func (r *ActiveTripRegistry) ScheduleEviction(riderID, tripID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	entry, ok := r.entries[riderID]
	if !ok || entry.trip.ID != tripID {
		return
	}

	if entry.evictTimer != nil {
		entry.evictTimer.Stop()
	}

	entry.evictTimer = time.AfterFunc(r.evictionDelay, func() {
		r.evict(riderID, tripID)
	})
}

// evict removes the entry unless it has been replaced since the timer was
// armed.
func (r *ActiveTripRegistry) evict(riderID, tripID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[riderID]
	if !ok || entry.trip.ID != tripID {
		return
	}

	delete(r.entries, riderID)
}

// Len reports how many riders currently have an entry.
func (r *ActiveTripRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}

// Close stops all pending eviction timers and drops every entry. Further
// Put and ScheduleEviction calls are ignored.
func (r *ActiveTripRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true

	for _, entry := range r.entries {
		if entry.evictTimer != nil {
			entry.evictTimer.Stop()
		}
	}
	r.entries = make(map[string]*registryEntry)
}
