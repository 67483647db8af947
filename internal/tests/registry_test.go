package tests

import (
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. REGISTRY BASICS
// ──────────────────────────────────────────────

func TestRegistry_PutAndGet(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(time.Minute)
	t.Cleanup(r.Close)

	trip := &domain.Trip{ID: "trip-1", RiderID: "rider-1", Status: domain.TripStatusRequested}
	r.Put(trip)

	got, ok := r.Get("rider-1")
	if !ok {
		t.Fatal("expected an entry for rider-1")
	}
	if got.ID != "trip-1" {
		t.Errorf("expected trip-1, got %s", got.ID)
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

func TestRegistry_UnknownRider(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(time.Minute)
	t.Cleanup(r.Close)

	if _, ok := r.Get("nobody"); ok {
		t.Error("expected no entry for an unknown rider")
	}
}

func TestRegistry_PutReplacesEntry(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(time.Minute)
	t.Cleanup(r.Close)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1"})
	r.Put(&domain.Trip{ID: "trip-2", RiderID: "rider-1"})

	got, ok := r.Get("rider-1")
	if !ok || got.ID != "trip-2" {
		t.Error("expected the newer trip to replace the older entry")
	}
	if r.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", r.Len())
	}
}

// ──────────────────────────────────────────────
// 2. EVICTION TIMERS
// ──────────────────────────────────────────────

func TestRegistry_EvictionFiresAfterDelay(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(20 * time.Millisecond)
	t.Cleanup(r.Close)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1", Status: domain.TripStatusCompleted})
	r.ScheduleEviction("rider-1", "trip-1")

	// Still visible right away.
	if _, ok := r.Get("rider-1"); !ok {
		t.Fatal("expected entry to survive until the delay passes")
	}

	waitForEviction(t, r, "rider-1")
}

func TestRegistry_ReplacementCancelsEviction(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(30 * time.Millisecond)
	t.Cleanup(r.Close)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1", Status: domain.TripStatusCompleted})
	r.ScheduleEviction("rider-1", "trip-1")

	// The rider requests again before the timer fires.
	r.Put(&domain.Trip{ID: "trip-2", RiderID: "rider-1", Status: domain.TripStatusRequested})

	time.Sleep(100 * time.Millisecond)

	got, ok := r.Get("rider-1")
	if !ok {
		t.Fatal("expected the new trip to survive the stale timer")
	}
	if got.ID != "trip-2" {
		t.Errorf("expected trip-2, got %s", got.ID)
	}
}

func TestRegistry_EvictionRequiresMatchingTrip(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(20 * time.Millisecond)
	t.Cleanup(r.Close)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1"})

	// A stale eviction request for a different trip must not arm a timer.
	r.ScheduleEviction("rider-1", "some-older-trip")

	time.Sleep(80 * time.Millisecond)

	if _, ok := r.Get("rider-1"); !ok {
		t.Error("expected the current trip to survive a mismatched eviction")
	}
}

func TestRegistry_RescheduleReplacesTimer(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(25 * time.Millisecond)
	t.Cleanup(r.Close)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1"})
	r.ScheduleEviction("rider-1", "trip-1")
	r.ScheduleEviction("rider-1", "trip-1")

	waitForEviction(t, r, "rider-1")
}

func TestRegistry_EvictionForUnknownRiderIsNoop(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(time.Minute)
	t.Cleanup(r.Close)

	r.ScheduleEviction("nobody", "trip-1")

	if r.Len() != 0 {
		t.Errorf("expected the registry to stay empty, got %d entries", r.Len())
	}
}

// ──────────────────────────────────────────────
// 3. SHUTDOWN
// ──────────────────────────────────────────────

func TestRegistry_CloseDropsEntriesAndIgnoresLaterOps(t *testing.T) {
	t.Parallel()

	r := service.NewActiveTripRegistry(time.Minute)

	r.Put(&domain.Trip{ID: "trip-1", RiderID: "rider-1"})
	r.ScheduleEviction("rider-1", "trip-1")

	r.Close()

	if r.Len() != 0 {
		t.Errorf("expected no entries after close, got %d", r.Len())
	}

	// Operations after close are ignored, not panics.
	r.Put(&domain.Trip{ID: "trip-2", RiderID: "rider-2"})
	r.ScheduleEviction("rider-2", "trip-2")

	if _, ok := r.Get("rider-2"); ok {
		t.Error("expected Put after close to be ignored")
	}

	r.Close() // Idempotent.
}

// ──────────────────────────────────────────────
// HELPER FUNCTIONS
// ──────────────────────────────────────────────

// waitForEviction polls until the rider's entry disappears.
func waitForEviction(t *testing.T, r *service.ActiveTripRegistry, riderID string) {
	t.Helper()

	deadline := time.After(2 * time.Second)
	for {
		if _, ok := r.Get(riderID); !ok {
			return
		}
		select {
		case <-deadline:
			t.Fatal("expected the entry to be evicted")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
