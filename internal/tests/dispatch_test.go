package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/service"
)

type dispatchFixture struct {
	transitRepo  *MockTransitRepository
	driverRepo   *MockDriverRepository
	sessionRepo  *MockSessionRepository
	carTypeRepo  *MockCarTypeRepository
	positionRepo *MockPositionRepository
	addressRepo  *MockAddressRepository
	geocoder     *MockGeocoder
	publisher    *MockNotificationPublisher
	lockStore    *MockLockStore
	locks        *service.TransitLockSet
	dispatcher   *service.Dispatcher
	cfg          service.DispatchConfig
}

func newDispatchFixture(cfg service.DispatchConfig) *dispatchFixture {
	f := &dispatchFixture{
		transitRepo:  NewMockTransitRepository(),
		driverRepo:   NewMockDriverRepository(),
		sessionRepo:  NewMockSessionRepository(),
		carTypeRepo:  NewMockCarTypeRepository(),
		positionRepo: NewMockPositionRepository(),
		addressRepo:  NewMockAddressRepository(),
		geocoder:     NewMockGeocoder(),
		publisher:    NewMockNotificationPublisher(),
		lockStore:    NewMockLockStore(),
		cfg:          cfg,
	}

	geocoding := service.NewGeocodingService(f.addressRepo, f.geocoder, nil, 0)
	f.locks = service.NewTransitLockSet()
	f.dispatcher = service.NewDispatcher(
		cfg, f.transitRepo, f.driverRepo, f.sessionRepo, f.carTypeRepo,
		geocoding, service.NewGeoSearchService(f.positionRepo),
		service.NewEligibilityService(),
		service.NewNotificationService(f.publisher),
		f.lockStore, f.locks,
	)

	f.carTypeRepo.AddCarType(&domain.CarType{Class: "STANDARD", Active: true})
	return f
}

// seedWaitingTransit stores a waiting transit whose pickup resolves to
// (50.0, 20.0).
func (f *dispatchFixture) seedWaitingTransit(carClass string) *domain.Transit {
	f.addressRepo.AddAddress(&domain.Address{
		ID: "addr-pickup", City: "Kraków", Street: "Główna", Lat: 50.0, Lng: 20.0, Resolved: true,
	})
	f.addressRepo.AddAddress(&domain.Address{
		ID: "addr-dest", City: "Kraków", Street: "Długa", Lat: 50.1, Lng: 20.0, Resolved: true,
	})

	transit := &domain.Transit{
		ID:            "transit-1",
		Status:        domain.TransitStatusWaitingForAssignment,
		ClientID:      "client-1",
		PickupID:      "addr-pickup",
		DestinationID: "addr-dest",
		CarClass:      carClass,
		RequestedAt:   time.Now().Add(-time.Minute),
		PublishedAt:   time.Now(),
	}
	f.transitRepo.AddTransit(transit)
	return transit
}

// addDriverAt registers an active driver with a STANDARD session and one
// fresh position sample.
func (f *dispatchFixture) addDriverAt(id string, lat, lng float64) {
	f.driverRepo.AddDriver(&domain.Driver{ID: id, Name: "Driver " + id, Status: domain.DriverStatusActive})
	f.sessionRepo.AddSession(&domain.DriverSession{
		ID: "session-" + id, DriverID: id, CarClass: "STANDARD", LoggedInAt: time.Now().Add(-time.Hour),
	})
	f.positionRepo.AddSample(id, lat, lng, time.Now())
}

func TestDispatchProposesToEligibleDriverOnly(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	f.seedWaitingTransit("")

	f.addDriverAt("driver-eligible", 50.001, 20.001)

	f.addDriverAt("driver-occupied", 50.001, 20.002)
	f.driverRepo.GetDriver("driver-occupied").Occupied = true

	f.driverRepo.AddDriver(&domain.Driver{ID: "driver-no-session", Status: domain.DriverStatusActive})
	f.positionRepo.AddSample("driver-no-session", 50.002, 20.001, time.Now())

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if done {
		t.Fatal("expected the loop to continue after a proposing round")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 1 || stored.ProposedDriverIDs[0] != "driver-eligible" {
		t.Errorf("expected exactly [driver-eligible] proposed, got %v", stored.ProposedDriverIDs)
	}
	if stored.AwaitingResponses != 1 {
		t.Errorf("expected awaiting responses 1, got %d", stored.AwaitingResponses)
	}
	if got := f.publisher.CountByType("POSSIBLE_TRANSIT", "driver-eligible"); got != 1 {
		t.Errorf("expected 1 proposal notification, got %d", got)
	}
	for _, id := range []string{"driver-occupied", "driver-no-session"} {
		if got := f.publisher.CountByType("POSSIBLE_TRANSIT", id); got != 0 {
			t.Errorf("expected no notification for %s, got %d", id, got)
		}
	}
}

func TestDispatchSaturationPausesLoop(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	transit := f.seedWaitingTransit("")
	transit.ProposedDriverIDs = []string{"d1", "d2", "d3", "d4", "d5"}
	transit.AwaitingResponses = 5
	f.transitRepo.AddTransit(transit)

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if !done {
		t.Error("expected the loop to pause while saturated")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusWaitingForAssignment {
		t.Errorf("expected transit to stay WAITING, got %s", stored.Status)
	}
	if len(stored.ProposedDriverIDs) != 5 {
		t.Errorf("expected proposed set untouched, got %v", stored.ProposedDriverIDs)
	}
}

func TestDispatchRoundCapFailsAssignment(t *testing.T) {
	t.Parallel()
	cfg := service.DefaultDispatchConfig()
	f := newDispatchFixture(cfg)
	f.seedWaitingTransit("")

	done := f.dispatcher.RunRound(context.Background(), "transit-1", cfg.MaxRounds+1)
	if !done {
		t.Error("expected the loop to stop at the round cap")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusAssignmentFailed {
		t.Errorf("expected DRIVER_ASSIGNMENT_FAILED, got %s", stored.Status)
	}
}

func TestDispatchDeadlineFailsAssignment(t *testing.T) {
	t.Parallel()
	cfg := service.DefaultDispatchConfig()
	cfg.AssignmentDeadline = 5 * time.Minute
	f := newDispatchFixture(cfg)
	transit := f.seedWaitingTransit("")
	transit.PublishedAt = time.Now().Add(-10 * time.Minute)
	f.transitRepo.AddTransit(transit)

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if !done {
		t.Error("expected the loop to stop past the deadline")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusAssignmentFailed {
		t.Errorf("expected DRIVER_ASSIGNMENT_FAILED, got %s", stored.Status)
	}
}

func TestDispatchStopsWhenTransitNoLongerWaiting(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	transit := f.seedWaitingTransit("")
	transit.Status = domain.TransitStatusDriverAssigned
	transit.AssignedDriverID = "driver-1"
	f.transitRepo.AddTransit(transit)

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if !done {
		t.Error("expected the loop to stop for an assigned transit")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusDriverAssigned {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}
}

func TestDispatchGeocodeFailureYieldsEmptyRound(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	transit := f.seedWaitingTransit("")
	f.addDriverAt("driver-1", 50.001, 20.001)

	// Unresolve the pickup and break the provider.
	f.addressRepo.AddAddress(&domain.Address{ID: transit.PickupID, City: "Kraków", Street: "Główna"})
	f.geocoder.ResolveError = context.DeadlineExceeded

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if done {
		t.Error("expected the loop to keep going after a provider failure")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 0 {
		t.Errorf("expected no proposals, got %v", stored.ProposedDriverIDs)
	}
}

func TestDispatchInactiveCarClassStopsSearch(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	f.seedWaitingTransit("PREMIUM")
	f.addDriverAt("driver-1", 50.001, 20.001)

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if !done {
		t.Error("expected the search to stop when no active class matches")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusWaitingForAssignment {
		t.Errorf("expected transit to stay WAITING, got %s", stored.Status)
	}
	if len(stored.ProposedDriverIDs) != 0 {
		t.Errorf("expected no proposals for inactive class, got %v", stored.ProposedDriverIDs)
	}
}

func TestDispatchCarClassLookupFailureYieldsEmptyRound(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	f.seedWaitingTransit("")
	f.addDriverAt("driver-1", 50.001, 20.001)
	f.carTypeRepo.FindError = errors.New("connection refused")

	done := f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if done {
		t.Error("expected the loop to keep going after a class lookup failure")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 0 {
		t.Errorf("expected no proposals, got %v", stored.ProposedDriverIDs)
	}
}

func TestDispatchRadiusExpandsWithRounds(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	f.seedWaitingTransit("")

	// Roughly 2 km north of the pickup: outside the 1 km round-1 radius,
	// inside the 3 km round-3 radius.
	f.addDriverAt("driver-far", 50.018, 20.0)

	f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	if stored := f.transitRepo.GetTransit("transit-1"); len(stored.ProposedDriverIDs) != 0 {
		t.Errorf("round 1: expected no proposals yet, got %v", stored.ProposedDriverIDs)
	}

	f.dispatcher.RunRound(context.Background(), "transit-1", 3)
	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 1 || stored.ProposedDriverIDs[0] != "driver-far" {
		t.Errorf("round 3: expected [driver-far] proposed, got %v", stored.ProposedDriverIDs)
	}
}

func TestDispatchNeverProposesTwice(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	f.seedWaitingTransit("")
	f.addDriverAt("driver-1", 50.001, 20.001)

	f.dispatcher.RunRound(context.Background(), "transit-1", 1)
	f.dispatcher.RunRound(context.Background(), "transit-1", 2)

	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 1 {
		t.Errorf("expected a single proposal across rounds, got %v", stored.ProposedDriverIDs)
	}
	if stored.AwaitingResponses != 1 {
		t.Errorf("expected awaiting responses 1, got %d", stored.AwaitingResponses)
	}
	if got := f.publisher.CountByType("POSSIBLE_TRANSIT", "driver-1"); got != 1 {
		t.Errorf("expected 1 notification, got %d", got)
	}
}

func TestDispatcherBackgroundLoopAndLock(t *testing.T) {
	t.Parallel()
	cfg := service.DefaultDispatchConfig()
	cfg.RoundInterval = 5 * time.Millisecond
	f := newDispatchFixture(cfg)
	f.seedWaitingTransit("")
	f.addDriverAt("driver-1", 50.001, 20.001)

	f.dispatcher.Start("transit-1")
	// Second start is a no-op while the loop is running.
	f.dispatcher.Start("transit-1")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if stored := f.transitRepo.GetTransit("transit-1"); len(stored.ProposedDriverIDs) > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if len(stored.ProposedDriverIDs) != 1 {
		t.Fatalf("expected background loop to propose once, got %v", stored.ProposedDriverIDs)
	}
	if f.lockStore.AcquireCallCount != 1 {
		t.Errorf("expected a single lock acquisition, got %d", f.lockStore.AcquireCallCount)
	}

	f.dispatcher.Shutdown()
	if f.lockStore.ReleaseCallCount != 1 {
		t.Errorf("expected the lock to be released on shutdown, got %d releases", f.lockStore.ReleaseCallCount)
	}
}

func TestDispatcherStartDuringFinishingLoopRestarts(t *testing.T) {
	t.Parallel()
	f := newDispatchFixture(service.DefaultDispatchConfig())
	transit := f.seedWaitingTransit("")
	transit.ProposedDriverIDs = []string{"d1", "d2", "d3", "d4", "d5"}
	transit.AwaitingResponses = 5
	f.transitRepo.AddTransit(transit)

	// Hold the transit mutex so the first loop blocks inside its only round.
	mu := f.locks.Get("transit-1")
	mu.Lock()
	f.dispatcher.Start("transit-1")

	// This Start races the loop that is about to pause on saturation; it must
	// not be lost.
	f.dispatcher.Start("transit-1")
	mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if atomic.LoadInt32(&f.lockStore.ReleaseCallCount) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := atomic.LoadInt32(&f.lockStore.AcquireCallCount); got != 2 {
		t.Errorf("expected the raced start to re-acquire the lock, got %d acquisitions", got)
	}
	if got := atomic.LoadInt32(&f.lockStore.ReleaseCallCount); got != 2 {
		t.Errorf("expected both loops to release the lock, got %d releases", got)
	}

	f.dispatcher.Shutdown()
}
