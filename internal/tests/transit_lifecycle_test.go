package tests

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"transit/internal/domain"
	"transit/internal/repository"
	"transit/internal/service"
)

type lifecycleFixture struct {
	transitRepo *MockTransitRepository
	driverRepo  *MockDriverRepository
	clientRepo  *MockClientRepository
	addressRepo *MockAddressRepository
	feeRepo     *MockFeeRepository
	invoiceRepo *MockInvoiceRepository
	geocoder    *MockGeocoder
	publisher   *MockNotificationPublisher
	awards      *MockAwardsLedger
	trigger     *MockDispatchTrigger
	svc         *service.TransitService
}

func newLifecycleFixture() *lifecycleFixture {
	f := &lifecycleFixture{
		transitRepo: NewMockTransitRepository(),
		driverRepo:  NewMockDriverRepository(),
		clientRepo:  NewMockClientRepository(),
		addressRepo: NewMockAddressRepository(),
		feeRepo:     NewMockFeeRepository(),
		invoiceRepo: NewMockInvoiceRepository(),
		geocoder:    NewMockGeocoder(),
		publisher:   NewMockNotificationPublisher(),
		awards:      NewMockAwardsLedger(),
		trigger:     NewMockDispatchTrigger(),
	}

	geocoding := service.NewGeocodingService(f.addressRepo, f.geocoder, nil, 0)
	fees := service.NewFeeService(f.feeRepo, f.transitRepo)
	invoices := service.NewInvoiceService(f.invoiceRepo)
	notifier := service.NewNotificationService(f.publisher)

	f.svc = service.NewTransitService(
		nil, f.transitRepo, f.driverRepo, f.clientRepo, f.addressRepo,
		geocoding, fees, invoices, f.awards, notifier,
		service.NewTransitLockSet(),
	)
	f.svc.SetDispatcher(f.trigger)

	f.clientRepo.AddClient(&domain.Client{ID: "client-1", Name: "Jan Kowalski", CreatedAt: time.Now()})
	return f
}

// seedTransit stores a transit with resolved pickup and destination
// addresses so no test depends on the geocoding provider.
func (f *lifecycleFixture) seedTransit(status domain.TransitStatus, proposed ...string) *domain.Transit {
	f.addressRepo.AddAddress(&domain.Address{
		ID: "addr-pickup", City: "Kraków", Street: "Główna", Lat: 50.06, Lng: 19.94, Resolved: true,
	})
	f.addressRepo.AddAddress(&domain.Address{
		ID: "addr-dest", City: "Kraków", Street: "Długa", Lat: 50.10, Lng: 19.94, Resolved: true,
	})

	transit := &domain.Transit{
		ID:                "transit-1",
		Status:            status,
		ClientID:          "client-1",
		PickupID:          "addr-pickup",
		DestinationID:     "addr-dest",
		ProposedDriverIDs: proposed,
		AwaitingResponses: len(proposed),
		RequestedAt:       time.Now().Add(-time.Hour),
	}
	if status != domain.TransitStatusRequested {
		transit.PublishedAt = time.Now().Add(-30 * time.Minute)
	}
	f.transitRepo.AddTransit(transit)
	return transit
}

func (f *lifecycleFixture) addDriver(id string) {
	f.driverRepo.AddDriver(&domain.Driver{ID: id, Name: "Driver " + id, Status: domain.DriverStatusActive})
}

func TestCreateTransit(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.geocoder.SetStreet("Główna", 50.06, 19.94)
	f.geocoder.SetStreet("Długa", 50.10, 19.94)

	transit, err := f.svc.Create(context.Background(), service.CreateTransitRequest{
		ClientID:    "client-1",
		Pickup:      service.AddressInput{City: "Kraków", Street: "Główna"},
		Destination: service.AddressInput{City: "Kraków", Street: "Długa"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if transit.Status != domain.TransitStatusRequested {
		t.Errorf("expected status REQUESTED, got %s", transit.Status)
	}
	if transit.DistanceKm <= 0 {
		t.Errorf("expected positive distance, got %f", transit.DistanceKm)
	}
	if transit.Price <= 0 {
		t.Errorf("expected positive price, got %f", transit.Price)
	}
	if transit.RequestedAt.IsZero() {
		t.Error("expected RequestedAt to be set")
	}
	if f.transitRepo.GetTransit(transit.ID) == nil {
		t.Error("expected transit to be persisted")
	}
}

func TestCreateTransitUnknownClient(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()

	_, err := f.svc.Create(context.Background(), service.CreateTransitRequest{
		ClientID:    "nobody",
		Pickup:      service.AddressInput{City: "Kraków", Street: "Główna"},
		Destination: service.AddressInput{City: "Kraków", Street: "Długa"},
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateTransitInvalidAddress(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()

	_, err := f.svc.Create(context.Background(), service.CreateTransitRequest{
		ClientID:    "client-1",
		Pickup:      service.AddressInput{City: "Kraków"},
		Destination: service.AddressInput{City: "Kraków", Street: "Długa"},
	})
	if !errors.Is(err, service.ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestPublishStartsDispatch(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.seedTransit(domain.TransitStatusRequested)

	transit, err := f.svc.Publish(context.Background(), "transit-1")
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if transit.Status != domain.TransitStatusWaitingForAssignment {
		t.Errorf("expected WAITING_FOR_DRIVER_ASSIGNMENT, got %s", transit.Status)
	}
	if transit.PublishedAt.IsZero() {
		t.Error("expected PublishedAt to be set")
	}
	if f.trigger.StartCallCount != 1 {
		t.Errorf("expected 1 dispatch start, got %d", f.trigger.StartCallCount)
	}
}

func TestPublishTwiceFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.seedTransit(domain.TransitStatusWaitingForAssignment)

	_, err := f.svc.Publish(context.Background(), "transit-1")
	if !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("expected ErrInvalidTransitStatus, got %v", err)
	}
}

func TestAcceptAssignsDriver(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.seedTransit(domain.TransitStatusWaitingForAssignment, "driver-1")

	transit, err := f.svc.AcceptBy(context.Background(), "transit-1", "driver-1")
	if err != nil {
		t.Fatalf("AcceptBy failed: %v", err)
	}

	if transit.Status != domain.TransitStatusDriverAssigned {
		t.Errorf("expected DRIVER_ASSIGNED, got %s", transit.Status)
	}
	if transit.AssignedDriverID != "driver-1" {
		t.Errorf("expected assigned driver driver-1, got %s", transit.AssignedDriverID)
	}
	if transit.AwaitingResponses != 0 {
		t.Errorf("expected awaiting responses reset to 0, got %d", transit.AwaitingResponses)
	}
	if transit.AcceptedAt.IsZero() {
		t.Error("expected AcceptedAt to be set")
	}
	if !f.driverRepo.GetDriver("driver-1").Occupied {
		t.Error("expected driver to be occupied")
	}
	if f.trigger.StopCallCount != 1 {
		t.Errorf("expected 1 dispatch stop, got %d", f.trigger.StopCallCount)
	}
}

func TestAcceptByUnproposedDriverFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	f.seedTransit(domain.TransitStatusWaitingForAssignment, "driver-1")

	_, err := f.svc.AcceptBy(context.Background(), "transit-1", "driver-2")
	if !errors.Is(err, service.ErrDriverNotProposed) {
		t.Errorf("expected ErrDriverNotProposed, got %v", err)
	}
}

func TestAcceptRaceHasOneWinner(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	f.seedTransit(domain.TransitStatusWaitingForAssignment, "driver-1", "driver-2")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, driverID := range []string{"driver-1", "driver-2"} {
		wg.Add(1)
		go func(i int, driverID string) {
			defer wg.Done()
			_, results[i] = f.svc.AcceptBy(context.Background(), "transit-1", driverID)
		}(i, driverID)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, service.ErrTransitAlreadyAccepted):
			losers++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 || losers != 1 {
		t.Errorf("expected exactly one winner and one loser, got %d/%d", winners, losers)
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusDriverAssigned {
		t.Errorf("expected DRIVER_ASSIGNED, got %s", stored.Status)
	}
	if stored.AssignedDriverID == "" {
		t.Error("expected an assigned driver")
	}
}

func TestRejectDecrementsAndRearmsDispatch(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	f.seedTransit(domain.TransitStatusWaitingForAssignment, "driver-1", "driver-2")

	if err := f.svc.RejectBy(context.Background(), "transit-1", "driver-1"); err != nil {
		t.Fatalf("RejectBy failed: %v", err)
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.AwaitingResponses != 1 {
		t.Errorf("expected awaiting responses 1, got %d", stored.AwaitingResponses)
	}
	if stored.Status != domain.TransitStatusWaitingForAssignment {
		t.Errorf("expected transit to stay WAITING, got %s", stored.Status)
	}
	if !stored.WasProposedTo("driver-1") {
		t.Error("expected rejection to keep the driver in the proposed set")
	}
	if f.trigger.StartCallCount != 1 {
		t.Errorf("expected dispatch re-arm, got %d starts", f.trigger.StartCallCount)
	}
}

func TestRejectAfterAnotherDriverAcceptedSucceeds(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	transit := f.seedTransit(domain.TransitStatusDriverAssigned, "driver-1", "driver-2")
	transit.AssignedDriverID = "driver-1"
	transit.AwaitingResponses = 1
	f.transitRepo.AddTransit(transit)

	if err := f.svc.RejectBy(context.Background(), "transit-1", "driver-2"); err != nil {
		t.Fatalf("RejectBy after assignment failed: %v", err)
	}

	stored := f.transitRepo.GetTransit("transit-1")
	if stored.Status != domain.TransitStatusDriverAssigned {
		t.Errorf("expected status unchanged, got %s", stored.Status)
	}
	if stored.AwaitingResponses != 0 {
		t.Errorf("expected awaiting responses 0, got %d", stored.AwaitingResponses)
	}
	if f.trigger.StartCallCount != 0 {
		t.Errorf("expected no dispatch re-arm for an assigned transit, got %d starts", f.trigger.StartCallCount)
	}
}

func TestStartByWrongDriverFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	transit := f.seedTransit(domain.TransitStatusDriverAssigned, "driver-1")
	transit.AssignedDriverID = "driver-1"
	f.transitRepo.AddTransit(transit)

	_, err := f.svc.Start(context.Background(), "transit-1", "driver-2")
	if !errors.Is(err, service.ErrDriverNotAssigned) {
		t.Errorf("expected ErrDriverNotAssigned, got %v", err)
	}
}

func TestCompleteTransit(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.driverRepo.GetDriver("driver-1").Occupied = true
	f.feeRepo.Upsert(context.Background(), &domain.DriverFeeSchedule{
		DriverID: "driver-1", FeeType: domain.FeeTypeFlat, Amount: 10,
	})

	transit := f.seedTransit(domain.TransitStatusInProgress, "driver-1")
	transit.AssignedDriverID = "driver-1"
	transit.AcceptedAt = time.Now().Add(-20 * time.Minute)
	transit.StartedAt = time.Now().Add(-15 * time.Minute)
	f.transitRepo.AddTransit(transit)

	completed, err := f.svc.Complete(context.Background(), service.CompleteTransitRequest{
		TransitID: "transit-1",
		DriverID:  "driver-1",
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if completed.Status != domain.TransitStatusCompleted {
		t.Errorf("expected COMPLETED, got %s", completed.Status)
	}
	if completed.DistanceKm <= 0 {
		t.Errorf("expected positive final distance, got %f", completed.DistanceKm)
	}
	if !completed.AcceptedAt.Before(completed.StartedAt) || !completed.StartedAt.Before(completed.CompletedAt) {
		t.Error("expected accepted < started < completed timestamps")
	}
	if f.driverRepo.GetDriver("driver-1").Occupied {
		t.Error("expected driver to be freed")
	}

	stored := f.transitRepo.GetTransit("transit-1")
	wantFee := stored.Price - 10
	if stored.DriverFee != wantFee {
		t.Errorf("expected driver fee %f, got %f", wantFee, stored.DriverFee)
	}
	if f.awards.RegisterCallCount != 1 {
		t.Errorf("expected 1 awards registration, got %d", f.awards.RegisterCallCount)
	}
	if f.invoiceRepo.CreateCallCount != 1 {
		t.Errorf("expected 1 invoice, got %d", f.invoiceRepo.CreateCallCount)
	}
	if got := f.publisher.CountByType("TRANSIT_COMPLETED", "driver-1"); got != 1 {
		t.Errorf("expected 1 completion notification, got %d", got)
	}
}

func TestCompleteBeforeStartFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	transit := f.seedTransit(domain.TransitStatusDriverAssigned, "driver-1")
	transit.AssignedDriverID = "driver-1"
	f.transitRepo.AddTransit(transit)

	_, err := f.svc.Complete(context.Background(), service.CompleteTransitRequest{
		TransitID: "transit-1",
		DriverID:  "driver-1",
	})
	if !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("expected ErrInvalidTransitStatus, got %v", err)
	}
}

func TestCancelNotifiesProposedDrivers(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.addDriver("driver-2")
	f.seedTransit(domain.TransitStatusWaitingForAssignment, "driver-1", "driver-2")

	transit, err := f.svc.Cancel(context.Background(), "transit-1")
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if transit.Status != domain.TransitStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", transit.Status)
	}
	for _, driverID := range []string{"driver-1", "driver-2"} {
		if got := f.publisher.CountByType("TRANSIT_CANCELLED", driverID); got != 1 {
			t.Errorf("expected 1 cancel notification for %s, got %d", driverID, got)
		}
	}
	if f.trigger.StopCallCount != 1 {
		t.Errorf("expected 1 dispatch stop, got %d", f.trigger.StopCallCount)
	}
}

func TestCancelTwiceFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.seedTransit(domain.TransitStatusRequested)

	if _, err := f.svc.Cancel(context.Background(), "transit-1"); err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}
	_, err := f.svc.Cancel(context.Background(), "transit-1")
	if !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("expected ErrInvalidTransitStatus on second cancel, got %v", err)
	}
}

func TestCancelInProgressFails(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	transit := f.seedTransit(domain.TransitStatusInProgress, "driver-1")
	transit.AssignedDriverID = "driver-1"
	f.transitRepo.AddTransit(transit)

	_, err := f.svc.Cancel(context.Background(), "transit-1")
	if !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("expected ErrInvalidTransitStatus, got %v", err)
	}
}

func TestTerminalStateRejectsAllOperations(t *testing.T) {
	t.Parallel()
	f := newLifecycleFixture()
	f.addDriver("driver-1")
	f.seedTransit(domain.TransitStatusAssignmentFailed, "driver-1")

	ctx := context.Background()
	if _, err := f.svc.Publish(ctx, "transit-1"); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("Publish: expected ErrInvalidTransitStatus, got %v", err)
	}
	if _, err := f.svc.AcceptBy(ctx, "transit-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("AcceptBy: expected ErrInvalidTransitStatus, got %v", err)
	}
	if err := f.svc.RejectBy(ctx, "transit-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("RejectBy: expected ErrInvalidTransitStatus, got %v", err)
	}
	if _, err := f.svc.Start(ctx, "transit-1", "driver-1"); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("Start: expected ErrInvalidTransitStatus, got %v", err)
	}
	if _, err := f.svc.Cancel(ctx, "transit-1"); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("Cancel: expected ErrInvalidTransitStatus, got %v", err)
	}
	if _, err := f.svc.ChangeDestination(ctx, "transit-1", service.AddressInput{City: "Kraków", Street: "Nowa"}); !errors.Is(err, service.ErrInvalidTransitStatus) {
		t.Errorf("ChangeDestination: expected ErrInvalidTransitStatus, got %v", err)
	}
}
