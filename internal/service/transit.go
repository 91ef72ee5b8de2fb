package service

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/google/uuid"

	"transit/internal/domain"
	"transit/internal/observability"
	"transit/internal/repository"
	"transit/internal/repository/postgres"
)

// DispatchTrigger starts and stops the driver search for a transit.
// Implemented by Dispatcher; split out so TransitService can be constructed
// first and tested without a running dispatch loop.
type DispatchTrigger interface {
	Start(transitID string)
	Stop(transitID string)
}

// AddressInput carries the fields of a new address from the API layer.
type AddressInput struct {
	Country        string
	City           string
	Street         string
	BuildingNumber string
}

// TransitService owns the transit lifecycle. Every transition runs under the
// transit's mutex, so status checks and updates are atomic with respect to
// concurrent driver responses and dispatch rounds.
type TransitService struct {
	db          *sql.DB // optional; nil means single-repo updates without a transaction
	transitRepo repository.TransitRepository
	driverRepo  repository.DriverRepository
	clientRepo  repository.ClientRepository
	addressRepo repository.AddressRepository
	geocoding   *GeocodingService
	tariff      Tariff
	fees        *FeeService
	invoices    *InvoiceService
	awards      AwardsLedger
	notifier    *NotificationService
	locks       *TransitLockSet
	dispatcher  DispatchTrigger
}

// NewTransitService creates a new TransitService. db may be nil; the accept
// path then updates the transit and driver rows without a shared transaction.
func NewTransitService(
	db *sql.DB,
	transitRepo repository.TransitRepository,
	driverRepo repository.DriverRepository,
	clientRepo repository.ClientRepository,
	addressRepo repository.AddressRepository,
	geocoding *GeocodingService,
	fees *FeeService,
	invoices *InvoiceService,
	awards AwardsLedger,
	notifier *NotificationService,
	locks *TransitLockSet,
) *TransitService {
	return &TransitService{
		db:          db,
		transitRepo: transitRepo,
		driverRepo:  driverRepo,
		clientRepo:  clientRepo,
		addressRepo: addressRepo,
		geocoding:   geocoding,
		fees:        fees,
		invoices:    invoices,
		awards:      awards,
		notifier:    notifier,
		locks:       locks,
	}
}

// SetDispatcher wires the dispatch loop. Must be called before Publish;
// nil is tolerated and simply skips dispatch activation.
func (s *TransitService) SetDispatcher(d DispatchTrigger) {
	s.dispatcher = d
}

// CreateTransitRequest contains the parameters for requesting a transit.
type CreateTransitRequest struct {
	ClientID    string
	CarClass    string
	Pickup      AddressInput
	Destination AddressInput
}

// Create registers a new transit in REQUESTED state with an estimated
// distance and price. Both addresses are resolved up front so dispatch never
// starts from an unresolvable pickup.
func (s *TransitService) Create(ctx context.Context, req CreateTransitRequest) (*domain.Transit, error) {
	if req.ClientID == "" {
		return nil, ErrInvalidClientID
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	pickup, err := s.createAddress(ctx, req.Pickup)
	if err != nil {
		return nil, err
	}
	destination, err := s.createAddress(ctx, req.Destination)
	if err != nil {
		return nil, err
	}

	from, err := s.geocoding.Resolve(ctx, pickup)
	if err != nil {
		return nil, err
	}
	to, err := s.geocoding.Resolve(ctx, destination)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	distanceKm := distanceBetween(from, to)

	transit := &domain.Transit{
		ID:            uuid.New().String(),
		Status:        domain.TransitStatusRequested,
		ClientID:      req.ClientID,
		PickupID:      pickup.ID,
		DestinationID: destination.ID,
		CarClass:      req.CarClass,
		DistanceKm:    distanceKm,
		Price:         s.tariff.Price(distanceKm, now),
		RequestedAt:   now,
	}

	if err := s.transitRepo.Create(ctx, transit); err != nil {
		return nil, err
	}
	return transit, nil
}

// Get retrieves a transit by ID.
func (s *TransitService) Get(ctx context.Context, transitID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}
	return s.transitRepo.GetByID(ctx, transitID)
}

// Publish moves the transit into WAITING_FOR_DRIVER_ASSIGNMENT and starts
// the dispatch loop.
func (s *TransitService) Publish(ctx context.Context, transitID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(transit.Status, domain.TransitStatusWaitingForAssignment) {
		return nil, ErrInvalidTransitStatus
	}

	transit.Status = domain.TransitStatusWaitingForAssignment
	transit.PublishedAt = time.Now()

	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Start(transit.ID)
	}
	return transit, nil
}

// AcceptBy assigns the transit to the driver. When several proposed drivers
// race, the transit mutex serializes them: the first one in wins, every
// later one observes DRIVER_ASSIGNED and gets ErrTransitAlreadyAccepted.
func (s *TransitService) AcceptBy(ctx context.Context, transitID, driverID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}

	if transit.Status != domain.TransitStatusWaitingForAssignment {
		if transit.AssignedDriverID != "" {
			return nil, ErrTransitAlreadyAccepted
		}
		return nil, ErrInvalidTransitStatus
	}
	if !transit.WasProposedTo(driverID) {
		return nil, ErrDriverNotProposed
	}

	transit.Status = domain.TransitStatusDriverAssigned
	transit.AssignedDriverID = driverID
	transit.AcceptedAt = time.Now()
	transit.AwaitingResponses = 0
	driver.Occupied = true

	if err := s.updateTransitAndDriver(ctx, transit, driver); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Stop(transit.ID)
	}
	return transit, nil
}

// RejectBy records that a proposed driver declined. When the transit is
// still waiting, the dispatch loop is re-armed so the search resumes even
// after a saturation pause. A rejection after another driver already took
// the transit is still recorded; only terminal transits refuse it.
func (s *TransitService) RejectBy(ctx context.Context, transitID, driverID string) error {
	if transitID == "" {
		return ErrInvalidTransitID
	}
	if driverID == "" {
		return ErrInvalidDriverID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return err
	}
	if !transit.WasProposedTo(driverID) {
		return ErrDriverNotProposed
	}
	if transit.IsTerminal() {
		return ErrInvalidTransitStatus
	}

	if transit.AwaitingResponses > 0 {
		transit.AwaitingResponses--
	}
	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return err
	}

	if s.dispatcher != nil && transit.Status == domain.TransitStatusWaitingForAssignment {
		s.dispatcher.Start(transit.ID)
	}
	return nil
}

// Start begins the ride. Only the assigned driver may start it.
func (s *TransitService) Start(ctx context.Context, transitID, driverID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}
	if transit.Status != domain.TransitStatusDriverAssigned {
		return nil, ErrInvalidTransitStatus
	}
	if transit.AssignedDriverID != driverID {
		return nil, ErrDriverNotAssigned
	}

	transit.Status = domain.TransitStatusInProgress
	transit.StartedAt = time.Now()

	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return nil, err
	}
	return transit, nil
}

// CompleteTransitRequest contains the parameters for completing a transit.
// Destination is optional; when set, the ride ended somewhere other than the
// destination on record.
type CompleteTransitRequest struct {
	TransitID   string
	DriverID    string
	Destination *AddressInput
}

// Complete closes out the ride: final distance and price are recomputed,
// the driver fee is settled, the driver is freed, and the downstream
// side effects (awards, invoice, notification) run best-effort after the
// transit is persisted.
func (s *TransitService) Complete(ctx context.Context, req CompleteTransitRequest) (*domain.Transit, error) {
	if req.TransitID == "" {
		return nil, ErrInvalidTransitID
	}
	if req.DriverID == "" {
		return nil, ErrInvalidDriverID
	}

	mu := s.locks.Get(req.TransitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, req.TransitID)
	if err != nil {
		return nil, err
	}
	if transit.Status != domain.TransitStatusInProgress {
		return nil, ErrInvalidTransitStatus
	}
	if transit.AssignedDriverID != req.DriverID {
		return nil, ErrDriverNotAssigned
	}

	driver, err := s.driverRepo.GetByID(ctx, req.DriverID)
	if err != nil {
		return nil, err
	}

	if req.Destination != nil {
		destination, err := s.createAddress(ctx, *req.Destination)
		if err != nil {
			return nil, err
		}
		transit.DestinationID = destination.ID
	}

	distanceKm, err := s.geocoding.DistanceKm(ctx, transit.PickupID, transit.DestinationID)
	if err != nil {
		return nil, err
	}

	transit.DistanceKm = distanceKm
	transit.Price = s.tariff.Price(distanceKm, transit.RequestedAt)
	transit.Status = domain.TransitStatusCompleted
	transit.CompletedAt = time.Now()
	driver.Occupied = false

	if err := s.updateTransitAndDriver(ctx, transit, driver); err != nil {
		return nil, err
	}

	s.settleDriverFee(ctx, transit)
	s.closeOut(ctx, transit)

	observability.TransitsCompleted.Inc()
	return transit, nil
}

// Cancel aborts the transit. Legal until the ride starts; drivers already
// involved are told to stand down.
func (s *TransitService) Cancel(ctx context.Context, transitID string) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(transit.Status, domain.TransitStatusCancelled) {
		return nil, ErrInvalidTransitStatus
	}

	if transit.AssignedDriverID != "" {
		if driver, err := s.driverRepo.GetByID(ctx, transit.AssignedDriverID); err == nil {
			driver.Occupied = false
			if err := s.driverRepo.Update(ctx, driver); err != nil {
				log.Printf("[TRANSIT] failed to free driver %s on cancel: %v", driver.ID, err)
			}
		}
		s.notifier.NotifyCancelled(ctx, transit.AssignedDriverID, transit.ID)
	} else {
		for _, driverID := range transit.ProposedDriverIDs {
			s.notifier.NotifyCancelled(ctx, driverID, transit.ID)
		}
	}

	transit.Status = domain.TransitStatusCancelled
	transit.AwaitingResponses = 0

	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.dispatcher.Stop(transit.ID)
	}
	return transit, nil
}

// ChangePickup replaces the pickup address. Legal only before a driver is
// assigned; the distance shift between the old and new pickup is computed
// with a single distance call and every already-proposed driver is notified
// exactly once.
func (s *TransitService) ChangePickup(ctx context.Context, transitID string, input AddressInput) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}
	if transit.Status != domain.TransitStatusRequested &&
		transit.Status != domain.TransitStatusWaitingForAssignment {
		return nil, ErrInvalidTransitStatus
	}

	pickup, err := s.createAddress(ctx, input)
	if err != nil {
		return nil, err
	}

	distanceKm, err := s.geocoding.DistanceKm(ctx, pickup.ID, transit.PickupID)
	if err != nil {
		return nil, err
	}

	transit.PickupID = pickup.ID
	transit.DistanceKm = distanceKm
	transit.Price = s.tariff.Price(distanceKm, transit.RequestedAt)

	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return nil, err
	}

	for _, driverID := range transit.ProposedDriverIDs {
		s.notifier.NotifyAddressChanged(ctx, driverID, transit.ID)
	}
	return transit, nil
}

// ChangeDestination replaces the destination address. Legal until the
// transit completes; only the assigned driver, if any, is notified.
func (s *TransitService) ChangeDestination(ctx context.Context, transitID string, input AddressInput) (*domain.Transit, error) {
	if transitID == "" {
		return nil, ErrInvalidTransitID
	}

	mu := s.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := s.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		return nil, err
	}
	if transit.IsTerminal() {
		return nil, ErrInvalidTransitStatus
	}

	destination, err := s.createAddress(ctx, input)
	if err != nil {
		return nil, err
	}

	distanceKm, err := s.geocoding.DistanceKm(ctx, transit.PickupID, destination.ID)
	if err != nil {
		return nil, err
	}

	transit.DestinationID = destination.ID
	transit.DistanceKm = distanceKm
	transit.Price = s.tariff.Price(distanceKm, transit.RequestedAt)

	if err := s.transitRepo.Update(ctx, transit); err != nil {
		return nil, err
	}

	if transit.AssignedDriverID != "" {
		s.notifier.NotifyAddressChanged(ctx, transit.AssignedDriverID, transit.ID)
	}
	return transit, nil
}

func (s *TransitService) createAddress(ctx context.Context, input AddressInput) (*domain.Address, error) {
	if input.City == "" || input.Street == "" {
		return nil, ErrInvalidAddress
	}

	address := &domain.Address{
		ID:             uuid.New().String(),
		Country:        input.Country,
		City:           input.City,
		Street:         input.Street,
		BuildingNumber: input.BuildingNumber,
	}
	if err := s.addressRepo.Create(ctx, address); err != nil {
		return nil, err
	}
	return address, nil
}

// updateTransitAndDriver persists both rows in one transaction when a
// database is available. Without one, the writes are sequential; the transit
// mutex still keeps concurrent accepts from interleaving.
func (s *TransitService) updateTransitAndDriver(ctx context.Context, transit *domain.Transit, driver *domain.Driver) error {
	if s.db == nil {
		if err := s.transitRepo.Update(ctx, transit); err != nil {
			return err
		}
		return s.driverRepo.Update(ctx, driver)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := postgres.NewTransitRepositoryWithTx(tx).Update(ctx, transit); err != nil {
		return err
	}
	if err := postgres.NewDriverRepositoryWithTx(tx).Update(ctx, driver); err != nil {
		return err
	}
	return tx.Commit()
}

// settleDriverFee computes and records the driver fee. Failures are logged,
// not propagated: the completed transition already happened.
func (s *TransitService) settleDriverFee(ctx context.Context, transit *domain.Transit) {
	fee, err := s.fees.DriverFee(ctx, transit.ID)
	if err != nil {
		log.Printf("[TRANSIT] driver fee calculation failed for transit %s: %v", transit.ID, err)
		return
	}

	transit.DriverFee = fee
	if err := s.transitRepo.Update(ctx, transit); err != nil {
		log.Printf("[TRANSIT] failed to record driver fee for transit %s: %v", transit.ID, err)
	}
}

// closeOut runs the post-completion side effects: loyalty miles, invoice,
// driver notification. All best-effort.
func (s *TransitService) closeOut(ctx context.Context, transit *domain.Transit) {
	if s.awards != nil {
		if err := s.awards.RegisterMiles(ctx, transit.ClientID, transit.ID); err != nil {
			log.Printf("[TRANSIT] awards registration failed for transit %s: %v", transit.ID, err)
		}
	}

	if s.invoices != nil {
		payerName := ""
		if client, err := s.clientRepo.GetByID(ctx, transit.ClientID); err == nil {
			payerName = client.Name
		}
		if _, err := s.invoices.Generate(ctx, transit.ID, transit.Price, payerName); err != nil {
			log.Printf("[TRANSIT] invoice generation failed for transit %s: %v", transit.ID, err)
		}
	}

	s.notifier.NotifyCompleted(ctx, transit.AssignedDriverID, transit.ID)
}
