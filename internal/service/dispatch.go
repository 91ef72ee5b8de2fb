package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"transit/internal/domain"
	"transit/internal/geo"
	"transit/internal/observability"
	"transit/internal/redis"
	"transit/internal/repository"
)

// DispatchConfig tunes the driver search loop.
type DispatchConfig struct {
	// MaxRounds caps the number of rounds per activation.
	MaxRounds int

	// SaturationThreshold is the number of unanswered proposals above which
	// the loop pauses and waits for driver responses.
	SaturationThreshold int

	// RadiusStepKm is how much the search radius grows each round.
	RadiusStepKm float64

	// PositionWindow is how far back driver position samples count.
	PositionWindow time.Duration

	// AssignmentDeadline is the wall-clock budget from publication; it holds
	// across re-activations, unlike the per-activation round cap.
	AssignmentDeadline time.Duration

	// RoundInterval is the pause between consecutive rounds.
	RoundInterval time.Duration

	// CandidateLimit is the number of nearest candidates considered per round.
	CandidateLimit int

	// LockTTL bounds how long the distributed dispatch lock may be held.
	LockTTL time.Duration
}

// DefaultDispatchConfig returns the production tuning.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		MaxRounds:           20,
		SaturationThreshold: 4,
		RadiusStepKm:        1.0,
		PositionWindow:      5 * time.Minute,
		AssignmentDeadline:  5 * time.Minute,
		RoundInterval:       2 * time.Second,
		CandidateLimit:      20,
		LockTTL:             10 * time.Minute,
	}
}

// Dispatcher runs one bounded search loop per waiting transit. Each round
// widens the radius, finds recently seen drivers, filters them down to
// eligible ones and proposes the transit to the newcomers. The loop exits
// when the transit leaves WAITING_FOR_DRIVER_ASSIGNMENT, when enough
// proposals are pending, when no active car class can serve the request, or
// when the round cap or assignment deadline is exhausted.
type Dispatcher struct {
	cfg         DispatchConfig
	transitRepo repository.TransitRepository
	driverRepo  repository.DriverRepository
	sessionRepo repository.SessionRepository
	carTypeRepo repository.CarTypeRepository
	geocoding   *GeocodingService
	geoSearch   *GeoSearchService
	eligibility *EligibilityService
	notifier    *NotificationService
	lockStore   redis.LockStoreInterface
	locks       *TransitLockSet

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	restart map[string]bool
	closed  bool
	wg      sync.WaitGroup
}

var _ DispatchTrigger = (*Dispatcher)(nil)

// NewDispatcher creates a new Dispatcher. lockStore may be nil; the
// in-process cancel registry then is the only duplicate-loop guard.
func NewDispatcher(
	cfg DispatchConfig,
	transitRepo repository.TransitRepository,
	driverRepo repository.DriverRepository,
	sessionRepo repository.SessionRepository,
	carTypeRepo repository.CarTypeRepository,
	geocoding *GeocodingService,
	geoSearch *GeoSearchService,
	eligibility *EligibilityService,
	notifier *NotificationService,
	lockStore redis.LockStoreInterface,
	locks *TransitLockSet,
) *Dispatcher {
	return &Dispatcher{
		cfg:         cfg,
		transitRepo: transitRepo,
		driverRepo:  driverRepo,
		sessionRepo: sessionRepo,
		carTypeRepo: carTypeRepo,
		geocoding:   geocoding,
		geoSearch:   geoSearch,
		eligibility: eligibility,
		notifier:    notifier,
		lockStore:   lockStore,
		locks:       locks,
		cancels:     make(map[string]context.CancelFunc),
		restart:     make(map[string]bool),
	}
}

// Start launches the dispatch loop for the transit. Idempotent: a transit
// with a loop already running (here or on another instance, via the
// distributed lock) is left alone. A Start that races a finishing loop is
// remembered and honored once the old loop fully releases.
func (d *Dispatcher) Start(transitID string) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	if _, running := d.cancels[transitID]; running {
		d.restart[transitID] = true
		d.mu.Unlock()
		return
	}
	delete(d.restart, transitID)

	ctx, cancel := context.WithCancel(context.Background())

	if d.lockStore != nil {
		acquired, err := d.lockStore.AcquireDispatchLock(ctx, transitID, d.cfg.LockTTL)
		if err != nil {
			log.Printf("[DISPATCH] lock acquisition failed for transit %s: %v", transitID, err)
		}
		if err != nil || !acquired {
			cancel()
			d.mu.Unlock()
			return
		}
	}

	d.cancels[transitID] = cancel
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		defer d.release(transitID, cancel)
		d.run(ctx, transitID)
	}()
}

// Stop cancels the dispatch loop for the transit, if one is running, and
// discards any pending restart.
func (d *Dispatcher) Stop(transitID string) {
	d.mu.Lock()
	delete(d.restart, transitID)
	cancel, ok := d.cancels[transitID]
	d.mu.Unlock()
	if ok {
		cancel()
	}
}

// Shutdown cancels every loop, refuses new starts and waits for the loops
// to drain.
func (d *Dispatcher) Shutdown() {
	d.mu.Lock()
	d.closed = true
	d.restart = make(map[string]bool)
	for _, cancel := range d.cancels {
		cancel()
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) release(transitID string, cancel context.CancelFunc) {
	cancel()

	d.mu.Lock()
	delete(d.cancels, transitID)
	again := d.restart[transitID]
	delete(d.restart, transitID)
	d.mu.Unlock()

	if d.lockStore != nil {
		if err := d.lockStore.ReleaseDispatchLock(context.Background(), transitID); err != nil {
			log.Printf("[DISPATCH] lock release failed for transit %s: %v", transitID, err)
		}
	}

	if again {
		d.Start(transitID)
	}
}

func (d *Dispatcher) run(ctx context.Context, transitID string) {
	for round := 1; ; round++ {
		if ctx.Err() != nil {
			return
		}

		if done := d.RunRound(ctx, transitID, round); done {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(d.cfg.RoundInterval):
		}
	}
}

// RunRound executes a single dispatch round under the transit's mutex and
// reports whether the loop should stop. Exposed so synchronous callers can
// drive the search without the background goroutine.
func (d *Dispatcher) RunRound(ctx context.Context, transitID string, round int) bool {
	started := time.Now()
	defer func() {
		observability.DispatchRoundDuration.Observe(time.Since(started).Seconds())
	}()
	observability.DispatchRoundsTotal.Inc()

	mu := d.locks.Get(transitID)
	mu.Lock()
	defer mu.Unlock()

	transit, err := d.transitRepo.GetByID(ctx, transitID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("[DISPATCH] transit %s vanished, stopping", transitID)
			return true
		}
		log.Printf("[DISPATCH] failed to load transit %s: %v", transitID, err)
		return false
	}

	// Accepted or cancelled while this round was queued.
	if transit.Status != domain.TransitStatusWaitingForAssignment {
		return true
	}

	// Enough offers are in flight; pause and let responses re-arm the loop.
	if transit.AwaitingResponses > d.cfg.SaturationThreshold {
		return true
	}

	if round > d.cfg.MaxRounds || d.deadlineExceeded(transit) {
		return d.failAssignment(ctx, transit)
	}

	carClasses, err := d.eligibleCarClasses(ctx, transit)
	if err != nil {
		log.Printf("[DISPATCH] car class lookup failed for transit %s: %v", transitID, err)
		return false
	}
	if len(carClasses) == 0 {
		log.Printf("[DISPATCH] no active car class matches transit %s, stopping search", transitID)
		return true
	}

	center, err := d.geocoding.ResolveAddressID(ctx, transit.PickupID)
	if err != nil {
		observability.GeocodeFailures.Inc()
		log.Printf("[DISPATCH] pickup geocoding failed for transit %s: %v", transitID, err)
		return false
	}

	radiusKm := float64(round) * d.cfg.RadiusStepKm
	since := time.Now().Add(-d.cfg.PositionWindow)

	candidates := d.geoSearch.FindCandidates(ctx, center, radiusKm, since)
	if len(candidates) == 0 {
		return false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return geo.PlanarDistance(center, candidates[i].Position) <
			geo.PlanarDistance(center, candidates[j].Position)
	})
	if len(candidates) > d.cfg.CandidateLimit {
		candidates = candidates[:d.cfg.CandidateLimit]
	}

	sessionSet, err := d.activeSessionSet(ctx, candidates, carClasses)
	if err != nil {
		log.Printf("[DISPATCH] session lookup failed for transit %s: %v", transitID, err)
		return false
	}

	proposed := false
	for _, candidate := range candidates {
		driver, err := d.driverRepo.GetByID(ctx, candidate.DriverID)
		if err != nil {
			log.Printf("[DISPATCH] skipping driver %s: %v", candidate.DriverID, err)
			continue
		}
		if !d.eligibility.IsEligible(driver, sessionSet[driver.ID], transit) {
			continue
		}

		transit.ProposeTo(driver.ID)
		d.notifier.NotifyPossibleTransit(ctx, driver.ID, transit.ID)
		observability.ProposalsTotal.Inc()
		proposed = true
	}

	if proposed {
		if err := d.transitRepo.Update(ctx, transit); err != nil {
			log.Printf("[DISPATCH] failed to persist proposals for transit %s: %v", transitID, err)
		}
	}
	return false
}

func (d *Dispatcher) deadlineExceeded(transit *domain.Transit) bool {
	if transit.PublishedAt.IsZero() || d.cfg.AssignmentDeadline <= 0 {
		return false
	}
	return time.Since(transit.PublishedAt) > d.cfg.AssignmentDeadline
}

func (d *Dispatcher) failAssignment(ctx context.Context, transit *domain.Transit) bool {
	if !domain.CanTransition(transit.Status, domain.TransitStatusAssignmentFailed) {
		return true
	}

	transit.Status = domain.TransitStatusAssignmentFailed
	if err := d.transitRepo.Update(ctx, transit); err != nil {
		log.Printf("[DISPATCH] failed to mark transit %s as assignment-failed: %v", transit.ID, err)
		return true
	}

	observability.AssignmentFailures.Inc()
	log.Printf("[DISPATCH] driver search exhausted for transit %s", transit.ID)
	return true
}

// eligibleCarClasses resolves which car classes this transit may match. An
// empty result means no active class can serve the request; the caller ends
// the search and leaves the transit waiting. Only a lookup failure is an
// error, counted as an empty round like other provider failures.
func (d *Dispatcher) eligibleCarClasses(ctx context.Context, transit *domain.Transit) ([]string, error) {
	active, err := d.carTypeRepo.FindActiveClasses(ctx)
	if err != nil {
		return nil, err
	}

	if transit.CarClass == "" {
		return active, nil
	}
	for _, class := range active {
		if class == transit.CarClass {
			return []string{transit.CarClass}, nil
		}
	}
	return nil, nil
}

func (d *Dispatcher) activeSessionSet(ctx context.Context, candidates []Candidate, carClasses []string) (map[string]bool, error) {
	driverIDs := make([]string, len(candidates))
	for i, c := range candidates {
		driverIDs[i] = c.DriverID
	}

	activeIDs, err := d.sessionRepo.FindActiveDriverIDs(ctx, driverIDs, carClasses)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(activeIDs))
	for _, id := range activeIDs {
		set[id] = true
	}
	return set, nil
}
