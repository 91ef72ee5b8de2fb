package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"transit/internal/domain"
	"transit/internal/events"
	"transit/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK TRANSIT REPOSITORY
// ──────────────────────────────────────────────

// MockTransitRepository is a mock implementation of TransitRepository.
type MockTransitRepository struct {
	mu       sync.RWMutex
	transits map[string]*domain.Transit

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockTransitRepository creates a new mock transit repository.
func NewMockTransitRepository() *MockTransitRepository {
	return &MockTransitRepository{
		transits: make(map[string]*domain.Transit),
	}
}

// AddTransit adds a transit to the mock repository.
func (m *MockTransitRepository) AddTransit(transit *domain.Transit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transits[transit.ID] = transit
}

func (m *MockTransitRepository) Create(ctx context.Context, transit *domain.Transit) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *transit
	copy.ProposedDriverIDs = append([]string(nil), transit.ProposedDriverIDs...)
	m.transits[transit.ID] = &copy
	return nil
}

func (m *MockTransitRepository) GetByID(ctx context.Context, id string) (*domain.Transit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	transit, ok := m.transits[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *transit
	copy.ProposedDriverIDs = append([]string(nil), transit.ProposedDriverIDs...)
	return &copy, nil
}

func (m *MockTransitRepository) Update(ctx context.Context, transit *domain.Transit) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transits[transit.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *transit
	copy.ProposedDriverIDs = append([]string(nil), transit.ProposedDriverIDs...)
	m.transits[transit.ID] = &copy
	return nil
}

func (m *MockTransitRepository) GetAll(ctx context.Context) ([]*domain.Transit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.Transit, 0, len(m.transits))
	for _, t := range m.transits {
		copy := *t
		result = append(result, &copy)
	}
	return result, nil
}

// GetTransit returns the stored transit for test assertions.
func (m *MockTransitRepository) GetTransit(id string) *domain.Transit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.transits[id]
}

// ──────────────────────────────────────────────
// MOCK DRIVER REPOSITORY
// ──────────────────────────────────────────────

// MockDriverRepository is a mock implementation of DriverRepository.
type MockDriverRepository struct {
	mu      sync.RWMutex
	drivers map[string]*domain.Driver

	// Counters for verification
	CreateCallCount int32
	UpdateCallCount int32

	// Error injection
	CreateError error
	UpdateError error
}

// NewMockDriverRepository creates a new mock driver repository.
func NewMockDriverRepository() *MockDriverRepository {
	return &MockDriverRepository{
		drivers: make(map[string]*domain.Driver),
	}
}

// AddDriver adds a driver to the mock repository.
func (m *MockDriverRepository) AddDriver(driver *domain.Driver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drivers[driver.ID] = driver
	return nil
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	driver, ok := m.drivers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *driver
	return &copy, nil
}

func (m *MockDriverRepository) Update(ctx context.Context, driver *domain.Driver) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateError != nil {
		return m.UpdateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[driver.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *driver
	m.drivers[driver.ID] = &copy
	return nil
}

// GetDriver returns the stored driver for test assertions.
func (m *MockDriverRepository) GetDriver(id string) *domain.Driver {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.drivers[id]
}

// ──────────────────────────────────────────────
// MOCK CLIENT REPOSITORY
// ──────────────────────────────────────────────

// MockClientRepository is a mock implementation of ClientRepository.
type MockClientRepository struct {
	mu      sync.RWMutex
	clients map[string]*domain.Client
}

// NewMockClientRepository creates a new mock client repository.
func NewMockClientRepository() *MockClientRepository {
	return &MockClientRepository{
		clients: make(map[string]*domain.Client),
	}
}

// AddClient adds a client to the mock repository.
func (m *MockClientRepository) AddClient(client *domain.Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
}

func (m *MockClientRepository) Create(ctx context.Context, client *domain.Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[client.ID] = client
	return nil
}

func (m *MockClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	client, ok := m.clients[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *client
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK ADDRESS REPOSITORY
// ──────────────────────────────────────────────

// MockAddressRepository is a mock implementation of AddressRepository.
type MockAddressRepository struct {
	mu        sync.RWMutex
	addresses map[string]*domain.Address
}

// NewMockAddressRepository creates a new mock address repository.
func NewMockAddressRepository() *MockAddressRepository {
	return &MockAddressRepository{
		addresses: make(map[string]*domain.Address),
	}
}

// AddAddress adds an address to the mock repository.
func (m *MockAddressRepository) AddAddress(address *domain.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addresses[address.ID] = address
}

func (m *MockAddressRepository) Create(ctx context.Context, address *domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *address
	m.addresses[address.ID] = &copy
	return nil
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	address, ok := m.addresses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *address
	return &copy, nil
}

func (m *MockAddressRepository) Update(ctx context.Context, address *domain.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.addresses[address.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *address
	m.addresses[address.ID] = &copy
	return nil
}

// ──────────────────────────────────────────────
// MOCK SESSION REPOSITORY
// ──────────────────────────────────────────────

// MockSessionRepository is a mock implementation of SessionRepository.
type MockSessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.DriverSession

	// Error injection
	FindError error
}

// NewMockSessionRepository creates a new mock session repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions: make(map[string]*domain.DriverSession),
	}
}

// AddSession adds a session to the mock repository.
func (m *MockSessionRepository) AddSession(session *domain.DriverSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.DriverSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *MockSessionRepository) GetActiveByDriverID(ctx context.Context, driverID string) (*domain.DriverSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.sessions {
		if s.DriverID == driverID && s.IsActive() {
			copy := *s
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *MockSessionRepository) Update(ctx context.Context, session *domain.DriverSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[session.ID]; !ok {
		return repository.ErrNotFound
	}
	copy := *session
	m.sessions[session.ID] = &copy
	return nil
}

func (m *MockSessionRepository) FindActiveDriverIDs(ctx context.Context, driverIDs []string, carClasses []string) ([]string, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	classSet := make(map[string]bool, len(carClasses))
	for _, c := range carClasses {
		classSet[c] = true
	}

	var result []string
	for _, id := range driverIDs {
		for _, s := range m.sessions {
			if s.DriverID == id && s.IsActive() && classSet[s.CarClass] {
				result = append(result, id)
				break
			}
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK CAR TYPE REPOSITORY
// ──────────────────────────────────────────────

// MockCarTypeRepository is a mock implementation of CarTypeRepository.
type MockCarTypeRepository struct {
	mu       sync.RWMutex
	carTypes map[string]*domain.CarType

	// Error injection
	FindError error
}

// NewMockCarTypeRepository creates a new mock car type repository.
func NewMockCarTypeRepository() *MockCarTypeRepository {
	return &MockCarTypeRepository{
		carTypes: make(map[string]*domain.CarType),
	}
}

// AddCarType adds a car type to the mock repository.
func (m *MockCarTypeRepository) AddCarType(carType *domain.CarType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carTypes[carType.Class] = carType
}

func (m *MockCarTypeRepository) Upsert(ctx context.Context, carType *domain.CarType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *carType
	m.carTypes[carType.Class] = &copy
	return nil
}

func (m *MockCarTypeRepository) GetByClass(ctx context.Context, class string) (*domain.CarType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	carType, ok := m.carTypes[class]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *carType
	return &copy, nil
}

func (m *MockCarTypeRepository) FindActiveClasses(ctx context.Context) ([]string, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var classes []string
	for _, ct := range m.carTypes {
		if ct.Active {
			classes = append(classes, ct.Class)
		}
	}
	return classes, nil
}

// ──────────────────────────────────────────────
// MOCK POSITION REPOSITORY
// ──────────────────────────────────────────────

// MockPositionRepository is a mock implementation of PositionRepository. It
// computes windowed per-driver averages the way the SQL query does.
type MockPositionRepository struct {
	mu      sync.RWMutex
	samples []domain.DriverPosition

	// Error injection
	FindError error
}

// NewMockPositionRepository creates a new mock position repository.
func NewMockPositionRepository() *MockPositionRepository {
	return &MockPositionRepository{}
}

// AddSample adds a position sample.
func (m *MockPositionRepository) AddSample(driverID string, lat, lng float64, seenAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, domain.DriverPosition{
		DriverID: driverID,
		Lat:      lat,
		Lng:      lng,
		SeenAt:   seenAt,
	})
}

func (m *MockPositionRepository) Append(ctx context.Context, position *domain.DriverPosition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, *position)
	return nil
}

func (m *MockPositionRepository) FindAverageSince(ctx context.Context, latMin, latMax, lngMin, lngMax float64, since time.Time) ([]domain.DriverAvgPosition, error) {
	if m.FindError != nil {
		return nil, m.FindError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	type acc struct {
		sumLat, sumLng float64
		count          int
		latest         time.Time
	}
	byDriver := make(map[string]*acc)
	var order []string

	for _, s := range m.samples {
		if !s.SeenAt.After(since) {
			continue
		}
		if s.Lat < latMin || s.Lat > latMax || s.Lng < lngMin || s.Lng > lngMax {
			continue
		}
		a, ok := byDriver[s.DriverID]
		if !ok {
			a = &acc{}
			byDriver[s.DriverID] = a
			order = append(order, s.DriverID)
		}
		a.sumLat += s.Lat
		a.sumLng += s.Lng
		a.count++
		if s.SeenAt.After(a.latest) {
			a.latest = s.SeenAt
		}
	}

	result := make([]domain.DriverAvgPosition, 0, len(order))
	for _, id := range order {
		a := byDriver[id]
		result = append(result, domain.DriverAvgPosition{
			DriverID: id,
			Lat:      a.sumLat / float64(a.count),
			Lng:      a.sumLng / float64(a.count),
			SeenAt:   a.latest,
		})
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK FEE REPOSITORY
// ──────────────────────────────────────────────

// MockFeeRepository is a mock implementation of FeeRepository.
type MockFeeRepository struct {
	mu        sync.RWMutex
	schedules map[string]*domain.DriverFeeSchedule
}

// NewMockFeeRepository creates a new mock fee repository.
func NewMockFeeRepository() *MockFeeRepository {
	return &MockFeeRepository{
		schedules: make(map[string]*domain.DriverFeeSchedule),
	}
}

func (m *MockFeeRepository) Upsert(ctx context.Context, schedule *domain.DriverFeeSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *schedule
	m.schedules[schedule.DriverID] = &copy
	return nil
}

func (m *MockFeeRepository) GetByDriverID(ctx context.Context, driverID string) (*domain.DriverFeeSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schedule, ok := m.schedules[driverID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *schedule
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK INVOICE REPOSITORY
// ──────────────────────────────────────────────

// MockInvoiceRepository is a mock implementation of InvoiceRepository.
type MockInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[string]*domain.Invoice

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockInvoiceRepository creates a new mock invoice repository.
func NewMockInvoiceRepository() *MockInvoiceRepository {
	return &MockInvoiceRepository{
		invoices: make(map[string]*domain.Invoice),
	}
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *invoice
	m.invoices[invoice.TransitID] = &copy
	return nil
}

func (m *MockInvoiceRepository) GetByTransitID(ctx context.Context, transitID string) (*domain.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	invoice, ok := m.invoices[transitID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *invoice
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK GEOCODER
// ──────────────────────────────────────────────

// MockGeocoder is a mock geocoding provider. Coordinates are looked up by
// street name, falling back to a fixed point.
type MockGeocoder struct {
	mu       sync.RWMutex
	byStreet map[string][2]float64
	FixedLat float64
	FixedLng float64

	// Counters for verification
	ResolveCallCount int32

	// Error injection
	ResolveError error
}

// NewMockGeocoder creates a new mock geocoder.
func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{
		byStreet: make(map[string][2]float64),
	}
}

// SetStreet maps a street name to coordinates.
func (m *MockGeocoder) SetStreet(street string, lat, lng float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byStreet[street] = [2]float64{lat, lng}
}

func (m *MockGeocoder) Resolve(ctx context.Context, address *domain.Address) (float64, float64, error) {
	atomic.AddInt32(&m.ResolveCallCount, 1)
	if m.ResolveError != nil {
		return 0, 0, m.ResolveError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if coords, ok := m.byStreet[address.Street]; ok {
		return coords[0], coords[1], nil
	}
	return m.FixedLat, m.FixedLng, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION PUBLISHER
// ──────────────────────────────────────────────

// MockNotificationPublisher records every published driver notification.
type MockNotificationPublisher struct {
	mu   sync.RWMutex
	sent []events.DriverNotification

	// Error injection
	PublishError error
}

// NewMockNotificationPublisher creates a new mock notification publisher.
func NewMockNotificationPublisher() *MockNotificationPublisher {
	return &MockNotificationPublisher{}
}

func (m *MockNotificationPublisher) Publish(ctx context.Context, n events.DriverNotification) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return nil
}

// Sent returns a snapshot of everything published.
func (m *MockNotificationPublisher) Sent() []events.DriverNotification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]events.DriverNotification(nil), m.sent...)
}

// CountByType counts notifications of the given type sent to the driver.
func (m *MockNotificationPublisher) CountByType(typ, driverID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, n := range m.sent {
		if n.Type == typ && n.DriverID == driverID {
			count++
		}
	}
	return count
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

// MockLockStore is a mock implementation of the dispatch lock store.
type MockLockStore struct {
	mu   sync.Mutex
	held map[string]bool

	// Counters for verification
	AcquireCallCount int32
	ReleaseCallCount int32

	// Error injection
	AcquireError error
}

// NewMockLockStore creates a new mock lock store.
func NewMockLockStore() *MockLockStore {
	return &MockLockStore{held: make(map[string]bool)}
}

func (m *MockLockStore) AcquireDispatchLock(ctx context.Context, transitID string, ttl time.Duration) (bool, error) {
	atomic.AddInt32(&m.AcquireCallCount, 1)
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[transitID] {
		return false, nil
	}
	m.held[transitID] = true
	return true, nil
}

func (m *MockLockStore) ReleaseDispatchLock(ctx context.Context, transitID string) error {
	atomic.AddInt32(&m.ReleaseCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, transitID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK DISPATCH TRIGGER
// ──────────────────────────────────────────────

// MockDispatchTrigger records dispatch start/stop requests.
type MockDispatchTrigger struct {
	StartCallCount int32
	StopCallCount  int32
}

// NewMockDispatchTrigger creates a new mock dispatch trigger.
func NewMockDispatchTrigger() *MockDispatchTrigger {
	return &MockDispatchTrigger{}
}

func (m *MockDispatchTrigger) Start(transitID string) {
	atomic.AddInt32(&m.StartCallCount, 1)
}

func (m *MockDispatchTrigger) Stop(transitID string) {
	atomic.AddInt32(&m.StopCallCount, 1)
}

// ──────────────────────────────────────────────
// MOCK AWARDS LEDGER
// ──────────────────────────────────────────────

// MockAwardsLedger records loyalty mile registrations.
type MockAwardsLedger struct {
	RegisterCallCount int32

	// Error injection
	RegisterError error
}

// NewMockAwardsLedger creates a new mock awards ledger.
func NewMockAwardsLedger() *MockAwardsLedger {
	return &MockAwardsLedger{}
}

func (m *MockAwardsLedger) RegisterMiles(ctx context.Context, clientID, transitID string) error {
	atomic.AddInt32(&m.RegisterCallCount, 1)
	return m.RegisterError
}
