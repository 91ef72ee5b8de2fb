package service

import "sync"

// TransitLockSet hands out one mutex per transit ID. Every lifecycle
// transition and every dispatch round for a transit runs under its mutex,
// which is the single-writer guarantee for AwaitingResponses,
// ProposedDriverIDs and AssignedDriverID. Different transits proceed in
// parallel.
type TransitLockSet struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTransitLockSet creates a new TransitLockSet.
func NewTransitLockSet() *TransitLockSet {
	return &TransitLockSet{locks: make(map[string]*sync.Mutex)}
}

// Get returns the mutex for the given transit ID, creating it on first use.
func (l *TransitLockSet) Get(transitID string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[transitID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[transitID] = m
	}
	return m
}
