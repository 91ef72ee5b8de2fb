package service

import (
	"context"
	"log"
)

// AwardsLedger registers loyalty miles for a completed transit. The ledger
// itself is a separate system; only this boundary call exists here and it
// is best-effort at completion time.
type AwardsLedger interface {
	RegisterMiles(ctx context.Context, clientID, transitID string) error
}

// LoggingAwardsLedger is the in-process ledger used until the real awards
// system is wired in. It only records the call.
type LoggingAwardsLedger struct{}

// NewLoggingAwardsLedger creates a new LoggingAwardsLedger.
func NewLoggingAwardsLedger() *LoggingAwardsLedger {
	return &LoggingAwardsLedger{}
}

// RegisterMiles logs the miles registration.
func (l *LoggingAwardsLedger) RegisterMiles(ctx context.Context, clientID, transitID string) error {
	log.Printf("[AWARDS] RegisterMiles: Client=%s, Transit=%s", clientID, transitID)
	return nil
}
