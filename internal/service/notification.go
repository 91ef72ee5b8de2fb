package service

import (
	"context"
	"log"
	"time"

	"transit/internal/events"
)

// NotificationType represents the type of driver notification.
type NotificationType string

const (
	NotificationPossibleTransit NotificationType = "POSSIBLE_TRANSIT"
	NotificationAddressChanged  NotificationType = "TRANSIT_ADDRESS_CHANGED"
	NotificationCancelled       NotificationType = "TRANSIT_CANCELLED"
	NotificationCompleted       NotificationType = "TRANSIT_COMPLETED"
)

// NotificationPublisher publishes notifications to the delivery stream.
type NotificationPublisher interface {
	Publish(ctx context.Context, n events.DriverNotification) error
}

// NotificationService handles driver notification delivery. All sends are
// fire-and-forget: delivery failure never rolls back a lifecycle transition.
type NotificationService struct {
	publisher NotificationPublisher
}

// NewNotificationService creates a new NotificationService. publisher may
// be nil, in which case notifications are only logged.
func NewNotificationService(publisher NotificationPublisher) *NotificationService {
	return &NotificationService{publisher: publisher}
}

// NotifyPossibleTransit tells a driver a transit could be theirs.
func (s *NotificationService) NotifyPossibleTransit(ctx context.Context, driverID, transitID string) {
	s.send(ctx, NotificationPossibleTransit, driverID, transitID)
}

// NotifyAddressChanged tells a proposed or assigned driver the transit's
// address changed; they should re-evaluate, not re-accept.
func (s *NotificationService) NotifyAddressChanged(ctx context.Context, driverID, transitID string) {
	s.send(ctx, NotificationAddressChanged, driverID, transitID)
}

// NotifyCancelled tells the proposed/assigned driver the transit was cancelled.
func (s *NotificationService) NotifyCancelled(ctx context.Context, driverID, transitID string) {
	s.send(ctx, NotificationCancelled, driverID, transitID)
}

// NotifyCompleted tells the driver the transit is closed out.
func (s *NotificationService) NotifyCompleted(ctx context.Context, driverID, transitID string) {
	s.send(ctx, NotificationCompleted, driverID, transitID)
}

func (s *NotificationService) send(ctx context.Context, typ NotificationType, driverID, transitID string) {
	log.Printf("[NOTIFICATION] Type=%s, Driver=%s, Transit=%s", typ, driverID, transitID)

	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.DriverNotification{
		Type:      string(typ),
		DriverID:  driverID,
		TransitID: transitID,
		SentAt:    time.Now(),
	})
	if err != nil {
		log.Printf("[NOTIFICATION] publish failed: Type=%s, Driver=%s, Transit=%s: %v", typ, driverID, transitID, err)
	}
}
