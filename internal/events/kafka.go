package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// DriverNotification is the wire payload published for every driver-facing
// notification. Downstream delivery (push, SMS) consumes this topic.
type DriverNotification struct {
	Type      string    `json:"type"`
	DriverID  string    `json:"driver_id"`
	TransitID string    `json:"transit_id"`
	SentAt    time.Time `json:"sent_at"`
}

// KafkaPublisher publishes driver notifications to a Kafka topic.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &KafkaPublisher{writer: w}
}

// Publish writes one notification. The caller treats failures as
// best-effort; a short timeout keeps the lifecycle path from blocking.
func (p *KafkaPublisher) Publish(ctx context.Context, n DriverNotification) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(n.DriverID), Value: b})
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
