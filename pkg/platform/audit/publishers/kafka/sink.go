// Package kafka streams audit events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "smartbin/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Sink implements audit.Store by producing one record per event, keyed by
// the identity so per-identity order is preserved within a partition.
type Sink struct {
	producer Producer
	topic    string
}

func NewSink(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

// Message is the wire payload.
type Message struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"userId,omitempty"`
	ActorID   string    `json:"actorId,omitempty"`
	Action    string    `json:"action"`
	Subject   string    `json:"subject,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Email     string    `json:"email,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Device    string    `json:"device,omitempty"`
	ClientIP  string    `json:"clientIp,omitempty"`
}

func toMessage(e audit.Event) Message {
	return Message{
		ID:        e.ID,
		Category:  string(e.Category),
		Timestamp: e.Timestamp.UTC(),
		UserID:    e.UserID,
		ActorID:   e.ActorID,
		Action:    e.Action,
		Subject:   e.Subject,
		Reason:    e.Reason,
		Email:     e.Email,
		RequestID: e.RequestID,
		Device:    e.Device,
		ClientIP:  e.ClientIP,
	}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(toMessage(event))
	if err != nil {
		return fmt.Errorf("marshal audit message: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}
