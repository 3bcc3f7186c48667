// Package analytics streams vote activity to Kafka for offline analysis.
// Delivery is best effort: a broker outage must never fail the vote that
// triggered the event.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// VoteEvent is one vote or unvote applied to a question.
type VoteEvent struct {
	RoomCode   string    `json:"room_code"`
	QuestionID string    `json:"question_id"`
	VoterID    string    `json:"voter_id"`
	Action     string    `json:"action"` // "vote" or "unvote"
	Votes      int       `json:"votes"`  // count after the change
	Timestamp  time.Time `json:"timestamp"`
}

// VoteSink accepts vote events. Nop is used when analytics is disabled.
type VoteSink interface {
	Publish(ctx context.Context, ev VoteEvent) error
	Close() error
}

// KafkaVoteSink writes vote events keyed by room code so per-room ordering
// is preserved within a partition.
type KafkaVoteSink struct {
	writer *kafka.Writer
}

func NewKafkaVoteSink(brokers []string, topic string) *KafkaVoteSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  5,
		Compression:  kafka.Snappy,
	}
	return &KafkaVoteSink{writer: w}
}

func (s *KafkaVoteSink) Publish(ctx context.Context, ev VoteEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(ev.RoomCode),
		Value: data,
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write vote event to kafka: %w", err)
	}
	return nil
}

func (s *KafkaVoteSink) Close() error {
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}
	return nil
}

// Nop discards all events.
type Nop struct{}

func (Nop) Publish(context.Context, VoteEvent) error { return nil }
func (Nop) Close() error                             { return nil }
