package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// TopicChunkStatus carries one event per chunk status transition.
const TopicChunkStatus = "antecedent.chunk.status"

// EventTypeChunkStatus is the envelope type of chunk status events.
const EventTypeChunkStatus = "chunk.status"

// EventEnvelope standardizes event messages.
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	SchemaVersion string          `json:"schema_version"`
	RunID         string          `json:"run_id"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEventEnvelope wraps payload in a fresh envelope.
func NewEventEnvelope(eventType, source, runID string, payload interface{}) (*EventEnvelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "v1",
		RunID:         runID,
		Payload:       data,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return errors.New(errors.ErrCodeMalformedInput, "event has no payload").WithDetail("event_id=" + e.EventID)
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeMalformedInput, "failed to decode payload")
	}
	return nil
}

// ToMessage encodes the envelope. Messages are keyed by run id so that the
// events of one run stay ordered within a partition.
func (e *EventEnvelope) ToMessage(topic string) (*Message, error) {
	val, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to marshal envelope")
	}
	return &Message{
		Topic: topic,
		Key:   []byte(e.RunID),
		Value: val,
		Headers: map[string]string{
			"event_type":     e.EventType,
			"source_service": e.Source,
			"schema_version": e.SchemaVersion,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// ChunkEventPublisher publishes chunk status payloads to one topic.
type ChunkEventPublisher struct {
	producer *Producer
	topic    string
	source   string
}

// NewChunkEventPublisher returns a publisher. An empty topic selects
// TopicChunkStatus.
func NewChunkEventPublisher(producer *Producer, topic, source string) *ChunkEventPublisher {
	if topic == "" {
		topic = TopicChunkStatus
	}
	return &ChunkEventPublisher{producer: producer, topic: topic, source: source}
}

// Publish wraps payload in an envelope and writes it.
func (p *ChunkEventPublisher) Publish(ctx context.Context, runID string, payload interface{}) error {
	env, err := NewEventEnvelope(EventTypeChunkStatus, p.source, runID, payload)
	if err != nil {
		return err
	}
	msg, err := env.ToMessage(p.topic)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// Close closes the underlying producer.
func (p *ChunkEventPublisher) Close() error {
	return p.producer.Close()
}

//Personal.AI order the ending
