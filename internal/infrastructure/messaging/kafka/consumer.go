package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/Antecedent-Intelligence/internal/config"
	"github.com/turtacn/Antecedent-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Antecedent-Intelligence/pkg/errors"
)

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventHandler receives decoded envelopes. Returning an error stops
// consumption.
type EventHandler func(ctx context.Context, env *EventEnvelope) error

// Consumer follows the chunk status topic.
type Consumer struct {
	reader ReaderInterface
	logger logging.Logger
}

// NewConsumer creates a group consumer for cfg.Topic starting at the newest
// offset.
func NewConsumer(cfg config.KafkaConfig, logger logging.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New(errors.CodeValidation, "kafka brokers required")
	}
	if cfg.Topic == "" {
		return nil, errors.New(errors.CodeValidation, "kafka topic required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.ConsumerGroup,
		Topic:       cfg.Topic,
		StartOffset: kafka.LastOffset,
	})
	return NewConsumerWithReader(reader, logger), nil
}

// NewConsumerWithReader wraps an existing reader.
func NewConsumerWithReader(r ReaderInterface, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{reader: r, logger: logger.Named("kafka_consumer")}
}

// Run fetches messages until ctx is cancelled, the reader is exhausted, or
// the handler fails. Messages that are not valid envelopes are logged,
// committed and skipped.
func (c *Consumer) Run(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, errors.CodeMessageQueueError, "failed to fetch message")
		}

		var env EventEnvelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			c.logger.Warn("skipping malformed event",
				logging.String("topic", msg.Topic),
				logging.Int64("offset", msg.Offset),
				logging.Err(err))
		} else if err := handle(ctx, &env); err != nil {
			return err
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, errors.CodeMessageQueueError, "failed to commit message")
		}
	}
}

// Close closes the reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}

//Personal.AI order the ending
