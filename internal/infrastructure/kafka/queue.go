package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/wms-platform/exception-service/internal/domain"
)

// Config holds the pick-completion queue configuration
type Config struct {
	Brokers       []string
	Topic         string
	ConsumerGroup string
	PollTimeout   time.Duration
	MaxSnapshot   int
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		Topic:         "wms.pick-completions",
		ConsumerGroup: "exception-service",
		PollTimeout:   2 * time.Second,
		MaxSnapshot:   5000,
	}
}

// messageReader is the slice of kafka.Reader the queue uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Queue implements domain.MessageQueue over a Kafka topic with a
// single-consumer-snapshot discipline: Drain fetches whatever is ready
// now, commits it, and returns without re-reading.
type Queue struct {
	reader      messageReader
	pollTimeout time.Duration
	maxSnapshot int
	logger      *slog.Logger
}

// NewQueue creates the pick-completion queue consumer.
func NewQueue(config *Config, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  config.Brokers,
		GroupID:  config.ConsumerGroup,
		Topic:    config.Topic,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	})

	return &Queue{
		reader:      reader,
		pollTimeout: config.PollTimeout,
		maxSnapshot: config.MaxSnapshot,
		logger:      logger,
	}
}

// Drain consumes the topic's currently ready messages as one snapshot.
// An empty topic yields an empty batch, not an error. Fetched messages
// are committed before returning, so a fetch failure mid-drain ends the
// snapshot early rather than erroring: the messages already pulled must
// still reach the caller or they are lost with their offsets. Duplicate
// delivery on a crash between fetch and commit is tolerated downstream.
func (q *Queue) Drain(ctx context.Context) ([]domain.Message, error) {
	var messages []domain.Message
	var fetched []kafka.Message

	for len(messages) < q.maxSnapshot {
		fetchCtx, cancel := context.WithTimeout(ctx, q.pollTimeout)
		msg, err := q.reader.FetchMessage(fetchCtx)
		cancel()

		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				break // nothing more ready; the snapshot is complete
			}
			if len(fetched) == 0 {
				return nil, fmt.Errorf("fetching pick-completion message: %w", err)
			}
			q.logger.Warn("Fetch failed mid-drain; returning the partial snapshot",
				"fetched", len(fetched), "error", err)
			break
		}

		fetched = append(fetched, msg)
		messages = append(messages, domain.Message{
			MessageID: fmt.Sprintf("%s-%d-%d", msg.Topic, msg.Partition, msg.Offset),
			Body:      string(msg.Value),
		})
	}

	if len(fetched) > 0 {
		q.commit(ctx, fetched)
	}

	return messages, nil
}

func (q *Queue) commit(ctx context.Context, fetched []kafka.Message) {
	if err := q.reader.CommitMessages(ctx, fetched...); err != nil {
		q.logger.Error("Failed to commit pick-completion messages", "count", len(fetched), "error", err)
	}
}

// Close shuts down the underlying reader.
func (q *Queue) Close() error {
	return q.reader.Close()
}
