package messaging

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrUnsupported is returned when the broker cannot honour a publish option.
	ErrUnsupported = errors.New("messaging: unsupported operation")
	// ErrDestinationRequired is returned when the topic/subject is empty.
	ErrDestinationRequired = errors.New("messaging: destination is required")
)

// Publisher publishes messages to a destination (topic or subject).
type Publisher interface {
	io.Closer
	// Publish sends msg to destination and returns once the broker accepted it.
	Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error)
}

// OutgoingMessage is a broker-agnostic message.
type OutgoingMessage struct {
	// Body is the payload.
	Body []byte
	// Key is used by Kafka for partitioning.
	Key []byte
	// Headers may repeat keys.
	Headers []Header
	// Delay asks for deferred delivery where the broker supports it (NSQ).
	Delay time.Duration
}

// Header is a message header.
type Header struct {
	Key   string
	Value []byte
}

// PublishResult carries what the broker reported back.
type PublishResult struct {
	// Topic is the destination actually used.
	Topic string
	// Timestamp is when the message was handed to the broker.
	Timestamp time.Time
}

// Noop drops every message. It backs the "none" driver.
type Noop struct{}

// Publish accepts and discards msg.
func (Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}
	if destination == "" {
		return PublishResult{}, ErrDestinationRequired
	}
	return PublishResult{Topic: destination, Timestamp: time.Now()}, nil
}

// Close is a no-op.
func (Noop) Close() error { return nil }
