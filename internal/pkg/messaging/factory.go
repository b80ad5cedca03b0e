package messaging

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DriverNone discards messages.
	DriverNone = "none"
	// DriverNSQ selects the NSQ backend.
	DriverNSQ = "nsq"
	// DriverNATS selects the NATS backend.
	DriverNATS = "nats"
	// DriverKafka selects the Kafka backend.
	DriverKafka = "kafka"
)

// ErrUnknownDriver indicates an unsupported messaging driver.
var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions groups config for the supported backends.
type FactoryOptions struct {
	NSQ   NSQConfig
	Kafka KafkaConfig
	NATS  NATSConfig
}

// NewFromDriver constructs a Publisher by driver name. An empty driver
// behaves like DriverNone.
func NewFromDriver(driver string, opts FactoryOptions) (Publisher, error) {
	var (
		p   Publisher
		err error
	)

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverNone:
		return Noop{}, nil
	case DriverNSQ:
		p, err = NewNSQ(opts.NSQ)
	case DriverKafka:
		p, err = NewKafka(opts.Kafka)
	case DriverNATS:
		p, err = NewNATS(opts.NATS)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}

	return p, nil
}
