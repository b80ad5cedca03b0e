// Package messaging publishes domain events to a message broker.
//
// Business code depends on Publisher and OutgoingMessage only, so the broker
// (NATS, Kafka, NSQ, or none at all) is chosen by configuration through
// NewFromDriver.
package messaging
