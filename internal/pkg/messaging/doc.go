// Package messaging provides a broker-agnostic publisher used for
// fire-and-forget security events. Kafka and NATS backends are supported.
package messaging
