package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsPublisher publishes events to JetStream and waits for the stream acknowledgement.
type NatsPublisher struct {
	js      jetstream.JetStream
	timeout time.Duration
}

func NewNatsPublisher(js jetstream.JetStream, timeout time.Duration) *NatsPublisher {
	return &NatsPublisher{js: js, timeout: timeout}
}

func (p *NatsPublisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return payloadError{err: err}
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", event.Subject(), err)
	}
	return nil
}
