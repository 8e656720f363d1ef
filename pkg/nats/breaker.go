package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/abgdnv/storefront-indexer/pkg/config"
	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/sony/gobreaker/v2"
)

// ErrPayload marks events that could not be encoded; retrying them is pointless and they never trip the breaker.
var ErrPayload = errors.New("invalid event payload")

// BreakerPublisher guards a publisher with a circuit breaker so that a stalled stream fails exports fast.
type BreakerPublisher struct {
	next    messaging.Publisher
	breaker *gobreaker.CircuitBreaker[struct{}]
}

func NewBreakerPublisher(next messaging.Publisher, cfg config.CircuitBreakerConfig) *BreakerPublisher {
	st := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			total := counts.TotalSuccesses + counts.TotalFailures
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures ||
				(total > cfg.ConsecutiveFailures &&
					float64(counts.TotalFailures)/float64(total)*100 > float64(cfg.ErrorRatePercent))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrPayload) ||
				errors.Is(err, context.Canceled)
		},
	}
	return &BreakerPublisher{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[struct{}](st),
	}
}

func (p *BreakerPublisher) Publish(ctx context.Context, event messaging.Event) error {
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.next.Publish(ctx, event)
	})
	return err
}

// State reports the breaker state, e.g. for health checks.
func (p *BreakerPublisher) State() string {
	return p.breaker.State().String()
}

type payloadError struct {
	err error
}

func (e payloadError) Error() string {
	return fmt.Sprintf("%v: %v", ErrPayload, e.err)
}

func (e payloadError) Unwrap() []error {
	return []error{ErrPayload, e.err}
}
