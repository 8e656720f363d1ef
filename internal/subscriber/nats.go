// Package subscriber consumes product change events and re-exports the affected documents.
package subscriber

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/abgdnv/storefront-indexer/internal/document"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/abgdnv/storefront-indexer/internal/service"
	"github.com/abgdnv/storefront-indexer/pkg/config"
	plogger "github.com/abgdnv/storefront-indexer/pkg/logger"
	"github.com/abgdnv/storefront-indexer/pkg/messaging/events"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

// Exporter is the part of the export service the subscriber needs.
type Exporter interface {
	Export(ctx context.Context, req service.ExportRequest) (*document.Product, error)
}

// ackableMsg is the subset of jetstream.Msg used by handleMessage.
type ackableMsg interface {
	Data() []byte
	Ack() error
	Nak() error
	Term() error
}

// Start creates the durable consumer and runs the configured number of workers until ctx is done.
func Start(ctx context.Context, js jetstream.JetStream, cfg config.SubscriberConfig, exporter Exporter, logger *slog.Logger) error {
	logger = logger.With("component", "subscriber")
	consumerCfg := jetstream.ConsumerConfig{
		FilterSubject: cfg.Subject,
		Durable:       cfg.Consumer,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxDeliver:    cfg.MaxDeliver,
	}
	consumer, err := js.CreateOrUpdateConsumer(ctx, cfg.Stream, consumerCfg)
	if err != nil {
		return err
	}
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		g.Go(func() error {
			return runWorker(gCtx, consumer, cfg, exporter, logger.With("worker", i))
		})
	}
	return g.Wait()
}

// runWorker fetches batches from the consumer and handles them one by one.
func runWorker(ctx context.Context, consumer jetstream.Consumer, cfg config.SubscriberConfig, exporter Exporter, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			batch, err := consumer.Fetch(cfg.Batch, jetstream.FetchMaxWait(cfg.Timeout))
			if err != nil {
				if errors.Is(err, nats.ErrTimeout) {
					continue
				}
				logger.ErrorContext(ctx, "failed to fetch messages", "error", err)
				time.Sleep(cfg.Interval)
				continue
			}
			for msg := range batch.Messages() {
				handleMessage(ctx, msg, exporter, logger)
			}
			if err := batch.Error(); err != nil && !errors.Is(err, nats.ErrTimeout) {
				logger.WarnContext(ctx, "batch ended with error", "error", err)
			}
		}
	}
}

// handleMessage exports the product named by one event.
// Undecodable or invalid events are terminated, events for products that cannot be indexed are acked,
// and transient failures are nacked for redelivery.
func handleMessage(ctx context.Context, msg ackableMsg, exporter Exporter, logger *slog.Logger) {
	if msg == nil {
		logger.ErrorContext(ctx, "received nil message")
		return
	}
	var event events.ProductChangedEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorContext(ctx, "failed to unmarshal message", "error", err)
		settle(ctx, msg.Term, "term", logger)
		return
	}
	if err := event.Validate(); err != nil {
		logger.ErrorContext(ctx, "invalid product changed event", "error", err)
		settle(ctx, msg.Term, "term", logger)
		return
	}

	ctx = plogger.WithProductID(ctx, event.ProductID)
	logger.DebugContext(ctx, "received product changed event", "language", event.Language, "store_id", event.StoreID)

	_, err := exporter.Export(ctx, service.ExportRequest{
		ProductID: event.ProductID,
		Language:  event.Language,
		StoreID:   event.StoreID,
	})
	switch {
	case err == nil:
		settle(ctx, msg.Ack, "ack", logger)
	case isPermanent(err):
		logger.WarnContext(ctx, "product cannot be indexed, dropping event", "error", err)
		settle(ctx, msg.Ack, "ack", logger)
	default:
		logger.ErrorContext(ctx, "failed to export product", "error", err)
		settle(ctx, msg.Nak, "nack", logger)
	}
}

// isPermanent reports errors that redelivery cannot fix.
func isPermanent(err error) bool {
	return errors.Is(err, perrors.ErrProductNotFound) ||
		errors.Is(err, perrors.ErrStoreNotFound) ||
		errors.Is(err, perrors.ErrUnsupportedProduct) ||
		errors.Is(err, perrors.ErrCategoryNotFound) ||
		errors.Is(err, perrors.ErrCycleDetected) ||
		errors.Is(err, perrors.ErrMissingRequiredField) ||
		errors.Is(err, perrors.ErrInvalidPrice) ||
		errors.Is(err, perrors.ErrEmptySlug)
}

func settle(ctx context.Context, fn func() error, action string, logger *slog.Logger) {
	if err := fn(); err != nil {
		logger.ErrorContext(ctx, "failed to "+action+" message", "error", err)
	}
}
