// Package app wires the indexer's components together.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront-indexer/internal/config"
	"github.com/abgdnv/storefront-indexer/internal/mapper"
	"github.com/abgdnv/storefront-indexer/internal/pricing"
	"github.com/abgdnv/storefront-indexer/internal/service"
	"github.com/abgdnv/storefront-indexer/internal/slug"
	"github.com/abgdnv/storefront-indexer/internal/store"
	"github.com/abgdnv/storefront-indexer/internal/transport/rest"
	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/abgdnv/storefront-indexer/pkg/server"
	"github.com/abgdnv/storefront-indexer/pkg/telemetry"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

type Dependencies struct {
	Exporter *service.Exporter
	Logger   *slog.Logger
	// Metrics is served on /metrics when set.
	Metrics *prometheus.Registry
}

// SetupDependencies builds the exporter on top of the catalog store and the document publisher.
func SetupDependencies(catalogStore store.CatalogStore, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	assembler := mapper.NewAssembler(
		cfg.Document,
		pricing.NewStorePriceCalculator(),
		slug.NewSlugifier(cfg.Export.SlugMaxLength),
	)
	exporter := service.NewExporter(catalogStore, assembler, publisher, service.Options{
		Workers:         cfg.Export.Workers,
		BatchSize:       cfg.Export.BatchSize,
		FailFast:        cfg.Export.FailFast,
		DefaultLanguage: cfg.Export.DefaultLanguage,
		DefaultStoreID:  cfg.Export.DefaultStoreID,
	}, logger)

	return &Dependencies{
		Exporter: exporter,
		Logger:   logger,
	}
}

// SetupHttpHandler builds the router with every route of the indexer.
// Used by tests to exercise the full middleware chain.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	rest.NewHandler(deps.Exporter, deps.Logger).RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", telemetry.MetricsHandler(deps.Metrics))
	}
}

// SetupHttpServer creates the HTTP server of the indexer.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, "storefront-indexer", SetupHttpHandler(deps))
}
