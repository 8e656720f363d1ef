// Package e2e runs the indexer's HTTP API against a real PostgreSQL catalog.
// A container is started with testcontainers-go, the migrations are applied with golang-migrate,
// and the application handler is served by httptest. Published documents are captured in memory.
package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abgdnv/storefront-indexer/internal/app"
	"github.com/abgdnv/storefront-indexer/internal/config"
	"github.com/abgdnv/storefront-indexer/internal/document"
	"github.com/abgdnv/storefront-indexer/internal/service"
	"github.com/abgdnv/storefront-indexer/internal/store"
	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/abgdnv/storefront-indexer/pkg/messaging/events"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// skipE2ETests is the environment variable that can be set to skip E2E tests.
const skipE2ETests = "INDEXER_SKIP_INTEGRATION_TESTS"

type capturingPublisher struct {
	mu     sync.Mutex
	events []events.ProductDocumentEvent
}

func (p *capturingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if e, ok := event.(events.ProductDocumentEvent); ok {
		p.events = append(p.events, e)
	}
	return nil
}

func (p *capturingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type IndexerE2ESuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	server      *httptest.Server
	httpClient  *http.Client
	publisher   *capturingPublisher
	ctx         context.Context
}

func testConfig() *config.Config {
	var cfg config.Config
	cfg.Export = config.ExportConfig{Workers: 4, BatchSize: 1, DefaultLanguage: "en"}
	cfg.Document = document.DefaultDefaults()
	return &cfg
}

func (s *IndexerE2ESuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("catalog"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("5432/tcp"),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = pgxpool.New(s.ctx, connStr)
	require.NoError(s.T(), err, "Failed to create pgx pool")
	for range 10 {
		if err = s.dbPool.Ping(s.ctx); err == nil {
			break
		}
		time.Sleep(time.Second * 2)
	}
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL after retries")

	wd, _ := os.Getwd()
	m, err := migrate.New("file://"+filepath.Join(wd, "..", "..", "..", "migrations"), connStr)
	require.NoError(s.T(), err, "Failed to create migrate instance")
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		_, _ = m.Close()
		require.NoError(s.T(), err, "Failed to apply migrations")
	}

	s.publisher = new(capturingPublisher)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	deps := app.SetupDependencies(store.NewPgStore(s.dbPool), s.publisher, testConfig(), logger)
	s.server = httptest.NewServer(app.SetupHttpHandler(deps))
	s.httpClient = s.server.Client()
}

func (s *IndexerE2ESuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// SetupTest seeds Root(1) > Shoes(2) > Running(3). Shoes shares its id with the default category.
func (s *IndexerE2ESuite) SetupTest() {
	s.publisher.reset()
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE product_images, product_categories, products, categories, stores RESTART IDENTITY CASCADE")
	require.NoError(s.T(), err, "Failed to truncate catalog tables")

	seed := []string{
		`INSERT INTO stores (id, name, currency, default_language, tax_rate, gross_prices, price_precision)
		 VALUES (1, 'Main', 'EUR', 'de', 0.19, TRUE, 2)`,
		`INSERT INTO categories (id, parent_id, key, names) VALUES
		 (1, NULL, 'root', '{"en": "Root"}'),
		 (2, 1, 'shoes', '{"en": "Shoes", "de": "Schuhe"}'),
		 (3, 2, 'running', '{"en": "Running"}')`,
		`INSERT INTO products (id, key, names, sku, base_price, on_hand, main_image_path, created_at, updated_at)
		 VALUES (10, 'runner', '{"en": "Runner"}', 'RUN-1', 89.90, 4, '/img/main.jpg',
		         '2024-03-01 10:30:00+00', '2024-03-01 11:30:00+00')`,
		`INSERT INTO products (id, key, has_variants) VALUES (20, 'configurable', TRUE)`,
		`INSERT INTO product_categories (product_id, category_id, position) VALUES (10, 3, 1), (10, 1, 2)`,
		`INSERT INTO product_images (product_id, position, storage_path) VALUES
		 (10, 2, '/img/side.jpg'), (10, 1, '/img/main.jpg'), (10, 3, NULL)`,
	}
	for _, stmt := range seed {
		_, err := s.dbPool.Exec(s.ctx, stmt)
		require.NoError(s.T(), err, "Failed to seed catalog")
	}
}

func TestIndexerE2E(t *testing.T) {
	if os.Getenv(skipE2ETests) == "1" {
		t.Skip("Skipping E2E tests based on " + skipE2ETests + " env var")
	}
	suite.Run(t, new(IndexerE2ESuite))
}

func (s *IndexerE2ESuite) TestPreviewDocument() {
	testCases := []struct {
		name       string
		query      string
		wantName   string
		wantPrice  float64
		wantLabels []string
	}{
		{
			name:       "english, net prices",
			query:      "?language=en",
			wantName:   "Runner",
			wantPrice:  89.9,
			wantLabels: []string{"Default Category", "Running", "Root"},
		},
		{
			name:       "store default language, gross prices",
			query:      "?store=1",
			wantName:   "runner",
			wantPrice:  106.98,
			wantLabels: []string{"Default Category", "running", "root"},
		},
	}
	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			// when
			resp, err := s.httpClient.Get(s.server.URL + "/api/v1/products/10/document" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			// then
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var doc document.Product
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
			require.Equal(t, tc.wantName, doc.Name)
			require.InDelta(t, tc.wantPrice, doc.Price, 1e-9)
			require.Equal(t, doc.Price, doc.FinalPrice)
			// Shoes (2) collapses into the default category
			require.Equal(t, []int64{2, 3, 1}, doc.CategoryIDs)
			labels := make([]string, len(doc.Categories))
			for i, c := range doc.Categories {
				labels[i] = c.Name
			}
			require.Equal(t, tc.wantLabels, labels)
			require.Equal(t, []document.MediaGalleryEntry{
				{Image: "/img/main.jpg", Position: 1, Type: "image"},
				{Image: "/img/side.jpg", Position: 2, Type: "image"},
			}, doc.MediaGallery)
			require.Equal(t, "2024-03-01 10:30:00", doc.CreatedAt)
			require.True(t, doc.Stock.IsInStock)
		})
	}
}

func (s *IndexerE2ESuite) TestPreviewErrors() {
	testCases := []struct {
		name     string
		path     string
		wantCode int
	}{
		{name: "unknown product", path: "/api/v1/products/404/document", wantCode: http.StatusNotFound},
		{name: "unknown store", path: "/api/v1/products/10/document?store=9", wantCode: http.StatusNotFound},
		{name: "product with variants", path: "/api/v1/products/20/document", wantCode: http.StatusUnprocessableEntity},
	}
	for _, tc := range testCases {
		s.T().Run(tc.name, func(t *testing.T) {
			resp, err := s.httpClient.Get(s.server.URL + tc.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tc.wantCode, resp.StatusCode)
		})
	}
}

func (s *IndexerE2ESuite) TestExportAll() {
	// when
	resp, err := s.httpClient.Post(s.server.URL+"/api/v1/exports", "application/json", strings.NewReader(`{"language":"en"}`))
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	// then
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var report service.BulkReport
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&report))
	require.Equal(s.T(), service.BulkReport{Exported: 1, Skipped: 1}, report)
	require.Len(s.T(), s.publisher.events, 1)
	require.Equal(s.T(), "10", s.publisher.events[0].Key)
	require.Equal(s.T(), "en", s.publisher.events[0].Language)
}
