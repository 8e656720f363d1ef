// Package service exports catalog products as storefront search documents.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abgdnv/storefront-indexer/internal/catalog"
	"github.com/abgdnv/storefront-indexer/internal/document"
	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/abgdnv/storefront-indexer/internal/mapper"
	"github.com/abgdnv/storefront-indexer/internal/store"
	"github.com/abgdnv/storefront-indexer/pkg/logger"
	"github.com/abgdnv/storefront-indexer/pkg/messaging"
	"github.com/abgdnv/storefront-indexer/pkg/messaging/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/abgdnv/storefront-indexer/internal/service"

// maxReportedFailures caps BulkReport.Failures; the counter keeps counting past it.
const maxReportedFailures = 100

// ExportService defines the export operations exposed to transports.
type ExportService interface {
	// Preview builds the document of one product without publishing it.
	// Returns ErrProductNotFound, ErrStoreNotFound or ErrUnsupportedProduct.
	Preview(ctx context.Context, req ExportRequest) (*document.Product, error)

	// Export builds the document of one product and publishes it.
	Export(ctx context.Context, req ExportRequest) (*document.Product, error)

	// ExportAll builds and publishes the documents of every supported product.
	ExportAll(ctx context.Context, req BulkRequest) (*BulkReport, error)
}

// ExportRequest selects a product and the scope its document is built for.
// Empty Language and zero StoreID select the configured defaults.
type ExportRequest struct {
	ProductID int64  `json:"-"`
	Language  string `json:"language" validate:"omitempty,min=2,max=35"`
	StoreID   int64  `json:"store_id" validate:"gte=0"`
}

// BulkRequest is the scope of a full export.
type BulkRequest struct {
	Language string `json:"language" validate:"omitempty,min=2,max=35"`
	StoreID  int64  `json:"store_id" validate:"gte=0"`
}

// BulkReport summarizes a full export.
type BulkReport struct {
	Exported int             `json:"exported"`
	Skipped  int             `json:"skipped"`
	Failed   int             `json:"failed"`
	Failures []ExportFailure `json:"failures,omitempty"`
}

// ExportFailure is a product that could not be exported.
type ExportFailure struct {
	ProductID int64  `json:"product_id"`
	Error     string `json:"error"`
}

// Options tunes the exporter.
type Options struct {
	Workers         int
	BatchSize       int32
	FailFast        bool
	DefaultLanguage string
	DefaultStoreID  int64
}

// Exporter implements ExportService on top of the catalog store, the document assembler and a publisher.
type Exporter struct {
	store     store.CatalogStore
	assembler *mapper.Assembler
	publisher messaging.Publisher
	opts      Options
	logger    *slog.Logger
	tracer    trace.Tracer
	documents metric.Int64Counter
}

// NewExporter creates an Exporter.
func NewExporter(store store.CatalogStore, assembler *mapper.Assembler, publisher messaging.Publisher, opts Options, logger *slog.Logger) *Exporter {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	meter := otel.Meter("storefront-indexer")
	documents, err := meter.Int64Counter("product_documents", metric.WithDescription("Product documents handled, by outcome"))
	if err != nil {
		panic(fmt.Sprintf("failed to create product_documents counter: %v", err))
	}
	return &Exporter{
		store:     store,
		assembler: assembler,
		publisher: publisher,
		opts:      opts,
		logger:    logger.With("component", "exporter"),
		tracer:    otel.Tracer(tracerName),
		documents: documents,
	}
}

// Supports reports whether product can be exported as a simple product.
// Products with variants are routed elsewhere and never reach the assembler.
func Supports(product catalog.Product) bool {
	return !product.HasVariants
}

// Preview builds the document of one product without publishing it.
func (s *Exporter) Preview(ctx context.Context, req ExportRequest) (*document.Product, error) {
	doc, _, err := s.preview(ctx, req)
	return doc, err
}

// Export builds the document of one product and publishes it.
func (s *Exporter) Export(ctx context.Context, req ExportRequest) (*document.Product, error) {
	ctx, span := s.tracer.Start(ctx, "Exporter.Export", trace.WithAttributes(attribute.Int64("product.id", req.ProductID)))
	defer span.End()

	doc, scope, err := s.preview(ctx, req)
	if err == nil {
		err = s.publish(ctx, doc, scope)
	}
	s.count(ctx, err)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	s.logger.InfoContext(ctx, "Product document exported", "product_id", doc.ID, "language", scope.Language)
	return doc, nil
}

func (s *Exporter) preview(ctx context.Context, req ExportRequest) (*document.Product, mapper.Scope, error) {
	scope, err := s.resolveScope(ctx, req.Language, req.StoreID)
	if err != nil {
		return nil, scope, err
	}
	tree, err := s.store.LoadCategoryTree(ctx)
	if err != nil {
		return nil, scope, fmt.Errorf("failed to load category tree: %w", err)
	}
	doc, err := s.build(ctx, req.ProductID, tree, scope)
	return doc, scope, err
}

// ExportAll pages through the catalog and exports every product with a bounded number of workers.
// A failing product is counted and the run continues, unless FailFast is set.
func (s *Exporter) ExportAll(ctx context.Context, req BulkRequest) (*BulkReport, error) {
	ctx, span := s.tracer.Start(ctx, "Exporter.ExportAll")
	defer span.End()

	scope, err := s.resolveScope(ctx, req.Language, req.StoreID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	// one snapshot of the tree for the whole run
	tree, err := s.store.LoadCategoryTree(ctx)
	if err != nil {
		recordError(span, err)
		return nil, fmt.Errorf("failed to load category tree: %w", err)
	}

	var (
		mu     sync.Mutex
		report BulkReport
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	var afterID int64
	for gCtx.Err() == nil {
		ids, err := s.store.FindProductIDs(gCtx, afterID, s.opts.BatchSize)
		if err != nil {
			g.Go(func() error { return fmt.Errorf("failed to fetch product ids after %d: %w", afterID, err) })
			break
		}
		for _, id := range ids {
			g.Go(func() error {
				err := s.exportOne(gCtx, id, tree, scope)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					report.Exported++
				case errors.Is(err, perrors.ErrUnsupportedProduct):
					report.Skipped++
				case s.opts.FailFast || ctx.Err() != nil:
					return err
				default:
					report.Failed++
					if len(report.Failures) < maxReportedFailures {
						report.Failures = append(report.Failures, ExportFailure{ProductID: id, Error: err.Error()})
					}
					s.logger.WarnContext(gCtx, "Product export failed, continuing", "product_id", id, "error", err)
				}
				return nil
			})
		}
		if int32(len(ids)) < s.opts.BatchSize {
			break
		}
		afterID = ids[len(ids)-1]
	}

	if err := g.Wait(); err != nil {
		recordError(span, err)
		return &report, fmt.Errorf("bulk export aborted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return &report, fmt.Errorf("bulk export interrupted: %w", err)
	}
	span.SetAttributes(
		attribute.Int("export.exported", report.Exported),
		attribute.Int("export.skipped", report.Skipped),
		attribute.Int("export.failed", report.Failed),
	)
	s.logger.InfoContext(ctx, "Bulk export finished",
		"exported", report.Exported, "skipped", report.Skipped, "failed", report.Failed)
	return &report, nil
}

func (s *Exporter) exportOne(ctx context.Context, id int64, tree *catalog.CategoryTree, scope mapper.Scope) error {
	ctx, span := s.tracer.Start(ctx, "Exporter.exportOne", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	doc, err := s.build(ctx, id, tree, scope)
	if err == nil {
		err = s.publish(ctx, doc, scope)
	}
	s.count(ctx, err)
	if err != nil && !errors.Is(err, perrors.ErrUnsupportedProduct) {
		recordError(span, err)
	}
	return err
}

func (s *Exporter) count(ctx context.Context, err error) {
	outcome := "exported"
	switch {
	case err == nil:
	case errors.Is(err, perrors.ErrUnsupportedProduct):
		outcome = "skipped"
	default:
		outcome = "failed"
	}
	s.documents.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// build loads one product and assembles its document.
func (s *Exporter) build(ctx context.Context, id int64, tree *catalog.CategoryTree, scope mapper.Scope) (*document.Product, error) {
	ctx = logger.WithProductID(ctx, id)
	product, err := s.store.FindProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %d: %w", id, err)
	}
	if !Supports(*product) {
		s.logger.DebugContext(ctx, "Product has variants, skipping")
		return nil, fmt.Errorf("product %d has variants: %w", id, perrors.ErrUnsupportedProduct)
	}
	doc, err := s.assembler.Assemble(ctx, *product, tree, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to build document: %w", err)
	}
	s.logger.DebugContext(ctx, "Product document built", "categories", len(doc.CategoryIDs), "images", len(doc.MediaGallery))
	return doc, nil
}

func (s *Exporter) publish(ctx context.Context, doc *document.Product, scope mapper.Scope) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document %d: %w", doc.ID, err)
	}
	event := events.ProductDocumentEvent{
		Key:      document.Key(doc.ID),
		Language: scope.Language,
		Document: payload,
	}
	if scope.Store != nil {
		event.StoreID = scope.Store.ID
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish document %d: %w", doc.ID, err)
	}
	return nil
}

// resolveScope loads the requested store, or the default one, and settles the document language.
func (s *Exporter) resolveScope(ctx context.Context, language string, storeID int64) (mapper.Scope, error) {
	if storeID == 0 {
		storeID = s.opts.DefaultStoreID
	}
	var st *catalog.Store
	if storeID > 0 {
		found, err := s.store.FindStoreByID(ctx, storeID)
		if err != nil {
			return mapper.Scope{}, fmt.Errorf("failed to load store %d: %w", storeID, err)
		}
		st = found
	}
	return mapper.Scope{Language: s.language(language, st), Store: st}, nil
}

// language picks the requested language, then the store default, then the configured default.
func (s *Exporter) language(requested string, st *catalog.Store) string {
	if requested != "" {
		return requested
	}
	if st != nil && st.DefaultLanguage != "" {
		return st.DefaultLanguage
	}
	return s.opts.DefaultLanguage
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
