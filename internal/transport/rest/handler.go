// Package rest provides HTTP handlers to preview and trigger document exports.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	perrors "github.com/abgdnv/storefront-indexer/internal/errors"
	"github.com/abgdnv/storefront-indexer/internal/service"
	"github.com/abgdnv/storefront-indexer/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service  service.ExportService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler with the provided export service.
func NewHandler(service service.ExportService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the indexer.
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products/{id}", func(r chi.Router) {
			r.Get("/document", h.Preview)
			r.Post("/export", h.Export)
		})
		r.Post("/exports", h.ExportAll)
	})

	r.Get("/healthz", h.HealthCheck)
}

// Preview returns the document of a product without publishing it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	storeID, ok := web.OptionalGt(r, w, mLogger, "store", 0)
	if !ok {
		return
	}
	req := service.ExportRequest{ProductID: id, Language: r.URL.Query().Get("language"), StoreID: storeID}
	if !h.validateRequest(w, r, mLogger, req) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to preview document", "ID", id, "language", req.Language, "store", storeID)
	doc, err := h.service.Preview(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, doc)
}

// Export builds and publishes the document of a product.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req service.ExportRequest
	if !h.decode(w, r, mLogger, &req) {
		return
	}
	req.ProductID = id
	if !h.validateRequest(w, r, mLogger, req) {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to export product", "ID", id, "language", req.Language, "store", req.StoreID)
	doc, err := h.service.Export(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, r, mLogger, id, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product exported", "ID", id)
	web.RespondJSON(w, mLogger, http.StatusOK, doc)
}

// ExportAll runs a full export and returns its report.
func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.requestLogger(r)
	var req service.BulkRequest
	if !h.decode(w, r, mLogger, &req) {
		return
	}
	if !h.validateRequest(w, r, mLogger, req) {
		return
	}

	mLogger.InfoContext(r.Context(), "Received request to export all products", "language", req.Language, "store", req.StoreID)
	report, err := h.service.ExportAll(r.Context(), req)
	if err != nil {
		if errors.Is(err, perrors.ErrStoreNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Store with ID %d not found", req.StoreID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Bulk export failed", "error", err)
		if report != nil {
			web.RespondJSON(w, mLogger, http.StatusInternalServerError, map[string]any{"error": "Bulk export aborted", "report": report})
			return
		}
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Bulk export failed")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, report)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// decode reads an optional JSON body into dst. An empty body leaves dst untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) validateRequest(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		errorResponse := make(map[string]string)
		for _, fieldErr := range validationErrors {
			errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
		}
		mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{"validation_errors": errorResponse})
		return false
	}
	mLogger.ErrorContext(r.Context(), "Error validating request", "error", err)
	web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request")
	return false
}

// respondServiceError maps the errors of a single-product operation to HTTP statuses.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id int64, err error) {
	switch {
	case errors.Is(err, perrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %d not found", id))
	case errors.Is(err, perrors.ErrStoreNotFound):
		mLogger.WarnContext(r.Context(), "Store not found", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusNotFound, "Store not found")
	case errors.Is(err, perrors.ErrUnsupportedProduct):
		mLogger.InfoContext(r.Context(), "Product is not supported", "ID", id)
		web.RespondError(w, mLogger, http.StatusUnprocessableEntity, fmt.Sprintf("Product with ID %d has variants and is not indexed as a simple product", id))
	default:
		mLogger.ErrorContext(r.Context(), "Error building product document", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to build document of product with ID %d", id))
	}
}

// requestLogger tags the logger with the matched route. Request and trace ids come from the context handler.
func (h *Handler) requestLogger(r *http.Request) *slog.Logger {
	if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
		return h.logger.With("route", rctx.RoutePattern())
	}
	return h.logger
}
