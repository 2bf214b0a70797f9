// Package rest provides HTTP handlers for orders and stock administration.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	inverrors "github.com/abgdnv/inventory/inventory_service/internal/errors"
	"github.com/abgdnv/inventory/inventory_service/internal/service"
	"github.com/abgdnv/inventory/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	maxBodyBytes = 1 << 20

	defaultPageLimit = 20
	maxPageLimit     = 100

	msgServerError = "Server error, please try again later"
)

type Handler struct {
	service  service.InventoryService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new Handler backed by the given service.
func NewHandler(svc service.InventoryService, logger *slog.Logger) *Handler {
	return &Handler{
		service:  svc,
		validate: service.NewValidator(),
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes of the inventory service.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Put("/api/v1/orders", h.PlaceOrder)
	r.Put("/api/customers/order", h.PlaceOrder)

	r.Route("/api/v1/stock", func(r chi.Router) {
		r.Get("/", h.FindAll)
		r.Post("/", h.Insert)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.FindByID)
			r.Put("/", h.Update)
			r.Delete("/", h.DeleteByID)
		})
	})

	r.Get("/healthz", h.HealthCheck)
}

// PlaceOrder deducts stock for one order. The body is a flat JSON object.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	req, err := decodeOrderRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding order request", "error", err)
		web.RespondJSON(w, mLogger, http.StatusBadRequest, map[string]any{
			"status":  service.StatusFailed,
			"message": "Invalid request body",
		})
		return
	}

	mLogger.DebugContext(r.Context(), "Received order", "request", req)
	outcome, err := h.service.PlaceOrder(r.Context(), req)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error placing order", "error", err)
		web.RespondJSON(w, mLogger, http.StatusInternalServerError, map[string]any{
			"status":  service.StatusFailed,
			"message": msgServerError,
		})
		return
	}

	switch o := outcome.(type) {
	case service.Placed:
		mLogger.InfoContext(r.Context(), "Order placed", "productId", o.ProductID, "remaining", o.Remaining)
	case service.Rejected:
		mLogger.WarnContext(r.Context(), "Order rejected", "reason", o.Reason, "message", o.Message)
	}
	web.RespondJSON(w, mLogger, orderStatus(outcome), outcome.Response())
}

// FindAll lists stock items ordered by id.
func (h *Handler) FindAll(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalBetween(r, w, mLogger, "limit", 1, maxPageLimit, defaultPageLimit)
	if !ok {
		return
	}

	mLogger.DebugContext(r.Context(), "Received request to list stock", "offset", offset, "limit", limit)
	list, err := h.service.FindAll(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving stock list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, msgServerError)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// FindByID retrieves a stock item by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	found, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		h.respondStockError(w, r, mLogger, id, err)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// Insert adds stock. An existing item with the same model is incremented instead.
func (h *Handler) Insert(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto service.StockItemCreateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	created, err := h.service.Insert(r.Context(), dto)
	if err != nil {
		h.respondStockError(w, r, mLogger, 0, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Stock added", "productId", created.ID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// Update replaces a stock item.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto service.StockItemUpdateDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}

	updated, err := h.service.Update(r.Context(), id, dto)
	if err != nil {
		h.respondStockError(w, r, mLogger, id, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Stock updated", "productId", id)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteByID removes a stock item.
func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByID(r.Context(), id)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting stock item", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, msgServerError)
		return
	}
	if !deleted {
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Stock item with ID %d not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dto any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dto); err != nil {
		mLogger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dto); err != nil {
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
		mLogger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) respondStockError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id int64, err error) {
	switch {
	case errors.Is(err, inverrors.ErrStockItemNotFound):
		mLogger.WarnContext(r.Context(), "Stock item not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Stock item with ID %d not found", id))
	case errors.Is(err, inverrors.ErrDuplicateModel):
		mLogger.WarnContext(r.Context(), "Duplicate model", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusConflict, inverrors.ErrDuplicateModel.Error())
	case errors.Is(err, inverrors.ErrInvalidStockItem):
		mLogger.WarnContext(r.Context(), "Invalid stock item", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, err.Error())
	default:
		mLogger.ErrorContext(r.Context(), "Stock operation failed", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, msgServerError)
	}
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

func orderStatus(outcome service.OrderOutcome) int {
	rejected, ok := outcome.(service.Rejected)
	switch {
	case !ok:
		return http.StatusOK
	case rejected.Reason.IsClientError():
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// numberString keeps integer literals as written and renders other numbers through
// service.FormatNumber, so 3.0 is read as 3 like on the gRPC endpoint.
func numberString(n json.Number) string {
	if _, err := n.Int64(); err == nil {
		return n.String()
	}
	if f, err := n.Float64(); err == nil {
		return service.FormatNumber(f)
	}
	return n.String()
}

// decodeOrderRequest reads a flat JSON object and flattens its scalar values to strings.
// Nulls are dropped. Nested objects and arrays are rejected.
func decodeOrderRequest(body io.Reader) (service.OrderRequest, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	req := make(service.OrderRequest, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case nil:
		case string:
			req[k] = val
		case json.Number:
			req[k] = numberString(val)
		case bool:
			req[k] = strconv.FormatBool(val)
		default:
			return nil, fmt.Errorf("field %q must be a scalar", k)
		}
	}
	return req, nil
}
