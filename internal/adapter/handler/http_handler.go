package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/baedalgo/delivery/internal/core/domain"
	"github.com/baedalgo/delivery/internal/core/service"
	"github.com/baedalgo/delivery/internal/port"
)

type HTTPHandler struct {
	orders   *service.OrderService
	searches *service.SearchService
	cache    port.CacheRepository
	logger   zerolog.Logger
}

func NewHTTPHandler(orders *service.OrderService, searches *service.SearchService, cache port.CacheRepository, logger zerolog.Logger) *HTTPHandler {
	return &HTTPHandler{
		orders:   orders,
		searches: searches,
		cache:    cache,
		logger:   logger,
	}
}

// Register wires the API routes onto the mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/orders", h.CreateOrder)
	mux.HandleFunc("GET /api/orders/{id}", h.GetOrder)
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.UpdateStatus)
	mux.HandleFunc("POST /api/searches", h.RecordSearch)
	mux.HandleFunc("GET /api/searches/popular", h.PopularSearches)
	mux.HandleFunc("GET /health", h.HealthCheck)
}

type CreateOrderRequest struct {
	UserID  string `json:"user_id"`
	StoreID string `json:"store_id"`
}

type OrderResponse struct {
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	StoreID   string    `json:"store_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UpdateStatusResponse struct {
	OrderID   string    `json:"order_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RecordSearchRequest struct {
	UserID  string `json:"user_id"`
	Keyword string `json:"keyword"`
	Region  string `json:"region"`
}

type PopularSearchesResponse struct {
	Region  string                    `json:"region"`
	Results []domain.SearchPopularity `json:"results"`
}

type ErrorResponse struct {
	Error           string `json:"error"`
	CurrentStatus   string `json:"current_status,omitempty"`
	RequestedStatus string `json:"requested_status,omitempty"`
}

func (h *HTTPHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}
	if req.UserID == "" || req.StoreID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing required fields"})
		return
	}

	order, err := h.orders.Create(r.Context(), req.UserID, req.StoreID)
	if err != nil {
		h.logger.Error().Err(err).Msg("create order failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusCreated, orderResponse(order))
}

func (h *HTTPHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "order not found"})
			return
		}
		h.logger.Error().Err(err).Msg("get order failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, orderResponse(order))
}

func (h *HTTPHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	actorID := r.Header.Get("X-User-ID")
	if actorID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing X-User-ID header"})
		return
	}

	// Repeated deliveries of the same request are acknowledged with
	// the order's current state instead of re-running the transition.
	if idemKey := r.Header.Get("Idempotency-Key"); idemKey != "" && h.cache != nil {
		fresh, err := h.cache.SetIdempotency(r.Context(), "status:"+orderID+":"+idemKey)
		if err != nil {
			h.logger.Warn().Err(err).Msg("idempotency check failed, proceeding")
		} else if !fresh {
			order, err := h.orders.Get(r.Context(), orderID)
			if err != nil {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "order not found"})
				return
			}
			writeJSON(w, http.StatusOK, UpdateStatusResponse{
				OrderID:   order.ID,
				Status:    string(order.Status),
				UpdatedAt: order.UpdatedAt,
			})
			return
		}
	}

	result, err := h.orders.Transition(r.Context(), orderID, domain.OrderStatus(req.Status), actorID)
	if err != nil {
		h.writeTransitionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UpdateStatusResponse{
		OrderID:   result.OrderID,
		Status:    string(result.Status),
		UpdatedAt: result.UpdatedAt,
	})
}

func (h *HTTPHandler) writeTransitionError(w http.ResponseWriter, err error) {
	var invalid *domain.InvalidTransitionError
	switch {
	case errors.Is(err, domain.ErrUnknownStatus):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "unknown order status"})
	case errors.Is(err, domain.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "order not found"})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "actor not allowed to perform transition"})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:           "invalid status transition",
			CurrentStatus:   string(invalid.From),
			RequestedStatus: string(invalid.To),
		})
	default:
		h.logger.Error().Err(err).Msg("transition failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

func (h *HTTPHandler) RecordSearch(w http.ResponseWriter, r *http.Request) {
	var req RecordSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.searches.RecordSearch(r.Context(), req.UserID, req.Keyword, req.Region)
	if err != nil {
		if errors.Is(err, service.ErrEmptyUser) ||
			errors.Is(err, service.ErrEmptyKeyword) ||
			errors.Is(err, service.ErrEmptyRegion) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("record search failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) PopularSearches(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be an integer"})
			return
		}
		limit = parsed
	}

	results, err := h.searches.TopN(r.Context(), region, limit)
	if err != nil {
		if errors.Is(err, service.ErrEmptyRegion) || errors.Is(err, service.ErrInvalidLimit) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		h.logger.Error().Err(err).Msg("popular searches query failed")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, PopularSearchesResponse{
		Region:  domain.NormalizeRegion(region),
		Results: results,
	})
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func orderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		OrderID:   order.ID,
		UserID:    order.UserID,
		StoreID:   order.StoreID,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
