package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/models"
	"ticketly/internal/order"
	"ticketly/internal/utils"
)

type Handler struct {
	OrderService *order.OrderService
}

func NewHandler(svc *order.OrderService) *Handler {
	return &Handler{OrderService: svc}
}

// Checkout handles POST /orders. A successful claim returns the external
// order id and the link the payer must approve.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	resp, err := h.OrderService.Checkout(r.Context(), req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Order reserved", resp))
}

// Capture handles GET /orders/capture?token=... which is where the payment
// provider redirects the payer after approval. The token query parameter
// carries the external order id.
func (h *Handler) Capture(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("token")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Missing capture token", "token query parameter is required"))
		return
	}

	status, err := h.OrderService.Capture(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Capture processed", map[string]string{
		"order_id": orderID,
		"status":   status,
	}))
}

// Release handles POST /orders/{orderID}/release.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	released, err := h.OrderService.Release(r.Context(), orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order released", map[string]interface{}{
		"order_id": orderID,
		"released": released,
	}))
}

// GetOrderTickets handles GET /orders/{orderID}/tickets.
func (h *Handler) GetOrderTickets(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	tickets, err := h.OrderService.GetTicketsByOrder(r.Context(), orderID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Order tickets", tickets))
}

func writeOrderError(w http.ResponseWriter, err error) {
	var validationErr *order.ValidationError
	var paymentErr *models.PaymentOrderError
	var captureErr *models.OrderCaptureError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Invalid order request", validationErr.Error()))
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrCalendarNotFound),
		errors.Is(err, models.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Resource not found", err.Error()))
	case errors.Is(err, models.ErrInvalidTicketType),
		errors.Is(err, models.ErrTotalAmountMismatch):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Order conflicts with catalog", err.Error()))
	case errors.Is(err, models.ErrTicketUnavailable):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Tickets unavailable", err.Error()))
	case errors.As(err, &paymentErr):
		writeJSON(w, http.StatusBadGateway, utils.ErrorResponse("Payment order failed: "+paymentErr.Issue, paymentErr.Error()))
	case errors.As(err, &captureErr):
		writeJSON(w, http.StatusBadGateway, utils.ErrorResponse("Payment capture failed: "+captureErr.Issue, captureErr.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
