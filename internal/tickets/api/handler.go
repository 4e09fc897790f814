package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ticketly/internal/catalog"
	"ticketly/internal/models"
	"ticketly/internal/tickets"
	"ticketly/internal/utils"
)

type Handler struct {
	TicketService *tickets.TicketService
	PriceService  *catalog.PriceService
}

func NewHandler(ticketSvc *tickets.TicketService, priceSvc *catalog.PriceService) *Handler {
	return &Handler{TicketService: ticketSvc, PriceService: priceSvc}
}

// CreatePrices handles POST /events/{eventID}/prices.
func (h *Handler) CreatePrices(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var requests []models.PriceRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	prices, err := h.PriceService.BulkCreatePrices(r.Context(), eventID, requests)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Prices saved", prices))
}

// CreateTickets handles POST /calendars/{calendarID}/tickets.
func (h *Handler) CreateTickets(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendarID")

	var requests []models.TicketRequest
	if err := json.NewDecoder(r.Body).Decode(&requests); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	summaries, err := h.TicketService.CreateTickets(r.Context(), calendarID, requests)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Tickets created", summaries))
}

// DeleteTickets handles DELETE /companies/{companyID}/calendars/{calendarID}/tickets.
func (h *Handler) DeleteTickets(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	calendarID := chi.URLParam(r, "calendarID")

	if err := h.TicketService.DeleteTicketsByCalendar(r.Context(), companyID, calendarID); err != nil {
		writeTicketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Tickets deleted", nil))
}

// GetTicketSummary handles GET /calendars/{calendarID}/tickets/summary.
func (h *Handler) GetTicketSummary(w http.ResponseWriter, r *http.Request) {
	calendarID := chi.URLParam(r, "calendarID")

	totals, err := h.TicketService.GetTotalOfTickets(r.Context(), calendarID)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Ticket summary", totals))
}

// GetTicketPass handles GET /tickets/{ticketID}/pass and serves the QR image.
func (h *Handler) GetTicketPass(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	png, err := h.TicketService.TicketPass(r.Context(), ticketID)
	if err != nil {
		writeTicketError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEventNotFound),
		errors.Is(err, models.ErrCalendarNotFound),
		errors.Is(err, models.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Resource not found", err.Error()))
	case errors.Is(err, models.ErrNegativePrice):
		writeJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Invalid request", err.Error()))
	case errors.Is(err, models.ErrInvalidTicketType),
		errors.Is(err, models.ErrTicketCantBeDeleted),
		errors.Is(err, models.ErrTicketNotSold):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse("Conflicting ticket state", err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Internal error", err.Error()))
	}
}

func writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
