package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tickethub/internal/analytics"
	"tickethub/internal/checkin"
	"tickethub/internal/inventory"
	"tickethub/internal/logger"
	"tickethub/internal/models"
	"tickethub/internal/order"
	"tickethub/internal/refund"
	"tickethub/internal/utils"
	"tickethub/internal/wallet"
)

// Handler translates the HTTP surface into service calls. Authentication
// and authorization are handled upstream at the gateway; nothing here
// inspects identity beyond what the request body carries.
type Handler struct {
	Orders    *order.OrderService
	Refunds   *refund.RefundService
	CheckIns  *checkin.Service
	Analytics *analytics.Service
	Logger    *logger.Logger
}

func NewHandler(orders *order.OrderService, refunds *refund.RefundService, checkIns *checkin.Service, analyticsSvc *analytics.Service, log *logger.Logger) *Handler {
	return &Handler{
		Orders:    orders,
		Refunds:   refunds,
		CheckIns:  checkIns,
		Analytics: analyticsSvc,
		Logger:    log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/orders", h.CreateOrder)
	r.Get("/api/orders/{orderID}", h.GetOrder)
	r.Post("/api/payments/{paymentID}/refund", h.RefundPayment)
	r.Post("/api/events/{eventID}/cancel", h.CancelEvent)
	r.Post("/api/check-ins", h.CheckIn)
	r.Get("/api/events/{eventID}/analytics", h.EventAnalytics)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Orders.CreateOrder(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateOrder: %v", err))
		h.writeJSON(w, orderStatusCode(err), utils.ErrorResponse("Order failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("Order completed", result))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")

	result, err := h.Orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetOrder: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Lookup failed", err.Error()))
		return
	}
	if result == nil {
		h.writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Order not found", ""))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Order found", result))
}

func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentID")

	var req models.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Refunds.ProcessRefund(r.Context(), paymentID, req.Amount, req.Reason)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("RefundPayment: %v", err))
		h.writeJSON(w, refundStatusCode(err), utils.ErrorResponse("Refund failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Refund processed", result))
}

func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	result, err := h.Refunds.CancelEvent(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelEvent: %v", err))
		h.writeJSON(w, refundStatusCode(err), utils.ErrorResponse("Cancellation failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event cancelled", result))
}

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req models.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.CheckIns.CheckIn(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CheckIn: %v", err))
		h.writeJSON(w, checkinStatusCode(err), utils.ErrorResponse("Check-in failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Checked in", result))
}

func (h *Handler) EventAnalytics(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	result, err := h.Analytics.GetEventAnalytics(r.Context(), eventID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("EventAnalytics: %v", err))
		h.writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Lookup failed", err.Error()))
		return
	}

	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("Event analytics", result))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body utils.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func orderStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrUserNotFound),
		errors.Is(err, order.ErrEventNotFound),
		errors.Is(err, order.ErrTicketTypeNotFound):
		return http.StatusNotFound
	case errors.Is(err, inventory.ErrInsufficientInventory),
		errors.Is(err, wallet.ErrInsufficientCredits),
		errors.Is(err, order.ErrTypesLocked):
		return http.StatusConflict
	case errors.Is(err, order.ErrEventNotAvailable),
		errors.Is(err, inventory.ErrTicketTypeMismatch),
		errors.Is(err, wallet.ErrRoleNotPermitted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func refundStatusCode(err error) int {
	switch {
	case errors.Is(err, refund.ErrPaymentNotFound),
		errors.Is(err, refund.ErrOrderNotFound),
		errors.Is(err, refund.ErrUserNotFound),
		errors.Is(err, refund.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, refund.ErrPaymentNotCompleted),
		errors.Is(err, refund.ErrEventCompleted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, refund.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func checkinStatusCode(err error) int {
	switch {
	case errors.Is(err, checkin.ErrTicketNotFound),
		errors.Is(err, checkin.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkin.ErrAlreadyCheckedIn):
		return http.StatusConflict
	case errors.Is(err, checkin.ErrWrongEvent),
		errors.Is(err, checkin.ErrTicketNotValid):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}
