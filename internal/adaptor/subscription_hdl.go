package adaptor

import (
	"net/http"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	service usecase.SubscriptionService
	log     *zap.Logger
}

func NewSubscriptionHandler(service usecase.SubscriptionService, log *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		service: service,
		log:     log.With(zap.String("handler", "subscription")),
	}
}

// ListPlans handles GET /api/subscriptions/plans (public)
func (h *SubscriptionHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list subscription plans")
		return
	}

	utils.ResponseSuccess(w, "Subscription plans retrieved", plans)
}

// GetStatus handles GET /api/subscriptions/status (provider)
func (h *SubscriptionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	status, err := h.service.GetStatus(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "get subscription status")
		return
	}

	utils.ResponseSuccess(w, "Subscription status retrieved", status)
}

// Checkout handles POST /api/subscriptions/checkout (provider)
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.service.Checkout(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "start subscription checkout")
		return
	}

	utils.ResponseCreated(w, "Payment pending confirmation", payment)
}

// ConfirmPayment handles POST /api/payments/confirm (payment gateway)
func (h *SubscriptionHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req request.ConfirmPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	payment, err := h.service.ConfirmPayment(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "confirm payment")
		return
	}

	utils.ResponseSuccess(w, "Payment "+payment.Status, payment)
}
