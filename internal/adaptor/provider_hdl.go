package adaptor

import (
	"net/http"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type ProviderHandler struct {
	service usecase.ProviderService
	log     *zap.Logger
}

func NewProviderHandler(service usecase.ProviderService, log *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		service: service,
		log:     log.With(zap.String("handler", "provider")),
	}
}

// BecomeProvider handles POST /api/providers (protected)
func (h *ProviderHandler) BecomeProvider(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ProviderProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.BecomeProvider(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "become provider")
		return
	}

	utils.ResponseCreated(w, "Provider profile created", profile)
}

// GetProfile handles GET /api/providers/me (provider)
func (h *ProviderHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(h.log, w, err, "get provider profile")
		return
	}

	utils.ResponseSuccess(w, "Provider profile retrieved", profile)
}

// UpdateProfile handles PUT /api/providers/me (provider)
func (h *ProviderHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req request.ProviderProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "update provider profile")
		return
	}

	utils.ResponseSuccess(w, "Provider profile updated", profile)
}
