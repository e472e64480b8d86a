package adaptor

import (
	"net/http"

	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type CatalogHandler struct {
	service usecase.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(service usecase.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		log:     log.With(zap.String("handler", "catalog")),
	}
}

// ListCategories handles GET /api/service-categories
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list categories")
		return
	}

	utils.ResponseSuccess(w, "Categories retrieved", categories)
}

// ListServices handles GET /api/services?category_id=
func (h *CatalogHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.service.ListServices(r.Context(), r.URL.Query().Get("category_id"))
	if err != nil {
		handleServiceError(h.log, w, err, "list services")
		return
	}

	utils.ResponseSuccess(w, "Services retrieved", services)
}

// ListAreas handles GET /api/service-areas
func (h *CatalogHandler) ListAreas(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListAreasByCity(r.Context())
	if err != nil {
		handleServiceError(h.log, w, err, "list service areas")
		return
	}

	utils.ResponseSuccess(w, "Service areas retrieved", cities)
}
