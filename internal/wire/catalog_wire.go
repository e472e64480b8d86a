package wire

import (
	"service-marketplace/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireCatalog(r chi.Router, catalogHandler *adaptor.CatalogHandler) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/service-categories", catalogHandler.ListCategories)
	r.Get("/api/services", catalogHandler.ListServices)
	r.Get("/api/service-areas", catalogHandler.ListAreas)
}
