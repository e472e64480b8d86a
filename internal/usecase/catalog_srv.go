package usecase

import (
	"context"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListCategories(ctx context.Context) ([]response.ServiceCategoryResponse, error)
	// ListServices filters by category when categoryID is not empty.
	ListServices(ctx context.Context, categoryID string) ([]response.ServiceResponse, error)
	ListAreasByCity(ctx context.Context) ([]response.CityResponse, error)
}

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	return &catalogService{
		repo: repo,
		log:  log.With(zap.String("service", "catalog")),
	}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]response.ServiceCategoryResponse, error) {
	categories, err := s.repo.Catalog.ListCategories(ctx)
	if err != nil {
		s.log.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}

	result := make([]response.ServiceCategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = response.ServiceCategoryResponse{
			ID:          c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
			ImageURL:    c.ImageURL,
		}
	}
	return result, nil
}

func (s *catalogService) ListServices(ctx context.Context, categoryID string) ([]response.ServiceResponse, error) {
	var filter *uuid.UUID
	if categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, apperror.NotFound("Category")
		}
		filter = &id
	}

	services, err := s.repo.Catalog.ListServices(ctx, filter)
	if err != nil {
		s.log.Error("Failed to list services", zap.Error(err))
		return nil, fmt.Errorf("list services: %w", err)
	}

	result := make([]response.ServiceResponse, len(services))
	for i, svc := range services {
		result[i] = convertServiceResponse(svc)
	}
	return result, nil
}

func (s *catalogService) ListAreasByCity(ctx context.Context) ([]response.CityResponse, error) {
	areas, err := s.repo.Catalog.ListAreas(ctx)
	if err != nil {
		s.log.Error("Failed to list areas", zap.Error(err))
		return nil, fmt.Errorf("list areas: %w", err)
	}

	return groupAreasByCity(areas), nil
}

// ==================== HELPER METHODS ====================

func convertServiceResponse(svc *entity.Service) response.ServiceResponse {
	return response.ServiceResponse{
		ID:             svc.ID.String(),
		CategoryID:     svc.CategoryID.String(),
		Name:           svc.Name,
		BasePrice:      svc.BasePrice,
		FormattedPrice: utils.FormatCurrency(svc.BasePrice),
		EstimatedTime:  utils.FormatEstimatedTime(svc.EstimatedHours),
	}
}

// groupAreasByCity keeps cities in first-seen order.
func groupAreasByCity(areas []*entity.ServiceArea) []response.CityResponse {
	index := make(map[string]int)
	cities := make([]response.CityResponse, 0)
	for _, a := range areas {
		i, ok := index[a.CityName]
		if !ok {
			i = len(cities)
			index[a.CityName] = i
			cities = append(cities, response.CityResponse{CityName: a.CityName})
		}
		cities[i].Areas = append(cities[i].Areas, response.AreaResponse{
			ID:       a.ID.String(),
			AreaName: a.AreaName,
		})
	}
	return cities
}
