package repository

import (
	"context"
	"errors"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// CatalogRepository reads the reference data: categories, services and areas.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]*entity.ServiceCategory, error)
	ListServices(ctx context.Context, categoryID *uuid.UUID) ([]*entity.Service, error)
	FindServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Service, error)
	ListAreas(ctx context.Context) ([]*entity.ServiceArea, error)
	FindAreaByID(ctx context.Context, id uuid.UUID) (*entity.ServiceArea, error)
	FindAreasByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.ServiceArea, error)
}

type catalogRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCatalogRepository(db database.PgxIface, log *zap.Logger) CatalogRepository {
	return &catalogRepository{
		db:  db,
		log: log.With(zap.String("repository", "catalog")),
	}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]*entity.ServiceCategory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, image_url
		FROM service_categories
		ORDER BY name
	`)
	if err != nil {
		r.log.Error("Failed to list categories", zap.Error(err))
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []*entity.ServiceCategory
	for rows.Next() {
		var c entity.ServiceCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.ImageURL); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}

const serviceColumns = `id, category_id, name, description, base_price, estimated_hours`

func (r *catalogRepository) ListServices(ctx context.Context, categoryID *uuid.UUID) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE ($1::uuid IS NULL OR category_id = $1) ORDER BY name`

	services, err := r.queryServices(ctx, query, categoryID)
	if err != nil {
		r.log.Error("Failed to list services", zap.Error(err))
		return nil, fmt.Errorf("list services: %w", err)
	}

	return services, nil
}

// FindServicesByIDs returns the services that exist among ids; missing ids
// are simply absent from the result.
func (r *catalogRepository) FindServicesByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = ANY($1)`

	services, err := r.queryServices(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find services", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("find services by ids: %w", err)
	}

	return services, nil
}

func (r *catalogRepository) queryServices(ctx context.Context, query string, args ...any) ([]*entity.Service, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []*entity.Service
	for rows.Next() {
		var s entity.Service
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Description, &s.BasePrice, &s.EstimatedHours); err != nil {
			return nil, fmt.Errorf("scan service row: %w", err)
		}
		services = append(services, &s)
	}

	return services, rows.Err()
}

func (r *catalogRepository) ListAreas(ctx context.Context) ([]*entity.ServiceArea, error) {
	areas, err := r.queryAreas(ctx, `SELECT id, area_name, city_name FROM service_areas ORDER BY city_name, area_name`)
	if err != nil {
		r.log.Error("Failed to list areas", zap.Error(err))
		return nil, fmt.Errorf("list areas: %w", err)
	}
	return areas, nil
}

func (r *catalogRepository) FindAreasByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.ServiceArea, error) {
	areas, err := r.queryAreas(ctx, `SELECT id, area_name, city_name FROM service_areas WHERE id = ANY($1)`, ids)
	if err != nil {
		r.log.Error("Failed to find areas", zap.Error(err))
		return nil, fmt.Errorf("find areas by ids: %w", err)
	}
	return areas, nil
}

func (r *catalogRepository) FindAreaByID(ctx context.Context, id uuid.UUID) (*entity.ServiceArea, error) {
	var area entity.ServiceArea
	err := r.db.QueryRow(ctx, `SELECT id, area_name, city_name FROM service_areas WHERE id = $1`, id).
		Scan(&area.ID, &area.AreaName, &area.CityName)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find area", zap.Error(err), zap.String("area_id", id.String()))
		return nil, fmt.Errorf("find area %s: %w", id, err)
	}

	return &area, nil
}

func (r *catalogRepository) queryAreas(ctx context.Context, query string, args ...any) ([]*entity.ServiceArea, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []*entity.ServiceArea
	for rows.Next() {
		var a entity.ServiceArea
		if err := rows.Scan(&a.ID, &a.AreaName, &a.CityName); err != nil {
			return nil, fmt.Errorf("scan area row: %w", err)
		}
		areas = append(areas, &a)
	}

	return areas, rows.Err()
}
