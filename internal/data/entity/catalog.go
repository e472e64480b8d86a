package entity

import "github.com/google/uuid"

type ServiceCategory struct {
	ID          uuid.UUID `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	ImageURL    *string   `db:"image_url"`
}

type Service struct {
	ID             uuid.UUID `db:"id"`
	CategoryID     uuid.UUID `db:"category_id"`
	Name           string    `db:"name"`
	Description    *string   `db:"description"`
	BasePrice      float64   `db:"base_price"`
	EstimatedHours float64   `db:"estimated_hours"`
}

type ServiceArea struct {
	ID       uuid.UUID `db:"id"`
	AreaName string    `db:"area_name"`
	CityName string    `db:"city_name"`
}
