package entity

import (
	"github.com/google/uuid"
)

type Review struct {
	BaseSimple
	BookingID  uuid.UUID `db:"booking_id"`
	CustomerID uuid.UUID `db:"customer_id"`
	ProviderID uuid.UUID `db:"provider_id"`
	Rating     int       `db:"rating"` // 1-5
	Comment    *string   `db:"comment"`
}

// NextRating folds one more rating into a running mean.
func NextRating(rating float64, count, r int) (float64, int) {
	return (rating*float64(count) + float64(r)) / float64(count+1), count + 1
}
