package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type ReviewResponse struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	CustomerID   string    `json:"customer_id"`
	CustomerName string    `json:"customer_name,omitempty"`
	ProviderID   string    `json:"provider_id"`
	Rating       int       `json:"rating"`
	Comment      *string   `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Helper converter
func ReviewToResponse(review *entity.Review, customerName string) ReviewResponse {
	return ReviewResponse{
		ID:           review.ID.String(),
		BookingID:    review.BookingID.String(),
		CustomerID:   review.CustomerID.String(),
		CustomerName: customerName,
		ProviderID:   review.ProviderID.String(),
		Rating:       review.Rating,
		Comment:      review.Comment,
		CreatedAt:    review.CreatedAt,
	}
}
