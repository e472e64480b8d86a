package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type CreateBookingResponse struct {
	BookingID string `json:"booking_id"`
}

type BookingListResponse struct {
	ID             string               `json:"id"`
	OtherSideName  string               `json:"other_side_name"`
	ServiceName    string               `json:"service_name"`
	Status         entity.BookingStatus `json:"status"`
	ScheduledDate  time.Time            `json:"scheduled_date"`
	FormattedPrice string               `json:"formatted_price"`
	HasReview      bool                 `json:"has_review"`
}

type BookingDetailResponse struct {
	BookingListResponse
	OtherSidePhone string                `json:"other_side_phone"`
	ScheduledDay   string                `json:"scheduled_day"`
	ScheduledTime  string                `json:"scheduled_time"`
	AreaName       string                `json:"area_name"`
	Address        string                `json:"address"`
	Latitude       float64               `json:"latitude"`
	Longitude      float64               `json:"longitude"`
	EstimatedTime  string                `json:"estimated_time"`
	Notes          *string               `json:"notes,omitempty"`
	Items          []BookingItemResponse `json:"items"`
	Attachments    []AttachmentResponse  `json:"attachments"`
}

type BookingItemResponse struct {
	ServiceID      string  `json:"service_id"`
	ServiceName    string  `json:"service_name"`
	PriceAtBooking float64 `json:"price_at_booking"`
	FormattedPrice string  `json:"formatted_price"`
}

type AttachmentResponse struct {
	ID       string          `json:"id"`
	URL      string          `json:"url"`
	FileType entity.FileType `json:"file_type"`
	MimeType string          `json:"mime_type"`
}
