package response

import (
	"time"

	"service-marketplace/internal/data/entity"
)

type NotificationResponse struct {
	ID            string                  `json:"id"`
	BookingID     *string                 `json:"booking_id,omitempty"`
	Type          entity.NotificationType `json:"type"`
	Title         string                  `json:"title"`
	Message       string                  `json:"message"`
	IsRead        bool                    `json:"is_read"`
	CreatedAt     time.Time               `json:"created_at"`
	FormattedTime string                  `json:"formatted_time"`
}

func NotificationToResponse(n *entity.Notification, formattedTime string) NotificationResponse {
	resp := NotificationResponse{
		ID:            n.ID.String(),
		Type:          n.Type,
		Title:         n.Title,
		Message:       n.Message,
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt,
		FormattedTime: formattedTime,
	}
	if n.BookingID != nil {
		id := n.BookingID.String()
		resp.BookingID = &id
	}
	return resp
}
