package response

import "time"

type ConversationResponse struct {
	BookingID                string `json:"booking_id"`
	OtherSideName            string `json:"other_side_name"`
	LastMessage              string `json:"last_message"`
	LastMessageFormattedTime string `json:"last_message_formatted_time"`
	UnreadCount              int    `json:"unread_count"`
}

type MessageResponse struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	SentAt        time.Time `json:"sent_at"`
	FormattedTime string    `json:"formatted_time"`
	IsRead        bool      `json:"is_read"`
	IsMine        bool      `json:"is_mine"`
}
