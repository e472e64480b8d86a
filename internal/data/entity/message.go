package entity

import (
	"time"

	"github.com/google/uuid"
)

type Message struct {
	BaseSimple
	BookingID  uuid.UUID  `db:"booking_id"`
	SenderID   uuid.UUID  `db:"sender_id"`
	ReceiverID uuid.UUID  `db:"receiver_id"`
	Content    string     `db:"content"`
	IsRead     bool       `db:"is_read"`
	ReadAt     *time.Time `db:"read_at"`
}

// Conversation is one booking's chat summary for a user.
type Conversation struct {
	BookingID      uuid.UUID
	OtherUserID    uuid.UUID
	OtherUserName  string
	BookingStatus  BookingStatus
	LastMessage    *Message
	UnreadCount    int
	LastActivityAt time.Time
}
