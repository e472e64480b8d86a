// Package realtime delivers live events to connected users. Delivery is
// best-effort: the persisted rows are the source of truth.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event names understood by clients.
const (
	EventReceiveNotification = "ReceiveNotification"
	EventBookingUpdated      = "BookingUpdated"
	EventReceiveNewMessage   = "ReceiveNewMessage"
	EventMessageRead         = "MessageRead"
	EventMessageDeleted      = "MessageDeleted"
)

type Event struct {
	Name    string    `json:"event"`
	UserID  uuid.UUID `json:"user_id"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

func NewEvent(name string, userID uuid.UUID, payload any) Event {
	return Event{Name: name, UserID: userID, Payload: payload, At: time.Now()}
}

// Pusher sends one event to one user's live channel.
type Pusher interface {
	Push(ctx context.Context, ev Event) error
}

// Publisher hands events off without blocking the caller.
type Publisher interface {
	Publish(ev Event)
}

// Subscriber streams a user's events until ctx is done or stop is called.
type Subscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID) (events <-chan Event, stop func(), err error)
}

// NopPusher discards everything.
type NopPusher struct{}

func (NopPusher) Push(context.Context, Event) error { return nil }
