package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// AllowedTransitions lists the statuses reachable from each status.
// Pending -> Pending and Active -> Pending are provider reassignments.
var AllowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {BookingStatusPending, BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:  {BookingStatusPending, BookingStatusCompleted, BookingStatusCancelled},
}

func CanTransition(from, to BookingStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsClosed is true for Completed and Cancelled.
func (s BookingStatus) IsClosed() bool {
	return len(AllowedTransitions[s]) == 0
}

type Booking struct {
	BaseNoDelete
	CustomerID        uuid.UUID     `db:"customer_id"`
	ServiceProviderID uuid.UUID     `db:"service_provider_id"`
	ServiceAreaID     uuid.UUID     `db:"service_area_id"`
	Status            BookingStatus `db:"status"`
	ScheduledDate     time.Time     `db:"scheduled_date"`
	// ScheduledOffset is the client's UTC offset in seconds. TIMESTAMPTZ drops
	// it, and schedule slots are wall-clock times.
	ScheduledOffset int     `db:"scheduled_utc_offset"`
	EstimatedHours  float64 `db:"estimated_hours"`
	TotalAmount     float64 `db:"total_amount"`
	Address         string  `db:"address"`
	Latitude        float64 `db:"latitude"`
	Longitude       float64 `db:"longitude"`
	Notes           *string `db:"notes"`
	Version         int     `db:"version"`

	Items       []BookingServiceItem
	Attachments []Attachment
}

// SetSchedule records t together with its UTC offset.
func (b *Booking) SetSchedule(t time.Time) {
	_, offset := t.Zone()
	b.ScheduledDate = t
	b.ScheduledOffset = offset
}

// ScheduledLocal is the scheduled instant on the client's wall clock.
func (b *Booking) ScheduledLocal() time.Time {
	return b.ScheduledDate.In(time.FixedZone("", b.ScheduledOffset))
}

func (b *Booking) ServiceIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Items))
	for i, item := range b.Items {
		ids[i] = item.ServiceID
	}
	return ids
}

// BookingServiceItem snapshots a service's price when the booking is made.
type BookingServiceItem struct {
	BookingID      uuid.UUID `db:"booking_id"`
	ServiceID      uuid.UUID `db:"service_id"`
	ServiceName    string    `db:"service_name"`
	PriceAtBooking float64   `db:"price_at_booking"`
}

type FileType string

const (
	FileTypeImage FileType = "image"
	FileTypeVideo FileType = "video"
	FileTypeAudio FileType = "audio"
)

type Attachment struct {
	BaseSimple
	BookingID uuid.UUID `db:"booking_id"`
	FileRef   string    `db:"file_ref"`
	Folder    string    `db:"folder"`
	FileType  FileType  `db:"file_type"`
	MimeType  string    `db:"mime_type"`
}
