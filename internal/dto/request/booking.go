package request

import (
	"io"
	"time"
)

const (
	MaxAttachments          = 3
	MaxAttachmentTotalBytes = 30 << 20
)

type CreateBookingRequest struct {
	ServiceIDs    []string           `form:"service_ids" validate:"required,min=1,unique,dive,uuid"`
	ServiceAreaID string             `form:"service_area_id" validate:"required,uuid"`
	ScheduledDate time.Time          `form:"scheduled_date" validate:"required,future"`
	Address       string             `form:"address" validate:"required,max=255"`
	Latitude      float64            `form:"latitude" validate:"nonzero_coord,min=-90,max=90"`
	Longitude     float64            `form:"longitude" validate:"nonzero_coord,min=-180,max=180"`
	Notes         *string            `form:"notes" validate:"omitempty,max=500"`
	Attachments   []AttachmentUpload `form:"attachments" validate:"max=3,dive"`
}

// AttachmentUpload is one uploaded file; Open is called once by the service.
type AttachmentUpload struct {
	FileName string                        `form:"file_name" validate:"required,media_ext"`
	Size     int64                         `form:"size" validate:"gt=0"`
	Open     func() (io.ReadCloser, error) `validate:"-"`
}

// TotalAttachmentBytes sums the declared upload sizes.
func (r *CreateBookingRequest) TotalAttachmentBytes() int64 {
	var total int64
	for _, a := range r.Attachments {
		total += a.Size
	}
	return total
}

type BookingListRequest struct {
	Role string `json:"role" validate:"omitempty,oneof=customer serviceprovider"`
}
