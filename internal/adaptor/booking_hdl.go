package adaptor

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form fields next to the files.
const multipartOverhead = 1 << 20

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (multipart/form-data)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, err := parseCreateBooking(w, r)
	if err != nil {
		handleServiceError(h.log, w, err, "parse booking form")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, req)
	if err != nil {
		handleServiceError(h.log, w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created successfully", booking)
}

// ListBookings handles GET /api/bookings?role=customer|serviceprovider
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	req := &request.BookingListRequest{Role: r.URL.Query().Get("role")}

	bookings, err := h.service.ListBookings(r.Context(), userID, req)
	if err != nil {
		handleServiceError(h.log, w, err, "list bookings")
		return
	}

	utils.ResponseSuccess(w, "Bookings retrieved successfully", bookings)
}

// GetBooking handles GET /api/bookings/{id}
func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBooking(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(h.log, w, err, "get booking")
		return
	}

	utils.ResponseSuccess(w, "Booking retrieved successfully", booking)
}

// AcceptBooking handles PUT /api/bookings/{id}/accept
func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "accept booking", "Booking accepted", h.service.AcceptBooking)
}

// RejectBooking handles PUT /api/bookings/{id}/reject
func (h *BookingHandler) RejectBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "reject booking", "Booking reassigned to another provider", h.service.RejectBooking)
}

// CompleteBooking handles PUT /api/bookings/{id}/complete
func (h *BookingHandler) CompleteBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete booking", "Booking completed", h.service.CompleteBooking)
}

// CancelBooking handles PUT /api/bookings/{id}/cancel
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel booking", "Booking cancelled", h.service.CancelBooking)
}

// ==================== HELPER METHODS ====================

func (h *BookingHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	operation, message string,
	fn func(ctx context.Context, actorID uuid.UUID, bookingID string) error,
) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := fn(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(h.log, w, err, operation)
		return
	}

	utils.ResponseSuccess(w, message, nil)
}

// parseCreateBooking maps the multipart form onto the request DTO. Only
// malformed input is rejected here; rules live in the validator.
func parseCreateBooking(w http.ResponseWriter, r *http.Request) (*request.CreateBookingRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, request.MaxAttachmentTotalBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperror.Validation("Validation failed", map[string]any{
				"attachments": "Total size of attachments must not exceed 30 MB",
			})
		}
		return nil, apperror.Validation("Request must be multipart/form-data", nil)
	}

	form := r.MultipartForm
	invalid := make(map[string]any)

	req := &request.CreateBookingRequest{
		ServiceIDs:    formList(form, "service_ids"),
		ServiceAreaID: r.FormValue("service_area_id"),
		Address:       r.FormValue("address"),
	}

	if raw := r.FormValue("scheduled_date"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			invalid["scheduled_date"] = "Must be an RFC3339 timestamp"
		}
		req.ScheduledDate = t
	}
	for field, dst := range map[string]*float64{"latitude": &req.Latitude, "longitude": &req.Longitude} {
		raw := r.FormValue(field)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			invalid[field] = "Must be a number"
			continue
		}
		*dst = v
	}
	if notes := strings.TrimSpace(r.FormValue("notes")); notes != "" {
		req.Notes = &notes
	}

	for _, fh := range form.File["attachments"] {
		req.Attachments = append(req.Attachments, request.AttachmentUpload{
			FileName: fh.Filename,
			Size:     fh.Size,
			Open:     openPart(fh),
		})
	}

	if len(invalid) > 0 {
		return nil, apperror.Validation("Validation failed", invalid)
	}
	return req, nil
}

// formList accepts repeated keys, the "key[]" spelling and comma lists.
func formList(form *multipart.Form, key string) []string {
	var out []string
	for _, k := range []string{key, key + "[]"} {
		for _, v := range form.Value[k] {
			for _, part := range strings.Split(v, ",") {
				if p := strings.TrimSpace(part); p != "" {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

func openPart(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}
