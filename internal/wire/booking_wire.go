package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - create and auto-assign (multipart)
		r.Post("/api/bookings", bookingHandler.CreateBooking)

		// GET /api/bookings?role= - bookings as customer or as provider
		r.Get("/api/bookings", bookingHandler.ListBookings)
		r.Get("/api/bookings/{id}", bookingHandler.GetBooking)
		r.Get("/api/bookings/{id}/review", reviewHandler.GetBookingReview)

		// Customer or assigned provider, the service decides which flow applies
		r.Put("/api/bookings/{id}/cancel", bookingHandler.CancelBooking)

		// ==================== PROVIDER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleServiceProvider))

			r.Put("/api/bookings/{id}/accept", bookingHandler.AcceptBooking)
			r.Put("/api/bookings/{id}/reject", bookingHandler.RejectBooking)
			r.Put("/api/bookings/{id}/complete", bookingHandler.CompleteBooking)
		})
	})
}
