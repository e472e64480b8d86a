package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireProvider(
	r chi.Router,
	providerHandler *adaptor.ProviderHandler,
	subscriptionHandler *adaptor.SubscriptionHandler,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	paymentSecret string,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Get("/api/subscriptions/plans", subscriptionHandler.ListPlans)
	// GET /api/providers/{id}/reviews - paginated reviews of a provider
	r.Get("/api/providers/{id}/reviews", reviewHandler.GetProviderReviews)

	// ==================== GATEWAY CALLBACK ====================
	r.With(middleware.RequireSharedSecret(paymentSecret, log)).
		Post("/api/payments/confirm", subscriptionHandler.ConfirmPayment)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/providers - any customer can become a provider
		r.Post("/api/providers", providerHandler.BecomeProvider)

		// ==================== PROVIDER ROUTES ====================
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(log, entity.RoleServiceProvider))

			r.Get("/api/providers/me", providerHandler.GetProfile)
			r.Put("/api/providers/me", providerHandler.UpdateProfile)

			r.Get("/api/subscriptions/status", subscriptionHandler.GetStatus)
			r.Post("/api/subscriptions/checkout", subscriptionHandler.Checkout)
		})
	})
}
