package wire

import (
	"service-marketplace/internal/adaptor"
	"service-marketplace/internal/data/repository"
	"service-marketplace/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireChat(
	r chi.Router,
	chatHandler *adaptor.ChatHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		r.Get("/api/chats", chatHandler.ListConversations)

		r.Get("/api/bookings/{id}/messages", chatHandler.GetMessages)
		r.Post("/api/bookings/{id}/messages", chatHandler.SendMessage)

		// Receiver only / sender only, checked by the service
		r.Put("/api/messages/{id}/read", chatHandler.MarkRead)
		r.Delete("/api/messages/{id}", chatHandler.DeleteMessage)
	})
}
