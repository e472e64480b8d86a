package adaptor

import (
	"encoding/json"
	"net/http"

	"service-marketplace/internal/realtime"
	"service-marketplace/internal/usecase"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Provider     *ProviderHandler
	Subscription *SubscriptionHandler
	Catalog      *CatalogHandler
	Booking      *BookingHandler
	Chat         *ChatHandler
	Review       *ReviewHandler
	Notification *NotificationHandler
}

func NewHandler(service *usecase.Service, stream realtime.Subscriber, log *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(service.Auth, log),
		User:         NewUserHandler(service.User, log),
		Provider:     NewProviderHandler(service.Provider, log),
		Subscription: NewSubscriptionHandler(service.Subscription, log),
		Catalog:      NewCatalogHandler(service.Catalog, log),
		Booking:      NewBookingHandler(service.Booking, log),
		Chat:         NewChatHandler(service.Chat, log),
		Review:       NewReviewHandler(service.Review, log),
		Notification: NewNotificationHandler(service.Notification, stream, log),
	}
}

// ==================== SHARED HELPERS ====================

// currentUser reads the user id set by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// decodeJSON decodes the body into dst. Field validation is done by the services.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

// handleServiceError logs by error class and writes the error envelope.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	appErr := apperror.From(err)

	switch appErr.Code {
	case apperror.CodeInternal:
		log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	case apperror.CodeTimeout:
		log.Error(operation+" timed out", zap.Error(err))
	default:
		log.Warn(operation+" failed",
			zap.String("code", appErr.Code),
			zap.String("message", appErr.Message))
	}

	utils.ResponseError(w, err)
}
