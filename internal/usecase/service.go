package usecase

import (
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/matching"
	"service-marketplace/internal/realtime"
	"service-marketplace/internal/storage"
	"service-marketplace/pkg/utils"

	"go.uber.org/zap"
)

// Infra groups the collaborators that are not repositories.
type Infra struct {
	Files     storage.FileStore
	Publisher realtime.Publisher
	Selector  matching.Selector
}

type Service struct {
	Auth         AuthService
	User         UserService
	Provider     ProviderService
	Subscription SubscriptionService
	Catalog      CatalogService
	Booking      BookingService
	Notification NotificationService
	Chat         ChatService
	Review       ReviewService
}

func NewService(repo *repository.Repository, infra Infra, config *utils.Config, log *zap.Logger) *Service {
	notification := NewNotificationService(repo, infra.Publisher, log)

	finder := matching.NewFinder(repo.Provider, repo.Catalog, log)
	matcher := matching.NewMatcher(finder, infra.Selector, config.Matching.QueryTimeout)

	return &Service{
		Auth:         NewAuthService(repo, config, log),
		User:         NewUserService(repo, infra.Files, log),
		Provider:     NewProviderService(repo, log),
		Subscription: NewSubscriptionService(repo, log),
		Catalog:      NewCatalogService(repo, log),
		Booking:      NewBookingService(repo, matcher, infra.Files, notification, log),
		Notification: notification,
		Chat:         NewChatService(repo, infra.Publisher, log),
		Review:       NewReviewService(repo, notification, log),
	}
}
