package repository

import (
	"errors"

	"service-marketplace/pkg/database"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

var (
	// ErrStaleWrite means a conditional update matched no row because the
	// row changed since it was read.
	ErrStaleWrite = errors.New("stale write")
	// ErrDuplicate wraps unique constraint violations.
	ErrDuplicate = errors.New("duplicate record")
)

type Repository struct {
	User         UserRepository
	Session      SessionRepository
	Provider     ProviderRepository
	Catalog      CatalogRepository
	Subscription SubscriptionRepository
	Payment      PaymentRepository
	Booking      BookingRepository
	Message      MessageRepository
	Notification NotificationRepository
	Review       ReviewRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Session:      NewSessionRepository(db, log),
		Provider:     NewProviderRepository(db, log),
		Catalog:      NewCatalogRepository(db, log),
		Subscription: NewSubscriptionRepository(db, log),
		Payment:      NewPaymentRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		Message:      NewMessageRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Review:       NewReviewRepository(db, log),
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
