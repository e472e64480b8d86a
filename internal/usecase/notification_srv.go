package usecase

import (
	"context"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/response"
	"service-marketplace/internal/realtime"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type NotificationService interface {
	// Notify persists a notification and queues its live push. extra feeds
	// the message template: a person's name, or a star rating for reviews.
	Notify(ctx context.Context, userID uuid.UUID, t entity.NotificationType, bookingID *uuid.UUID, extra string) error
	// ListForUser returns newest first and marks everything read.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]response.NotificationResponse, error)
}

type notificationService struct {
	repo      *repository.Repository
	publisher realtime.Publisher
	log       *zap.Logger
}

func NewNotificationService(repo *repository.Repository, publisher realtime.Publisher, log *zap.Logger) NotificationService {
	return &notificationService{
		repo:      repo,
		publisher: publisher,
		log:       log.With(zap.String("service", "notification")),
	}
}

// RenderNotification returns the title and message for t.
func RenderNotification(t entity.NotificationType, extra string) (string, string) {
	switch t {
	case entity.NotificationBookingCreated:
		return "New Booking Request", "You have received a new booking request."
	case entity.NotificationBookingAccepted:
		if extra == "" {
			return "Booking Accepted", "Your booking has been accepted."
		}
		return "Booking Accepted", fmt.Sprintf("Your booking has been accepted by %s.", extra)
	case entity.NotificationBookingCancelledByUser:
		if extra == "" {
			return "Booking Cancelled", "The booking was cancelled by the customer."
		}
		return "Booking Cancelled", fmt.Sprintf("Booking cancelled by %s.", extra)
	case entity.NotificationBookingReassignedAfterBeingCancelled:
		return "Booking Reassigned", fmt.Sprintf("Your provider %s cancelled. We found a new provider for you automatically.", extra)
	case entity.NotificationBookingReassignedAfterBeingRejected:
		return "Booking Reassigned", "We found a new provider for your request."
	case entity.NotificationBookingCompleted:
		return "Booking Completed", "Your service has been completed. Please leave a review!"
	case entity.NotificationBookingReviewed:
		if extra == "" {
			return "New Review Received!", "A customer has left a review for your service."
		}
		return "New Review Received!", fmt.Sprintf("A customer has rated your service. You received %s stars!", extra)
	default:
		return "Notification", "You have a new notification."
	}
}

func (s *notificationService) Notify(ctx context.Context, userID uuid.UUID, t entity.NotificationType, bookingID *uuid.UUID, extra string) error {
	title, message := RenderNotification(t, extra)

	n := &entity.Notification{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		UserID:    userID,
		BookingID: bookingID,
		Type:      t,
		Title:     title,
		Message:   message,
	}

	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}

	s.publisher.Publish(realtime.NewEvent(realtime.EventReceiveNotification, userID,
		response.NotificationToResponse(n, "Just now")))
	if bookingID != nil {
		s.publisher.Publish(realtime.NewEvent(realtime.EventBookingUpdated, userID, bookingID.String()))
	}

	s.log.Debug("Notification sent",
		zap.String("user_id", userID.String()),
		zap.String("type", string(t)),
	)

	return nil
}

func (s *notificationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]response.NotificationResponse, error) {
	notifications, err := s.repo.Notification.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	hasUnread := false
	for _, n := range notifications {
		if !n.IsRead {
			hasUnread = true
			break
		}
	}
	if hasUnread {
		if err := s.repo.Notification.MarkAllRead(ctx, userID); err != nil {
			return nil, fmt.Errorf("mark notifications read: %w", err)
		}
	}

	now := time.Now()
	result := make([]response.NotificationResponse, len(notifications))
	for i, n := range notifications {
		n.IsRead = true
		result[i] = response.NotificationToResponse(n, utils.FormatRelativeTime(n.CreatedAt, now))
	}

	return result, nil
}
