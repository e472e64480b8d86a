package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/internal/data/repository"
	"service-marketplace/internal/dto/request"
	"service-marketplace/internal/dto/response"
	"service-marketplace/pkg/apperror"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReviewService interface {
	CreateReview(ctx context.Context, customerID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetBookingReview(ctx context.Context, userID uuid.UUID, bookingID string) (*response.ReviewResponse, error)
	GetProviderReviews(ctx context.Context, providerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error)
}

type reviewService struct {
	repo     *repository.Repository
	notifier NotificationService
	log      *zap.Logger
}

func NewReviewService(repo *repository.Repository, notifier NotificationService, log *zap.Logger) ReviewService {
	return &reviewService{
		repo:     repo,
		notifier: notifier,
		log:      log.With(zap.String("service", "review")),
	}
}

func (s *reviewService) CreateReview(ctx context.Context, customerID uuid.UUID, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	// Validate request
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
		return nil, apperror.Validation("Validation failed", utils.ValidationDetails(errs))
	}

	// Load booking
	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, apperror.NotFound("Booking")
	}
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		s.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}

	// Only the customer of a completed booking, once
	if booking.CustomerID != customerID {
		return nil, apperror.Unauthorized("You are not authorized to review this booking.")
	}
	if booking.Status != entity.BookingStatusCompleted {
		return nil, apperror.InvalidState("You can only review completed bookings.")
	}
	existing, err := s.repo.Review.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if existing != nil {
		return nil, apperror.Conflict("You have already reviewed this booking.")
	}

	// Save review; the repository folds the rating into the provider
	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		BookingID:  bookingID,
		CustomerID: customerID,
		ProviderID: booking.ServiceProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := s.repo.Review.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict("You have already reviewed this booking.")
		}
		s.log.Error("Failed to create review", zap.Error(err), zap.String("booking_id", req.BookingID))
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("provider_id", review.ProviderID.String()),
		zap.Int("rating", review.Rating),
	)

	// Notify provider
	if err := s.notifier.Notify(ctx, review.ProviderID, entity.NotificationBookingReviewed,
		&bookingID, strconv.Itoa(review.Rating)); err != nil {
		return nil, err
	}

	resp := response.ReviewToResponse(review, s.customerName(ctx, customerID))
	return &resp, nil
}

func (s *reviewService) GetBookingReview(ctx context.Context, userID uuid.UUID, bookingID string) (*response.ReviewResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, apperror.NotFound("Booking")
	}
	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	if booking == nil {
		return nil, apperror.NotFound("Booking")
	}
	if userID != booking.CustomerID && userID != booking.ServiceProviderID {
		return nil, apperror.Unauthorized("You are not part of this booking.")
	}

	review, err := s.repo.Review.FindByBookingID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find review: %w", err)
	}
	if review == nil {
		return nil, apperror.NotFound("Review")
	}

	resp := response.ReviewToResponse(review, s.customerName(ctx, review.CustomerID))
	return &resp, nil
}

func (s *reviewService) GetProviderReviews(ctx context.Context, providerID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.ReviewResponse], error) {
	req.Normalize()

	id, err := uuid.Parse(providerID)
	if err != nil {
		return nil, apperror.NotFound("Provider")
	}
	provider, err := s.repo.Provider.FindByUserID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find provider: %w", err)
	}
	if provider == nil {
		return nil, apperror.NotFound("Provider")
	}

	reviews, err := s.repo.Review.ListByProvider(ctx, id, req.PerPage, req.Offset())
	if err != nil {
		s.log.Error("Failed to list reviews", zap.Error(err), zap.String("provider_id", providerID))
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	data := make([]response.ReviewResponse, len(reviews))
	for i, r := range reviews {
		data[i] = response.ReviewToResponse(r, s.customerName(ctx, r.CustomerID))
	}

	// total_reviews is maintained with every insert
	return response.NewPaginatedResponse(data, req.Page, req.PerPage, int64(provider.TotalReviews)), nil
}

// ==================== HELPER METHODS ====================

func (s *reviewService) customerName(ctx context.Context, id uuid.UUID) string {
	user, err := s.repo.User.FindByID(ctx, id)
	if err != nil || user == nil {
		return ""
	}
	return user.FullName
}
