package repository

import (
	"context"
	"errors"
	"fmt"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ReviewRepository interface {
	// Create inserts the review and folds its rating into the provider's
	// running mean in the same tx. A second review for a booking returns
	// ErrDuplicate.
	Create(ctx context.Context, review *entity.Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Review, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reviews (id, booking_id, customer_id, provider_id, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			review.ID,
			review.BookingID,
			review.CustomerID,
			review.ProviderID,
			review.Rating,
			review.Comment,
			review.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert review: %w", err)
		}

		var (
			rating float64
			count  int
		)
		err = tx.QueryRow(ctx,
			`SELECT rating, total_reviews FROM providers WHERE user_id = $1 FOR UPDATE`,
			review.ProviderID).Scan(&rating, &count)
		if err != nil {
			return fmt.Errorf("lock provider rating: %w", err)
		}

		rating, count = entity.NextRating(rating, count, review.Rating)
		if _, err := tx.Exec(ctx,
			`UPDATE providers SET rating = $2, total_reviews = $3 WHERE user_id = $1`,
			review.ProviderID, rating, count); err != nil {
			return fmt.Errorf("update provider rating: %w", err)
		}

		return nil
	})

	if err != nil {
		if !errors.Is(err, ErrDuplicate) {
			r.log.Error("Failed to create review",
				zap.Error(err),
				zap.String("booking_id", review.BookingID.String()),
				zap.String("provider_id", review.ProviderID.String()),
			)
		}
		return fmt.Errorf("create review for booking %s: %w", review.BookingID, err)
	}

	return nil
}

const reviewColumns = `id, booking_id, customer_id, provider_id, rating, comment, created_at`

func scanReview(row pgx.Row) (*entity.Review, error) {
	var review entity.Review
	err := row.Scan(
		&review.ID,
		&review.BookingID,
		&review.CustomerID,
		&review.ProviderID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.Review, error) {
	review, err := scanReview(r.db.QueryRow(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE booking_id = $1`, bookingID))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find review for booking %s: %w", bookingID, err)
	}

	return review, nil
}

func (r *reviewRepository) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews
		WHERE provider_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, providerID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list provider reviews",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("list reviews for provider %s: %w", providerID, err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}

	return reviews, rows.Err()
}
