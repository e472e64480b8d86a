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

type SubscriptionRepository interface {
	ListPlans(ctx context.Context) ([]*entity.SubscriptionPlan, error)
	FindPlanByID(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error)
	// FindLatest returns the subscription with the furthest end date.
	FindLatest(ctx context.Context, providerID uuid.UUID) (*entity.Subscription, error)
	Create(ctx context.Context, sub *entity.Subscription) error
}

type subscriptionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSubscriptionRepository(db database.PgxIface, log *zap.Logger) SubscriptionRepository {
	return &subscriptionRepository{
		db:  db,
		log: log.With(zap.String("repository", "subscription")),
	}
}

func (r *subscriptionRepository) ListPlans(ctx context.Context) ([]*entity.SubscriptionPlan, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, duration_in_days
		FROM subscription_plans
		ORDER BY duration_in_days
	`)
	if err != nil {
		r.log.Error("Failed to list plans", zap.Error(err))
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*entity.SubscriptionPlan
	for rows.Next() {
		var p entity.SubscriptionPlan
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationInDays); err != nil {
			return nil, fmt.Errorf("scan plan row: %w", err)
		}
		plans = append(plans, &p)
	}

	return plans, rows.Err()
}

func (r *subscriptionRepository) FindPlanByID(ctx context.Context, id uuid.UUID) (*entity.SubscriptionPlan, error) {
	var p entity.SubscriptionPlan
	err := r.db.QueryRow(ctx, `
		SELECT id, name, description, price, duration_in_days
		FROM subscription_plans WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.DurationInDays)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find plan", zap.Error(err), zap.String("plan_id", id.String()))
		return nil, fmt.Errorf("find plan %s: %w", id, err)
	}

	return &p, nil
}

func (r *subscriptionRepository) FindLatest(ctx context.Context, providerID uuid.UUID) (*entity.Subscription, error) {
	var s entity.Subscription
	err := r.db.QueryRow(ctx, `
		SELECT s.id, s.provider_id, s.plan_id, sp.name, s.start_date, s.end_date, s.amount_paid, s.created_at
		FROM subscriptions s
		JOIN subscription_plans sp ON sp.id = s.plan_id
		WHERE s.provider_id = $1
		ORDER BY s.end_date DESC
		LIMIT 1
	`, providerID).Scan(&s.ID, &s.ProviderID, &s.PlanID, &s.PlanName,
		&s.StartDate, &s.EndDate, &s.AmountPaid, &s.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find latest subscription",
			zap.Error(err),
			zap.String("provider_id", providerID.String()),
		)
		return nil, fmt.Errorf("find latest subscription %s: %w", providerID, err)
	}

	return &s, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *entity.Subscription) error {
	if err := insertSubscription(ctx, r.db, sub); err != nil {
		r.log.Error("Failed to create subscription",
			zap.Error(err),
			zap.String("provider_id", sub.ProviderID.String()),
		)
		return err
	}
	return nil
}

// insertSubscription runs on the pool or inside a payment transaction.
func insertSubscription(ctx context.Context, q database.Querier, sub *entity.Subscription) error {
	_, err := q.Exec(ctx, `
		INSERT INTO subscriptions (id, provider_id, plan_id, start_date, end_date, amount_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sub.ID, sub.ProviderID, sub.PlanID, sub.StartDate, sub.EndDate, sub.AmountPaid, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}
