package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error)
	// Complete marks a pending payment completed and inserts sub in one
	// transaction. ErrStaleWrite when the payment is no longer pending.
	Complete(ctx context.Context, paymentID uuid.UUID, transactionID string, paidAt time.Time, sub *entity.Subscription) error
	// Fail marks a pending payment failed. ErrStaleWrite when it is not pending.
	Fail(ctx context.Context, paymentID uuid.UUID, transactionID string) error
}

type paymentRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentRepository(db database.PgxIface, log *zap.Logger) PaymentRepository {
	return &paymentRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment")),
	}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (id, provider_id, plan_id, amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		payment.ID,
		payment.ProviderID,
		payment.PlanID,
		payment.Amount,
		payment.Status,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment",
			zap.Error(err),
			zap.String("provider_id", payment.ProviderID.String()),
			zap.String("plan_id", payment.PlanID.String()),
		)
		return fmt.Errorf("create payment for provider %s: %w", payment.ProviderID, err)
	}

	return nil
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payment, error) {
	var p entity.Payment
	err := r.db.QueryRow(ctx, `
		SELECT id, provider_id, plan_id, amount, status, transaction_id, paid_at, created_at, updated_at
		FROM payments
		WHERE id = $1
	`, id).Scan(
		&p.ID,
		&p.ProviderID,
		&p.PlanID,
		&p.Amount,
		&p.Status,
		&p.TransactionID,
		&p.PaidAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment", zap.Error(err), zap.String("payment_id", id.String()))
		return nil, fmt.Errorf("find payment %s: %w", id, err)
	}

	return &p, nil
}

func (r *paymentRepository) Complete(ctx context.Context, paymentID uuid.UUID, transactionID string, paidAt time.Time, sub *entity.Subscription) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE payments
			SET status = $3, transaction_id = $4, paid_at = $5, updated_at = $5
			WHERE id = $1 AND status = $2
		`, paymentID, entity.PaymentStatusPending, entity.PaymentStatusCompleted, transactionID, paidAt)
		if err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStaleWrite
		}

		return insertSubscription(ctx, tx, sub)
	})
	if err != nil && !errors.Is(err, ErrStaleWrite) {
		r.log.Error("Failed to complete payment", zap.Error(err), zap.String("payment_id", paymentID.String()))
	}
	return err
}

func (r *paymentRepository) Fail(ctx context.Context, paymentID uuid.UUID, transactionID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $3, transaction_id = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, paymentID, entity.PaymentStatusPending, entity.PaymentStatusFailed, transactionID)
	if err != nil {
		r.log.Error("Failed to mark payment failed", zap.Error(err), zap.String("payment_id", paymentID.String()))
		return fmt.Errorf("fail payment %s: %w", paymentID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrStaleWrite
	}
	return nil
}
