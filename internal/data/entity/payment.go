package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is a provider's checkout for one subscription plan. Only a
// completed payment produces a subscription.
type Payment struct {
	BaseNoDelete
	ProviderID    uuid.UUID     `db:"provider_id"`
	PlanID        uuid.UUID     `db:"plan_id"`
	Amount        float64       `db:"amount"`
	Status        PaymentStatus `db:"status"`
	TransactionID *string       `db:"transaction_id"`
	PaidAt        *time.Time    `db:"paid_at"`
}
