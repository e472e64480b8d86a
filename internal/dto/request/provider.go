package request

// ProviderProfileRequest is used both to become a provider and to replace
// an existing profile.
type ProviderProfileRequest struct {
	Bio            string            `json:"bio" validate:"max=500"`
	ServiceIDs     []string          `json:"service_ids" validate:"required,min=1,unique,dive,uuid"`
	ServiceAreaIDs []string          `json:"service_area_ids" validate:"required,min=1,unique,dive,uuid"`
	Schedules      []ScheduleRequest `json:"schedules" validate:"required,min=1,dive"`
}

type ScheduleRequest struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type CheckoutRequest struct {
	PlanID string `json:"plan_id" validate:"required,uuid"`
}

// ConfirmPaymentRequest is sent by the payment gateway once a checkout settles.
type ConfirmPaymentRequest struct {
	PaymentID     string `json:"payment_id" validate:"required,uuid"`
	TransactionID string `json:"transaction_id" validate:"required,max=255"`
	Status        string `json:"status" validate:"required,oneof=completed failed"`
}
