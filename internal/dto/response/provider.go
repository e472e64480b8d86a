package response

type ProviderProfileResponse struct {
	UserID       string             `json:"user_id"`
	FullName     string             `json:"full_name"`
	Bio          string             `json:"bio"`
	Rating       float64            `json:"rating"`
	TotalReviews int                `json:"total_reviews"`
	IsVerified   bool               `json:"is_verified"`
	Services     []ServiceResponse  `json:"services"`
	Cities       []CityResponse     `json:"cities"`
	Schedules    []ScheduleResponse `json:"schedules"`
}

type ScheduleResponse struct {
	DayOfWeek int    `json:"day_of_week"`
	DayName   string `json:"day_name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SubscriptionPlanResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    *string `json:"description,omitempty"`
	Price          float64 `json:"price"`
	FormattedPrice string  `json:"formatted_price"`
	DurationInDays int     `json:"duration_in_days"`
}

type SubscriptionStatusResponse struct {
	HasActiveSubscription bool    `json:"has_active_subscription"`
	ExpiryDate            *string `json:"expiry_date,omitempty"`
	PlanName              *string `json:"plan_name,omitempty"`
	IsProviderActive      bool    `json:"is_provider_active"`
}

type PaymentResponse struct {
	ID              string                      `json:"id"`
	PlanName        string                      `json:"plan_name"`
	Amount          float64                     `json:"amount"`
	FormattedAmount string                      `json:"formatted_amount"`
	Status          string                      `json:"status"`
	TransactionID   *string                     `json:"transaction_id,omitempty"`
	Subscription    *SubscriptionStatusResponse `json:"subscription,omitempty"`
}
