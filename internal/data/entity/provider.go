package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider is keyed by its user id; a provider is a user with a profile.
type Provider struct {
	UserID       uuid.UUID `db:"user_id"`
	Bio          string    `db:"bio"`
	Rating       float64   `db:"rating"`
	TotalReviews int       `db:"total_reviews"`
	IsVerified   bool      `db:"is_verified"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`

	// Loaded with the profile
	FullName      string
	Phone         *string
	IsActive      bool
	ServiceIDs    []uuid.UUID
	AreaIDs       []uuid.UUID
	Schedules     []ScheduleSlot
	Subscriptions []Subscription
}

func (p *Provider) OffersService(id uuid.UUID) bool {
	for _, s := range p.ServiceIDs {
		if s == id {
			return true
		}
	}
	return false
}

func (p *Provider) CoversArea(id uuid.UUID) bool {
	for _, a := range p.AreaIDs {
		if a == id {
			return true
		}
	}
	return false
}

// HasSubscriptionAt reports whether any subscription is still running at t.
func (p *Provider) HasSubscriptionAt(t time.Time) bool {
	for _, s := range p.Subscriptions {
		if !s.EndDate.Before(t) {
			return true
		}
	}
	return false
}

// WorksAt reports whether a schedule slot covers t, bounds inclusive.
func (p *Provider) WorksAt(t time.Time) bool {
	day := t.Weekday()
	tod := TimeOfDayOf(t)
	for _, slot := range p.Schedules {
		if slot.DayOfWeek == day && slot.StartTime <= tod && tod <= slot.EndTime {
			return true
		}
	}
	return false
}

// TimeOfDay is seconds since midnight.
type TimeOfDay int

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60)
}

func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/3600, (int(t)%3600)/60)
}

type ScheduleSlot struct {
	ID         uuid.UUID    `db:"id"`
	ProviderID uuid.UUID    `db:"provider_id"`
	DayOfWeek  time.Weekday `db:"day_of_week"`
	StartTime  TimeOfDay    `db:"start_time"`
	EndTime    TimeOfDay    `db:"end_time"`
}

type SubscriptionPlan struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	Description    *string   `db:"description"`
	Price          float64   `db:"price"`
	DurationInDays int       `db:"duration_in_days"`
}

type Subscription struct {
	BaseSimple
	ProviderID uuid.UUID `db:"provider_id"`
	PlanID     uuid.UUID `db:"plan_id"`
	PlanName   string    `db:"plan_name"`
	StartDate  time.Time `db:"start_date"`
	EndDate    time.Time `db:"end_date"`
	AmountPaid float64   `db:"amount_paid"`
}
