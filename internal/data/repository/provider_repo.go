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
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

type ProviderRepository interface {
	// Create stores the profile with its services, areas and schedule and
	// promotes the user to the service provider role.
	Create(ctx context.Context, provider *entity.Provider) error
	// Update replaces bio, services, areas and schedule.
	Update(ctx context.Context, provider *entity.Provider) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error)
	// ListCandidatesByArea returns every provider covering the area with all
	// relations loaded. Callers apply the remaining eligibility rules.
	ListCandidatesByArea(ctx context.Context, areaID uuid.UUID) ([]*entity.Provider, error)
}

type providerRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewProviderRepository(db database.PgxIface, log *zap.Logger) ProviderRepository {
	return &providerRepository{
		db:  db,
		log: log.With(zap.String("repository", "provider")),
	}
}

const providerSelect = `
	SELECT p.user_id, p.bio, p.rating, p.total_reviews, p.is_verified,
	       p.created_at, p.updated_at, u.full_name, u.phone, u.is_active
	FROM providers p
	JOIN users u ON u.id = p.user_id AND u.deleted_at IS NULL
`

func (r *providerRepository) Create(ctx context.Context, provider *entity.Provider) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO providers (user_id, bio, rating, total_reviews, is_verified, created_at, updated_at)
			VALUES ($1, $2, 0, 0, false, $3, $4)
		`, provider.UserID, provider.Bio, provider.CreatedAt, provider.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert provider: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE users SET role = $2, updated_at = $3 WHERE id = $1`,
			provider.UserID, entity.RoleServiceProvider, provider.UpdatedAt)
		if err != nil {
			return fmt.Errorf("promote user: %w", err)
		}

		return writeProviderRelations(ctx, tx, provider)
	})

	if err != nil {
		if !errors.Is(err, ErrDuplicate) {
			r.log.Error("Failed to create provider",
				zap.Error(err),
				zap.String("user_id", provider.UserID.String()),
			)
		}
		return fmt.Errorf("create provider %s: %w", provider.UserID, err)
	}

	return nil
}

func (r *providerRepository) Update(ctx context.Context, provider *entity.Provider) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `UPDATE providers SET bio = $2, updated_at = $3 WHERE user_id = $1`,
			provider.UserID, provider.Bio, provider.UpdatedAt)
		if err != nil {
			return fmt.Errorf("update provider: %w", err)
		}
		if result.RowsAffected() == 0 {
			return ErrStaleWrite
		}

		for _, table := range []string{"provider_services", "provider_service_areas", "schedules"} {
			if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE provider_id = $1`, provider.UserID); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		return writeProviderRelations(ctx, tx, provider)
	})

	if err != nil {
		r.log.Error("Failed to update provider",
			zap.Error(err),
			zap.String("user_id", provider.UserID.String()),
		)
		return fmt.Errorf("update provider %s: %w", provider.UserID, err)
	}

	return nil
}

func writeProviderRelations(ctx context.Context, tx pgx.Tx, provider *entity.Provider) error {
	for _, serviceID := range provider.ServiceIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO provider_services (provider_id, service_id) VALUES ($1, $2)`,
			provider.UserID, serviceID); err != nil {
			return fmt.Errorf("insert provider service: %w", err)
		}
	}

	for _, areaID := range provider.AreaIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO provider_service_areas (provider_id, service_area_id) VALUES ($1, $2)`,
			provider.UserID, areaID); err != nil {
			return fmt.Errorf("insert provider area: %w", err)
		}
	}

	for i := range provider.Schedules {
		slot := &provider.Schedules[i]
		if slot.ID == uuid.Nil {
			slot.ID = uuid.New()
		}
		slot.ProviderID = provider.UserID
		if _, err := tx.Exec(ctx, `
			INSERT INTO schedules (id, provider_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)
		`, slot.ID, slot.ProviderID, int(slot.DayOfWeek), toPgTime(slot.StartTime), toPgTime(slot.EndTime)); err != nil {
			return fmt.Errorf("insert schedule: %w", err)
		}
	}

	return nil
}

func (r *providerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Provider, error) {
	providers, err := r.queryProviders(ctx, providerSelect+` WHERE p.user_id = $1`, userID)
	if err != nil {
		r.log.Error("Failed to find provider",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find provider %s: %w", userID, err)
	}
	if len(providers) == 0 {
		return nil, nil
	}

	return providers[0], nil
}

func (r *providerRepository) ListCandidatesByArea(ctx context.Context, areaID uuid.UUID) ([]*entity.Provider, error) {
	query := providerSelect + `
		JOIN provider_service_areas psa ON psa.provider_id = p.user_id
		WHERE psa.service_area_id = $1
	`

	providers, err := r.queryProviders(ctx, query, areaID)
	if err != nil {
		r.log.Error("Failed to list candidate providers",
			zap.Error(err),
			zap.String("service_area_id", areaID.String()),
		)
		return nil, fmt.Errorf("list providers in area %s: %w", areaID, err)
	}

	return providers, nil
}

func (r *providerRepository) queryProviders(ctx context.Context, query string, args ...any) ([]*entity.Provider, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var providers []*entity.Provider
	byID := make(map[uuid.UUID]*entity.Provider)
	for rows.Next() {
		var p entity.Provider
		if err := rows.Scan(
			&p.UserID,
			&p.Bio,
			&p.Rating,
			&p.TotalReviews,
			&p.IsVerified,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.FullName,
			&p.Phone,
			&p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan provider row: %w", err)
		}
		providers = append(providers, &p)
		byID[p.UserID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate provider rows: %w", err)
	}

	if len(providers) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}

	if err := r.loadRelations(ctx, ids, byID); err != nil {
		return nil, err
	}

	return providers, nil
}

// loadRelations fills services, areas, schedules and subscriptions for a
// batch of providers with one query per relation.
func (r *providerRepository) loadRelations(ctx context.Context, ids []uuid.UUID, byID map[uuid.UUID]*entity.Provider) error {
	err := scanPairs(ctx, r.db,
		`SELECT provider_id, service_id FROM provider_services WHERE provider_id = ANY($1)`, ids,
		func(providerID, serviceID uuid.UUID) {
			p := byID[providerID]
			p.ServiceIDs = append(p.ServiceIDs, serviceID)
		})
	if err != nil {
		return fmt.Errorf("load provider services: %w", err)
	}

	err = scanPairs(ctx, r.db,
		`SELECT provider_id, service_area_id FROM provider_service_areas WHERE provider_id = ANY($1)`, ids,
		func(providerID, areaID uuid.UUID) {
			p := byID[providerID]
			p.AreaIDs = append(p.AreaIDs, areaID)
		})
	if err != nil {
		return fmt.Errorf("load provider areas: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, provider_id, day_of_week, start_time, end_time
		FROM schedules
		WHERE provider_id = ANY($1)
		ORDER BY day_of_week, start_time
	`, ids)
	if err != nil {
		return fmt.Errorf("load schedules: %w", err)
	}
	for rows.Next() {
		var (
			slot       entity.ScheduleSlot
			day        int
			start, end pgtype.Time
		)
		if err := rows.Scan(&slot.ID, &slot.ProviderID, &day, &start, &end); err != nil {
			rows.Close()
			return fmt.Errorf("scan schedule: %w", err)
		}
		slot.DayOfWeek = time.Weekday(day)
		slot.StartTime = fromPgTime(start)
		slot.EndTime = fromPgTime(end)
		p := byID[slot.ProviderID]
		p.Schedules = append(p.Schedules, slot)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate schedules: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT s.id, s.provider_id, s.plan_id, sp.name, s.start_date, s.end_date, s.amount_paid, s.created_at
		FROM subscriptions s
		JOIN subscription_plans sp ON sp.id = s.plan_id
		WHERE s.provider_id = ANY($1)
		ORDER BY s.end_date DESC
	`, ids)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sub entity.Subscription
		if err := rows.Scan(&sub.ID, &sub.ProviderID, &sub.PlanID, &sub.PlanName,
			&sub.StartDate, &sub.EndDate, &sub.AmountPaid, &sub.CreatedAt); err != nil {
			return fmt.Errorf("scan subscription: %w", err)
		}
		p := byID[sub.ProviderID]
		p.Subscriptions = append(p.Subscriptions, sub)
	}

	return rows.Err()
}

func scanPairs(ctx context.Context, q database.Querier, query string, ids []uuid.UUID, fn func(a, b uuid.UUID)) error {
	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a, b uuid.UUID
		if err := rows.Scan(&a, &b); err != nil {
			return err
		}
		fn(a, b)
	}
	return rows.Err()
}

func toPgTime(t entity.TimeOfDay) pgtype.Time {
	return pgtype.Time{Microseconds: int64(t) * 1_000_000, Valid: true}
}

func fromPgTime(t pgtype.Time) entity.TimeOfDay {
	return entity.TimeOfDay(t.Microseconds / 1_000_000)
}
