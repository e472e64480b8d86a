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

type BookingRepository interface {
	// Create writes the booking, its line items and attachments in one tx.
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*entity.Booking, error)
	ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*entity.Booking, error)
	// Transition is a compare-and-set on (status, version). It returns
	// ErrStaleWrite when the booking changed since it was read.
	Transition(ctx context.Context, t BookingTransition) error
}

// BookingTransition describes one conditional write on a booking row.
type BookingTransition struct {
	BookingID   uuid.UUID
	FromStatus  entity.BookingStatus
	FromVersion int
	ToStatus    entity.BookingStatus
	ProviderID  uuid.UUID
	At          time.Time
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, customer_id, service_provider_id, service_area_id, status,
	scheduled_date, scheduled_utc_offset, estimated_hours, total_amount, address, latitude, longitude,
	notes, version, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var b entity.Booking
	err := row.Scan(
		&b.ID,
		&b.CustomerID,
		&b.ServiceProviderID,
		&b.ServiceAreaID,
		&b.Status,
		&b.ScheduledDate,
		&b.ScheduledOffset,
		&b.EstimatedHours,
		&b.TotalAmount,
		&b.Address,
		&b.Latitude,
		&b.Longitude,
		&b.Notes,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.ScheduledDate = b.ScheduledLocal()
	return &b, nil
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO bookings (`+bookingColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`,
			booking.ID,
			booking.CustomerID,
			booking.ServiceProviderID,
			booking.ServiceAreaID,
			booking.Status,
			booking.ScheduledDate,
			booking.ScheduledOffset,
			booking.EstimatedHours,
			booking.TotalAmount,
			booking.Address,
			booking.Latitude,
			booking.Longitude,
			booking.Notes,
			booking.Version,
			booking.CreatedAt,
			booking.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert booking: %w", err)
		}

		for _, item := range booking.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO booking_service_items (booking_id, service_id, price_at_booking)
				VALUES ($1, $2, $3)
			`, booking.ID, item.ServiceID, item.PriceAtBooking); err != nil {
				return fmt.Errorf("insert booking item: %w", err)
			}
		}

		for _, a := range booking.Attachments {
			if _, err := tx.Exec(ctx, `
				INSERT INTO attachments (id, booking_id, file_ref, folder, file_type, mime_type, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`, a.ID, booking.ID, a.FileRef, a.Folder, a.FileType, a.MimeType, a.CreatedAt); err != nil {
				return fmt.Errorf("insert attachment: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", booking.ID.String()),
			zap.String("customer_id", booking.CustomerID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking %s: %w", id, err)
	}

	if err := r.loadDetails(ctx, []*entity.Booking{booking}); err != nil {
		r.log.Error("Failed to load booking details", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("load booking %s details: %w", id, err)
	}

	return booking, nil
}

func (r *bookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*entity.Booking, error) {
	bookings, err := r.list(ctx, `customer_id = $1`, customerID)
	if err != nil {
		r.log.Error("Failed to list customer bookings", zap.Error(err), zap.String("customer_id", customerID.String()))
		return nil, fmt.Errorf("list bookings for customer %s: %w", customerID, err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListByProvider(ctx context.Context, providerID uuid.UUID) ([]*entity.Booking, error) {
	bookings, err := r.list(ctx, `service_provider_id = $1`, providerID)
	if err != nil {
		r.log.Error("Failed to list provider bookings", zap.Error(err), zap.String("provider_id", providerID.String()))
		return nil, fmt.Errorf("list bookings for provider %s: %w", providerID, err)
	}
	return bookings, nil
}

func (r *bookingRepository) list(ctx context.Context, where string, arg any) ([]*entity.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE `+where+` ORDER BY scheduled_date DESC`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}

	if err := r.loadDetails(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// loadDetails fills line items (with service names) and attachments.
func (r *bookingRepository) loadDetails(ctx context.Context, bookings []*entity.Booking) error {
	if len(bookings) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(bookings))
	byID := make(map[uuid.UUID]*entity.Booking, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		byID[b.ID] = b
	}

	rows, err := r.db.Query(ctx, `
		SELECT i.booking_id, i.service_id, s.name, i.price_at_booking
		FROM booking_service_items i
		JOIN services s ON s.id = i.service_id
		WHERE i.booking_id = ANY($1)
		ORDER BY s.name
	`, ids)
	if err != nil {
		return fmt.Errorf("load booking items: %w", err)
	}
	for rows.Next() {
		var item entity.BookingServiceItem
		if err := rows.Scan(&item.BookingID, &item.ServiceID, &item.ServiceName, &item.PriceAtBooking); err != nil {
			rows.Close()
			return fmt.Errorf("scan booking item: %w", err)
		}
		b := byID[item.BookingID]
		b.Items = append(b.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate booking items: %w", err)
	}

	rows, err = r.db.Query(ctx, `
		SELECT id, booking_id, file_ref, folder, file_type, mime_type, created_at
		FROM attachments
		WHERE booking_id = ANY($1)
		ORDER BY created_at
	`, ids)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a entity.Attachment
		if err := rows.Scan(&a.ID, &a.BookingID, &a.FileRef, &a.Folder, &a.FileType, &a.MimeType, &a.CreatedAt); err != nil {
			return fmt.Errorf("scan attachment: %w", err)
		}
		b := byID[a.BookingID]
		b.Attachments = append(b.Attachments, a)
	}

	return rows.Err()
}

func (r *bookingRepository) Transition(ctx context.Context, t BookingTransition) error {
	query := `
		UPDATE bookings
		SET status = $4, service_provider_id = $5, version = version + 1, updated_at = $6
		WHERE id = $1 AND status = $2 AND version = $3
	`

	result, err := r.db.Exec(ctx, query,
		t.BookingID,
		t.FromStatus,
		t.FromVersion,
		t.ToStatus,
		t.ProviderID,
		t.At,
	)
	if err != nil {
		r.log.Error("Failed to transition booking",
			zap.Error(err),
			zap.String("booking_id", t.BookingID.String()),
			zap.String("from", string(t.FromStatus)),
			zap.String("to", string(t.ToStatus)),
		)
		return fmt.Errorf("transition booking %s: %w", t.BookingID, err)
	}

	if result.RowsAffected() != 1 {
		return fmt.Errorf("transition booking %s: %w", t.BookingID, ErrStaleWrite)
	}

	return nil
}
