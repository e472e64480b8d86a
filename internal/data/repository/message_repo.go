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

type MessageRepository interface {
	Create(ctx context.Context, msg *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Message, error)
	// MarkBookingRead flags every unread message addressed to receiverID.
	MarkBookingRead(ctx context.Context, bookingID, receiverID uuid.UUID, at time.Time) error
	// MarkRead returns ErrStaleWrite when the message was already read.
	MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error)
}

type messageRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewMessageRepository(db database.PgxIface, log *zap.Logger) MessageRepository {
	return &messageRepository{
		db:  db,
		log: log.With(zap.String("repository", "message")),
	}
}

const messageColumns = `id, booking_id, sender_id, receiver_id, content, is_read, read_at, created_at`

func scanMessage(row pgx.Row) (*entity.Message, error) {
	var m entity.Message
	if err := row.Scan(&m.ID, &m.BookingID, &m.SenderID, &m.ReceiverID,
		&m.Content, &m.IsRead, &m.ReadAt, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *entity.Message) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.BookingID, msg.SenderID, msg.ReceiverID, msg.Content, msg.IsRead, msg.ReadAt, msg.CreatedAt)

	if err != nil {
		r.log.Error("Failed to create message",
			zap.Error(err),
			zap.String("booking_id", msg.BookingID.String()),
		)
		return fmt.Errorf("create message: %w", err)
	}

	return nil
}

func (r *messageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	msg, err := scanMessage(r.db.QueryRow(ctx, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find message", zap.Error(err), zap.String("message_id", id.String()))
		return nil, fmt.Errorf("find message %s: %w", id, err)
	}
	return msg, nil
}

func (r *messageRepository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]*entity.Message, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE booking_id = $1
		ORDER BY created_at
	`, bookingID)
	if err != nil {
		r.log.Error("Failed to list messages", zap.Error(err), zap.String("booking_id", bookingID.String()))
		return nil, fmt.Errorf("list messages for booking %s: %w", bookingID, err)
	}
	defer rows.Close()

	var messages []*entity.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

func (r *messageRepository) MarkBookingRead(ctx context.Context, bookingID, receiverID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE messages SET is_read = true, read_at = $3
		WHERE booking_id = $1 AND receiver_id = $2 AND is_read = false
	`, bookingID, receiverID, at)
	if err != nil {
		r.log.Error("Failed to mark booking messages read",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return fmt.Errorf("mark messages read for booking %s: %w", bookingID, err)
	}
	return nil
}

func (r *messageRepository) MarkRead(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE messages SET is_read = true, read_at = $2 WHERE id = $1 AND is_read = false`, id, at)
	if err != nil {
		r.log.Error("Failed to mark message read", zap.Error(err), zap.String("message_id", id.String()))
		return fmt.Errorf("mark message %s read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("mark message %s read: %w", id, ErrStaleWrite)
	}
	return nil
}

func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete message", zap.Error(err), zap.String("message_id", id.String()))
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("delete message %s: %w", id, ErrStaleWrite)
	}
	return nil
}

// ListConversations returns one row per booking the user takes part in that
// has at least one message, newest activity first.
func (r *messageRepository) ListConversations(ctx context.Context, userID uuid.UUID) ([]*entity.Conversation, error) {
	query := `
		SELECT b.id, b.status, u.id, u.full_name,
		       m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.read_at, m.created_at,
		       (SELECT COUNT(*) FROM messages um
		         WHERE um.booking_id = b.id AND um.receiver_id = $1 AND um.is_read = false)
		FROM bookings b
		JOIN users u ON u.id = CASE WHEN b.customer_id = $1 THEN b.service_provider_id ELSE b.customer_id END
		JOIN LATERAL (
			SELECT id, sender_id, receiver_id, content, is_read, read_at, created_at
			FROM messages
			WHERE booking_id = b.id
			ORDER BY created_at DESC
			LIMIT 1
		) m ON true
		WHERE b.customer_id = $1 OR b.service_provider_id = $1
		ORDER BY m.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list conversations", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list conversations for %s: %w", userID, err)
	}
	defer rows.Close()

	var conversations []*entity.Conversation
	for rows.Next() {
		var (
			c    entity.Conversation
			last entity.Message
		)
		if err := rows.Scan(
			&c.BookingID, &c.BookingStatus, &c.OtherUserID, &c.OtherUserName,
			&last.ID, &last.SenderID, &last.ReceiverID, &last.Content, &last.IsRead, &last.ReadAt, &last.CreatedAt,
			&c.UnreadCount,
		); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		last.BookingID = c.BookingID
		c.LastMessage = &last
		c.LastActivityAt = last.CreatedAt
		conversations = append(conversations, &c)
	}

	return conversations, rows.Err()
}
