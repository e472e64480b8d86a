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

// sessionRetention is how long expired rows are kept before the janitor drops them.
const sessionRetention = 7 * 24 * time.Hour

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	// FindValidSession returns nil for unknown, revoked or expired tokens.
	FindValidSession(ctx context.Context, token string) (*entity.Session, error)
	// Revoke ends one session. ErrStaleWrite when it was already ended.
	Revoke(ctx context.Context, token string) error
	RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error
	// RevokeOtherSessions ends every session of userID except keepToken.
	RevokeOtherSessions(ctx context.Context, userID uuid.UUID, keepToken string) (int64, error)
	CleanExpiredSessions(ctx context.Context) error
}

type sessionRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewSessionRepository(db database.PgxIface, log *zap.Logger) SessionRepository {
	return &sessionRepository{
		db:  db,
		log: log.With(zap.String("repository", "session")),
	}
}

const sessionColumns = `id, user_id, token, user_agent, ip_address, expires_at, revoked_at, created_at`

func scanSession(row pgx.Row) (*entity.Session, error) {
	var s entity.Session
	if err := row.Scan(
		&s.ID, &s.UserID, &s.Token, &s.UserAgent, &s.IPAddress,
		&s.ExpiresAt, &s.RevokedAt, &s.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sessionRepository) Create(ctx context.Context, session *entity.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, $7)
	`,
		session.ID, session.UserID, session.Token, session.UserAgent,
		session.IPAddress, session.ExpiresAt, session.CreatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", session.UserID.String()))
		return fmt.Errorf("create session for user %s: %w", session.UserID, err)
	}
	return nil
}

func (r *sessionRepository) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE token = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`, token))

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, nil
	case err != nil:
		r.log.Error("Failed to find valid session", zap.Error(err))
		return nil, fmt.Errorf("find session: %w", err)
	}
	return session, nil
}

func (r *sessionRepository) Revoke(ctx context.Context, token string) error {
	n, err := r.revoke(ctx, "token = $1", token)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("revoke session: %w", ErrStaleWrite)
	}
	return nil
}

func (r *sessionRepository) RevokeAllUserSessions(ctx context.Context, userID uuid.UUID) error {
	_, err := r.revoke(ctx, "user_id = $1", userID)
	return err
}

func (r *sessionRepository) RevokeOtherSessions(ctx context.Context, userID uuid.UUID, keepToken string) (int64, error) {
	return r.revoke(ctx, "user_id = $1 AND token::text <> $2", userID, keepToken)
}

func (r *sessionRepository) CleanExpiredSessions(ctx context.Context) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, time.Now().Add(-sessionRetention))
	if err != nil {
		r.log.Error("Failed to clean expired sessions", zap.Error(err))
		return fmt.Errorf("clean sessions: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		r.log.Debug("Expired sessions removed", zap.Int64("count", n))
	}
	return nil
}

// ==================== HELPER METHODS ====================

// revoke ends the still open sessions matching where and reports how many.
func (r *sessionRepository) revoke(ctx context.Context, where string, args ...any) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE sessions SET revoked_at = NOW() WHERE revoked_at IS NULL AND `+where, args...)
	if err != nil {
		r.log.Error("Failed to revoke sessions", zap.Error(err), zap.String("filter", where))
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
