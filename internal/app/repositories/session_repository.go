package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// SessionRepository handles server-side session database operations
type SessionRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new session row
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	sql, args, err := r.sb.Insert("sessions").
		Columns("id", "user_id", "school_id", "school_name", "expires_at").
		Values(session.ID, session.UserID, session.SchoolID, session.SchoolName, session.ExpiresAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", session.UserID).Msg("Error creating session")
		return fmt.Errorf("error creating session: %w", err)
	}

	return nil
}

// GetByID retrieves a live session by its id. Expired sessions are
// reported as missing.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	sql, args, err := r.sb.Select("id", "user_id", "school_id", "school_name", "created_at", "expires_at", "last_seen_at").
		From("sessions").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Expr("expires_at > NOW()")).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get session query: %w", err)
	}

	s := &models.Session{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&s.ID, &s.UserID, &s.SchoolID, &s.SchoolName, &s.CreatedAt, &s.ExpiresAt, &s.LastSeenAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		logger.Error().Err(err).Str("sessionID", id).Msg("Error scanning session row")
		return nil, fmt.Errorf("error getting session: %w", err)
	}

	return s, nil
}

// SetSchool pins the session to a school, or clears it when both are nil
func (r *SessionRepository) SetSchool(ctx context.Context, id string, schoolID *int64, schoolName *string) error {
	sql, args, err := r.sb.Update("sessions").
		SetMap(map[string]interface{}{
			"school_id":   schoolID,
			"school_name": schoolName,
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set session school query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error updating session school")
		return fmt.Errorf("error updating session school: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}

	return nil
}

// Touch stamps the session's last seen time
func (r *SessionRepository) Touch(ctx context.Context, id string) error {
	sql, args, err := r.sb.Update("sessions").
		Set("last_seen_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build touch session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error touching session: %w", err)
	}

	return nil
}

// Delete removes a session. Deleting an already removed session is not an
// error, matching flush semantics.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete session query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("sessionID", id).Msg("Error deleting session")
		return fmt.Errorf("error deleting session: %w", err)
	}

	return nil
}

// DeleteByUser removes every session of a user
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID int64) error {
	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete user sessions query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error deleting user sessions: %w", err)
	}

	return nil
}

// DeleteExpired removes expired sessions and returns how many were dropped
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	sql, args, err := r.sb.Delete("sessions").
		Where(squirrel.Expr("expires_at <= NOW()")).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build delete expired sessions query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("error deleting expired sessions: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
