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

// MembershipRepository handles user-school membership database operations
type MembershipRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetOrCreate returns the membership linking user and school, creating an
// active non-primary one when missing. Safe to call concurrently: the
// unique (user_id, school_id) pair makes the insert a no-op on conflict.
func (r *MembershipRepository) GetOrCreate(ctx context.Context, userID, schoolID int64) (*models.Membership, error) {
	sql, args, err := r.sb.Insert("user_schools").
		Columns("user_id", "school_id", "is_primary", "is_active").
		Values(userID, schoolID, false, true).
		Suffix("ON CONFLICT (user_id, school_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build create membership query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("userID", userID).Int64("schoolID", schoolID).Msg("Error creating membership")
		return nil, fmt.Errorf("error creating membership: %w", err)
	}

	return r.GetByUserAndSchool(ctx, userID, schoolID)
}

// GetByUserAndSchool retrieves one membership row
func (r *MembershipRepository) GetByUserAndSchool(ctx context.Context, userID, schoolID int64) (*models.Membership, error) {
	sql, args, err := r.sb.Select("id", "user_id", "school_id", "is_primary", "is_active", "added_at").
		From("user_schools").
		Where(squirrel.Eq{"user_id": userID, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get membership query: %w", err)
	}

	m := &models.Membership{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.UserID, &m.SchoolID, &m.IsPrimary, &m.IsActive, &m.AddedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMembershipNotFound
		}
		logger.Error().Err(err).Int64("userID", userID).Int64("schoolID", schoolID).Msg("Error scanning membership row")
		return nil, fmt.Errorf("error getting membership: %w", err)
	}

	return m, nil
}

// ListActiveByUser returns the user's active memberships with the school
// relation populated. Primary memberships sort first, then lowest id, so
// the first element is the deterministic resolver choice.
func (r *MembershipRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*models.Membership, error) {
	sql, args, err := r.sb.Select(
		"us.id", "us.user_id", "us.school_id", "us.is_primary", "us.is_active", "us.added_at",
		"s.id", "s.name", "s.code", "s.is_active").
		From("user_schools us").
		Join("schools s ON s.id = us.school_id").
		Where(squirrel.Eq{"us.user_id": userID, "us.is_active": true}).
		OrderBy("us.is_primary DESC", "us.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list memberships query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("userID", userID).Msg("Error querying memberships")
		return nil, fmt.Errorf("error querying memberships: %w", err)
	}
	defer rows.Close()

	memberships := []*models.Membership{}
	for rows.Next() {
		m := &models.Membership{School: &models.School{}}
		err := rows.Scan(
			&m.ID, &m.UserID, &m.SchoolID, &m.IsPrimary, &m.IsActive, &m.AddedAt,
			&m.School.ID, &m.School.Name, &m.School.Code, &m.School.IsActive,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning membership row: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating membership rows: %w", err)
	}

	return memberships, nil
}

// EnsureForSchools creates missing memberships between the user and each
// given school. The first membership ever created for the user is marked
// primary. Used by registration provisioning and the bootstrap backfill.
func (r *MembershipRepository) EnsureForSchools(ctx context.Context, userID int64, schoolIDs []int64) error {
	for _, schoolID := range schoolIDs {
		hasAny, err := r.hasAnyMembership(ctx, userID)
		if err != nil {
			return err
		}

		sql, args, err := r.sb.Insert("user_schools").
			Columns("user_id", "school_id", "is_primary", "is_active").
			Values(userID, schoolID, !hasAny, true).
			Suffix("ON CONFLICT (user_id, school_id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build ensure membership query: %w", err)
		}

		if _, err := r.db.Exec(ctx, sql, args...); err != nil {
			logger.Error().Err(err).Int64("userID", userID).Int64("schoolID", schoolID).Msg("Error ensuring membership")
			return fmt.Errorf("error ensuring membership: %w", err)
		}
	}

	return nil
}

func (r *MembershipRepository) hasAnyMembership(ctx context.Context, userID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("user_schools").
		Where(squirrel.Eq{"user_id": userID}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build membership exists query: %w", err)
	}

	var exists bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking membership existence: %w", err)
	}

	return exists, nil
}

// SetPrimary marks one membership as the user's primary and clears the
// flag on all others in a single statement pair.
func (r *MembershipRepository) SetPrimary(ctx context.Context, userID, schoolID int64) error {
	clearSql, clearArgs, err := r.sb.Update("user_schools").
		Set("is_primary", false).
		Where(squirrel.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear primary query: %w", err)
	}
	if _, err := r.db.Exec(ctx, clearSql, clearArgs...); err != nil {
		return fmt.Errorf("error clearing primary membership: %w", err)
	}

	setSql, setArgs, err := r.sb.Update("user_schools").
		Set("is_primary", true).
		Where(squirrel.Eq{"user_id": userID, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set primary query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, setSql, setArgs...)
	if err != nil {
		return fmt.Errorf("error setting primary membership: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrMembershipNotFound
	}

	return nil
}
