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
	"github.com/skulz/skubackend/internal/pkg/dberrors"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// SchoolRepository handles school and subscription database operations
type SchoolRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSchoolRepository creates a new SchoolRepository
func NewSchoolRepository(db *pgxpool.Pool) *SchoolRepository {
	return &SchoolRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var schoolColumns = []string{
	"id", "name", "code", "email", "phone_number", "website",
	"street_address", "city", "state", "postal_code", "country",
	"principal_name", "admin_email", "is_active", "created_at", "updated_at",
}

func scanSchool(row pgx.Row) (*models.School, error) {
	s := &models.School{}
	err := row.Scan(
		&s.ID, &s.Name, &s.Code, &s.Email, &s.PhoneNumber, &s.Website,
		&s.StreetAddress, &s.City, &s.State, &s.PostalCode, &s.Country,
		&s.PrincipalName, &s.AdminEmail, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Create creates a new school
func (r *SchoolRepository) Create(ctx context.Context, school *models.School) (int64, error) {
	sql, args, err := r.sb.Insert("schools").
		Columns("name", "code", "email", "phone_number", "website",
			"street_address", "city", "state", "postal_code", "country",
			"principal_name", "admin_email", "is_active").
		Values(school.Name, school.Code, school.Email, school.PhoneNumber, school.Website,
			school.StreetAddress, school.City, school.State, school.PostalCode, school.Country,
			school.PrincipalName, school.AdminEmail, school.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create school query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrSchoolAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create school query")
		return 0, fmt.Errorf("error creating school: %w", err)
	}

	return id, nil
}

// GetByID retrieves a school by ID, including its subscription when present
func (r *SchoolRepository) GetByID(ctx context.Context, id int64) (*models.School, error) {
	sql, args, err := r.sb.Select(schoolColumns...).
		From("schools").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get school query: %w", err)
	}

	school, err := scanSchool(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Int64("schoolID", id).Msg("Error scanning school row")
		return nil, fmt.Errorf("error getting school by ID: %w", err)
	}

	sub, err := r.GetSubscription(ctx, id)
	if err != nil && !errors.Is(err, apperrors.ErrSubscriptionNotFound) {
		return nil, err
	}
	school.Subscription = sub

	return school, nil
}

// GetByCode retrieves a school by its unique code
func (r *SchoolRepository) GetByCode(ctx context.Context, code string) (*models.School, error) {
	sql, args, err := r.sb.Select(schoolColumns...).
		From("schools").
		Where(squirrel.Eq{"code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get school by code query: %w", err)
	}

	school, err := scanSchool(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSchoolNotFound
		}
		logger.Error().Err(err).Str("code", code).Msg("Error scanning school row")
		return nil, fmt.Errorf("error getting school by code: %w", err)
	}

	return school, nil
}

// GetAll retrieves all schools ordered by name
func (r *SchoolRepository) GetAll(ctx context.Context) ([]*models.School, error) {
	sql, args, err := r.sb.Select(schoolColumns...).
		From("schools").
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all schools query")
		return nil, fmt.Errorf("error querying schools: %w", err)
	}
	defer rows.Close()

	schools := []*models.School{}
	for rows.Next() {
		school, err := scanSchool(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning school row: %w", err)
		}
		schools = append(schools, school)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school rows: %w", err)
	}

	return schools, nil
}

// Update updates an existing school
func (r *SchoolRepository) Update(ctx context.Context, school *models.School) error {
	sql, args, err := r.sb.Update("schools").
		SetMap(map[string]interface{}{
			"name":           school.Name,
			"email":          school.Email,
			"phone_number":   school.PhoneNumber,
			"website":        school.Website,
			"street_address": school.StreetAddress,
			"city":           school.City,
			"state":          school.State,
			"postal_code":    school.PostalCode,
			"country":        school.Country,
			"principal_name": school.PrincipalName,
			"admin_email":    school.AdminEmail,
			"is_active":      school.IsActive,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": school.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update school query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSchoolAlreadyExists
		}
		logger.Error().Err(err).Int64("schoolID", school.ID).Msg("Error executing update school query")
		return fmt.Errorf("error updating school: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSchoolNotFound
	}

	return nil
}

var subscriptionColumns = []string{
	"id", "school_id", "plan", "status", "max_students", "max_users",
	"start_date", "end_date", "renewal_date", "notes", "created_at", "updated_at",
}

// GetSubscription retrieves the subscription of a school
func (r *SchoolRepository) GetSubscription(ctx context.Context, schoolID int64) (*models.Subscription, error) {
	sql, args, err := r.sb.Select(subscriptionColumns...).
		From("subscriptions").
		Where(squirrel.Eq{"school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subscription query: %w", err)
	}

	sub := &models.Subscription{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&sub.ID, &sub.SchoolID, &sub.Plan, &sub.Status, &sub.MaxStudents, &sub.MaxUsers,
		&sub.StartDate, &sub.EndDate, &sub.RenewalDate, &sub.Notes, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error scanning subscription row")
		return nil, fmt.Errorf("error getting subscription: %w", err)
	}

	return sub, nil
}

// UpsertSubscription creates or replaces the subscription of a school
func (r *SchoolRepository) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	sql, args, err := r.sb.Insert("subscriptions").
		Columns("school_id", "plan", "status", "max_students", "max_users",
			"start_date", "end_date", "renewal_date", "notes").
		Values(sub.SchoolID, sub.Plan, sub.Status, sub.MaxStudents, sub.MaxUsers,
			sub.StartDate, sub.EndDate, sub.RenewalDate, sub.Notes).
		Suffix(`ON CONFLICT (school_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			status = EXCLUDED.status,
			max_students = EXCLUDED.max_students,
			max_users = EXCLUDED.max_users,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			renewal_date = EXCLUDED.renewal_date,
			notes = EXCLUDED.notes,
			updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert subscription query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("schoolID", sub.SchoolID).Msg("Error upserting subscription")
		return fmt.Errorf("error upserting subscription: %w", err)
	}

	return nil
}

// HasActiveSubscription reports whether the school is eligible for login,
// meaning it is active and has a subscription in active status.
func (r *SchoolRepository) HasActiveSubscription(ctx context.Context, schoolID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("schools s").
		Join("subscriptions sub ON sub.school_id = s.id").
		Where(squirrel.Eq{"s.id": schoolID, "s.is_active": true, "sub.status": models.SubscriptionActive}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build subscription check query: %w", err)
	}

	var eligible bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&eligible)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error checking school eligibility")
		return false, fmt.Errorf("error checking school eligibility: %w", err)
	}

	return eligible, nil
}

// ListActiveIDs returns the ids of all active schools, lowest first
func (r *SchoolRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	sql, args, err := r.sb.Select("id").
		From("schools").
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list active schools query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying active schools: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning school id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating school ids: %w", err)
	}

	return ids, nil
}
