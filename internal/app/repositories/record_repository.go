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

// RecordRepository handles document record database operations
type RecordRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRecordRepository creates a new RecordRepository
func NewRecordRepository(db *pgxpool.Pool) *RecordRepository {
	return &RecordRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var recordColumns = []string{
	"id", "school_id", "student_id", "onboarding_request_id",
	"record_type", "file_url", "description", "uploaded_by", "created_at",
}

func scanRecord(row pgx.Row) (*models.Record, error) {
	rec := &models.Record{}
	err := row.Scan(
		&rec.ID, &rec.SchoolID, &rec.StudentID, &rec.OnboardingRequestID,
		&rec.RecordType, &rec.FileURL, &rec.Description, &rec.UploadedBy, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Create stores a new record. The table's check constraint enforces that
// exactly one of student_id and onboarding_request_id is set.
func (r *RecordRepository) Create(ctx context.Context, rec *models.Record) (int64, error) {
	sql, args, err := r.sb.Insert("records").
		Columns("school_id", "student_id", "onboarding_request_id", "record_type", "file_url", "description", "uploaded_by").
		Values(rec.SchoolID, rec.StudentID, rec.OnboardingRequestID, rec.RecordType,
			rec.FileURL, rec.Description, rec.UploadedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create record query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Msg("Error executing create record query")
		return 0, fmt.Errorf("error creating record: %w", err)
	}

	return id, nil
}

// GetByID retrieves a record scoped to a school
func (r *RecordRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Record, error) {
	sql, args, err := r.sb.Select(recordColumns...).
		From("records").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get record query: %w", err)
	}

	rec, err := scanRecord(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("error getting record: %w", err)
	}

	return rec, nil
}

// ListByStudent retrieves all records of an enrolled student
func (r *RecordRepository) ListByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Record, error) {
	return r.list(ctx, squirrel.Eq{"school_id": schoolID, "student_id": studentID})
}

// ListByOnboarding retrieves all records staged on an onboarding request
func (r *RecordRepository) ListByOnboarding(ctx context.Context, schoolID, requestID int64) ([]*models.Record, error) {
	return r.list(ctx, squirrel.Eq{"school_id": schoolID, "onboarding_request_id": requestID})
}

func (r *RecordRepository) list(ctx context.Context, where squirrel.Eq) ([]*models.Record, error) {
	sql, args, err := r.sb.Select(recordColumns...).
		From("records").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list records query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying records")
		return nil, fmt.Errorf("error querying records: %w", err)
	}
	defer rows.Close()

	records := []*models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning record row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating record rows: %w", err)
	}

	return records, nil
}

// Delete removes a record scoped to a school
func (r *RecordRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("records").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete record query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRecordNotFound
	}

	return nil
}
