package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/dberrors"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// AttendanceRepository handles attendance database operations
type AttendanceRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert writes one attendance mark. Marking the same student and date
// again overwrites the previous status, keeping the operation idempotent.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *models.Attendance) (int64, error) {
	sql, args, err := r.sb.Insert("attendance").
		Columns("school_id", "student_id", "date", "status", "remarks", "recorded_by").
		Values(a.SchoolID, a.StudentID, a.Date, a.Status, a.Remarks, a.RecordedBy).
		Suffix(`ON CONFLICT (school_id, student_id, date) DO UPDATE SET
			status = EXCLUDED.status,
			remarks = EXCLUDED.remarks,
			recorded_by = EXCLUDED.recorded_by
			RETURNING id`).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", a.StudentID).Msg("Error upserting attendance")
		return 0, fmt.Errorf("error upserting attendance: %w", err)
	}

	return id, nil
}

// BulkUpsert writes many marks for one date in a single statement
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, entries []*models.Attendance) error {
	if len(entries) == 0 {
		return nil
	}

	ins := r.sb.Insert("attendance").
		Columns("school_id", "student_id", "date", "status", "remarks", "recorded_by")
	for _, a := range entries {
		ins = ins.Values(a.SchoolID, a.StudentID, a.Date, a.Status, a.Remarks, a.RecordedBy)
	}
	sql, args, err := ins.Suffix(`ON CONFLICT (school_id, student_id, date) DO UPDATE SET
		status = EXCLUDED.status,
		remarks = EXCLUDED.remarks,
		recorded_by = EXCLUDED.recorded_by`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build bulk upsert attendance query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int("entries", len(entries)).Msg("Error bulk upserting attendance")
		return fmt.Errorf("error bulk upserting attendance: %w", err)
	}

	return nil
}

var attendanceSelectColumns = []string{
	"a.id", "a.school_id", "a.student_id", "a.date", "a.status", "a.remarks", "a.recorded_by", "a.created_at",
	"s.first_name", "s.last_name",
}

// ListByDate retrieves every mark of a school for one date, with the
// student names attached
func (r *AttendanceRepository) ListByDate(ctx context.Context, schoolID int64, date time.Time) ([]*models.Attendance, error) {
	sql, args, err := r.sb.Select(attendanceSelectColumns...).
		From("attendance a").
		Join("students s ON s.id = a.student_id").
		Where(squirrel.Eq{"a.school_id": schoolID, "a.date": date}).
		OrderBy("s.last_name ASC", "s.first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendance by date query: %w", err)
	}

	return r.queryMarks(ctx, sql, args)
}

// ListByStudent retrieves a student's marks, newest first
func (r *AttendanceRepository) ListByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Attendance, error) {
	sql, args, err := r.sb.Select(attendanceSelectColumns...).
		From("attendance a").
		Join("students s ON s.id = a.student_id").
		Where(squirrel.Eq{"a.school_id": schoolID, "a.student_id": studentID}).
		OrderBy("a.date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attendance by student query: %w", err)
	}

	return r.queryMarks(ctx, sql, args)
}

func (r *AttendanceRepository) queryMarks(ctx context.Context, sql string, args []interface{}) ([]*models.Attendance, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error querying attendance")
		return nil, fmt.Errorf("error querying attendance: %w", err)
	}
	defer rows.Close()

	marks := []*models.Attendance{}
	for rows.Next() {
		a := &models.Attendance{Student: &models.Student{}}
		err := rows.Scan(
			&a.ID, &a.SchoolID, &a.StudentID, &a.Date, &a.Status, &a.Remarks, &a.RecordedBy, &a.CreatedAt,
			&a.Student.FirstName, &a.Student.LastName,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		a.Student.ID = a.StudentID
		marks = append(marks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance rows: %w", err)
	}

	return marks, nil
}

// Summary returns the per-status counts for one date
func (r *AttendanceRepository) Summary(ctx context.Context, schoolID int64, date time.Time) (*models.AttendanceSummary, error) {
	sql, args, err := r.sb.Select(
		"COUNT(*)",
		"COUNT(*) FILTER (WHERE status = 'present')",
		"COUNT(*) FILTER (WHERE status = 'absent')",
		"COUNT(*) FILTER (WHERE status = 'late')",
		"COUNT(*) FILTER (WHERE status = 'excused')").
		From("attendance").
		Where(squirrel.Eq{"school_id": schoolID, "date": date}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance summary query: %w", err)
	}

	summary := &models.AttendanceSummary{Date: date.Format("2006-01-02")}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&summary.Total, &summary.Present, &summary.Absent, &summary.Late, &summary.Excused,
	)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error querying attendance summary")
		return nil, fmt.Errorf("error querying attendance summary: %w", err)
	}

	return summary, nil
}
