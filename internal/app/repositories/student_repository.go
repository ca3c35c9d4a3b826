package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skulz/skubackend/internal/app/models"
	"github.com/skulz/skubackend/internal/db"
	"github.com/skulz/skubackend/internal/pkg/apperrors"
	"github.com/skulz/skubackend/internal/pkg/dberrors"
	"github.com/skulz/skubackend/internal/pkg/helpers"
	"github.com/skulz/skubackend/internal/pkg/logger"
)

// dbtx is the subset of query methods shared by *pgxpool.Pool and pgx.Tx,
// letting the write helpers run either standalone or inside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StudentFilter narrows the student list query
type StudentFilter struct {
	GradeID  *int64
	BusID    *int64
	IsActive *bool
	Search   *string
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// StudentRepository handles student database operations
type StudentRepository struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var studentColumns = []string{
	"id", "school_id", "first_name", "last_name", "email", "phone_number",
	"date_of_birth", "enrollment_date", "photo_url", "grade_id", "address_id",
	"bus_id", "is_active", "created_at", "updated_at",
}

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.SchoolID, &s.FirstName, &s.LastName, &s.Email, &s.PhoneNumber,
		&s.DateOfBirth, &s.EnrollmentDate, &s.PhotoURL, &s.GradeID, &s.AddressID,
		&s.BusID, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// InsertTx inserts a student row using the given queryer and returns its id.
// Exported so the onboarding approval transaction can reuse it.
func (r *StudentRepository) InsertTx(ctx context.Context, q dbtx, student *models.Student) (int64, error) {
	sql, args, err := r.sb.Insert("students").
		Columns("school_id", "first_name", "last_name", "email", "phone_number",
			"date_of_birth", "enrollment_date", "photo_url", "grade_id", "address_id", "bus_id", "is_active").
		Values(student.SchoolID, student.FirstName, student.LastName, student.Email, student.PhoneNumber,
			student.DateOfBirth, student.EnrollmentDate, student.PhotoURL, student.GradeID,
			student.AddressID, student.BusID, student.IsActive).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert student query: %w", err)
	}

	var id int64
	if err := q.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrStudentAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing insert student query")
		return 0, fmt.Errorf("error inserting student: %w", err)
	}

	return id, nil
}

// ReplaceParentsTx rewrites the student's parent set
func (r *StudentRepository) ReplaceParentsTx(ctx context.Context, q dbtx, studentID int64, parentIDs []int64) error {
	delSql, delArgs, err := r.sb.Delete("student_parents").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear student parents query: %w", err)
	}
	if _, err := q.Exec(ctx, delSql, delArgs...); err != nil {
		return fmt.Errorf("error clearing student parents: %w", err)
	}

	if len(parentIDs) == 0 {
		return nil
	}

	ins := r.sb.Insert("student_parents").Columns("student_id", "parent_id")
	for _, pid := range parentIDs {
		ins = ins.Values(studentID, pid)
	}
	insSql, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert student parents query: %w", err)
	}
	if _, err := q.Exec(ctx, insSql, insArgs...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrParentNotFound
		}
		return fmt.Errorf("error inserting student parents: %w", err)
	}

	return nil
}

// ReplaceSubjectsTx rewrites the student's subject set
func (r *StudentRepository) ReplaceSubjectsTx(ctx context.Context, q dbtx, studentID int64, subjectIDs []int64) error {
	delSql, delArgs, err := r.sb.Delete("student_subjects").
		Where(squirrel.Eq{"student_id": studentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build clear student subjects query: %w", err)
	}
	if _, err := q.Exec(ctx, delSql, delArgs...); err != nil {
		return fmt.Errorf("error clearing student subjects: %w", err)
	}

	if len(subjectIDs) == 0 {
		return nil
	}

	ins := r.sb.Insert("student_subjects").Columns("student_id", "subject_id")
	for _, sid := range subjectIDs {
		ins = ins.Values(studentID, sid)
	}
	insSql, insArgs, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert student subjects query: %w", err)
	}
	if _, err := q.Exec(ctx, insSql, insArgs...); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrSubjectNotFound
		}
		return fmt.Errorf("error inserting student subjects: %w", err)
	}

	return nil
}

// Create enrolls a student directly, writing the row and both relation
// sets in one transaction
func (r *StudentRepository) Create(ctx context.Context, student *models.Student, parentIDs, subjectIDs []int64) (int64, error) {
	var id int64
	err := r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		id, err = r.InsertTx(ctx, tx, student)
		if err != nil {
			return err
		}
		if err := r.ReplaceParentsTx(ctx, tx, id, parentIDs); err != nil {
			return err
		}
		return r.ReplaceSubjectsTx(ctx, tx, id, subjectIDs)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves a student scoped to a school, without relations
func (r *StudentRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Student, error) {
	sql, args, err := r.sb.Select(studentColumns...).
		From("students").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	student, err := scanStudent(r.db.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error getting student: %w", err)
	}

	return student, nil
}

// GetSubjectIDs returns the ids of the student's subject set
func (r *StudentRepository) GetSubjectIDs(ctx context.Context, studentID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("subject_id").
		From("student_subjects").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("subject_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student subjects query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student subjects: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning subject id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject ids: %w", err)
	}

	return ids, nil
}

// GetParentIDs returns the ids of the student's parent set
func (r *StudentRepository) GetParentIDs(ctx context.Context, studentID int64) ([]int64, error) {
	sql, args, err := r.sb.Select("parent_id").
		From("student_parents").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("parent_id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get student parents query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student parents: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning parent id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent ids: %w", err)
	}

	return ids, nil
}

// List retrieves a filtered, paginated page of students and the total count
func (r *StudentRepository) List(ctx context.Context, schoolID int64, filter StudentFilter) ([]*models.Student, int64, error) {
	base := squirrel.And{squirrel.Eq{"school_id": schoolID}}
	if filter.GradeID != nil {
		base = append(base, squirrel.Eq{"grade_id": *filter.GradeID})
	}
	if filter.BusID != nil {
		base = append(base, squirrel.Eq{"bus_id": *filter.BusID})
	}
	if filter.IsActive != nil {
		base = append(base, squirrel.Eq{"is_active": *filter.IsActive})
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		base = append(base, squirrel.Or{
			squirrel.ILike{"first_name": pattern},
			squirrel.ILike{"last_name": pattern},
			squirrel.ILike{"email": pattern},
		})
	}

	countSql, countArgs, err := r.sb.Select("COUNT(*)").
		From("students").
		Where(base).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countSql, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	// Whitelisted sort columns only
	allowedSorts := map[string]string{
		"lastName":       "last_name",
		"firstName":      "first_name",
		"email":          "email",
		"enrollmentDate": "enrollment_date",
		"createdAt":      "created_at",
	}
	sortCol, ok := allowedSorts[filter.SortBy]
	if !ok {
		sortCol = "last_name"
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.Size)

	listSql, listArgs, err := r.sb.Select(studentColumns...).
		From("students").
		Where(base).
		OrderBy(sortCol + " " + direction).
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	rows, err := r.db.Pool.Query(ctx, listSql, listArgs...)
	if err != nil {
		logger.Error().Err(err).Int64("schoolID", schoolID).Msg("Error querying students")
		return nil, 0, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []*models.Student{}
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating student rows: %w", err)
	}

	return students, total, nil
}

// Update rewrites the student row and both relation sets in one transaction
func (r *StudentRepository) Update(ctx context.Context, student *models.Student, parentIDs, subjectIDs []int64) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.sb.Update("students").
			SetMap(map[string]interface{}{
				"first_name":    student.FirstName,
				"last_name":     student.LastName,
				"email":         student.Email,
				"phone_number":  student.PhoneNumber,
				"date_of_birth": student.DateOfBirth,
				"photo_url":     student.PhotoURL,
				"grade_id":      student.GradeID,
				"address_id":    student.AddressID,
				"bus_id":        student.BusID,
				"is_active":     student.IsActive,
				"updated_at":    squirrel.Expr("NOW()"),
			}).
			Where(squirrel.Eq{"id": student.ID, "school_id": student.SchoolID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update student query: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, sql, args...)
		if err != nil {
			if dberrors.IsUniqueViolation(err) {
				return apperrors.ErrStudentAlreadyExists
			}
			return fmt.Errorf("error updating student: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrStudentNotFound
		}

		if err := r.ReplaceParentsTx(ctx, tx, student.ID, parentIDs); err != nil {
			return err
		}
		return r.ReplaceSubjectsTx(ctx, tx, student.ID, subjectIDs)
	})
}

// SetPhotoURL stores the student's photo location
func (r *StudentRepository) SetPhotoURL(ctx context.Context, schoolID, id int64, photoURL *string) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"photo_url":  photoURL,
			"updated_at": squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build set student photo query: %w", err)
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error setting student photo: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// Delete removes a student scoped to a school. Attendance, records and
// join rows cascade at the schema level.
func (r *StudentRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("students").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	cmdTag, err := r.db.Pool.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}

	return nil
}

// EmailExists checks for an enrolled student with the email in the school
func (r *StudentRepository) EmailExists(ctx context.Context, schoolID int64, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("students").
		Where(squirrel.Eq{"school_id": schoolID, "email": email}).
		Prefix("SELECT EXISTS (").Suffix(")").
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build student email exists query: %w", err)
	}

	var exists bool
	err = r.db.Pool.QueryRow(ctx, sql, args...).Scan(&exists)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("error checking student email: %w", err)
	}

	return exists, nil
}
