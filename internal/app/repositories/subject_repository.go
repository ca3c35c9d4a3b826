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

// SubjectRepository handles subject database operations
type SubjectRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewSubjectRepository creates a new SubjectRepository
func NewSubjectRepository(db *pgxpool.Pool) *SubjectRepository {
	return &SubjectRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new subject within a school
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) (int64, error) {
	sql, args, err := r.sb.Insert("subjects").
		Columns("school_id", "subject_name", "description").
		Values(subject.SchoolID, subject.SubjectName, subject.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create subject query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrSubjectAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create subject query")
		return 0, fmt.Errorf("error creating subject: %w", err)
	}

	return id, nil
}

// GetByID retrieves a subject scoped to a school
func (r *SubjectRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "school_id", "subject_name", "description", "created_at").
		From("subjects").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subject query: %w", err)
	}

	s := &models.Subject{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&s.ID, &s.SchoolID, &s.SubjectName, &s.Description, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("error getting subject: %w", err)
	}

	return s, nil
}

// GetAll retrieves all subjects of a school ordered by name
func (r *SubjectRepository) GetAll(ctx context.Context, schoolID int64) ([]*models.Subject, error) {
	sql, args, err := r.sb.Select("id", "school_id", "subject_name", "description", "created_at").
		From("subjects").
		Where(squirrel.Eq{"school_id": schoolID}).
		OrderBy("subject_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all subjects query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		s := &models.Subject{}
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.SubjectName, &s.Description, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}

	return subjects, nil
}

// GetByStudent retrieves the subjects linked to a student
func (r *SubjectRepository) GetByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Subject, error) {
	sql, args, err := r.sb.Select("s.id", "s.school_id", "s.subject_name", "s.description", "s.created_at").
		From("subjects s").
		Join("student_subjects ss ON ss.subject_id = s.id").
		Where(squirrel.Eq{"ss.student_id": studentID, "s.school_id": schoolID}).
		OrderBy("s.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get subjects by student query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student subjects: %w", err)
	}
	defer rows.Close()

	subjects := []*models.Subject{}
	for rows.Next() {
		s := &models.Subject{}
		if err := rows.Scan(&s.ID, &s.SchoolID, &s.SubjectName, &s.Description, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning subject row: %w", err)
		}
		subjects = append(subjects, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subject rows: %w", err)
	}

	return subjects, nil
}

// ExistAll reports whether every id belongs to a subject of the school
func (r *SubjectRepository) ExistAll(ctx context.Context, schoolID int64, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("subjects").
		Where(squirrel.Eq{"school_id": schoolID, "id": ids}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build subjects exist query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error counting subjects: %w", err)
	}

	return count == len(ids), nil
}

// Update updates an existing subject scoped to a school
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	sql, args, err := r.sb.Update("subjects").
		SetMap(map[string]interface{}{
			"subject_name": subject.SubjectName,
			"description":  subject.Description,
		}).
		Where(squirrel.Eq{"id": subject.ID, "school_id": subject.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update subject query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrSubjectAlreadyExists
		}
		return fmt.Errorf("error updating subject: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}

// Delete deletes a subject scoped to a school
func (r *SubjectRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("subjects").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete subject query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting subject: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSubjectNotFound
	}

	return nil
}
