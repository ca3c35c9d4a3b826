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

// GradeRepository handles grade database operations
type GradeRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewGradeRepository creates a new GradeRepository
func NewGradeRepository(db *pgxpool.Pool) *GradeRepository {
	return &GradeRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new grade within a school
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) (int64, error) {
	sql, args, err := r.sb.Insert("grades").
		Columns("school_id", "grade_name", "description").
		Values(grade.SchoolID, grade.GradeName, grade.Description).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create grade query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrGradeAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create grade query")
		return 0, fmt.Errorf("error creating grade: %w", err)
	}

	return id, nil
}

// GetByID retrieves a grade scoped to a school
func (r *GradeRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Grade, error) {
	sql, args, err := r.sb.Select("id", "school_id", "grade_name", "description", "created_at").
		From("grades").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get grade query: %w", err)
	}

	g := &models.Grade{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(&g.ID, &g.SchoolID, &g.GradeName, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGradeNotFound
		}
		return nil, fmt.Errorf("error getting grade: %w", err)
	}

	return g, nil
}

// GetAll retrieves all grades of a school ordered by name
func (r *GradeRepository) GetAll(ctx context.Context, schoolID int64) ([]*models.Grade, error) {
	sql, args, err := r.sb.Select("id", "school_id", "grade_name", "description", "created_at").
		From("grades").
		Where(squirrel.Eq{"school_id": schoolID}).
		OrderBy("grade_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all grades query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying grades: %w", err)
	}
	defer rows.Close()

	grades := []*models.Grade{}
	for rows.Next() {
		g := &models.Grade{}
		if err := rows.Scan(&g.ID, &g.SchoolID, &g.GradeName, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning grade row: %w", err)
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating grade rows: %w", err)
	}

	return grades, nil
}

// Update updates an existing grade scoped to a school
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	sql, args, err := r.sb.Update("grades").
		SetMap(map[string]interface{}{
			"grade_name":  grade.GradeName,
			"description": grade.Description,
		}).
		Where(squirrel.Eq{"id": grade.ID, "school_id": grade.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update grade query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrGradeAlreadyExists
		}
		return fmt.Errorf("error updating grade: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGradeNotFound
	}

	return nil
}

// Delete deletes a grade scoped to a school. Students keep their row and
// lose the grade reference via ON DELETE SET NULL.
func (r *GradeRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("grades").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete grade query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting grade: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrGradeNotFound
	}

	return nil
}
