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

// ParentRepository handles parent database operations
type ParentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewParentRepository creates a new ParentRepository
func NewParentRepository(db *pgxpool.Pool) *ParentRepository {
	return &ParentRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var parentColumns = []string{
	"id", "school_id", "first_name", "last_name", "parent_type",
	"email", "phone_number", "address_id", "created_at", "updated_at",
}

func scanParent(row pgx.Row) (*models.Parent, error) {
	p := &models.Parent{}
	err := row.Scan(
		&p.ID, &p.SchoolID, &p.FirstName, &p.LastName, &p.ParentType,
		&p.Email, &p.PhoneNumber, &p.AddressID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create creates a new parent within a school
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent) (int64, error) {
	sql, args, err := r.sb.Insert("parents").
		Columns("school_id", "first_name", "last_name", "parent_type", "email", "phone_number", "address_id").
		Values(parent.SchoolID, parent.FirstName, parent.LastName, parent.ParentType,
			parent.Email, parent.PhoneNumber, parent.AddressID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create parent query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrParentAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create parent query")
		return 0, fmt.Errorf("error creating parent: %w", err)
	}

	return id, nil
}

// GetByID retrieves a parent scoped to a school
func (r *ParentRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Parent, error) {
	sql, args, err := r.sb.Select(parentColumns...).
		From("parents").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get parent query: %w", err)
	}

	parent, err := scanParent(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrParentNotFound
		}
		return nil, fmt.Errorf("error getting parent: %w", err)
	}

	return parent, nil
}

// GetAll retrieves all parents of a school ordered by last name
func (r *ParentRepository) GetAll(ctx context.Context, schoolID int64) ([]*models.Parent, error) {
	sql, args, err := r.sb.Select(parentColumns...).
		From("parents").
		Where(squirrel.Eq{"school_id": schoolID}).
		OrderBy("last_name ASC", "first_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all parents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying parents: %w", err)
	}
	defer rows.Close()

	parents := []*models.Parent{}
	for rows.Next() {
		parent, err := scanParent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning parent row: %w", err)
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent rows: %w", err)
	}

	return parents, nil
}

// GetByStudent retrieves the parents linked to a student
func (r *ParentRepository) GetByStudent(ctx context.Context, schoolID, studentID int64) ([]*models.Parent, error) {
	cols := make([]string, len(parentColumns))
	for i, c := range parentColumns {
		cols[i] = "p." + c
	}

	sql, args, err := r.sb.Select(cols...).
		From("parents p").
		Join("student_parents sp ON sp.parent_id = p.id").
		Where(squirrel.Eq{"sp.student_id": studentID, "p.school_id": schoolID}).
		OrderBy("p.id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get parents by student query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying student parents: %w", err)
	}
	defer rows.Close()

	parents := []*models.Parent{}
	for rows.Next() {
		parent, err := scanParent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning parent row: %w", err)
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parent rows: %w", err)
	}

	return parents, nil
}

// ExistAll reports whether every id belongs to a parent of the school
func (r *ParentRepository) ExistAll(ctx context.Context, schoolID int64, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}

	sql, args, err := r.sb.Select("COUNT(*)").
		From("parents").
		Where(squirrel.Eq{"school_id": schoolID, "id": ids}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build parents exist query: %w", err)
	}

	var count int
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error counting parents: %w", err)
	}

	return count == len(ids), nil
}

// Update updates an existing parent scoped to a school
func (r *ParentRepository) Update(ctx context.Context, parent *models.Parent) error {
	sql, args, err := r.sb.Update("parents").
		SetMap(map[string]interface{}{
			"first_name":   parent.FirstName,
			"last_name":    parent.LastName,
			"parent_type":  parent.ParentType,
			"email":        parent.Email,
			"phone_number": parent.PhoneNumber,
			"address_id":   parent.AddressID,
			"updated_at":   squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": parent.ID, "school_id": parent.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update parent query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrParentAlreadyExists
		}
		return fmt.Errorf("error updating parent: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrParentNotFound
	}

	return nil
}

// Delete deletes a parent scoped to a school. Join rows to students go
// with it via ON DELETE CASCADE.
func (r *ParentRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("parents").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete parent query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting parent: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrParentNotFound
	}

	return nil
}
