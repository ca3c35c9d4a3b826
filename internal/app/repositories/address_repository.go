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
)

// AddressRepository handles postal address database operations
type AddressRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewAddressRepository creates a new AddressRepository
func NewAddressRepository(db *pgxpool.Pool) *AddressRepository {
	return &AddressRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a new address
func (r *AddressRepository) Create(ctx context.Context, a *models.Address) (int64, error) {
	sql, args, err := r.sb.Insert("addresses").
		Columns("street_address", "city", "state", "postal_code", "country").
		Values(a.StreetAddress, a.City, a.State, a.PostalCode, a.Country).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create address query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error creating address: %w", err)
	}

	return id, nil
}

// GetByID retrieves an address
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	sql, args, err := r.sb.Select("id", "street_address", "city", "state", "postal_code", "country", "created_at", "updated_at").
		From("addresses").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get address query: %w", err)
	}

	a := &models.Address{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&a.ID, &a.StreetAddress, &a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error getting address: %w", err)
	}

	return a, nil
}

// Update replaces the fields of an existing address
func (r *AddressRepository) Update(ctx context.Context, a *models.Address) error {
	sql, args, err := r.sb.Update("addresses").
		SetMap(map[string]interface{}{
			"street_address": a.StreetAddress,
			"city":           a.City,
			"state":          a.State,
			"postal_code":    a.PostalCode,
			"country":        a.Country,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update address query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error updating address: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}

	return nil
}
