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

// RouteRepository handles bus route database operations
type RouteRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewRouteRepository creates a new RouteRepository
func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create creates a new route within a school
func (r *RouteRepository) Create(ctx context.Context, route *models.Route) (int64, error) {
	sql, args, err := r.sb.Insert("routes").
		Columns("school_id", "route_name", "start_location", "end_location", "stops").
		Values(route.SchoolID, route.RouteName, route.StartLocation, route.EndLocation, route.Stops).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create route query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrRouteAlreadyExists
		}
		logger.Error().Err(err).Msg("Error executing create route query")
		return 0, fmt.Errorf("error creating route: %w", err)
	}

	return id, nil
}

// GetByID retrieves a route scoped to a school
func (r *RouteRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Route, error) {
	sql, args, err := r.sb.Select("id", "school_id", "route_name", "start_location", "end_location", "stops", "created_at").
		From("routes").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get route query: %w", err)
	}

	route := &models.Route{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&route.ID, &route.SchoolID, &route.RouteName, &route.StartLocation,
		&route.EndLocation, &route.Stops, &route.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRouteNotFound
		}
		return nil, fmt.Errorf("error getting route: %w", err)
	}

	return route, nil
}

// GetAll retrieves all routes of a school ordered by name
func (r *RouteRepository) GetAll(ctx context.Context, schoolID int64) ([]*models.Route, error) {
	sql, args, err := r.sb.Select("id", "school_id", "route_name", "start_location", "end_location", "stops", "created_at").
		From("routes").
		Where(squirrel.Eq{"school_id": schoolID}).
		OrderBy("route_name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all routes query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying routes: %w", err)
	}
	defer rows.Close()

	routes := []*models.Route{}
	for rows.Next() {
		route := &models.Route{}
		err := rows.Scan(
			&route.ID, &route.SchoolID, &route.RouteName, &route.StartLocation,
			&route.EndLocation, &route.Stops, &route.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning route row: %w", err)
		}
		routes = append(routes, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route rows: %w", err)
	}

	return routes, nil
}

// Update updates an existing route scoped to a school
func (r *RouteRepository) Update(ctx context.Context, route *models.Route) error {
	sql, args, err := r.sb.Update("routes").
		SetMap(map[string]interface{}{
			"route_name":     route.RouteName,
			"start_location": route.StartLocation,
			"end_location":   route.EndLocation,
			"stops":          route.Stops,
		}).
		Where(squirrel.Eq{"id": route.ID, "school_id": route.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update route query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrRouteAlreadyExists
		}
		return fmt.Errorf("error updating route: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRouteNotFound
	}

	return nil
}

// Delete deletes a route scoped to a school. The buses foreign key is
// RESTRICT, so a route still referenced by buses refuses deletion.
func (r *RouteRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("routes").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete route query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrRouteInUse
		}
		return fmt.Errorf("error deleting route: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrRouteNotFound
	}

	return nil
}
