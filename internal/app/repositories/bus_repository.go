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

// BusRepository handles bus database operations
type BusRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewBusRepository creates a new BusRepository
func NewBusRepository(db *pgxpool.Pool) *BusRepository {
	return &BusRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var busSelectColumns = []string{
	"b.id", "b.school_id", "b.bus_number", "b.capacity", "b.route_id",
	"b.driver_name", "b.driver_phone", "b.created_at",
	"r.id", "r.school_id", "r.route_name", "r.start_location", "r.end_location", "r.stops", "r.created_at",
}

func scanBusWithRoute(row pgx.Row) (*models.Bus, error) {
	bus := &models.Bus{Route: &models.Route{}}
	err := row.Scan(
		&bus.ID, &bus.SchoolID, &bus.BusNumber, &bus.Capacity, &bus.RouteID,
		&bus.DriverName, &bus.DriverPhone, &bus.CreatedAt,
		&bus.Route.ID, &bus.Route.SchoolID, &bus.Route.RouteName, &bus.Route.StartLocation,
		&bus.Route.EndLocation, &bus.Route.Stops, &bus.Route.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// Create creates a new bus within a school
func (r *BusRepository) Create(ctx context.Context, bus *models.Bus) (int64, error) {
	sql, args, err := r.sb.Insert("buses").
		Columns("school_id", "bus_number", "capacity", "route_id", "driver_name", "driver_phone").
		Values(bus.SchoolID, bus.BusNumber, bus.Capacity, bus.RouteID, bus.DriverName, bus.DriverPhone).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build create bus query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return 0, apperrors.ErrBusAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return 0, apperrors.ErrRouteNotFound
		}
		logger.Error().Err(err).Msg("Error executing create bus query")
		return 0, fmt.Errorf("error creating bus: %w", err)
	}

	return id, nil
}

// GetByID retrieves a bus and its route, scoped to a school
func (r *BusRepository) GetByID(ctx context.Context, schoolID, id int64) (*models.Bus, error) {
	sql, args, err := r.sb.Select(busSelectColumns...).
		From("buses b").
		Join("routes r ON r.id = b.route_id").
		Where(squirrel.Eq{"b.id": id, "b.school_id": schoolID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get bus query: %w", err)
	}

	bus, err := scanBusWithRoute(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBusNotFound
		}
		return nil, fmt.Errorf("error getting bus: %w", err)
	}

	return bus, nil
}

// GetAll retrieves all buses of a school with their routes
func (r *BusRepository) GetAll(ctx context.Context, schoolID int64) ([]*models.Bus, error) {
	sql, args, err := r.sb.Select(busSelectColumns...).
		From("buses b").
		Join("routes r ON r.id = b.route_id").
		Where(squirrel.Eq{"b.school_id": schoolID}).
		OrderBy("b.bus_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get all buses query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying buses: %w", err)
	}
	defer rows.Close()

	buses := []*models.Bus{}
	for rows.Next() {
		bus, err := scanBusWithRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning bus row: %w", err)
		}
		buses = append(buses, bus)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bus rows: %w", err)
	}

	return buses, nil
}

// Update updates an existing bus scoped to a school
func (r *BusRepository) Update(ctx context.Context, bus *models.Bus) error {
	sql, args, err := r.sb.Update("buses").
		SetMap(map[string]interface{}{
			"bus_number":   bus.BusNumber,
			"capacity":     bus.Capacity,
			"route_id":     bus.RouteID,
			"driver_name":  bus.DriverName,
			"driver_phone": bus.DriverPhone,
		}).
		Where(squirrel.Eq{"id": bus.ID, "school_id": bus.SchoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update bus query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrBusAlreadyExists
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrRouteNotFound
		}
		return fmt.Errorf("error updating bus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrBusNotFound
	}

	return nil
}

// Delete deletes a bus scoped to a school. Students referencing the bus
// lose the assignment via ON DELETE SET NULL.
func (r *BusRepository) Delete(ctx context.Context, schoolID, id int64) error {
	sql, args, err := r.sb.Delete("buses").
		Where(squirrel.Eq{"id": id, "school_id": schoolID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete bus query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error deleting bus: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrBusNotFound
	}

	return nil
}
