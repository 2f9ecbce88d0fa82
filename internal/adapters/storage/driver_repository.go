package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"delivery-route-service/internal/domain"
)

const driverColumns = `
	id, user_id, full_name, is_active, status,
	lon, lat, current_route_id, estimated_finish_time, created_at, updated_at
`

func scanDriver(row interface{ Scan(...any) error }) (domain.Driver, error) {
	var (
		d               domain.Driver
		isActive        bool
		status          string
		lon, lat        sql.NullFloat64
		currentRouteID  sql.NullString
		estFinish       sql.NullTime
	)

	if err := row.Scan(
		&d.ID, &d.UserID, &d.FullName, &isActive, &status,
		&lon, &lat, &currentRouteID, &estFinish, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return domain.Driver{}, err
	}

	d.IsActive = isActive
	d.Status = domain.DriverStatus(status)

	if lon.Valid && lat.Valid {
		d.Coords = &domain.Coordinates{Lon: lon.Float64, Lat: lat.Float64}
	}
	if estFinish.Valid {
		t := estFinish.Time
		d.EstimatedFinishTime = &t
	}
	// currentRouteID is persisted for audit/display; the route itself is
	// reloaded from order_clusters by the caller when needed, so it is not
	// populated here.
	_ = currentRouteID

	return d, nil
}

// SqliteDriverRepository implements ports.DriverRepository against SQLite.
type SqliteDriverRepository struct{ DB *sql.DB }

func NewSqliteDriverRepository(db *sql.DB) *SqliteDriverRepository {
	return &SqliteDriverRepository{DB: db}
}

func (r *SqliteDriverRepository) FetchAvailableWithLocation(
	ctx context.Context,
	now time.Time,
	etaThreshold time.Duration,
) ([]domain.Driver, error) {
	if r.DB == nil {
		return nil, errors.New("driver repository: DB is nil")
	}

	q := fmt.Sprintf(`
	SELECT %s FROM drivers
	WHERE is_active = 1
		AND lon IS NOT NULL AND lat IS NOT NULL
		AND (
			status = ?
			OR (status = ? AND estimated_finish_time IS NOT NULL AND estimated_finish_time <= ?)
		)
	ORDER BY id;
	`, driverColumns)

	deadline := now.Add(etaThreshold)
	rows, err := r.DB.QueryContext(ctx, q, string(domain.DriverAvailable), string(domain.DriverDelivering), deadline)
	if err != nil {
		return nil, fmt.Errorf("fetch available drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch available drivers: scan row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *SqliteDriverRepository) UpdateStatus(ctx context.Context, driverIDs []int64, newStatus domain.DriverStatus) error {
	if r.DB == nil {
		return errors.New("driver repository: DB is nil")
	}
	if len(driverIDs) == 0 {
		return nil
	}

	ph := make([]string, len(driverIDs))
	args := make([]any, 0, len(driverIDs)+1)
	args = append(args, string(newStatus))
	for i, id := range driverIDs {
		ph[i] = "?"
		args = append(args, id)
	}

	q := fmt.Sprintf(`UPDATE drivers SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (%s);`, strings.Join(ph, ","))
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update driver status: %w", err)
	}
	return nil
}

// PostgresDriverRepository implements ports.DriverRepository against Postgres.
type PostgresDriverRepository struct{ DB *sql.DB }

func NewPostgresDriverRepository(db *sql.DB) *PostgresDriverRepository {
	return &PostgresDriverRepository{DB: db}
}

func (r *PostgresDriverRepository) FetchAvailableWithLocation(
	ctx context.Context,
	now time.Time,
	etaThreshold time.Duration,
) ([]domain.Driver, error) {
	if r.DB == nil {
		return nil, errors.New("driver repository: DB is nil")
	}

	q := fmt.Sprintf(`
	SELECT %s FROM drivers
	WHERE is_active = TRUE
		AND lon IS NOT NULL AND lat IS NOT NULL
		AND (
			status = $1
			OR (status = $2 AND estimated_finish_time IS NOT NULL AND estimated_finish_time <= $3)
		)
	ORDER BY id;
	`, driverColumns)

	deadline := now.Add(etaThreshold)
	rows, err := r.DB.QueryContext(ctx, q, string(domain.DriverAvailable), string(domain.DriverDelivering), deadline)
	if err != nil {
		return nil, fmt.Errorf("fetch available drivers: %w", err)
	}
	defer rows.Close()

	var out []domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch available drivers: scan row: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresDriverRepository) UpdateStatus(ctx context.Context, driverIDs []int64, newStatus domain.DriverStatus) error {
	if r.DB == nil {
		return errors.New("driver repository: DB is nil")
	}
	if len(driverIDs) == 0 {
		return nil
	}

	q := `UPDATE drivers SET status = $1, updated_at = now() WHERE id = ANY($2::bigint[]);`
	if _, err := r.DB.ExecContext(ctx, q, string(newStatus), int64SliceToPgArray(driverIDs)); err != nil {
		return fmt.Errorf("update driver status: %w", err)
	}
	return nil
}
