package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

// SQLMatrixCache is a Postgres-backed cache of single origin->destination
// matrix pairings.
type SQLMatrixCache struct {
	DB *sql.DB
}

func NewSQLMatrixCache(db *sql.DB) *SQLMatrixCache {
	return &SQLMatrixCache{DB: db}
}

func (s *SQLMatrixCache) Get(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (_ ports.MatrixResult, _ bool, err error) {
	defer obs.Time(ctx, "matrix.cache.Get")(&err)

	if s.DB == nil {
		return ports.MatrixResult{}, false, errors.New("matrix cache: db is nil")
	}

	q := `
	SELECT distance_meters, duration_seconds
    FROM matrix_cache
    WHERE origin_key = $1 AND destination_key = $2;
	`

	var r ports.MatrixResult
	err = s.DB.QueryRowContext(ctx, q, coordKey(origin), coordKey(destination)).Scan(&r.DistanceMeters, &r.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.MatrixResult{}, false, nil
	}
	if err != nil {
		return ports.MatrixResult{}, false, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	return r, true, nil
}

func (s *SQLMatrixCache) Put(
	ctx context.Context,
	origin, destination domain.Coordinates,
	result ports.MatrixResult,
) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	q := `
	INSERT INTO matrix_cache (origin_key, destination_key, distance_meters, duration_seconds)
    VALUES ($1, $2, $3, $4)
	ON CONFLICT (origin_key, destination_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		duration_seconds = EXCLUDED.duration_seconds;
	`

	if _, err := s.DB.ExecContext(ctx, q, coordKey(origin), coordKey(destination), result.DistanceMeters, result.DurationSeconds); err != nil {
		return fmt.Errorf("insert matrix cache: %w", err)
	}

	return nil
}
