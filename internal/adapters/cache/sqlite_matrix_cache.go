package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ports"
)

// SqliteMatrixCache is a SQLite-backed cache of single origin->destination
// matrix pairings.
type SqliteMatrixCache struct {
	DB *sql.DB
}

func NewSqliteMatrixCache(db *sql.DB) *SqliteMatrixCache {
	return &SqliteMatrixCache{DB: db}
}

func (s *SqliteMatrixCache) Get(
	ctx context.Context,
	origin, destination domain.Coordinates,
) (ports.MatrixResult, bool, error) {
	if s.DB == nil {
		return ports.MatrixResult{}, false, errors.New("matrix cache: db is nil")
	}

	q := `
	SELECT distance_meters, duration_seconds
    FROM matrix_cache
    WHERE origin_key = ? AND destination_key = ?;
	`

	var r ports.MatrixResult
	err := s.DB.QueryRowContext(ctx, q, coordKey(origin), coordKey(destination)).Scan(&r.DistanceMeters, &r.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.MatrixResult{}, false, nil
	}
	if err != nil {
		return ports.MatrixResult{}, false, fmt.Errorf("get matrix cache: query matrix_cache table: %w", err)
	}

	return r, true, nil
}

func (s *SqliteMatrixCache) Put(
	ctx context.Context,
	origin, destination domain.Coordinates,
	result ports.MatrixResult,
) error {
	if s.DB == nil {
		return errors.New("matrix cache: db is nil")
	}

	q := `
	INSERT OR REPLACE INTO matrix_cache (origin_key, destination_key, distance_meters, duration_seconds)
    VALUES (?, ?, ?, ?);
	`

	if _, err := s.DB.ExecContext(ctx, q, coordKey(origin), coordKey(destination), result.DistanceMeters, result.DurationSeconds); err != nil {
		return fmt.Errorf("insert matrix cache: %w", err)
	}

	return nil
}
