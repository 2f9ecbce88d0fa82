// Package storage persists orders, drivers, and order clusters. It ships a
// SQLite flavor and a Postgres flavor, mirroring the dual-flavor split
// already present in the cache package: cmd/dispatchd picks Postgres when
// DATABASE_URL is set and SQLite otherwise, and cmd/dbtool applies the
// Postgres schema.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// InitSchemaSQLite creates the orders/drivers/clusters tables for a local
// SQLite database.
func InitSchemaSQLite(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id INTEGER PRIMARY KEY,
			creator_id INTEGER NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			address TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL,
			lon REAL NOT NULL,
			lat REAL NOT NULL,
			food_items TEXT NOT NULL,
			drink_items TEXT NOT NULL,
			estimated_prep_seconds INTEGER NOT NULL DEFAULT 0,
			desired_delivery_time DATETIME NOT NULL,
			priority INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id INTEGER PRIMARY KEY,
			user_id INTEGER NOT NULL,
			full_name TEXT NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1,
			status TEXT NOT NULL,
			lon REAL,
			lat REAL,
			current_route_id TEXT,
			estimated_finish_time DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status);`,
		`CREATE TABLE IF NOT EXISTS order_clusters (
			id TEXT PRIMARY KEY,
			time_window DATETIME NOT NULL,
			total_items INTEGER NOT NULL,
			earliest_delivery_time DATETIME NOT NULL,
			status TEXT NOT NULL,
			route_json TEXT NOT NULL,
			relaxed_round INTEGER,
			relaxed_max_hotness_seconds INTEGER,
			relaxed_lateness_tol_seconds INTEGER,
			relaxed_log TEXT,
			created_at DATETIME NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS order_cluster_members (
			cluster_id TEXT NOT NULL,
			order_id INTEGER NOT NULL,
			PRIMARY KEY (cluster_id, order_id)
		);`,
		`CREATE TABLE IF NOT EXISTS matrix_cache (
			origin_key TEXT NOT NULL,
			destination_key TEXT NOT NULL,
			distance_meters REAL NOT NULL,
			duration_seconds REAL NOT NULL,
			PRIMARY KEY (origin_key, destination_key)
		);`,
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon REAL NOT NULL,
			lat REAL NOT NULL
		);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// InitSchemaPostgres creates the same tables against a Postgres database,
// using serial identity columns and JSONB columns where they fit better
// than the SQLite flavor above.
func InitSchemaPostgres(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			creator_id BIGINT NOT NULL,
			customer_name TEXT NOT NULL,
			customer_phone TEXT NOT NULL,
			address TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			city TEXT NOT NULL,
			country TEXT NOT NULL,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL,
			food_items JSONB NOT NULL,
			drink_items JSONB NOT NULL,
			estimated_prep_seconds INTEGER NOT NULL DEFAULT 0,
			desired_delivery_time TIMESTAMPTZ NOT NULL,
			priority BOOLEAN NOT NULL DEFAULT FALSE,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status);`,
		`CREATE TABLE IF NOT EXISTS drivers (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			full_name TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			status TEXT NOT NULL,
			lon DOUBLE PRECISION,
			lat DOUBLE PRECISION,
			current_route_id TEXT,
			estimated_finish_time TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers(status);`,
		`CREATE TABLE IF NOT EXISTS order_clusters (
			id TEXT PRIMARY KEY,
			time_window TIMESTAMPTZ NOT NULL,
			total_items INTEGER NOT NULL,
			earliest_delivery_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL,
			route_json JSONB NOT NULL,
			relaxed_round INTEGER,
			relaxed_max_hotness_seconds INTEGER,
			relaxed_lateness_tol_seconds INTEGER,
			relaxed_log JSONB,
			created_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS order_cluster_members (
			cluster_id TEXT NOT NULL,
			order_id BIGINT NOT NULL,
			PRIMARY KEY (cluster_id, order_id)
		);`,
		`CREATE TABLE IF NOT EXISTS matrix_cache (
			origin_key TEXT NOT NULL,
			destination_key TEXT NOT NULL,
			distance_meters DOUBLE PRECISION NOT NULL,
			duration_seconds DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (origin_key, destination_key)
		);`,
		`CREATE TABLE IF NOT EXISTS geocode_cache (
			address TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		);`,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
