package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"delivery-route-service/internal/domain"
)

func marshalRelaxed(r *domain.RelaxedConstraints) (round, hotness, lateness sql.NullInt64, logJSON sql.NullString, err error) {
	if r == nil {
		return
	}
	round = sql.NullInt64{Int64: int64(r.Round), Valid: true}
	hotness = sql.NullInt64{Int64: int64(r.MaxHotness.Seconds()), Valid: true}
	lateness = sql.NullInt64{Int64: int64(r.LatenessTol.Seconds()), Valid: true}

	b, marshalErr := json.Marshal(r.Log)
	if marshalErr != nil {
		err = fmt.Errorf("marshal relaxation log: %w", marshalErr)
		return
	}
	logJSON = sql.NullString{String: string(b), Valid: true}
	return
}

// SqliteClusterRepository implements ports.ClusterRepository against SQLite.
type SqliteClusterRepository struct{ DB *sql.DB }

func NewSqliteClusterRepository(db *sql.DB) *SqliteClusterRepository {
	return &SqliteClusterRepository{DB: db}
}

func (r *SqliteClusterRepository) CreateCluster(ctx context.Context, cluster domain.OrderCluster) error {
	if r.DB == nil {
		return errors.New("cluster repository: DB is nil")
	}

	routeJSON, err := json.Marshal(cluster.ClusterRoute)
	if err != nil {
		return fmt.Errorf("create cluster: marshal route: %w", err)
	}
	round, hotness, lateness, logJSON, err := marshalRelaxed(cluster.RelaxedConstraints)
	if err != nil {
		return fmt.Errorf("create cluster: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create cluster: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO order_clusters (
		id, time_window, total_items, earliest_delivery_time, status,
		route_json, relaxed_round, relaxed_max_hotness_seconds, relaxed_lateness_tol_seconds,
		relaxed_log, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP);
	`, cluster.ID, cluster.TimeWindow, cluster.TotalItems, cluster.EarliestDeliveryTime, string(cluster.Status),
		string(routeJSON), round, hotness, lateness, logJSON)
	if err != nil {
		return fmt.Errorf("create cluster: insert order_clusters: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO order_cluster_members (cluster_id, order_id) VALUES (?, ?);`)
	if err != nil {
		return fmt.Errorf("create cluster: prepare members insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range cluster.OrderIDs() {
		if _, err := stmt.ExecContext(ctx, cluster.ID, id); err != nil {
			return fmt.Errorf("create cluster: insert member order_id=%d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create cluster: commit: %w", err)
	}
	return nil
}

func (r *SqliteClusterRepository) UpdateStatus(ctx context.Context, clusterIDs []string, newStatus domain.ClusterStatus) error {
	if r.DB == nil {
		return errors.New("cluster repository: DB is nil")
	}
	if len(clusterIDs) == 0 {
		return nil
	}

	ph := make([]string, len(clusterIDs))
	args := make([]any, 0, len(clusterIDs)+1)
	args = append(args, string(newStatus))
	for i, id := range clusterIDs {
		ph[i] = "?"
		args = append(args, id)
	}

	q := fmt.Sprintf(`UPDATE order_clusters SET status = ? WHERE id IN (%s);`, strings.Join(ph, ","))
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update cluster status: %w", err)
	}
	return nil
}

// PostgresClusterRepository implements ports.ClusterRepository against Postgres.
type PostgresClusterRepository struct{ DB *sql.DB }

func NewPostgresClusterRepository(db *sql.DB) *PostgresClusterRepository {
	return &PostgresClusterRepository{DB: db}
}

func (r *PostgresClusterRepository) CreateCluster(ctx context.Context, cluster domain.OrderCluster) error {
	if r.DB == nil {
		return errors.New("cluster repository: DB is nil")
	}

	routeJSON, err := json.Marshal(cluster.ClusterRoute)
	if err != nil {
		return fmt.Errorf("create cluster: marshal route: %w", err)
	}
	round, hotness, lateness, logJSON, err := marshalRelaxed(cluster.RelaxedConstraints)
	if err != nil {
		return fmt.Errorf("create cluster: %w", err)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create cluster: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO order_clusters (
		id, time_window, total_items, earliest_delivery_time, status,
		route_json, relaxed_round, relaxed_max_hotness_seconds, relaxed_lateness_tol_seconds,
		relaxed_log, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now());
	`, cluster.ID, cluster.TimeWindow, cluster.TotalItems, cluster.EarliestDeliveryTime, string(cluster.Status),
		string(routeJSON), round, hotness, lateness, logJSON)
	if err != nil {
		return fmt.Errorf("create cluster: insert order_clusters: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO order_cluster_members (cluster_id, order_id) VALUES ($1, $2);`)
	if err != nil {
		return fmt.Errorf("create cluster: prepare members insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range cluster.OrderIDs() {
		if _, err := stmt.ExecContext(ctx, cluster.ID, id); err != nil {
			return fmt.Errorf("create cluster: insert member order_id=%d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create cluster: commit: %w", err)
	}
	return nil
}

func (r *PostgresClusterRepository) UpdateStatus(ctx context.Context, clusterIDs []string, newStatus domain.ClusterStatus) error {
	if r.DB == nil {
		return errors.New("cluster repository: DB is nil")
	}
	if len(clusterIDs) == 0 {
		return nil
	}

	q := `UPDATE order_clusters SET status = $1 WHERE id = ANY($2::text[]);`
	if _, err := r.DB.ExecContext(ctx, q, string(newStatus), stringSliceToPgArray(clusterIDs)); err != nil {
		return fmt.Errorf("update cluster status: %w", err)
	}
	return nil
}

func stringSliceToPgArray(ss []string) string {
	quoted := make([]string, len(ss))
	for i, s := range ss {
		quoted[i] = `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return "{" + strings.Join(quoted, ",") + "}"
}
