package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"delivery-route-service/internal/domain"
)

const orderColumns = `
	id, creator_id, customer_name, customer_phone,
	address, postal_code, city, country,
	lon, lat, food_items, drink_items,
	estimated_prep_seconds, desired_delivery_time, priority, status, created_at
`

func scanOrder(row interface{ Scan(...any) error }) (domain.Order, error) {
	var (
		o               domain.Order
		foodJSON        string
		drinkJSON       string
		prepSeconds     int64
		priority        bool
		status          string
	)

	if err := row.Scan(
		&o.ID, &o.CreatorID, &o.CustomerName, &o.CustomerPhone,
		&o.DeliveryAddress.Address, &o.DeliveryAddress.PostalCode, &o.DeliveryAddress.City, &o.DeliveryAddress.Country,
		&o.Coords.Lon, &o.Coords.Lat, &foodJSON, &drinkJSON,
		&prepSeconds, &o.DesiredDeliveryTime, &priority, &status, &o.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}

	if err := json.Unmarshal([]byte(foodJSON), &o.Items.Food); err != nil {
		return domain.Order{}, fmt.Errorf("decode food_items: %w", err)
	}
	if err := json.Unmarshal([]byte(drinkJSON), &o.Items.Drink); err != nil {
		return domain.Order{}, fmt.Errorf("decode drink_items: %w", err)
	}

	o.EstimatedPrepTime = time.Duration(prepSeconds) * time.Second
	o.Priority = priority
	o.Status = domain.OrderStatus(status)

	return o, nil
}

// SqliteOrderRepository implements ports.OrderRepository against SQLite.
type SqliteOrderRepository struct{ DB *sql.DB }

func NewSqliteOrderRepository(db *sql.DB) *SqliteOrderRepository { return &SqliteOrderRepository{DB: db} }

func (r *SqliteOrderRepository) FetchPending(ctx context.Context) ([]domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("order repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`
	SELECT %s FROM orders WHERE status = ? ORDER BY created_at;
	`, orderColumns), string(domain.OrderPending))
	if err != nil {
		return nil, fmt.Errorf("fetch pending orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch pending orders: scan row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *SqliteOrderRepository) UpdateStatus(ctx context.Context, orderIDs []int64, newStatus domain.OrderStatus) error {
	if r.DB == nil {
		return errors.New("order repository: DB is nil")
	}
	if len(orderIDs) == 0 {
		return nil
	}

	ph := make([]string, len(orderIDs))
	args := make([]any, 0, len(orderIDs)+1)
	args = append(args, string(newStatus))
	for i, id := range orderIDs {
		ph[i] = "?"
		args = append(args, id)
	}

	q := fmt.Sprintf(`UPDATE orders SET status = ? WHERE id IN (%s);`, strings.Join(ph, ","))
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// PostgresOrderRepository implements ports.OrderRepository against Postgres.
type PostgresOrderRepository struct{ DB *sql.DB }

func NewPostgresOrderRepository(db *sql.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{DB: db}
}

func (r *PostgresOrderRepository) FetchPending(ctx context.Context) ([]domain.Order, error) {
	if r.DB == nil {
		return nil, errors.New("order repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf(`
	SELECT %s FROM orders WHERE status = $1 ORDER BY created_at;
	`, orderColumns), string(domain.OrderPending))
	if err != nil {
		return nil, fmt.Errorf("fetch pending orders: %w", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("fetch pending orders: scan row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, orderIDs []int64, newStatus domain.OrderStatus) error {
	if r.DB == nil {
		return errors.New("order repository: DB is nil")
	}
	if len(orderIDs) == 0 {
		return nil
	}

	q := `UPDATE orders SET status = $1 WHERE id = ANY($2::bigint[]);`
	if _, err := r.DB.ExecContext(ctx, q, string(newStatus), int64SliceToPgArray(orderIDs)); err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}

// int64SliceToPgArray renders a Go int64 slice as a Postgres array literal
// for drivers (like pgx/stdlib) that accept text array input for ANY().
func int64SliceToPgArray(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
