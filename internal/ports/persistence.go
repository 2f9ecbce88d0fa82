package ports

import (
	"context"
	"time"

	"delivery-route-service/internal/domain"
)

// OrderRepository is the persistence-adapter surface for orders.
type OrderRepository interface {
	// FetchPending returns all orders with status = pending.
	FetchPending(ctx context.Context) ([]domain.Order, error)

	// UpdateStatus bulk-updates the given order ids to newStatus in a
	// single statement.
	UpdateStatus(ctx context.Context, orderIDs []int64, newStatus domain.OrderStatus) error
}

// DriverRepository is the persistence-adapter surface for drivers.
type DriverRepository interface {
	// FetchAvailableWithLocation returns drivers that are available, or
	// delivering with an estimated finish time within etaThreshold of now,
	// restricted to those with a known location.
	FetchAvailableWithLocation(ctx context.Context, now time.Time, etaThreshold time.Duration) ([]domain.Driver, error)

	// UpdateStatus bulk-updates the given driver ids to newStatus.
	UpdateStatus(ctx context.Context, driverIDs []int64, newStatus domain.DriverStatus) error
}

// ClusterRepository is the persistence-adapter surface for order clusters.
type ClusterRepository interface {
	// CreateCluster inserts the cluster row and its order-association join
	// rows in one transaction.
	CreateCluster(ctx context.Context, cluster domain.OrderCluster) error

	// UpdateStatus bulk-updates the given cluster ids to newStatus.
	UpdateStatus(ctx context.Context, clusterIDs []string, newStatus domain.ClusterStatus) error
}
