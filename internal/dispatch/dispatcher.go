package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"delivery-route-service/internal/assignment"
	"delivery-route-service/internal/clustering"
	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

// Dispatcher runs one dispatch pass over pending orders and available
// drivers, per spec §4.8's state machine: INTAKE -> FILTER -> TIME_BUCKET ->
// GEO_CLUSTER -> PERSIST_CLUSTERS -> FETCH_DRIVERS -> STRICT_ASSIGN ->
// COMMIT1 -> RELAX -> COMMIT2 -> RETURN, with ABORT reachable from any stage
// that reads context cancellation.
type Dispatcher struct {
	Orders    ports.OrderRepository
	Drivers   ports.DriverRepository
	Clusters  ports.ClusterRepository
	Route     ports.RouteProvider
	Config    *config.Config
	MaxRounds int
}

// NewDispatcher wires the repositories, route provider, and configuration
// needed to run a dispatch pass.
func NewDispatcher(
	orders ports.OrderRepository,
	drivers ports.DriverRepository,
	clusters ports.ClusterRepository,
	route ports.RouteProvider,
	cfg *config.Config,
) *Dispatcher {
	return &Dispatcher{
		Orders:    orders,
		Drivers:   drivers,
		Clusters:  clusters,
		Route:     route,
		Config:    cfg,
		MaxRounds: assignment.DefaultMaxRounds,
	}
}

// Run executes one full dispatch pass. now is the reference instant for
// readiness, lateness and hotness calculations, supplied by the caller so a
// run is reproducible in tests.
func (d *Dispatcher) Run(ctx context.Context, opts FilterOptions, now time.Time) (_ domain.DispatchResult, err error) {
	defer obs.Time(ctx, "dispatch.Run")(&err)

	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=INTAKE")
	pending, err := FetchPending(ctx, d.Orders)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=FILTER")
	filtered := Filter(pending, opts)
	if len(filtered) == 0 {
		return domain.DispatchResult{}, nil
	}

	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=TIME_BUCKET")
	buckets := clustering.BucketOrders(filtered, d.Config.Clustering.TimeWindowMinutes)

	obs.Log(ctx, "state=GEO_CLUSTER")
	clusters, err := d.buildClusters(ctx, buckets, now)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=PERSIST_CLUSTERS")
	for _, c := range clusters {
		if err := ctx.Err(); err != nil {
			return domain.DispatchResult{}, err
		}
		if err := d.Clusters.CreateCluster(ctx, c); err != nil {
			return domain.DispatchResult{}, &domain.PersistenceError{Op: "create_cluster", Err: err}
		}
	}

	// Clusters are sorted ascending by EarliestDeliveryTime so the solver's
	// output is a pure function of inputs, not of clustering iteration order
	// (spec §5).
	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].EarliestDeliveryTime.Before(clusters[j].EarliestDeliveryTime)
	})

	obs.Log(ctx, "state=FETCH_DRIVERS")
	etaThreshold := time.Duration(d.Config.Clustering.ETAThresholdMinutes) * time.Minute
	drivers, err := FetchAvailableDrivers(ctx, d.Drivers, now, etaThreshold)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=STRICT_ASSIGN")
	profiles := make([]assignment.Profile, len(clusters))
	for i := range profiles {
		profiles[i] = assignment.DefaultProfile()
	}

	strict, err := assignment.Solve(ctx, clusters, drivers, profiles, d.Config.Kitchen, now)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=COMMIT1")
	if err := d.commit(ctx, strict.Assigned); err != nil {
		return domain.DispatchResult{}, err
	}

	remainingDrivers := remainderDrivers(drivers, strict.Assigned)

	obs.Log(ctx, "state=RELAX")
	relaxed, stillDeferred, err := assignment.Relax(
		ctx,
		strict.Unassigned,
		remainingDrivers,
		assignment.DefaultStrategies(),
		d.MaxRounds,
		d.Config.Kitchen,
		now,
	)
	if err != nil {
		return domain.DispatchResult{}, err
	}

	if err := ctx.Err(); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=COMMIT2")
	if err := d.commit(ctx, relaxed); err != nil {
		return domain.DispatchResult{}, err
	}

	obs.Log(ctx, "state=RETURN")
	return domain.DispatchResult{
		Assigned:   append(strict.Assigned, relaxed...),
		Unassigned: stillDeferred,
	}, nil
}

// buildClusters geo-clusters each time bucket independently and computes an
// optimised route for every resulting group, assembling the final
// OrderCluster values. Cooperative cancellation is checked between buckets:
// an in-flight route-provider call always finishes before the next one is
// attempted.
func (d *Dispatcher) buildClusters(ctx context.Context, buckets []clustering.Bucket, now time.Time) ([]domain.OrderCluster, error) {
	var out []domain.OrderCluster

	for _, bucket := range buckets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		groups, err := clustering.ClusterGeo(
			ctx,
			d.Route,
			bucket.Orders,
			d.Config.Clustering.MaxPizzasPerCluster,
			d.Config.Clustering.DistanceThreshold,
		)
		if err != nil {
			return nil, err
		}

		for _, group := range groups {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			route, visitOrder, err := clustering.ComputeClusterRoute(
				ctx,
				d.Route,
				d.Config.Clustering.DepotCoords,
				d.Config.Clustering.DepotAddress,
				group,
			)
			if err != nil {
				return nil, err
			}

			out = append(out, domain.NewOrderCluster(uuid.NewString(), bucket.TimeWindow, visitOrder, route))
		}
	}

	return out, nil
}

// commit applies a COMMIT boundary's status transitions: every order in an
// assigned cluster moves to assigned, the cluster itself moves to assigned,
// and the winning driver moves to delivering. Only real wins are committed;
// BIG_M placeholders never reach this point because the solver already
// filters them out of Assigned.
func (d *Dispatcher) commit(ctx context.Context, pairs []domain.AssignedPair) error {
	if len(pairs) == 0 {
		return nil
	}

	var orderIDs []int64
	var clusterIDs []string
	var driverIDs []int64
	for _, p := range pairs {
		orderIDs = append(orderIDs, p.Cluster.OrderIDs()...)
		clusterIDs = append(clusterIDs, p.Cluster.ID)
		driverIDs = append(driverIDs, p.Driver.ID)
	}

	if err := d.Orders.UpdateStatus(ctx, orderIDs, domain.OrderAssigned); err != nil {
		return &domain.PersistenceError{Op: "commit.update_orders", Err: err}
	}
	if err := d.Clusters.UpdateStatus(ctx, clusterIDs, domain.ClusterAssigned); err != nil {
		return &domain.PersistenceError{Op: "commit.update_clusters", Err: err}
	}
	if err := d.Drivers.UpdateStatus(ctx, driverIDs, domain.DriverDelivering); err != nil {
		return &domain.PersistenceError{Op: "commit.update_drivers", Err: err}
	}

	return nil
}

// remainderDrivers returns the fetched drivers minus those the strict pass
// already won, preserving fetch order for the relaxation round's own
// determinism.
func remainderDrivers(drivers []domain.Driver, assigned []domain.AssignedPair) []domain.Driver {
	won := make(map[int64]bool, len(assigned))
	for _, p := range assigned {
		won[p.Driver.ID] = true
	}

	out := make([]domain.Driver, 0, len(drivers))
	for _, dr := range drivers {
		if !won[dr.ID] {
			out = append(out, dr)
		}
	}
	return out
}
