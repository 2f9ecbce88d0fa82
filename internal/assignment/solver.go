package assignment

import (
	"context"
	"fmt"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/readiness"
)

// Deferral motivations, per spec §7.
const (
	ReasonNoDriversAvailable = "No drivers available"
	ReasonNoFeasibleDriver   = "No feasible driver"
	ReasonNoDriverAvailable  = "No driver available"
	ReasonHotnessNotMet      = "Hotness constraint not met"
)

// TimeForPayment is the fixed dwell time simulated at each stop on a route
// while the customer pays, per spec §4.6 step 4.
const TimeForPayment = 120 * time.Second

// cellResult is the per (driver, cluster) evaluation computed once and
// reused both to build the cost matrix and to explain a deferral.
type cellResult struct {
	feasible bool
	cost     float64
	reason   string
}

// Pair is one candidate (driver, cluster) evaluation, exposed for callers
// that need the raw feasibility/cost detail (e.g. relaxation bookkeeping).
type Pair struct {
	DriverIndex  int
	ClusterIndex int
	Feasible     bool
	Cost         float64
	Reason       string
}

// Solve builds the driver x cluster cost matrix per spec §4.6 and resolves
// a minimum-weight rectangular assignment over it, substituting infeasible
// cells with a BIG_M penalty so a dense solver can still be used. Clusters
// must already be sorted ascending by EarliestDeliveryTime; drivers are
// taken in the given (fetched) order — the caller is responsible for that
// ordering so the result is a pure function of inputs, not of scheduling
// nondeterminism (spec §5).
func Solve(
	ctx context.Context,
	clusters []domain.OrderCluster,
	drivers []domain.Driver,
	profiles []Profile,
	kitchen config.KitchenConfig,
	now time.Time,
) (_ domain.DispatchResult, err error) {
	defer obs.Time(ctx, "assignment.Solve")(&err)

	if len(profiles) != len(clusters) {
		return domain.DispatchResult{}, fmt.Errorf("assignment: profiles length %d != clusters length %d", len(profiles), len(clusters))
	}

	if len(drivers) == 0 {
		return domain.DispatchResult{
			Unassigned: deferAll(clusters, ReasonNoDriversAvailable),
		}, nil
	}
	if len(clusters) == 0 {
		return domain.DispatchResult{}, nil
	}

	cells := make([][]cellResult, len(drivers))
	maxFiniteCost := 0.0
	anyFeasible := false

	for i, d := range drivers {
		cells[i] = make([]cellResult, len(clusters))
		for j, c := range clusters {
			cell := evaluate(d, c, profiles[j], kitchen, now)
			cells[i][j] = cell
			if cell.feasible {
				anyFeasible = true
				if cell.cost > maxFiniteCost {
					maxFiniteCost = cell.cost
				}
			}
		}
	}

	if !anyFeasible {
		unassigned := make([]domain.Deferral, len(clusters))
		for j, c := range clusters {
			unassigned[j] = domain.Deferral{Cluster: c, Reason: deferralReason(cells, j, len(drivers))}
		}
		return domain.DispatchResult{Unassigned: unassigned}, nil
	}

	bigM := maxFiniteCost
	if bigM < 1.0 {
		bigM = 1.0
	}
	bigM *= 1e6

	matrix := make([][]float64, len(drivers))
	for i := range matrix {
		matrix[i] = make([]float64, len(clusters))
		for j := range matrix[i] {
			if cells[i][j].feasible {
				matrix[i][j] = cells[i][j].cost
			} else {
				matrix[i][j] = bigM
			}
		}
	}

	driverOf, clusterOf := hungarian(matrix)

	assignedCluster := make(map[int]bool, len(clusters))
	var assigned []domain.AssignedPair

	for i, j := range driverOf {
		if j < 0 || j >= len(clusters) {
			continue
		}
		// A forced placeholder (cost >= BIG_M/2, per spec §9's preference
		// over equality comparison) is not a real assignment: the driver
		// stays idle and the cluster remains a candidate for deferral.
		if matrix[i][j] >= bigM/2 {
			continue
		}
		assigned = append(assigned, domain.AssignedPair{
			Driver:  drivers[i],
			Cluster: clusters[j],
			Cost:    matrix[i][j],
		})
		assignedCluster[j] = true
	}
	_ = clusterOf

	var unassigned []domain.Deferral
	for j, c := range clusters {
		if assignedCluster[j] {
			continue
		}
		unassigned = append(unassigned, domain.Deferral{Cluster: c, Reason: deferralReason(cells, j, len(drivers))})
	}

	return domain.DispatchResult{Assigned: assigned, Unassigned: unassigned}, nil
}

// deferralReason picks the motivation for a cluster that was never won: if
// no driver had a feasible cell for it, the textual motivation from
// evaluation is reused; if feasible cells existed but every one lost to a
// cheaper cluster (D<C), the motivation is "No driver available".
func deferralReason(cells [][]cellResult, clusterIdx int, numDrivers int) string {
	var lastReason string
	sawFeasible := false
	for i := 0; i < numDrivers; i++ {
		cell := cells[i][clusterIdx]
		if cell.feasible {
			sawFeasible = true
		} else if lastReason == "" {
			lastReason = cell.reason
		}
	}
	if sawFeasible {
		return ReasonNoDriverAvailable
	}
	if lastReason == "" {
		return ReasonNoFeasibleDriver
	}
	return lastReason
}

func deferAll(clusters []domain.OrderCluster, reason string) []domain.Deferral {
	out := make([]domain.Deferral, len(clusters))
	for i, c := range clusters {
		out[i] = domain.Deferral{Cluster: c, Reason: reason}
	}
	return out
}

// evaluate computes the feasibility and cost of pairing driver d with
// cluster c under profile, per spec §4.6 steps 1-7.
func evaluate(d domain.Driver, c domain.OrderCluster, profile Profile, kitchen config.KitchenConfig, now time.Time) cellResult {
	latestPrepTime := readiness.EstimateReadyTime(c.TotalItems, kitchen, now)
	dispatchReadyTime := latestPrepTime
	if now.After(dispatchReadyTime) {
		dispatchReadyTime = now
	}

	driverReadyTime := d.ReadyTime(now)

	waitTime := dispatchReadyTime.Sub(driverReadyTime)
	if waitTime < 0 {
		waitTime = 0
	}

	deliveryTimes := simulateDeliveryTimes(c, dispatchReadyTime)

	var maxLateness time.Duration
	for _, dt := range deliveryTimes {
		lateness := dt.at.Sub(dt.order.DesiredDeliveryTime)
		if lateness < 0 {
			lateness = 0
		}
		if lateness > maxLateness {
			maxLateness = lateness
		}
	}

	for _, dt := range deliveryTimes {
		hotness := dt.at.Sub(dispatchReadyTime)
		if hotness > profile.Constraints.MaxHotness {
			return cellResult{feasible: false, reason: ReasonHotnessNotMet}
		}
	}

	for _, dt := range deliveryTimes {
		latenessVsCluster := dt.at.Sub(c.EarliestDeliveryTime)
		if latenessVsCluster > profile.Constraints.LatenessTol {
			return cellResult{feasible: false, reason: fmt.Sprintf("Lateness > %d mins", int(profile.Constraints.LatenessTol.Minutes()))}
		}
	}

	cost := profile.Weights.Wait*waitTime.Seconds() +
		profile.Weights.MaxLateness*maxLateness.Seconds() +
		profile.Weights.RouteDuration*c.ClusterRoute.DurationSeconds

	return cellResult{feasible: true, cost: cost}
}

type deliveryAt struct {
	order domain.Order
	at    time.Time
}

// simulateDeliveryTimes walks the cluster's route segments (depot -> stop1
// -> ... -> stopN -> depot), adding each segment's duration plus a fixed
// payment dwell at every stop, and pairs the resulting arrival time with
// the order visited at that stop (route order, not input order).
func simulateDeliveryTimes(c domain.OrderCluster, dispatchReadyTime time.Time) []deliveryAt {
	segments := c.ClusterRoute.Segments
	out := make([]deliveryAt, 0, len(c.Orders))

	cumulative := time.Duration(0)
	for i := 0; i < len(segments)-1; i++ {
		cumulative += time.Duration(segments[i].DurationSeconds) * time.Second
		arrival := dispatchReadyTime.Add(cumulative)
		if i < len(c.Orders) {
			out = append(out, deliveryAt{order: c.Orders[i], at: arrival})
		}
		cumulative += TimeForPayment
	}

	// Fallback for routes without pre-computed segments (defensive: every
	// real cluster has N+1 segments per the ClusterRoute invariant).
	if len(out) == 0 {
		at := dispatchReadyTime
		for _, o := range c.Orders {
			at = at.Add(TimeForPayment)
			out = append(out, deliveryAt{order: o, at: at})
		}
	}

	return out
}
