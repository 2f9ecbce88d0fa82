package clustering

import (
	"context"

	"github.com/google/uuid"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

// ComputeClusterRoute builds the optimised round-trip route for a cluster's
// orders, starting and ending at depot, and returns the orders permuted
// into the route's visiting order (per spec §3, a Cluster's member orders
// are "ordered — the visiting order defined by the optimised route") so
// route segment i always corresponds to orders[i]. Grounded on the
// source's compute_cluster_route/format_direction_response pair: it builds
// [depot, o1, ..., on, depot], requests waypoint-optimised directions, maps
// the provider's post-optimisation order back onto the input orders via a
// visited_to_coord index, and walks segments computing a running
// duration_from_start.
func ComputeClusterRoute(
	ctx context.Context,
	provider ports.RouteProvider,
	depotCoords domain.Coordinates,
	depotAddress domain.DeliveryAddress,
	orders []domain.Order,
) (_ domain.ClusterRoute, _ []domain.Order, err error) {
	defer obs.Time(ctx, "clustering.ComputeClusterRoute")(&err)

	n := len(orders)
	coords := make([]domain.Coordinates, 0, n+2)
	coords = append(coords, depotCoords)
	for _, o := range orders {
		coords = append(coords, o.Coords)
	}
	coords = append(coords, depotCoords)

	directions, err := provider.GetDirections(ctx, coords)
	if err != nil {
		return domain.ClusterRoute{}, nil, &domain.RouteProviderError{Op: "compute_cluster_route.directions", Err: err}
	}

	if len(directions.Segments) != n+1 {
		// Degenerate case (all coordinates coincide): the provider may return
		// an empty route. Fall back to N+1 zero-cost segments rather than
		// fail the cluster.
		return zeroRoute(depotAddress, orders), orders, nil
	}

	visitedToCoord := buildVisitedToCoordIndex(directions.OptimizedOrder, n)
	visitedOrders := make([]domain.Order, n)
	for visitedIdx, orderIdx := range visitedToCoord {
		if orderIdx >= 0 && orderIdx < n {
			visitedOrders[visitedIdx] = orders[orderIdx]
		}
	}

	segments := make([]domain.RouteSegment, n+1)
	var durationFromStart float64

	for visitedIdx, seg := range directions.Segments {
		steps := make([]domain.DeliveryStep, len(seg.Steps))
		for i, st := range seg.Steps {
			durationFromStart += st.DurationSeconds
			steps[i] = domain.DeliveryStep{
				Name:              st.Name,
				Type:              st.Type,
				DistanceMeters:    st.DistanceMeters,
				DurationSeconds:   st.DurationSeconds,
				DurationFromStart: durationFromStart,
				Instruction:       st.Instruction,
				WayPoints:         st.WayPoints,
			}
		}

		var startIdx, endIdx *int
		switch {
		case visitedIdx == 0:
			e := 0
			endIdx = &e
		case visitedIdx == len(directions.Segments)-1:
			s := visitedIdx - 1
			startIdx = &s
		default:
			s := visitedIdx - 1
			e := visitedIdx
			startIdx, endIdx = &s, &e
		}

		segStart := addressFor(startIdx, visitedToCoord, orders, depotAddress)
		segEnd := addressFor(endIdx, visitedToCoord, orders, depotAddress)

		segments[visitedIdx] = domain.RouteSegment{
			DistanceMeters:    seg.DistanceMeters,
			DurationSeconds:   seg.DurationSeconds,
			DurationFromStart: durationFromStart,
			SegmentStart:      segStart,
			SegmentEnd:        segEnd,
			DeliveryAddress:   segEnd,
			Steps:             steps,
		}
	}

	return domain.ClusterRoute{
		ID:              uuid.NewString(),
		DistanceMeters:  directions.TotalDistanceMeters,
		DurationSeconds: directions.TotalDurationSeconds,
		Segments:        segments,
	}, visitedOrders, nil
}

// buildVisitedToCoordIndex maps each interior visited position (0..n-1) to
// its order index (0..n-1), from the provider's full post-optimisation
// coordinate order (which includes the depot bookends at position 0 and
// len-1).
func buildVisitedToCoordIndex(optimizedOrder []int, n int) []int {
	visited := make([]int, 0, n)
	if len(optimizedOrder) < 2 {
		for i := 0; i < n; i++ {
			visited = append(visited, i)
		}
		return visited
	}

	interior := optimizedOrder[1 : len(optimizedOrder)-1]
	for _, origCoordIdx := range interior {
		orderIdx := origCoordIdx - 1 // coords[0] is the depot
		visited = append(visited, orderIdx)
	}
	return visited
}

func addressFor(idx *int, visitedToCoord []int, orders []domain.Order, depot domain.DeliveryAddress) domain.DeliveryAddress {
	if idx == nil {
		return depot
	}
	orderIdx := visitedToCoord[*idx]
	if orderIdx < 0 || orderIdx >= len(orders) {
		return depot
	}
	return orders[orderIdx].DeliveryAddress
}

// zeroRoute builds a route with N+1 zero-distance, zero-duration segments,
// one per order plus the return leg, for the degenerate all-equal-
// coordinates case.
func zeroRoute(depot domain.DeliveryAddress, orders []domain.Order) domain.ClusterRoute {
	segments := make([]domain.RouteSegment, len(orders)+1)
	prevAddr := depot
	for i, o := range orders {
		segments[i] = domain.RouteSegment{
			SegmentStart:    prevAddr,
			SegmentEnd:      o.DeliveryAddress,
			DeliveryAddress: o.DeliveryAddress,
		}
		prevAddr = o.DeliveryAddress
	}
	segments[len(orders)] = domain.RouteSegment{
		SegmentStart:    prevAddr,
		SegmentEnd:      depot,
		DeliveryAddress: depot,
	}

	return domain.ClusterRoute{
		ID:       uuid.NewString(),
		Segments: segments,
	}
}
