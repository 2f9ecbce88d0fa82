package clustering

import (
	"context"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

// ClusterGeo partitions orders by travel proximity, then splits each
// resulting group into capacity-bounded sub-clusters. No corpus library
// implements agglomerative clustering, so the algorithm is hand-rolled
// here: precomputed pairwise matrix, average linkage, a single
// distance-threshold cutoff, no target cluster count — mirroring
// scikit-learn's AgglomerativeClustering(metric="precomputed",
// linkage="average", n_clusters=None, distance_threshold=...) contract the
// source delegates to.
func ClusterGeo(
	ctx context.Context,
	provider ports.RouteProvider,
	orders []domain.Order,
	maxItemsPerCluster int,
	distanceThreshold float64,
) (_ [][]domain.Order, err error) {
	defer obs.Time(ctx, "clustering.ClusterGeo")(&err)

	if len(orders) < 2 {
		return [][]domain.Order{orders}, nil
	}

	coords := make([]domain.Coordinates, len(orders))
	for i, o := range orders {
		coords[i] = o.Coords
	}

	matrixResult, err := provider.ComputeDistanceMatrix(ctx, coords)
	if err != nil {
		return nil, &domain.RouteProviderError{Op: "cluster_geo.distance_matrix", Err: err}
	}

	matrix := toNativeUnitMatrix(matrixResult, provider.Metric())

	groups := averageLinkageCluster(matrix, distanceThreshold)

	var final [][]domain.Order
	for _, group := range groups {
		members := make([]domain.Order, len(group))
		for i, idx := range group {
			members[i] = orders[idx]
		}
		final = append(final, splitByCapacity(members, maxItemsPerCluster)...)
	}

	return final, nil
}

// toNativeUnitMatrix converts a provider matrix into the metric's native
// clustering unit: minutes for duration (the threshold's documented unit),
// meters for distance (already native).
func toNativeUnitMatrix(m [][]ports.MatrixResult, metric ports.MatrixMetric) [][]float64 {
	n := len(m)
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			if metric == ports.MetricDistance {
				out[i][j] = m[i][j].DistanceMeters
			} else {
				out[i][j] = m[i][j].DurationSeconds / 60
			}
		}
	}
	return out
}

// averageLinkageCluster merges the two closest groups (by mean pairwise
// distance between members) repeatedly until the closest remaining pair
// exceeds threshold or a single group remains. Returns groups as index
// slices into the original matrix, each preserving ascending input order.
func averageLinkageCluster(matrix [][]float64, threshold float64) [][]int {
	n := len(matrix)

	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	for len(groups) > 1 {
		bestI, bestJ := -1, -1
		bestDist := 0.0

		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				d := averageDistance(groups[i], groups[j], matrix)
				if bestI == -1 || d < bestDist {
					bestI, bestJ, bestDist = i, j, d
				}
			}
		}

		if bestDist > threshold {
			break
		}

		merged := append(append([]int{}, groups[bestI]...), groups[bestJ]...)
		next := make([][]int, 0, len(groups)-1)
		for k, g := range groups {
			if k == bestI || k == bestJ {
				continue
			}
			next = append(next, g)
		}
		next = append(next, merged)
		groups = next
	}

	for _, g := range groups {
		sortInts(g)
	}
	return groups
}

func averageDistance(a, b []int, matrix [][]float64) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += matrix[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// splitByCapacity walks members in order, accumulating food counts, and
// emits a new sub-cluster whenever adding the next order would exceed
// maxItemsPerCluster. Ties break by preserving input order.
func splitByCapacity(members []domain.Order, maxItemsPerCluster int) [][]domain.Order {
	var out [][]domain.Order
	var buffer []domain.Order
	total := 0

	for _, o := range members {
		count := o.FoodCount()
		if len(buffer) > 0 && total+count > maxItemsPerCluster {
			out = append(out, buffer)
			buffer = nil
			total = 0
		}
		buffer = append(buffer, o)
		total += count
	}
	if len(buffer) > 0 {
		out = append(out, buffer)
	}

	return out
}
