package routeprovider

import (
	"context"
	"fmt"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ports"
)

// MockRouteProvider is a deterministic ports.RouteProvider double for
// tests: distances/durations are derived from Haversine distance rather
// than a network call, so clustering and dispatch tests run without an API
// key.
type MockRouteProvider struct {
	Addresses map[string]domain.Coordinates
	metric    ports.MatrixMetric
	// SpeedKPH converts distance into a duration estimate. Defaults to 30.
	SpeedKPH float64
	// Err, when set, is returned by every method.
	Err error
}

func NewMockRouteProvider(metric ports.MatrixMetric) *MockRouteProvider {
	return &MockRouteProvider{
		Addresses: make(map[string]domain.Coordinates),
		metric:    metric,
		SpeedKPH:  30,
	}
}

func (m *MockRouteProvider) GetCoordinates(_ context.Context, addr domain.DeliveryAddress) (domain.Coordinates, error) {
	if m.Err != nil {
		return domain.Coordinates{}, m.Err
	}
	c, ok := m.Addresses[addr.String()]
	if !ok {
		return domain.Coordinates{}, fmt.Errorf("mock route provider: no coordinates for %q", addr.String())
	}
	return c, nil
}

func (m *MockRouteProvider) ComputeDistanceMatrix(_ context.Context, coords []domain.Coordinates) ([][]ports.MatrixResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	n := len(coords)
	out := make([][]ports.MatrixResult, n)
	for i := range out {
		out[i] = make([]ports.MatrixResult, n)
		for j := range out[i] {
			if i == j {
				continue
			}
			km := coords[i].DistanceKM(coords[j])
			seconds := (km / m.SpeedKPH) * 3600
			out[i][j] = ports.MatrixResult{
				DistanceMeters:  km * 1000,
				DurationSeconds: seconds,
			}
		}
	}
	return out, nil
}

func (m *MockRouteProvider) GetDirections(_ context.Context, coords []domain.Coordinates) (ports.Directions, error) {
	if m.Err != nil {
		return ports.Directions{}, m.Err
	}
	if len(coords) < 2 {
		return ports.Directions{}, fmt.Errorf("mock route provider: need at least 2 coordinates")
	}

	var totalDist, totalDur float64
	segments := make([]ports.DirectionSegment, 0, len(coords)-1)
	for i := 0; i+1 < len(coords); i++ {
		km := coords[i].DistanceKM(coords[i+1])
		seconds := (km / m.SpeedKPH) * 3600
		totalDist += km * 1000
		totalDur += seconds
		segments = append(segments, ports.DirectionSegment{
			DistanceMeters:  km * 1000,
			DurationSeconds: seconds,
			Steps: []ports.DirectionStep{{
				Name:            "leg",
				Type:            0,
				DistanceMeters:  km * 1000,
				DurationSeconds: seconds,
				Instruction:     "head to next stop",
				WayPoints:       []int{i, i + 1},
			}},
		})
	}

	optimized := make([]int, len(coords))
	for i := range optimized {
		optimized[i] = i
	}

	return ports.Directions{
		TotalDistanceMeters:  totalDist,
		TotalDurationSeconds: totalDur,
		Segments:             segments,
		OptimizedOrder:       optimized,
	}, nil
}

func (m *MockRouteProvider) Metric() ports.MatrixMetric { return m.metric }
