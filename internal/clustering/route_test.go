package clustering_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-route-service/internal/adapters/routeprovider"
	"delivery-route-service/internal/clustering"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ports"
)

func TestComputeClusterRouteHasNPlusOneSegments(t *testing.T) {
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)
	depot := domain.Coordinates{Lon: 9.19, Lat: 45.4642}
	depotAddr := domain.DeliveryAddress{Address: "Via Roma 1", City: "Milano"}

	orders := []domain.Order{
		{DeliveryAddress: domain.DeliveryAddress{Address: "A"}, Coords: domain.Coordinates{Lon: 9.20, Lat: 45.47}},
		{DeliveryAddress: domain.DeliveryAddress{Address: "B"}, Coords: domain.Coordinates{Lon: 9.21, Lat: 45.48}},
		{DeliveryAddress: domain.DeliveryAddress{Address: "C"}, Coords: domain.Coordinates{Lon: 9.22, Lat: 45.49}},
	}

	route, visitOrder, err := clustering.ComputeClusterRoute(context.Background(), provider, depot, depotAddr, orders)
	require.NoError(t, err)
	require.Len(t, route.Segments, len(orders)+1)
	require.Len(t, visitOrder, len(orders))

	assert.Equal(t, depotAddr, route.Segments[0].SegmentStart)
	assert.Equal(t, depotAddr, route.Segments[len(route.Segments)-1].SegmentEnd)

	prev := -1.0
	for _, seg := range route.Segments {
		assert.GreaterOrEqual(t, seg.DurationFromStart, prev)
		prev = seg.DurationFromStart
	}
}

func TestComputeClusterRouteDegenerateAllEqualCoords(t *testing.T) {
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)
	same := domain.Coordinates{Lon: 9.19, Lat: 45.4642}
	depotAddr := domain.DeliveryAddress{Address: "Via Roma 1"}

	orders := []domain.Order{
		{DeliveryAddress: domain.DeliveryAddress{Address: "A"}, Coords: same},
	}

	route, visitOrder, err := clustering.ComputeClusterRoute(context.Background(), provider, same, depotAddr, orders)
	require.NoError(t, err)
	require.Len(t, route.Segments, 2)
	require.Len(t, visitOrder, 1)
	assert.Zero(t, route.Segments[0].DistanceMeters)
}
