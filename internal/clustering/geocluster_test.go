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

func foodOrder(lon, lat float64, items int) domain.Order {
	food := make([]string, items)
	for i := range food {
		food[i] = "napoletana"
	}
	return domain.Order{Coords: domain.Coordinates{Lon: lon, Lat: lat}, Items: domain.Items{Food: food}}
}

func TestClusterGeoSingleOrderPassesThrough(t *testing.T) {
	provider := routeprovider.NewMockRouteProvider(ports.MetricDistance)
	orders := []domain.Order{foodOrder(9.19, 45.46, 1)}

	groups, err := clustering.ClusterGeo(context.Background(), provider, orders, 10, 120)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0], 1)
}

func TestClusterGeoSplitsFarOrdersAndRespectsCapacity(t *testing.T) {
	provider := routeprovider.NewMockRouteProvider(ports.MetricDistance)

	orders := []domain.Order{
		foodOrder(9.190, 45.4642, 6),
		foodOrder(9.191, 45.4643, 6),
		foodOrder(20.0, 50.0, 1),
	}

	groups, err := clustering.ClusterGeo(context.Background(), provider, orders, 10, 2000)
	require.NoError(t, err)

	total := 0
	for _, g := range groups {
		items := 0
		for _, o := range g {
			items += o.FoodCount()
		}
		assert.LessOrEqual(t, items, 10)
		total += items
	}
	assert.Equal(t, 13, total)

	// The two nearby orders (12 items) exceed the 10-item cap, so even
	// though they cluster geographically together they must split.
	var sawSplitNearbyPair bool
	for _, g := range groups {
		if len(g) == 1 && g[0].FoodCount() == 6 {
			sawSplitNearbyPair = true
		}
	}
	assert.True(t, sawSplitNearbyPair, "expected the nearby pair to split across clusters by capacity")
}
