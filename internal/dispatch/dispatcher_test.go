package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-route-service/internal/adapters/routeprovider"
	"delivery-route-service/internal/config"
	"delivery-route-service/internal/dispatch"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ports"
)

type fakeOrders struct {
	orders    []domain.Order
	statusSet map[int64]domain.OrderStatus
}

func (f *fakeOrders) FetchPending(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.Status == domain.OrderPending {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, ids []int64, status domain.OrderStatus) error {
	if f.statusSet == nil {
		f.statusSet = make(map[int64]domain.OrderStatus)
	}
	for _, id := range ids {
		f.statusSet[id] = status
	}
	return nil
}

type fakeDrivers struct {
	drivers   []domain.Driver
	statusSet map[int64]domain.DriverStatus
}

func (f *fakeDrivers) FetchAvailableWithLocation(_ context.Context, now time.Time, etaThreshold time.Duration) ([]domain.Driver, error) {
	var out []domain.Driver
	for _, d := range f.drivers {
		if d.Dispatchable(now, etaThreshold) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDrivers) UpdateStatus(_ context.Context, ids []int64, status domain.DriverStatus) error {
	if f.statusSet == nil {
		f.statusSet = make(map[int64]domain.DriverStatus)
	}
	for _, id := range ids {
		f.statusSet[id] = status
	}
	return nil
}

type fakeClusters struct {
	created   []domain.OrderCluster
	statusSet map[string]domain.ClusterStatus
}

func (f *fakeClusters) CreateCluster(_ context.Context, c domain.OrderCluster) error {
	f.created = append(f.created, c)
	return nil
}

func (f *fakeClusters) UpdateStatus(_ context.Context, ids []string, status domain.ClusterStatus) error {
	if f.statusSet == nil {
		f.statusSet = make(map[string]domain.ClusterStatus)
	}
	for _, id := range ids {
		f.statusSet[id] = status
	}
	return nil
}

var _ ports.OrderRepository = (*fakeOrders)(nil)
var _ ports.DriverRepository = (*fakeDrivers)(nil)
var _ ports.ClusterRepository = (*fakeClusters)(nil)

func testConfig() *config.Config {
	return &config.Config{
		Clustering: config.ClusteringConfig{
			MaxPizzasPerCluster: 10,
			TimeWindowMinutes:   15,
			DistanceThreshold:   30,
			ETAThresholdMinutes: 10,
			DepotCoords:         domain.Coordinates{Lon: 9.19, Lat: 45.4642},
			DepotAddress:        domain.DeliveryAddress{Address: "Via Roma 1", City: "Milano"},
		},
		Kitchen: config.KitchenConfig{
			Chefs:              2,
			ChefExperience:     config.ChefMiddle,
			ChefCapacity:       map[config.ChefExperience]int{config.ChefMiddle: 3},
			BakeTimes:          map[config.PizzaType]time.Duration{config.PizzaNapoletana: 90 * time.Second},
			NumOvens:           1,
			SingleOvenCapacity: 5,
			PizzaType:          config.PizzaNapoletana,
		},
	}
}

func deliveryOrder(id int64, lon, lat float64, desired time.Time) domain.Order {
	return domain.Order{
		ID:                  id,
		DeliveryAddress:     domain.DeliveryAddress{Address: "addr", City: "Milano"},
		Coords:              domain.Coordinates{Lon: lon, Lat: lat},
		Items:               domain.Items{Food: []string{"napoletana"}},
		DesiredDeliveryTime: desired,
		Status:              domain.OrderPending,
		CreatedAt:           desired.Add(-30 * time.Minute),
	}
}

func TestRunHappyPathAssignsSingleOrder(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrders{orders: []domain.Order{
		deliveryOrder(1, 9.20, 45.47, now.Add(45*time.Minute)),
	}}
	drivers := &fakeDrivers{drivers: []domain.Driver{
		{ID: 1, Status: domain.DriverAvailable, Coords: &domain.Coordinates{Lon: 9.19, Lat: 45.4642}},
	}}
	clusters := &fakeClusters{}
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)

	d := dispatch.NewDispatcher(orders, drivers, clusters, provider, testConfig())

	result, err := d.Run(context.Background(), dispatch.FilterOptions{}, now)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	assert.Empty(t, result.Unassigned)
	assert.Equal(t, int64(1), result.Assigned[0].Driver.ID)
	assert.Equal(t, domain.OrderAssigned, orders.statusSet[1])
	assert.Equal(t, domain.DriverDelivering, drivers.statusSet[1])
	assert.Len(t, clusters.created, 1)
	assert.Equal(t, domain.ClusterAssigned, clusters.statusSet[result.Assigned[0].Cluster.ID])
}

func TestRunNoDriversDefersEveryCluster(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrders{orders: []domain.Order{
		deliveryOrder(1, 9.20, 45.47, now.Add(45*time.Minute)),
	}}
	drivers := &fakeDrivers{}
	clusters := &fakeClusters{}
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)

	d := dispatch.NewDispatcher(orders, drivers, clusters, provider, testConfig())

	result, err := d.Run(context.Background(), dispatch.FilterOptions{}, now)
	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	require.Len(t, result.Unassigned, 1)
}

func TestRunAbortsBeforeCommitOnRouteProviderFailure(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	orders := &fakeOrders{orders: []domain.Order{
		deliveryOrder(1, 9.20, 45.47, now.Add(45*time.Minute)),
		deliveryOrder(2, 9.21, 45.48, now.Add(45*time.Minute)),
	}}
	drivers := &fakeDrivers{drivers: []domain.Driver{
		{ID: 1, Status: domain.DriverAvailable, Coords: &domain.Coordinates{Lon: 9.19, Lat: 45.4642}},
	}}
	clusters := &fakeClusters{}
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)
	provider.Err = errors.New("distance matrix unreachable")

	d := dispatch.NewDispatcher(orders, drivers, clusters, provider, testConfig())

	_, err := d.Run(context.Background(), dispatch.FilterOptions{}, now)
	require.Error(t, err)
	var routeErr *domain.RouteProviderError
	require.ErrorAs(t, err, &routeErr)

	assert.Empty(t, orders.statusSet)
	assert.Empty(t, drivers.statusSet)
	assert.Empty(t, clusters.statusSet)
	assert.Empty(t, clusters.created)
}

func TestRunFilterExcludesOutOfRadiusOrders(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	near := deliveryOrder(1, 9.20, 45.47, now.Add(45*time.Minute))
	far := deliveryOrder(2, 30.0, 60.0, now.Add(45*time.Minute))

	orders := &fakeOrders{orders: []domain.Order{near, far}}
	drivers := &fakeDrivers{drivers: []domain.Driver{
		{ID: 1, Status: domain.DriverAvailable, Coords: &domain.Coordinates{Lon: 9.19, Lat: 45.4642}},
		{ID: 2, Status: domain.DriverAvailable, Coords: &domain.Coordinates{Lon: 9.19, Lat: 45.4642}},
	}}
	clusters := &fakeClusters{}
	provider := routeprovider.NewMockRouteProvider(ports.MetricDuration)

	d := dispatch.NewDispatcher(orders, drivers, clusters, provider, testConfig())

	lat, lon, radius := 45.4642, 9.19, 50.0
	result, err := d.Run(context.Background(), dispatch.FilterOptions{Lat: &lat, Lon: &lon, RadiusKM: &radius}, now)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	assert.Equal(t, []int64{1}, result.Assigned[0].Cluster.OrderIDs())
}
