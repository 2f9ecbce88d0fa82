package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-route-service/internal/assignment"
	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
)

func testKitchen() config.KitchenConfig {
	return config.KitchenConfig{
		Chefs:              2,
		ChefExperience:     config.ChefMiddle,
		ChefCapacity:       map[config.ChefExperience]int{config.ChefMiddle: 3},
		BakeTimes:          map[config.PizzaType]time.Duration{config.PizzaNapoletana: 90 * time.Second},
		NumOvens:           1,
		SingleOvenCapacity: 5,
		PizzaType:          config.PizzaNapoletana,
	}
}

func routeWithDuration(n int, legSeconds float64) domain.ClusterRoute {
	segments := make([]domain.RouteSegment, n+1)
	for i := range segments {
		segments[i] = domain.RouteSegment{DurationSeconds: legSeconds}
	}
	return domain.ClusterRoute{DurationSeconds: legSeconds * float64(n+1), Segments: segments}
}

func simpleOrder(id int64, desired time.Time, food int) domain.Order {
	foodItems := make([]string, food)
	for i := range foodItems {
		foodItems[i] = "napoletana"
	}
	return domain.Order{ID: id, Items: domain.Items{Food: foodItems}, DesiredDeliveryTime: desired}
}

func TestSolveAssignsSingleFeasiblePair(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{simpleOrder(1, now.Add(60*time.Minute), 1)}
	cluster := domain.NewOrderCluster("c1", now, orders, routeWithDuration(1, 300))

	driver := domain.Driver{ID: 1, Status: domain.DriverAvailable}

	result, err := assignment.Solve(
		context.Background(),
		[]domain.OrderCluster{cluster},
		[]domain.Driver{driver},
		[]assignment.Profile{assignment.DefaultProfile()},
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	assert.Empty(t, result.Unassigned)
	assert.Equal(t, int64(1), result.Assigned[0].Driver.ID)
	assert.Equal(t, "c1", result.Assigned[0].Cluster.ID)
}

func TestSolveNoDriversDefersEveryCluster(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	orders := []domain.Order{simpleOrder(1, now.Add(60*time.Minute), 1)}
	cluster := domain.NewOrderCluster("c1", now, orders, routeWithDuration(1, 300))

	result, err := assignment.Solve(
		context.Background(),
		[]domain.OrderCluster{cluster},
		nil,
		[]assignment.Profile{assignment.DefaultProfile()},
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, assignment.ReasonNoDriversAvailable, result.Unassigned[0].Reason)
}

func TestSolveFewerDriversThanClustersDefersPricier(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	cheapOrders := []domain.Order{simpleOrder(1, now.Add(60*time.Minute), 1)}
	cheap := domain.NewOrderCluster("cheap", now, cheapOrders, routeWithDuration(1, 120))

	pricierOrders := []domain.Order{simpleOrder(2, now.Add(60*time.Minute), 1)}
	pricier := domain.NewOrderCluster("pricier", now, pricierOrders, routeWithDuration(1, 1200))

	driver := domain.Driver{ID: 1, Status: domain.DriverAvailable}

	result, err := assignment.Solve(
		context.Background(),
		[]domain.OrderCluster{cheap, pricier},
		[]domain.Driver{driver},
		[]assignment.Profile{assignment.DefaultProfile(), assignment.DefaultProfile()},
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	assert.Equal(t, "cheap", result.Assigned[0].Cluster.ID)
	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, "pricier", result.Unassigned[0].Cluster.ID)
	assert.Equal(t, assignment.ReasonNoDriverAvailable, result.Unassigned[0].Reason)
}

func TestSolveHotnessBreachDefers(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// 6 orders, each leg very long: cumulative duration blows past the
	// default 20-minute hotness ceiling well before the last stop.
	orders := make([]domain.Order, 6)
	for i := range orders {
		orders[i] = simpleOrder(int64(i+1), now.Add(2*time.Hour), 1)
	}
	cluster := domain.NewOrderCluster("hot", now, orders, routeWithDuration(6, 600))

	driver := domain.Driver{ID: 1, Status: domain.DriverAvailable}

	result, err := assignment.Solve(
		context.Background(),
		[]domain.OrderCluster{cluster},
		[]domain.Driver{driver},
		[]assignment.Profile{assignment.DefaultProfile()},
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, assignment.ReasonHotnessNotMet, result.Unassigned[0].Reason)
}
