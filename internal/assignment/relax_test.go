package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-route-service/internal/assignment"
	"delivery-route-service/internal/domain"
)

func TestRelaxHotnessSucceedsAfterOneRound(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// Single order, far-future desired time so lateness never binds; a
	// 22-minute leg breaches the strict 20-minute hotness ceiling but fits
	// comfortably under round 1's relaxed 25-minute ceiling.
	orders := []domain.Order{simpleOrder(1, now.Add(2*time.Hour), 1)}
	cluster := domain.NewOrderCluster("hot", now, orders, routeWithDuration(1, 22*60))
	driver := domain.Driver{ID: 1, Status: domain.DriverAvailable}

	strict, err := assignment.Solve(
		context.Background(),
		[]domain.OrderCluster{cluster},
		[]domain.Driver{driver},
		[]assignment.Profile{assignment.DefaultProfile()},
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	require.Empty(t, strict.Assigned)
	require.Len(t, strict.Unassigned, 1)
	assert.Equal(t, assignment.ReasonHotnessNotMet, strict.Unassigned[0].Reason)

	won, deferred, err := assignment.Relax(
		context.Background(),
		strict.Unassigned,
		[]domain.Driver{driver},
		assignment.DefaultStrategies(),
		assignment.DefaultMaxRounds,
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	assert.Empty(t, deferred)
	require.Len(t, won, 1)
	assert.Equal(t, "hot", won[0].Cluster.ID)
	assert.Contains(t, won[0].RelaxationLog, "Relaxed hotness tolerance to 25 mins")
}

func TestRelaxStaysDeferredAfterMaxRounds(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	// A 50-minute leg outruns even round 3's 35-minute hotness ceiling; round
	// 1 assigns nothing, so the loop stops early and the cluster stays
	// deferred.
	orders := []domain.Order{simpleOrder(1, now.Add(2*time.Hour), 1)}
	cluster := domain.NewOrderCluster("unsalvageable", now, orders, routeWithDuration(1, 50*60))
	driver := domain.Driver{ID: 1, Status: domain.DriverAvailable}

	deferrals := []domain.Deferral{{Cluster: cluster, Reason: assignment.ReasonHotnessNotMet}}

	won, deferred, err := assignment.Relax(
		context.Background(),
		deferrals,
		[]domain.Driver{driver},
		assignment.DefaultStrategies(),
		assignment.DefaultMaxRounds,
		testKitchen(),
		now,
	)
	require.NoError(t, err)
	assert.Empty(t, won)
	require.Len(t, deferred, 1)
	assert.Equal(t, "unsalvageable", deferred[0].Cluster.ID)
	assert.Equal(t, assignment.ReasonHotnessNotMet, deferred[0].Reason)
}
