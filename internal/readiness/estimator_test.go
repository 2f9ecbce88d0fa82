package readiness_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/readiness"
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

func TestEstimateReadyTimeZeroPizzasReturnsNow(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	got := readiness.EstimateReadyTime(0, testKitchen(), now)
	assert.Equal(t, now, got)
}

func TestEstimateReadyTimeMonotoneInTotalPizzas(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	kitchen := testKitchen()

	prev := now
	for _, n := range []int{1, 3, 9, 20} {
		got := readiness.EstimateReadyTime(n, kitchen, now)
		assert.True(t, !got.Before(prev), "expected estimate for %d pizzas to be >= previous", n)
		prev = got
	}
}

func TestEstimateReadyTimeMatchesWorkedExample(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	kitchen := testKitchen()

	// 2 chefs -> prep capacity = capacity[middle] * 3 = 9 per 120s cycle.
	// 3 pizzas finish prep in one cycle at +120s.
	// Bake batch size = 1 oven * 5 capacity = 5, so all 3 bake together,
	// starting at max(120s, 0) = 120s, finishing at 120s + 90s = 210s.
	got := readiness.EstimateReadyTime(3, kitchen, now)
	assert.Equal(t, now.Add(210*time.Second), got)
}

func TestEstimateReadyTimeSecondBakeBatchWaitsForOven(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	kitchen := testKitchen()
	kitchen.SingleOvenCapacity = 2

	// Prep capacity 9/cycle finishes all 3 pizzas at +120s.
	// Bake batch size = 1*2 = 2: first batch [p1,p2] starts 120s, ends 210s;
	// second batch [p3] starts max(120s, oven_free=210s) = 210s, ends 300s.
	got := readiness.EstimateReadyTime(3, kitchen, now)
	assert.Equal(t, now.Add(300*time.Second), got)
}
