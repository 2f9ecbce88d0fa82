// Package readiness models the kitchen as two serial stages (prep, bake)
// and estimates when the last pizza in a batch is ready for pickup. No
// corpus library or original-source equivalent exists for this model; it
// is built fresh from the algorithm description and unit-tested in the
// teacher's style.
package readiness

import (
	"time"

	"delivery-route-service/internal/config"
)

// EstimateReadyTime models prep (chef-throughput, 120s cycles) followed by
// bake (oven-batch throughput) and returns the timestamp the last pizza in
// totalPizzas is ready.
func EstimateReadyTime(totalPizzas int, kitchen config.KitchenConfig, now time.Time) time.Time {
	if totalPizzas <= 0 {
		return now
	}

	prepFinishOffsets := simulatePrep(totalPizzas, kitchen)
	return now.Add(simulateBake(prepFinishOffsets, kitchen))
}

// simulatePrep returns, for each pizza in arrival order, the cycle-end
// offset (from now) at which its prep finished. Effective prep throughput
// per 120s cycle is chef_capacity[experience] scaled by chef count: x1 for
// one chef, x3 for two (an explicit nonlinear boost for shared
// mise-en-place), xchefs for three or more.
func simulatePrep(totalPizzas int, kitchen config.KitchenConfig) []time.Duration {
	const cycle = 120 * time.Second

	capacityPerChef := kitchen.ChefCapacity[kitchen.ChefExperience]
	prepCapacity := capacityPerChef
	switch {
	case kitchen.Chefs == 2:
		prepCapacity = capacityPerChef * 3
	case kitchen.Chefs >= 3:
		prepCapacity = capacityPerChef * kitchen.Chefs
	}
	if prepCapacity <= 0 {
		prepCapacity = 1
	}

	offsets := make([]time.Duration, 0, totalPizzas)
	remaining := totalPizzas
	elapsed := time.Duration(0)

	for remaining > 0 {
		elapsed += cycle
		done := prepCapacity
		if done > remaining {
			done = remaining
		}
		for i := 0; i < done; i++ {
			offsets = append(offsets, elapsed)
		}
		remaining -= done
	}

	return offsets
}

// simulateBake takes pizzas in prep-finish order, in batches sized
// num_ovens x single_oven_capacity. Each batch starts at
// max(last prep in batch, oven next free) and finishes bake_time later;
// the oven becomes free at batch finish. Returns the offset (from now) at
// which the last batch finishes.
func simulateBake(prepFinishOffsets []time.Duration, kitchen config.KitchenConfig) time.Duration {
	batchSize := kitchen.NumOvens * kitchen.SingleOvenCapacity
	if batchSize <= 0 {
		batchSize = 1
	}
	bakeTime := kitchen.BakeTimes[kitchen.PizzaType]

	var ovenFree time.Duration
	var maxFinish time.Duration

	for start := 0; start < len(prepFinishOffsets); start += batchSize {
		end := start + batchSize
		if end > len(prepFinishOffsets) {
			end = len(prepFinishOffsets)
		}

		lastPrepInBatch := prepFinishOffsets[end-1]

		batchStart := lastPrepInBatch
		if ovenFree > batchStart {
			batchStart = ovenFree
		}

		batchFinish := batchStart + bakeTime
		ovenFree = batchFinish
		if batchFinish > maxFinish {
			maxFinish = batchFinish
		}
	}

	return maxFinish
}
