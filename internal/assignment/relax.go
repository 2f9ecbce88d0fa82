package assignment

import (
	"context"
	"fmt"
	"time"

	"delivery-route-service/internal/config"
	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
)

// DefaultMaxRounds is the Relaxation Controller's default round budget.
const DefaultMaxRounds = 3

// Strategy mutates a cluster's profile for the given relaxation round,
// appending a line to its log. Strategies are pure aside from the log
// append — registered as a plain slice, never via reflection, per spec §9.
type Strategy func(profile Profile, roundN int) Profile

// RelaxHotness loosens the hotness bound by 5 minutes per round, starting
// from the default 20-minute ceiling: max_hotness = 20 + 5*round_n.
func RelaxHotness(profile Profile, roundN int) Profile {
	newMax := 20*time.Minute + time.Duration(5*roundN)*time.Minute
	profile.Constraints.MaxHotness = newMax
	profile.Log = append(profile.Log, fmt.Sprintf("Relaxed hotness tolerance to %d mins", int(newMax.Minutes())))
	return profile
}

// RelaxLateness loosens the lateness tolerance by 5 minutes per round,
// starting from the default 10-minute ceiling: lateness_tol = 10 + 5*round_n.
func RelaxLateness(profile Profile, roundN int) Profile {
	newTol := 10*time.Minute + time.Duration(5*roundN)*time.Minute
	profile.Constraints.LatenessTol = newTol
	profile.Log = append(profile.Log, fmt.Sprintf("Relaxed lateness tolerance to %d mins", int(newTol.Minutes())))
	return profile
}

// DefaultStrategies is the canonical relaxation order: hotness first, then
// lateness, both monotone loosening.
func DefaultStrategies() []Strategy {
	return []Strategy{RelaxHotness, RelaxLateness}
}

// Relax runs the progressive constraint-relaxation loop over deferrals
// left by the strict pass, per spec §4.7. It never mutates cluster
// identity or membership, only the per-cluster feasibility thresholds
// carried in each cluster's profile. Returns the clusters won during
// relaxation (to be merged by the caller into the final assignment) and
// whatever remains deferred after maxRounds (or an early stop).
func Relax(
	ctx context.Context,
	deferrals []domain.Deferral,
	remainingDrivers []domain.Driver,
	strategies []Strategy,
	maxRounds int,
	kitchen config.KitchenConfig,
	now time.Time,
) (_ []domain.AssignedPair, _ []domain.Deferral, err error) {
	defer obs.Time(ctx, "assignment.Relax")(&err)

	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}

	profiles := make(map[string]Profile, len(deferrals))
	clustersByID := make(map[string]domain.OrderCluster, len(deferrals))
	order := make([]string, 0, len(deferrals))
	for _, def := range deferrals {
		profiles[def.Cluster.ID] = DefaultProfile()
		clustersByID[def.Cluster.ID] = def.Cluster
		order = append(order, def.Cluster.ID)
	}

	var allWon []domain.AssignedPair
	drivers := remainingDrivers
	lastReason := make(map[string]string, len(deferrals))
	for _, def := range deferrals {
		lastReason[def.Cluster.ID] = def.Reason
	}

	for round := 1; round <= maxRounds; round++ {
		if len(order) == 0 || len(drivers) == 0 {
			break
		}

		for _, id := range order {
			p := profiles[id]
			for _, s := range strategies {
				p = s(p, round)
			}
			profiles[id] = p
		}

		clusters := make([]domain.OrderCluster, len(order))
		roundProfiles := make([]Profile, len(order))
		for i, id := range order {
			clusters[i] = clustersByID[id]
			roundProfiles[i] = profiles[id]
		}

		result, err := Solve(ctx, clusters, drivers, roundProfiles, kitchen, now)
		if err != nil {
			return nil, nil, fmt.Errorf("relax: round %d: %w", round, err)
		}

		for _, def := range result.Unassigned {
			lastReason[def.Cluster.ID] = def.Reason
		}

		if len(result.Assigned) == 0 {
			break
		}

		won := make(map[string]bool, len(result.Assigned))
		wonDrivers := make(map[int64]bool, len(result.Assigned))
		for _, pair := range result.Assigned {
			pair.RelaxationLog = append([]string(nil), profiles[pair.Cluster.ID].Log...)
			allWon = append(allWon, pair)
			won[pair.Cluster.ID] = true
			wonDrivers[pair.Driver.ID] = true
		}

		nextOrder := order[:0:0]
		for _, id := range order {
			if !won[id] {
				nextOrder = append(nextOrder, id)
			}
		}
		order = nextOrder

		nextDrivers := drivers[:0:0]
		for _, d := range drivers {
			if !wonDrivers[d.ID] {
				nextDrivers = append(nextDrivers, d)
			}
		}
		drivers = nextDrivers
	}

	stillDeferred := make([]domain.Deferral, 0, len(order))
	for _, id := range order {
		reason := lastReason[id]
		if reason == "" {
			reason = ReasonHotnessNotMet
		}
		stillDeferred = append(stillDeferred, domain.Deferral{Cluster: clustersByID[id], Reason: reason})
	}

	return allWon, stillDeferred, nil
}
