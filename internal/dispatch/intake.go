// Package dispatch wires the clustering, readiness, and assignment
// packages into the end-to-end dispatch run state machine (spec §4.8),
// plus the intake/filter stage that feeds it (spec §4.1).
package dispatch

import (
	"context"
	"time"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

// FilterOptions are the AND-composed predicates accepted by Filter. The
// geographic predicate (Lat, Lon, RadiusKM) only applies when all three are
// set; StartTime/EndTime bound an order's creation timestamp, supplementing
// spec.md's geographic-only prose with the original's creation-time window
// (SPEC_FULL.md §9 Supplemented Features).
type FilterOptions struct {
	StartTime *time.Time
	EndTime   *time.Time
	Lat       *float64
	Lon       *float64
	RadiusKM  *float64
}

// FetchPending reads every order with status = pending from the
// Persistence Store.
func FetchPending(ctx context.Context, repo ports.OrderRepository) (_ []domain.Order, err error) {
	defer obs.Time(ctx, "dispatch.FetchPending")(&err)

	orders, err := repo.FetchPending(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch_pending_orders", Err: err}
	}
	return orders, nil
}

// Filter applies the AND-composed predicates in opts to orders. It is a
// pure, total function: filtering twice with the same opts is idempotent
// (spec §8 property 9).
func Filter(orders []domain.Order, opts FilterOptions) []domain.Order {
	geoEnabled := opts.Lat != nil && opts.Lon != nil && opts.RadiusKM != nil

	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if opts.StartTime != nil && o.CreatedAt.Before(*opts.StartTime) {
			continue
		}
		if opts.EndTime != nil && o.CreatedAt.After(*opts.EndTime) {
			continue
		}
		if geoEnabled {
			origin := domain.Coordinates{Lon: *opts.Lon, Lat: *opts.Lat}
			if origin.DistanceKM(o.Coords) > *opts.RadiusKM {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

// FetchAvailableDrivers reads dispatchable drivers (available, or
// delivering with an estimated finish time within etaThreshold of now,
// both coordinates known) from the Persistence Store.
func FetchAvailableDrivers(
	ctx context.Context,
	repo ports.DriverRepository,
	now time.Time,
	etaThreshold time.Duration,
) (_ []domain.Driver, err error) {
	defer obs.Time(ctx, "dispatch.FetchAvailableDrivers")(&err)

	drivers, err := repo.FetchAvailableWithLocation(ctx, now, etaThreshold)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "fetch_available_drivers", Err: err}
	}
	return drivers, nil
}
