package ports

import (
	"context"

	"delivery-route-service/internal/domain"
)

// MatrixMetric is the travel unit a Route Provider's distance matrix
// reports in: either trip duration or trip distance. The same metric is
// used throughout a single dispatch run.
type MatrixMetric string

const (
	MetricDuration MatrixMetric = "duration"
	MetricDistance MatrixMetric = "distance"
)

// MatrixResult holds one origin->destination pairing from the distance
// matrix, carrying both its distance and its duration; the configured
// MatrixMetric decides which of the two a caller uses.
type MatrixResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// DirectionStep mirrors one turn-by-turn instruction from the provider's
// directions response.
type DirectionStep struct {
	Name            string
	Type            int
	DistanceMeters  float64
	DurationSeconds float64
	Instruction     string
	WayPoints       []int
}

// DirectionSegment mirrors one leg of a directions response.
type DirectionSegment struct {
	DistanceMeters  float64
	DurationSeconds float64
	Steps           []DirectionStep
}

// Directions is the parsed result of a waypoint-optimised directions call:
// one route with a summary and ordered segments, plus the post-optimisation
// coordinate order the provider chose.
type Directions struct {
	TotalDistanceMeters  float64
	TotalDurationSeconds float64
	Segments             []DirectionSegment
	// OptimizedOrder holds the provider's post-optimisation coordinate
	// order, i.e. metadata.query.coordinates. Index i is the position, in
	// the original input coordinate list, of the i-th visited coordinate.
	OptimizedOrder []int
}

// RouteProvider is the external contract described in the Route Provider
// adapter (geocoding, distance matrix, optimised directions). Any call may
// fail; callers treat failures as opaque RouteProviderError.
type RouteProvider interface {
	// GetCoordinates resolves a postal address to a (lon, lat) pair.
	GetCoordinates(ctx context.Context, addr domain.DeliveryAddress) (domain.Coordinates, error)

	// ComputeDistanceMatrix returns an origin->destination matrix over the
	// given coordinates (in input order), in the provider's configured
	// metric.
	ComputeDistanceMatrix(ctx context.Context, coords []domain.Coordinates) ([][]MatrixResult, error)

	// GetDirections requests a waypoint-optimised, fastest-preference route
	// across coords (first and last are the depot bookends).
	GetDirections(ctx context.Context, coords []domain.Coordinates) (Directions, error)

	// Metric reports which unit ComputeDistanceMatrix reports in.
	Metric() MatrixMetric
}
