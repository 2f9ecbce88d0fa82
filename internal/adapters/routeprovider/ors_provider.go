// Package routeprovider implements ports.RouteProvider against
// OpenRouteService: geocoding, a full pairwise distance matrix, and
// waypoint-optimised directions, backed by a persistent cache and an
// HTTP client with retry/backoff.
package routeprovider

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"delivery-route-service/internal/adapters/cache"
	"delivery-route-service/internal/ports"
)

// ORSRouteProvider implements ports.RouteProvider using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Persistent geocode caching
//   - Persistent distance-matrix caching
//   - External API calls with retry/backoff
//
// The provider is safe for concurrent use.
type ORSRouteProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	metric       ports.MatrixMetric
	matrixCache  cache.MatrixCache
	geocodeCache cache.GeocodeCache
}

func NewORSRouteProvider(
	apiKey string,
	profile string,
	metric ports.MatrixMetric,
	matrixCache cache.MatrixCache,
	geocodeCache cache.GeocodeCache,
) (*ORSRouteProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if profile == "" {
		profile = "driving-car"
	}
	if metric != ports.MetricDuration && metric != ports.MetricDistance {
		metric = ports.MetricDuration
	}

	return &ORSRouteProvider{
		session:      &http.Client{Timeout: 15 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		profile:      profile,
		metric:       metric,
		matrixCache:  matrixCache,
		geocodeCache: geocodeCache,
	}, nil
}

func (o *ORSRouteProvider) Metric() ports.MatrixMetric { return o.metric }

// normalize ensures consistent cache keys by collapsing whitespace.
func (o *ORSRouteProvider) normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
