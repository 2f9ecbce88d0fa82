package routeprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

type directionsRequest struct {
	Coordinates       [][]float64 `json:"coordinates"`
	OptimizeWaypoints bool        `json:"optimize_waypoints"`
	Preference        string      `json:"preference"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
		Segments []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
			Steps    []struct {
				Distance    float64 `json:"distance"`
				Duration    float64 `json:"duration"`
				Type        int     `json:"type"`
				Instruction string  `json:"instruction"`
				Name        string  `json:"name"`
				WayPoints   []int   `json:"way_points"`
			} `json:"steps"`
		} `json:"segments"`
	} `json:"routes"`
	Metadata struct {
		Query struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"query"`
	} `json:"metadata"`
}

// GetDirections requests a waypoint-optimised route over coords (first and
// last bookend the depot) via OpenRouteService's /v2/directions endpoint.
// The returned OptimizedOrder exposes, for each post-optimisation visited
// coordinate, its index in the original coords slice, mirroring the
// source's visited_to_coord mapping.
func (o *ORSRouteProvider) GetDirections(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ ports.Directions, err error) {
	defer obs.Time(ctx, "ors.GetDirections")(&err)

	if len(coords) < 2 {
		return ports.Directions{}, fmt.Errorf("get directions: need at least 2 coordinates, got %d", len(coords))
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s/json", o.baseURL, o.profile)

	locations := make([][]float64, len(coords))
	for i, c := range coords {
		locations[i] = c.CoordsToList()
	}

	payload, err := json.Marshal(directionsRequest{
		Coordinates:       locations,
		OptimizeWaypoints: true,
		Preference:        "fastest",
	})
	if err != nil {
		return ports.Directions{}, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.Directions{}, &domain.RouteProviderError{Op: "directions", Err: err}
	}
	defer resp.Body.Close()

	var dr directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return ports.Directions{}, &domain.RouteProviderError{Op: "directions", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(dr.Routes) == 0 {
		return ports.Directions{}, &domain.RouteProviderError{Op: "directions", Err: fmt.Errorf("no route returned")}
	}
	route := dr.Routes[0]

	segments := make([]ports.DirectionSegment, len(route.Segments))
	for i, seg := range route.Segments {
		steps := make([]ports.DirectionStep, len(seg.Steps))
		for j, st := range seg.Steps {
			steps[j] = ports.DirectionStep{
				Name:            st.Name,
				Type:            st.Type,
				DistanceMeters:  st.Distance,
				DurationSeconds: st.Duration,
				Instruction:     st.Instruction,
				WayPoints:       st.WayPoints,
			}
		}
		segments[i] = ports.DirectionSegment{
			DistanceMeters:  seg.Distance,
			DurationSeconds: seg.Duration,
			Steps:           steps,
		}
	}

	optimized := buildOptimizedOrder(coords, dr.Metadata.Query.Coordinates)

	return ports.Directions{
		TotalDistanceMeters:  route.Summary.Distance,
		TotalDurationSeconds: route.Summary.Duration,
		Segments:             segments,
		OptimizedOrder:       optimized,
	}, nil
}

// buildOptimizedOrder maps each coordinate in the provider's post
// optimisation order back to its position in the original input, matching
// coordinates by value since ORS echoes them verbatim in metadata.query.
func buildOptimizedOrder(original []domain.Coordinates, visited [][]float64) []int {
	out := make([]int, 0, len(visited))
	for _, v := range visited {
		if len(v) != 2 {
			continue
		}
		idx := -1
		for i, c := range original {
			if c.Lon == v[0] && c.Lat == v[1] {
				idx = i
				break
			}
		}
		out = append(out, idx)
	}
	return out
}
