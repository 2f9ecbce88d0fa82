package routeprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
	"delivery-route-service/internal/ports"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// ComputeDistanceMatrix returns the full origin->destination matrix over
// coords, in the provider's configured metric (§4.3). The whole-matrix
// result is served from cache only when every pair is already present;
// otherwise a single ORS matrix call resolves the full NxN matrix and the
// cache is repopulated pairwise.
func (o *ORSRouteProvider) ComputeDistanceMatrix(
	ctx context.Context,
	coords []domain.Coordinates,
) (_ [][]ports.MatrixResult, err error) {
	defer obs.Time(ctx, "ors.ComputeDistanceMatrix")(&err)

	n := len(coords)
	if n == 0 {
		return nil, nil
	}

	if o.matrixCache != nil {
		if cached, ok := o.tryFullyCached(ctx, coords); ok {
			return cached, nil
		}
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	locations := make([][]float64, n)
	for i, c := range coords {
		locations[i] = c.CoordsToList()
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, &domain.RouteProviderError{Op: "distance matrix", Err: err}
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, &domain.RouteProviderError{Op: "distance matrix", Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, &domain.RouteProviderError{Op: "distance matrix", Err: fmt.Errorf(
			"expected %d rows; got distances=%d durations=%d", n, len(mr.Distances), len(mr.Durations),
		)}
	}

	out := make([][]ports.MatrixResult, n)
	for i := 0; i < n; i++ {
		if len(mr.Distances[i]) != n || len(mr.Durations[i]) != n {
			return nil, &domain.RouteProviderError{Op: "distance matrix", Err: fmt.Errorf("row %d has wrong length", i)}
		}
		out[i] = make([]ports.MatrixResult, n)
		for j := 0; j < n; j++ {
			dp, sp := mr.Distances[i][j], mr.Durations[i][j]
			if dp == nil || sp == nil {
				return nil, &domain.RouteProviderError{Op: "distance matrix", Err: fmt.Errorf("nil metric at [%d][%d]", i, j)}
			}
			out[i][j] = ports.MatrixResult{
				DistanceMeters:  math.Round(*dp),
				DurationSeconds: math.Round(*sp),
			}
		}
	}

	if o.matrixCache != nil {
		o.fillCache(ctx, coords, out)
	}

	return out, nil
}

func (o *ORSRouteProvider) tryFullyCached(ctx context.Context, coords []domain.Coordinates) ([][]ports.MatrixResult, bool) {
	n := len(coords)
	out := make([][]ports.MatrixResult, n)
	for i := range out {
		out[i] = make([]ports.MatrixResult, n)
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			r, ok, err := o.matrixCache.Get(ctx, coords[i], coords[j])
			if err != nil || !ok {
				return nil, false
			}
			out[i][j] = r
		}
	}
	return out, true
}

func (o *ORSRouteProvider) fillCache(ctx context.Context, coords []domain.Coordinates, matrix [][]ports.MatrixResult) {
	n := len(coords)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if err := o.matrixCache.Put(ctx, coords[i], coords[j], matrix[i][j]); err != nil {
				obs.Log(ctx, "matrix cache write failed: %v", err)
			}
		}
	}
}
