package routeprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/platform/obs"
)

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// GetCoordinates resolves a postal address via OpenRouteService's pelias
// search endpoint (/geocode/search), going through the persistent geocode
// cache first.
func (o *ORSRouteProvider) GetCoordinates(ctx context.Context, addr domain.DeliveryAddress) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.GetCoordinates")(&err)

	text := o.normalize(addr.String())
	if text == "" {
		return domain.Coordinates{}, fmt.Errorf("get coordinates: address must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{text})
		if err != nil {
			return domain.Coordinates{}, fmt.Errorf("geocode cache read: %w", err)
		}
		if c, ok := hits[text]; ok {
			return c, nil
		}
	}

	fresh, err := o.geocodeMany(ctx, []string{text})
	if err != nil {
		return domain.Coordinates{}, &domain.RouteProviderError{Op: "geocode", Err: err}
	}

	c, ok := fresh[text]
	if !ok {
		return domain.Coordinates{}, &domain.RouteProviderError{Op: "geocode", Err: fmt.Errorf("no result for %q", text)}
	}

	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, fresh); err != nil {
			obs.Log(ctx, "geocode cache write failed: %v", err)
		}
	}

	return c, nil
}

// geocodeMany resolves addresses concurrently using OpenRouteService
// (/geocode/search). Calls are deduplicated; the group aborts remaining
// lookups on the first failure.
func (o *ORSRouteProvider) geocodeMany(
	ctx context.Context,
	addresses []string,
) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.geocodeMany")(&err)

	endpoint := o.baseURL + "/geocode/search"

	seen := make(map[string]struct{}, len(addresses))
	unique := make([]string, 0, len(addresses))
	for _, a := range addresses {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		unique = append(unique, a)
	}

	out := make(map[string]domain.Coordinates, len(unique))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)

	for _, a := range unique {
		addr := a
		g.Go(func() error {
			norm := o.normalize(addr)

			resp, err := o.doWithRetry(gctx, func() (*http.Request, error) {
				req, err := o.newRequest(gctx, http.MethodGet, endpoint, nil)
				if err != nil {
					return nil, err
				}
				q := req.URL.Query()
				q.Set("text", norm)
				q.Set("size", "1")
				req.URL.RawQuery = q.Encode()
				return req, nil
			})
			if err != nil {
				return fmt.Errorf("execute request for %q: %w", addr, err)
			}
			defer resp.Body.Close()

			var decoded geocodeResponse
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				return fmt.Errorf("decode geocode response for %q: %w", addr, err)
			}

			if len(decoded.Features) == 0 {
				return fmt.Errorf("no geocode results for %q", addr)
			}

			coords := decoded.Features[0].Geometry.Coordinates
			if len(coords) != 2 {
				return fmt.Errorf("invalid coordinate format for %q", addr)
			}

			mu.Lock()
			out[norm] = domain.Coordinates{Lon: coords[0], Lat: coords[1]}
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
