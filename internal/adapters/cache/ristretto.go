package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"delivery-route-service/internal/domain"
	"delivery-route-service/internal/ports"
)

// L1 cache sizing and TTL, grounded on shortlink-org-shop's
// courier-emulation route cache: a single dispatch run reuses the same
// depot-to-cluster and address lookups many times over, so a short TTL
// well inside one run's lifetime already pays for itself.
const (
	l1NumCounters = 100_000
	l1MaxCost     = 10_000_00
	l1BufferItems = 64
	l1TTL         = 10 * time.Minute
)

// RistrettoMatrixCache fronts a persistent MatrixCache with an in-process
// ristretto L1: a hit avoids the SQL round-trip entirely, a miss falls
// through to L2 and, on success, populates L1 for next time.
type RistrettoMatrixCache struct {
	l1 *ristretto.Cache[string, ports.MatrixResult]
	l2 MatrixCache
}

// NewRistrettoMatrixCache wraps l2 with a fresh in-process L1.
func NewRistrettoMatrixCache(l2 MatrixCache) (*RistrettoMatrixCache, error) {
	l1, err := ristretto.NewCache(&ristretto.Config[string, ports.MatrixResult]{
		NumCounters: l1NumCounters,
		MaxCost:     l1MaxCost,
		BufferItems: l1BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("build matrix L1 cache: %w", err)
	}
	return &RistrettoMatrixCache{l1: l1, l2: l2}, nil
}

// Close releases the in-process L1 cache's background goroutines.
func (c *RistrettoMatrixCache) Close() {
	if c.l1 != nil {
		c.l1.Close()
	}
}

func (c *RistrettoMatrixCache) Get(ctx context.Context, origin, destination domain.Coordinates) (ports.MatrixResult, bool, error) {
	key := coordKey(origin) + "->" + coordKey(destination)
	if v, found := c.l1.Get(key); found {
		return v, true, nil
	}

	result, ok, err := c.l2.Get(ctx, origin, destination)
	if err != nil || !ok {
		return result, ok, err
	}

	c.l1.SetWithTTL(key, result, 1, l1TTL)
	return result, true, nil
}

func (c *RistrettoMatrixCache) Put(ctx context.Context, origin, destination domain.Coordinates, result ports.MatrixResult) error {
	if err := c.l2.Put(ctx, origin, destination, result); err != nil {
		return err
	}
	key := coordKey(origin) + "->" + coordKey(destination)
	c.l1.SetWithTTL(key, result, 1, l1TTL)
	return nil
}

// RistrettoGeocodeCache fronts a persistent GeocodeCache with an in-process
// ristretto L1, keyed by address string.
type RistrettoGeocodeCache struct {
	l1 *ristretto.Cache[string, domain.Coordinates]
	l2 GeocodeCache
}

// NewRistrettoGeocodeCache wraps l2 with a fresh in-process L1.
func NewRistrettoGeocodeCache(l2 GeocodeCache) (*RistrettoGeocodeCache, error) {
	l1, err := ristretto.NewCache(&ristretto.Config[string, domain.Coordinates]{
		NumCounters: l1NumCounters,
		MaxCost:     l1MaxCost,
		BufferItems: l1BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("build geocode L1 cache: %w", err)
	}
	return &RistrettoGeocodeCache{l1: l1, l2: l2}, nil
}

// Close releases the in-process L1 cache's background goroutines.
func (c *RistrettoGeocodeCache) Close() {
	if c.l1 != nil {
		c.l1.Close()
	}
}

func (c *RistrettoGeocodeCache) GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates, len(addresses))
	var misses []string

	for _, addr := range addresses {
		if v, found := c.l1.Get(addr); found {
			out[addr] = v
			continue
		}
		misses = append(misses, addr)
	}

	if len(misses) == 0 {
		return out, nil
	}

	fromL2, err := c.l2.GetMany(ctx, misses)
	if err != nil {
		return nil, err
	}
	for addr, coords := range fromL2 {
		out[addr] = coords
		c.l1.SetWithTTL(addr, coords, 1, l1TTL)
	}

	return out, nil
}

func (c *RistrettoGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	if err := c.l2.PutMany(ctx, results); err != nil {
		return err
	}
	for addr, coords := range results {
		c.l1.SetWithTTL(addr, coords, 1, l1TTL)
	}
	return nil
}

var _ MatrixCache = (*RistrettoMatrixCache)(nil)
var _ GeocodeCache = (*RistrettoGeocodeCache)(nil)
