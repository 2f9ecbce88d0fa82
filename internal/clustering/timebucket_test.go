package clustering_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-route-service/internal/clustering"
	"delivery-route-service/internal/domain"
)

func order(desired time.Time) domain.Order {
	return domain.Order{DesiredDeliveryTime: desired}
}

func TestBucketOrdersFloorsToWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		order(base.Add(4 * time.Minute)),
		order(base.Add(7 * time.Minute)),
		order(base.Add(16 * time.Minute)),
	}

	buckets := clustering.BucketOrders(orders, 15)
	require.Len(t, buckets, 2)

	assert.Equal(t, base, buckets[0].TimeWindow)
	assert.Len(t, buckets[0].Orders, 2)

	assert.Equal(t, base.Add(15*time.Minute), buckets[1].TimeWindow)
	assert.Len(t, buckets[1].Orders, 1)

	for _, b := range buckets {
		assert.Zero(t, b.TimeWindow.Second())
		assert.Equal(t, 0, b.TimeWindow.Minute()%15)
	}
}

func TestBucketOrdersPreservesInsertionOrder(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	orders := []domain.Order{
		order(base.Add(40 * time.Minute)),
		order(base),
		order(base.Add(40 * time.Minute)),
	}

	buckets := clustering.BucketOrders(orders, 15)
	require.Len(t, buckets, 2)
	assert.Equal(t, base.Add(30*time.Minute), buckets[0].TimeWindow)
	assert.Equal(t, base, buckets[1].TimeWindow)
}
