package domain

import "time"

// Lifecycle status of an OrderCluster.
type ClusterStatus string

const (
	ClusterToBeAssigned ClusterStatus = "to_be_assigned"
	ClusterAssigned     ClusterStatus = "assigned"
	ClusterDelivered    ClusterStatus = "delivered"
	ClusterCancelled    ClusterStatus = "cancelled"
)

// RelaxedConstraints records the last relaxation round applied to a cluster
// still under assignment, for audit purposes.
type RelaxedConstraints struct {
	Round        int
	MaxHotness   time.Duration
	LatenessTol  time.Duration
	Log          []string
}

// OrderCluster is a capacity-bounded, geographically-coherent group of
// orders from a single time bucket, delivered as one route by one driver.
type OrderCluster struct {
	ID                   string
	TimeWindow           time.Time
	Orders               []Order
	TotalItems           int
	EarliestDeliveryTime time.Time
	ClusterRoute         ClusterRoute
	Status               ClusterStatus
	RelaxedConstraints   *RelaxedConstraints
}

// OrderIDs returns the member orders' identifiers. Resolves the source's
// get_order_ids callable-vs-property inconsistency by always being a
// zero-argument method, never a bare field.
func (c OrderCluster) OrderIDs() []int64 {
	ids := make([]int64, len(c.Orders))
	for i, o := range c.Orders {
		ids[i] = o.ID
	}
	return ids
}

// NewOrderCluster derives TotalItems and EarliestDeliveryTime from the given
// orders, per the spec invariants (§8.2): TotalItems == sum of food counts,
// EarliestDeliveryTime == min desired delivery time.
func NewOrderCluster(id string, timeWindow time.Time, orders []Order, route ClusterRoute) OrderCluster {
	earliest := time.Time{}
	for i, o := range orders {
		if i == 0 || o.DesiredDeliveryTime.Before(earliest) {
			earliest = o.DesiredDeliveryTime
		}
	}

	return OrderCluster{
		ID:                   id,
		TimeWindow:           timeWindow,
		Orders:               orders,
		TotalItems:           TotalFoodItems(orders),
		EarliestDeliveryTime: earliest,
		ClusterRoute:         route,
		Status:               ClusterToBeAssigned,
	}
}
