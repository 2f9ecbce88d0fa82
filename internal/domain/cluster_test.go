package domain

import (
	"testing"
	"time"
)

func TestNewOrderClusterDerivesAggregates(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)

	orders := []Order{
		{ID: 1, Items: Items{Food: []string{"margherita"}}, DesiredDeliveryTime: t2},
		{ID: 2, Items: Items{Food: []string{"margherita", "diavola"}}, DesiredDeliveryTime: t1},
	}

	c := NewOrderCluster("abcd", t1, orders, ClusterRoute{})

	if c.TotalItems != 3 {
		t.Errorf("TotalItems = %d, want 3", c.TotalItems)
	}
	if !c.EarliestDeliveryTime.Equal(t1) {
		t.Errorf("EarliestDeliveryTime = %v, want %v", c.EarliestDeliveryTime, t1)
	}
	if c.Status != ClusterToBeAssigned {
		t.Errorf("Status = %v, want %v", c.Status, ClusterToBeAssigned)
	}

	ids := c.OrderIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("OrderIDs() = %v, want [1 2]", ids)
	}
}
