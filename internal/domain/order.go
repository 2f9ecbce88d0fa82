package domain

import "time"

// Lifecycle status of an Order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPreparing  OrderStatus = "preparing"
	OrderAssigned   OrderStatus = "assigned"
	OrderDelivering OrderStatus = "delivering"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Items partitions an order's contents into food and drink lines. Only food
// counts toward cluster capacity and kitchen throughput.
type Items struct {
	Food  []string `json:"food"`
	Drink []string `json:"drink"`
}

// DeliveryAddress is the customer-facing postal address for an order, and
// also used to represent the depot as a bookend address on a ClusterRoute.
type DeliveryAddress struct {
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

func (a DeliveryAddress) String() string {
	return a.Address + ", " + a.PostalCode + " " + a.City + ", " + a.Country
}

// Order is a single pizza delivery request. Coordinates are pinned at
// intake; lat/lon must be finite once the order exists.
type Order struct {
	ID                  int64
	CreatorID            int64
	CustomerName         string
	CustomerPhone        string
	DeliveryAddress      DeliveryAddress
	Coords               Coordinates
	Items                Items
	// EstimatedPrepTime is legacy/audit-only: the Readiness Estimator owns
	// timing and never reads this field.
	EstimatedPrepTime    time.Duration
	DesiredDeliveryTime  time.Time
	Priority             bool
	Status               OrderStatus
	CreatedAt            time.Time
}

// FoodCount returns the number of food items on the order (the unit used
// for cluster capacity and kitchen throughput).
func (o Order) FoodCount() int { return len(o.Items.Food) }

// TotalFoodItems sums FoodCount across orders.
func TotalFoodItems(orders []Order) int {
	total := 0
	for _, o := range orders {
		total += o.FoodCount()
	}
	return total
}
