package domain

import "time"

// Lifecycle status of a Driver.
type DriverStatus string

const (
	DriverAvailable  DriverStatus = "available"
	DriverDelivering DriverStatus = "delivering"
	DriverOffline    DriverStatus = "offline"
)

// Driver is a courier eligible for dispatch.
type Driver struct {
	ID                  int64
	UserID              int64
	FullName            string
	IsActive            bool
	Status              DriverStatus
	Coords              *Coordinates
	CurrentRoute        *ClusterRoute
	EstimatedFinishTime *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Dispatchable reports whether the driver is eligible for assignment: either
// available, or delivering with an estimated finish time within
// etaThreshold of now. Both coordinates must be known.
func (d Driver) Dispatchable(now time.Time, etaThreshold time.Duration) bool {
	if d.Coords == nil || !d.Coords.Finite() {
		return false
	}

	switch d.Status {
	case DriverAvailable:
		return true
	case DriverDelivering:
		return d.EstimatedFinishTime != nil && !d.EstimatedFinishTime.After(now.Add(etaThreshold))
	default:
		return false
	}
}

// ReadyTime resolves when the driver can actually depart with a new cluster.
//
// The source expression computed this as `now - estimated_finish_time` for a
// delivering driver, which is dimensionally inconsistent (it yields a
// duration fed into a later subtraction expecting a timestamp, and goes
// negative while the driver is still out). A dispatchable delivering driver
// has EstimatedFinishTime <= now + ETAThreshold by construction, so their
// true readiness is that finish time itself; an available driver is ready
// now.
func (d Driver) ReadyTime(now time.Time) time.Time {
	if d.Status == DriverDelivering && d.EstimatedFinishTime != nil {
		return *d.EstimatedFinishTime
	}
	return now
}
