package domain

// DeliveryStep is one turn-by-turn instruction within a RouteSegment.
type DeliveryStep struct {
	Name              string
	Type              int
	DistanceMeters    float64
	DurationSeconds   float64
	DurationFromStart float64
	Instruction       string
	WayPoints         []int
}

// RouteSegment is one leg of a ClusterRoute: depot->stop1, stop_i->stop_i+1,
// ..., stop_n->depot.
type RouteSegment struct {
	DistanceMeters    float64
	DurationSeconds   float64
	DurationFromStart float64
	SegmentStart      DeliveryAddress
	SegmentEnd        DeliveryAddress
	// DeliveryAddress is the terminal delivery address for this segment
	// (equal to SegmentEnd; kept distinct to mirror the source schema, which
	// names it separately on the segment record).
	DeliveryAddress DeliveryAddress
	Steps           []DeliveryStep
}

// ClusterRoute is the optimised round-trip route for one OrderCluster,
// starting and ending at the depot.
type ClusterRoute struct {
	ID              string
	DistanceMeters  float64
	DurationSeconds float64
	Segments        []RouteSegment
}
