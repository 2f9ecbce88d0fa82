package domain

// AssignedPair records a driver matched to a cluster in either the strict
// pass or a relaxation round, with the cost that won and a copy of the
// relaxation log that produced it (empty for a strict-pass win).
type AssignedPair struct {
	Driver        Driver
	Cluster       OrderCluster
	Cost          float64
	RelaxationLog []string
}

// Deferral records why a cluster could not be paired with any driver.
type Deferral struct {
	Cluster OrderCluster
	Reason  string
}

// DispatchResult is the outcome of one dispatch run: the driver->cluster
// mapping, plus the clusters that remain unassigned with their motivation.
type DispatchResult struct {
	Assigned   []AssignedPair
	Unassigned []Deferral
}
