// Package problem defines the read-only input boundary consumed by package ddd: trains, visits,
// resource conflicts, and the delay-cost functions. None of the optimization logic lives here — a
// real deployment would populate a [Problem] from a timetable database or a MIP model file; this
// package only pins down the shape that package ddd depends on.
package problem

// ResourceID identifies a track segment, platform, or other resource. Whether two trains may
// occupy it at overlapping times is decided by [Problem.Conflicts] alone.
type ResourceID uint32

// CostType selects among a family of delay-cost functions (e.g. "linear", "quadratic after grace
// period"). It is opaque to package ddd; it is only ever passed through to a [DelayCostFunc] or
// [AggregateCostFunc].
type CostType int

// Visit is a single stop a train makes at a resource.
type Visit struct {
	ResourceID ResourceID
	// Earliest is the earliest time the train may arrive at this visit.
	Earliest int32
	// TravelTime is how long the train occupies this visit before it can depart for the next one.
	TravelTime int32
}

// Train is an ordered sequence of visits.
type Train struct {
	Visits []Visit
}

// DelayCostFunc returns the non-negative cost of a single train reaching a single visit at time t.
// It is expected (but not verified) to be monotone non-decreasing in t.
type DelayCostFunc func(costType CostType, trainIdx, visitIdx int, t int32) uint32

// AggregateCostFunc returns the total cost of a complete schedule, indexed [trainIdx][visitIdx]
// with one trailing entry per train (see [Problem.Cost]).
type AggregateCostFunc func(schedule [][]int32, costType CostType) int32

// Problem is the complete read-only input to a DDD solve.
type Problem struct {
	Trains []Train
	// Conflicts lists pairs of resources that may not be occupied by different trains at
	// overlapping times. A pair (a, a) means the resource conflicts with itself (at most one
	// train may occupy it at a time).
	Conflicts []ConflictPair
	DelayCost DelayCostFunc
	Cost      AggregateCostFunc
}

// ConflictPair is a single (possibly self-) conflicting pair of resources.
type ConflictPair struct {
	A, B ResourceID
}

// NumVisits returns the total number of visits across all trains.
func (p *Problem) NumVisits() int {
	n := 0
	for _, t := range p.Trains {
		n += len(t.Visits)
	}
	return n
}

// VisitDelayCost is a convenience wrapper around [Problem.DelayCost] that returns 0 when no cost
// function was supplied, so callers need not nil-check.
func (p *Problem) VisitDelayCost(costType CostType, trainIdx, visitIdx int, t int32) uint32 {
	if p.DelayCost == nil {
		return 0
	}
	return p.DelayCost(costType, trainIdx, visitIdx, t)
}

// AggregateCost is a convenience wrapper around [Problem.Cost] that returns 0 when no cost
// function was supplied.
func (p *Problem) AggregateCost(schedule [][]int32, costType CostType) int32 {
	if p.Cost == nil {
		return 0
	}
	return p.Cost(schedule, costType)
}
