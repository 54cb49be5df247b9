// Package ddd implements the Discrete-Delay Discretization scheduler: it builds a growing
// propositional encoding of train arrival times over a lazily discovered set of candidate
// time-points, refines it against a SAT model's incumbent schedule, and tightens a cost budget
// until the schedule is proven optimal, exhausted, or a wall-clock timeout is hit.
package ddd

import (
	"time"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

// BoundMode selects how the current upper bound is enforced against the budget totalizer.
type BoundMode int

const (
	// AddClauses asserts each tightened bound as a permanent unit clause (monotonically
	// tightening — the bound only ever gets stricter across the whole solve).
	AddClauses BoundMode = iota
	// Assumptions passes the bound as a transient assumption to a single Solve call, enabling a
	// binary-search probe between the current lower and upper bound.
	Assumptions
)

func (m BoundMode) String() string {
	if m == Assumptions {
		return "Assumptions"
	}
	return "AddClauses"
}

// PrecEncoding selects the travel-time precedence encoding.
type PrecEncoding int

const (
	// Plain encodes only the current incumbent's travel-time violation, one clause at a time.
	Plain PrecEncoding = iota
	// Scl (Sorted Compressed Ladder) encodes every ladder point of a visit against its
	// successor in one pass, falling back to pairwise clauses for small clusters.
	Scl
)

func (m PrecEncoding) String() string {
	if m == Scl {
		return "Scl"
	}
	return "Plain"
}

// SearchMode selects the outer optimization strategy.
type SearchMode int

const (
	// UbSearch tightens the upper bound by one after every feasible solution found, until the
	// solver reports UNSAT under the tightened bound (or the bounds cross), at which point the
	// last feasible solution is optimal.
	UbSearch SearchMode = iota
	// Invalid blocks each feasible incumbent with a clause forbidding its exact discrete
	// boundary and keeps enumerating distinct discretized solutions until UNSAT.
	Invalid
)

func (m SearchMode) String() string {
	if m == Invalid {
		return "Invalid"
	}
	return "UbSearch"
}

// Config holds the knobs spec'd in the external interface: everything a caller may vary between
// solves of the same problem shape.
type Config struct {
	CostType     problem.CostType
	Timeout      time.Duration
	BoundMode    BoundMode
	PrecEncoding PrecEncoding
	SearchMode   SearchMode
}

// DefaultConfig returns the configuration matching the original solver's shipped behavior:
// permanent tightening clauses, plain point-wise precedence, and UB-tightening search.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		BoundMode:    AddClauses,
		PrecEncoding: Plain,
		SearchMode:   UbSearch,
	}
}

// StatsSink receives one key/value pair per statistic. Called at least once, at the end of the
// solve (on timeout, optimal, or no-solution); a caller that wants only the final snapshot can
// collect into a map.
type StatsSink func(key string, value any)

// Action is a per-iteration debug event. It is a closed sum type: the unexported isAction method
// means only types declared in this package implement it, and TravelTimeConflict is currently the
// only variant.
type Action interface {
	isAction()
}

// TravelTimeConflict records a single travel-time violation the conflict refiner resolved in a
// given iteration.
type TravelTimeConflict struct {
	TrainIdx   int
	VisitIdx   int
	ResourceID problem.ResourceID
	TimeIn     int32
	TimeOut    int32
}

func (TravelTimeConflict) isAction() {}

// Event is the payload passed to a DebugSink once per driver iteration.
type Event struct {
	Iteration int
	Actions   []Action
	Solution  [][]int32
}

// DebugSink receives one Event per driver iteration. May be nil.
type DebugSink func(Event)
