package problem

import (
	"encoding/json"
	"fmt"
	"io"
)

// wireVisit is the on-disk shape of a single [Visit].
type wireVisit struct {
	Resource   ResourceID `json:"resource"`
	Earliest   int32      `json:"earliest"`
	TravelTime int32      `json:"travel_time"`
}

// wireConflict is the on-disk shape of a single [ConflictPair].
type wireConflict struct {
	A ResourceID `json:"a"`
	B ResourceID `json:"b"`
}

// wireProblem is the on-disk shape a [Problem] is loaded from: trains and conflicts only, since
// [DelayCostFunc]/[AggregateCostFunc] are Go closures with no JSON representation and are always
// filled in by the caller after loading.
type wireProblem struct {
	Trains    [][]wireVisit  `json:"trains"`
	Conflicts []wireConflict `json:"conflicts"`
}

// Load decodes a [Problem] from r in the wire JSON format (see wireProblem). DelayCost and Cost
// are left nil; callers typically set them to [LinearDelayCost] and [LinearAggregateCost], or to
// a domain-specific cost model, before passing the result to ddd.Solve.
func Load(r io.Reader) (*Problem, error) {
	var w wireProblem
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, fmt.Errorf("problem: failed to decode JSON: %w", err)
	}
	p := &Problem{
		Trains:    make([]Train, len(w.Trains)),
		Conflicts: make([]ConflictPair, len(w.Conflicts)),
	}
	for i, visits := range w.Trains {
		train := Train{Visits: make([]Visit, len(visits))}
		for j, v := range visits {
			train.Visits[j] = Visit{ResourceID: v.Resource, Earliest: v.Earliest, TravelTime: v.TravelTime}
		}
		p.Trains[i] = train
	}
	for i, c := range w.Conflicts {
		p.Conflicts[i] = ConflictPair{A: c.A, B: c.B}
	}
	return p, nil
}

// LinearDelayCost is the default [DelayCostFunc]: a total-completion-time objective, where the
// cost of a train occupying a visit at time t is simply t (later is always worse, with no grace
// period). costType is ignored.
func LinearDelayCost(_ CostType, _, _ int, t int32) uint32 {
	if t < 0 {
		return 0
	}
	return uint32(t)
}

// LinearAggregateCost is the default [AggregateCostFunc] paired with [LinearDelayCost]: the sum,
// over every visit of every train, of that visit's own arrival time. costType is ignored.
//
// It deliberately excludes each train's trailing completion entry (arrival + travel time of the
// last visit): [DelayCostFunc] only ever prices a visit's own arrival, so a trailing entry counted
// here would price time the cost ladder never encodes, letting the upper bound chase a number the
// SAT encoding can't actually constrain and spin forever.
func LinearAggregateCost(schedule [][]int32, _ CostType) int32 {
	var total int32
	for _, times := range schedule {
		if len(times) == 0 {
			continue
		}
		for _, t := range times[:len(times)-1] {
			total += t
		}
	}
	return total
}
