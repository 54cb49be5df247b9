// Package verify independently rechecks a finished schedule against a [problem.Problem] using a
// second, unrelated SAT solver (github.com/crillab/gophersat). Package ddd's own search already
// proves feasibility as it goes; this package exists to catch driver bugs — an incumbent that the
// search reports as SAT but that does not actually satisfy the constraints it was solving for.
package verify

import (
	"fmt"

	"github.com/crillab/gophersat/solver"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

// Error describes a single constraint the candidate schedule violates.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "verify: " + e.Reason }

// Schedule checks sched (as returned by a completed ddd.Solve, shape [trainIdx][visitIdx]
// with one trailing arrival entry per train) against p. It first checks the arithmetic
// constraints directly, then independently re-encodes the resource-ordering decisions the
// schedule implies as a propositional problem and asks gophersat to confirm they are jointly
// satisfiable — if gophersat disagrees, the schedule was not actually a valid witness and ddd has
// a bug.
func Schedule(p *problem.Problem, sched [][]int32) error {
	if len(sched) != len(p.Trains) {
		return &Error{Reason: fmt.Sprintf("schedule has %d trains, problem has %d", len(sched), len(p.Trains))}
	}
	for t, train := range p.Trains {
		times := sched[t]
		if len(times) != len(train.Visits)+1 {
			return &Error{Reason: fmt.Sprintf("train %d: schedule has %d timepoints, want %d", t, len(times), len(train.Visits)+1)}
		}
		for i, v := range train.Visits {
			if times[i] < v.Earliest {
				return &Error{Reason: fmt.Sprintf("train %d visit %d: arrival %d before earliest %d", t, i, times[i], v.Earliest)}
			}
			if times[i+1] < times[i]+v.TravelTime {
				return &Error{Reason: fmt.Sprintf("train %d visit %d: departure %d violates travel time %d", t, i, times[i+1], v.TravelTime)}
			}
		}
	}

	occupants := occupantsByResource(p, sched)
	prob, orderVar, err := buildOrderingProblem(p, sched, occupants)
	if err != nil {
		return err
	}
	if len(orderVar) == 0 {
		return nil
	}
	s := solver.New(prob)
	if status := s.Solve(); status != solver.Sat {
		return &Error{Reason: fmt.Sprintf("resource ordering implied by the schedule is not jointly satisfiable (status %v)", status)}
	}
	return nil
}

type occupant struct {
	train, visit int
	start, end   int32
}

// occupantsByResource groups, for each resource, every (train, visit) that occupies it according
// to sched, along with the interval it occupies it for.
func occupantsByResource(p *problem.Problem, sched [][]int32) map[problem.ResourceID][]occupant {
	byRes := map[problem.ResourceID][]occupant{}
	conflicting := map[problem.ResourceID]bool{}
	for _, c := range p.Conflicts {
		conflicting[c.A] = true
		conflicting[c.B] = true
	}
	for t, train := range p.Trains {
		for i, v := range train.Visits {
			if !conflicting[v.ResourceID] {
				continue
			}
			byRes[v.ResourceID] = append(byRes[v.ResourceID], occupant{
				train: t, visit: i,
				start: sched[t][i], end: sched[t][i+1],
			})
		}
	}
	return byRes
}

// buildOrderingProblem builds one Boolean variable per ordered pair of occupants contending for a
// conflicting resource, meaning "the first occupant's interval ends before the second's starts",
// asserts it as a unit clause fixed to the direction the schedule actually used, and asserts that
// the two directions of the same pair are mutually exclusive — mirroring how the driver's own
// conflict encoding treats a resource conflict as a choice between two orderings.
func buildOrderingProblem(p *problem.Problem, sched [][]int32, byRes map[problem.ResourceID][]occupant) (*solver.Problem, map[[2]int]solver.Var, error) {
	var nextVar solver.Var
	orderVar := map[[2]int]solver.Var{}
	var constrs []solver.PBConstr

	key := func(t, v int) int { return t*1_000_000 + v }

	for _, conflict := range p.Conflicts {
		pairs := resourcePairs(byRes, conflict)
		for _, pr := range pairs {
			a, b := pr[0], pr[1]
			fwdKey := [2]int{key(a.train, a.visit), key(b.train, b.visit)}
			bwdKey := [2]int{key(b.train, b.visit), key(a.train, a.visit)}
			if _, ok := orderVar[fwdKey]; ok {
				continue
			}
			fwd := nextVar
			nextVar++
			bwd := nextVar
			nextVar++
			orderVar[fwdKey] = fwd
			orderVar[bwdKey] = bwd

			// Exactly the direction consistent with the candidate schedule may hold.
			if a.end <= b.start {
				constrs = append(constrs, solver.PropClause(int(fwd.Int())))
				constrs = append(constrs, solver.PropClause(-int(bwd.Int())))
			} else if b.end <= a.start {
				constrs = append(constrs, solver.PropClause(int(bwd.Int())))
				constrs = append(constrs, solver.PropClause(-int(fwd.Int())))
			} else {
				return nil, nil, &Error{Reason: fmt.Sprintf(
					"resource conflict (%d,%d): train %d visit %d [%d,%d) overlaps train %d visit %d [%d,%d)",
					conflict.A, conflict.B, a.train, a.visit, a.start, a.end, b.train, b.visit, b.start, b.end)}
			}
			constrs = append(constrs, solver.AtMost([]int{int(fwd.Int()), int(bwd.Int())}, 1))
		}
	}
	if len(constrs) == 0 {
		return nil, orderVar, nil
	}
	return solver.ParsePBConstrs(constrs), orderVar, nil
}

// resourcePairs returns every pair of occupants that must be ordered because they occupy
// resources named by a single [problem.ConflictPair].
func resourcePairs(byRes map[problem.ResourceID][]occupant, c problem.ConflictPair) [][2]occupant {
	as := byRes[c.A]
	var pairs [][2]occupant
	if c.A == c.B {
		for i := range as {
			for j := i + 1; j < len(as); j++ {
				pairs = append(pairs, [2]occupant{as[i], as[j]})
			}
		}
		return pairs
	}
	bs := byRes[c.B]
	for _, a := range as {
		for _, b := range bs {
			if a.train == b.train {
				continue
			}
			pairs = append(pairs, [2]occupant{a, b})
		}
	}
	return pairs
}
