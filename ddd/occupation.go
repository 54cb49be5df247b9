package ddd

import (
	"math"
	"sort"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
)

// VisitId is a dense handle for a (train, visit) pair, assigned in train-then-visit order: two
// consecutive visits of the same train have consecutive ids.
type VisitId uint32

// DelayPoint is one rung of an [Occupation]'s ladder: Lit abstracts "the chosen arrival time is >=
// T".
type DelayPoint struct {
	Lit satsolver.Lit
	T   int32
}

// Occupation is the monotone chain of candidate arrival time-points for a single visit, plus its
// parallel unit-weight cost ladder. See spec §3/§4.2.
type Occupation struct {
	// Delays is strictly increasing in T. Delays[0] is always (True, earliest); the last entry
	// is always (False, +Inf) as a sentinel.
	Delays []DelayPoint
	// Cost[0] is always True. Cost[k] for k>=1 means "realized cost of this visit's chosen
	// time-point is >= k".
	Cost []satsolver.Lit
	// IncumbentIdx is the index into Delays of the time currently selected by the SAT model:
	// Delays[IncumbentIdx].Lit is true and Delays[IncumbentIdx+1].Lit is false under that model.
	IncumbentIdx int
}

// infinity is the sentinel time for the ladder's trailing entry. int32 doesn't have an infinity,
// so the largest representable value stands in for it; no real arrival time in this domain can
// reach it.
const infinity = math.MaxInt32

// newOccupation builds the initial two-entry ladder for a visit with the given earliest-arrival
// bound.
func newOccupation(earliest int32) *Occupation {
	return &Occupation{
		Delays: []DelayPoint{
			{Lit: satsolver.True, T: earliest},
			{Lit: satsolver.False, T: infinity},
		},
		Cost:         []satsolver.Lit{satsolver.True},
		IncumbentIdx: 0,
	}
}

// Time returns the arrival time the occupation's incumbent index currently selects.
func (o *Occupation) Time() int32 {
	return o.Delays[o.IncumbentIdx].T
}

// timePoint implements spec §4.2: find or insert the ladder entry for time t, returning its
// literal and whether it was newly allocated. s is used to allocate a fresh variable when t is
// not already present.
func (o *Occupation) timePoint(s satsolver.Solver, t int32) (lit satsolver.Lit, isNew bool) {
	// idx is the leftmost index with Delays[idx].T >= t (a "partition point").
	idx := sort.Search(len(o.Delays), func(i int) bool { return o.Delays[i].T >= t })

	if idx == 0 {
		if o.Delays[0].T != t {
			panic("ddd: time_point precondition violated: cannot insert before earliest arrival")
		}
		return o.Delays[0].Lit, false
	}
	if idx == len(o.Delays) || t >= infinity {
		panic("ddd: time_point precondition violated: cannot insert at +infinity")
	}
	if o.Delays[idx].T == t {
		return o.Delays[idx].Lit, false
	}
	// o.Delays[idx-1].T < t < o.Delays[idx].T: insert a fresh rung between them.
	prev := o.Delays[idx-1]
	next := o.Delays[idx]
	v := s.NewVar().Pos()
	s.AddClause(v.Neg(), prev.Lit)  // v -> prev: chain continuity downward
	s.AddClause(next.Lit.Neg(), v) // next -> v: chain continuity upward

	o.Delays = append(o.Delays, DelayPoint{})
	copy(o.Delays[idx+1:], o.Delays[idx:])
	o.Delays[idx] = DelayPoint{Lit: v, T: t}
	return v, true
}
