package ddd

import (
	"context"
	"time"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/heuristic"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
)

// visitRef is the inverse of trainVisitIDs: which (train, visit) a VisitId names.
type visitRef struct {
	trainIdx, visitIdx int
}

// sclRow is one entry of scl_fixed_prec_rows: a (visit, time) pair already encoded by the SCL
// precedence encoder, kept for idempotence.
type sclRow struct {
	visit VisitId
	t     int32
}

// stagedPoint is a newly allocated ladder point awaiting cost encoding (component D consumes
// these once per iteration, after the conflict pass has run).
type stagedPoint struct {
	visit VisitId
	lit   satsolver.Lit
	t     int32
}

// bestSolution is the driver's best-known feasible schedule, monotonically improving.
type bestSolution struct {
	cost     int32
	schedule [][]int32
}

// driver owns every piece of mutable state in §3's "Global state": it is single-threaded
// cooperative, per §5, and is never touched from any other goroutine.
type driver struct {
	problem *problem.Problem
	cfg     Config
	solver  satsolver.Solver
	cardFac satsolver.CardinalityFactory

	occupations   []*Occupation // indexed by VisitId
	trainVisitIDs [][]VisitId   // [trainIdx][visitIdx] -> VisitId
	visitOf       map[VisitId]visitRef

	resourceVisits map[problem.ResourceID][]VisitId
	conflicts      map[problem.ResourceID][]problem.ResourceID

	touchedIntervals []VisitId

	conflictVars map[[2]VisitId]satsolver.Lit

	sclFixedPrecRows map[sclRow]bool

	staged []stagedPoint

	bestSol       *bestSolution
	lowerBound    int32
	upperBound    int32
	hasUpperBound bool

	budgetUnits       []satsolver.Lit
	budgetTot         satsolver.Cardinality
	budgetTotLen      int
	budgetTotMaxBound int
	lastAddedBound    int32
	hasLastAddedBound bool

	heuristic heuristic.Worker

	stats     statCounters
	statsSink StatsSink
	debugSink DebugSink

	start      time.Time
	solverTime time.Duration
}

// statCounters mirrors original_source's SolveStats: internal bookkeeping, some of which (n_sat,
// n_unsat) has no entry in the §6 stats key list and is only counted, never reported or read.
type statCounters struct {
	iteration              int
	objectiveIters         int
	travelIters            int
	resourceIters          int
	travelAndResourceIters int
	nTravel                int
	nConflict              int
	nSat                   int
	nUnsat                 int
}

// Option configures a [Solve] call.
type Option func(*driver)

// WithHeuristic attaches a heuristic worker; without this option the driver runs with no
// heuristic input at all (spec §7's "heuristic dead or drained" degrades gracefully to the same
// code path).
func WithHeuristic(w heuristic.Worker) Option {
	return func(d *driver) { d.heuristic = w }
}

// WithStatsSink attaches a callback invoked once, at the end of the solve, with every stat key
// spec §6 lists.
func WithStatsSink(sink StatsSink) Option {
	return func(d *driver) { d.statsSink = sink }
}

// WithDebugSink attaches a callback invoked once per driver iteration.
func WithDebugSink(sink DebugSink) Option {
	return func(d *driver) { d.debugSink = sink }
}

// WithCardinalityFactory overrides the default sequential-counter budget encoder, e.g. to use a
// backend-specific cardinality network.
func WithCardinalityFactory(f satsolver.CardinalityFactory) Option {
	return func(d *driver) { d.cardFac = f }
}

// Solve runs the DDD loop to completion: optimal schedule, [ErrNoSolution], or [ErrTimeout].
func Solve(ctx context.Context, p *problem.Problem, s satsolver.Solver, cfg Config, opts ...Option) ([][]int32, error) {
	d := &driver{
		problem:          p,
		cfg:              cfg,
		solver:           s,
		cardFac:          satsolver.NewSeqCounter,
		visitOf:          map[VisitId]visitRef{},
		resourceVisits:   map[problem.ResourceID][]VisitId{},
		conflicts:        map[problem.ResourceID][]problem.ResourceID{},
		conflictVars:     map[[2]VisitId]satsolver.Lit{},
		sclFixedPrecRows: map[sclRow]bool{},
		upperBound:       infinity,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.init()
	return d.run(ctx)
}

// init materializes one Occupation per visit and the symmetric conflict adjacency, per spec
// §4.7's initialization step.
func (d *driver) init() {
	d.trainVisitIDs = make([][]VisitId, len(d.problem.Trains))
	var next VisitId
	for t, train := range d.problem.Trains {
		ids := make([]VisitId, len(train.Visits))
		for v, visit := range train.Visits {
			id := next
			next++
			ids[v] = id
			d.visitOf[id] = visitRef{trainIdx: t, visitIdx: v}
			occ := newOccupation(visit.Earliest)
			d.occupations = append(d.occupations, occ)
			d.resourceVisits[visit.ResourceID] = append(d.resourceVisits[visit.ResourceID], id)
			d.touchedIntervals = d.pushTouched(d.touchedIntervals, id)
			d.staged = append(d.staged, stagedPoint{visit: id, lit: occ.Delays[0].Lit, t: visit.Earliest})
		}
		d.trainVisitIDs[t] = ids
	}
	for _, c := range d.problem.Conflicts {
		if c.A == c.B {
			d.conflicts[c.A] = append(d.conflicts[c.A], c.A)
		} else {
			d.conflicts[c.A] = append(d.conflicts[c.A], c.B)
			d.conflicts[c.B] = append(d.conflicts[c.B], c.A)
		}
	}
	if d.cfg.PrecEncoding == Scl && seedSclFromEarliest {
		for id, occ := range d.occupations {
			d.sclEncodeRow(VisitId(id), occ.Delays[0].Lit, occ.Delays[0].T)
		}
	}
}

// pushTouched appends id to the worklist unless it is already the last entry, per spec §3's
// "deduplicated by last-element check when re-appending" — deliberately cheap, not a full set.
func (d *driver) pushTouched(worklist []VisitId, id VisitId) []VisitId {
	if len(worklist) > 0 && worklist[len(worklist)-1] == id {
		return worklist
	}
	return append(worklist, id)
}

// run is the main loop of spec §4.7.
func (d *driver) run(ctx context.Context) ([][]int32, error) {
	d.start = time.Now()
	var lastSat bool
	var assumptions []satsolver.Lit

	for {
		d.stats.iteration++

		if d.cfg.Timeout > 0 && time.Since(d.start) > d.cfg.Timeout {
			d.emitStats()
			return nil, ErrTimeout
		}
		select {
		case <-ctx.Done():
			d.emitStats()
			return nil, ctx.Err()
		default:
		}

		if lastSat {
			d.pollHeuristic()
			d.offerToHeuristic()
		}

		terminalSchedule := d.conflictPass()
		if terminalSchedule != nil {
			d.emitStats()
			return terminalSchedule, nil
		}

		d.encodeCost()

		assumptions = assumptions[:0]
		var targetUB int32
		haveBound := false
		if d.hasUpperBound {
			if d.upperBound < d.lowerBound {
				if d.bestSol != nil {
					d.emitStats()
					return d.bestSol.schedule, nil
				}
				d.emitStats()
				return nil, ErrNoSolution
			}
			targetUB, haveBound = d.applyBudget(&assumptions)
		}

		solveStart := time.Now()
		result, model := d.solver.Solve(assumptions...)
		d.solverTime += time.Since(solveStart)

		switch result {
		case satsolver.Sat:
			d.stats.nSat++
			lastSat = true
			d.updateIncumbents(model)
		case satsolver.Unsat:
			d.stats.nUnsat++
			lastSat = false
			switch d.cfg.SearchMode {
			case Invalid:
				if d.bestSol != nil {
					d.emitStats()
					return d.bestSol.schedule, nil
				}
				d.emitStats()
				return nil, ErrNoSolution
			default: // UbSearch
				if haveBound {
					d.lowerBound = targetUB + 1
					if d.upperBound < d.lowerBound {
						if d.bestSol != nil {
							d.emitStats()
							return d.bestSol.schedule, nil
						}
						d.emitStats()
						return nil, ErrNoSolution
					}
				} else {
					d.emitStats()
					return nil, ErrNoSolution
				}
			}
		default:
			d.emitStats()
			return nil, ErrNoSolution
		}
	}
}

// updateIncumbents implements spec §4.7 step 6's SAT branch: for every occupation, walk the
// incumbent index right while the next point is true, then left while the current point is
// false, and stage the visit (and its same-train predecessor) on the worklist if it moved.
func (d *driver) updateIncumbents(model satsolver.Model) {
	for id := range d.occupations {
		occ := d.occupations[id]
		before := occ.IncumbentIdx
		for occ.IncumbentIdx+1 < len(occ.Delays) && model.Value(occ.Delays[occ.IncumbentIdx+1].Lit) {
			occ.IncumbentIdx++
		}
		for occ.IncumbentIdx > 0 && !model.Value(occ.Delays[occ.IncumbentIdx].Lit) {
			occ.IncumbentIdx--
		}
		if occ.IncumbentIdx != before {
			vid := VisitId(id)
			d.touchedIntervals = d.pushTouched(d.touchedIntervals, vid)
			if ref := d.visitOf[vid]; ref.visitIdx > 0 {
				prev := d.trainVisitIDs[ref.trainIdx][ref.visitIdx-1]
				d.touchedIntervals = d.pushTouched(d.touchedIntervals, prev)
			}
		}
	}
}

// extractSchedule builds the [train][visit] schedule (with the trailing last_arrival+travel_time
// entry per train) from the current incumbent indices.
func (d *driver) extractSchedule() [][]int32 {
	sched := make([][]int32, len(d.trainVisitIDs))
	for t, ids := range d.trainVisitIDs {
		times := make([]int32, len(ids)+1)
		var last int32
		for i, id := range ids {
			occ := d.occupations[id]
			times[i] = occ.Time()
			last = times[i] + d.problem.Trains[t].Visits[i].TravelTime
		}
		times[len(ids)] = last
		sched[t] = times
	}
	return sched
}

// emitStats reports every key spec §6 lists, preserving the original's num_conflicts/n_travel
// mis-copy verbatim — see DESIGN.md.
func (d *driver) emitStats() {
	if d.statsSink == nil {
		return
	}
	var ub any = "+Inf"
	if d.bestSol != nil {
		ub = d.bestSol.cost
	} else if d.hasUpperBound {
		ub = d.upperBound
	}
	total := time.Since(d.start)
	d.statsSink("iterations", d.stats.iteration)
	d.statsSink("objective_iters", d.stats.objectiveIters)
	d.statsSink("travel_iters", d.stats.travelIters)
	d.statsSink("resource_iters", d.stats.resourceIters)
	d.statsSink("travel_and_resource_iters", d.stats.travelAndResourceIters)
	d.statsSink("num_traveltime", d.stats.nTravel)
	d.statsSink("num_conflicts", d.stats.nTravel) // mis-copy preserved verbatim, see DESIGN.md
	d.statsSink("num_time_points", d.totalTimePoints())
	d.statsSink("max_time_points", d.maxTimePoints())
	d.statsSink("avg_time_points", d.avgTimePoints())
	d.statsSink("total_time", total)
	d.statsSink("solver_time", d.solverTime)
	d.statsSink("algorithm_time", total-d.solverTime)
	d.statsSink("lb", d.lowerBound)
	d.statsSink("ub", ub)
}

// timePoints returns the number of actually discovered time points in occ, excluding the trailing
// (False, +Inf) sentinel rung that every [Occupation] carries but that was never discovered.
func timePoints(occ *Occupation) int {
	return len(occ.Delays) - 1
}

func (d *driver) totalTimePoints() int {
	n := 0
	for _, occ := range d.occupations {
		n += timePoints(occ)
	}
	return n
}

func (d *driver) maxTimePoints() int {
	n := 0
	for _, occ := range d.occupations {
		if tp := timePoints(occ); tp > n {
			n = tp
		}
	}
	return n
}

func (d *driver) avgTimePoints() float64 {
	if len(d.occupations) == 0 {
		return 0
	}
	return float64(d.totalTimePoints()) / float64(len(d.occupations))
}
