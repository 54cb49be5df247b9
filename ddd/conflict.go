package ddd

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
)

// useChoiceVar selects the conflict-clause form. The original solver codes both variants but
// ships with this false (plain disjunction) — kept as-is, see DESIGN.md. A var rather than a
// const so package-internal tests can exercise the choice-variable branch without a public config
// knob spec §6 never lists.
var useChoiceVar = false

// trainPair is an ordered pair of train indices, used to key the per-iteration
// deconflictedTrainPairs set.
type trainPair struct{ a, b int }

// conflictPass implements spec §4.4: the travel-time pass, then the resource pass, then the
// no-conflict (feasible incumbent) handling. It returns a non-nil schedule only when the search
// is already provably optimal or exhausted and the driver should stop without another SAT call.
func (d *driver) conflictPass() (terminalSchedule [][]int32) {
	var actions []Action
	foundTravel := d.travelTimePass(&actions)
	foundResource := d.resourcePass()

	switch {
	case foundTravel && foundResource:
		d.stats.travelAndResourceIters++
	case foundTravel:
		d.stats.travelIters++
	case foundResource:
		d.stats.resourceIters++
	default:
		d.stats.objectiveIters++
	}

	sol := d.extractSchedule()
	if d.debugSink != nil {
		d.debugSink(Event{Iteration: d.stats.iteration, Actions: actions, Solution: sol})
	}

	if foundTravel || foundResource {
		return nil
	}

	// No conflicts: the incumbent is a feasible schedule for the current discretization.
	cost := d.problem.AggregateCost(sol, d.cfg.CostType)
	if d.bestSol == nil || cost < d.bestSol.cost {
		d.bestSol = &bestSolution{cost: cost, schedule: sol}
	}

	switch d.cfg.SearchMode {
	case Invalid:
		d.addBlockingClause()
	default: // UbSearch
		newUB := cost - 1
		if !d.hasUpperBound || newUB < d.upperBound {
			d.upperBound = newUB
			d.hasUpperBound = true
		}
		if d.upperBound < d.lowerBound {
			return d.bestSol.schedule
		}
	}
	return nil
}

// travelTimePass implements spec §4.4's travel-time pass.
func (d *driver) travelTimePass(actions *[]Action) bool {
	found := false
	for _, visitId := range d.touchedIntervals {
		ref := d.visitOf[visitId]
		ids := d.trainVisitIDs[ref.trainIdx]
		if ref.visitIdx+1 >= len(ids) {
			continue
		}
		nextVisit := ids[ref.visitIdx+1]
		visit := d.problem.Trains[ref.trainIdx].Visits[ref.visitIdx]
		occ := d.occupations[visitId]
		t1In := occ.Time()
		t1Out := d.occupations[nextVisit].Time()

		if t1In+visit.TravelTime > t1Out {
			found = true
			d.stats.nTravel++
			*actions = append(*actions, TravelTimeConflict{
				TrainIdx: ref.trainIdx, VisitIdx: ref.visitIdx,
				ResourceID: visit.ResourceID, TimeIn: t1In, TimeOut: t1Out,
			})

			newT := t1In + visit.TravelTime
			if d.cfg.PrecEncoding == Scl {
				// Every rung except the trailing (False, +Inf) sentinel, which is never selected.
				for _, dp := range occ.Delays[:len(occ.Delays)-1] {
					d.sclEncodeRow(visitId, dp.Lit, dp.T)
				}
			} else {
				inLit := occ.Delays[occ.IncumbentIdx].Lit
				d.encodePrecedencePlain(nextVisit, inLit, newT)
			}
		}
	}
	return found
}

// resourcePass implements spec §4.4's resource pass: filters touchedIntervals in place, retaining
// entries whose conflicts could not be fully resolved this iteration.
func (d *driver) resourcePass() bool {
	found := false
	deconflicted := mapset.NewThreadUnsafeSet[trainPair]()
	kept := d.touchedIntervals[:0:0]

	for _, visitId := range d.touchedIntervals {
		ref := d.visitOf[visitId]
		visit := d.problem.Trains[ref.trainIdx].Visits[ref.visitIdx]
		t1In := d.occupations[visitId].Time()
		retain := false

		nextVisit, hasNext := d.successor(visitId)
		var t1Out int32
		if hasNext {
			t1Out = d.occupations[nextVisit].Time()
		} else {
			t1Out = t1In + visit.TravelTime
		}

		for _, otherResource := range d.conflicts[visit.ResourceID] {
			for _, otherVisit := range d.resourceVisits[otherResource] {
				if otherVisit == visitId {
					continue
				}
				otherRef := d.visitOf[otherVisit]
				if otherRef.trainIdx == ref.trainIdx {
					continue
				}
				t2In := d.occupations[otherVisit].Time()
				otherNext, otherHasNext := d.successor(otherVisit)
				var t2Out int32
				if otherHasNext {
					t2Out = d.occupations[otherNext].Time()
				} else {
					t2Out = t2In + d.problem.Trains[otherRef.trainIdx].Visits[otherRef.visitIdx].TravelTime
				}

				if t1Out <= t2In || t2Out <= t1In {
					continue
				}

				ins1 := deconflicted.Add(trainPair{ref.trainIdx, otherRef.trainIdx})
				ins2 := deconflicted.Add(trainPair{otherRef.trainIdx, ref.trainIdx})
				if !ins1 || !ins2 {
					retain = true
					continue
				}

				found = true
				d.stats.nConflict++

				delayT2, t2IsNew := d.occupations[otherVisit].timePoint(d.solver, t1Out)
				delayT1, t1IsNew := d.occupations[visitId].timePoint(d.solver, t2Out)
				if t1IsNew {
					d.staged = append(d.staged, stagedPoint{visit: visitId, lit: delayT1, t: t2Out})
				}
				if t2IsNew {
					d.staged = append(d.staged, stagedPoint{visit: otherVisit, lit: delayT2, t: t1Out})
				}
				if d.cfg.PrecEncoding == Scl {
					d.sclEncodeRow(visitId, delayT1, t2Out)
					d.sclEncodeRow(otherVisit, delayT2, t1Out)
				}

				t1OutLit := satsolver.True
				if hasNext {
					nextOcc := d.occupations[nextVisit]
					t1OutLit = nextOcc.Delays[nextOcc.IncumbentIdx].Lit
				}
				t2OutLit := satsolver.True
				if otherHasNext {
					otherOcc := d.occupations[otherNext]
					t2OutLit = otherOcc.Delays[otherOcc.IncumbentIdx].Lit
				}

				if useChoiceVar {
					key := [2]VisitId{visitId, otherVisit}
					choose, ok := d.conflictVars[key]
					if !ok {
						choose = d.solver.NewVar().Pos()
						d.conflictVars[key] = choose
						d.conflictVars[[2]VisitId{otherVisit, visitId}] = choose.Neg()
					}
					d.solver.AddClause(choose.Neg(), t1OutLit.Neg(), delayT2)
					d.solver.AddClause(choose, t2OutLit.Neg(), delayT1)
				} else {
					d.solver.AddClause(t1OutLit.Neg(), t2OutLit.Neg(), delayT1, delayT2)
				}
			}
		}

		if retain {
			kept = append(kept, visitId)
		}
	}
	d.touchedIntervals = kept
	return found
}

// successor returns the same-train next visit of id, if any.
func (d *driver) successor(id VisitId) (VisitId, bool) {
	ref := d.visitOf[id]
	ids := d.trainVisitIDs[ref.trainIdx]
	if ref.visitIdx+1 >= len(ids) {
		return 0, false
	}
	return ids[ref.visitIdx+1], true
}

// addBlockingClause implements spec §4.4's Invalid-mode handling: forbid the exact incumbent
// boundary of every occupation, so the solver is forced to find a different discretized solution.
func (d *driver) addBlockingClause() {
	var clause []satsolver.Lit
	for _, occ := range d.occupations {
		k := occ.IncumbentIdx
		clause = append(clause, occ.Delays[k].Lit.Neg())
		if k+1 < len(occ.Delays) {
			clause = append(clause, occ.Delays[k+1].Lit)
		}
	}
	if len(clause) == 0 {
		return
	}
	d.solver.AddClause(clause...)
}
