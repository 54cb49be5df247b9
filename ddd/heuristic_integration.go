package ddd

// pollHeuristic implements spec §5's heuristic-injection step: drain every candidate schedule the
// heuristic worker has ready, without blocking, and for each one inject its time-points into the
// relevant ladders and use it to tighten the incumbent bound the same way a SAT-proven solution
// would.
func (d *driver) pollHeuristic() {
	if d.heuristic == nil {
		return
	}
	for {
		sched, ok := d.heuristic.Poll()
		if !ok {
			return
		}

		for t, times := range sched {
			ids := d.trainVisitIDs[t]
			for v, id := range ids {
				if v >= len(times) {
					break
				}
				occ := d.occupations[id]
				lit, isNew := occ.timePoint(d.solver, times[v])
				if isNew {
					d.staged = append(d.staged, stagedPoint{visit: id, lit: lit, t: times[v]})
				}
				d.touchedIntervals = d.pushTouched(d.touchedIntervals, id)
			}
		}

		cost := d.problem.AggregateCost(sched, d.cfg.CostType)
		if d.bestSol == nil || cost < d.bestSol.cost {
			d.bestSol = &bestSolution{cost: cost, schedule: sched}
		}
		if d.cfg.SearchMode == UbSearch {
			newUB := cost - 1
			if !d.hasUpperBound || newUB < d.upperBound {
				d.upperBound = newUB
				d.hasUpperBound = true
			}
		}
	}
}

// offerToHeuristic hands the current incumbent to the heuristic worker so it can warm-start its
// next greedy pass from it.
func (d *driver) offerToHeuristic() {
	if d.heuristic == nil {
		return
	}
	d.heuristic.Offer(d.extractSchedule())
}
