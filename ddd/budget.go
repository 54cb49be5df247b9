package ddd

import "github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"

// applyBudget implements spec §4.6: grow the totalizer over budgetUnits to cover the current
// target bound, then either add a permanent unit clause (AddClauses) or append an assumption
// literal (Assumptions) forbidding cost > targetUB. It reports the bound actually enforced, and
// whether a bound was enforced at all: false when targetUB is negative, when there are no cost
// terms yet, or when targetUB already covers every budget unit, since in the last two cases every
// feasible schedule trivially satisfies the budget.
func (d *driver) applyBudget(assumptions *[]satsolver.Lit) (targetUB int32, haveBound bool) {
	targetUB = d.upperBound
	if d.cfg.BoundMode == Assumptions {
		targetUB = (d.lowerBound + d.upperBound) / 2
	}
	if targetUB < 0 || len(d.budgetUnits) == 0 {
		return targetUB, false
	}

	d.ensureBudgetTotalizer(targetUB)

	k := int(targetUB) + 1
	if k > d.budgetTot.MaxBound() {
		// targetUB >= len(budgetUnits): every feasible schedule already satisfies cost <=
		// targetUB, so there is nothing to assert.
		return targetUB, false
	}
	bound := d.budgetTot.AtLeast(k).Neg() // not (cost >= targetUB+1), i.e. cost <= targetUB

	switch d.cfg.BoundMode {
	case Assumptions:
		*assumptions = append(*assumptions, bound)
	default: // AddClauses
		if !d.hasLastAddedBound || targetUB != d.lastAddedBound {
			d.solver.AddClause(bound)
			d.lastAddedBound = targetUB
			d.hasLastAddedBound = true
		}
	}
	return targetUB, true
}

// ensureBudgetTotalizer keeps the cardinality network sized for targetUB+1 and fed with every
// budget unit literal seen so far, rebuilding from scratch whenever targetUB+1 exceeds the
// MaxBound the existing network reported when it was built (the smaller of its cap and its input
// count at that time).
func (d *driver) ensureBudgetTotalizer(targetUB int32) {
	neededCap := int(targetUB) + 1
	if d.budgetTot == nil || neededCap > d.budgetTotMaxBound {
		d.budgetTot = d.cardFac(d.solver, neededCap)
		d.budgetTot.Add(d.budgetUnits...)
		d.budgetTotLen = len(d.budgetUnits)
		d.budgetTotMaxBound = d.budgetTot.MaxBound()
		return
	}
	if len(d.budgetUnits) > d.budgetTotLen {
		d.budgetTot.Add(d.budgetUnits[d.budgetTotLen:]...)
		d.budgetTotLen = len(d.budgetUnits)
	}
}
