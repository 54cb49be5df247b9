package ddd

// useCostTree selects a sort-network style weighted totalizer instead of per-visit unit-weight
// cost ladders. Left unimplemented per spec §9 — the codebase always uses the unit-weight ladder
// below.
const useCostTree = false

// encodeCost implements spec §4.5: drain the staged ladder points from this iteration's conflict
// pass, compute each one's realized delay cost, extend its occupation's cost ladder to cover that
// cost, and anchor the new time-point literal to the appropriate cost rung.
func (d *driver) encodeCost() {
	staged := d.staged
	d.staged = nil

	for _, sp := range staged {
		ref := d.visitOf[sp.visit]
		cost := int32(d.problem.VisitDelayCost(d.cfg.CostType, ref.trainIdx, ref.visitIdx, sp.t))
		if cost == 0 {
			continue
		}
		occ := d.occupations[sp.visit]
		d.growCostLadder(occ, cost)
		d.solver.AddClause(sp.lit.Neg(), occ.Cost[cost])
	}
}

// growCostLadder extends occ's cost ladder, if needed, so that occ.Cost[cost] exists, chaining
// each new rung to the one below it (Cost[k] -> Cost[k-1]) and registering it as a unit-weight
// budget term.
func (d *driver) growCostLadder(occ *Occupation, cost int32) {
	for int32(len(occ.Cost)) <= cost {
		k := len(occ.Cost)
		v := d.solver.NewVar().Pos()
		d.solver.AddClause(v.Neg(), occ.Cost[k-1])
		occ.Cost = append(occ.Cost, v)
		d.budgetUnits = append(d.budgetUnits, v)
	}
}
