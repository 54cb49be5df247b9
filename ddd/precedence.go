package ddd

import (
	"sort"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
)

// sclPairwiseThreshold and seedSclFromEarliest are the design constants spec §9 calls out as
// experimentation knobs, not user-facing flags.
const (
	sclPairwiseThreshold = 5
	seedSclFromEarliest  = true
)

// encodePrecedencePlain implements the Plain variant of spec §4.3: insert reqT into the
// successor occupation's ladder and add the single implication inLit -> reqVar. Called only for
// the current incumbent's travel-time violation; future violations refine further as the
// incumbent moves. If reqT was newly allocated, it is staged for cost encoding.
func (d *driver) encodePrecedencePlain(successor VisitId, inLit satsolver.Lit, reqT int32) {
	occ := d.occupations[successor]
	reqVar, isNew := occ.timePoint(d.solver, reqT)
	d.solver.AddClause(inLit.Neg(), reqVar)
	if isNew {
		d.staged = append(d.staged, stagedPoint{visit: successor, lit: reqVar, t: reqT})
	}
}

// sclEncodeRow implements the Scl variant of spec §4.3: enforce the implication from (inLit,
// inT) on visit to visit's same-train successor at inT+travelTime, exactly once per (visit, inT)
// pair (idempotence via sclFixedPrecRows).
func (d *driver) sclEncodeRow(visit VisitId, inLit satsolver.Lit, inT int32) {
	ref := d.visitOf[visit]
	ids := d.trainVisitIDs[ref.trainIdx]
	if ref.visitIdx+1 >= len(ids) {
		return // last visit of its train has no successor to constrain
	}
	row := sclRow{visit: visit, t: inT}
	if d.sclFixedPrecRows[row] {
		return
	}
	d.sclFixedPrecRows[row] = true

	travel := d.problem.Trains[ref.trainIdx].Visits[ref.visitIdx].TravelTime
	reqT := inT + travel
	successor := ids[ref.visitIdx+1]
	occ := d.occupations[successor]

	idx := sort.Search(len(occ.Delays), func(i int) bool { return occ.Delays[i].T >= reqT })
	// The pairwise chain only applies when idx already names a concrete rung at exactly reqT: if
	// it names the trailing +Inf sentinel instead (no rung has reached reqT yet), chaining into it
	// would force an always-false literal true whenever inLit holds, so fall through to inserting
	// a real rung instead.
	if idx < len(occ.Delays) && occ.Delays[idx].T == reqT && idx <= sclPairwiseThreshold {
		for j := 0; j < idx; j++ {
			// inLit && lit_j -> lit_{j+1}, i.e. ¬inLit ∨ ¬lit_j ∨ lit_{j+1}
			d.solver.AddClause(inLit.Neg(), occ.Delays[j].Lit.Neg(), occ.Delays[j+1].Lit)
		}
		return
	}
	reqVar, isNew := occ.timePoint(d.solver, reqT)
	d.solver.AddClause(inLit.Neg(), reqVar)
	if isNew {
		d.staged = append(d.staged, stagedPoint{visit: successor, lit: reqVar, t: reqT})
	}
}
