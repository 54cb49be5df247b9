package ddd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver/gini"
)

func twoTrainSharedResourceProblem() *problem.Problem {
	return &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
		},
		Conflicts: []problem.ConflictPair{{A: 0, B: 0}},
		DelayCost: problem.LinearDelayCost,
		Cost:      problem.LinearAggregateCost,
	}
}

// TestResourceConflictChoiceVarClauses exercises spec §8 scenario 3: two trains sharing a
// resource with no successor, both starting at time 0, deconflicted via choice-variable clauses
// (useChoiceVar=true) rather than the default plain disjunction. The solver must end up with the
// two trains at disjoint occupancy windows.
func TestResourceConflictChoiceVarClauses(t *testing.T) {
	old := useChoiceVar
	useChoiceVar = true
	defer func() { useChoiceVar = old }()

	p := twoTrainSharedResourceProblem()
	sched, err := Solve(context.Background(), p, gini.New(), DefaultConfig())
	assert.NoError(t, err)
	assert.Len(t, sched, 2)

	t1Start, t2Start := sched[0][0], sched[1][0]
	assert.NotEqual(t, t1Start, t2Start, "the two trains must not share the conflicting resource at the same time")

	t1End := t1Start + 5
	t2End := t2Start + 5
	disjoint := t1End <= t2Start || t2End <= t1Start
	assert.True(t, disjoint, "occupancy windows [%d,%d) and [%d,%d) must not overlap", t1Start, t1End, t2Start, t2End)
}

// TestGrowCostLadderChainsRungs confirms spec §8 invariant 4: Cost[0] is True, and every new rung
// k implies the rung below it.
func TestGrowCostLadderChainsRungs(t *testing.T) {
	s := gini.New()
	d := &driver{solver: s}
	occ := newOccupation(0)

	d.growCostLadder(occ, 3)
	assert.Len(t, occ.Cost, 4)
	assert.Equal(t, satsolver.True, occ.Cost[0])

	result, model := s.Solve(occ.Cost[3])
	assert.Equal(t, satsolver.Sat, result)
	for k := 1; k <= 3; k++ {
		assert.True(t, model.Value(occ.Cost[k]), "Cost[%d] must hold once Cost[3] is forced true", k)
	}
	assert.Len(t, d.budgetUnits, 3)
}
