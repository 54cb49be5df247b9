package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

func TestPushPastConflictsNoOverlap(t *testing.T) {
	got := pushPastConflicts(10, 5, [][2]int32{{0, 3}, {20, 25}})
	assert.Equal(t, int32(10), got, "an interval with no overlap should not move")
}

func TestPushPastConflictsSkipsPastEachOverlap(t *testing.T) {
	got := pushPastConflicts(0, 5, [][2]int32{{0, 3}, {3, 8}})
	assert.Equal(t, int32(8), got)
}

func TestConflictSetsSymmetricAndDeduped(t *testing.T) {
	p := &problem.Problem{
		Conflicts: []problem.ConflictPair{{A: 0, B: 1}, {A: 1, B: 0}, {A: 1, B: 2}},
	}
	sets := conflictSets(p)
	assert.ElementsMatch(t, []problem.ResourceID{1}, sets[0])
	assert.ElementsMatch(t, []problem.ResourceID{0, 2}, sets[1])
	assert.ElementsMatch(t, []problem.ResourceID{1}, sets[2])
}

func TestConflictSetsIgnoresSelfConflicts(t *testing.T) {
	p := &problem.Problem{Conflicts: []problem.ConflictPair{{A: 0, B: 0}}}
	sets := conflictSets(p)
	assert.Empty(t, sets[0])
}

func TestGreedyScheduleRespectsEarliestAndTravelTime(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 2, TravelTime: 3}, {ResourceID: 1, Earliest: 0, TravelTime: 1}}},
		},
	}
	sched := greedySchedule(p, nil)
	assert.Equal(t, Schedule{{2, 5, 6}}, sched)
}

func TestGreedyScheduleAvoidsResourceConflicts(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
		},
		Conflicts: []problem.ConflictPair{{A: 0, B: 0}},
	}
	sched := greedySchedule(p, nil)
	assert.Len(t, sched, 2)

	start0, start1 := sched[0][0], sched[1][0]
	end0, end1 := start0+5, start1+5
	disjoint := end0 <= start1 || end1 <= start0
	assert.True(t, disjoint, "conflicting trains must not overlap: [%d,%d) vs [%d,%d)", start0, end0, start1, end1)
}
