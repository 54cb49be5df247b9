package verify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/verify"
)

func trainProblem(conflicts ...problem.ConflictPair) *problem.Problem {
	return &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
		},
		Conflicts: conflicts,
	}
}

func TestScheduleAcceptsFeasibleNonOverlappingSchedule(t *testing.T) {
	p := trainProblem(problem.ConflictPair{A: 0, B: 0})
	err := verify.Schedule(p, [][]int32{{0, 5}, {5, 10}})
	assert.NoError(t, err)
}

func TestScheduleRejectsOverlappingOccupancy(t *testing.T) {
	p := trainProblem(problem.ConflictPair{A: 0, B: 0})
	err := verify.Schedule(p, [][]int32{{0, 5}, {2, 7}})
	assert.Error(t, err)
}

func TestScheduleRejectsArrivalBeforeEarliest(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 5, TravelTime: 2}}},
		},
	}
	err := verify.Schedule(p, [][]int32{{3, 5}})
	assert.Error(t, err)
}

func TestScheduleRejectsTravelTimeViolation(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 10}, {ResourceID: 1, Earliest: 0, TravelTime: 1}}},
		},
	}
	err := verify.Schedule(p, [][]int32{{0, 5, 6}})
	assert.Error(t, err)
}

func TestScheduleRejectsWrongTrainCount(t *testing.T) {
	p := trainProblem()
	err := verify.Schedule(p, [][]int32{{0, 5}})
	assert.Error(t, err)
}

func TestScheduleRejectsWrongTimepointCount(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
		},
	}
	err := verify.Schedule(p, [][]int32{{0, 5, 10}})
	assert.Error(t, err)
}

func TestScheduleIgnoresResourcesWithNoConflictEntry(t *testing.T) {
	// Two trains overlap on resource 0, but no [problem.ConflictPair] names it, so verify has
	// nothing to check there: it passes the arithmetic checks and skips the ordering encoding.
	p := trainProblem()
	err := verify.Schedule(p, [][]int32{{0, 5}, {0, 5}})
	assert.NoError(t, err)
}
