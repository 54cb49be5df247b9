package problem_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

const wireJSON = `{
  "trains": [
    [{"resource": 0, "earliest": 0, "travel_time": 5}, {"resource": 1, "earliest": 2, "travel_time": 3}],
    [{"resource": 2, "earliest": 1, "travel_time": 4}]
  ],
  "conflicts": [{"a": 0, "b": 1}]
}`

func TestLoadDecodesTrainsAndConflicts(t *testing.T) {
	p, err := problem.Load(strings.NewReader(wireJSON))
	require.NoError(t, err)

	require.Len(t, p.Trains, 2)
	assert.Equal(t, []problem.Visit{
		{ResourceID: 0, Earliest: 0, TravelTime: 5},
		{ResourceID: 1, Earliest: 2, TravelTime: 3},
	}, p.Trains[0].Visits)
	assert.Equal(t, []problem.Visit{
		{ResourceID: 2, Earliest: 1, TravelTime: 4},
	}, p.Trains[1].Visits)

	require.Len(t, p.Conflicts, 1)
	assert.Equal(t, problem.ConflictPair{A: 0, B: 1}, p.Conflicts[0])

	assert.Nil(t, p.DelayCost)
	assert.Nil(t, p.Cost)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	_, err := problem.Load(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestLoadEmptyProblem(t *testing.T) {
	p, err := problem.Load(strings.NewReader(`{"trains": [], "conflicts": []}`))
	require.NoError(t, err)
	assert.Equal(t, 0, p.NumVisits())
}

func TestLinearDelayCostIsIdentityForNonNegativeTimes(t *testing.T) {
	assert.Equal(t, uint32(0), problem.LinearDelayCost(0, 0, 0, 0))
	assert.Equal(t, uint32(7), problem.LinearDelayCost(0, 0, 0, 7))
}

func TestLinearDelayCostClampsNegativeTimes(t *testing.T) {
	assert.Equal(t, uint32(0), problem.LinearDelayCost(0, 0, 0, -5))
}

func TestLinearAggregateCostExcludesTrailingCompletionEntry(t *testing.T) {
	// Each train's schedule is [visit0, visit1, ..., trailing completion]; only the non-trailing
	// entries are priced.
	sched := [][]int32{
		{0, 5, 8},
		{3},
	}
	assert.Equal(t, int32(5), problem.LinearAggregateCost(sched, 0))
}

func TestLinearAggregateCostSkipsEmptySchedules(t *testing.T) {
	sched := [][]int32{{}, {0, 4}}
	assert.Equal(t, int32(0), problem.LinearAggregateCost(sched, 0))
}
