package heuristic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/heuristic"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/problem"
)

func TestGreedyOfferPollProducesACandidate(t *testing.T) {
	p := &problem.Problem{
		Trains: []problem.Train{
			{Visits: []problem.Visit{{ResourceID: 0, Earliest: 0, TravelTime: 5}}},
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := heuristic.NewGreedy(ctx, p)
	defer w.Close()

	w.Offer(heuristic.Schedule{{0, 5}})

	require.Eventually(t, func() bool {
		sched, ok := w.Poll()
		if !ok {
			return false
		}
		assert.Equal(t, heuristic.Schedule{{0, 5}}, sched)
		return true
	}, time.Second, time.Millisecond)
}

func TestGreedyPollWithoutOfferReturnsFalse(t *testing.T) {
	p := &problem.Problem{}
	w := heuristic.NewGreedy(context.Background(), p)
	defer w.Close()

	_, ok := w.Poll()
	assert.False(t, ok)
}

func TestGreedyCloseStopsWorker(t *testing.T) {
	p := &problem.Problem{}
	w := heuristic.NewGreedy(context.Background(), p)
	w.Close()

	// Offer/Poll must remain safe no-ops after Close.
	assert.NotPanics(t, func() {
		w.Offer(heuristic.Schedule{})
		w.Poll()
	})
}

func TestNewExternalFromEnvReturnsNilWhenUnset(t *testing.T) {
	lookup := func(string) (string, bool) { return "", false }
	w, err := heuristic.NewExternalFromEnv(context.Background(), ".", lookup)
	require.NoError(t, err)
	assert.Nil(t, w)
}

var _ heuristic.Worker = (*heuristic.Greedy)(nil)
