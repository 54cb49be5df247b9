package satsolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver/gini"
)

func countTrue(model satsolver.Model, lits []satsolver.Lit) int {
	n := 0
	for _, l := range lits {
		if model.Value(l) {
			n++
		}
	}
	return n
}

// TestSeqCounterAtLeastMatchesTrueCount exercises the sequential counter over every possible
// assignment of 4 input literals (fixed by unit clauses) and confirms AtLeast(k) agrees with the
// literal count of true inputs, for every k.
func TestSeqCounterAtLeastMatchesTrueCount(t *testing.T) {
	for mask := 0; mask < 16; mask++ {
		s := gini.New()
		lits := make([]satsolver.Lit, 4)
		want := 0
		for i := range lits {
			v := s.NewVar()
			lits[i] = v.Pos()
			if mask&(1<<i) != 0 {
				s.AddClause(v.Pos())
				want++
			} else {
				s.AddClause(v.Neg())
			}
		}

		card := satsolver.NewSeqCounter(s, 4)
		card.Add(lits...)

		result, model := s.Solve()
		require.Equal(t, satsolver.Sat, result)

		for k := 1; k <= 4; k++ {
			got := model.Value(card.AtLeast(k))
			assert.Equal(t, want >= k, got, "mask=%04b k=%d want(trueCount>=k)=%v", mask, k, want >= k)
		}
	}
}

// TestSeqCounterIncrementalAddPreservesExistingBounds confirms growing the input set after
// AtLeast has already been queried doesn't invalidate previously returned literals (Sinz's
// encoding never retracts a clause once asserted).
func TestSeqCounterIncrementalAddPreservesExistingBounds(t *testing.T) {
	s := gini.New()
	a, b := s.NewVar(), s.NewVar()
	s.AddClause(a.Pos())
	s.AddClause(b.Pos())

	card := satsolver.NewSeqCounter(s, 4)
	card.Add(a.Pos(), b.Pos())
	atLeast2Before := card.AtLeast(2)

	c := s.NewVar()
	s.AddClause(c.Neg())
	card.Add(c.Pos())

	result, model := s.Solve()
	require.Equal(t, satsolver.Sat, result)
	assert.True(t, model.Value(atLeast2Before), "at-least-2 literal obtained before growth must remain valid")
	assert.Equal(t, 3, card.Len())
}

// TestSeqCounterPanicsOutOfRange confirms AtLeast panics for k outside [1, MaxBound()].
func TestSeqCounterPanicsOutOfRange(t *testing.T) {
	s := gini.New()
	card := satsolver.NewSeqCounter(s, 2)
	v := s.NewVar()
	card.Add(v.Pos())

	assert.Panics(t, func() { card.AtLeast(0) })
	assert.Panics(t, func() { card.AtLeast(card.MaxBound() + 1) })
}
