// Package gini adapts github.com/go-air/gini to the [satsolver.Solver] interface. It is the
// reference backend package ddd runs against; any solver satisfying [satsolver.Solver] would do,
// but gini's incremental assumption-based API maps onto the DDD driver loop directly.
package gini

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/NguyenTanUET/maxsattrainscheduling/internal/satsolver"
)

// Backend wraps a *gini.Gini instance, translating between satsolver's backend-agnostic Lit/Var
// space and gini's z.Lit space.
type Backend struct {
	g *gini.Gini
	// trueVar is an internal variable asserted true at construction time, backing
	// satsolver.True/satsolver.False without requiring callers to special-case them.
	trueVar satsolver.Var
}

// New returns a fresh, empty Backend.
func New() *Backend {
	b := &Backend{g: gini.New()}
	v := b.g.Lit()
	b.g.Add(v)
	b.g.Add(0)
	b.trueVar = toVar(v)
	return b
}

func toVar(m z.Lit) satsolver.Var { return satsolver.Var(m.Var()) }

// zLit converts a satsolver.Lit to gini's z.Lit encoding, resolving the fixed True/False
// literals against the backend's internal always-true variable.
func (b *Backend) zLit(l satsolver.Lit) z.Lit {
	switch l {
	case satsolver.True:
		return z.Lit(b.trueVar) << 1
	case satsolver.False:
		return (z.Lit(b.trueVar) << 1) ^ 1
	}
	if l < 0 {
		return (z.Lit(-l) << 1) ^ 1
	}
	return z.Lit(l) << 1
}

// NewVar allocates a fresh variable.
func (b *Backend) NewVar() satsolver.Var {
	return toVar(b.g.Lit())
}

// AddClause adds a persistent clause to the underlying gini instance.
func (b *Backend) AddClause(lits ...satsolver.Lit) {
	for _, l := range lits {
		b.g.Add(b.zLit(l))
	}
	b.g.Add(0)
}

// Solve runs gini under the given assumptions and reports the outcome.
func (b *Backend) Solve(assumptions ...satsolver.Lit) (satsolver.Result, satsolver.Model) {
	zs := make([]z.Lit, len(assumptions))
	for i, l := range assumptions {
		zs[i] = b.zLit(l)
	}
	b.g.Assume(zs...)
	switch b.g.Solve() {
	case 1:
		return satsolver.Sat, (*model)(b)
	case -1:
		return satsolver.Unsat, nil
	default:
		return satsolver.Unknown, nil
	}
}

type model Backend

func (m *model) Value(l satsolver.Lit) bool {
	b := (*Backend)(m)
	return b.g.Value(b.zLit(l))
}

var _ satsolver.Solver = (*Backend)(nil)
