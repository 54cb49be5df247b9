// Package satsolver defines the abstract SAT-solver boundary consumed by package ddd (see
// spec §4.1): allocating fresh variables, adding persistent clauses, and solving under transient
// assumptions. Package ddd is polymorphic over this interface; concrete backends live in
// subpackages (satsolver/gini wraps github.com/go-air/gini).
package satsolver

import "fmt"

// Lit is a (possibly negated) Boolean literal. The zero value is not a valid literal; use a
// [Solver]'s [Solver.NewVar] and [Var.Pos]/[Var.Neg] to obtain one.
type Lit int32

// Neg returns the negation of l.
func (l Lit) Neg() Lit { return -l }

// IsPositive reports whether l is the positive form of its variable.
func (l Lit) IsPositive() bool { return l > 0 }

func (l Lit) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("x%d", int32(l))
	}
	return fmt.Sprintf("-x%d", int32(-l))
}

// True and False are fixed literals present in every backend: True is always satisfied, False is
// always falsified. Backends must wire these to an always-true/always-false internal variable.
const (
	True  Lit = 1<<31 - 1
	False Lit = -True
)

// Var is a SAT variable, i.e. an unsigned handle for a pair of literals.
type Var int32

// Pos returns the positive literal for v.
func (v Var) Pos() Lit { return Lit(v) }

// Neg returns the negative literal for v.
func (v Var) Neg() Lit { return Lit(-v) }

// Result is the outcome of a [Solver.Solve] call.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

func (r Result) String() string {
	switch r {
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Model is a satisfying assignment returned alongside a [Sat] [Result].
type Model interface {
	// Value returns the truth value assigned to l by the model.
	Value(l Lit) bool
}

// Solver is the incremental SAT-solver boundary spec §4.1 requires: clauses added via AddClause
// persist across every subsequent Solve call, while the literals passed to Solve are transient
// assumptions that apply only to that call.
type Solver interface {
	// NewVar allocates and returns a fresh variable.
	NewVar() Var

	// AddClause adds a persistent clause (the disjunction of lits) to the solver.
	AddClause(lits ...Lit)

	// Solve decides satisfiability of the persistent clause set conjoined with the given
	// assumptions. On [Sat] it returns a non-nil [Model]; on [Unsat] the model is nil.
	Solve(assumptions ...Lit) (Result, Model)
}

// Cardinality is an incremental cardinality (totalizer-equivalent) encoder over a growable set of
// input literals, per spec §4.1/§4.6. AtLeast(k) returns a literal equivalent to "at least k of
// the current input literals are true", valid for 1 <= k <= MaxBound.
type Cardinality interface {
	// Add extends the encoder's input set with additional literals.
	Add(lits ...Lit)

	// Len returns the number of input literals added so far.
	Len() int

	// AtLeast returns a literal that is true in exactly those models where at least k of the
	// input literals are true. Panics if k is outside [1, MaxBound()].
	AtLeast(k int) Lit

	// MaxBound returns the largest k for which AtLeast is valid without rebuilding.
	MaxBound() int
}

// CardinalityFactory builds a new, empty [Cardinality] encoder over s that supports bounds up to
// cap. MaxBound never exceeds cap; a larger bound needs a new encoder.
type CardinalityFactory func(s Solver, cap int) Cardinality
