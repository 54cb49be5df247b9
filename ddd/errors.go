package ddd

import "errors"

// ErrTimeout is returned when the wall-clock budget is exceeded before the search concludes.
var ErrTimeout = errors.New("ddd: timeout")

// ErrNoSolution is returned when the base (unbounded) problem is proven infeasible, or when the
// bounds cross with no feasible solution ever found.
var ErrNoSolution = errors.New("ddd: no solution")
