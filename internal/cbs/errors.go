package cbs

import "errors"

// Precondition violations (duplicate origin, too few destinations, out of
// bounds, blocked) are reported at BuildSolver time, never during search.
// ErrInfeasible and ErrBudgetExhausted are returned by SolveMAPF.
var (
	ErrDuplicateOrigin    = errors.New("cbs: duplicate origin")
	ErrTooFewDestinations = errors.New("cbs: fewer destinations than origins")
	ErrOutOfBounds        = errors.New("cbs: origin or destination out of bounds")
	ErrBlocked            = errors.New("cbs: origin or destination is blocked")
	ErrInfeasible         = errors.New("cbs: instance is infeasible, no conflict-free solution exists")
	ErrBudgetExhausted    = errors.New("cbs: node budget exhausted before a solution was found")
)
