package solver

import "github.com/pkg/errors"

// ErrSolverFailure is the root of every failure to produce an estimate.
var ErrSolverFailure = errors.New("solver failure")

// ErrGraphDisconnected indicates variables that no chain of factors connects
// to an anchor.
var ErrGraphDisconnected = errors.Wrap(ErrSolverFailure, "graph disconnected from its anchors")

// ErrMissingEstimate indicates a referenced variable absent from the initial
// estimate.
var ErrMissingEstimate = errors.Wrap(ErrSolverFailure, "initial estimate incomplete")
