package lp

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoProblem is returned when a solver is handed a nil problem.
var ErrNoProblem = errors.New("lp: no problem")

// Status is the termination status of one solve.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUnbounded
	// StatusError covers numerical and internal solver failures.
	StatusError
	// StatusInterrupted is reported when the context expired or was cancelled
	// before the solver finished.
	StatusInterrupted
	// StatusInvalid is reported for problems the backend refuses to solve.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusError:
		return "error"
	case StatusInterrupted:
		return "interrupted"
	case StatusInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Solution is the outcome of one solve. Values are only meaningful when the
// status is StatusOptimal.
type Solution struct {
	Status    Status
	Objective float64
	Message   string
	Duration  time.Duration
	values    []float64
}

// NewSolution builds a solution from per-variable values, indexed by Var.
func NewSolution(status Status, objective float64, values []float64) *Solution {
	return &Solution{Status: status, Objective: objective, values: values}
}

func (s *Solution) Optimal() bool { return s != nil && s.Status == StatusOptimal }

// Value returns the value of v, or 0 when the solution carries no values.
func (s *Solution) Value(v Var) float64 {
	if s == nil || int(v) >= len(s.values) || v < 0 {
		return 0
	}
	return s.values[v]
}

// Overrides replaces the declared bounds of selected variables for one solve.
// The problem itself is never modified.
type Overrides map[Var]Bounds

// Fix pins v to value.
func (o Overrides) Fix(v Var, value float64) { o[v] = Fixed(value) }

func (o Overrides) bounds(p *Problem, v Var) Bounds {
	if b, ok := o[v]; ok {
		return b
	}
	return p.Bounds(v)
}

// Solver minimizes a problem under optional bound overrides.
//
// Termination conditions, including infeasibility and timeouts, are reported
// through Solution.Status. The error return is reserved for problems that
// could not be handed to the solver at all.
type Solver interface {
	Solve(ctx context.Context, p *Problem, o Overrides) (*Solution, error)
}
