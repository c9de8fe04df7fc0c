package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"
	glp "gonum.org/v1/gonum/optimize/convex/lp"
)

// simplexFunc is the dense simplex used by Simplex; tests swap it.
var simplexFunc = glp.Simplex

const (
	// DefaultTolerance is the reduced-cost tolerance handed to the simplex.
	DefaultTolerance = 1e-7
	// DefaultMaxCells keeps the dense tableau around 160 MB.
	DefaultMaxCells = 20_000_000
)

// Simplex solves problems with gonum's dense simplex after converting them to
// standard form. It suits small models and models that presolve reduces to a
// few rows; full-year sizing models belong to a Command backend.
type Simplex struct {
	// Tolerance is the optimality tolerance on reduced costs.
	Tolerance float64
	// MaxCells caps rows·columns of the dense tableau; 0 selects
	// DefaultMaxCells.
	MaxCells int
	// Workers bounds the simplex runs alive at once, including runs whose
	// caller already gave up. 0 selects GOMAXPROCS.
	Workers int

	once  sync.Once
	slots chan struct{}
}

func NewSimplex(tolerance float64, maxCells int) *Simplex {
	return &Simplex{Tolerance: tolerance, MaxCells: maxCells}
}

func (s *Simplex) Solve(ctx context.Context, p *Problem, o Overrides) (*Solution, error) {
	if p == nil {
		return nil, ErrNoProblem
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	sol := s.solve(ctx, p, o)
	sol.Duration = time.Since(start)
	return sol, nil
}

func (s *Simplex) solve(ctx context.Context, p *Problem, o Overrides) *Solution {
	if err := ctx.Err(); err != nil {
		return &Solution{Status: StatusInterrupted, Message: err.Error()}
	}

	sf, err := standardize(p, o)
	if err != nil {
		var d *decided
		if errors.As(err, &d) {
			return &Solution{Status: d.status, Message: d.msg}
		}
		return &Solution{Status: StatusError, Message: err.Error()}
	}

	m, n := sf.dims()
	log.Debug().
		Int("variables", p.NumVars()).
		Int("constraints", p.NumConstraints()).
		Int("rows", m).
		Int("columns", n).
		Msg("standard form ready")

	if m == 0 {
		return s.finish(p, sf, nil)
	}
	if limit := s.maxCells(); m*n > limit {
		return &Solution{
			Status:  StatusInvalid,
			Message: fmt.Sprintf("tableau of %d rows x %d columns exceeds the limit of %d cells", m, n, limit),
		}
	}
	if m > n {
		return &Solution{Status: StatusError, Message: "equality rows are linearly dependent"}
	}

	c, a, b := sf.dense()
	if m == n {
		return s.finishSquare(p, sf, a, b)
	}
	// gonum's simplex cannot be stopped. A run outlives an expired caller,
	// so runs hold a worker slot until they return.
	s.once.Do(s.initSlots)
	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return &Solution{Status: StatusInterrupted, Message: "no simplex worker free: " + ctx.Err().Error()}
	}

	run := simplexFunc
	type result struct {
		x   []float64
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() { <-s.slots }()
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("simplex panic: %v", r)}
			}
		}()
		_, x, err := run(c, a, b, s.tolerance(), nil)
		done <- result{x: x, err: err}
	}()

	select {
	case <-ctx.Done():
		return &Solution{Status: StatusInterrupted, Message: ctx.Err().Error()}
	case r := <-done:
		if r.err != nil {
			return &Solution{Status: statusOf(r.err), Message: r.err.Error()}
		}
		return s.finish(p, sf, r.x)
	}
}

func (s *Simplex) finish(p *Problem, sf *standardForm, y []float64) *Solution {
	values := sf.recover(y)
	obj := p.objective.Eval(func(v Var) float64 { return values[v] })
	return NewSolution(StatusOptimal, obj, values)
}

// finishSquare handles a fully determined system, which gonum solves without
// tolerance on the sign of the result.
func (s *Simplex) finishSquare(p *Problem, sf *standardForm, a *mat.Dense, b []float64) *Solution {
	var x mat.VecDense
	if err := x.SolveVec(a, mat.NewVecDense(len(b), b)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return &Solution{Status: StatusError, Message: "equality rows are linearly dependent"}
		}
	}
	y := make([]float64, x.Len())
	for i := range y {
		v := x.AtVec(i)
		if math.IsNaN(v) {
			return &Solution{Status: StatusError, Message: "determined system has no finite solution"}
		}
		if v < -tolFor(v) {
			return &Solution{Status: StatusInfeasible, Message: "determined system requires a negative value"}
		}
		y[i] = math.Max(v, 0)
	}
	return s.finish(p, sf, y)
}

func (s *Simplex) initSlots() {
	n := s.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	s.slots = make(chan struct{}, n)
}

func (s *Simplex) maxCells() int {
	if s.MaxCells > 0 {
		return s.MaxCells
	}
	return DefaultMaxCells
}

func (s *Simplex) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}

func statusOf(err error) Status {
	switch {
	case errors.Is(err, glp.ErrInfeasible):
		return StatusInfeasible
	case errors.Is(err, glp.ErrUnbounded):
		return StatusUnbounded
	default:
		return StatusError
	}
}
