// Package scenario runs the target/current scenario pair for one set of
// components.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"energy-planner/internal/component"
	"energy-planner/internal/compose"
	"energy-planner/internal/lp"
	"energy-planner/internal/metrics"
	"energy-planner/internal/model"
	"energy-planner/internal/results"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrNoComponents = fmt.Errorf("%w: no components", component.ErrConfig)

// State is the progress of one run.
type State int

const (
	StateUnbuilt State = iota
	StateBuilt
	StateSolvedTarget
	StateSolvedCurrent
	StateSolveFailed
)

func (s State) String() string {
	switch s {
	case StateUnbuilt:
		return "unbuilt"
	case StateBuilt:
		return "built"
	case StateSolvedTarget:
		return "solved_target"
	case StateSolvedCurrent:
		return "solved_current"
	case StateSolveFailed:
		return "solve_failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Outcome is everything one run produced. The model and solutions are kept
// for detailed exports.
type Outcome struct {
	Result     *results.Result
	State      State
	Problem    *lp.Problem
	Components []component.Component
	Hours      model.TimeIndex
	Target     *lp.Solution
	Current    *lp.Solution
}

type Runner struct {
	solver  lp.Solver
	hours   model.TimeIndex
	timeout time.Duration
	metrics *metrics.Collector
}

type Option func(*Runner)

// WithTimeout limits each of the two solves to d.
func WithTimeout(d time.Duration) Option { return func(r *Runner) { r.timeout = d } }

func WithMetrics(c *metrics.Collector) Option { return func(r *Runner) { r.metrics = c } }

func NewRunner(solver lp.Solver, hours model.TimeIndex, opts ...Option) *Runner {
	r := &Runner{solver: solver, hours: hours}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Runner) Hours() model.TimeIndex { return r.hours }

// Run builds one model from components and solves the target scenario and,
// if that succeeds, the current scenario. Configuration and structural
// errors are returned as errors; solver outcomes are reported in the result.
func (r *Runner) Run(ctx context.Context, components []component.Component) (*Outcome, error) {
	o, err := r.Build(components)
	if err != nil {
		return nil, err
	}
	if err := r.Solve(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Build adds every component to a new model and composes the balances.
func (r *Runner) Build(components []component.Component) (*Outcome, error) {
	if len(components) == 0 {
		return nil, ErrNoComponents
	}
	o := &Outcome{
		Result:     &results.Result{ID: uuid.NewString(), Status: model.StatusNew},
		State:      StateUnbuilt,
		Components: components,
		Hours:      r.hours,
	}

	seen := make(map[string]struct{}, len(components))
	for _, c := range components {
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate component name %q", component.ErrConfig, c.Name())
		}
		seen[c.Name()] = struct{}{}
	}

	p := lp.NewProblem()
	for _, c := range components {
		if err := component.AddToModel(p, c, r.hours); err != nil {
			return nil, err
		}
	}
	if err := compose.Compose(p, components, r.hours); err != nil {
		return nil, err
	}
	o.Problem = p
	o.State = StateBuilt

	r.metrics.SetModelSize(p.NumVars(), p.NumConstraints())
	log.Info().
		Str("id", o.Result.ID).
		Int("components", len(components)).
		Int("hours", r.hours.Len()).
		Int("variables", p.NumVars()).
		Int("constraints", p.NumConstraints()).
		Msg("model built")
	return o, nil
}

// Solve runs the target solve and, on success, the current solve on a built
// outcome.
func (r *Runner) Solve(ctx context.Context, o *Outcome) error {
	if o == nil || o.State != StateBuilt {
		return errors.New("scenario: outcome is not built")
	}
	o.Result.Status = model.StatusProcessing

	target, err := r.solveOnce(ctx, o, "target", nil)
	if err != nil {
		return err
	}
	o.Target = target
	if status := StatusOf(target.Status); status != model.StatusSuccess {
		o.Result.Status = status
		o.Result.ErrorMessage = fmt.Sprintf("target scenario %s: %s", target.Status, target.Message)
		o.State = StateSolveFailed
		log.Warn().
			Str("id", o.Result.ID).
			Str("status", string(status)).
			Str("message", target.Message).
			Msg("target scenario failed")
		return nil
	}
	tr := results.Compose(o.Components, target)
	o.Result.Target = &tr
	o.Result.Status = model.StatusSuccess
	o.State = StateSolvedTarget

	current, err := r.solveOnce(ctx, o, "current", CurrentOverrides(o.Components))
	if err != nil {
		return err
	}
	o.Current = current
	if !current.Optimal() {
		log.Warn().
			Str("id", o.Result.ID).
			Str("solver_status", current.Status.String()).
			Str("message", current.Message).
			Msg("current scenario could not be solved, reporting target only")
		return nil
	}
	cr := results.Compose(o.Components, current)
	o.Result.Current = &cr
	o.State = StateSolvedCurrent
	return nil
}

func (r *Runner) solveOnce(ctx context.Context, o *Outcome, name string, ov lp.Overrides) (*lp.Solution, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	start := time.Now()
	sol, err := r.solver.Solve(ctx, o.Problem, ov)
	if err != nil {
		return nil, fmt.Errorf("%s scenario: %w", name, err)
	}
	elapsed := time.Since(start)
	r.metrics.ObserveSolve(name, string(StatusOf(sol.Status)), elapsed)
	log.Debug().
		Str("id", o.Result.ID).
		Str("scenario", name).
		Str("solver_status", sol.Status.String()).
		Float64("objective", sol.Objective).
		Dur("elapsed", elapsed).
		Msg("solve finished")
	return sol, nil
}

// StatusOf maps a solver termination to a result status.
func StatusOf(s lp.Status) model.Status {
	switch s {
	case lp.StatusOptimal:
		return model.StatusSuccess
	case lp.StatusUnbounded:
		return model.StatusUnbounded
	default:
		return model.StatusError
	}
}

// CurrentOverrides fixes every sizing variable to its installed value.
func CurrentOverrides(components []component.Component) lp.Overrides {
	o := lp.Overrides{}
	for _, c := range components {
		for _, s := range c.Sizing() {
			o.Fix(s.Var, s.Installed)
		}
	}
	return o
}
