// Package lp holds the linear model arena shared by all components of one
// optimization and the solver backends that consume it.
//
// A Problem owns every variable, parameter series and constraint. Components
// append to it through a Scope, which prefixes names with the component name
// so entries of different components never collide.
package lp

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName = errors.New("lp: duplicate name")
	ErrInvalidBounds = errors.New("lp: invalid bounds")
	ErrUnknownVar    = errors.New("lp: unknown variable")
)

type variable struct {
	name   string
	bounds Bounds
}

// Problem is a minimization problem over continuous variables.
// Errors raised while building are sticky and reported by Err.
type Problem struct {
	vars        []variable
	names       map[string]Var
	series      []Series
	seriesNames map[string]struct{}
	constraints []Constraint
	objective   Expr
	err         error
}

func NewProblem() *Problem {
	return &Problem{
		names:       map[string]Var{},
		seriesNames: map[string]struct{}{},
	}
}

// Err returns the first error recorded while building.
func (p *Problem) Err() error { return p.err }

func (p *Problem) fail(err error) {
	if p.err == nil {
		p.err = err
	}
}

// AddVar declares a scalar variable.
func (p *Problem) AddVar(name string, b Bounds) Var {
	if err := b.validate(); err != nil {
		p.fail(fmt.Errorf("%s: %w", name, err))
	}
	if _, dup := p.names[name]; dup {
		p.fail(fmt.Errorf("%w: %q", ErrDuplicateName, name))
	}
	v := Var(len(p.vars))
	p.vars = append(p.vars, variable{name: name, bounds: b})
	p.names[name] = v
	return v
}

// AddVarSeries declares one variable per step, named name[t].
func (p *Problem) AddVarSeries(name string, n int, b Bounds) Series {
	p.claimSeries(name)
	vars := make([]Var, n)
	for t := 0; t < n; t++ {
		vars[t] = p.AddVar(fmt.Sprintf("%s[%d]", name, t), b)
	}
	s := Series{name: name, vars: vars}
	p.series = append(p.series, s)
	return s
}

// AddParam attaches a fixed per-step series. The values are copied.
func (p *Problem) AddParam(name string, values []float64) Series {
	p.claimSeries(name)
	cp := make([]float64, len(values))
	copy(cp, values)
	s := Series{name: name, values: cp}
	p.series = append(p.series, s)
	return s
}

func (p *Problem) claimSeries(name string) {
	if _, dup := p.seriesNames[name]; dup {
		p.fail(fmt.Errorf("%w: series %q", ErrDuplicateName, name))
	}
	p.seriesNames[name] = struct{}{}
}

// AddConstraint records lhs (sense) rhs.
func (p *Problem) AddConstraint(name string, step int, lhs Expr, sense Sense, rhs Expr) {
	e := Expr{Terms: make([]Term, 0, len(lhs.Terms)+len(rhs.Terms))}
	e.AddExpr(lhs, 1)
	e.AddExpr(rhs, -1)
	for _, t := range e.Terms {
		if int(t.Var) < 0 || int(t.Var) >= len(p.vars) {
			p.fail(fmt.Errorf("%w %d in constraint %s", ErrUnknownVar, t.Var, name))
			return
		}
	}
	p.constraints = append(p.constraints, Constraint{Name: name, Step: step, Expr: e, Sense: sense})
}

// SetObjective sets the expression to minimize.
func (p *Problem) SetObjective(e Expr) { p.objective = e }

func (p *Problem) Objective() Expr { return p.objective }

func (p *Problem) NumVars() int { return len(p.vars) }

func (p *Problem) NumConstraints() int { return len(p.constraints) }

func (p *Problem) VarName(v Var) string { return p.vars[v].name }

// Bounds returns the declared bounds of v.
func (p *Problem) Bounds(v Var) Bounds { return p.vars[v].bounds }

// Lookup finds a variable by its full name.
func (p *Problem) Lookup(name string) (Var, bool) {
	v, ok := p.names[name]
	return v, ok
}

// Constraints returns the constraint list. Callers must not modify it.
func (p *Problem) Constraints() []Constraint { return p.constraints }

// Series returns every declared series in declaration order.
func (p *Problem) Series() []Series { return p.series }

// Scalars returns every variable that does not belong to a series.
func (p *Problem) Scalars() []Var {
	inSeries := make(map[Var]struct{})
	for _, s := range p.series {
		for _, v := range s.vars {
			inSeries[v] = struct{}{}
		}
	}
	out := make([]Var, 0, len(p.vars)-len(inSeries))
	for i := range p.vars {
		if _, ok := inSeries[Var(i)]; !ok {
			out = append(out, Var(i))
		}
	}
	return out
}

// Scope returns a handle that prefixes every name with prefix.
func (p *Problem) Scope(prefix string) *Scope {
	return &Scope{p: p, prefix: prefix}
}

// Scope appends entries to a Problem under a name prefix.
type Scope struct {
	p      *Problem
	prefix string
}

func (s *Scope) name(local string) string { return s.prefix + "." + local }

func (s *Scope) Prefix() string { return s.prefix }

func (s *Scope) AddVar(local string, b Bounds) Var { return s.p.AddVar(s.name(local), b) }

func (s *Scope) AddVarSeries(local string, n int, b Bounds) Series {
	return s.p.AddVarSeries(s.name(local), n, b)
}

func (s *Scope) AddParam(local string, values []float64) Series {
	return s.p.AddParam(s.name(local), values)
}

func (s *Scope) Eq(local string, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), -1, lhs, Equal, rhs)
}

func (s *Scope) Le(local string, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), -1, lhs, LessEqual, rhs)
}

func (s *Scope) Ge(local string, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), -1, lhs, GreaterEqual, rhs)
}

func (s *Scope) EqAt(local string, t int, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), t, lhs, Equal, rhs)
}

func (s *Scope) LeAt(local string, t int, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), t, lhs, LessEqual, rhs)
}

func (s *Scope) GeAt(local string, t int, lhs, rhs Expr) {
	s.p.AddConstraint(s.name(local), t, lhs, GreaterEqual, rhs)
}

// Fail records err on the underlying problem.
func (s *Scope) Fail(err error) { s.p.fail(err) }

func (s *Scope) Err() error { return s.p.err }
