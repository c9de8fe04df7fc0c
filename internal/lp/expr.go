package lp

import (
	"fmt"
	"math"
)

// Var is a handle to a decision variable owned by a Problem.
type Var int

// Bounds restrict a variable to [Lower, Upper]. Infinite values mean no bound.
type Bounds struct {
	Lower float64
	Upper float64
}

var (
	NonNegative = Bounds{Lower: 0, Upper: math.Inf(1)}
	Free        = Bounds{Lower: math.Inf(-1), Upper: math.Inf(1)}
)

// Between returns [lo, hi]; use math.Inf(1) for an open upper end.
func Between(lo, hi float64) Bounds { return Bounds{Lower: lo, Upper: hi} }

// Fixed returns the degenerate interval [v, v].
func Fixed(v float64) Bounds { return Bounds{Lower: v, Upper: v} }

func (b Bounds) validate() error {
	if math.IsNaN(b.Lower) || math.IsNaN(b.Upper) {
		return fmt.Errorf("%w: NaN bound", ErrInvalidBounds)
	}
	if math.IsInf(b.Lower, 1) || math.IsInf(b.Upper, -1) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidBounds, b.Lower, b.Upper)
	}
	if b.Lower > b.Upper {
		return fmt.Errorf("%w: lower %g above upper %g", ErrInvalidBounds, b.Lower, b.Upper)
	}
	return nil
}

// Term is coef·var.
type Term struct {
	Var  Var
	Coef float64
}

// Expr is an affine expression Σ coef·var + Constant.
// The mutating methods are meant for building an expression in place.
type Expr struct {
	Terms    []Term
	Constant float64
}

// V is the expression 1·v.
func V(v Var) Expr { return Expr{Terms: []Term{{Var: v, Coef: 1}}} }

// Scaled is the expression coef·v.
func Scaled(v Var, coef float64) Expr { return Expr{Terms: []Term{{Var: v, Coef: coef}}} }

// Const is a constant expression.
func Const(c float64) Expr { return Expr{Constant: c} }

// Sum adds the given variables with coefficient 1.
func Sum(vars ...Var) Expr {
	e := Expr{Terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.Terms = append(e.Terms, Term{Var: v, Coef: 1})
	}
	return e
}

func (e *Expr) Add(v Var, coef float64) {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
}

func (e *Expr) AddConst(c float64) { e.Constant += c }

// AddExpr adds scale·o.
func (e *Expr) AddExpr(o Expr, scale float64) {
	for _, t := range o.Terms {
		e.Terms = append(e.Terms, Term{Var: t.Var, Coef: t.Coef * scale})
	}
	e.Constant += o.Constant * scale
}

// Eval evaluates the expression against a variable assignment.
func (e Expr) Eval(value func(Var) float64) float64 {
	s := e.Constant
	for _, t := range e.Terms {
		s += t.Coef * value(t.Var)
	}
	return s
}

// Sense is the relation of a constraint expression to zero.
type Sense int

const (
	LessEqual Sense = iota
	GreaterEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	case Equal:
		return "=="
	default:
		return fmt.Sprintf("Sense(%d)", int(s))
	}
}

// Constraint is Expr (Sense) 0. Step is the time step of indexed constraints,
// -1 for scalar ones.
type Constraint struct {
	Name  string
	Step  int
	Expr  Expr
	Sense Sense
}

func (c Constraint) Label() string {
	if c.Step < 0 {
		return c.Name
	}
	return fmt.Sprintf("%s[%d]", c.Name, c.Step)
}

// Satisfied reports whether the constraint holds within tol for the assignment.
func (c Constraint) Satisfied(value func(Var) float64, tol float64) bool {
	lhs := c.Expr.Eval(value)
	switch c.Sense {
	case LessEqual:
		return lhs <= tol
	case GreaterEqual:
		return lhs >= -tol
	default:
		return math.Abs(lhs) <= tol
	}
}
