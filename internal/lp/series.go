package lp

// Series is a time-indexed quantity: either one variable per step or a fixed
// parameter value per step. The zero Series is empty.
type Series struct {
	name   string
	vars   []Var
	values []float64
}

func (s Series) Name() string { return s.name }

func (s Series) Len() int {
	if s.vars != nil {
		return len(s.vars)
	}
	return len(s.values)
}

// IsParam reports whether the series holds fixed values instead of variables.
func (s Series) IsParam() bool { return s.vars == nil }

// Var returns the variable of step t. It panics for parameter series.
func (s Series) Var(t int) Var {
	if s.vars == nil {
		panic("lp: Var called on parameter series " + s.name)
	}
	return s.vars[t]
}

// Param returns the fixed value of step t. It panics for variable series.
func (s Series) Param(t int) float64 {
	if s.vars != nil {
		panic("lp: Param called on variable series " + s.name)
	}
	return s.values[t]
}

// At returns step t as an expression.
func (s Series) At(t int) Expr {
	if s.vars != nil {
		return V(s.vars[t])
	}
	return Const(s.values[t])
}

// AddTo adds scale·s[t] to e.
func (s Series) AddTo(e *Expr, t int, scale float64) {
	if s.vars != nil {
		e.Add(s.vars[t], scale)
		return
	}
	e.AddConst(s.values[t] * scale)
}

// Values returns the per-step values under a solution.
func (s Series) Values(sol *Solution) []float64 {
	if s.vars == nil {
		out := make([]float64, len(s.values))
		copy(out, s.values)
		return out
	}
	out := make([]float64, len(s.vars))
	for t, v := range s.vars {
		out[t] = sol.Value(v)
	}
	return out
}

// Total sums the series under a solution.
func (s Series) Total(sol *Solution) float64 {
	sum := 0.0
	if s.vars == nil {
		for _, v := range s.values {
			sum += v
		}
		return sum
	}
	for _, v := range s.vars {
		sum += sol.Value(v)
	}
	return sum
}
