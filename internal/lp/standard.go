package lp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// feasibilityTol is the relative tolerance for constraints decided in presolve.
	feasibilityTol = 1e-9
	// zeroCoef drops coefficients that cancel out while rows are assembled.
	zeroCoef = 1e-12
)

// decided carries an outcome found before the simplex runs.
type decided struct {
	status Status
	msg    string
}

func (d *decided) Error() string { return d.msg }

// varMap expresses a problem variable through non-negative working columns:
// x = offset + sign·y[pos] − y[neg].
type varMap struct {
	offset float64
	pos    int
	sign   float64
	neg    int
}

type workRow struct {
	label string
	coefs map[int]float64
	rhs   float64
}

// standardForm is min cᵀy, Ay = b, y ≥ 0 derived from a Problem under bound
// overrides. Constraints left with one variable become bounds, fixed
// variables are substituted out, bounded variables shifted and free variables
// split. Inequalities get slack columns and singleton rows are eliminated.
type standardForm struct {
	maps    []varMap
	cost    []float64
	fixed   map[int]float64
	rows    []*workRow
	cols    []int
	compact []int
}

// presolve validates the effective bounds of every variable and tightens them
// with tightenBounds. It returns the bounds and which constraints are left.
func presolve(p *Problem, o Overrides) ([]Bounds, []bool, error) {
	bnd := make([]Bounds, p.NumVars())
	for j := range bnd {
		b := o.bounds(p, Var(j))
		if err := b.validate(); err != nil {
			return nil, nil, &decided{StatusInvalid, fmt.Sprintf("%s: %v", p.VarName(Var(j)), err)}
		}
		bnd[j] = b
	}
	live, err := tightenBounds(p, bnd)
	if err != nil {
		return nil, nil, err
	}
	return bnd, live, nil
}

func standardize(p *Problem, o Overrides) (*standardForm, error) {
	bnd, live, err := presolve(p, o)
	if err != nil {
		return nil, err
	}

	sf := &standardForm{
		maps:  make([]varMap, p.NumVars()),
		fixed: map[int]float64{},
	}
	owner := []int{}
	newCol := func(v int) int {
		sf.cost = append(sf.cost, 0)
		owner = append(owner, v)
		return len(sf.cost) - 1
	}

	for j := range sf.maps {
		lo, hi := bnd[j].Lower, bnd[j].Upper
		switch {
		case !math.IsInf(lo, -1) && hi-lo <= 0:
			sf.maps[j] = varMap{offset: lo, pos: -1, neg: -1}
		case !math.IsInf(lo, -1):
			sf.maps[j] = varMap{offset: lo, pos: newCol(j), sign: 1, neg: -1}
			if !math.IsInf(hi, 1) {
				slack := newCol(-1)
				sf.rows = append(sf.rows, &workRow{
					label: "bound " + p.VarName(Var(j)),
					coefs: map[int]float64{sf.maps[j].pos: 1, slack: 1},
					rhs:   hi - lo,
				})
			}
		case !math.IsInf(hi, 1):
			sf.maps[j] = varMap{offset: hi, pos: newCol(j), sign: -1, neg: -1}
		default:
			sf.maps[j] = varMap{pos: newCol(j), sign: 1, neg: newCol(j)}
		}
	}

	for _, t := range p.objective.Terms {
		m := sf.maps[t.Var]
		if m.pos >= 0 {
			sf.cost[m.pos] += m.sign * t.Coef
		}
		if m.neg >= 0 {
			sf.cost[m.neg] -= t.Coef
		}
	}

	for i, c := range p.constraints {
		if !live[i] {
			continue
		}
		r := &workRow{
			label: c.Label(),
			coefs: make(map[int]float64, len(c.Expr.Terms)+1),
			rhs:   -c.Expr.Constant,
		}
		for _, t := range c.Expr.Terms {
			m := sf.maps[t.Var]
			r.rhs -= t.Coef * m.offset
			if m.pos >= 0 {
				r.coefs[m.pos] += m.sign * t.Coef
			}
			if m.neg >= 0 {
				r.coefs[m.neg] -= t.Coef
			}
		}
		for k, a := range r.coefs {
			if math.Abs(a) <= zeroCoef {
				delete(r.coefs, k)
			}
		}
		if len(r.coefs) == 0 {
			if !constantHolds(c.Sense, r.rhs) {
				return nil, &decided{StatusInfeasible, fmt.Sprintf("constraint %s cannot hold", r.label)}
			}
			continue
		}
		switch c.Sense {
		case LessEqual:
			r.coefs[newCol(-1)] = 1
		case GreaterEqual:
			r.coefs[newCol(-1)] = -1
		}
		sf.rows = append(sf.rows, r)
	}

	if err := sf.eliminateSingletons(); err != nil {
		return nil, err
	}

	used := make([]bool, len(sf.cost))
	for _, r := range sf.rows {
		for k := range r.coefs {
			used[k] = true
		}
	}
	sf.compact = make([]int, len(sf.cost))
	for k := range sf.cost {
		sf.compact[k] = -1
		if _, ok := sf.fixed[k]; ok {
			continue
		}
		if !used[k] {
			if sf.cost[k] < -zeroCoef {
				name := "slack"
				if owner[k] >= 0 {
					name = p.VarName(Var(owner[k]))
				}
				return nil, &decided{StatusUnbounded, fmt.Sprintf("%s decreases the objective without limit", name)}
			}
			sf.fixed[k] = 0
			continue
		}
		sf.compact[k] = len(sf.cols)
		sf.cols = append(sf.cols, k)
	}
	return sf, nil
}

// tightenBounds folds every constraint that has a single non-fixed variable
// into that variable's bounds and repeats until no constraint changes. It
// returns which constraints still need a row.
func tightenBounds(p *Problem, bnd []Bounds) ([]bool, error) {
	cs := p.constraints
	type row struct {
		vars  []Var
		coefs []float64
	}
	rows := make([]row, len(cs))
	pos := map[Var]int{}
	for i, c := range cs {
		clear(pos)
		r := row{vars: make([]Var, 0, len(c.Expr.Terms)), coefs: make([]float64, 0, len(c.Expr.Terms))}
		for _, t := range c.Expr.Terms {
			if k, ok := pos[t.Var]; ok {
				r.coefs[k] += t.Coef
				continue
			}
			pos[t.Var] = len(r.vars)
			r.vars = append(r.vars, t.Var)
			r.coefs = append(r.coefs, t.Coef)
		}
		rows[i] = r
	}

	live := make([]bool, len(cs))
	for i := range live {
		live[i] = true
	}
	for changed := true; changed; {
		changed = false
		for i, c := range cs {
			if !live[i] {
				continue
			}
			r := rows[i]
			rhs := -c.Expr.Constant
			free, n := -1, 0
			for k, v := range r.vars {
				a := r.coefs[k]
				if math.Abs(a) <= zeroCoef {
					continue
				}
				if b := bnd[v]; b.Lower == b.Upper {
					rhs -= a * b.Lower
					continue
				}
				free = k
				n++
			}
			switch n {
			case 0:
				if !constantHolds(c.Sense, rhs) {
					return nil, &decided{StatusInfeasible, fmt.Sprintf("constraint %s cannot hold", c.Label())}
				}
				live[i] = false
			case 1:
				v := r.vars[free]
				b, ok := tighten(bnd[v], c.Sense, r.coefs[free], rhs)
				if !ok {
					return nil, &decided{StatusInfeasible, fmt.Sprintf("constraint %s forces %s outside its bounds", c.Label(), p.VarName(v))}
				}
				bnd[v] = b
				live[i] = false
				changed = true
			}
		}
	}
	return live, nil
}

// tighten intersects b with a·x (sense) rhs. It reports false when the
// intersection is empty.
func tighten(b Bounds, sense Sense, a, rhs float64) (Bounds, bool) {
	val := rhs / a
	switch {
	case sense == Equal:
		if val < b.Lower-tolFor(val) || val > b.Upper+tolFor(val) {
			return b, false
		}
		return Fixed(math.Min(math.Max(val, b.Lower), b.Upper)), true
	case (sense == LessEqual) == (a > 0):
		b.Upper = math.Min(b.Upper, val)
	default:
		b.Lower = math.Max(b.Lower, val)
	}
	if b.Lower > b.Upper {
		if b.Lower-b.Upper > tolFor(b.Lower) {
			return b, false
		}
		b.Lower = b.Upper
	}
	return b, true
}

// eliminateSingletons fixes every column that is alone in an equality row and
// substitutes it into the remaining rows, until no such row is left.
func (sf *standardForm) eliminateSingletons() error {
	colRows := map[int][]int{}
	for i, r := range sf.rows {
		for k := range r.coefs {
			colRows[k] = append(colRows[k], i)
		}
	}
	dropped := make([]bool, len(sf.rows))
	for changed := true; changed; {
		changed = false
		for i, r := range sf.rows {
			if dropped[i] {
				continue
			}
			switch len(r.coefs) {
			case 0:
				if math.Abs(r.rhs) > tolFor(r.rhs) {
					return &decided{StatusInfeasible, fmt.Sprintf("constraint %s cannot hold", r.label)}
				}
				dropped[i] = true
			case 1:
				var k int
				var a float64
				for kk, aa := range r.coefs {
					k, a = kk, aa
				}
				val := r.rhs / a
				if val < -tolFor(val) {
					return &decided{StatusInfeasible, fmt.Sprintf("constraint %s forces a value below its bound", r.label)}
				}
				val = math.Max(val, 0)
				sf.fixed[k] = val
				dropped[i] = true
				for _, ri := range colRows[k] {
					if dropped[ri] {
						continue
					}
					rr := sf.rows[ri]
					if ak, ok := rr.coefs[k]; ok {
						rr.rhs -= ak * val
						delete(rr.coefs, k)
					}
				}
				changed = true
			}
		}
	}
	live := sf.rows[:0]
	for i, r := range sf.rows {
		if !dropped[i] {
			live = append(live, r)
		}
	}
	sf.rows = live
	return nil
}

func (sf *standardForm) dims() (rows, cols int) { return len(sf.rows), len(sf.cols) }

// dense assembles c, A and b with every right-hand side made non-negative.
func (sf *standardForm) dense() ([]float64, *mat.Dense, []float64) {
	m, n := sf.dims()
	c := make([]float64, n)
	for idx, k := range sf.cols {
		c[idx] = sf.cost[k]
	}
	a := mat.NewDense(m, n, nil)
	b := make([]float64, m)
	for i, r := range sf.rows {
		sign := 1.0
		if r.rhs < 0 {
			sign = -1
		}
		b[i] = sign * r.rhs
		for k, v := range r.coefs {
			a.Set(i, sf.compact[k], sign*v)
		}
	}
	return c, a, b
}

// recover maps working column values back to problem variables.
func (sf *standardForm) recover(y []float64) []float64 {
	col := func(k int) float64 {
		if v, ok := sf.fixed[k]; ok {
			return v
		}
		if idx := sf.compact[k]; idx >= 0 && idx < len(y) {
			return y[idx]
		}
		return 0
	}
	x := make([]float64, len(sf.maps))
	for j, m := range sf.maps {
		v := m.offset
		if m.pos >= 0 {
			v += m.sign * col(m.pos)
		}
		if m.neg >= 0 {
			v -= col(m.neg)
		}
		x[j] = v
	}
	return x
}

func constantHolds(s Sense, rhs float64) bool {
	switch s {
	case LessEqual:
		return 0 <= rhs+tolFor(rhs)
	case GreaterEqual:
		return 0 >= rhs-tolFor(rhs)
	default:
		return math.Abs(rhs) <= tolFor(rhs)
	}
}

func tolFor(v float64) float64 {
	return feasibilityTol * math.Max(1, math.Abs(v))
}
