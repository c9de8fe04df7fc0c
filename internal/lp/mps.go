package lp

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

type mpsEntry struct {
	row  int
	coef float64
}

// writeMPS writes p in free MPS format with the given bounds. Only the
// constraints marked live get a row. Columns are named x<var> and rows
// r<constraint>, so solutions can be mapped back without a name table. The
// objective constant is left out; callers evaluate the objective themselves.
func writeMPS(w io.Writer, p *Problem, bnd []Bounds, live []bool) error {
	bw := bufio.NewWriter(w)
	cols := make([][]mpsEntry, p.NumVars())
	add := func(v Var, row int, coef float64) {
		es := cols[v]
		if n := len(es); n > 0 && es[n-1].row == row {
			es[n-1].coef += coef
			return
		}
		cols[v] = append(es, mpsEntry{row: row, coef: coef})
	}

	fmt.Fprintln(bw, "NAME energy FREE")
	fmt.Fprintln(bw, "ROWS")
	fmt.Fprintln(bw, " N obj")
	for _, t := range p.objective.Terms {
		add(t.Var, -1, t.Coef)
	}
	var rhs []mpsEntry
	for i, c := range p.constraints {
		if !live[i] {
			continue
		}
		fmt.Fprintf(bw, " %s r%d\n", mpsSense(c.Sense), i)
		for _, t := range c.Expr.Terms {
			add(t.Var, i, t.Coef)
		}
		if c.Expr.Constant != 0 {
			rhs = append(rhs, mpsEntry{row: i, coef: -c.Expr.Constant})
		}
	}

	fmt.Fprintln(bw, "COLUMNS")
	for j, es := range cols {
		written := false
		for _, e := range es {
			if e.coef == 0 {
				continue
			}
			fmt.Fprintf(bw, " x%d %s %s\n", j, mpsRow(e.row), mpsNum(e.coef))
			written = true
		}
		if !written {
			fmt.Fprintf(bw, " x%d obj 0\n", j)
		}
	}

	fmt.Fprintln(bw, "RHS")
	for _, e := range rhs {
		fmt.Fprintf(bw, " rhs r%d %s\n", e.row, mpsNum(e.coef))
	}

	fmt.Fprintln(bw, "BOUNDS")
	for j, b := range bnd {
		writeBound(bw, j, b)
	}
	fmt.Fprintln(bw, "ENDATA")
	return bw.Flush()
}

func writeBound(w io.Writer, j int, b Bounds) {
	lo, hi := b.Lower, b.Upper
	switch {
	case lo == hi:
		fmt.Fprintf(w, " FX bnd x%d %s\n", j, mpsNum(lo))
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		fmt.Fprintf(w, " FR bnd x%d\n", j)
	default:
		if math.IsInf(lo, -1) {
			fmt.Fprintf(w, " MI bnd x%d\n", j)
		} else if lo != 0 {
			fmt.Fprintf(w, " LO bnd x%d %s\n", j, mpsNum(lo))
		}
		if !math.IsInf(hi, 1) {
			fmt.Fprintf(w, " UP bnd x%d %s\n", j, mpsNum(hi))
		}
	}
}

func mpsSense(s Sense) string {
	switch s {
	case LessEqual:
		return "L"
	case GreaterEqual:
		return "G"
	default:
		return "E"
	}
}

func mpsRow(row int) string {
	if row < 0 {
		return "obj"
	}
	return "r" + strconv.Itoa(row)
}

func mpsNum(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// columnIndex maps an MPS column name written by writeMPS back to its Var.
func columnIndex(name string, n int) (int, bool) {
	if len(name) < 2 || name[0] != 'x' {
		return 0, false
	}
	j, err := strconv.Atoi(name[1:])
	if err != nil || j < 0 || j >= n {
		return 0, false
	}
	return j, true
}
