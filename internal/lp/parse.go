package lp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// solverOutput is what a solution file says about one solve. Values are set
// for optimal solves only and are indexed by Var.
type solverOutput struct {
	status  Status
	message string
	values  []float64
}

func lines(raw []byte) []string {
	return strings.Split(strings.ReplaceAll(string(raw), "\r\n", "\n"), "\n")
}

// parseHiGHS reads a HiGHS solution file in its raw style: a "Model status"
// block followed by "# Primal solution values" with one "name value" line per
// column.
func parseHiGHS(raw []byte, n int) (solverOutput, error) {
	ls := lines(raw)
	var out solverOutput
	modelStatus := ""
	for i := 0; i < len(ls); i++ {
		switch strings.TrimSpace(ls[i]) {
		case "Model status":
			for i++; i < len(ls) && strings.TrimSpace(ls[i]) == ""; i++ {
			}
			if i < len(ls) {
				modelStatus = strings.TrimSpace(ls[i])
			}
		case "# Primal solution values":
			values, next, err := highsColumns(ls, i+1, n)
			if err != nil {
				return out, err
			}
			out.values, i = values, next
		case "# Dual solution values":
			i = len(ls)
		}
	}
	if modelStatus == "" {
		return out, errors.New("highs: solution file has no model status")
	}
	out.status = highsStatus(modelStatus)
	out.message = "highs: " + modelStatus
	if out.status != StatusOptimal {
		out.values = nil
		return out, nil
	}
	if out.values == nil {
		if n > 0 && modelStatus != "Empty" {
			return out, errors.New("highs: optimal without primal values")
		}
		out.values = make([]float64, n)
	}
	return out, nil
}

func highsColumns(ls []string, i, n int) ([]float64, int, error) {
	for ; i < len(ls); i++ {
		f := strings.Fields(ls[i])
		if len(f) == 0 {
			continue
		}
		if f[0] == "None" {
			return nil, i, nil
		}
		if len(f) != 3 || f[0] != "#" || f[1] != "Columns" {
			continue
		}
		k, err := strconv.Atoi(f[2])
		if err != nil {
			return nil, i, fmt.Errorf("highs: bad column count %q", f[2])
		}
		values := make([]float64, n)
		for r := 0; r < k; r++ {
			i++
			if i >= len(ls) {
				return nil, i, fmt.Errorf("highs: solution file ends after %d of %d columns", r, k)
			}
			f := strings.Fields(ls[i])
			j, raw := r, ""
			switch len(f) {
			case 1:
				raw = f[0]
			case 2:
				var ok bool
				if j, ok = columnIndex(f[0], n); !ok {
					return nil, i, fmt.Errorf("highs: unknown column %q", f[0])
				}
				raw = f[1]
			default:
				return nil, i, fmt.Errorf("highs: malformed column line %q", ls[i])
			}
			if j >= n {
				return nil, i, fmt.Errorf("highs: %d columns for %d variables", k, n)
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, i, fmt.Errorf("highs: column %d: %w", j, err)
			}
			values[j] = v
		}
		return values, i, nil
	}
	return nil, i, errors.New("highs: solution file ends before the column values")
}

func highsStatus(s string) Status {
	switch s {
	case "Optimal", "Empty":
		return StatusOptimal
	case "Infeasible", "Primal infeasible or unbounded":
		return StatusInfeasible
	case "Unbounded":
		return StatusUnbounded
	case "Time limit reached", "Interrupted by user":
		return StatusInterrupted
	case "Load error", "Model error":
		return StatusInvalid
	default:
		return StatusError
	}
}

// parseCBC reads a CBC solution file: a status line, then one
// "index name value reduced-cost" line per non-zero column. Columns that are
// not listed are zero.
func parseCBC(raw []byte, n int) (solverOutput, error) {
	ls := lines(raw)
	var out solverOutput
	first := -1
	for i, l := range ls {
		if strings.TrimSpace(l) != "" {
			first = i
			break
		}
	}
	if first < 0 {
		return out, errors.New("cbc: empty solution file")
	}
	head := strings.TrimSpace(ls[first])
	out.status = cbcStatus(head)
	out.message = "cbc: " + head
	if out.status != StatusOptimal {
		return out, nil
	}
	out.values = make([]float64, n)
	for _, l := range ls[first+1:] {
		f := strings.Fields(l)
		if len(f) > 0 && f[0] == "**" {
			f = f[1:]
		}
		if len(f) < 3 {
			continue
		}
		j, ok := columnIndex(f[1], n)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(f[2], 64)
		if err != nil {
			return out, fmt.Errorf("cbc: column %s: %w", f[1], err)
		}
		out.values[j] = v
	}
	return out, nil
}

func cbcStatus(head string) Status {
	s := strings.ToLower(head)
	switch {
	case strings.HasPrefix(s, "optimal"):
		return StatusOptimal
	case strings.Contains(s, "unbounded"), strings.Contains(s, "dual infeasible"):
		return StatusUnbounded
	case strings.Contains(s, "infeasible"):
		return StatusInfeasible
	case strings.Contains(s, "stopped on time"), strings.Contains(s, "time limit"):
		return StatusInterrupted
	default:
		return StatusError
	}
}
