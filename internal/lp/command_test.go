package lp

import (
	"bytes"
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSolver writes a shell script that accepts the HiGHS and CBC argument
// styles, sets $model and $sol, and then runs body.
func fakeSolver(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	script := `#!/bin/sh
model=""
sol=""
while [ $# -gt 0 ]; do
  case "$1" in
    --model_file) model="$2" ;;
    --solution_file|-solu) sol="$2" ;;
    *.mps) model="$1" ;;
  esac
  shift
done
` + body
	path := filepath.Join(t.TempDir(), "fake-solver")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func boundedCover() (*Problem, Var, Var) {
	p := NewProblem()
	x := p.AddVar("x", Between(0, 1.5))
	y := p.AddVar("y", NonNegative)
	p.AddConstraint("cover", -1, Sum(x, y), GreaterEqual, Const(2))
	obj := Expr{}
	obj.Add(x, 1)
	obj.Add(y, 2)
	p.SetObjective(obj)
	return p, x, y
}

func TestWriteMPS(t *testing.T) {
	p := NewProblem()
	x := p.AddVar("x", Between(0, 1.5))
	y := p.AddVar("y", Free)
	z := p.AddVar("z", Fixed(2))
	w := p.AddVar("w", Between(math.Inf(-1), 4))
	p.AddConstraint("cover", -1, Sum(x, y), GreaterEqual, Const(2))
	p.AddConstraint("cap", -1, Expr{Terms: []Term{{Var: x, Coef: 1}, {Var: x, Coef: 2}, {Var: z, Coef: -1}}, Constant: 1}, LessEqual, Const(0))
	p.AddConstraint("tie", -1, V(w), Equal, V(y))
	obj := Expr{}
	obj.Add(x, 1)
	obj.Add(y, -0.5)
	p.SetObjective(obj)

	var buf bytes.Buffer
	require.NoError(t, writeMPS(&buf, p, []Bounds{p.Bounds(x), p.Bounds(y), p.Bounds(z), p.Bounds(w)}, []bool{true, true, true}))
	want := `NAME energy FREE
ROWS
 N obj
 G r0
 L r1
 E r2
COLUMNS
 x0 obj 1
 x0 r0 1
 x0 r1 3
 x1 obj -0.5
 x1 r0 1
 x1 r2 -1
 x2 r1 -1
 x3 r2 1
RHS
 rhs r0 2
 rhs r1 -1
BOUNDS
 UP bnd x0 1.5
 FR bnd x1
 FX bnd x2 2
 MI bnd x3
 UP bnd x3 4
ENDATA
`
	assert.Equal(t, want, buf.String())
}

func TestWriteMPSSkipsFoldedRows(t *testing.T) {
	p := NewProblem()
	x := p.AddVar("x", NonNegative)
	p.AddVar("unused", NonNegative)
	p.AddConstraint("cap", -1, V(x), LessEqual, Const(3))
	p.SetObjective(Scaled(x, -1))

	bnd, live, err := presolve(p, nil)
	require.NoError(t, err)
	assert.Equal(t, []bool{false}, live)

	var buf bytes.Buffer
	require.NoError(t, writeMPS(&buf, p, bnd, live))
	assert.NotContains(t, buf.String(), " L r0")
	assert.Contains(t, buf.String(), " UP bnd x0 3\n")
	assert.Contains(t, buf.String(), " x1 obj 0\n")
}

func TestParseHiGHS(t *testing.T) {
	optimal := `Model status
Optimal

# Primal solution values
Feasible
Objective 2.5
# Columns 2
x0 1.5
x1 0.5
# Rows 1
r0 2

# Dual solution values
Feasible
# Columns 2
x0 -1
x1 0
# Rows 1
r0 2
`
	out, err := parseHiGHS([]byte(optimal), 2)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, out.status)
	assert.Equal(t, []float64{1.5, 0.5}, out.values)

	unnamed := strings.Replace(strings.Replace(optimal, "x0 1.5", "1.5", 1), "x1 0.5", "0.5", 1)
	out, err = parseHiGHS([]byte(unnamed), 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 0.5}, out.values)

	for status, want := range map[string]Status{
		"Infeasible":                     StatusInfeasible,
		"Primal infeasible or unbounded": StatusInfeasible,
		"Unbounded":                      StatusUnbounded,
		"Time limit reached":             StatusInterrupted,
		"Model error":                    StatusInvalid,
		"Solve error":                    StatusError,
	} {
		raw := "Model status\n" + status + "\n\n# Primal solution values\nNone\n"
		out, err := parseHiGHS([]byte(raw), 2)
		require.NoError(t, err, status)
		assert.Equal(t, want, out.status, status)
		assert.Nil(t, out.values, status)
		assert.Contains(t, out.message, status)
	}

	_, err = parseHiGHS([]byte("garbage\n"), 2)
	assert.Error(t, err)
	_, err = parseHiGHS([]byte("Model status\nOptimal\n\n# Primal solution values\nFeasible\n# Columns 2\nx0 1\n"), 2)
	assert.Error(t, err)
}

func TestParseCBC(t *testing.T) {
	optimal := `Optimal - objective value 2.50000000
      0 x0                   1.5                       0
      1 x1                   0.5                       0
`
	out, err := parseCBC([]byte(optimal), 3)
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, out.status)
	assert.Equal(t, []float64{1.5, 0.5, 0}, out.values)

	for head, want := range map[string]Status{
		"Infeasible - objective value 0.00000000":                 StatusInfeasible,
		"Unbounded - objective value -1e+50":                      StatusUnbounded,
		"Stopped on time - objective value 3.00000000":            StatusInterrupted,
		"Stopped on iterations - objective value 3.00000000":      StatusError,
		"Dual infeasible - objective value 0.00000000":            StatusUnbounded,
		"Optimal (within gap tolerance) - objective value 2.0000": StatusOptimal,
	} {
		out, err := parseCBC([]byte(head+"\n"), 1)
		require.NoError(t, err, head)
		assert.Equal(t, want, out.status, head)
	}

	out, err = parseCBC([]byte("Optimal - objective value 1\n**    0 x0  1  0\n      0 r0  1  0\n"), 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, out.values)

	_, err = parseCBC(nil, 1)
	assert.Error(t, err)
}

func TestCommandRunsSolverProgram(t *testing.T) {
	kept := filepath.Join(t.TempDir(), "model.mps")
	exe := fakeSolver(t, `cp "$model" "`+kept+`"
cat > "$sol" <<'EOF'
Model status
Optimal

# Primal solution values
Feasible
Objective 2.5
# Columns 2
x0 1.5
x1 0.5
# Rows 1
r0 2
EOF
`)
	p, x, y := boundedCover()
	sol, err := NewCommand(HiGHS, exe).Solve(context.Background(), p, nil)
	require.NoError(t, err)
	require.True(t, sol.Optimal(), sol.Message)
	assert.InDelta(t, 1.5, sol.Value(x), 1e-12)
	assert.InDelta(t, 0.5, sol.Value(y), 1e-12)
	assert.InDelta(t, 2.5, sol.Objective, 1e-12)

	model, err := os.ReadFile(kept)
	require.NoError(t, err)
	assert.Contains(t, string(model), " G r0\n")
	assert.Contains(t, string(model), " UP bnd x0 1.5\n")
}

func TestCommandCBCStatus(t *testing.T) {
	exe := fakeSolver(t, `echo "Infeasible - objective value 0.00000000" > "$sol"
`)
	p, _, _ := boundedCover()
	sol, err := NewCommand(CBC, exe).Solve(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Contains(t, sol.Message, "cbc: Infeasible")
}

func TestCommandWithoutSolutionFile(t *testing.T) {
	exe := fakeSolver(t, `echo "license expired" >&2
exit 3
`)
	p, _, _ := boundedCover()
	sol, err := NewCommand(HiGHS, exe).Solve(context.Background(), p, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusError, sol.Status)
	assert.Contains(t, sol.Message, "license expired")
}

func TestCommandKilledOnTimeout(t *testing.T) {
	exe := fakeSolver(t, `exec sleep 30
`)
	p, _, _ := boundedCover()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	sol, err := NewCommand(HiGHS, exe).Solve(ctx, p, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusInterrupted, sol.Status)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestCommandPresolveShortCircuits(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "ran")
	exe := fakeSolver(t, `touch "`+marker+`"
`)
	p := NewProblem()
	x := p.AddVar("x", Between(0, 5))
	p.AddConstraint("floor", -1, V(x), GreaterEqual, Const(2))
	p.SetObjective(V(x))

	o := Overrides{}
	o.Fix(x, 1)
	sol, err := NewCommand(CBC, exe).Solve(context.Background(), p, o)
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.NoFileExists(t, marker)
}

func TestCommandErrors(t *testing.T) {
	p, _, _ := boundedCover()

	_, err := NewCommand(HiGHS, filepath.Join(t.TempDir(), "missing")).Solve(context.Background(), p, nil)
	assert.ErrorIs(t, err, ErrSolverNotFound)

	_, err = NewCommand("glpk", "").Solve(context.Background(), p, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = NewCommand(HiGHS, "").Solve(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrNoProblem)
}

func TestCommandArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"--model_file", "m.mps", "--solution_file", "s.txt", "--time_limit", "90"},
		NewCommand(HiGHS, "").args("m.mps", "s.txt", 90*time.Second))
	assert.Equal(t,
		[]string{"m.mps", "-sec", "1", "-solve", "-solu", "s.txt"},
		NewCommand(CBC, "").args("m.mps", "s.txt", 200*time.Millisecond))
	assert.Equal(t,
		[]string{"m.mps", "-solve", "-solu", "s.txt"},
		NewCommand(CBC, "").args("m.mps", "s.txt", 0))
}

// TestInstalledBackends runs the real programs when they are on PATH.
func TestInstalledBackends(t *testing.T) {
	for _, b := range []Backend{HiGHS, CBC} {
		t.Run(string(b), func(t *testing.T) {
			if _, err := exec.LookPath(string(b)); err != nil {
				t.Skipf("%s not installed", b)
			}
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			s := NewCommand(b, "")

			p, x, y := boundedCover()
			sol, err := s.Solve(ctx, p, nil)
			require.NoError(t, err)
			require.True(t, sol.Optimal(), sol.Message)
			assert.InDelta(t, 1.5, sol.Value(x), 1e-6)
			assert.InDelta(t, 0.5, sol.Value(y), 1e-6)

			q := NewProblem()
			a := q.AddVar("a", NonNegative)
			c := q.AddVar("c", NonNegative)
			q.AddConstraint("tie", -1, V(a), Equal, V(c))
			q.SetObjective(Scaled(a, -1))
			sol, err = s.Solve(ctx, q, nil)
			require.NoError(t, err)
			assert.Equal(t, StatusUnbounded, sol.Status, sol.Message)

			r := NewProblem()
			u := r.AddVar("u", Between(0, 1))
			v := r.AddVar("v", Between(0, 1))
			r.AddConstraint("sum", -1, Sum(u, v), GreaterEqual, Const(3))
			r.SetObjective(Sum(u, v))
			sol, err = s.Solve(ctx, r, nil)
			require.NoError(t, err)
			assert.Equal(t, StatusInfeasible, sol.Status, sol.Message)
		})
	}
}
