package lp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Backend names an external LP solver program.
type Backend string

const (
	HiGHS Backend = "highs"
	CBC   Backend = "cbc"
)

var (
	ErrSolverNotFound = errors.New("lp: solver executable not found")
	ErrUnknownBackend = errors.New("lp: unknown solver backend")
)

// Command solves problems with an external solver program. Each solve writes
// the problem as MPS into a fresh temporary directory and reads the solution
// file back. The program gets the remaining context time as its own time
// limit and is killed when the context ends.
type Command struct {
	Backend Backend
	// Path is the executable. Empty looks the backend name up in PATH.
	Path string
	// TempDir holds the exchange files. Empty uses os.TempDir.
	TempDir string
}

func NewCommand(b Backend, path string) *Command {
	return &Command{Backend: b, Path: path}
}

// Executable resolves the program that Solve runs.
func (c *Command) Executable() (string, error) {
	name := c.Path
	if name == "" {
		name = string(c.Backend)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSolverNotFound, c.Backend, err)
	}
	return path, nil
}

func (c *Command) Solve(ctx context.Context, p *Problem, o Overrides) (*Solution, error) {
	if p == nil {
		return nil, ErrNoProblem
	}
	if err := p.Err(); err != nil {
		return nil, err
	}
	if c.Backend != HiGHS && c.Backend != CBC {
		return nil, fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}
	exe, err := c.Executable()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	sol, err := c.solve(ctx, exe, p, o)
	if err != nil {
		return nil, err
	}
	sol.Duration = time.Since(start)
	return sol, nil
}

func (c *Command) solve(ctx context.Context, exe string, p *Problem, o Overrides) (*Solution, error) {
	if err := ctx.Err(); err != nil {
		return &Solution{Status: StatusInterrupted, Message: err.Error()}, nil
	}
	bnd, live, err := presolve(p, o)
	if err != nil {
		var d *decided
		if errors.As(err, &d) {
			return &Solution{Status: d.status, Message: d.msg}, nil
		}
		return nil, err
	}

	dir, err := os.MkdirTemp(c.TempDir, "energy-planner-lp-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)
	modelPath := filepath.Join(dir, "model.mps")
	solPath := filepath.Join(dir, "solution.txt")
	logPath := filepath.Join(dir, "solver.log")

	if err := writeModel(modelPath, p, bnd, live); err != nil {
		return nil, err
	}
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, exe, c.args(modelPath, solPath, timeLimit(ctx))...)
	cmd.Dir = dir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.WaitDelay = time.Second

	rows := 0
	for _, ok := range live {
		if ok {
			rows++
		}
	}
	log.Debug().
		Str("backend", string(c.Backend)).
		Str("executable", exe).
		Int("variables", p.NumVars()).
		Int("rows", rows).
		Msg("external solve started")

	runErr := cmd.Run()
	logFile.Close()
	if err := ctx.Err(); err != nil {
		return &Solution{Status: StatusInterrupted, Message: err.Error()}, nil
	}

	raw, err := os.ReadFile(solPath)
	if err != nil {
		msg := fmt.Sprintf("%s wrote no solution", c.Backend)
		if runErr != nil {
			msg += ": " + runErr.Error()
		}
		if tail := logTail(logPath); tail != "" {
			msg += ": " + tail
		}
		return &Solution{Status: StatusError, Message: msg}, nil
	}

	var parsed solverOutput
	switch c.Backend {
	case CBC:
		parsed, err = parseCBC(raw, p.NumVars())
	default:
		parsed, err = parseHiGHS(raw, p.NumVars())
	}
	if err != nil {
		return &Solution{Status: StatusError, Message: err.Error()}, nil
	}
	if parsed.status != StatusOptimal {
		return &Solution{Status: parsed.status, Message: parsed.message}, nil
	}
	for j, b := range bnd {
		if b.Lower == b.Upper {
			parsed.values[j] = b.Lower
		}
	}
	obj := p.objective.Eval(func(v Var) float64 { return parsed.values[v] })
	sol := NewSolution(StatusOptimal, obj, parsed.values)
	sol.Message = parsed.message
	return sol, nil
}

func (c *Command) args(model, solution string, limit time.Duration) []string {
	secs := ""
	if limit > 0 {
		secs = strconv.FormatFloat(math.Max(limit.Seconds(), 1), 'f', 0, 64)
	}
	switch c.Backend {
	case CBC:
		args := []string{model}
		if secs != "" {
			args = append(args, "-sec", secs)
		}
		return append(args, "-solve", "-solu", solution)
	default:
		args := []string{"--model_file", model, "--solution_file", solution}
		if secs != "" {
			args = append(args, "--time_limit", secs)
		}
		return args
	}
}

func writeModel(path string, p *Problem, bnd []Bounds, live []bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeMPS(f, p, bnd, live); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// timeLimit is the time left before the context deadline, or 0 without one.
func timeLimit(ctx context.Context) time.Duration {
	d, ok := ctx.Deadline()
	if !ok {
		return 0
	}
	return time.Until(d)
}

// logTail returns the last lines of the solver log on one line.
func logTail(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	var lines []string
	for _, l := range strings.Split(string(raw), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	out := strings.Join(lines, "; ")
	if len(out) > 400 {
		out = out[len(out)-400:]
	}
	return out
}
