// Package planner wires configuration, components and the scenario runner
// into the operations exposed by the API and the CLI.
package planner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"energy-planner/internal/analysis"
	"energy-planner/internal/config"
	"energy-planner/internal/data"
	"energy-planner/internal/lp"
	"energy-planner/internal/metrics"
	"energy-planner/internal/model"
	"energy-planner/internal/scenario"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var ErrNoVariants = errors.New("planner: no variants")

// Planner runs optimization requests against one engine configuration.
// It is safe for concurrent use.
type Planner struct {
	cfg     *config.Config
	solver  lp.Solver
	cache   *data.ResultCache
	metrics *metrics.Collector
	baseDir string
}

type Option func(*Planner)

// WithSolver replaces the solver selected by the configuration.
func WithSolver(s lp.Solver) Option { return func(p *Planner) { p.solver = s } }

// WithCache keeps every finished run in c.
func WithCache(c *data.ResultCache) Option { return func(p *Planner) { p.cache = c } }

func WithMetrics(m *metrics.Collector) Option { return func(p *Planner) { p.metrics = m } }

// WithBaseDir resolves relative series files in requests against dir.
func WithBaseDir(dir string) Option { return func(p *Planner) { p.baseDir = dir } }

func New(cfg *config.Config, opts ...Option) *Planner {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Planner{cfg: cfg}
	for _, o := range opts {
		o(p)
	}
	if p.solver == nil {
		p.solver = NewSolver(cfg.Solver)
	}
	if p.cache != nil && p.metrics != nil {
		p.cache.OnChange(p.metrics.SetCachedResults)
	}
	return p
}

// NewSolver returns the backend selected by solver.name. A missing highs or
// cbc executable is logged here and reported again by every solve.
func NewSolver(c config.SolverConfig) lp.Solver {
	var backend lp.Backend
	switch c.Name {
	case config.SolverSimplex:
		s := lp.NewSimplex(c.Tolerance, c.MaxCells)
		s.Workers = c.Parallel
		return s
	case config.SolverCBC:
		backend = lp.CBC
	default:
		backend = lp.HiGHS
	}
	cmd := lp.NewCommand(backend, c.Executable)
	if _, err := cmd.Executable(); err != nil {
		log.Warn().Err(err).Str("solver", c.Name).Msg("solver program is not available")
	}
	return cmd
}

func (p *Planner) Config() *config.Config { return p.cfg }

// Cache returns the result cache, which may be nil.
func (p *Planner) Cache() *data.ResultCache { return p.cache }

func (p *Planner) runner(hours model.TimeIndex) *scenario.Runner {
	return scenario.NewRunner(p.solver, hours,
		scenario.WithTimeout(p.cfg.Solver.Timeout),
		scenario.WithMetrics(p.metrics),
	)
}

// Plan builds and solves one request. Configuration and structural errors
// are returned; solver outcomes are reported in the outcome's result.
func (p *Planner) Plan(ctx context.Context, req *config.Request) (*scenario.Outcome, error) {
	opts, err := p.cfg.Options(p.baseDir)
	if err != nil {
		return nil, err
	}
	components, err := req.Build(opts)
	if err != nil {
		return nil, err
	}
	o, err := p.runner(opts.Hours).Run(ctx, components)
	if err != nil {
		return nil, err
	}
	p.cache.Set(o)
	log.Info().
		Str("id", o.Result.ID).
		Str("status", string(o.Result.Status)).
		Str("state", o.State.String()).
		Msg("optimization finished")
	return o, nil
}

// Variant is one named alternative of a comparison. Set fields of Request
// replace those of the comparison's base request.
type Variant struct {
	Name    string         `yaml:"name" json:"name"`
	Request config.Request `yaml:"request" json:"request"`
}

// Comparison is the input of Compare.
type Comparison struct {
	Base     config.Request `yaml:"base" json:"base"`
	Variants []Variant      `yaml:"variants" json:"variants"`
}

// Compared holds the ranking and the outcome of every variant, in input
// order.
type Compared struct {
	Ranking  []analysis.RankedVariant
	Outcomes []*scenario.Outcome
}

// Compare plans every variant with at most solver.parallel runs at a time
// and ranks them by total annuities. The first configuration error cancels
// the remaining runs.
func (p *Planner) Compare(ctx context.Context, cmp Comparison) (*Compared, error) {
	if len(cmp.Variants) == 0 {
		return nil, ErrNoVariants
	}
	outcomes := make([]*scenario.Outcome, len(cmp.Variants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Solver.Parallel)
	for i, v := range cmp.Variants {
		req := Merge(cmp.Base, v.Request)
		g.Go(func() error {
			o, err := p.Plan(ctx, &req)
			if err != nil {
				return fmt.Errorf("variant %q: %w", name(v, i), err)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	variants := make([]analysis.Variant, len(outcomes))
	for i, o := range outcomes {
		variants[i] = analysis.Variant{Name: name(cmp.Variants[i], i), Result: o.Result}
	}
	return &Compared{Ranking: analysis.RankByAnnuity(variants), Outcomes: outcomes}, nil
}

func name(v Variant, i int) string {
	if v.Name != "" {
		return v.Name
	}
	return fmt.Sprintf("variant_%d", i+1)
}

// Merge returns base with every set field of override applied. Lists
// replace the base lists as a whole.
func Merge(base, override config.Request) config.Request {
	out := base
	if override.InterestRate != nil {
		out.InterestRate = override.InterestRate
	}
	if len(override.Demands) > 0 {
		out.Demands = override.Demands
	}
	if len(override.Components) > 0 {
		out.Components = override.Components
	}
	if len(override.Tariffs) > 0 {
		out.Tariffs = override.Tariffs
	}
	return out
}

// LoadComparison reads a comparison from a .json file or, otherwise, YAML.
func LoadComparison(path string) (*Comparison, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Comparison
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &c)
	} else {
		err = yaml.Unmarshal(raw, &c)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}
