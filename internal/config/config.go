package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"energy-planner/internal/model"

	"gopkg.in/yaml.v3"
)

// Solver names accepted in solver.name.
const (
	SolverHiGHS   = "highs"
	SolverCBC     = "cbc"
	SolverSimplex = "simplex"
)

// Engine defaults applied by Load.
const (
	DefaultSolver       = SolverHiGHS
	DefaultTimeout      = 5 * time.Minute
	DefaultTolerance    = 1e-7
	DefaultInterestRate = 0.03
	DefaultResultTTL    = time.Hour
)

// Config is the on-disk engine configuration (YAML).
type Config struct {
	// Optional: technology defaults from a separate YAML file.
	// If both ParametersFile and Parameters are given, Parameters overrides
	// the file per field.
	ParametersFile string     `yaml:"parameters_file"`
	Parameters     Parameters `yaml:"parameters"`

	Solver              SolverConfig  `yaml:"solver"`
	DefaultInterestRate float64       `yaml:"default_interest_rate"`
	HorizonHours        int           `yaml:"horizon_hours"`
	Logging             LoggingConfig `yaml:"logging"`
	Results             ResultsConfig `yaml:"results"`
}

type SolverConfig struct {
	// Name selects the backend: highs or cbc run the external program,
	// simplex the built-in dense simplex for small models.
	Name string `yaml:"name"`
	// Executable overrides the program looked up in PATH for highs and cbc.
	Executable string        `yaml:"executable"`
	Timeout    time.Duration `yaml:"timeout"`
	Tolerance  float64       `yaml:"tolerance"`
	// MaxCells caps the dense tableau of the simplex; 0 selects
	// lp.DefaultMaxCells.
	MaxCells int `yaml:"max_cells"`
	// Parallel bounds concurrent runs of comparison requests.
	Parallel int `yaml:"parallel"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ResultsConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	c.Parameters = MergeParameters(DefaultParameters(), c.Parameters)
	return c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := DefaultParameters()
	if c.ParametersFile != "" {
		loaded, err := LoadParameters(ResolvePath(filepath.Dir(path), c.ParametersFile))
		if err != nil {
			return nil, err
		}
		base = MergeParameters(base, loaded)
	}
	c.Parameters = MergeParameters(base, c.Parameters)
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Solver.Name == "" {
		c.Solver.Name = DefaultSolver
	}
	if c.Solver.Timeout == 0 {
		c.Solver.Timeout = DefaultTimeout
	}
	if c.Solver.Tolerance == 0 {
		c.Solver.Tolerance = DefaultTolerance
	}
	if c.Solver.Parallel == 0 {
		c.Solver.Parallel = 2
	}
	if c.DefaultInterestRate == 0 {
		c.DefaultInterestRate = DefaultInterestRate
	}
	if c.HorizonHours == 0 {
		c.HorizonHours = model.HoursPerYear
	}
	if c.Results.TTL == 0 {
		c.Results.TTL = DefaultResultTTL
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch c.Solver.Name {
	case SolverHiGHS, SolverCBC, SolverSimplex:
	default:
		return fmt.Errorf("solver.name %q is not supported (use %s, %s or %s)", c.Solver.Name, SolverHiGHS, SolverCBC, SolverSimplex)
	}
	if c.Solver.Executable != "" && c.Solver.Name == SolverSimplex {
		return errors.New("solver.executable only applies to highs and cbc")
	}
	if c.Solver.Timeout < 0 {
		return errors.New("solver.timeout must be >= 0")
	}
	if c.Solver.Tolerance < 0 {
		return errors.New("solver.tolerance must be >= 0")
	}
	if c.Solver.MaxCells < 0 {
		return errors.New("solver.max_cells must be >= 0")
	}
	if c.Solver.Parallel < 1 {
		return errors.New("solver.parallel must be >= 1")
	}
	if c.DefaultInterestRate < 0 || c.DefaultInterestRate >= 1 {
		return fmt.Errorf("default_interest_rate must be in [0, 1), got %g", c.DefaultInterestRate)
	}
	if c.HorizonHours < 1 || c.HorizonHours > model.HoursPerYear {
		return fmt.Errorf("horizon_hours must be in [1, %d], got %d", model.HoursPerYear, c.HorizonHours)
	}
	if err := c.Parameters.Validate(); err != nil {
		return fmt.Errorf("parameters invalid: %w", err)
	}
	return nil
}

// Hours is the time index every model is built on. It fails for a horizon
// outside [1, 8760], which Validate rejects.
func (c *Config) Hours() (model.TimeIndex, error) {
	if c.HorizonHours > model.HoursPerYear {
		return model.TimeIndex{}, fmt.Errorf("horizon_hours: %d exceeds one year", c.HorizonHours)
	}
	t, err := model.NewTimeIndex(c.HorizonHours)
	if err != nil {
		return model.TimeIndex{}, fmt.Errorf("horizon_hours: %w", err)
	}
	return t, nil
}

// ResolvePath interprets a relative path against dir first, falling back to
// the path as given (relative to cwd) if that does not exist.
func ResolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) || dir == "" {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}
