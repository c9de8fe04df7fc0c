// Package component implements the technologies of an energy system model.
//
// Every component contributes to a shared lp.Problem in three phases:
// parameters, variables, constraints. Energy it consumes or produces is
// registered in its Bilance, from which the composer builds the balances.
package component

import (
	"errors"
	"fmt"
	"math"

	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// ErrConfig marks invalid component parameters.
var ErrConfig = errors.New("invalid component configuration")

// ConfigError is an ErrConfig raised for one named component.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("component %s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// Component is one technology instance in a model.
type Component interface {
	Name() string
	Kind() Kind
	LoadParameters(s *lp.Scope, t model.TimeIndex) error
	DeclareVariables(s *lp.Scope, t model.TimeIndex) error
	DeclareConstraints(s *lp.Scope, t model.TimeIndex) error
	Bilance() *Bilance
	Attributes() Attributes
	Sizing() []Sizing
}

// AddToModel runs the three phases of c against p under a scope named after
// the component.
func AddToModel(p *lp.Problem, c Component, t model.TimeIndex) error {
	s := p.Scope(c.Name())
	phases := []struct {
		name string
		fn   func(*lp.Scope, model.TimeIndex) error
	}{
		{"load parameters", c.LoadParameters},
		{"declare variables", c.DeclareVariables},
		{"declare constraints", c.DeclareConstraints},
	}
	for _, ph := range phases {
		if err := ph.fn(s, t); err != nil {
			return fmt.Errorf("%s: %w", ph.name, err)
		}
		if err := s.Err(); err != nil {
			return fmt.Errorf("component %s: %s: %w", c.Name(), ph.name, err)
		}
	}
	return nil
}

// Base carries the state every component shares.
type Base struct {
	name    string
	kind    Kind
	bilance Bilance
	attrs   Attributes
	sizing  []Sizing
}

func newBase(name string, kind Kind) Base {
	if name == "" {
		name = kind.NamePrefix()
	}
	return Base{name: name, kind: kind, bilance: newBilance(), attrs: Attributes{}}
}

func (b *Base) Name() string { return b.name }

func (b *Base) Kind() Kind { return b.kind }

func (b *Base) Bilance() *Bilance { return &b.bilance }

func (b *Base) Attributes() Attributes { return b.attrs }

func (b *Base) Sizing() []Sizing { return b.sizing }

// declareSize adds a size variable bounded by [installed, potential].
// A nil potential leaves the size unbounded above.
func (b *Base) declareSize(s *lp.Scope, attr Attribute, installed float64, potential *float64) lp.Var {
	v := s.AddVar(string(attr), lp.Between(installed, upper(potential)))
	b.attrs[attr] = v
	b.sizing = append(b.sizing, Sizing{Attribute: attr, Var: v, Installed: installed})
	return v
}

func (b *Base) registerInput(et model.EnergyType, series lp.Series) error {
	if err := b.bilance.RegisterInput(et, series); err != nil {
		return b.wrap(err)
	}
	return nil
}

func (b *Base) registerOutput(et model.EnergyType, series lp.Series) error {
	if err := b.bilance.RegisterOutput(et, series); err != nil {
		return b.wrap(err)
	}
	return nil
}

func (b *Base) errorf(format string, args ...any) error {
	return &ConfigError{Component: b.name, Err: fmt.Errorf(format, args...)}
}

func (b *Base) wrap(err error) error {
	return &ConfigError{Component: b.name, Err: err}
}

// param attaches values as a parameter series after checking its length.
func (b *Base) param(s *lp.Scope, t model.TimeIndex, local string, values []float64) (lp.Series, error) {
	if err := t.Check(local, values); err != nil {
		return lp.Series{}, b.wrap(err)
	}
	return s.AddParam(local, values), nil
}

func upper(potential *float64) float64 {
	if potential == nil {
		return math.Inf(1)
	}
	return *potential
}
