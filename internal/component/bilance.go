package component

import (
	"errors"
	"fmt"

	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

var ErrDuplicateFlow = errors.New("component: flow already registered")

// Bilance holds the series a component contributes to the energy balances,
// at most one per energy type and direction.
type Bilance struct {
	input  map[model.EnergyType]lp.Series
	output map[model.EnergyType]lp.Series
}

func newBilance() Bilance {
	return Bilance{
		input:  map[model.EnergyType]lp.Series{},
		output: map[model.EnergyType]lp.Series{},
	}
}

// RegisterInput records s as energy consumed of type et.
func (b *Bilance) RegisterInput(et model.EnergyType, s lp.Series) error {
	return register(b.input, "input", et, s)
}

// RegisterOutput records s as energy produced of type et.
func (b *Bilance) RegisterOutput(et model.EnergyType, s lp.Series) error {
	return register(b.output, "output", et, s)
}

func register(m map[model.EnergyType]lp.Series, dir string, et model.EnergyType, s lp.Series) error {
	if !et.Valid() {
		return fmt.Errorf("%w: unknown energy type %q", ErrConfig, et)
	}
	if _, ok := m[et]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateFlow, et, dir)
	}
	m[et] = s
	return nil
}

func (b *Bilance) Input(et model.EnergyType) (lp.Series, bool) {
	s, ok := b.input[et]
	return s, ok
}

func (b *Bilance) Output(et model.EnergyType) (lp.Series, bool) {
	s, ok := b.output[et]
	return s, ok
}
