package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// Generator produces electricity proportional to its advised power and a
// normed production profile (kW per kWp). It backs photovoltaic and wind
// power components.
type Generator struct {
	Base
	Investment
	capex     float64
	installed float64
	potential *float64
	normed    []float64

	production lp.Series
	output     lp.Series
	power      lp.Var
}

// NewPhotovoltaic builds a roof or free-field PV plant. Negative normed
// values, e.g. inverter night consumption, are clipped to zero.
func NewPhotovoltaic(spec Spec) (*Generator, error) {
	if spec.Kind != KindPhotovoltaicFreeField {
		spec.Kind = KindPhotovoltaicRoof
	}
	g, err := newGenerator(spec)
	if err != nil {
		return nil, err
	}
	for i, v := range g.normed {
		if v < 0 {
			g.normed[i] = 0
		}
	}
	return g, nil
}

func NewWindPower(spec Spec) (*Generator, error) {
	spec.Kind = KindWindPower
	g, err := newGenerator(spec)
	if err != nil {
		return nil, err
	}
	for i, v := range g.normed {
		if v < 0 {
			return nil, g.errorf("normed production %d is negative (%g)", i, v)
		}
	}
	return g, nil
}

func newGenerator(spec Spec) (*Generator, error) {
	g := &Generator{
		Base:       newBase(spec.Name, spec.Kind),
		Investment: newInvestment(spec),
		capex:      spec.Capex,
		installed:  spec.InstalledPower,
		potential:  spec.PotentialPower,
	}
	if len(spec.NormedProduction) == 0 {
		return nil, g.errorf("normed production is required")
	}
	g.normed = append([]float64(nil), spec.NormedProduction...)
	if err := g.Investment.validate(); err != nil {
		return nil, g.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{"capex": spec.Capex}); err != nil {
		return nil, g.wrap(err)
	}
	if err := checkSize("power", spec.InstalledPower, spec.PotentialPower); err != nil {
		return nil, g.wrap(err)
	}
	return g, nil
}

func (g *Generator) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	p, err := g.param(s, t, "normed_production", g.normed)
	g.production = p
	return err
}

func (g *Generator) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	g.output = s.AddVarSeries("output", t.Len(), lp.NonNegative)
	g.power = g.declareSize(s, AttrAdvisedPower, g.installed, g.potential)
	g.declareCostVariables(s, &g.Base)
	return g.registerOutput(model.Electrical, g.output)
}

func (g *Generator) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		s.EqAt("production", i, g.output.At(i), lp.Scaled(g.power, g.production.Param(i)))
	}
	g.declareCostConstraints(s, lp.Scaled(g.power, g.capex))
	return nil
}
