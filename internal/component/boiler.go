package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// Boiler burns a fuel into heat at a fixed efficiency.
type Boiler struct {
	Base
	Investment
	fuel       model.EnergyType
	capex      float64
	efficiency float64
	installed  float64
	potential  *float64

	input  lp.Series
	output lp.Series
	power  lp.Var
}

func NewGasBoiler(spec Spec) (*Boiler, error) {
	return newBoiler(spec, KindGasBoiler, model.NaturalGas)
}

func NewSolidFuelBoiler(spec Spec) (*Boiler, error) {
	return newBoiler(spec, KindSolidFuelBoiler, model.SolidFuel)
}

func newBoiler(spec Spec, kind Kind, fuel model.EnergyType) (*Boiler, error) {
	b := &Boiler{
		Base:       newBase(spec.Name, kind),
		Investment: newInvestment(spec),
		fuel:       fuel,
		capex:      spec.Capex,
		efficiency: spec.Efficiency,
		installed:  spec.InstalledPower,
		potential:  spec.PotentialPower,
	}
	if spec.Efficiency <= 0 {
		return nil, b.errorf("efficiency must be > 0, got %g", spec.Efficiency)
	}
	if err := b.Investment.validate(); err != nil {
		return nil, b.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{"capex": spec.Capex}); err != nil {
		return nil, b.wrap(err)
	}
	if err := checkSize("power", spec.InstalledPower, spec.PotentialPower); err != nil {
		return nil, b.wrap(err)
	}
	return b, nil
}

func (b *Boiler) LoadParameters(s *lp.Scope, t model.TimeIndex) error { return nil }

func (b *Boiler) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	b.input = s.AddVarSeries("input", t.Len(), lp.NonNegative)
	b.output = s.AddVarSeries("output", t.Len(), lp.NonNegative)
	b.power = b.declareSize(s, AttrAdvisedPower, b.installed, b.potential)
	b.declareCostVariables(s, &b.Base)
	if err := b.registerInput(b.fuel, b.input); err != nil {
		return err
	}
	return b.registerOutput(model.Thermal, b.output)
}

func (b *Boiler) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		s.EqAt("conversion", i, b.output.At(i), lp.Scaled(b.input.Var(i), b.efficiency))
		s.LeAt("power_limit", i, b.output.At(i), lp.V(b.power))
	}
	b.declareCostConstraints(s, lp.Scaled(b.power, b.capex))
	return nil
}
