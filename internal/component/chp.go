package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// CombinedHeatPower burns gas into electricity and heat. It is sized and
// priced by its electrical power. The advised heat power is not a free
// variable: heat_power_eq pins it to power * efficiency_thermal /
// efficiency_electrical, so thermal_limit binds on the electrical sizing and
// the heat side cannot be oversized at no cost.
type CombinedHeatPower struct {
	Base
	Investment
	capex     float64
	effEl     float64
	effTh     float64
	installed float64
	potential *float64

	gas       lp.Series
	el        lp.Series
	th        lp.Series
	power     lp.Var
	heatPower lp.Var
}

func NewCombinedHeatPower(spec Spec) (*CombinedHeatPower, error) {
	c := &CombinedHeatPower{
		Base:       newBase(spec.Name, KindCombinedHeatPower),
		Investment: newInvestment(spec),
		capex:      spec.Capex,
		effEl:      spec.ElectricalEfficiency,
		effTh:      spec.ThermalEfficiency,
		installed:  spec.InstalledPower,
		potential:  spec.PotentialPower,
	}
	if c.effEl <= 0 {
		return nil, c.errorf("electrical efficiency must be > 0, got %g", c.effEl)
	}
	if c.effTh < 0 {
		return nil, c.errorf("thermal efficiency must be >= 0, got %g", c.effTh)
	}
	if c.effEl+c.effTh > 1 {
		return nil, c.errorf("efficiencies add up to %g, more than the fuel input", c.effEl+c.effTh)
	}
	if err := c.Investment.validate(); err != nil {
		return nil, c.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{"capex": spec.Capex}); err != nil {
		return nil, c.wrap(err)
	}
	if err := checkSize("power", spec.InstalledPower, spec.PotentialPower); err != nil {
		return nil, c.wrap(err)
	}
	return c, nil
}

func (c *CombinedHeatPower) LoadParameters(s *lp.Scope, t model.TimeIndex) error { return nil }

func (c *CombinedHeatPower) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	c.gas = s.AddVarSeries("input_gas", t.Len(), lp.NonNegative)
	c.el = s.AddVarSeries("output_electrical", t.Len(), lp.NonNegative)
	c.th = s.AddVarSeries("output_thermal", t.Len(), lp.NonNegative)
	c.power = c.declareSize(s, AttrAdvisedPower, c.installed, c.potential)
	c.heatPower = s.AddVar(string(AttrAdvisedHeatPower), lp.NonNegative)
	c.attrs[AttrAdvisedHeatPower] = c.heatPower
	c.declareCostVariables(s, &c.Base)

	if err := c.registerInput(model.NaturalGas, c.gas); err != nil {
		return err
	}
	if err := c.registerOutput(model.Electrical, c.el); err != nil {
		return err
	}
	return c.registerOutput(model.Thermal, c.th)
}

func (c *CombinedHeatPower) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		s.EqAt("electrical_conversion", i, c.el.At(i), lp.Scaled(c.gas.Var(i), c.effEl))
		s.EqAt("thermal_conversion", i, c.th.At(i), lp.Scaled(c.gas.Var(i), c.effTh))
		s.LeAt("electrical_limit", i, c.el.At(i), lp.V(c.power))
		s.LeAt("thermal_limit", i, c.th.At(i), lp.V(c.heatPower))
	}
	s.Eq("heat_power_eq", lp.V(c.heatPower), lp.Scaled(c.power, c.effTh/c.effEl))
	c.declareCostConstraints(s, lp.Scaled(c.power, c.capex))
	return nil
}
