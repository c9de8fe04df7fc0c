package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// Demand is a fixed hourly consumption of one energy type.
type Demand struct {
	Base
	energyType model.EnergyType
	values     []float64

	profile lp.Series
}

func NewDemand(spec Spec) (*Demand, error) {
	d := &Demand{
		Base:       newBase(spec.Name, KindDemand),
		energyType: spec.EnergyType,
		values:     spec.Values,
	}
	if !spec.EnergyType.Valid() {
		return nil, d.errorf("unknown energy type %q", spec.EnergyType)
	}
	if len(spec.Values) == 0 {
		return nil, d.errorf("demand values are required")
	}
	for i, v := range spec.Values {
		if v < 0 {
			return nil, d.errorf("demand value %d is negative (%g)", i, v)
		}
	}
	return d, nil
}

func (d *Demand) EnergyType() model.EnergyType { return d.energyType }

func (d *Demand) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	p, err := d.param(s, t, "demand", d.values)
	d.profile = p
	return err
}

func (d *Demand) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	return d.registerInput(d.energyType, d.profile)
}

func (d *Demand) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error { return nil }
