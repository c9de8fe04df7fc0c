package component

import (
	"energy-planner/internal/convert"
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// Default quality grades and supply temperature for heat pumps.
const (
	DefaultQualityGradeAir    = 0.4
	DefaultQualityGradeGround = 0.55
	DefaultSupplyTemperature  = 50.0
)

// HeatPump turns electricity into heat at an hourly COP.
type HeatPump struct {
	Base
	Investment
	capex     float64
	installed float64
	potential *float64
	cop       []float64

	cops   lp.Series
	input  lp.Series
	output lp.Series
	power  lp.Var
}

// NewHeatPump takes the COP series as given, or computes it from the source
// temperature series: air temperature for air-source pumps, soil
// temperature for ground-source pumps. Icing only applies to air.
func NewHeatPump(spec Spec) (*HeatPump, error) {
	if spec.Kind != KindHeatPumpGround {
		spec.Kind = KindHeatPumpAir
	}
	hp := &HeatPump{
		Base:       newBase(spec.Name, spec.Kind),
		Investment: newInvestment(spec),
		capex:      spec.Capex,
		installed:  spec.InstalledPower,
		potential:  spec.PotentialPower,
	}
	switch {
	case len(spec.COP) > 0:
		hp.cop = append([]float64(nil), spec.COP...)
	case len(spec.SourceTemperature) > 0:
		params := convert.COPParams{QualityGrade: spec.QualityGrade}
		if params.QualityGrade == 0 {
			params.QualityGrade = DefaultQualityGradeAir
			if spec.Kind == KindHeatPumpGround {
				params.QualityGrade = DefaultQualityGradeGround
			}
		}
		if spec.Kind == KindHeatPumpAir {
			params.IcingFactor = spec.IcingFactor
		}
		supply := spec.SupplyTemperature
		if supply == 0 {
			supply = DefaultSupplyTemperature
		}
		cop, err := convert.COP([]float64{supply}, spec.SourceTemperature, params)
		if err != nil {
			return nil, hp.wrap(err)
		}
		hp.cop = cop
	default:
		return nil, hp.errorf("cop series or source temperature series is required")
	}
	for i, v := range hp.cop {
		if v <= 0 {
			return nil, hp.errorf("cop %d must be > 0, got %g", i, v)
		}
	}
	if err := hp.Investment.validate(); err != nil {
		return nil, hp.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{"capex": spec.Capex}); err != nil {
		return nil, hp.wrap(err)
	}
	if err := checkSize("power", spec.InstalledPower, spec.PotentialPower); err != nil {
		return nil, hp.wrap(err)
	}
	return hp, nil
}

// COP returns a copy of the hourly coefficients of performance.
func (hp *HeatPump) COP() []float64 { return append([]float64(nil), hp.cop...) }

func (hp *HeatPump) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	p, err := hp.param(s, t, "cop", hp.cop)
	hp.cops = p
	return err
}

func (hp *HeatPump) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	hp.input = s.AddVarSeries("input", t.Len(), lp.NonNegative)
	hp.output = s.AddVarSeries("output", t.Len(), lp.NonNegative)
	hp.power = hp.declareSize(s, AttrAdvisedPower, hp.installed, hp.potential)
	hp.declareCostVariables(s, &hp.Base)
	if err := hp.registerInput(model.Electrical, hp.input); err != nil {
		return err
	}
	return hp.registerOutput(model.Thermal, hp.output)
}

func (hp *HeatPump) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		s.EqAt("conversion", i, hp.output.At(i), lp.Scaled(hp.input.Var(i), hp.cops.Param(i)))
		s.LeAt("power_limit", i, hp.output.At(i), lp.V(hp.power))
	}
	hp.declareCostConstraints(s, lp.Scaled(hp.power, hp.capex))
	return nil
}
