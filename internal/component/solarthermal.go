package component

import (
	"energy-planner/internal/convert"
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// SolarThermal produces heat proportional to its collector area.
type SolarThermal struct {
	Base
	Investment
	capex      float64
	efficiency float64
	installed  float64
	potential  *float64
	normed     []float64

	production lp.Series
	output     lp.Series
	area       lp.Var
}

// NewSolarThermal accepts either a normed production in kW/m² or an
// irradiance series in W/m², from which the normed production is derived.
func NewSolarThermal(spec Spec) (*SolarThermal, error) {
	st := &SolarThermal{
		Base:       newBase(spec.Name, KindSolarThermal),
		Investment: newInvestment(spec),
		capex:      spec.Capex,
		efficiency: spec.Efficiency,
		installed:  spec.InstalledArea,
		potential:  spec.PotentialArea,
	}
	switch {
	case len(spec.NormedProduction) > 0:
		st.normed = append([]float64(nil), spec.NormedProduction...)
	case len(spec.Irradiance) > 0:
		normed, err := convert.NormalizeIrradiance(spec.Irradiance)
		if err != nil {
			return nil, st.wrap(err)
		}
		st.normed = normed
	default:
		return nil, st.errorf("normed production or irradiance is required")
	}
	if spec.Efficiency <= 0 || spec.Efficiency > 1 {
		return nil, st.errorf("efficiency must be in (0, 1], got %g", spec.Efficiency)
	}
	if err := st.Investment.validate(); err != nil {
		return nil, st.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{"capex": spec.Capex}); err != nil {
		return nil, st.wrap(err)
	}
	if err := checkSize("area", spec.InstalledArea, spec.PotentialArea); err != nil {
		return nil, st.wrap(err)
	}
	for i, v := range st.normed {
		if v < 0 {
			st.normed[i] = 0
		}
	}
	return st, nil
}

func (st *SolarThermal) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	p, err := st.param(s, t, "normed_production", st.normed)
	st.production = p
	return err
}

func (st *SolarThermal) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	st.output = s.AddVarSeries("output", t.Len(), lp.NonNegative)
	st.area = st.declareSize(s, AttrAdvisedArea, st.installed, st.potential)
	st.declareCostVariables(s, &st.Base)
	return st.registerOutput(model.Thermal, st.output)
}

func (st *SolarThermal) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		s.EqAt("production", i, st.output.At(i), lp.Scaled(st.area, st.efficiency*st.production.Param(i)))
	}
	st.declareCostConstraints(s, lp.Scaled(st.area, st.capex))
	return nil
}
