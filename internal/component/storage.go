package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// Storage shifts energy of one type in time. Its net input, charge minus
// efficiency-weighted discharge, is registered as an input of its type and
// becomes negative while discharging.
type Storage struct {
	Base
	Investment
	energyType        model.EnergyType
	capexPower        float64
	capexCapacity     float64
	efficiency        float64
	initialSOC        float64
	relativeLosses    float64
	installedPower    float64
	installedCapacity float64
	potentialPower    *float64
	potentialCapacity *float64

	charge    lp.Series
	discharge lp.Series
	stored    lp.Series
	losses    lp.Series
	net       lp.Series
	power     lp.Var
	capacity  lp.Var
}

func NewElectricalStorage(spec Spec) (*Storage, error) {
	return newStorage(spec, KindElectricalStorage, model.Electrical)
}

func NewThermalStorage(spec Spec) (*Storage, error) {
	return newStorage(spec, KindThermalStorage, model.Thermal)
}

func newStorage(spec Spec, kind Kind, et model.EnergyType) (*Storage, error) {
	st := &Storage{
		Base:              newBase(spec.Name, kind),
		Investment:        newInvestment(spec),
		energyType:        et,
		capexPower:        spec.CapexPower,
		capexCapacity:     spec.CapexCapacity,
		efficiency:        spec.Efficiency,
		initialSOC:        spec.InitialSOC,
		relativeLosses:    spec.RelativeLosses,
		installedPower:    spec.InstalledPower,
		installedCapacity: spec.InstalledCapacity,
		potentialPower:    spec.PotentialPower,
		potentialCapacity: spec.PotentialCapacity,
	}
	if st.efficiency <= 0 || st.efficiency > 1 {
		return nil, st.errorf("efficiency must be in (0, 1], got %g", st.efficiency)
	}
	if st.initialSOC < 0 || st.initialSOC > 1 {
		return nil, st.errorf("initial soc must be in [0, 1], got %g", st.initialSOC)
	}
	if st.relativeLosses < 0 || st.relativeLosses >= 1 {
		return nil, st.errorf("relative losses must be in [0, 1), got %g", st.relativeLosses)
	}
	if err := st.Investment.validate(); err != nil {
		return nil, st.wrap(err)
	}
	if err := checkNonNegative(map[string]float64{
		"capex_power":    spec.CapexPower,
		"capex_capacity": spec.CapexCapacity,
	}); err != nil {
		return nil, st.wrap(err)
	}
	if err := checkSize("power", spec.InstalledPower, spec.PotentialPower); err != nil {
		return nil, st.wrap(err)
	}
	if err := checkSize("capacity", spec.InstalledCapacity, spec.PotentialCapacity); err != nil {
		return nil, st.wrap(err)
	}
	return st, nil
}

func (st *Storage) EnergyType() model.EnergyType { return st.energyType }

func (st *Storage) LoadParameters(s *lp.Scope, t model.TimeIndex) error { return nil }

func (st *Storage) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	n := t.Len()
	st.charge = s.AddVarSeries("charge", n, lp.NonNegative)
	st.discharge = s.AddVarSeries("discharge", n, lp.NonNegative)
	st.stored = s.AddVarSeries("stored", n, lp.NonNegative)
	st.losses = s.AddVarSeries("losses", n, lp.NonNegative)
	st.net = s.AddVarSeries("net_input", n, lp.Free)
	st.capacity = st.declareSize(s, AttrAdvisedCapacity, st.installedCapacity, st.potentialCapacity)
	st.power = st.declareSize(s, AttrAdvisedPower, st.installedPower, st.potentialPower)
	st.declareCostVariables(s, &st.Base)
	return st.registerInput(st.energyType, st.net)
}

func (st *Storage) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	for i := 0; i < t.Len(); i++ {
		net := st.charge.At(i)
		net.Add(st.discharge.Var(i), -st.efficiency)
		s.EqAt("net_input_eq", i, st.net.At(i), net)

		level := lp.Expr{}
		if i == 0 {
			level.Add(st.capacity, st.initialSOC)
			s.EqAt("losses_eq", i, st.losses.At(i), lp.Const(0))
		} else {
			level.Add(st.stored.Var(i-1), 1)
			s.EqAt("losses_eq", i, st.losses.At(i), lp.Scaled(st.stored.Var(i-1), st.relativeLosses))
		}
		level.Add(st.charge.Var(i), 1)
		level.Add(st.discharge.Var(i), -1)
		level.Add(st.losses.Var(i), -1)
		s.EqAt("stored_eq", i, st.stored.At(i), level)

		s.LeAt("charge_limit", i, st.charge.At(i), lp.V(st.power))
		s.LeAt("discharge_limit", i, st.discharge.At(i), lp.V(st.power))
		s.LeAt("capacity_limit", i, st.stored.At(i), lp.V(st.capacity))
	}
	investment := lp.Scaled(st.capacity, st.capexCapacity)
	investment.Add(st.power, st.capexPower)
	st.declareCostConstraints(s, investment)
	return nil
}
