package component

import (
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// tariff is a per-hour energy price: an explicit series, or a scalar
// broadcast over the horizon.
type tariff struct {
	price  float64
	series []float64
}

func (tr tariff) load(b *Base, s *lp.Scope, t model.TimeIndex) (lp.Series, error) {
	if tr.series != nil {
		return b.param(s, t, "price", tr.series)
	}
	values := make([]float64, t.Len())
	for i := range values {
		values[i] = tr.price
	}
	return s.AddParam("price", values), nil
}

// Purchase buys energy of one type from an external supplier.
type Purchase struct {
	Base
	energyType   model.EnergyType
	tariff       tariff
	powerPrice   float64
	co2Intensity *float64

	prices    lp.Series
	output    lp.Series
	emissions lp.Series
	maxPower  lp.Var
	cost      lp.Var
	annuity   lp.Var
	co2Total  lp.Var
}

func NewPurchase(spec Spec) (*Purchase, error) {
	p := &Purchase{
		Base:         newBase(spec.Name, KindPurchase),
		energyType:   spec.EnergyType,
		tariff:       tariff{price: spec.Price, series: spec.PriceSeries},
		powerPrice:   spec.PowerPrice,
		co2Intensity: spec.CO2Intensity,
	}
	if !spec.EnergyType.Valid() {
		return nil, p.errorf("unknown energy type %q", spec.EnergyType)
	}
	if spec.PowerPrice < 0 {
		return nil, p.errorf("power price must be >= 0, got %g", spec.PowerPrice)
	}
	if spec.CO2Intensity != nil && *spec.CO2Intensity < 0 {
		return nil, p.errorf("co2 intensity must be >= 0, got %g", *spec.CO2Intensity)
	}
	return p, nil
}

func (p *Purchase) EnergyType() model.EnergyType { return p.energyType }

func (p *Purchase) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	prices, err := p.tariff.load(&p.Base, s, t)
	p.prices = prices
	return err
}

func (p *Purchase) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	p.output = s.AddVarSeries("output", t.Len(), lp.NonNegative)
	p.maxPower = s.AddVar(string(AttrMaxPower), lp.NonNegative)
	p.cost = s.AddVar(string(AttrPurchaseCost), lp.Free)
	p.annuity = s.AddVar(string(AttrAnnuity), lp.Free)
	p.attrs[AttrMaxPower] = p.maxPower
	p.attrs[AttrPurchaseCost] = p.cost
	p.attrs[AttrAnnuity] = p.annuity
	if p.co2Intensity != nil {
		p.emissions = s.AddVarSeries("co2", t.Len(), lp.NonNegative)
		p.co2Total = s.AddVar(string(AttrCO2Emissions), lp.NonNegative)
		p.attrs[AttrCO2Emissions] = p.co2Total
	}
	return p.registerOutput(p.energyType, p.output)
}

func (p *Purchase) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	cost := lp.Expr{}
	for i := 0; i < t.Len(); i++ {
		cost.Add(p.output.Var(i), p.prices.Param(i))
		s.GeAt("max_power", i, lp.V(p.maxPower), p.output.At(i))
	}
	cost.Add(p.maxPower, p.powerPrice)
	s.Eq("purchase_cost_eq", lp.V(p.cost), cost)
	s.Eq("annuity_eq", lp.V(p.annuity), lp.V(p.cost))

	if p.co2Intensity == nil {
		return nil
	}
	total := lp.Expr{}
	for i := 0; i < t.Len(); i++ {
		s.EqAt("co2", i, p.emissions.At(i), lp.Scaled(p.output.Var(i), *p.co2Intensity))
		total.Add(p.emissions.Var(i), 1e-6)
	}
	s.Eq("co2_emissions_eq", lp.V(p.co2Total), total)
	return nil
}

// Feedin sells energy of one type to an external buyer.
type Feedin struct {
	Base
	energyType model.EnergyType
	tariff     tariff

	prices  lp.Series
	input   lp.Series
	income  lp.Var
	annuity lp.Var
}

func NewFeedin(spec Spec) (*Feedin, error) {
	f := &Feedin{
		Base:       newBase(spec.Name, KindFeedin),
		energyType: spec.EnergyType,
		tariff:     tariff{price: spec.Price, series: spec.PriceSeries},
	}
	if !spec.EnergyType.Valid() {
		return nil, f.errorf("unknown energy type %q", spec.EnergyType)
	}
	return f, nil
}

func (f *Feedin) EnergyType() model.EnergyType { return f.energyType }

func (f *Feedin) LoadParameters(s *lp.Scope, t model.TimeIndex) error {
	prices, err := f.tariff.load(&f.Base, s, t)
	f.prices = prices
	return err
}

func (f *Feedin) DeclareVariables(s *lp.Scope, t model.TimeIndex) error {
	f.input = s.AddVarSeries("input", t.Len(), lp.NonNegative)
	f.income = s.AddVar(string(AttrFeedinIncome), lp.Free)
	f.annuity = s.AddVar(string(AttrAnnuity), lp.Free)
	f.attrs[AttrFeedinIncome] = f.income
	f.attrs[AttrAnnuity] = f.annuity
	return f.registerInput(f.energyType, f.input)
}

// DeclareConstraints books income as a negative cost.
func (f *Feedin) DeclareConstraints(s *lp.Scope, t model.TimeIndex) error {
	income := lp.Expr{}
	for i := 0; i < t.Len(); i++ {
		income.Add(f.input.Var(i), -f.prices.Param(i))
	}
	s.Eq("feedin_income_eq", lp.V(f.income), income)
	s.Eq("annuity_eq", lp.V(f.annuity), lp.V(f.income))
	return nil
}
