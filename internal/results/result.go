// Package results extracts scenario results from solved models.
package results

import (
	"energy-planner/internal/component"
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// EnergyAmount is the yearly energy of one type in kWh.
type EnergyAmount struct {
	EnergyType model.EnergyType `json:"energy_type"`
	Amount     float64          `json:"amount"`
}

// ComponentResult holds the derived values of one component. Fields stay
// nil when the component does not declare the attribute.
type ComponentResult struct {
	Name string         `json:"name"`
	Kind component.Kind `json:"kind"`

	InvestmentCost  *float64 `json:"investment_cost,omitempty"`
	OperationalCost *float64 `json:"operational_cost,omitempty"`
	Annuity         *float64 `json:"annuity,omitempty"`

	AdvisedPower     *float64 `json:"advised_power,omitempty"`
	AdvisedHeatPower *float64 `json:"advised_heat_power,omitempty"`
	AdvisedCapacity  *float64 `json:"advised_capacity,omitempty"`
	AdvisedArea      *float64 `json:"advised_area,omitempty"`

	PurchaseCost *float64 `json:"purchase_cost,omitempty"`
	FeedinIncome *float64 `json:"feedin_income,omitempty"`
	MaxPower     *float64 `json:"max_power,omitempty"`
	CO2Emissions *float64 `json:"co2_emissions,omitempty"`

	Produced []EnergyAmount `json:"produced,omitempty"`
	Consumed []EnergyAmount `json:"consumed,omitempty"`
}

func (cr *ComponentResult) fields() map[component.Attribute]**float64 {
	return map[component.Attribute]**float64{
		component.AttrInvestmentCost:   &cr.InvestmentCost,
		component.AttrOperationalCost:  &cr.OperationalCost,
		component.AttrAnnuity:          &cr.Annuity,
		component.AttrAdvisedPower:     &cr.AdvisedPower,
		component.AttrAdvisedHeatPower: &cr.AdvisedHeatPower,
		component.AttrAdvisedCapacity:  &cr.AdvisedCapacity,
		component.AttrAdvisedArea:      &cr.AdvisedArea,
		component.AttrPurchaseCost:     &cr.PurchaseCost,
		component.AttrFeedinIncome:     &cr.FeedinIncome,
		component.AttrMaxPower:         &cr.MaxPower,
		component.AttrCO2Emissions:     &cr.CO2Emissions,
	}
}

// KPIs aggregate a scenario. Costs are per year except the investment cost;
// emissions are in tonnes CO₂ per year.
type KPIs struct {
	TotalInvestmentCost  float64 `json:"total_investment_cost"`
	TotalOperationalCost float64 `json:"total_operational_cost"`
	TotalPurchaseCost    float64 `json:"total_purchase_cost"`
	TotalFeedinIncome    float64 `json:"total_feedin_income"`
	TotalAnnuities       float64 `json:"total_annuities"`
	TotalCO2Emissions    float64 `json:"total_co2_emissions"`
}

type ScenarioResult struct {
	Components []ComponentResult `json:"components"`
	KPIs       KPIs              `json:"kpis"`
}

// Component returns the result of the named component.
func (s *ScenarioResult) Component(name string) (ComponentResult, bool) {
	for _, c := range s.Components {
		if c.Name == name {
			return c, true
		}
	}
	return ComponentResult{}, false
}

// Result is the outcome of one target/current scenario pair. Current is nil
// when the current scenario could not be solved.
type Result struct {
	ID           string          `json:"id"`
	Status       model.Status    `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Target       *ScenarioResult `json:"target,omitempty"`
	Current      *ScenarioResult `json:"current,omitempty"`
}

// Compose reads the derived values of every component from sol. It does not
// modify its inputs.
func Compose(components []component.Component, sol *lp.Solution) ScenarioResult {
	out := ScenarioResult{Components: make([]ComponentResult, 0, len(components))}
	for _, c := range components {
		cr := ComponentResult{Name: c.Name(), Kind: c.Kind()}
		attrs := c.Attributes()
		for attr, field := range cr.fields() {
			if v, ok := attrs.Get(attr); ok {
				x := sol.Value(v)
				*field = &x
			}
		}
		for _, et := range model.EnergyTypes {
			if s, ok := c.Bilance().Output(et); ok {
				cr.Produced = append(cr.Produced, EnergyAmount{EnergyType: et, Amount: s.Total(sol)})
			}
			if s, ok := c.Bilance().Input(et); ok {
				cr.Consumed = append(cr.Consumed, EnergyAmount{EnergyType: et, Amount: s.Total(sol)})
			}
		}

		k := &out.KPIs
		k.TotalInvestmentCost += value(cr.InvestmentCost)
		k.TotalOperationalCost += value(cr.OperationalCost)
		k.TotalPurchaseCost += value(cr.PurchaseCost)
		k.TotalFeedinIncome -= value(cr.FeedinIncome)
		k.TotalCO2Emissions += value(cr.CO2Emissions)
		out.Components = append(out.Components, cr)
	}
	out.KPIs.TotalAnnuities = sol.Objective
	return out
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
