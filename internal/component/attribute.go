package component

import "energy-planner/internal/lp"

// Attribute names a derived scalar quantity of a component.
// The values are used as variable names and as result field names.
type Attribute string

const (
	AttrInvestmentCost   Attribute = "investment_cost"
	AttrOperationalCost  Attribute = "operational_cost"
	AttrAnnuity          Attribute = "annuity"
	AttrAdvisedPower     Attribute = "advised_power"
	AttrAdvisedHeatPower Attribute = "advised_heat_power"
	AttrAdvisedCapacity  Attribute = "advised_capacity"
	AttrAdvisedArea      Attribute = "advised_area"
	AttrPurchaseCost     Attribute = "purchase_cost"
	AttrFeedinIncome     Attribute = "feedin_income"
	AttrMaxPower         Attribute = "max_power"
	AttrCO2Emissions     Attribute = "co2_emissions"
)

// Attributes maps the attributes a component declares to their variables.
type Attributes map[Attribute]lp.Var

// Get returns the variable of a, if the component declares it.
func (a Attributes) Get(attr Attribute) (lp.Var, bool) {
	v, ok := a[attr]
	return v, ok
}

// Sizing is a capacity variable together with its already-installed floor.
type Sizing struct {
	Attribute Attribute
	Var       lp.Var
	Installed float64
}
