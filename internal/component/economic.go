package component

import (
	"fmt"
	"math"

	"energy-planner/internal/lp"
)

// AnnuityFactor is the capital recovery factor ((1+i)^n·i)/((1+i)^n−1).
// It is 0 unless both the interest rate and the lifespan are positive.
func AnnuityFactor(interestRate, lifespan float64) float64 {
	if interestRate <= 0 || lifespan <= 0 {
		return 0
	}
	q := math.Pow(1+interestRate, lifespan)
	return q * interestRate / (q - 1)
}

// Investment is embedded by components whose size is a decision variable.
// It owns the investment, operational and annuity cost variables.
type Investment struct {
	InterestRate float64
	// Opex is the yearly operational cost as a fraction of the investment cost.
	Opex     float64
	Lifespan float64

	investmentCost  lp.Var
	operationalCost lp.Var
	annuity         lp.Var
}

func newInvestment(spec Spec) Investment {
	return Investment{InterestRate: spec.InterestRate, Opex: spec.Opex, Lifespan: spec.Lifespan}
}

func (inv *Investment) AnnuityFactor() float64 {
	return AnnuityFactor(inv.InterestRate, inv.Lifespan)
}

func (inv *Investment) validate() error {
	if inv.InterestRate < 0 || inv.InterestRate >= 1 {
		return fmt.Errorf("interest rate must be in [0, 1), got %g", inv.InterestRate)
	}
	if inv.Opex < 0 {
		return fmt.Errorf("opex must be >= 0, got %g", inv.Opex)
	}
	if inv.Lifespan < 0 {
		return fmt.Errorf("lifespan must be >= 0, got %g", inv.Lifespan)
	}
	return nil
}

func (inv *Investment) declareCostVariables(s *lp.Scope, b *Base) {
	inv.investmentCost = s.AddVar(string(AttrInvestmentCost), lp.NonNegative)
	inv.operationalCost = s.AddVar(string(AttrOperationalCost), lp.NonNegative)
	inv.annuity = s.AddVar(string(AttrAnnuity), lp.NonNegative)
	b.attrs[AttrInvestmentCost] = inv.investmentCost
	b.attrs[AttrOperationalCost] = inv.operationalCost
	b.attrs[AttrAnnuity] = inv.annuity
}

// declareCostConstraints ties the investment cost to the sizing expression
// and derives operational cost and annuity from it.
func (inv *Investment) declareCostConstraints(s *lp.Scope, investment lp.Expr) {
	s.Eq("investment_cost_eq", lp.V(inv.investmentCost), investment)
	s.Eq("operational_cost_eq", lp.V(inv.operationalCost), lp.Scaled(inv.investmentCost, inv.Opex))

	annuity := lp.Scaled(inv.investmentCost, inv.AnnuityFactor())
	annuity.Add(inv.operationalCost, 1)
	s.Eq("annuity_eq", lp.V(inv.annuity), annuity)
}
