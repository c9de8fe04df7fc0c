// Package compose joins the components of one model into per energy type
// balance constraints and the cost objective.
package compose

import (
	"errors"
	"fmt"

	"energy-planner/internal/component"
	"energy-planner/internal/lp"
	"energy-planner/internal/model"

	"github.com/rs/zerolog/log"
)

var ErrStructuralInfeasibility = errors.New("structural infeasibility")

// StructuralInfeasibilityError reports a fixed consumption that no component
// can supply.
type StructuralInfeasibilityError struct {
	EnergyType model.EnergyType
	Step       int
	Amount     float64
}

func (e *StructuralInfeasibilityError) Error() string {
	return fmt.Sprintf("no component supplies %s energy, but %.4g kWh are consumed at step %d",
		e.EnergyType, e.Amount, e.Step)
}

func (e *StructuralInfeasibilityError) Unwrap() error { return ErrStructuralInfeasibility }

// Balance is the set of flows registered for one energy type.
type Balance struct {
	EnergyType model.EnergyType
	Inputs     []lp.Series
	Outputs    []lp.Series
}

// Balances collects the registered flows of every component per energy
// type, in model.EnergyTypes order. Types without flows are omitted.
func Balances(components []component.Component) []Balance {
	var out []Balance
	for _, et := range model.EnergyTypes {
		b := Balance{EnergyType: et}
		for _, c := range components {
			if s, ok := c.Bilance().Input(et); ok {
				b.Inputs = append(b.Inputs, s)
			}
			if s, ok := c.Bilance().Output(et); ok {
				b.Outputs = append(b.Outputs, s)
			}
		}
		if len(b.Inputs) == 0 && len(b.Outputs) == 0 {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Compose adds one balance constraint per energy type and step and sets the
// objective to the sum of all component annuities.
func Compose(p *lp.Problem, components []component.Component, t model.TimeIndex) error {
	for _, b := range Balances(components) {
		if err := addBalance(p, b, t); err != nil {
			return err
		}
	}

	obj := lp.Expr{}
	for _, c := range components {
		if v, ok := c.Attributes().Get(component.AttrAnnuity); ok {
			obj.Add(v, 1)
		}
	}
	p.SetObjective(obj)
	return p.Err()
}

func addBalance(p *lp.Problem, b Balance, t model.TimeIndex) error {
	name := "balance." + string(b.EnergyType)
	event := log.Info().
		Str("energy_type", string(b.EnergyType)).
		Int("inputs", len(b.Inputs)).
		Int("outputs", len(b.Outputs))

	switch {
	case len(b.Outputs) == 0:
		if err := checkSupplied(b, t); err != nil {
			return err
		}
		event.Msg("inputs only, consumption forced to zero")
		for i := 0; i < t.Len(); i++ {
			p.AddConstraint(name, i, sum(b.Inputs, i), lp.Equal, lp.Const(0))
		}
	case len(b.Inputs) == 0:
		event.Msg("outputs only, production left unconstrained")
		for i := 0; i < t.Len(); i++ {
			p.AddConstraint(name, i, sum(b.Outputs, i), lp.GreaterEqual, lp.Const(0))
		}
	case b.EnergyType == model.Electrical:
		event.Msg("production equals consumption")
		for i := 0; i < t.Len(); i++ {
			p.AddConstraint(name, i, sum(b.Outputs, i), lp.Equal, sum(b.Inputs, i))
		}
	default:
		event.Msg("production covers consumption, surplus allowed")
		for i := 0; i < t.Len(); i++ {
			p.AddConstraint(name, i, sum(b.Outputs, i), lp.GreaterEqual, sum(b.Inputs, i))
		}
	}
	return nil
}

// checkSupplied fails when every input of an unsupplied type is a fixed
// series and some step consumes a positive amount.
func checkSupplied(b Balance, t model.TimeIndex) error {
	for _, s := range b.Inputs {
		if !s.IsParam() {
			return nil
		}
	}
	for i := 0; i < t.Len(); i++ {
		total := 0.0
		for _, s := range b.Inputs {
			total += s.Param(i)
		}
		if total > 0 {
			return &StructuralInfeasibilityError{EnergyType: b.EnergyType, Step: i, Amount: total}
		}
	}
	return nil
}

func sum(series []lp.Series, t int) lp.Expr {
	e := lp.Expr{}
	for _, s := range series {
		s.AddTo(&e, t, 1)
	}
	return e
}
