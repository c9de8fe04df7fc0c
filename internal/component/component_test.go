package component

import (
	"context"
	"testing"

	"energy-planner/internal/lp"
	"energy-planner/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func hours(t *testing.T, n int) model.TimeIndex {
	t.Helper()
	ti, err := model.NewTimeIndex(n)
	require.NoError(t, err)
	return ti
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func pin(p *lp.Problem, s lp.Series, values ...float64) {
	for i, v := range values {
		p.AddConstraint("pin", i, s.At(i), lp.Equal, lp.Const(v))
	}
}

// solveAnnuities minimizes the sum of the annuities of cs.
func solveAnnuities(t *testing.T, p *lp.Problem, cs ...Component) *lp.Solution {
	t.Helper()
	obj := lp.Expr{}
	for _, c := range cs {
		if v, ok := c.Attributes().Get(AttrAnnuity); ok {
			obj.Add(v, 1)
		}
	}
	p.SetObjective(obj)
	sol, err := lp.NewSimplex(0, 0).Solve(context.Background(), p, nil)
	require.NoError(t, err)
	require.True(t, sol.Optimal(), sol.Message)
	return sol
}

func TestAnnuityFactor(t *testing.T) {
	assert.InDelta(t, 0.0672, AnnuityFactor(0.03, 20), 1e-4)
	assert.Equal(t, 0.0, AnnuityFactor(0, 10))
	assert.Equal(t, 0.0, AnnuityFactor(0.05, 0))
	assert.Equal(t, 0.0, AnnuityFactor(-0.01, 10))
}

func TestInvestmentCostAndAnnuity(t *testing.T) {
	ti := hours(t, 4)
	pv, err := NewPhotovoltaic(Spec{
		Name:             "pv",
		Capex:            1000,
		Opex:             0.01,
		InterestRate:     0.03,
		Lifespan:         20,
		InstalledPower:   5,
		PotentialPower:   ptr(5),
		NormedProduction: []float64{0, 0.2, -0.01, 0.5},
	})
	require.NoError(t, err)

	p := lp.NewProblem()
	require.NoError(t, AddToModel(p, pv, ti))
	sol := solveAnnuities(t, p, pv)

	attrs := pv.Attributes()
	invest := sol.Value(attrs[AttrInvestmentCost])
	assert.InDelta(t, 5000, invest, 1e-6)
	assert.InDelta(t, 50, sol.Value(attrs[AttrOperationalCost]), 1e-6)
	assert.InDelta(t, invest*AnnuityFactor(0.03, 20)+invest*0.01, sol.Value(attrs[AttrAnnuity]), 1e-6)

	out, ok := pv.Bilance().Output(model.Electrical)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{0, 1, 0, 2.5}, out.Values(sol), 1e-9)

	v, ok := p.Lookup("pv.advised_power")
	require.True(t, ok)
	assert.Equal(t, attrs[AttrAdvisedPower], v)
	require.Len(t, pv.Sizing(), 1)
	assert.Equal(t, 5.0, pv.Sizing()[0].Installed)
}

func TestStorageRecursionAndLosses(t *testing.T) {
	ti := hours(t, 3)
	st, err := NewElectricalStorage(Spec{
		Name:              "battery",
		CapexPower:        10,
		CapexCapacity:     100,
		Efficiency:        0.9,
		InitialSOC:        0.5,
		RelativeLosses:    0.1,
		InstalledCapacity: 10,
		PotentialCapacity: ptr(10),
		InstalledPower:    5,
		PotentialPower:    ptr(5),
	})
	require.NoError(t, err)

	p := lp.NewProblem()
	require.NoError(t, AddToModel(p, st, ti))
	pin(p, st.charge, 2, 0, 0)
	pin(p, st.discharge, 0, 1, 3)
	sol := solveAnnuities(t, p, st)

	stored := st.stored.Values(sol)
	losses := st.losses.Values(sol)
	assert.InDeltaSlice(t, []float64{7, 5.3, 1.77}, stored, 1e-9)
	assert.InDelta(t, 0, losses[0], 1e-12)
	for i := 1; i < ti.Len(); i++ {
		assert.InDelta(t, 0.1*stored[i-1], losses[i], 1e-9)
		assert.InDelta(t, stored[i-1]+sol.Value(st.charge.Var(i))-sol.Value(st.discharge.Var(i))-losses[i], stored[i], 1e-9)
	}

	net, ok := st.Bilance().Input(model.Electrical)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{2, -0.9, -2.7}, net.Values(sol), 1e-9)
	assert.InDelta(t, 10*100+5*10, sol.Value(st.Attributes()[AttrInvestmentCost]), 1e-6)
	assert.Len(t, st.Sizing(), 2)
}

func TestPurchaseCostAndEmissions(t *testing.T) {
	ti := hours(t, 2)
	pu, err := NewPurchase(Spec{
		Name:         "grid",
		EnergyType:   model.Electrical,
		Price:        0.3,
		PowerPrice:   10,
		CO2Intensity: ptr(400),
	})
	require.NoError(t, err)

	p := lp.NewProblem()
	require.NoError(t, AddToModel(p, pu, ti))
	pin(p, pu.output, 1, 2)
	sol := solveAnnuities(t, p, pu)

	attrs := pu.Attributes()
	assert.InDelta(t, 2, sol.Value(attrs[AttrMaxPower]), 1e-9)
	assert.InDelta(t, 0.9+20, sol.Value(attrs[AttrPurchaseCost]), 1e-9)
	assert.InDelta(t, 1.2e-3, sol.Value(attrs[AttrCO2Emissions]), 1e-12)
}

func TestFeedinIncomeIsNegativeCost(t *testing.T) {
	ti := hours(t, 2)
	f, err := NewFeedin(Spec{Name: "export", EnergyType: model.Electrical, PriceSeries: []float64{0.1, 0.2}})
	require.NoError(t, err)

	p := lp.NewProblem()
	require.NoError(t, AddToModel(p, f, ti))
	pin(p, f.input, 3, 4)
	sol := solveAnnuities(t, p, f)
	assert.InDelta(t, -1.1, sol.Value(f.Attributes()[AttrFeedinIncome]), 1e-9)
	assert.InDelta(t, -1.1, sol.Objective, 1e-9)
}

func TestHeatPumpCOPFromTemperature(t *testing.T) {
	hp, err := NewHeatPump(Spec{Kind: KindHeatPumpGround, SourceTemperature: []float64{10, 10}})
	require.NoError(t, err)
	cop := hp.COP()
	require.Len(t, cop, 2)
	assert.InDelta(t, DefaultQualityGradeGround*323.15/40, cop[0], 1e-9)
	assert.Equal(t, "heat_pump_ground", hp.Name())
}

func TestChpHeatPowerFollowsElectricalPower(t *testing.T) {
	ti := hours(t, 2)
	c, err := NewCombinedHeatPower(Spec{
		Name:                 "chp",
		Capex:                800,
		ElectricalEfficiency: 0.35,
		ThermalEfficiency:    0.5,
		InstalledPower:       7,
		PotentialPower:       ptr(7),
	})
	require.NoError(t, err)

	p := lp.NewProblem()
	require.NoError(t, AddToModel(p, c, ti))
	pin(p, c.gas, 10, 20)
	sol := solveAnnuities(t, p, c)
	assert.InDelta(t, 10, sol.Value(c.Attributes()[AttrAdvisedHeatPower]), 1e-9)
	assert.InDeltaSlice(t, []float64{3.5, 7}, c.el.Values(sol), 1e-9)
	assert.InDeltaSlice(t, []float64{5, 10}, c.th.Values(sol), 1e-9)
}

func TestBilanceRejectsDuplicateFlow(t *testing.T) {
	b := newBilance()
	p := lp.NewProblem()
	s := p.AddVarSeries("x", 1, lp.NonNegative)
	require.NoError(t, b.RegisterInput(model.Thermal, s))
	require.NoError(t, b.RegisterOutput(model.Thermal, s))
	assert.ErrorIs(t, b.RegisterInput(model.Thermal, s), ErrDuplicateFlow)
	assert.ErrorIs(t, b.RegisterOutput("STEAM", s), ErrConfig)
}

func TestConfigErrors(t *testing.T) {
	cases := map[string]Spec{
		"wind without profile":       {Kind: KindWindPower, Name: "wind"},
		"installed above potential":  {Kind: KindPhotovoltaicRoof, NormedProduction: []float64{1}, InstalledPower: 3, PotentialPower: ptr(2)},
		"negative capex":             {Kind: KindGasBoiler, Efficiency: 0.9, Capex: -1},
		"boiler without efficiency":  {Kind: KindGasBoiler},
		"heat pump without cop":      {Kind: KindHeatPumpAir},
		"solar thermal without data": {Kind: KindSolarThermal, Efficiency: 0.6},
		"storage soc above one":      {Kind: KindThermalStorage, Efficiency: 1, InitialSOC: 1.5},
		"unknown technology":         {Kind: "FUSION"},
		"demand without values":      {Kind: KindDemand, EnergyType: model.Electrical},
		"negative demand":            {Kind: KindDemand, EnergyType: model.Electrical, Values: []float64{-1}},
		"purchase unknown type":      {Kind: KindPurchase, EnergyType: "STEAM"},
	}
	for name, spec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}

func TestAddToModelChecksSeriesLength(t *testing.T) {
	d, err := NewDemand(Spec{Name: "heat", EnergyType: model.Thermal, Values: constant(3, 1)})
	require.NoError(t, err)
	err = AddToModel(lp.NewProblem(), d, hours(t, 4))
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "heat")
}

func TestAddToModelRejectsDuplicateNames(t *testing.T) {
	ti := hours(t, 2)
	p := lp.NewProblem()
	a, err := NewDemand(Spec{Name: "load", EnergyType: model.Electrical, Values: constant(2, 1)})
	require.NoError(t, err)
	b, err := NewDemand(Spec{Name: "load", EnergyType: model.Thermal, Values: constant(2, 1)})
	require.NoError(t, err)
	require.NoError(t, AddToModel(p, a, ti))
	assert.ErrorIs(t, AddToModel(p, b, ti), lp.ErrDuplicateName)
}

func TestKindsAndRegistry(t *testing.T) {
	kinds := Kinds()
	assert.Len(t, kinds, 14)
	assert.Contains(t, kinds, KindCombinedHeatPower)
	k, err := ParseKind(" wind_power ")
	require.NoError(t, err)
	assert.Equal(t, KindWindPower, k)
	assert.True(t, KindThermalStorage.Investment())
	assert.False(t, KindPurchase.Investment())
	assert.Equal(t, CategoryArea, KindSolarThermal.Category())
}
