package planner

import (
	"context"
	"path/filepath"
	"testing"

	"energy-planner/internal/component"
	"energy-planner/internal/config"
	"energy-planner/internal/data"
	"energy-planner/internal/lp"
	"energy-planner/internal/model"
	"energy-planner/internal/scenario"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func yearOf(v float64) []float64 {
	out := make([]float64, model.HoursPerYear)
	for i := range out {
		out[i] = v
	}
	return out
}

func testConfig(hours int) *config.Config {
	c := config.Default()
	c.HorizonHours = hours
	c.Solver.Name = config.SolverSimplex
	return c
}

func gridRequest(price float64) config.Request {
	return config.Request{
		Demands: []config.DemandInput{
			{EnergyType: model.Electrical, SeriesInput: config.SeriesInput{Values: yearOf(2)}},
		},
		Tariffs: []config.TariffInput{
			{EnergyType: model.Electrical, Direction: "PURCHASE", Price: &config.SeriesInput{Values: []float64{price}}},
		},
	}
}

func TestPlanSolvesAndCaches(t *testing.T) {
	cache := data.NewResultCache(0)
	p := New(testConfig(24), WithCache(cache))
	req := gridRequest(0.3)

	o, err := p.Plan(context.Background(), &req)
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, o.Result.Status, o.Result.ErrorMessage)
	assert.Equal(t, scenario.StateSolvedCurrent, o.State)
	require.NotNil(t, o.Result.Target)
	assert.InDelta(t, 14.4, o.Result.Target.KPIs.TotalAnnuities, 1e-6)
	assert.InDelta(t, 14.4, o.Result.Target.KPIs.TotalPurchaseCost, 1e-6)

	buy, ok := o.Result.Target.Component("electrical_purchase_1")
	require.True(t, ok)
	require.NotNil(t, buy.CO2Emissions)
	assert.InDelta(t, 48*380e-6, *buy.CO2Emissions, 1e-9)

	cached, ok := cache.Get(o.Result.ID)
	require.True(t, ok)
	assert.Same(t, o, cached)
}

func TestPlanReturnsConfigErrors(t *testing.T) {
	p := New(testConfig(4))
	req := gridRequest(0.3)
	req.Components = []config.ComponentInput{{Type: "FUSION_REACTOR"}}

	_, err := p.Plan(context.Background(), &req)
	assert.ErrorIs(t, err, component.ErrConfig)
}

func TestCompareRanksVariants(t *testing.T) {
	p := New(testConfig(24))
	cmp := Comparison{
		Base: gridRequest(0.3),
		Variants: []Variant{
			{Name: "expensive", Request: gridRequest(0.5)},
			{},
			{Name: "mid_price", Request: gridRequest(0.4)},
		},
	}
	got, err := p.Compare(context.Background(), cmp)
	require.NoError(t, err)
	require.Len(t, got.Outcomes, 3)
	require.Len(t, got.Ranking, 3)

	assert.Equal(t, "variant_2", got.Ranking[0].Name)
	assert.Equal(t, "mid_price", got.Ranking[1].Name)
	assert.Equal(t, "expensive", got.Ranking[2].Name)
	assert.InDelta(t, 24, got.Ranking[2].TargetAnnuities, 1e-6)
	for i, r := range got.Ranking {
		assert.Equal(t, i+1, r.Rank)
		assert.Equal(t, model.StatusSuccess, r.Status)
	}
}

func TestCompareFailsOnBadVariant(t *testing.T) {
	p := New(testConfig(4))
	_, err := p.Compare(context.Background(), Comparison{})
	assert.ErrorIs(t, err, ErrNoVariants)

	bad := config.Request{Components: []config.ComponentInput{{Type: "nope"}}}
	_, err = p.Compare(context.Background(), Comparison{
		Base:     gridRequest(0.3),
		Variants: []Variant{{Name: "broken", Request: bad}},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, component.ErrConfig)
	assert.Contains(t, err.Error(), "broken")
}

func TestMergeReplacesSetFields(t *testing.T) {
	base := gridRequest(0.3)
	got := Merge(base, config.Request{InterestRate: ptr(0.02)})
	assert.Equal(t, base.Demands, got.Demands)
	assert.InDelta(t, 0.02, *got.InterestRate, 1e-12)
	assert.Nil(t, base.InterestRate)
}

func TestLoadComparisonExample(t *testing.T) {
	cmp, err := LoadComparison("../../examples/compare.yaml")
	require.NoError(t, err)
	require.Len(t, cmp.Variants, 4)
	assert.Equal(t, "grid_only", cmp.Variants[0].Name)

	merged := Merge(cmp.Base, cmp.Variants[3].Request)
	require.NotNil(t, merged.InterestRate)
	assert.InDelta(t, 0.01, *merged.InterestRate, 1e-12)
	assert.Len(t, merged.Tariffs, 2)
	assert.Len(t, merged.Components, 1)

	_, err = LoadComparison("../../examples/missing.yaml")
	assert.Error(t, err)
}

func TestNewSolverFollowsSolverName(t *testing.T) {
	c := config.Default().Solver
	highs, ok := NewSolver(c).(*lp.Command)
	require.True(t, ok)
	assert.Equal(t, lp.HiGHS, highs.Backend)

	c.Name, c.Executable = config.SolverCBC, "/opt/coin/bin/cbc"
	cbc, ok := NewSolver(c).(*lp.Command)
	require.True(t, ok)
	assert.Equal(t, lp.CBC, cbc.Backend)
	assert.Equal(t, "/opt/coin/bin/cbc", cbc.Path)

	c = config.Default().Solver
	c.Name, c.MaxCells, c.Parallel = config.SolverSimplex, 1000, 3
	simplex, ok := NewSolver(c).(*lp.Simplex)
	require.True(t, ok)
	assert.Equal(t, 1000, simplex.MaxCells)
	assert.Equal(t, 3, simplex.Workers)
}

func TestPlanWithoutSolverProgram(t *testing.T) {
	c := testConfig(24)
	c.Solver.Name = config.SolverHiGHS
	c.Solver.Executable = filepath.Join(t.TempDir(), "highs")
	req := gridRequest(0.3)

	_, err := New(c).Plan(context.Background(), &req)
	assert.ErrorIs(t, err, lp.ErrSolverNotFound)
}
