package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"energy-planner/internal/component"
	"energy-planner/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func opts(t *testing.T, hours int) BuildOptions {
	t.Helper()
	ti, err := model.NewTimeIndex(hours)
	require.NoError(t, err)
	return BuildOptions{Parameters: DefaultParameters(), DefaultInterestRate: 0.03, Hours: ti}
}

func yearOf(v float64) []float64 {
	out := make([]float64, model.HoursPerYear)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDefaultConfig(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, SolverHiGHS, c.Solver.Name)
	assert.Equal(t, DefaultTimeout, c.Solver.Timeout)
	hours, err := c.Hours()
	require.NoError(t, err)
	assert.Equal(t, model.HoursPerYear, hours.Len())
	assert.InDelta(t, 1300, *c.Parameters.Get("photovoltaic_roof").Capex, 1e-9)
}

func TestLoadMergesParameterLayers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "params.yaml", `
WIND_POWER:
  capex: 1400
  lifespan: 22
`)
	path := writeFile(t, dir, "engine.yaml", `
parameters_file: params.yaml
parameters:
  wind_power:
    capex: 1450
solver:
  name: cbc
  executable: /opt/coin/bin/cbc
  timeout: 30s
horizon_hours: 48
`)
	c, err := Load(path)
	require.NoError(t, err)

	wind := c.Parameters.Get("WIND_POWER")
	assert.InDelta(t, 1450, *wind.Capex, 1e-9)
	assert.InDelta(t, 22, *wind.Lifespan, 1e-9)
	assert.InDelta(t, 3, *wind.Opex, 1e-9)
	assert.Equal(t, 30*time.Second, c.Solver.Timeout)
	assert.Equal(t, SolverCBC, c.Solver.Name)
	assert.Equal(t, "/opt/coin/bin/cbc", c.Solver.Executable)
	hours, err := c.Hours()
	require.NoError(t, err)
	assert.Equal(t, 48, hours.Len())
}

func TestHoursRejectsHorizonOutsideYear(t *testing.T) {
	dir := t.TempDir()
	c, err := LoadUnchecked(writeFile(t, dir, "engine.yaml", "horizon_hours: -5\n"))
	require.NoError(t, err)
	_, err = c.Hours()
	assert.Error(t, err)
	_, err = c.Options(dir)
	assert.Error(t, err)

	c.HorizonHours = model.HoursPerYear + 1
	_, err = c.Hours()
	assert.Error(t, err)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := map[string]func(c *Config){
		"solver":   func(c *Config) { c.Solver.Name = "glpk" },
		"exe":      func(c *Config) { c.Solver.Name, c.Solver.Executable = SolverSimplex, "/usr/bin/highs" },
		"interest": func(c *Config) { c.DefaultInterestRate = 1.2 },
		"horizon":  func(c *Config) { c.HorizonHours = 9000 },
		"parallel": func(c *Config) { c.Solver.Parallel = 0 },
		"key":      func(c *Config) { c.Parameters["NUCLEAR"] = TechParams{} },
		"negative": func(c *Config) { c.Parameters["GAS_BOILER"] = TechParams{Capex: ptr(-1)} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Default()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestMergeKeepsBaseUntouched(t *testing.T) {
	base := TechParams{Capex: ptr(100), Lifespan: ptr(20)}
	got := Merge(base, TechParams{Capex: ptr(120)})
	assert.InDelta(t, 120, *got.Capex, 1e-9)
	assert.InDelta(t, 20, *got.Lifespan, 1e-9)
	assert.InDelta(t, 100, *base.Capex, 1e-9)
}

func TestSpecsResolvesRequest(t *testing.T) {
	r := &Request{
		Demands: []DemandInput{
			{EnergyType: model.Electrical, SeriesInput: SeriesInput{Values: []float64{8.76}, Resolution: model.Res1Y, Unit: model.MWh}},
			{EnergyType: model.Electrical, Name: "office", SeriesInput: SeriesInput{Values: yearOf(2)}},
		},
		Tariffs: []TariffInput{
			{EnergyType: model.Electrical, Direction: "purchase", Price: &SeriesInput{Values: []float64{0.3}}},
			{EnergyType: model.Electrical, Direction: "FEEDIN", Price: &SeriesInput{Values: yearOf(0.08)}},
		},
		Components: []ComponentInput{
			{Type: "photovoltaic_roof", PotentialPower: ptr(10), TechParams: TechParams{Capex: ptr(1000)}, NormedProduction: &SeriesInput{Values: yearOf(0.1)}},
			{Type: "WIND_POWER", PotentialPower: ptr(0)},
		},
	}
	specs, err := r.Specs(opts(t, 24))
	require.NoError(t, err)
	require.Len(t, specs, 5)

	d := specs[0]
	assert.Equal(t, component.KindDemand, d.Kind)
	assert.Equal(t, "electrical_demand_1", d.Name)
	require.Len(t, d.Values, 24)
	assert.InDelta(t, 1, d.Values[0], 1e-9)
	assert.Equal(t, "office", specs[1].Name)

	buy := specs[2]
	assert.Equal(t, component.KindPurchase, buy.Kind)
	assert.Equal(t, "electrical_purchase_1", buy.Name)
	assert.InDelta(t, 0.3, buy.Price, 1e-9)
	assert.Nil(t, buy.PriceSeries)
	require.NotNil(t, buy.CO2Intensity)
	assert.InDelta(t, 380, *buy.CO2Intensity, 1e-9)

	sell := specs[3]
	assert.Equal(t, component.KindFeedin, sell.Kind)
	assert.Len(t, sell.PriceSeries, 24)
	assert.Nil(t, sell.CO2Intensity)

	pv := specs[4]
	assert.Equal(t, "photovoltaic_roof_1", pv.Name)
	assert.InDelta(t, 1000, pv.Capex, 1e-9)
	assert.InDelta(t, 0.015, pv.Opex, 1e-12)
	assert.InDelta(t, 25, pv.Lifespan, 1e-9)
	assert.InDelta(t, 0.03, pv.InterestRate, 1e-12)
	assert.Len(t, pv.NormedProduction, 24)
}

func TestSpecsInterestRatePrecedence(t *testing.T) {
	r := &Request{
		InterestRate: ptr(0.05),
		Demands:      []DemandInput{{EnergyType: model.Thermal, SeriesInput: SeriesInput{Values: yearOf(1)}}},
		Components: []ComponentInput{
			{Type: "GAS_BOILER"},
			{Type: "GAS_BOILER", TechParams: TechParams{InterestRate: ptr(0.07)}},
		},
	}
	specs, err := r.Specs(opts(t, 2))
	require.NoError(t, err)
	require.Len(t, specs, 3)
	assert.InDelta(t, 0.05, specs[1].InterestRate, 1e-12)
	assert.Equal(t, "gas_boiler_1", specs[1].Name)
	assert.InDelta(t, 0.07, specs[2].InterestRate, 1e-12)
	assert.Equal(t, "gas_boiler_2", specs[2].Name)
}

func TestSpecsRejectsInvalidRequests(t *testing.T) {
	demand := []DemandInput{{EnergyType: model.Electrical, SeriesInput: SeriesInput{Values: yearOf(1)}}}
	cases := map[string]*Request{
		"no demand":    {},
		"energy type":  {Demands: []DemandInput{{EnergyType: "STEAM", SeriesInput: SeriesInput{Values: []float64{1}}}}},
		"short series": {Demands: []DemandInput{{EnergyType: model.Electrical, SeriesInput: SeriesInput{Values: []float64{1, 2}}}}},
		"technology":   {Demands: demand, Components: []ComponentInput{{Type: "FUSION"}}},
		"tariff kind":  {Demands: demand, Components: []ComponentInput{{Type: "ENERGY_PURCHASE"}}},
		"direction":    {Demands: demand, Tariffs: []TariffInput{{EnergyType: model.Electrical, Direction: "SWAP"}}},
		"interest":     {Demands: demand, InterestRate: ptr(1.5)},
		"cop":          {Demands: demand, Components: []ComponentInput{{Type: "HEAT_PUMP_AIR", COP: &SeriesInput{Values: []float64{3}, Resolution: model.Res1D}}}},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Specs(opts(t, 4))
			require.Error(t, err)
			assert.ErrorIs(t, err, component.ErrConfig)
		})
	}
}

func TestBuildConstructsComponents(t *testing.T) {
	r := &Request{
		Demands: []DemandInput{{EnergyType: model.Thermal, SeriesInput: SeriesInput{Values: yearOf(3)}}},
		Tariffs: []TariffInput{{EnergyType: model.NaturalGas, Direction: "PURCHASE", Price: &SeriesInput{Values: []float64{0.1}, Resolution: model.Res1Y}}},
		Components: []ComponentInput{
			{Type: "GAS_BOILER", PotentialPower: ptr(20)},
			{Type: "HEAT_PUMP_AIR", SourceTemperature: &SeriesInput{Values: yearOf(5)}},
		},
	}
	cs, err := r.Build(opts(t, 6))
	require.NoError(t, err)
	require.Len(t, cs, 4)
	assert.Equal(t, component.KindHeatPumpAir, cs[3].Kind())
	hp, ok := cs[3].(*component.HeatPump)
	require.True(t, ok)
	assert.Len(t, hp.COP(), 6)
}

func TestLoadRequestFromFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wind.json", `{"values": [0.2, 0.4, 0.6]}`)
	path := writeFile(t, dir, "request.yaml", `
demands:
  - energy_type: ELECTRICAL
    values: [100]
    resolution: 1Y
    unit: KWH
components:
  - type: WIND_POWER
    potential_power: 50
    capex: 1200
    normed_production:
      file: wind.json
`)
	r, err := LoadRequest(path)
	require.NoError(t, err)
	require.Len(t, r.Components, 1)
	assert.InDelta(t, 1200, *r.Components[0].Capex, 1e-9)
	assert.Equal(t, "wind.json", r.Components[0].NormedProduction.File)

	// The file holds fewer than one year of values.
	o := opts(t, 3)
	o.BaseDir = dir
	_, err = r.Specs(o)
	assert.ErrorIs(t, err, component.ErrConfig)

	jsonPath := writeFile(t, dir, "request.json", `{"demands":[{"energy_type":"THERMAL","values":[1],"resolution":"1Y"}],"interest_rate":0.04}`)
	jr, err := LoadRequest(jsonPath)
	require.NoError(t, err)
	require.NotNil(t, jr.InterestRate)
	assert.InDelta(t, 0.04, *jr.InterestRate, 1e-12)
	assert.Equal(t, model.Thermal, jr.Demands[0].EnergyType)
}

func TestExampleFilesStayValid(t *testing.T) {
	c, err := Load("../../examples/engine.yaml")
	require.NoError(t, err)
	assert.Equal(t, model.HoursPerYear, c.HorizonHours)
	assert.Equal(t, SolverHiGHS, c.Solver.Name)
	assert.InDelta(t, 650, *c.Parameters.Get("ELECTRICAL_ENERGY_STORAGE").CapexCapacity, 1e-9)
	assert.InDelta(t, 1150, *c.Parameters.Get("PHOTOVOLTAIC_ROOF").Capex, 1e-9)
	assert.InDelta(t, 25, *c.Parameters.Get("PHOTOVOLTAIC_ROOF").Lifespan, 1e-9)

	r, err := LoadRequest("../../examples/request.yaml")
	require.NoError(t, err)
	o, err := c.Options("../../examples")
	require.NoError(t, err)
	assert.Equal(t, model.HoursPerYear, o.Hours.Len())
	cs, err := r.Build(o)
	require.NoError(t, err)
	// The wind turbine has no potential and is skipped.
	assert.Len(t, cs, 9)
}
