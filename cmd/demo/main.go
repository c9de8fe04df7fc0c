package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"energy-planner/internal/component"
	"energy-planner/internal/config"
	"energy-planner/internal/lp"
	"energy-planner/internal/logging"
	"energy-planner/internal/model"
	"energy-planner/internal/planner"
	"energy-planner/internal/results"
	"energy-planner/internal/scenario"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

// Demo:
// - Synthesize a day of demand, weather and prices
// - Build components directly from specs
// - Solve the target and current scenarios to show how the pieces fit together
//
// Annuities are yearly figures while the horizon covers only a day, so
// investments rarely pay off here. Use the CLI with a full year for sizing.
func main() {
	hours := pflag.Int("hours", 24, "Number of hours to simulate")
	outCSV := pflag.String("out", "", "Optional path to write the hourly series CSV (e.g. results/demo.csv)")
	solver := pflag.String("solver", config.SolverSimplex, "LP backend: highs, cbc or simplex")
	logLevel := pflag.String("log-level", "info", "Log level")
	pflag.Parse()

	if err := logging.Setup(*logLevel, "console"); err != nil {
		panic(err)
	}
	t, err := model.NewTimeIndex(*hours)
	if err != nil {
		panic(err)
	}

	components, err := buildComponents(t.Len())
	if err != nil {
		panic(err)
	}

	runner := scenario.NewRunner(planner.NewSolver(config.SolverConfig{
		Name:      *solver,
		Tolerance: lp.DefaultTolerance,
		Parallel:  1,
	}), t)
	o, err := runner.Run(context.Background(), components)
	if err != nil {
		panic(err)
	}

	r := o.Result
	fmt.Printf("Result %s: %s (%s)\n", r.ID, r.Status, o.State)
	if r.Target == nil {
		fmt.Println(r.ErrorMessage)
		os.Exit(1)
	}
	for _, c := range r.Target.Components {
		fmt.Printf("  %-28s", c.Name)
		for _, e := range c.Produced {
			fmt.Printf(" +%.1f kWh %s", e.Amount, e.EnergyType)
		}
		for _, e := range c.Consumed {
			fmt.Printf(" -%.1f kWh %s", e.Amount, e.EnergyType)
		}
		fmt.Println()
	}
	fmt.Printf("Target annuities=%.2f purchase=%.2f co2=%.4ft\n",
		r.Target.KPIs.TotalAnnuities, r.Target.KPIs.TotalPurchaseCost, r.Target.KPIs.TotalCO2Emissions)
	if r.Current != nil {
		fmt.Printf("Current annuities=%.2f\n", r.Current.KPIs.TotalAnnuities)
	}

	if *outCSV != "" {
		err := results.WriteFile(*outCSV, func(w io.Writer) error {
			return results.WriteSeriesCSV(w, o.Problem, o.Target, o.Hours)
		})
		if err != nil {
			panic(err)
		}
		log.Info().Str("path", *outCSV).Msg("wrote hourly series")
	}
}

func buildComponents(n int) ([]component.Component, error) {
	elDemand := make([]float64, n)
	heatDemand := make([]float64, n)
	pv := make([]float64, n)
	airTemp := make([]float64, n)
	price := make([]float64, n)
	for h := 0; h < n; h++ {
		hod := float64(h % 24)
		// Morning and evening peaks on a base load.
		elDemand[h] = 4 + 3*math.Exp(-math.Pow(hod-8, 2)/4) + 5*math.Exp(-math.Pow(hod-19, 2)/6)
		airTemp[h] = 3 + 6*math.Sin((hod-9)*math.Pi/12)
		heatDemand[h] = math.Max(0, 12-0.8*airTemp[h])
		if hod > 6 && hod < 18 {
			pv[h] = math.Sin((hod - 6) * math.Pi / 12)
		}
		price[h] = 0.25 + 0.1*math.Exp(-math.Pow(hod-19, 2)/8)
	}

	co2Grid, co2Gas := 380.0, 201.0
	potentialPV, potentialBattery := 30.0, 50.0
	specs := []component.Spec{
		{Kind: component.KindDemand, Name: "household", EnergyType: model.Electrical, Values: elDemand},
		{Kind: component.KindDemand, Name: "space_heating", EnergyType: model.Thermal, Values: heatDemand},
		{Kind: component.KindPurchase, Name: "grid", EnergyType: model.Electrical, PriceSeries: price, PowerPrice: 0.05, CO2Intensity: &co2Grid},
		{Kind: component.KindPurchase, Name: "gas_grid", EnergyType: model.NaturalGas, Price: 0.09, CO2Intensity: &co2Gas},
		{Kind: component.KindFeedin, Name: "grid_feedin", EnergyType: model.Electrical, Price: 0.08},
		{
			Kind: component.KindPhotovoltaicRoof, Name: "pv_roof",
			InterestRate: 0.03, Lifespan: 25, Opex: 0.015, Capex: 1300,
			InstalledPower: 5, PotentialPower: &potentialPV, NormedProduction: pv,
		},
		{
			Kind: component.KindElectricalStorage, Name: "battery",
			InterestRate: 0.03, Lifespan: 15, Opex: 0.01, CapexCapacity: 800, CapexPower: 1e-5,
			Efficiency: 0.95, RelativeLosses: 1e-4, PotentialCapacity: &potentialBattery,
		},
		{
			Kind: component.KindGasBoiler, Name: "boiler",
			InterestRate: 0.03, Lifespan: 20, Opex: 0.02, Capex: 300,
			Efficiency: 0.95, InstalledPower: 15,
		},
		{
			Kind: component.KindHeatPumpAir, Name: "heat_pump",
			InterestRate: 0.03, Lifespan: 18, Opex: 0.025, Capex: 1200,
			SourceTemperature: airTemp, IcingFactor: 0.8,
		},
	}

	out := make([]component.Component, 0, len(specs))
	for _, s := range specs {
		c, err := component.New(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
