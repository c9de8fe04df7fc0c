package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"energy-planner/internal/analysis"
	"energy-planner/internal/api/handlers"
	"energy-planner/internal/config"
	"energy-planner/internal/convert"
	"energy-planner/internal/data"
	"energy-planner/internal/logging"
	"energy-planner/internal/planner"
	"energy-planner/internal/results"
	"energy-planner/internal/scenario"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "optimize":
		err = cmdOptimize(os.Args[2:])
	case "compare":
		err = cmdCompare(os.Args[2:])
	case "technologies":
		err = cmdTechnologies(os.Args[2:])
	case "cop":
		err = cmdCOP(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli optimize --request examples/request.yaml [--config examples/engine.yaml] [--out results/result.json] [--series results/series.csv]")
	fmt.Println("  cli compare --request examples/compare.yaml [--config examples/engine.yaml] [--out results/compare.json]")
	fmt.Println("  cli technologies [--config examples/engine.yaml]")
	fmt.Println("  cli cop --source 7,2,-5 [--supply 50] [--quality-grade 0.4] [--icing-factor 0.8]")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - optimize sizes every component (target scenario) and dispatches the installed sizes (current scenario)")
	fmt.Println("  - compare ranks request variants by total annuities")
}

// engineFlags are shared by the subcommands that run the optimizer.
type engineFlags struct {
	config   *string
	horizon  *int
	solver   *string
	logLevel *string
}

func addEngineFlags(fs *pflag.FlagSet) engineFlags {
	return engineFlags{
		config:   fs.StringP("config", "c", "", "Path to engine YAML config (defaults when empty)"),
		horizon:  fs.Int("horizon", 0, "Optional: override horizon_hours (0=config)"),
		solver:   fs.String("solver", "", "Optional: override solver.name (highs, cbc, simplex)"),
		logLevel: fs.String("log-level", "", "Log level (debug, info, warn, error)"),
	}
}

func (f engineFlags) load() (*config.Config, error) {
	cfg := config.Default()
	if *f.config != "" {
		var err error
		if cfg, err = config.Load(*f.config); err != nil {
			return nil, err
		}
	}
	if *f.horizon > 0 || *f.solver != "" {
		if *f.horizon > 0 {
			cfg.HorizonHours = *f.horizon
		}
		if *f.solver != "" {
			cfg.Solver.Name = *f.solver
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if err := logging.Setup(firstNonEmpty(*f.logLevel, cfg.Logging.Level), cfg.Logging.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

func cmdOptimize(args []string) error {
	fs := pflag.NewFlagSet("optimize", pflag.ExitOnError)
	ef := addEngineFlags(fs)
	reqPath := fs.StringP("request", "r", "", "Path to request YAML or JSON")
	outPath := fs.StringP("out", "o", "", "Optional: write the result JSON here")
	seriesPath := fs.String("series", "", "Optional: write hourly series CSV of the target scenario here")
	scalarsPath := fs.String("scalars", "", "Optional: write scalar variables CSV of the target scenario here")
	_ = fs.Parse(args)

	if *reqPath == "" {
		return errors.New("--request is required")
	}
	cfg, err := ef.load()
	if err != nil {
		return err
	}
	req, err := config.LoadRequest(*reqPath)
	if err != nil {
		return err
	}

	p := planner.New(cfg, planner.WithBaseDir(filepath.Dir(*reqPath)))
	o, err := p.Plan(context.Background(), req)
	if err != nil {
		return err
	}

	if *outPath != "" {
		if err := writeJSON(*outPath, o.Result); err != nil {
			return err
		}
		fmt.Printf("Wrote result to %s\n", *outPath)
	}
	if o.Target.Optimal() {
		if err := writeCSV(*seriesPath, func(w io.Writer) error {
			return results.WriteSeriesCSV(w, o.Problem, o.Target, o.Hours)
		}); err != nil {
			return err
		}
		if err := writeCSV(*scalarsPath, func(w io.Writer) error {
			return results.WriteScalarsCSV(w, o.Problem, o.Target)
		}); err != nil {
			return err
		}
	}

	printResult(o)
	return nil
}

func printResult(o *scenario.Outcome) {
	r := o.Result
	fmt.Printf("id=%s status=%s\n", r.ID, r.Status)
	if r.ErrorMessage != "" {
		fmt.Printf("error: %s\n", r.ErrorMessage)
	}
	if r.Target == nil {
		return
	}
	fmt.Printf("%-32s %-12s %-12s %-12s %-12s\n", "component", "power", "capacity", "area", "annuity")
	for _, c := range r.Target.Components {
		fmt.Printf("%-32s %-12s %-12s %-12s %-12s\n",
			c.Name, num(c.AdvisedPower), num(c.AdvisedCapacity), num(c.AdvisedArea), num(c.Annuity))
	}
	k := r.Target.KPIs
	fmt.Printf("Target: annuities=%.2f investment=%.2f purchase=%.2f feed-in=%.2f co2=%.3ft\n",
		k.TotalAnnuities, k.TotalInvestmentCost, k.TotalPurchaseCost, k.TotalFeedinIncome, k.TotalCO2Emissions)
	if r.Current != nil {
		k := r.Current.KPIs
		fmt.Printf("Current: annuities=%.2f purchase=%.2f feed-in=%.2f co2=%.3ft\n",
			k.TotalAnnuities, k.TotalPurchaseCost, k.TotalFeedinIncome, k.TotalCO2Emissions)
	}
}

func cmdCompare(args []string) error {
	fs := pflag.NewFlagSet("compare", pflag.ExitOnError)
	ef := addEngineFlags(fs)
	reqPath := fs.StringP("request", "r", "", "Path to comparison YAML or JSON (base + variants)")
	outPath := fs.StringP("out", "o", "", "Optional: write the ranking JSON here")
	_ = fs.Parse(args)

	if *reqPath == "" {
		return errors.New("--request is required")
	}
	cfg, err := ef.load()
	if err != nil {
		return err
	}
	cmp, err := planner.LoadComparison(*reqPath)
	if err != nil {
		return err
	}
	p := planner.New(cfg, planner.WithBaseDir(filepath.Dir(*reqPath)))
	got, err := p.Compare(context.Background(), *cmp)
	if err != nil {
		return err
	}
	if *outPath != "" {
		if err := writeJSON(*outPath, got.Ranking); err != nil {
			return err
		}
	}

	fmt.Printf("%-4s %-24s %-10s %-14s %-14s %-10s\n", "rank", "variant", "status", "annuities", "savings", "co2[t]")
	for _, r := range got.Ranking {
		fmt.Printf("%-4d %-24s %-10s %-14.2f %-14s %-10.3f\n",
			r.Rank, r.Name, r.Status, r.TargetAnnuities, savings(r), r.CO2Emissions)
	}
	return nil
}

func cmdTechnologies(args []string) error {
	fs := pflag.NewFlagSet("technologies", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to engine YAML config")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	_ = fs.Parse(args)

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	techs := handlers.Technologies(cfg.Parameters)
	if *asJSON {
		raw, err := json.MarshalIndent(techs, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
		return nil
	}
	for _, t := range techs {
		params := make([]string, 0, len(t.Parameters))
		for _, p := range t.Parameters {
			params = append(params, fmt.Sprintf("%s=%g", p.Name, *p.Default))
		}
		fmt.Printf("%-26s %-8s %s\n", t.Kind, t.Category, strings.Join(params, " "))
	}
	return nil
}

func cmdCOP(args []string) error {
	fs := pflag.NewFlagSet("cop", pflag.ExitOnError)
	supply := fs.Float64Slice("supply", []float64{50}, "Sink temperature(s) in °C")
	source := fs.Float64Slice("source", nil, "Source temperature(s) in °C")
	sourceFile := fs.String("source-file", "", "JSON series of source temperatures")
	grade := fs.Float64("quality-grade", 0.4, "Quality grade")
	icing := fs.Float64("icing-factor", 0, "Icing factor applied below 2 °C (0 disables)")
	chiller := fs.Bool("chiller", false, "Compute a chiller EER instead of a heat pump COP")
	_ = fs.Parse(args)

	temps := *source
	if *sourceFile != "" {
		var err error
		if temps, err = data.LoadSeries(*sourceFile); err != nil {
			return err
		}
	}
	if len(temps) == 0 {
		return errors.New("--source or --source-file is required")
	}
	params := convert.COPParams{QualityGrade: *grade, IcingFactor: *icing}
	if *chiller {
		params.Mode = convert.Chiller
	}
	cop, err := convert.COP(*supply, temps, params)
	if err != nil {
		return err
	}
	if len(cop) <= 24 {
		for i, v := range cop {
			fmt.Printf("%-4d %.3f\n", i, v)
		}
	}
	p := analysis.ComputeProfile("cop", cop)
	fmt.Printf("count=%d min=%.3f mean=%.3f max=%.3f p05=%.3f p95=%.3f\n", p.Count, p.Min, p.Mean, p.Max, p.P05, p.P95)
	return nil
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return data.WriteJSON(path, v)
}

// writeCSV writes path through fn; an empty path is skipped.
func writeCSV(path string, fn func(w io.Writer) error) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := results.WriteFile(path, fn); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("wrote csv")
	return nil
}

func num(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

func savings(r analysis.RankedVariant) string {
	if !r.HasCurrent {
		return "-"
	}
	return strconv.FormatFloat(r.Savings, 'f', 2, 64)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
