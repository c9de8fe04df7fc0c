package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"energy-planner/internal/lp"
	"energy-planner/internal/model"
)

// WriteSeriesCSV writes one row per step with a column for every variable
// and parameter series of p.
func WriteSeriesCSV(w io.Writer, p *lp.Problem, sol *lp.Solution, t model.TimeIndex) error {
	series := p.Series()
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(series)+2)
	header = append(header, "hour", "timestamp")
	values := make([][]float64, len(series))
	for i, s := range series {
		if s.Len() != t.Len() {
			return fmt.Errorf("series %s has %d steps, expected %d", s.Name(), s.Len(), t.Len())
		}
		header = append(header, s.Name())
		values[i] = s.Values(sol)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for h := 0; h < t.Len(); h++ {
		row[0] = strconv.Itoa(h)
		row[1] = fmtTime(t.Start(h))
		for i := range series {
			row[i+2] = fmtFloat(values[i][h])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteScalarsCSV writes every scalar variable of p with its value.
func WriteScalarsCSV(w io.Writer, p *lp.Problem, sol *lp.Solution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"variable", "value"}); err != nil {
		return err
	}
	for _, v := range p.Scalars() {
		if err := cw.Write([]string{p.VarName(v), fmtFloat(sol.Value(v))}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteComponentsCSV writes one row per component of a scenario.
func WriteComponentsCSV(w io.Writer, s *ScenarioResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"name",
		"kind",
		"advised_power",
		"advised_heat_power",
		"advised_capacity",
		"advised_area",
		"investment_cost",
		"operational_cost",
		"annuity",
		"purchase_cost",
		"feedin_income",
		"max_power",
		"co2_emissions",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range s.Components {
		row := []string{
			c.Name,
			string(c.Kind),
			fmtOptional(c.AdvisedPower),
			fmtOptional(c.AdvisedHeatPower),
			fmtOptional(c.AdvisedCapacity),
			fmtOptional(c.AdvisedArea),
			fmtOptional(c.InvestmentCost),
			fmtOptional(c.OperationalCost),
			fmtOptional(c.Annuity),
			fmtOptional(c.PurchaseCost),
			fmtOptional(c.FeedinIncome),
			fmtOptional(c.MaxPower),
			fmtOptional(c.CO2Emissions),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates path and hands it to write.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

func fmtOptional(x *float64) string {
	if x == nil {
		return ""
	}
	return fmtFloat(*x)
}
