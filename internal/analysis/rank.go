package analysis

import (
	"sort"

	"energy-planner/internal/model"
	"energy-planner/internal/results"
)

// Variant is one named result of a comparison.
type Variant struct {
	Name   string
	Result *results.Result
}

// RankedVariant is a variant with the figures it is ranked by.
type RankedVariant struct {
	Name   string       `json:"name"`
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
	Rank   int          `json:"rank"`

	TargetAnnuities  float64 `json:"target_annuities"`
	CurrentAnnuities float64 `json:"current_annuities,omitempty"`
	// Savings is current minus target annuities, when both are known.
	Savings      float64 `json:"savings,omitempty"`
	CO2Emissions float64 `json:"co2_emissions"`
	ErrorMessage string  `json:"error_message,omitempty"`
	HasCurrent   bool    `json:"has_current"`
}

// RankByAnnuity sorts variants ascending by target total annuities.
// Variants without a successful target scenario go last, in input order.
func RankByAnnuity(variants []Variant) []RankedVariant {
	out := make([]RankedVariant, 0, len(variants))
	for _, v := range variants {
		rv := RankedVariant{Name: v.Name, Status: model.StatusError}
		if r := v.Result; r != nil {
			rv.ID = r.ID
			rv.Status = r.Status
			rv.ErrorMessage = r.ErrorMessage
			if r.Target != nil {
				rv.TargetAnnuities = r.Target.KPIs.TotalAnnuities
				rv.CO2Emissions = r.Target.KPIs.TotalCO2Emissions
			}
			if r.Current != nil {
				rv.HasCurrent = true
				rv.CurrentAnnuities = r.Current.KPIs.TotalAnnuities
				rv.Savings = rv.CurrentAnnuities - rv.TargetAnnuities
			}
		}
		out = append(out, rv)
	}
	sort.SliceStable(out, func(i, j int) bool {
		si := out[i].Status == model.StatusSuccess
		sj := out[j].Status == model.StatusSuccess
		if si != sj {
			return si
		}
		if !si {
			return false
		}
		return out[i].TargetAnnuities < out[j].TargetAnnuities
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
