// Package analysis summarizes hourly series and compares optimization
// results.
package analysis

import (
	"math"
	"sort"
	"time"

	"energy-planner/internal/model"

	"gonum.org/v1/gonum/floats"
)

// Profile is a summary of one hourly series, such as a demand, a price or a
// normed production profile. It does not depend on any sizing decision.
type Profile struct {
	Name string `json:"name"`

	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`

	Count int `json:"count"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	Total float64 `json:"total"`
	// PeakHour is the first hour at which Max occurs.
	PeakHour int `json:"peak_hour"`
	// FullLoadHours is Total / Max: the hours at peak that yield the same
	// energy. For a normed production profile this is the yearly yield per
	// kW installed.
	FullLoadHours float64 `json:"full_load_hours"`
	// ZeroHours counts hours with a value of zero or less.
	ZeroHours int `json:"zero_hours"`
}

// ComputeProfile summarizes values laid out on the reference year.
func ComputeProfile(name string, values []float64) Profile {
	p := Profile{Name: name}
	if len(values) == 0 {
		return p
	}
	t := model.Year()
	p.Count = len(values)
	p.StartUTC = t.Start(0)
	p.EndUTC = t.Start(len(values))

	p.Total = floats.Sum(values)
	p.Min = floats.Min(values)
	p.Max = floats.Max(values)
	p.PeakHour = floats.MaxIdx(values)
	p.Mean = p.Total / float64(len(values))
	for _, v := range values {
		if v <= 0 {
			p.ZeroHours++
		}
	}
	if p.Max > 0 {
		p.FullLoadHours = p.Total / p.Max
	}

	vals := append([]float64(nil), values...)
	sort.Float64s(vals)
	p.P05 = percentileSorted(vals, 0.05)
	p.P95 = percentileSorted(vals, 0.95)
	return p
}

// Quantile returns the q-quantile of values with linear interpolation.
func Quantile(values []float64, q float64) float64 {
	vals := append([]float64(nil), values...)
	sort.Float64s(vals)
	return percentileSorted(vals, q)
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
