package convert

import (
	"fmt"

	"energy-planner/internal/model"

	"github.com/rs/zerolog/log"
)

// ExpandDemand converts demand values given at res in unit into hourly kWh
// over one reference year.
//
// Sub-hourly values are summed per hour. Coarse values are totalled per slot
// and spread over the hours of that slot: flat when profile is nil, otherwise
// proportionally to the hourly profile weights.
func ExpandDemand(values []float64, res model.Resolution, unit model.EnergyUnit, profile []float64) ([]float64, error) {
	factor, err := unit.KWhFactor()
	if err != nil {
		return nil, err
	}
	v, err := fit("demand", values, res)
	if err != nil {
		return nil, err
	}
	for i, x := range v {
		if x < 0 {
			return nil, fmt.Errorf("convert: demand value %d is negative (%g)", i, x)
		}
	}
	if profile != nil {
		if len(profile) < model.HoursPerYear {
			return nil, fmt.Errorf("convert: demand profile has %d values, want %d", len(profile), model.HoursPerYear)
		}
		profile = profile[:model.HoursPerYear]
	}

	out := make([]float64, model.HoursPerYear)
	switch {
	case res.SubHourly():
		per := len(v) / model.HoursPerYear
		for h := range out {
			sum := 0.0
			for _, x := range v[h*per : (h+1)*per] {
				sum += x
			}
			out[h] = sum * factor
		}
	case res.Coarse():
		hours := make([]int, len(v))
		weights := make([]float64, len(v))
		for h := range out {
			s := res.SlotOfHour(h)
			hours[s]++
			if profile != nil {
				weights[s] += profile[h]
			}
		}
		for h := range out {
			s := res.SlotOfHour(h)
			total := v[s] * factor
			if profile != nil && weights[s] > 0 {
				out[h] = total * profile[h] / weights[s]
				continue
			}
			out[h] = total / float64(hours[s])
		}
	default:
		for h := range out {
			out[h] = v[h] * factor
		}
	}
	return out, nil
}

// ExpandPrice converts price values given at res into one price per hour.
// Coarse prices hold for every hour of their slot; sub-hourly prices are
// averaged.
func ExpandPrice(values []float64, res model.Resolution) ([]float64, error) {
	v, err := fit("price", values, res)
	if err != nil {
		return nil, err
	}
	out := make([]float64, model.HoursPerYear)
	switch {
	case res.SubHourly():
		per := len(v) / model.HoursPerYear
		for h := range out {
			sum := 0.0
			for _, x := range v[h*per : (h+1)*per] {
				sum += x
			}
			out[h] = sum / float64(per)
		}
	case res.Coarse():
		for h := range out {
			out[h] = v[res.SlotOfHour(h)]
		}
	default:
		copy(out, v)
	}
	return out, nil
}

// Hourly checks that values cover the reference year hour by hour,
// truncating longer input.
func Hourly(name string, values []float64) ([]float64, error) {
	return fit(name, values, model.Res1H)
}

// Truncate returns the first n values, or values itself when shorter.
func Truncate(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[:n]
}

func fit(name string, values []float64, res model.Resolution) ([]float64, error) {
	slots, err := res.Slots()
	if err != nil {
		return nil, err
	}
	if len(values) < slots {
		return nil, fmt.Errorf("convert: %s at resolution %s needs %d values, got %d", name, res, slots, len(values))
	}
	if len(values) > slots {
		log.Debug().
			Str("series", name).
			Str("resolution", string(res)).
			Int("values", len(values)).
			Int("kept", slots).
			Msg("truncating series to one reference year")
		values = values[:slots]
	}
	return values, nil
}
