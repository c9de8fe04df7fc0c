// Package convert turns raw inputs (temperatures, irradiance, coarse demand
// and price series) into the hourly per-step values components consume.
package convert

import (
	"errors"
	"fmt"
)

const kelvinOffset = 273.15

// DefaultIcingThreshold is the source temperature in °C below which icing
// lowers the COP of air-source heat pumps.
const DefaultIcingThreshold = 2.0

var ErrTemperature = errors.New("convert: invalid temperature lift")

// Mode selects the Carnot relation used for the COP.
type Mode int

const (
	HeatPump Mode = iota
	Chiller
)

// COPParams configures COP. IcingFactor 0 disables the icing correction.
type COPParams struct {
	Mode           Mode
	QualityGrade   float64
	IcingFactor    float64
	IcingThreshold float64
}

// COP returns the coefficient of performance per step for a sink at
// tempHigh and a source at tempLow (both °C). A single-element slice on
// either side is broadcast to the length of the other.
func COP(tempHigh, tempLow []float64, p COPParams) ([]float64, error) {
	if p.QualityGrade <= 0 {
		return nil, fmt.Errorf("convert: quality grade must be > 0, got %g", p.QualityGrade)
	}
	if p.IcingFactor < 0 || p.IcingFactor > 1 {
		return nil, fmt.Errorf("convert: icing factor must be in [0, 1], got %g", p.IcingFactor)
	}
	n := len(tempHigh)
	if len(tempLow) > n {
		n = len(tempLow)
	}
	if n == 0 {
		return nil, fmt.Errorf("convert: no temperatures")
	}
	hi, err := broadcast("high temperature", tempHigh, n)
	if err != nil {
		return nil, err
	}
	lo, err := broadcast("low temperature", tempLow, n)
	if err != nil {
		return nil, err
	}
	threshold := p.IcingThreshold
	if threshold == 0 {
		threshold = DefaultIcingThreshold
	}

	out := make([]float64, n)
	for i := range out {
		th := hi[i] + kelvinOffset
		tl := lo[i] + kelvinOffset
		if th-tl <= 0 {
			return nil, fmt.Errorf("%w at step %d: %.2f°C -> %.2f°C", ErrTemperature, i, lo[i], hi[i])
		}
		num := th
		if p.Mode == Chiller {
			num = tl
		}
		cop := p.QualityGrade * num / (th - tl)
		if p.Mode == HeatPump && p.IcingFactor > 0 && lo[i] < threshold {
			cop *= p.IcingFactor
		}
		out[i] = cop
	}
	return out, nil
}

func broadcast(name string, v []float64, n int) ([]float64, error) {
	switch len(v) {
	case n:
		return v, nil
	case 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = v[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("convert: %s has %d values, want 1 or %d", name, len(v), n)
	}
}
