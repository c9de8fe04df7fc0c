package convert

import "fmt"

// StandardIrradiance is the reference irradiance in W/m² at which a
// collector delivers its rated specific output.
const StandardIrradiance = 1000.0

// NormalizeIrradiance converts global horizontal irradiance in W/m² into a
// normed production in kW per m² of collector area. Negative readings are
// clipped to 0.
func NormalizeIrradiance(ghi []float64) ([]float64, error) {
	if len(ghi) == 0 {
		return nil, fmt.Errorf("convert: no irradiance values")
	}
	out := make([]float64, len(ghi))
	for i, v := range ghi {
		if v > 0 {
			out[i] = v / StandardIrradiance
		}
	}
	return out, nil
}
