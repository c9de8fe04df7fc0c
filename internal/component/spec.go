package component

import (
	"fmt"

	"energy-planner/internal/model"
)

// Spec is the resolved parameter set of one component. Series are hourly
// and already converted to kWh; Opex is a fraction per year.
type Spec struct {
	Kind       Kind
	Name       string
	EnergyType model.EnergyType

	InterestRate  float64
	Lifespan      float64
	Opex          float64
	Capex         float64
	CapexPower    float64
	CapexCapacity float64

	InstalledPower    float64
	InstalledArea     float64
	InstalledCapacity float64
	// A nil potential means the size is not limited.
	PotentialPower    *float64
	PotentialArea     *float64
	PotentialCapacity *float64

	Efficiency           float64
	ElectricalEfficiency float64
	ThermalEfficiency    float64
	InitialSOC           float64
	RelativeLosses       float64

	QualityGrade      float64
	SupplyTemperature float64
	IcingFactor       float64

	Values            []float64
	NormedProduction  []float64
	Irradiance        []float64
	SourceTemperature []float64
	COP               []float64

	Price       float64
	PriceSeries []float64
	PowerPrice  float64
	// CO2Intensity in g/kWh; nil disables emission accounting.
	CO2Intensity *float64
}

func checkSize(what string, installed float64, potential *float64) error {
	if installed < 0 {
		return fmt.Errorf("installed %s must be >= 0, got %g", what, installed)
	}
	if potential == nil {
		return nil
	}
	if *potential < 0 {
		return fmt.Errorf("potential %s must be >= 0, got %g", what, *potential)
	}
	if installed > *potential {
		return fmt.Errorf("installed %s %g exceeds potential %g", what, installed, *potential)
	}
	return nil
}

func checkNonNegative(fields map[string]float64) error {
	for name, v := range fields {
		if v < 0 {
			return fmt.Errorf("%s must be >= 0, got %g", name, v)
		}
	}
	return nil
}
