package component

import (
	"fmt"
	"strings"
)

// Kind is the technology tag of a component as used in requests and
// parameter files.
type Kind string

const (
	KindDemand                Kind = "ENERGY_DEMAND"
	KindPurchase              Kind = "ENERGY_PURCHASE"
	KindFeedin                Kind = "ENERGY_FEEDIN"
	KindPhotovoltaicRoof      Kind = "PHOTOVOLTAIC_ROOF"
	KindPhotovoltaicFreeField Kind = "PHOTOVOLTAIC_FREE_FIELD"
	KindWindPower             Kind = "WIND_POWER"
	KindSolarThermal          Kind = "SOLAR_THERMAL_ENERGY"
	KindGasBoiler             Kind = "GAS_BOILER"
	KindSolidFuelBoiler       Kind = "SOLID_FUEL_BOILER"
	KindHeatPumpAir           Kind = "HEAT_PUMP_AIR"
	KindHeatPumpGround        Kind = "HEAT_PUMP_GROUND"
	KindCombinedHeatPower     Kind = "COMBINED_HEAT_POWER"
	KindElectricalStorage     Kind = "ELECTRICAL_ENERGY_STORAGE"
	KindThermalStorage        Kind = "THERMAL_ENERGY_STORAGE"
)

// Category groups kinds by how they are sized.
type Category string

const (
	CategoryDemand Category = "demand"
	CategoryTariff Category = "tariff"
	CategoryPower  Category = "power"
	CategoryArea   Category = "area"
	CategoryStore  Category = "storage"
)

var categories = map[Kind]Category{
	KindDemand:                CategoryDemand,
	KindPurchase:              CategoryTariff,
	KindFeedin:                CategoryTariff,
	KindPhotovoltaicRoof:      CategoryPower,
	KindPhotovoltaicFreeField: CategoryPower,
	KindWindPower:             CategoryPower,
	KindSolarThermal:          CategoryArea,
	KindGasBoiler:             CategoryPower,
	KindSolidFuelBoiler:       CategoryPower,
	KindHeatPumpAir:           CategoryPower,
	KindHeatPumpGround:        CategoryPower,
	KindCombinedHeatPower:     CategoryPower,
	KindElectricalStorage:     CategoryStore,
	KindThermalStorage:        CategoryStore,
}

func (k Kind) Category() Category { return categories[k] }

// Investment reports whether components of this kind carry sizing variables.
func (k Kind) Investment() bool {
	c := k.Category()
	return c == CategoryPower || c == CategoryArea || c == CategoryStore
}

// NamePrefix is the prefix of generated component names, e.g. "wind_power".
func (k Kind) NamePrefix() string { return strings.ToLower(string(k)) }

// ParseKind accepts any casing of a known tag.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := categories[k]; !ok {
		return "", fmt.Errorf("%w: unknown technology %q", ErrConfig, s)
	}
	return k, nil
}
