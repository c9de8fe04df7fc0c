package model

import (
	"fmt"
	"strings"
)

// EnergyType identifies a homogeneous energy carrier.
// Keep these values stable; they are part of the request and result formats.
type EnergyType string

const (
	Electrical EnergyType = "ELECTRICAL"
	Thermal    EnergyType = "THERMAL"
	NaturalGas EnergyType = "NATURAL_GAS"
	SolidFuel  EnergyType = "SOLID_FUEL"
	Cooling    EnergyType = "COOLING"
)

// EnergyTypes lists every carrier in the order balances are built.
var EnergyTypes = []EnergyType{Electrical, Thermal, NaturalGas, SolidFuel, Cooling}

func (e EnergyType) Valid() bool {
	for _, et := range EnergyTypes {
		if e == et {
			return true
		}
	}
	return false
}

// ParseEnergyType accepts any casing of a known energy type.
func ParseEnergyType(s string) (EnergyType, error) {
	et := EnergyType(strings.ToUpper(strings.TrimSpace(s)))
	if !et.Valid() {
		return "", fmt.Errorf("unknown energy type %q", s)
	}
	return et, nil
}

// DemandTitle is the prefix used for generated demand component names.
func (e EnergyType) DemandTitle() string {
	return strings.ToLower(string(e)) + "_demand"
}

// EnergyUnit is the unit of energy values in a request.
type EnergyUnit string

const (
	MWh EnergyUnit = "MWH"
	KWh EnergyUnit = "KWH"
	Wh  EnergyUnit = "WH"
)

// KWhFactor converts a value in this unit into kWh.
// An empty unit is treated as kWh.
func (u EnergyUnit) KWhFactor() (float64, error) {
	switch EnergyUnit(strings.ToUpper(string(u))) {
	case MWh:
		return 1000, nil
	case KWh, "":
		return 1, nil
	case Wh:
		return 1e-3, nil
	default:
		return 0, fmt.Errorf("unknown energy unit %q", u)
	}
}
