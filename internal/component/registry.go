package component

import (
	"fmt"
	"sort"
)

// Constructor builds a component from its resolved parameters.
type Constructor func(Spec) (Component, error)

func adapt[T Component](fn func(Spec) (T, error)) Constructor {
	return func(s Spec) (Component, error) {
		c, err := fn(s)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

var registry = map[Kind]Constructor{
	KindDemand:                adapt(NewDemand),
	KindPurchase:              adapt(NewPurchase),
	KindFeedin:                adapt(NewFeedin),
	KindPhotovoltaicRoof:      adapt(NewPhotovoltaic),
	KindPhotovoltaicFreeField: adapt(NewPhotovoltaic),
	KindWindPower:             adapt(NewWindPower),
	KindSolarThermal:          adapt(NewSolarThermal),
	KindGasBoiler:             adapt(NewGasBoiler),
	KindSolidFuelBoiler:       adapt(NewSolidFuelBoiler),
	KindHeatPumpAir:           adapt(NewHeatPump),
	KindHeatPumpGround:        adapt(NewHeatPump),
	KindCombinedHeatPower:     adapt(NewCombinedHeatPower),
	KindElectricalStorage:     adapt(NewElectricalStorage),
	KindThermalStorage:        adapt(NewThermalStorage),
}

// New builds the component registered for spec.Kind.
func New(spec Spec) (Component, error) {
	ctor, ok := registry[spec.Kind]
	if !ok {
		return nil, &ConfigError{Component: spec.Name, Err: fmt.Errorf("unknown technology %q", spec.Kind)}
	}
	return ctor(spec)
}

// Kinds lists every registered technology tag in sorted order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
