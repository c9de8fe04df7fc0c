package config

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"energy-planner/internal/component"
	"energy-planner/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultParametersYAML []byte

// TechParams are the techno-economic parameters of one technology or
// tariff. Nil fields are unset. Opex is given in percent of the investment
// cost per year.
type TechParams struct {
	Capex                *float64 `yaml:"capex,omitempty" json:"capex,omitempty"`
	CapexPower           *float64 `yaml:"capex_power,omitempty" json:"capex_power,omitempty"`
	CapexCapacity        *float64 `yaml:"capex_capacity,omitempty" json:"capex_capacity,omitempty"`
	Opex                 *float64 `yaml:"opex,omitempty" json:"opex,omitempty"`
	Lifespan             *float64 `yaml:"lifespan,omitempty" json:"lifespan,omitempty"`
	InterestRate         *float64 `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
	Efficiency           *float64 `yaml:"efficiency,omitempty" json:"efficiency,omitempty"`
	ElectricalEfficiency *float64 `yaml:"electrical_efficiency,omitempty" json:"electrical_efficiency,omitempty"`
	ThermalEfficiency    *float64 `yaml:"thermal_efficiency,omitempty" json:"thermal_efficiency,omitempty"`
	InitialSOC           *float64 `yaml:"initial_soc,omitempty" json:"initial_soc,omitempty"`
	RelativeLosses       *float64 `yaml:"relative_losses,omitempty" json:"relative_losses,omitempty"`
	QualityGrade         *float64 `yaml:"quality_grade,omitempty" json:"quality_grade,omitempty"`
	SupplyTemperature    *float64 `yaml:"supply_temperature,omitempty" json:"supply_temperature,omitempty"`
	IcingFactor          *float64 `yaml:"icing_factor,omitempty" json:"icing_factor,omitempty"`
	PowerPrice           *float64 `yaml:"power_price,omitempty" json:"power_price,omitempty"`
	CO2Intensity         *float64 `yaml:"co2_intensity,omitempty" json:"co2_intensity,omitempty"`
}

func (p *TechParams) fields() map[string]**float64 {
	return map[string]**float64{
		"capex":                 &p.Capex,
		"capex_power":           &p.CapexPower,
		"capex_capacity":        &p.CapexCapacity,
		"opex":                  &p.Opex,
		"lifespan":              &p.Lifespan,
		"interest_rate":         &p.InterestRate,
		"efficiency":            &p.Efficiency,
		"electrical_efficiency": &p.ElectricalEfficiency,
		"thermal_efficiency":    &p.ThermalEfficiency,
		"initial_soc":           &p.InitialSOC,
		"relative_losses":       &p.RelativeLosses,
		"quality_grade":         &p.QualityGrade,
		"supply_temperature":    &p.SupplyTemperature,
		"icing_factor":          &p.IcingFactor,
		"power_price":           &p.PowerPrice,
		"co2_intensity":         &p.CO2Intensity,
	}
}

// Set returns the values of every set field keyed by parameter name.
func (p TechParams) Set() map[string]float64 {
	out := map[string]float64{}
	for name, v := range p.fields() {
		if *v != nil {
			out[name] = **v
		}
	}
	return out
}

// Merge overlays the set fields of override onto base.
func Merge(base, override TechParams) TechParams {
	out := base
	src := override.fields()
	for name, dst := range out.fields() {
		if v := *src[name]; v != nil {
			x := *v
			*dst = &x
		}
	}
	return out
}

// Parameters maps a technology tag, or a tariff key such as
// ELECTRICAL_PURCHASE, to its parameters.
type Parameters map[string]TechParams

// TariffKey is the parameter key of a purchase or feed-in tariff.
func TariffKey(et model.EnergyType, kind component.Kind) string {
	if kind == component.KindFeedin {
		return string(et) + "_FEEDIN"
	}
	return string(et) + "_PURCHASE"
}

// Get returns the parameters stored under key, or the zero value.
func (p Parameters) Get(key string) TechParams {
	return p[strings.ToUpper(key)]
}

// MergeParameters overlays override onto base key by key.
func MergeParameters(base, override Parameters) Parameters {
	out := make(Parameters, len(base)+len(override))
	for k, v := range base {
		out[strings.ToUpper(k)] = v
	}
	for k, v := range override {
		k = strings.ToUpper(k)
		out[k] = Merge(out[k], v)
	}
	return out
}

// Validate checks that every key names a technology or tariff and that no
// value is negative.
func (p Parameters) Validate() error {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !knownKey(k) {
			return fmt.Errorf("unknown parameter key %q", k)
		}
		tp := p[k]
		for name, v := range tp.fields() {
			if *v != nil && **v < 0 {
				return fmt.Errorf("%s.%s must be >= 0, got %g", k, name, **v)
			}
		}
	}
	return nil
}

func knownKey(k string) bool {
	if _, err := component.ParseKind(k); err == nil {
		return true
	}
	for _, et := range model.EnergyTypes {
		if k == TariffKey(et, component.KindPurchase) || k == TariffKey(et, component.KindFeedin) {
			return true
		}
	}
	return false
}

func LoadParameters(path string) (Parameters, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseParameters(raw, path)
}

// DefaultParameters returns the built-in technology defaults.
func DefaultParameters() Parameters {
	p, err := parseParameters(defaultParametersYAML, "defaults.yaml")
	if err != nil {
		panic(err)
	}
	return p
}

func parseParameters(raw []byte, name string) (Parameters, error) {
	var p Parameters
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return MergeParameters(nil, p), nil
}
