package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"energy-planner/internal/component"
	"energy-planner/internal/convert"
	"energy-planner/internal/data"
	"energy-planner/internal/model"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var ErrInvalidRequest = fmt.Errorf("%w: invalid request", component.ErrConfig)

// SeriesInput is a series given inline or as a JSON file.
type SeriesInput struct {
	Values     []float64        `yaml:"values,omitempty" json:"values,omitempty"`
	File       string           `yaml:"file,omitempty" json:"file,omitempty"`
	Resolution model.Resolution `yaml:"resolution,omitempty" json:"resolution,omitempty"`
	Unit       model.EnergyUnit `yaml:"unit,omitempty" json:"unit,omitempty"`
}

func (s *SeriesInput) empty() bool { return s == nil || (len(s.Values) == 0 && s.File == "") }

func (s *SeriesInput) load(dir string) ([]float64, error) {
	if s.File != "" {
		if len(s.Values) > 0 {
			return nil, errors.New("values and file are mutually exclusive")
		}
		return data.LoadSeries(ResolvePath(dir, s.File))
	}
	return s.Values, nil
}

func (s *SeriesInput) resolution() model.Resolution {
	if s.Resolution == "" {
		return model.Res1H
	}
	return s.Resolution
}

type DemandInput struct {
	Name       string           `yaml:"name,omitempty" json:"name,omitempty"`
	EnergyType model.EnergyType `yaml:"energy_type" json:"energy_type"`

	SeriesInput `yaml:",inline"`

	// Profile optionally shapes coarse demand values hour by hour.
	Profile *SeriesInput `yaml:"profile,omitempty" json:"profile,omitempty"`
}

type TariffInput struct {
	Name       string           `yaml:"name,omitempty" json:"name,omitempty"`
	EnergyType model.EnergyType `yaml:"energy_type" json:"energy_type"`

	// Direction is PURCHASE or FEEDIN.
	Direction    string       `yaml:"direction" json:"direction"`
	Price        *SeriesInput `yaml:"price,omitempty" json:"price,omitempty"`
	PowerPrice   *float64     `yaml:"power_price,omitempty" json:"power_price,omitempty"`
	CO2Intensity *float64     `yaml:"co2_intensity,omitempty" json:"co2_intensity,omitempty"`
}

type ComponentInput struct {
	Type string `yaml:"type" json:"type"`
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	InstalledPower    float64  `yaml:"installed_power,omitempty" json:"installed_power,omitempty"`
	PotentialPower    *float64 `yaml:"potential_power,omitempty" json:"potential_power,omitempty"`
	InstalledArea     float64  `yaml:"installed_area,omitempty" json:"installed_area,omitempty"`
	PotentialArea     *float64 `yaml:"potential_area,omitempty" json:"potential_area,omitempty"`
	InstalledCapacity float64  `yaml:"installed_capacity,omitempty" json:"installed_capacity,omitempty"`
	PotentialCapacity *float64 `yaml:"potential_capacity,omitempty" json:"potential_capacity,omitempty"`

	TechParams `yaml:",inline"`

	NormedProduction  *SeriesInput `yaml:"normed_production,omitempty" json:"normed_production,omitempty"`
	Irradiance        *SeriesInput `yaml:"irradiance,omitempty" json:"irradiance,omitempty"`
	SourceTemperature *SeriesInput `yaml:"source_temperature,omitempty" json:"source_temperature,omitempty"`
	COP               *SeriesInput `yaml:"cop,omitempty" json:"cop,omitempty"`
}

// Request describes one optimization: demands, candidate technologies and
// tariffs.
type Request struct {
	InterestRate *float64         `yaml:"interest_rate,omitempty" json:"interest_rate,omitempty"`
	Demands      []DemandInput    `yaml:"demands" json:"demands"`
	Components   []ComponentInput `yaml:"components,omitempty" json:"components,omitempty"`
	Tariffs      []TariffInput    `yaml:"tariffs,omitempty" json:"tariffs,omitempty"`
}

// LoadRequest reads a request from a .json file or, otherwise, YAML.
// Relative series files resolve against the request's directory.
func LoadRequest(path string) (*Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Request
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(raw, &r)
	} else {
		err = yaml.Unmarshal(raw, &r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &r, nil
}

// Validate checks the request shape. Values are checked by the components.
func (r *Request) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidRequest)
	}
	if len(r.Demands) == 0 {
		return fmt.Errorf("%w: at least one demand is required", ErrInvalidRequest)
	}
	if r.InterestRate != nil && (*r.InterestRate <= 0 || *r.InterestRate >= 1) {
		return fmt.Errorf("%w: interest_rate must be in (0, 1), got %g", ErrInvalidRequest, *r.InterestRate)
	}
	for i, d := range r.Demands {
		if !d.EnergyType.Valid() {
			return fmt.Errorf("%w: demands[%d]: unknown energy type %q", ErrInvalidRequest, i, d.EnergyType)
		}
		if d.SeriesInput.empty() {
			return fmt.Errorf("%w: demands[%d]: values or file is required", ErrInvalidRequest, i)
		}
	}
	for i, c := range r.Components {
		k, err := component.ParseKind(c.Type)
		if err != nil {
			return fmt.Errorf("%w: components[%d]: %v", ErrInvalidRequest, i, err)
		}
		if k.Category() == component.CategoryDemand || k.Category() == component.CategoryTariff {
			return fmt.Errorf("%w: components[%d]: %s belongs under demands or tariffs", ErrInvalidRequest, i, k)
		}
	}
	for i, t := range r.Tariffs {
		if !t.EnergyType.Valid() {
			return fmt.Errorf("%w: tariffs[%d]: unknown energy type %q", ErrInvalidRequest, i, t.EnergyType)
		}
		if _, err := tariffKind(t.Direction); err != nil {
			return fmt.Errorf("%w: tariffs[%d]: %v", ErrInvalidRequest, i, err)
		}
	}
	return nil
}

func tariffKind(direction string) (component.Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(direction)) {
	case "PURCHASE", "":
		return component.KindPurchase, nil
	case "FEEDIN", "FEED_IN":
		return component.KindFeedin, nil
	default:
		return "", fmt.Errorf("unknown tariff direction %q", direction)
	}
}

// BuildOptions carries what a request needs from the engine configuration.
type BuildOptions struct {
	Parameters          Parameters
	DefaultInterestRate float64
	Hours               model.TimeIndex
	// BaseDir resolves relative series files.
	BaseDir string
}

// Options derives BuildOptions from the engine configuration.
func (c *Config) Options(baseDir string) (BuildOptions, error) {
	hours, err := c.Hours()
	if err != nil {
		return BuildOptions{}, err
	}
	return BuildOptions{
		Parameters:          c.Parameters,
		DefaultInterestRate: c.DefaultInterestRate,
		Hours:               hours,
		BaseDir:             baseDir,
	}, nil
}

// Specs resolves the request into component specs: series are expanded to
// hourly kWh and cut to the horizon, parameters are merged over the
// technology defaults, and missing names are generated.
func (r *Request) Specs(opts BuildOptions) ([]component.Spec, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if opts.Hours.Len() == 0 {
		opts.Hours = model.Year()
	}
	interest := opts.DefaultInterestRate
	if r.InterestRate != nil {
		interest = *r.InterestRate
	}
	b := &specBuilder{opts: opts, interest: interest, counters: map[string]int{}}

	var specs []component.Spec
	for i, d := range r.Demands {
		s, err := b.demand(d)
		if err != nil {
			return nil, fmt.Errorf("%w: demands[%d]: %v", ErrInvalidRequest, i, err)
		}
		specs = append(specs, s)
	}
	for i, t := range r.Tariffs {
		s, err := b.tariff(t)
		if err != nil {
			return nil, fmt.Errorf("%w: tariffs[%d]: %v", ErrInvalidRequest, i, err)
		}
		specs = append(specs, s)
	}
	for i, c := range r.Components {
		s, ok, err := b.component(c)
		if err != nil {
			return nil, fmt.Errorf("%w: components[%d]: %v", ErrInvalidRequest, i, err)
		}
		if ok {
			specs = append(specs, s)
		}
	}
	return specs, nil
}

// Build resolves the request and constructs its components.
func (r *Request) Build(opts BuildOptions) ([]component.Component, error) {
	specs, err := r.Specs(opts)
	if err != nil {
		return nil, err
	}
	out := make([]component.Component, 0, len(specs))
	for _, s := range specs {
		c, err := component.New(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

type specBuilder struct {
	opts     BuildOptions
	interest float64
	counters map[string]int
}

func (b *specBuilder) name(given, prefix string) string {
	if given != "" {
		return given
	}
	b.counters[prefix]++
	return fmt.Sprintf("%s_%d", prefix, b.counters[prefix])
}

func (b *specBuilder) demand(d DemandInput) (component.Spec, error) {
	values, err := d.SeriesInput.load(b.opts.BaseDir)
	if err != nil {
		return component.Spec{}, err
	}
	var profile []float64
	if !d.Profile.empty() {
		if profile, err = d.Profile.load(b.opts.BaseDir); err != nil {
			return component.Spec{}, fmt.Errorf("profile: %w", err)
		}
	}
	hourly, err := convert.ExpandDemand(values, d.resolution(), d.Unit, profile)
	if err != nil {
		return component.Spec{}, err
	}
	return component.Spec{
		Kind:       component.KindDemand,
		Name:       b.name(d.Name, d.EnergyType.DemandTitle()),
		EnergyType: d.EnergyType,
		Values:     convert.Truncate(hourly, b.opts.Hours.Len()),
	}, nil
}

func (b *specBuilder) tariff(t TariffInput) (component.Spec, error) {
	kind, _ := tariffKind(t.Direction)
	params := b.opts.Parameters.Get(TariffKey(t.EnergyType, kind))
	params = Merge(params, TechParams{PowerPrice: t.PowerPrice, CO2Intensity: t.CO2Intensity})

	suffix := "_purchase"
	if kind == component.KindFeedin {
		suffix = "_feedin"
	}
	s := component.Spec{
		Kind:       kind,
		Name:       b.name(t.Name, strings.ToLower(string(t.EnergyType))+suffix),
		EnergyType: t.EnergyType,
		PowerPrice: value(params.PowerPrice),
	}
	if kind == component.KindPurchase {
		s.CO2Intensity = params.CO2Intensity
	}
	if t.Price.empty() {
		return s, nil
	}
	prices, err := t.Price.load(b.opts.BaseDir)
	if err != nil {
		return component.Spec{}, fmt.Errorf("price: %w", err)
	}
	res := t.Price.resolution()
	if len(prices) == 1 && t.Price.Resolution == "" {
		res = model.Res1Y
	}
	if res == model.Res1Y {
		s.Price = prices[0]
		return s, nil
	}
	hourly, err := convert.ExpandPrice(prices, res)
	if err != nil {
		return component.Spec{}, fmt.Errorf("price: %w", err)
	}
	s.PriceSeries = convert.Truncate(hourly, b.opts.Hours.Len())
	return s, nil
}

func (b *specBuilder) component(c ComponentInput) (component.Spec, bool, error) {
	kind, err := component.ParseKind(c.Type)
	if err != nil {
		return component.Spec{}, false, err
	}
	if zeroPotential(kind, c) {
		log.Info().Str("type", string(kind)).Str("name", c.Name).Msg("potential is 0, component skipped")
		return component.Spec{}, false, nil
	}
	params := Merge(b.opts.Parameters.Get(string(kind)), c.TechParams)
	interest := b.interest
	if params.InterestRate != nil {
		interest = *params.InterestRate
	}

	s := component.Spec{
		Kind:                 kind,
		Name:                 b.name(c.Name, kind.NamePrefix()),
		InterestRate:         interest,
		Lifespan:             value(params.Lifespan),
		Opex:                 value(params.Opex) / 100,
		Capex:                value(params.Capex),
		CapexPower:           value(params.CapexPower),
		CapexCapacity:        value(params.CapexCapacity),
		InstalledPower:       c.InstalledPower,
		InstalledArea:        c.InstalledArea,
		InstalledCapacity:    c.InstalledCapacity,
		PotentialPower:       c.PotentialPower,
		PotentialArea:        c.PotentialArea,
		PotentialCapacity:    c.PotentialCapacity,
		Efficiency:           value(params.Efficiency),
		ElectricalEfficiency: value(params.ElectricalEfficiency),
		ThermalEfficiency:    value(params.ThermalEfficiency),
		InitialSOC:           value(params.InitialSOC),
		RelativeLosses:       value(params.RelativeLosses),
		QualityGrade:         value(params.QualityGrade),
		SupplyTemperature:    value(params.SupplyTemperature),
		IcingFactor:          value(params.IcingFactor),
	}

	hourly := []struct {
		name string
		in   *SeriesInput
		dst  *[]float64
	}{
		{"normed_production", c.NormedProduction, &s.NormedProduction},
		{"irradiance", c.Irradiance, &s.Irradiance},
		{"source_temperature", c.SourceTemperature, &s.SourceTemperature},
		{"cop", c.COP, &s.COP},
	}
	for _, h := range hourly {
		if h.in.empty() {
			continue
		}
		if r := h.in.resolution(); r != model.Res1H {
			return component.Spec{}, false, fmt.Errorf("%s must be hourly, got %s", h.name, r)
		}
		values, err := h.in.load(b.opts.BaseDir)
		if err != nil {
			return component.Spec{}, false, fmt.Errorf("%s: %w", h.name, err)
		}
		values, err = convert.Hourly(h.name, values)
		if err != nil {
			return component.Spec{}, false, err
		}
		*h.dst = convert.Truncate(values, b.opts.Hours.Len())
	}
	return s, true, nil
}

// zeroPotential reports whether the component cannot be built at all.
func zeroPotential(kind component.Kind, c ComponentInput) bool {
	zero := func(p *float64) bool { return p != nil && *p == 0 }
	switch kind.Category() {
	case component.CategoryArea:
		return zero(c.PotentialArea)
	case component.CategoryStore:
		return zero(c.PotentialCapacity)
	default:
		return zero(c.PotentialPower)
	}
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
