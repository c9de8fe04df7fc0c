package models

import (
	"energy-planner/internal/config"
	"energy-planner/internal/planner"
)

// OptimizeRequest is the body of POST /api/v1/optimize. The request fields
// are inlined at the top level.
type OptimizeRequest struct {
	config.Request
	Options OptimizeOptions `json:"options,omitempty"`
}

// OptimizeOptions control what the response carries.
type OptimizeOptions struct {
	// IncludeProfiles adds summary statistics of every hourly series.
	IncludeProfiles bool `json:"include_profiles,omitempty"`
}

// CompareRequest is the body of POST /api/v1/optimize/compare.
type CompareRequest struct {
	Base     config.Request    `json:"base"`
	Variants []planner.Variant `json:"variants" binding:"required,min=1"`
}

func (r CompareRequest) Comparison() planner.Comparison {
	return planner.Comparison{Base: r.Base, Variants: r.Variants}
}

// COPRequest is the body of POST /api/v1/cop.
type COPRequest struct {
	// HeatPump selects the heat pump formula; false computes a chiller EER.
	HeatPump          *bool     `json:"heat_pump,omitempty"`
	SupplyTemperature []float64 `json:"supply_temperature" binding:"required,min=1"`
	SourceTemperature []float64 `json:"source_temperature" binding:"required,min=1"`
	QualityGrade      float64   `json:"quality_grade" binding:"required,gt=0,lte=1"`
	IcingFactor       float64   `json:"icing_factor,omitempty"`
}
