package models

import (
	"energy-planner/internal/analysis"
	"energy-planner/internal/component"
	"energy-planner/internal/results"
)

// OptimizeResponse is a result with optional series statistics.
type OptimizeResponse struct {
	*results.Result
	Profiles []analysis.Profile `json:"profiles,omitempty"`
}

// CompareResponse lists the variants best first and their full results in
// request order.
type CompareResponse struct {
	Comparison []analysis.RankedVariant `json:"comparison"`
	Results    []*results.Result        `json:"results"`
}

// TechnologyInfo describes one technology tag and its default parameters.
type TechnologyInfo struct {
	Kind        component.Kind     `json:"kind"`
	Category    component.Category `json:"category"`
	Description string             `json:"description"`
	Investment  bool               `json:"investment"`
	Parameters  []ParameterInfo    `json:"parameters"`
}

// ParameterInfo describes a technology parameter
type ParameterInfo struct {
	Name    string   `json:"name"`
	Default *float64 `json:"default,omitempty"`
}

type COPResponse struct {
	Values  []float64        `json:"values"`
	Profile analysis.Profile `json:"profile"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
