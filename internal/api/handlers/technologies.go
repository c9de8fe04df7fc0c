package handlers

import (
	"net/http"
	"sort"

	"energy-planner/internal/analysis"
	"energy-planner/internal/api/middleware"
	"energy-planner/internal/api/models"
	"energy-planner/internal/component"
	"energy-planner/internal/config"
	"energy-planner/internal/convert"

	"github.com/gin-gonic/gin"
)

var descriptions = map[component.Kind]string{
	component.KindDemand:                "Fixed hourly consumption of one energy type.",
	component.KindPurchase:              "Unlimited supply of one energy type at an energy price and an optional power price.",
	component.KindFeedin:                "Unlimited sale of one energy type at an energy price.",
	component.KindPhotovoltaicRoof:      "Rooftop photovoltaics sized in kW, producing power times the normed production profile.",
	component.KindPhotovoltaicFreeField: "Ground-mounted photovoltaics sized in kW.",
	component.KindWindPower:             "Wind turbine sized in kW, producing power times the normed production profile.",
	component.KindSolarThermal:          "Solar thermal collectors sized in m², driven by global horizontal irradiance.",
	component.KindGasBoiler:             "Natural gas boiler sized by thermal power.",
	component.KindSolidFuelBoiler:       "Solid fuel boiler sized by thermal power.",
	component.KindHeatPumpAir:           "Air-source heat pump with an hourly COP from air temperature.",
	component.KindHeatPumpGround:        "Ground-source heat pump with an hourly COP from soil temperature.",
	component.KindCombinedHeatPower:     "Gas-fired CHP sized by electrical power, with heat power following the efficiency ratio.",
	component.KindElectricalStorage:     "Battery storage sized by capacity and power.",
	component.KindThermalStorage:        "Heat storage sized by capacity and power.",
}

// TechnologyHandler serves technology metadata
type TechnologyHandler struct {
	params config.Parameters
}

func NewTechnologyHandler(params config.Parameters) *TechnologyHandler {
	return &TechnologyHandler{params: params}
}

// ListTechnologies handles GET /api/v1/technologies
func (h *TechnologyHandler) ListTechnologies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"technologies": Technologies(h.params)})
}

// Technologies describes every registered tag with its default parameters.
func Technologies(params config.Parameters) []models.TechnologyInfo {
	kinds := component.Kinds()
	out := make([]models.TechnologyInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, models.TechnologyInfo{
			Kind:        k,
			Category:    k.Category(),
			Description: descriptions[k],
			Investment:  k.Investment(),
			Parameters:  parameterInfo(params.Get(string(k))),
		})
	}
	return out
}

func parameterInfo(tp config.TechParams) []models.ParameterInfo {
	fields := tp.Set()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]models.ParameterInfo, 0, len(names))
	for _, name := range names {
		v := fields[name]
		out = append(out, models.ParameterInfo{Name: name, Default: &v})
	}
	return out
}

// COP handles POST /api/v1/cop
func (h *TechnologyHandler) COP(c *gin.Context) {
	var req models.COPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, err.Error())
		return
	}
	params := convert.COPParams{QualityGrade: req.QualityGrade, IcingFactor: req.IcingFactor}
	if req.HeatPump != nil && !*req.HeatPump {
		params.Mode = convert.Chiller
	}
	values, err := convert.COP(req.SupplyTemperature, req.SourceTemperature, params)
	if err != nil {
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, models.COPResponse{
		Values:  values,
		Profile: analysis.ComputeProfile("cop", values),
	})
}
