package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"energy-planner/internal/analysis"
	"energy-planner/internal/api/middleware"
	"energy-planner/internal/api/models"
	"energy-planner/internal/lp"
	"energy-planner/internal/planner"
	"energy-planner/internal/results"
	"energy-planner/internal/scenario"

	"github.com/gin-gonic/gin"
)

// OptimizeHandler handles optimization requests
type OptimizeHandler struct {
	planner *planner.Planner
}

// NewOptimizeHandler creates a new optimize handler
func NewOptimizeHandler(p *planner.Planner) *OptimizeHandler {
	return &OptimizeHandler{planner: p}
}

// Optimize handles POST /api/v1/optimize
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req models.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, err.Error())
		return
	}

	o, err := h.planner.Plan(c.Request.Context(), &req.Request)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildResponse(o, req.Options.IncludeProfiles))
}

// GetResult handles GET /api/v1/optimize/:id
func (h *OptimizeHandler) GetResult(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildResponse(o, c.Query("include_profiles") == "true"))
}

// GetSeries handles GET /api/v1/optimize/:id/series.csv
func (h *OptimizeHandler) GetSeries(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}
	sol, name, ok := solution(c, o)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := results.WriteSeriesCSV(&buf, o.Problem, sol, o.Hours); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("%s_%s_series.csv", o.Result.ID, name), buf.Bytes())
}

// GetScalars handles GET /api/v1/optimize/:id/scalars.csv
func (h *OptimizeHandler) GetScalars(c *gin.Context) {
	o, ok := h.lookup(c)
	if !ok {
		return
	}
	sol, name, ok := solution(c, o)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := results.WriteScalarsCSV(&buf, o.Problem, sol); err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	attachment(c, fmt.Sprintf("%s_%s_scalars.csv", o.Result.ID, name), buf.Bytes())
}

// Compare handles POST /api/v1/optimize/compare
func (h *OptimizeHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest, err.Error())
		return
	}

	got, err := h.planner.Compare(c.Request.Context(), req.Comparison())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	resp := models.CompareResponse{
		Comparison: got.Ranking,
		Results:    make([]*results.Result, len(got.Outcomes)),
	}
	for i, o := range got.Outcomes {
		resp.Results[i] = o.Result
	}
	c.JSON(http.StatusOK, resp)
}

func (h *OptimizeHandler) lookup(c *gin.Context) (*scenario.Outcome, bool) {
	id := c.Param("id")
	o, ok := h.planner.Cache().Get(id)
	if !ok {
		middleware.Abort(c, http.StatusNotFound, middleware.CodeNotFound,
			fmt.Sprintf("no result with id %q; results are kept for a limited time", id))
		return nil, false
	}
	return o, true
}

// solution picks the scenario named by the "scenario" query parameter,
// "target" by default.
func solution(c *gin.Context, o *scenario.Outcome) (*lp.Solution, string, bool) {
	name := c.DefaultQuery("scenario", "target")
	var sol *lp.Solution
	switch name {
	case "target":
		sol = o.Target
	case "current":
		sol = o.Current
	default:
		middleware.Abort(c, http.StatusBadRequest, middleware.CodeInvalidRequest,
			fmt.Sprintf("scenario must be target or current, got %q", name))
		return nil, "", false
	}
	if !sol.Optimal() {
		middleware.Abort(c, http.StatusNotFound, middleware.CodeNotFound,
			fmt.Sprintf("%s scenario of %s has no solution", name, o.Result.ID))
		return nil, "", false
	}
	return sol, name, true
}

func attachment(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

func buildResponse(o *scenario.Outcome, includeProfiles bool) models.OptimizeResponse {
	resp := models.OptimizeResponse{Result: o.Result}
	if !includeProfiles || !o.Target.Optimal() {
		return resp
	}
	for _, s := range o.Problem.Series() {
		resp.Profiles = append(resp.Profiles, analysis.ComputeProfile(s.Name(), s.Values(o.Target)))
	}
	return resp
}
