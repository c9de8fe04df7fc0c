package middleware

import (
	"errors"
	"net/http"

	"energy-planner/internal/api/models"
	"energy-planner/internal/component"
	"energy-planner/internal/compose"
	"energy-planner/internal/lp"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Error codes of the JSON error envelope.
const (
	CodeInvalidRequest          = "INVALID_REQUEST"
	CodeInvalidConfig           = "INVALID_CONFIG"
	CodeStructuralInfeasibility = "STRUCTURAL_INFEASIBILITY"
	CodeNotFound                = "NOT_FOUND"
	CodeSolverUnavailable       = "SOLVER_UNAVAILABLE"
	CodeInternal                = "INTERNAL_ERROR"
)

// ErrorHandler middleware handles panics and errors
func ErrorHandler() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Msg("request panicked")
		message := "An unexpected error occurred"
		if s, ok := recovered.(string); ok {
			message = s
		}
		Abort(c, http.StatusInternalServerError, CodeInternal, message)
	})
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// AbortWithError classifies err: configuration and structural errors are
// client errors, everything else is internal.
func AbortWithError(c *gin.Context, err error) {
	status, code := Classify(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	resp := models.ErrorResponse{Error: models.ErrorDetail{Code: code, Message: err.Error()}}
	var sie *compose.StructuralInfeasibilityError
	if errors.As(err, &sie) {
		resp.Error.Details = map[string]interface{}{
			"energy_type": sie.EnergyType,
			"step":        sie.Step,
			"amount":      sie.Amount,
		}
	}
	c.AbortWithStatusJSON(status, resp)
}

func Classify(err error) (int, string) {
	switch {
	case errors.Is(err, compose.ErrStructuralInfeasibility):
		return http.StatusBadRequest, CodeStructuralInfeasibility
	case errors.Is(err, component.ErrConfig):
		return http.StatusBadRequest, CodeInvalidConfig
	case errors.Is(err, lp.ErrSolverNotFound):
		return http.StatusServiceUnavailable, CodeSolverUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
