// Package api assembles the HTTP surface of the planner.
package api

import (
	"net/http"

	"energy-planner/internal/api/handlers"
	"energy-planner/internal/api/middleware"
	"energy-planner/internal/metrics"
	"energy-planner/internal/planner"

	"github.com/gin-gonic/gin"
)

// Options configures NewRouter.
type Options struct {
	Metrics *metrics.Collector
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter registers every route on a new gin engine.
func NewRouter(p *planner.Planner, opts Options) *gin.Engine {
	router := gin.New()

	// Apply middleware
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(opts.AllowedOrigins...))
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(opts.Metrics))

	optimizeHandler := handlers.NewOptimizeHandler(p)
	technologyHandler := handlers.NewTechnologyHandler(p.Config().Parameters)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/optimize", optimizeHandler.Optimize)
		v1.POST("/optimize/compare", optimizeHandler.Compare)
		v1.GET("/optimize/:id", optimizeHandler.GetResult)
		v1.GET("/optimize/:id/series.csv", optimizeHandler.GetSeries)
		v1.GET("/optimize/:id/scalars.csv", optimizeHandler.GetScalars)

		v1.GET("/technologies", technologyHandler.ListTechnologies)
		v1.POST("/cop", technologyHandler.COP)
	}

	router.NoRoute(func(c *gin.Context) {
		middleware.Abort(c, http.StatusNotFound, middleware.CodeNotFound, "Not found")
	})
	return router
}
