// Package metrics bundles the Prometheus collectors of the planner.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records solver and HTTP metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	Solves         *prometheus.CounterVec
	SolveDurations *prometheus.HistogramVec

	ModelVariables   prometheus.Gauge
	ModelConstraints prometheus.Gauge
	CachedResults    prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewCollector registers the planner metrics against reg, defaulting to the
// global registry when nil. Registering twice returns the existing
// collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	c := &Collector{gatherer: gatherer}

	var err error
	if c.Solves, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_solves_total",
		Help: "Number of solver runs, labeled by scenario and result status.",
	}, []string{"scenario", "status"})); err != nil {
		return nil, err
	}
	if c.SolveDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_solve_duration_seconds",
		Help:    "Solver wall time in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if c.ModelVariables, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_model_variables",
		Help: "Number of variables of the most recently built model.",
	})); err != nil {
		return nil, err
	}
	if c.ModelConstraints, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_model_constraints",
		Help: "Number of constraints of the most recently built model.",
	})); err != nil {
		return nil, err
	}
	if c.CachedResults, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_cached_results",
		Help: "Number of optimization results held in memory.",
	})); err != nil {
		return nil, err
	}
	if c.HTTPRequests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_http_requests_total",
		Help: "Handled HTTP requests, labeled by method, route and status code.",
	}, []string{"method", "route", "code"})); err != nil {
		return nil, err
	}
	if c.HTTPDurations, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collector) ObserveSolve(scenario, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.Solves.WithLabelValues(scenario, status).Inc()
	c.SolveDurations.WithLabelValues(scenario).Observe(d.Seconds())
}

func (c *Collector) SetModelSize(variables, constraints int) {
	if c == nil {
		return
	}
	c.ModelVariables.Set(float64(variables))
	c.ModelConstraints.Set(float64(constraints))
}

func (c *Collector) SetCachedResults(n int) {
	if c == nil {
		return
	}
	c.CachedResults.Set(float64(n))
}

func (c *Collector) ObserveRequest(method, route string, code int, d time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	c.HTTPDurations.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler exposes the registered metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return col, err
		}
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return col, fmt.Errorf("collector %T already registered with incompatible type", col)
		}
		return existing, nil
	}
	return col, nil
}
