package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric exported by menubuilder.
const Namespace = "menubuilder"

// Counter is a labelled Prometheus counter.
type Counter struct {
	Name string
	Help string

	vec *prometheus.CounterVec
}

func (c *Counter) Increment(val ...string) {
	c.vec.WithLabelValues(val...).Inc()
}

// Vec exposes the underlying vector, mainly for tests.
func (c *Counter) Vec() *prometheus.CounterVec {
	return c.vec
}

func NewCounterWithRegistry(reg prometheus.Registerer, name, help string, labels ...string) *Counter {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      name,
		Help:      help,
	}, labels)

	reg.MustRegister(counter)

	return &Counter{
		Name: name,
		Help: help,
		vec:  counter,
	}
}

// Editor holds the counters of one editing controller.
type Editor struct {
	// Gestures counts gestures by kind and outcome (ok, rejected, failed).
	Gestures *Counter

	// Rejections counts validation rejections by reason code.
	Rejections *Counter

	// Builds counts menu builds.
	Builds *Counter

	registry *prometheus.Registry
}

// NewEditor registers the editor counters on a fresh registry so several
// controllers (and tests) never collide.
func NewEditor() *Editor {
	reg := prometheus.NewRegistry()
	return &Editor{
		Gestures:   NewCounterWithRegistry(reg, "gestures_total", "Editing gestures by kind and outcome.", "gesture", "outcome"),
		Rejections: NewCounterWithRegistry(reg, "rejections_total", "Rejected gestures by reason code.", "code"),
		Builds:     NewCounterWithRegistry(reg, "builds_total", "Menu builds by layout.", "layout"),
		registry:   reg,
	}
}

// Registry returns the registry holding the editor counters.
func (e *Editor) Registry() *prometheus.Registry {
	return e.registry
}

// Handler serves the editor counters in the Prometheus exposition format.
func (e *Editor) Handler() http.Handler {
	return GetHandlerForRegistry(e.registry)
}

// GetHandlerForRegistry returns an HTTP handler for serving Prometheus metrics from a custom registry.
func GetHandlerForRegistry(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
