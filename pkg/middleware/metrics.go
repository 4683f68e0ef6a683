package middleware

import (
	"errors"
	"time"

	"github.com/aretw0/weave/pkg/deps"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type metricsConfig struct {
	namespace string
	buckets   []float64
}

// MetricsOption configures Metrics.
type MetricsOption func(*metricsConfig)

// WithNamespace prefixes every metric name.
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) {
		c.namespace = ns
	}
}

// WithBuckets sets the dispatch duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *metricsConfig) {
		c.buckets = buckets
	}
}

// Collectors holds the metrics recorded by the Metrics middleware.
type Collectors struct {
	Dispatches *prometheus.CounterVec
	Effects    *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewCollectors creates the collectors and registers them with reg. Collectors
// already registered under the same names are reused.
func NewCollectors(reg prometheus.Registerer, opts ...MetricsOption) (*Collectors, error) {
	cfg := metricsConfig{namespace: "weave", buckets: prometheus.DefBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Collectors{
		Dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "dispatches_total",
			Help:      "Total number of dispatched actions",
		}, []string{"action"}),
		Effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "effects_total",
			Help:      "Total number of effects produced",
		}, []string{"effect"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent in the pipeline below the metrics layer",
			Buckets:   cfg.buckets,
		}, []string{"action"}),
	}
	var err error
	if c.Dispatches, err = register(reg, c.Dispatches); err != nil {
		return nil, err
	}
	if c.Effects, err = register(reg, c.Effects); err != nil {
		return nil, err
	}
	if c.Duration, err = register(reg, c.Duration); err != nil {
		return nil, err
	}
	return c, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Metrics counts dispatches and effects per kind and times the layers below.
// It never alters effects.
func Metrics[S, A any](c *Collectors) Middleware[S, A] {
	return Func[S, A](func(next Dispatch[A], _ Handle[S, A], _ deps.Bag) Dispatch[A] {
		return func(action A) []domain.Effect {
			kind := domain.Kind(action)
			start := time.Now()
			effects := next(action)
			c.Duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
			c.Dispatches.WithLabelValues(kind).Inc()
			for _, e := range effects {
				c.Effects.WithLabelValues(domain.Kind(e)).Inc()
			}
			return effects
		}
	})
}
