// Package metrics exports reactive runtime and reconciler activity as
// Prometheus metrics.
//
// A Collector implements both reactive.Observer and reconciler.Observer:
//
//	c := metrics.Install(metrics.WithNamespace("bar"))
//	defer metrics.Uninstall()
//	http.Handle("/metrics", promhttp.Handler())
//
// Metrics collected (with the default namespace):
//   - lumina_effect_runs_total: Counter of effect body runs
//   - lumina_effect_duration_seconds: Histogram of effect body run time
//   - lumina_effect_panics_total: Counter of recovered effect panics
//   - lumina_cleanup_panics_total: Counter of recovered cleanup panics
//   - lumina_flush_pass_size: Histogram of effects run per flush pass
//   - lumina_contexts_disposed_total: Counter of disposed effects and owners
//   - lumina_instances_created_total: Counter of host instances by tag
//   - lumina_live_instances: Gauge of host instances not yet destroyed
//   - lumina_component_render_seconds: Histogram of component render time
//   - lumina_component_errors_total: Counter of failed components by name
//   - lumina_mounts_total: Counter of completed mounts
//   - lumina_mount_fibers: Histogram of fibers per mount
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lumina-dev/lumina/pkg/reactive"
	"github.com/lumina-dev/lumina/pkg/reconciler"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "lumina").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: fine-grained buckets from 10µs to 1s.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// DefaultBuckets suit UI work, where most effects finish well under a
// millisecond.
var DefaultBuckets = []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1}

func defaultConfig() Config {
	return Config{
		Namespace: "lumina",
		Buckets:   DefaultBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector records runtime events into Prometheus metrics.
type Collector struct {
	effectRuns        prometheus.Counter
	effectDuration    prometheus.Histogram
	effectPanics      prometheus.Counter
	cleanupPanics     prometheus.Counter
	flushPassSize     prometheus.Histogram
	contextsDisposed  prometheus.Counter
	instancesCreated  *prometheus.CounterVec
	liveInstances     prometheus.Gauge
	componentDuration *prometheus.HistogramVec
	componentErrors   *prometheus.CounterVec
	mounts            prometheus.Counter
	mountFibers       prometheus.Histogram
}

var (
	_ reactive.Observer   = (*Collector)(nil)
	_ reconciler.Observer = (*Collector)(nil)
)

// New creates a Collector and registers its metrics.
func New(opts ...Option) *Collector {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Collector{
		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect body runs",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect body run time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		effectPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_panics_total",
			Help:        "Total number of recovered effect panics",
			ConstLabels: config.ConstLabels,
		}),

		cleanupPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cleanup_panics_total",
			Help:        "Total number of recovered cleanup panics",
			ConstLabels: config.ConstLabels,
		}),

		flushPassSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "flush_pass_size",
			Help:        "Number of effects run per flush pass",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 2, 10), // 1 to 512
		}),

		contextsDisposed: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "contexts_disposed_total",
			Help:        "Total number of disposed effects and owner scopes",
			ConstLabels: config.ConstLabels,
		}),

		instancesCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "instances_created_total",
			Help:        "Total number of host instances created by tag",
			ConstLabels: config.ConstLabels,
		}, []string{"tag"}),

		liveInstances: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "live_instances",
			Help:        "Number of host instances not yet destroyed",
			ConstLabels: config.ConstLabels,
		}),

		componentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_render_seconds",
			Help:        "Component function run time in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"component"}),

		componentErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "component_errors_total",
			Help:        "Total number of failed component renders by component",
			ConstLabels: config.ConstLabels,
		}, []string{"component"}),

		mounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounts_total",
			Help:        "Total number of completed mounts",
			ConstLabels: config.ConstLabels,
		}),

		mountFibers: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mount_fibers",
			Help:        "Number of fibers per completed mount",
			ConstLabels: config.ConstLabels,
			Buckets:     prometheus.ExponentialBuckets(1, 4, 8), // 1 to 16384
		}),
	}
}

// Install creates a Collector and registers it with the reactive runtime
// and the reconciler.
func Install(opts ...Option) *Collector {
	c := New(opts...)
	reactive.SetObserver(c)
	reconciler.SetObserver(c)
	return c
}

// Uninstall detaches any installed Collector. Its metrics stay registered.
func Uninstall() {
	reactive.SetObserver(nil)
	reconciler.SetObserver(nil)
}

// EffectRun implements reactive.Observer.
func (c *Collector) EffectRun(d time.Duration) {
	c.effectRuns.Inc()
	c.effectDuration.Observe(d.Seconds())
}

// EffectPanic implements reactive.Observer.
func (c *Collector) EffectPanic() { c.effectPanics.Inc() }

// CleanupPanic implements reactive.Observer.
func (c *Collector) CleanupPanic() { c.cleanupPanics.Inc() }

// FlushPass implements reactive.Observer.
func (c *Collector) FlushPass(size int) { c.flushPassSize.Observe(float64(size)) }

// ContextDisposed implements reactive.Observer.
func (c *Collector) ContextDisposed() { c.contextsDisposed.Inc() }

// InstanceCreated implements reconciler.Observer.
func (c *Collector) InstanceCreated(tag string) {
	c.instancesCreated.WithLabelValues(tag).Inc()
	c.liveInstances.Inc()
}

// InstanceDestroyed implements reconciler.Observer.
func (c *Collector) InstanceDestroyed() { c.liveInstances.Dec() }

// ComponentRendered implements reconciler.Observer.
func (c *Collector) ComponentRendered(name string, d time.Duration) {
	c.componentDuration.WithLabelValues(name).Observe(d.Seconds())
}

// ComponentFailed implements reconciler.Observer.
func (c *Collector) ComponentFailed(name string) {
	c.componentErrors.WithLabelValues(name).Inc()
}

// Mounted implements reconciler.Observer.
func (c *Collector) Mounted(fibers int) {
	c.mounts.Inc()
	c.mountFibers.Observe(float64(fibers))
}
