package metrics

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrLabelCountMismatch is returned when the number of label values doesn't
// match the instrument's declared labels.
var ErrLabelCountMismatch = errors.New("label count mismatch")

// ErrNegativeCounterValue is returned when attempting to add a negative
// value to a counter.
var ErrNegativeCounterValue = errors.New("counter cannot be decreased")

// ErrDuplicateMetric is returned when registering a metric with a name that
// is already registered.
var ErrDuplicateMetric = errors.New("duplicate metric name")

// atomicFloat64 provides atomic operations for float64 values.
// It stores the bits of the float64 as a uint64 for atomic access.
type atomicFloat64 struct {
	bits uint64
}

func (a *atomicFloat64) Load() float64 {
	return math.Float64frombits(atomic.LoadUint64(&a.bits))
}

func (a *atomicFloat64) Store(val float64) {
	atomic.StoreUint64(&a.bits, math.Float64bits(val))
}

func (a *atomicFloat64) Add(delta float64) {
	for {
		old := atomic.LoadUint64(&a.bits)
		newVal := math.Float64frombits(old) + delta
		if atomic.CompareAndSwapUint64(&a.bits, old, math.Float64bits(newVal)) {
			return
		}
	}
}

// Kind identifies the metric type in exposition output.
type Kind string

const (
	KindCounter Kind = "counter"
	KindGauge   Kind = "gauge"
)

// Sample is one exposed value with its resolved labels.
type Sample struct {
	Name   string
	Labels map[string]string
	Value  float64
}

// Metric is the interface implemented by all instrument types.
type Metric interface {
	Name() string
	Help() string
	Kind() Kind
	Collect() []Sample
}

// instrument carries the label-series machinery shared by Counter and
// Gauge: one value cell per distinct label-value combination, created
// lazily.
type instrument struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	series     map[string]*series
}

type series struct {
	labels map[string]string
	value  atomicFloat64
}

func newInstrument(name, help string, labelNames []string) instrument {
	return instrument{
		name:       name,
		help:       help,
		labelNames: labelNames,
		series:     make(map[string]*series),
	}
}

// Name returns the metric name.
func (in *instrument) Name() string { return in.name }

// Help returns the help text.
func (in *instrument) Help() string { return in.help }

// seriesFor returns the value cell for the given label values, creating it
// on first use.
func (in *instrument) seriesFor(values []string) (*series, error) {
	if len(values) != len(in.labelNames) {
		return nil, fmt.Errorf("%w: %s expected %d labels, got %d",
			ErrLabelCountMismatch, in.name, len(in.labelNames), len(values))
	}

	key := strings.Join(values, "\x00")
	in.mu.RLock()
	sv, ok := in.series[key]
	in.mu.RUnlock()
	if ok {
		return sv, nil
	}

	labels := make(map[string]string, len(in.labelNames))
	for i, name := range in.labelNames {
		labels[name] = values[i]
	}

	in.mu.Lock()
	// Double-check after acquiring the write lock.
	sv, ok = in.series[key]
	if !ok {
		sv = &series{labels: labels}
		in.series[key] = sv
	}
	in.mu.Unlock()
	return sv, nil
}

// Collect returns all samples of the instrument.
func (in *instrument) Collect() []Sample {
	in.mu.RLock()
	defer in.mu.RUnlock()

	samples := make([]Sample, 0, len(in.series))
	for _, sv := range in.series {
		samples = append(samples, Sample{
			Name:   in.name,
			Labels: sv.labels,
			Value:  sv.value.Load(),
		})
	}
	return samples
}

// Counter is a monotonically increasing metric.
type Counter struct {
	instrument
}

// Kind returns KindCounter.
func (c *Counter) Kind() Kind { return KindCounter }

// Inc increments the counter for the given label values by 1.
func (c *Counter) Inc(labelValues ...string) error {
	return c.Add(1, labelValues...)
}

// Add adds delta to the counter for the given label values. Negative deltas
// are rejected.
func (c *Counter) Add(delta float64, labelValues ...string) error {
	if delta < 0 {
		return fmt.Errorf("%w: %s", ErrNegativeCounterValue, c.name)
	}
	sv, err := c.seriesFor(labelValues)
	if err != nil {
		return err
	}
	sv.value.Add(delta)
	return nil
}

// Gauge is a metric that can arbitrarily go up and down.
type Gauge struct {
	instrument
}

// Kind returns KindGauge.
func (g *Gauge) Kind() Kind { return KindGauge }

// Set sets the gauge for the given label values.
func (g *Gauge) Set(value float64, labelValues ...string) error {
	sv, err := g.seriesFor(labelValues)
	if err != nil {
		return err
	}
	sv.value.Store(value)
	return nil
}

// Inc increments the gauge for the given label values by 1.
func (g *Gauge) Inc(labelValues ...string) error {
	return g.Add(1, labelValues...)
}

// Dec decrements the gauge for the given label values by 1.
func (g *Gauge) Dec(labelValues ...string) error {
	return g.Add(-1, labelValues...)
}

// Add adds delta to the gauge for the given label values.
func (g *Gauge) Add(delta float64, labelValues ...string) error {
	sv, err := g.seriesFor(labelValues)
	if err != nil {
		return err
	}
	sv.value.Add(delta)
	return nil
}

// Registry holds all registered metrics.
type Registry struct {
	mu      sync.RWMutex
	metrics []Metric
	names   map[string]struct{}
}

// NewRegistry creates a new metric registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// NewCounter creates and registers a new counter.
func (r *Registry) NewCounter(name, help string, labelNames ...string) *Counter {
	c := &Counter{instrument: newInstrument(name, help, labelNames)}
	r.register(c)
	return c
}

// NewGauge creates and registers a new gauge.
func (r *Registry) NewGauge(name, help string, labelNames ...string) *Gauge {
	g := &Gauge{instrument: newInstrument(name, help, labelNames)}
	r.register(g)
	return g
}

// register adds a metric to the registry. It panics on a duplicate name,
// since duplicate metric names produce invalid exposition output.
func (r *Registry) register(m Metric) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[m.Name()]; exists {
		panic(fmt.Sprintf("%s: %s", ErrDuplicateMetric, m.Name()))
	}
	r.names[m.Name()] = struct{}{}
	r.metrics = append(r.metrics, m)
}

// WriteTo writes all metrics in Prometheus text exposition format. Samples
// within a metric are sorted by label values for deterministic output.
func (r *Registry) WriteTo(w io.Writer) (int64, error) {
	r.mu.RLock()
	metrics := make([]Metric, len(r.metrics))
	copy(metrics, r.metrics)
	r.mu.RUnlock()

	var total int64
	for _, m := range metrics {
		n, err := writeMetric(w, m)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Expose returns the Prometheus text exposition of all metrics.
func (r *Registry) Expose() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}

// writeMetric writes a single metric in Prometheus text format.
func writeMetric(w io.Writer, m Metric) (int64, error) {
	samples := m.Collect()
	if len(samples) == 0 {
		return 0, nil
	}

	sort.Slice(samples, func(i, j int) bool {
		return formatLabels(samples[i].Labels) < formatLabels(samples[j].Labels)
	})

	var total int64
	n, err := fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n",
		m.Name(), escapeHelp(m.Help()), m.Name(), m.Kind())
	total += int64(n)
	if err != nil {
		return total, err
	}

	for _, s := range samples {
		if len(s.Labels) == 0 {
			n, err = fmt.Fprintf(w, "%s %s\n", s.Name, formatFloat(s.Value))
		} else {
			n, err = fmt.Fprintf(w, "%s{%s} %s\n", s.Name, formatLabels(s.Labels), formatFloat(s.Value))
		}
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// formatLabels formats labels as key="value",key="value" with sorted keys.
func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return ""
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, escapeLabelValue(labels[k]))
	}
	return strings.Join(parts, ",")
}

// formatFloat formats a float64 for Prometheus output.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if math.IsInf(v, -1) {
		return "-Inf"
	}
	s := fmt.Sprintf("%g", v)
	if v == float64(int64(v)) && !strings.Contains(s, ".") && !strings.Contains(s, "e") {
		return fmt.Sprintf("%.0f", v)
	}
	return s
}

func escapeHelp(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

func escapeLabelValue(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
