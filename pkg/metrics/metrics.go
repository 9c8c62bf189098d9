// Metrics collection for batch post-processing runs
//
// Provides Prometheus-compatible metrics with support for:
// - Counter: Monotonically increasing values
// - Gauge: Values that can go up and down
//
// A one-shot process has nothing to scrape, so the registry is written
// as a text file for the node_exporter textfile collector.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MetricType represents the type of metric
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	default:
		return "unknown"
	}
}

// Labels represents metric labels as key-value pairs
type Labels map[string]string

// labelKey generates a unique key for a label set
func labelKey(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	keys := sortedKeys(labels)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteString(labels[k])
	}
	return sb.String()
}

// formatLabels formats labels for Prometheus output
func formatLabels(labels Labels) string {
	if len(labels) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range sortedKeys(labels) {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(k)
		sb.WriteString("=\"")
		sb.WriteString(escapeLabel(labels[k]))
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

func sortedKeys(labels Labels) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// escapeLabel escapes special characters in label values
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Write(sb *strings.Builder)
}

// series holds one value per label set. Output is sorted by label key so
// that written files are stable.
type series struct {
	name   string
	help   string
	mu     sync.Mutex
	values map[string]*sample
}

type sample struct {
	labels Labels
	value  float64
}

func newSeries(name, help string) *series {
	return &series{name: name, help: help, values: make(map[string]*sample)}
}

func (s *series) add(labels Labels, delta float64, set bool) {
	key := labelKey(labels)
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		v = &sample{labels: copyLabels(labels)}
		s.values[key] = v
	}
	if set {
		v.value = delta
	} else {
		v.value += delta
	}
}

func (s *series) get(labels Labels) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[labelKey(labels)]; ok {
		return v.value
	}
	return 0
}

func (s *series) write(sb *strings.Builder, typ MetricType) {
	fmt.Fprintf(sb, "# HELP %s %s\n# TYPE %s %s\n", s.name, s.help, s.name, typ)

	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := s.values[k]
		sb.WriteString(s.name)
		sb.WriteString(formatLabels(v.labels))
		sb.WriteByte(' ')
		sb.WriteString(formatFloat(v.value))
		sb.WriteByte('\n')
	}
}

// Counter is a monotonically increasing metric
type Counter struct {
	*series
}

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{series: newSeries(name, help)}
}

func (c *Counter) Name() string     { return c.name }
func (c *Counter) Help() string     { return c.help }
func (c *Counter) Type() MetricType { return TypeCounter }

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by the given value
func (c *Counter) Add(labels Labels, delta uint64) {
	c.add(labels, float64(delta), false)
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) uint64 {
	return uint64(c.get(labels))
}

func (c *Counter) Write(sb *strings.Builder) { c.write(sb, TypeCounter) }

// Gauge is a metric that can go up and down
type Gauge struct {
	*series
}

// NewGauge creates a new gauge metric
func NewGauge(name, help string) *Gauge {
	return &Gauge{series: newSeries(name, help)}
}

func (g *Gauge) Name() string     { return g.name }
func (g *Gauge) Help() string     { return g.help }
func (g *Gauge) Type() MetricType { return TypeGauge }

// Set sets the gauge to the given value
func (g *Gauge) Set(labels Labels, value float64) {
	g.add(labels, value, true)
}

// Add adds the given value to the gauge
func (g *Gauge) Add(labels Labels, delta float64) {
	g.add(labels, delta, false)
}

// Get returns the current gauge value for labels
func (g *Gauge) Get(labels Labels) float64 {
	return g.get(labels)
}

func (g *Gauge) Write(sb *strings.Builder) { g.write(sb, TypeGauge) }

func copyLabels(labels Labels) Labels {
	if labels == nil {
		return nil
	}
	out := make(Labels, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}

// formatFloat formats a float64 for Prometheus output
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Registry holds all registered metrics
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string // registration order
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]Metric),
	}
}

// Register adds a metric to the registry
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := metric.Name()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q already registered", name)
	}
	r.metrics[name] = metric
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(metric Metric) {
	if err := r.Register(metric); err != nil {
		panic(err)
	}
}

// Gather collects all metrics in Prometheus text format
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for _, name := range r.order {
		r.metrics[name].Write(&sb)
	}
	return sb.String()
}

// WriteTextfile writes the registry to path. The file is replaced by
// rename so a collector never reads a partial file.
func (r *Registry) WriteTextfile(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(r.Gather()); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("metrics: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
