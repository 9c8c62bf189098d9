package main

import (
	"time"

	"gcode-postprocess/pkg/errors"
	"gcode-postprocess/pkg/gcode"
	"gcode-postprocess/pkg/limitxy"
	"gcode-postprocess/pkg/metrics"
)

// runMetrics describes one process run for the textfile collector.
type runMetrics struct {
	registry *metrics.Registry

	runs      *metrics.Counter
	overrides *metrics.Counter
	jerkLines *metrics.Counter
	blocks    *metrics.Gauge
	layers    *metrics.Gauge
	duration  *metrics.Gauge
	finished  *metrics.Gauge
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry:  metrics.NewRegistry(),
		runs:      metrics.NewCounter("limitxy_runs_total", "Post-processing runs by result"),
		overrides: metrics.NewCounter("limitxy_overrides_inserted_total", "M201 override lines inserted"),
		jerkLines: metrics.NewCounter("limitxy_jerk_lines_rewritten_total", "M205 lines rewritten"),
		blocks:    metrics.NewGauge("limitxy_document_blocks", "Blocks in the processed document"),
		layers:    metrics.NewGauge("limitxy_document_layers", "Layers in the processed document"),
		duration:  metrics.NewGauge("limitxy_run_duration_seconds", "Duration of the last run"),
		finished:  metrics.NewGauge("limitxy_run_timestamp_seconds", "Unix time the last run finished"),
	}
	for _, metric := range []metrics.Metric{m.runs, m.overrides, m.jerkLines, m.blocks, m.layers, m.duration, m.finished} {
		m.registry.MustRegister(metric)
	}
	return m
}

// record fills the metrics from one run; doc and report may be nil.
func (m *runMetrics) record(doc *gcode.Document, report *limitxy.Report, err error, started time.Time) {
	result := "ok"
	switch {
	case err == nil:
	case errors.IsInput(err):
		result = "input_error"
	default:
		result = "error"
	}
	m.runs.Inc(metrics.Labels{"result": result})

	if doc != nil {
		m.blocks.Set(nil, float64(doc.Len()))
		m.layers.Set(nil, float64(doc.LayerCount()))
	}
	if report != nil {
		mode := metrics.Labels{"mode": report.Mode.String()}
		m.overrides.Add(mode, uint64(len(report.OverrideBlocks)))
		m.jerkLines.Add(mode, uint64(report.JerkLinesRewritten))
	}

	now := time.Now()
	m.duration.Set(nil, now.Sub(started).Seconds())
	m.finished.Set(nil, float64(now.Unix()))
}
