// Package metrics provides timing instrumentation for pv.
//
// Each pipeline stage (load, classify, project, render) records into a
// global TimingMetric using atomic operations. Collection is on by default
// and disabled with PV_METRICS=0.
//
// Usage:
//
//	func render() {
//	    defer metrics.Timer(metrics.Render)()
//	    // ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

// enabled controls whether metrics are collected.
var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("PV_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named stage.
type TimingMetric struct {
	name    string
	count   atomic.Int64
	totalNs atomic.Int64
	maxNs   atomic.Int64
	minNs   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !enabled.Load() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.totalNs.Add(ns)

	for {
		old := m.maxNs.Load()
		if ns <= old || m.maxNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.minNs.Load()
		if (old != 0 && ns >= old) || m.minNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string { return m.name }

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 { return m.count.Load() }

// AvgNs returns the mean sample in nanoseconds, or 0 without samples.
func (m *TimingMetric) AvgNs() int64 {
	n := m.count.Load()
	if n == 0 {
		return 0
	}
	return m.totalNs.Load() / n
}

// Stats snapshots the metric.
func (m *TimingMetric) Stats() TimingStats {
	return TimingStats{
		Name:    m.name,
		Count:   m.count.Load(),
		TotalMs: float64(m.totalNs.Load()) / 1e6,
		AvgMs:   float64(m.AvgNs()) / 1e6,
		MaxMs:   float64(m.maxNs.Load()) / 1e6,
		MinMs:   float64(m.minNs.Load()) / 1e6,
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.totalNs.Store(0)
	m.maxNs.Store(0)
	m.minNs.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer returns a function that records the time elapsed since the call.
func Timer(m *TimingMetric) func() {
	if !enabled.Load() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Pipeline stage metrics.
var (
	DatasetLoad = newTimingMetric("dataset_load")
	Classify    = newTimingMetric("classify")
	Project     = newTimingMetric("project")
	Render      = newTimingMetric("render")
	Export      = newTimingMetric("export")
	UIRender    = newTimingMetric("ui_render")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{DatasetLoad, Classify, Project, Render, Export, UIRender}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for metrics that have recorded data.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// WriteReport prints one line per active metric.
func WriteReport(w io.Writer) {
	for _, s := range AllTimingStats() {
		fmt.Fprintf(w, "%-12s n=%-4d avg=%.3fms max=%.3fms total=%.3fms\n", s.Name, s.Count, s.AvgMs, s.MaxMs, s.TotalMs)
	}
}
