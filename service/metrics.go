package service

import (
	"os"
	"path/filepath"

	"github.com/ludo-technologies/cukereport/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "cukereport"

// MetricsExporter writes build results as a Prometheus textfile, for
// collection by the node exporter textfile collector
type MetricsExporter struct {
	path string
}

// NewMetricsExporter creates an exporter writing to path
func NewMetricsExporter(path string) *MetricsExporter {
	return &MetricsExporter{path: path}
}

// Export writes the metrics of report. A nil report records a failed run.
func (e *MetricsExporter) Export(report *domain.Report, meta domain.BuildMetadata) error {
	registry := prometheus.NewRegistry()
	labels := prometheus.Labels{"project": meta.BuildProject, "build": meta.BuildNumber}

	steps := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "steps",
		Help:        "Number of steps by status.",
		ConstLabels: labels,
	}, []string{"status"})
	scenarios := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "scenarios",
		Help:        "Number of scenarios by status.",
		ConstLabels: labels,
	}, []string{"status"})
	features := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "features",
		Help:        "Number of features.",
		ConstLabels: labels,
	})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "duration_seconds",
		Help:        "Total duration of all steps.",
		ConstLabels: labels,
	})
	passed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "build_passed",
		Help:        "1 when the build verdict is passed, 0 otherwise.",
		ConstLabels: labels,
	})
	completed := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "build_completed",
		Help:        "1 when every report page was generated, 0 when the error page was written.",
		ConstLabels: labels,
	})

	registry.MustRegister(steps, scenarios, features, duration, passed, completed)

	if report != nil {
		completed.Set(1)
		for _, s := range displayStatuses {
			steps.WithLabelValues(string(s)).Set(float64(report.Totals.Steps.Get(s)))
			scenarios.WithLabelValues(string(s)).Set(float64(report.Totals.Scenarios.Get(s)))
		}
		features.Set(float64(report.Totals.Features))
		duration.Set(report.Totals.Duration.Seconds())
		if report.Passed() {
			passed.Set(1)
		}
	}

	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError("failed to create metrics directory", err)
		}
	}
	if err := prometheus.WriteToTextfile(e.path, registry); err != nil {
		return domain.NewOutputError("failed to write metrics file", err)
	}
	return nil
}
