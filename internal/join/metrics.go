package join

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results recorded in gbm_lookups_total.
const (
	ResultHit       = "hit"
	ResultNoColumn  = "no_column"
	ResultNoPatient = "no_patient"
	ResultNoCell    = "no_cell"
)

// Metrics holds Prometheus metrics for one join run.
//
// Each Metrics owns a private registry, so a run's numbers never mix with
// another's and can be written out as a node-exporter textfile at exit.
// A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	PatientsTotal        prometheus.Counter
	RowsEmittedTotal     prometheus.Counter
	PatientsDroppedTotal prometheus.Counter
	CellsTotal           *prometheus.CounterVec
	LookupsTotal         *prometheus.CounterVec
	TableRows            *prometheus.GaugeVec
	StageDuration        *prometheus.GaugeVec
}

// NewMetrics creates and registers join metrics labelled with runID.
//
// Metrics:
//   - gbm_patients_total - Patient IDs considered
//   - gbm_rows_emitted_total - Output rows written
//   - gbm_patients_dropped_total - Patients with no value in any table
//   - gbm_cells_total{state} - Output feature cells, "filled" or "empty"
//   - gbm_lookups_total{table,result} - Per-table feature lookups
//   - gbm_table_rows{table} - Data rows loaded per table
//   - gbm_stage_duration_seconds{stage} - Wall time of load, join and write
func NewMetrics(runID string) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"run_id": runID}

	return &Metrics{
		registry: reg,

		PatientsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "gbm_patients_total",
			Help:        "Total number of patient IDs considered",
			ConstLabels: labels,
		}),

		RowsEmittedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "gbm_rows_emitted_total",
			Help:        "Total number of output rows emitted",
			ConstLabels: labels,
		}),

		PatientsDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name:        "gbm_patients_dropped_total",
			Help:        "Total number of patients with no value in any table",
			ConstLabels: labels,
		}),

		CellsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "gbm_cells_total",
			Help:        "Total number of output feature cells by state",
			ConstLabels: labels,
		}, []string{"state"}), // "filled" or "empty"

		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "gbm_lookups_total",
			Help:        "Total number of per-table feature lookups by result",
			ConstLabels: labels,
		}, []string{"table", "result"}),

		TableRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gbm_table_rows",
			Help:        "Number of data rows loaded per clinical table",
			ConstLabels: labels,
		}, []string{"table"}),

		StageDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "gbm_stage_duration_seconds",
			Help:        "Wall time of each pipeline stage in seconds",
			ConstLabels: labels,
		}, []string{"stage"}),
	}
}

// Registry returns the registry holding the run's metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordPatient records one patient and whether it produced an output row.
func (m *Metrics) RecordPatient(emitted bool) {
	if m == nil {
		return
	}
	m.PatientsTotal.Inc()
	if emitted {
		m.RowsEmittedTotal.Inc()
	} else {
		m.PatientsDroppedTotal.Inc()
	}
}

// RecordCells records the filled and empty cells of an emitted row.
func (m *Metrics) RecordCells(filled, empty int) {
	if m == nil {
		return
	}
	m.CellsTotal.WithLabelValues("filled").Add(float64(filled))
	m.CellsTotal.WithLabelValues("empty").Add(float64(empty))
}

// RecordLookup records one lookup against a table.
func (m *Metrics) RecordLookup(table, result string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(table, result).Inc()
}

// SetTableRows records the number of data rows loaded for a table.
func (m *Metrics) SetTableRows(table string, rows int) {
	if m == nil {
		return
	}
	m.TableRows.WithLabelValues(table).Set(float64(rows))
}

// ObserveStage records how long a pipeline stage took.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Set(d.Seconds())
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
