// Package join builds the patient feature table.
//
// For every patient and every requested feature, the Joiner looks the feature
// up in each clinical table in order, concatenates whatever cells it finds and
// merges them into one separator-joined value. A patient is emitted only when
// at least one feature produced a value somewhere; the others are dropped.
package join

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/AbbaraS/GBMcode/internal/logging"
	"github.com/AbbaraS/GBMcode/internal/patient"
	"github.com/AbbaraS/GBMcode/internal/table"
)

// DefaultSeparator joins the values merged into one output cell.
const DefaultSeparator = " "

// Source is a named clinical table.
type Source struct {
	Name  string
	Table *table.Table
}

// Stats summarises one Join call.
type Stats struct {
	Patients        int // IDs considered
	RowsEmitted     int // data rows in the output
	PatientsDropped int // IDs with no value in any table
	CellsFilled     int // feature cells of emitted rows with at least one value
	CellsEmpty      int // feature cells of emitted rows with no value
}

// Joiner joins clinical tables by patient ID.
type Joiner struct {
	sources   []Source
	idColumn  string
	separator string

	logger  *logging.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Joiner.
type Option func(*Joiner)

// WithIDColumn sets the output identifier header, which is also the feature
// name skipped during lookups. Defaults to patient.IDColumn.
func WithIDColumn(name string) Option {
	return func(j *Joiner) { j.idColumn = name }
}

// WithSeparator sets the string placed between merged values.
func WithSeparator(sep string) Option {
	return func(j *Joiner) { j.separator = sep }
}

// WithLogger sets the logger. Lookups log at trace level, totals at info.
func WithLogger(l *logging.Logger) Option {
	return func(j *Joiner) { j.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(j *Joiner) { j.metrics = m }
}

// WithTracer sets the tracer used for the join span.
func WithTracer(t trace.Tracer) Option {
	return func(j *Joiner) { j.tracer = t }
}

// New creates a Joiner over sources. Lookups visit sources in slice order.
func New(sources []Source, opts ...Option) *Joiner {
	j := &Joiner{
		sources:   append([]Source(nil), sources...),
		idColumn:  patient.IDColumn,
		separator: DefaultSeparator,
		logger:    logging.NewNop(),
		tracer:    noop.NewTracerProvider().Tracer("gbm/join"),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Sources returns the joined sources in lookup order.
func (j *Joiner) Sources() []Source {
	return append([]Source(nil), j.sources...)
}

// Join builds the output table for ids and features.
//
// The header row is the ID column followed by features exactly as given,
// including any blank names or ID-column sentinel. Data rows skip the
// sentinel, so such rows are one cell shorter than the header.
func (j *Joiner) Join(ctx context.Context, ids, features []string) (*table.Table, Stats) {
	ctx, span := j.tracer.Start(ctx, "gbm.join", trace.WithAttributes(
		attribute.Int("gbm.patients", len(ids)),
		attribute.Int("gbm.features", len(features)),
		attribute.Int("gbm.tables", len(j.sources)),
	))
	defer span.End()

	out := table.New()
	header := make([]string, 0, len(features)+1)
	header = append(header, j.idColumn)
	header = append(header, features...)
	out.AddRow(table.NewRow(header...))

	var stats Stats
	for _, id := range ids {
		stats.Patients++

		row := make([]string, 0, len(features)+1)
		row = append(row, patient.ShortID(id))

		hasValue := false
		filled, empty := 0, 0
		for _, feature := range features {
			if feature == j.idColumn {
				continue
			}
			value, ok := j.Merge(ctx, feature, id)
			if ok {
				hasValue = true
				filled++
			} else {
				empty++
			}
			row = append(row, value)
		}

		j.metrics.RecordPatient(hasValue)
		if !hasValue {
			stats.PatientsDropped++
			j.logger.Debug(ctx, "patient dropped, no values in any table",
				zap.String("patient_id", id))
			continue
		}

		out.AddRow(table.NewRow(row...))
		stats.RowsEmitted++
		stats.CellsFilled += filled
		stats.CellsEmpty += empty
		j.metrics.RecordCells(filled, empty)
	}

	span.SetAttributes(
		attribute.Int("gbm.rows_emitted", stats.RowsEmitted),
		attribute.Int("gbm.patients_dropped", stats.PatientsDropped),
	)
	j.logger.Info(ctx, "join complete",
		zap.Int("patients", stats.Patients),
		zap.Int("rows_emitted", stats.RowsEmitted),
		zap.Int("patients_dropped", stats.PatientsDropped),
		zap.Int("cells_filled", stats.CellsFilled),
		zap.Int("cells_empty", stats.CellsEmpty),
	)

	return out, stats
}

// Merge returns the merged value of feature for patientID across all sources
// and whether any source matched. An empty matched value still counts.
func (j *Joiner) Merge(ctx context.Context, feature, patientID string) (string, bool) {
	var values []string
	for _, src := range j.sources {
		cells, err := src.Table.Lookup(feature, patientID)
		result := lookupResult(cells, err)
		j.metrics.RecordLookup(src.Name, result)
		if j.logger.Enabled(logging.TraceLevel) {
			j.logger.Trace(ctx, "lookup",
				zap.String("table", src.Name),
				zap.String("feature", feature),
				zap.String("patient_id", patientID),
				zap.String("result", result),
				zap.Int("cells", len(cells)),
			)
		}
		values = append(values, cells...)
	}

	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, j.separator), true
}

// lookupResult classifies a table lookup for metrics and logs.
func lookupResult(cells []string, err error) string {
	switch {
	case len(cells) > 0:
		return ResultHit
	case errors.Is(err, table.ErrHeaderNotFound):
		return ResultNoColumn
	case errors.Is(err, table.ErrPatientNotFound):
		return ResultNoPatient
	default:
		return ResultNoCell
	}
}
