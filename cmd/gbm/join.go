package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/AbbaraS/GBMcode/internal/config"
	"github.com/AbbaraS/GBMcode/internal/export"
	"github.com/AbbaraS/GBMcode/internal/join"
	"github.com/AbbaraS/GBMcode/internal/patient"
	"github.com/AbbaraS/GBMcode/internal/prompt"
	"github.com/AbbaraS/GBMcode/internal/table"
	"github.com/AbbaraS/GBMcode/internal/tabio"
)

// joinFlags override the inputs, output and join sections of the config.
type joinFlags struct {
	reference string
	tables    []string
	features  string
	output    string
	format    string
	keyColumn string
	separator string
	textfile  string
}

func addJoinFlags(cmd *cobra.Command, f *joinFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.reference, "reference", "", "genomic reference file whose header holds the patient IDs")
	fs.StringArrayVar(&f.tables, "table", nil, "clinical table as name=path, repeatable, in join order (replaces the configured list)")
	fs.StringVarP(&f.features, "features", "f", "", "feature list file (prompted when unset)")
	fs.StringVarP(&f.output, "output", "o", "", "output file (prompted when unset)")
	fs.StringVar(&f.format, "format", "", "output format: csv, arrow or parquet")
	fs.StringVar(&f.keyColumn, "key-column", "", "patient barcode column in the clinical tables")
	fs.StringVar(&f.separator, "separator", "", "separator between values merged into one cell")
	fs.StringVar(&f.textfile, "metrics-textfile", "", "write run metrics to this Prometheus textfile")
}

// apply copies the flags the user set onto cfg.
func (f *joinFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	fs := cmd.Flags()
	if fs.Changed("reference") {
		cfg.Inputs.Reference = f.reference
	}
	if fs.Changed("table") {
		tables, err := parseTables(f.tables)
		if err != nil {
			return err
		}
		cfg.Inputs.Tables = tables
	}
	if fs.Changed("features") {
		cfg.Inputs.Features = f.features
	}
	if fs.Changed("output") {
		cfg.Output.Path = f.output
	}
	if fs.Changed("format") {
		cfg.Output.Format = f.format
	}
	if fs.Changed("key-column") {
		cfg.Join.KeyColumn = f.keyColumn
	}
	if fs.Changed("separator") {
		cfg.Join.Separator = f.separator
	}
	if fs.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = f.textfile
	}
	return cfg.Validate()
}

// parseTables parses name=path pairs.
func parseTables(specs []string) ([]config.TableConfig, error) {
	tables := make([]config.TableConfig, 0, len(specs))
	for _, s := range specs {
		name, path, ok := strings.Cut(s, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid --table %q: want name=path", s)
		}
		tables = append(tables, config.TableConfig{Name: name, Path: path})
	}
	return tables, nil
}

func newJoinCmd(g *globalFlags) *cobra.Command {
	f := &joinFlags{}
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join the clinical tables into a feature table",
		Long: `Join reads the patient IDs from the reference file, loads every clinical
table, then asks for the feature list and output locations unless they were
given as flags or in the config.

For each patient and feature the values found in all tables are joined with
the separator, in table order. Patients with no value for any feature are left
out. Any missing or unreadable input aborts the run before anything is
written.

Examples:
  gbm join --features features.txt --output features.csv
  gbm join --table drug=drug.txt --table followup=followup.txt -f f.txt -o out.arrow --format arrow`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runJoin(cmd, g, f)
		},
	}
	addJoinFlags(cmd, f)
	return cmd
}

func runJoin(cmd *cobra.Command, g *globalFlags, f *joinFlags) error {
	cfg, err := loadConfig(cmd, g)
	if err != nil {
		return err
	}
	if err := f.apply(cmd, cfg); err != nil {
		return err
	}

	ctx, rt, err := newRuntime(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(context.Background()); cerr != nil {
			rt.logger.Debug(ctx, "shutdown", zap.Error(cerr))
		}
	}()

	metrics := join.NewMetrics(rt.runID)
	defer func() {
		if cfg.Metrics.Textfile == "" {
			return
		}
		if werr := metrics.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			rt.logger.Warn(ctx, "failed to write metrics textfile",
				zap.String("path", cfg.Metrics.Textfile), zap.Error(werr))
		}
	}()

	rt.logger.Info(ctx, "run started",
		zap.String("reference", cfg.Inputs.Reference),
		zap.Int("tables", len(cfg.Inputs.Tables)),
	)

	// Load the reference IDs and every table before asking anything, so a
	// missing input aborts the run straight away.
	start := time.Now()
	ids, sources, err := loadInputs(ctx, rt, metrics)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	var p prompt.Prompter
	ask := func(question string) (string, error) {
		if p == nil {
			p = newPrompter(cmd.InOrStdin(), out)
		}
		return p.Ask(ctx, question)
	}

	featuresPath := cfg.Inputs.Features
	if featuresPath == "" {
		if featuresPath, err = ask(prompt.InputQuestion); err != nil {
			return err
		}
	}
	features, err := loadFeatures(ctx, rt, featuresPath)
	if err != nil {
		return err
	}
	metrics.ObserveStage("load", time.Since(start))

	outputPath := cfg.Output.Path
	if outputPath == "" {
		if outputPath, err = ask(prompt.OutputQuestion); err != nil {
			return err
		}
	}

	start = time.Now()
	joiner := join.New(sources,
		join.WithIDColumn(cfg.Join.IDColumn),
		join.WithSeparator(cfg.Join.Separator),
		join.WithLogger(rt.logger),
		join.WithMetrics(metrics),
		join.WithTracer(rt.tracer),
	)
	result, stats := joiner.Join(ctx, ids, features)
	metrics.ObserveStage("join", time.Since(start))

	start = time.Now()
	format, _ := export.ParseFormat(cfg.Output.Format)
	if err := writeOutput(ctx, rt, result, outputPath, format); err != nil {
		return err
	}
	metrics.ObserveStage("write", time.Since(start))

	rt.logger.Info(ctx, "run complete",
		zap.String("output", outputPath),
		zap.String("format", string(format)),
		zap.Int("rows_emitted", stats.RowsEmitted),
	)
	fmt.Fprintf(out, "Output file saved to: %s\n", outputPath)
	return nil
}

// newPrompter picks the TUI on an interactive stdin and a line reader
// otherwise.
func newPrompter(in io.Reader, out io.Writer) prompt.Prompter {
	if f, ok := in.(*os.File); ok {
		return prompt.New(f, out)
	}
	return prompt.NewLine(in, out)
}

// loadInputs reads the patient IDs and the clinical tables.
func loadInputs(ctx context.Context, rt *runtime, metrics *join.Metrics) (ids []string, sources []join.Source, err error) {
	ctx, span := rt.tracer.Start(ctx, "gbm.load")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	cfg := rt.cfg
	header, err := tabio.ReadHeaderLine(cfg.Inputs.Reference)
	if err != nil {
		return nil, nil, err
	}
	ids = patient.ExtractIDs(header)
	rt.logger.Info(ctx, "patient IDs extracted",
		zap.String("path", cfg.Inputs.Reference),
		zap.Int("ids", len(ids)),
	)

	opts := tabio.DefaultTableOptions()
	opts.KeyColumn = cfg.Join.KeyColumn

	sources = make([]join.Source, 0, len(cfg.Inputs.Tables))
	for _, tc := range cfg.Inputs.Tables {
		t, err := tabio.ReadTable(tc.Path, opts)
		if err != nil {
			return nil, nil, err
		}
		rows := t.Len() - 1
		if rows < 0 {
			rows = 0
		}
		metrics.SetTableRows(tc.Name, rows)
		if _, ok := t.HeaderIndex(cfg.Join.KeyColumn); !ok {
			rt.logger.Warn(ctx, "table has no key column, it will match no patients",
				zap.String("table", tc.Name),
				zap.String("key_column", cfg.Join.KeyColumn),
			)
		}
		rt.logger.Debug(ctx, "table loaded",
			zap.String("table", tc.Name),
			zap.String("path", tc.Path),
			zap.Int("rows", rows),
		)
		sources = append(sources, join.Source{Name: tc.Name, Table: t})
	}

	span.SetAttributes(
		attribute.Int("gbm.patients", len(ids)),
		attribute.Int("gbm.tables", len(sources)),
	)
	return ids, sources, nil
}

// loadFeatures reads the feature list.
func loadFeatures(ctx context.Context, rt *runtime, path string) (features []string, err error) {
	ctx, span := rt.tracer.Start(ctx, "gbm.load.features")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	features, err = tabio.ReadFeatures(path)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("gbm.features", len(features)))
	rt.logger.Info(ctx, "features loaded",
		zap.String("path", path),
		zap.Int("features", len(features)),
	)
	return features, nil
}

// writeOutput writes the joined table in the requested format.
func writeOutput(ctx context.Context, rt *runtime, result *table.Table, path string, format export.Format) (err error) {
	_, span := rt.tracer.Start(ctx, "gbm.write", trace.WithAttributes(
		attribute.String("gbm.output.path", path),
		attribute.String("gbm.output.format", string(format)),
		attribute.Int("gbm.output.rows", result.Len()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return export.WriteFile(path, result, format)
}
