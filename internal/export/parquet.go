package export

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/AbbaraS/GBMcode/internal/table"
)

// parquetBatchSize is the number of rows handed to the writer at once.
const parquetBatchSize = 1000

// parquetSchema builds a schema of optional string columns.
//
// A parquet.Group orders its fields by name, so the returned slice maps each
// schema column index to the table column it holds.
func parquetSchema(names []string) (*parquet.Schema, []int) {
	group := make(parquet.Group, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		group[name] = parquet.Optional(parquet.String())
		index[name] = i
	}

	schema := parquet.NewSchema("gbm", group)
	fields := schema.Fields()
	order := make([]int, len(fields))
	for i, f := range fields {
		order[i] = index[f.Name()]
	}
	return schema, order
}

// encodeParquet writes t as a Parquet file.
func encodeParquet(w io.Writer, t *table.Table) error {
	names, rows, err := columns(t)
	if err != nil {
		return err
	}

	schema, order := parquetSchema(names)
	pw := parquet.NewWriter(w, schema, parquet.Compression(&parquet.Snappy))

	batch := make([]parquet.Row, 0, parquetBatchSize)
	for i, row := range rows {
		out := make(parquet.Row, len(order))
		for col, src := range order {
			if v, ok := row.Cell(src); ok {
				out[col] = parquet.ByteArrayValue([]byte(v)).Level(0, 1, col)
			} else {
				out[col] = parquet.NullValue().Level(0, 0, col)
			}
		}
		batch = append(batch, out)

		if len(batch) >= parquetBatchSize {
			if _, err := pw.WriteRows(batch); err != nil {
				_ = pw.Close()
				return fmt.Errorf("writing parquet rows at %d: %w", i-len(batch)+1, err)
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if _, err := pw.WriteRows(batch); err != nil {
			_ = pw.Close()
			return fmt.Errorf("writing parquet rows: %w", err)
		}
	}

	if err := pw.Close(); err != nil {
		return fmt.Errorf("closing parquet writer: %w", err)
	}
	return nil
}
