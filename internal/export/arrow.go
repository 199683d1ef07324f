package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/AbbaraS/GBMcode/internal/table"
)

// ToArrow converts t to a single Arrow record of nullable string columns.
// The caller must Release the record.
func ToArrow(t *table.Table, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	names, rows, err := columns(t)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	arrays := make([]arrow.Array, len(names))
	defer func() {
		for _, a := range arrays {
			if a != nil {
				a.Release()
			}
		}
	}()

	for col := range names {
		builder := array.NewStringBuilder(mem)
		builder.Reserve(len(rows))
		for _, row := range rows {
			if v, ok := row.Cell(col); ok {
				builder.Append(v)
			} else {
				builder.AppendNull()
			}
		}
		arrays[col] = builder.NewArray()
		builder.Release()
	}

	// NewRecord retains the arrays; the deferred release drops ours.
	return array.NewRecord(schema, arrays, int64(len(rows))), nil
}

// encodeArrow writes t as an Arrow IPC file.
func encodeArrow(w io.Writer, t *table.Table) error {
	mem := memory.NewGoAllocator()

	record, err := ToArrow(t, mem)
	if err != nil {
		return err
	}
	defer record.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(record.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}
	if err := fw.Write(record); err != nil {
		_ = fw.Close()
		return fmt.Errorf("writing arrow record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return nil
}
