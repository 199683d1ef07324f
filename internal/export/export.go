// Package export writes a feature table to disk as CSV, Arrow IPC or Parquet.
//
// CSV output is the table's own comma-joined form and is byte-for-byte what
// table.WriteTo produces. The columnar formats take the first row as column
// names and store every cell as a string; cells missing from a short row are
// written as nulls.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AbbaraS/GBMcode/internal/ioerr"
	"github.com/AbbaraS/GBMcode/internal/table"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatArrow   Format = "arrow"
	FormatParquet Format = "parquet"
)

var (
	// ErrUnknownFormat is returned for a format name that is not supported.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrNoHeader is returned when a columnar format is asked to write a
	// table without a header row.
	ErrNoHeader = errors.New("table has no header row")
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatCSV, FormatArrow, FormatParquet}
}

// ParseFormat resolves a format name. The empty name means CSV.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatArrow, FormatParquet:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Encode writes t to w in the given format.
func Encode(w io.Writer, t *table.Table, format Format) error {
	switch format {
	case FormatCSV:
		_, err := t.WriteTo(w)
		return err
	case FormatArrow:
		return encodeArrow(w, t)
	case FormatParquet:
		return encodeParquet(w, t)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes t to path in the given format, replacing any existing
// file. On failure the partially written file is removed.
func WriteFile(path string, t *table.Table, format Format) (err error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return err
	}
	if format == FormatCSV {
		return t.WriteToFile(path)
	}

	f, err := os.Create(path)
	if err != nil {
		return ioerr.New(ioerr.OpCreate, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioerr.New(ioerr.OpWrite, path, cerr)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err := Encode(f, t, format); err != nil {
		if errors.Is(err, ErrNoHeader) {
			return err
		}
		return ioerr.New(ioerr.OpWrite, path, err)
	}
	return nil
}

// ColumnNames derives unique, non-blank column names from a header row.
// Blank names become column_<n> (1-based) and repeats get a _2, _3 suffix.
// Columns past the end of the header are named like blank ones.
func ColumnNames(header []string, width int) []string {
	if width < len(header) {
		width = len(header)
	}

	used := make(map[string]bool, width)
	names := make([]string, width)
	for i := 0; i < width; i++ {
		base := ""
		if i < len(header) {
			base = header[i]
		}
		if base == "" {
			base = "column_" + strconv.Itoa(i+1)
		}

		name := base
		for n := 2; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// columns splits t into its column names and data rows.
func columns(t *table.Table) ([]string, []table.Row, error) {
	if t.Len() == 0 {
		return nil, nil, ErrNoHeader
	}

	rows := t.Rows()
	width := 0
	for _, r := range rows {
		if r.Len() > width {
			width = r.Len()
		}
	}
	return ColumnNames(t.Header().Cells, width), rows[1:], nil
}
