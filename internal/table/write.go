package table

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/AbbaraS/GBMcode/internal/ioerr"
)

// Delimiter separates cells in serialized rows.
const Delimiter = ","

// WriteTo writes every row as a comma-joined line followed by a newline.
// Cells are written verbatim; embedded commas and quotes are not escaped.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, row := range t.rows {
		n, err := bw.WriteString(strings.Join(row.Cells, Delimiter) + "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// WriteToFile serializes the table to path, truncating any existing file.
// Failures are returned as *ioerr.FileError.
func (t *Table) WriteToFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return ioerr.New(ioerr.OpCreate, path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = ioerr.New(ioerr.OpWrite, path, cerr)
		}
	}()

	if _, err := t.WriteTo(f); err != nil {
		return ioerr.New(ioerr.OpWrite, path, err)
	}
	return nil
}
