// Package tabio loads the plain-text inputs of a gbm run: the reference header
// line, the clinical tables, and the user's feature list.
//
// The formats are deliberately simple. Lines may end in LF or CRLF, double
// quotes are removed wholesale rather than interpreted, and cells are split on
// a single delimiter with no escaping. Every failure to open or read a path is
// returned as an *ioerr.FileError naming that path.
package tabio

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/AbbaraS/GBMcode/internal/ioerr"
	"github.com/AbbaraS/GBMcode/internal/table"
)

// stripper removes carriage returns, newlines and double quotes.
var stripper = strings.NewReplacer("\r", "", "\n", "", "\"", "")

// TableOptions controls how a clinical table is parsed.
type TableOptions struct {
	// Delimiter separates cells (default ",").
	Delimiter string
	// PrefixHeader prepends an empty cell to the first line so header indices
	// line up with data rows that carry a leading unnamed index column
	// (default true).
	PrefixHeader bool
	// KeyColumn names the patient identifier column (default
	// table.DefaultKeyColumn).
	KeyColumn string
}

// DefaultTableOptions returns the options matching the clinical GBM exports.
func DefaultTableOptions() TableOptions {
	return TableOptions{
		Delimiter:    table.Delimiter,
		PrefixHeader: true,
		KeyColumn:    table.DefaultKeyColumn,
	}
}

// ReadTable loads the table at path.
func ReadTable(path string, opts ...TableOptions) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioerr.New(ioerr.OpOpen, path, err)
	}
	defer f.Close()

	t, err := ParseTable(f, opts...)
	if err != nil {
		return nil, ioerr.New(ioerr.OpRead, path, err)
	}
	return t, nil
}

// ParseTable reads a table from r. Every physical line becomes a row,
// including blank lines, which become rows with no cells.
func ParseTable(r io.Reader, opts ...TableOptions) (*table.Table, error) {
	opt := DefaultTableOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}
	if opt.Delimiter == "" {
		opt.Delimiter = table.Delimiter
	}
	if opt.KeyColumn == "" {
		opt.KeyColumn = table.DefaultKeyColumn
	}

	t := table.New(table.WithKeyColumn(opt.KeyColumn))
	first := true
	err := eachLine(r, func(line string) {
		line = stripper.Replace(line)

		var cells []string
		if first {
			if opt.PrefixHeader {
				cells = append(cells, "")
			}
			first = false
		}
		if line != "" {
			cells = append(cells, strings.Split(line, opt.Delimiter)...)
		}
		t.AddRow(table.NewRow(cells...))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ReadHeaderLine returns the first line of the file at path without its line
// terminator. An empty file yields an empty string.
func ReadHeaderLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", ioerr.New(ioerr.OpOpen, path, err)
	}
	defer f.Close()

	line, err := ParseHeaderLine(f)
	if err != nil {
		return "", ioerr.New(ioerr.OpRead, path, err)
	}
	return line, nil
}

// ParseHeaderLine returns the first line of r without its line terminator.
func ParseHeaderLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadFeatures loads the feature list at path.
func ReadFeatures(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioerr.New(ioerr.OpOpen, path, err)
	}
	defer f.Close()

	features, err := ParseFeatures(f)
	if err != nil {
		return nil, ioerr.New(ioerr.OpRead, path, err)
	}
	return features, nil
}

// ParseFeatures returns one feature name per line of r with carriage returns,
// newlines and double quotes removed. Blank lines are kept as empty names.
func ParseFeatures(r io.Reader) ([]string, error) {
	features := []string{}
	err := eachLine(r, func(line string) {
		features = append(features, stripper.Replace(line))
	})
	if err != nil {
		return nil, err
	}
	return features, nil
}

// eachLine calls fn for every line of r, terminator included. A final line
// without a terminator is still delivered; an empty tail after the last
// newline is not. Lines are not length limited.
func eachLine(r io.Reader, fn func(line string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}
