// Package table provides the in-memory string grid used by the gbm join.
//
// A Table is an ordered list of rows. Row 0 is the header row and acts as the
// column-name index; every other row is a data row positionally aligned with
// it. Cell counts are not enforced, so ragged rows are tolerated and every cell
// access is bounds-checked.
//
// Lookups are exact, case-sensitive string matches:
//
//	t := table.New()
//	t.AddRow(table.NewRow("", "bcr_patient_barcode", "drug_name"))
//	t.AddRow(table.NewRow("1", "TCGA-02-0001", "Temozolomide"))
//	t.Cells("drug_name", "TCGA-02-0001") // ["Temozolomide"]
package table

import (
	"errors"
	"fmt"
)

// DefaultKeyColumn is the header naming the patient identifier column.
const DefaultKeyColumn = "bcr_patient_barcode"

// Lookup misses. These are expected signals, not failures.
var (
	ErrHeaderNotFound  = errors.New("header not found")
	ErrPatientNotFound = errors.New("patient not found")
)

// Row is an ordered sequence of string cells.
type Row struct {
	Cells []string
}

// NewRow builds a row from cells.
func NewRow(cells ...string) Row {
	return Row{Cells: cells}
}

// Cell returns the cell at column i. The second result is false when the row
// is too short to hold column i.
func (r Row) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r.Cells) {
		return "", false
	}
	return r.Cells[i], true
}

// Len returns the number of cells in the row.
func (r Row) Len() int {
	return len(r.Cells)
}

// Table is an ordered grid of string cells whose first row is the header.
//
// Table is not safe for concurrent mutation.
type Table struct {
	rows      []Row
	keyColumn string

	// lazily built, dropped on AddRow
	headers map[string]int
	keys    map[string][]int
}

// Option configures a Table.
type Option func(*Table)

// WithKeyColumn sets the header used for patient lookups.
func WithKeyColumn(name string) Option {
	return func(t *Table) {
		t.keyColumn = name
	}
}

// New creates an empty table.
func New(opts ...Option) *Table {
	t := &Table{keyColumn: DefaultKeyColumn}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddRow appends row. No cell-count validation is done.
func (t *Table) AddRow(row Row) {
	t.rows = append(t.rows, row)
	t.headers = nil
	t.keys = nil
}

// Len returns the number of rows, header included.
func (t *Table) Len() int {
	return len(t.rows)
}

// Row returns row i.
func (t *Table) Row(i int) (Row, bool) {
	if i < 0 || i >= len(t.rows) {
		return Row{}, false
	}
	return t.rows[i], true
}

// Rows returns all rows, header first. The slice is shared with the table.
func (t *Table) Rows() []Row {
	return t.rows
}

// Header returns row 0, or an empty row for an empty table.
func (t *Table) Header() Row {
	if len(t.rows) == 0 {
		return Row{}
	}
	return t.rows[0]
}

// KeyColumn returns the header used for patient lookups.
func (t *Table) KeyColumn() string {
	return t.keyColumn
}

// HeaderIndex returns the zero-based column of the first header cell equal to
// header. The second result is false when no such column exists, including on
// an empty table.
func (t *Table) HeaderIndex(header string) (int, bool) {
	if t.headers == nil {
		t.buildHeaderIndex()
	}
	i, ok := t.headers[header]
	return i, ok
}

func (t *Table) buildHeaderIndex() {
	hdr := t.Header()
	t.headers = make(map[string]int, len(hdr.Cells))
	for i, cell := range hdr.Cells {
		if _, seen := t.headers[cell]; !seen {
			t.headers[cell] = i
		}
	}
}

// PatientRows returns the indices of every data row whose key column equals
// patientID, in row order.
//
// When the key column is missing the result is empty and the error wraps
// ErrHeaderNotFound. When no row matches the result is empty and the error is
// ErrPatientNotFound. Rows too short to hold the key column never match.
func (t *Table) PatientRows(patientID string) ([]int, error) {
	if t.keys == nil {
		col, ok := t.HeaderIndex(t.keyColumn)
		if !ok {
			return []int{}, fmt.Errorf("key column %q: %w", t.keyColumn, ErrHeaderNotFound)
		}
		t.buildKeyIndex(col)
	}

	rows := t.keys[patientID]
	if len(rows) == 0 {
		return []int{}, ErrPatientNotFound
	}
	return append([]int(nil), rows...), nil
}

func (t *Table) buildKeyIndex(col int) {
	t.keys = make(map[string][]int)
	for i := 1; i < len(t.rows); i++ {
		id, ok := t.rows[i].Cell(col)
		if !ok {
			continue
		}
		t.keys[id] = append(t.keys[id], i)
	}
}

// Lookup returns the cells at the intersection of header's column and every
// row matching patientID, in row order.
//
// A matching row too short to hold the header's column contributes nothing.
// The error reports why the result is empty; callers that only want the values
// should use Cells.
func (t *Table) Lookup(header, patientID string) ([]string, error) {
	col, ok := t.HeaderIndex(header)
	if !ok {
		return []string{}, fmt.Errorf("column %q: %w", header, ErrHeaderNotFound)
	}

	rows, err := t.PatientRows(patientID)
	if err != nil {
		return []string{}, err
	}

	cells := make([]string, 0, len(rows))
	for _, i := range rows {
		if v, ok := t.rows[i].Cell(col); ok {
			cells = append(cells, v)
		}
	}
	return cells, nil
}

// Cells is Lookup without the miss reason. An empty result means the table
// holds no value for this patient and feature.
func (t *Table) Cells(header, patientID string) []string {
	cells, _ := t.Lookup(header, patientID)
	return cells
}
