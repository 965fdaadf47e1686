// =============================================================================
// GST Template Auto-Fill - Shared Types
// =============================================================================
//
// This package contains the table types shared by the workbook reader, the
// converter and the exporter:
//   - SourceTable : one sheet as read from a user workbook (arbitrary headers)
//   - Table       : a mapped / combined table with the 12 canonical columns
//
// =============================================================================

package types

import (
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
)

// =============================================================================
// SOURCE TABLE
// =============================================================================

// SourceTable is a single sheet read from a source workbook.
// All cells are text; every row has exactly len(Headers) cells.
type SourceTable struct {
	// Sheet is the sheet name the table was read from.
	Sheet string

	// Headers are the cleaned column labels from the header row.
	Headers []string

	// Rows holds the data rows below the header row, blank rows removed.
	Rows [][]string

	// RowNumbers holds the 1-based spreadsheet row of each entry in Rows.
	RowNumbers []int

	// HeaderRow is the 1-based row number the headers were read from.
	HeaderRow int
}

// Column returns the values of column i for every row.
func (s *SourceTable) Column(i int) []string {
	values := make([]string, len(s.Rows))
	for r, row := range s.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// =============================================================================
// CANONICAL TABLE
// =============================================================================

// Cell is one value of a canonical table.
// Text fields only use Text. Numeric fields additionally carry Number once
// normalized; an invalid Number means the value is missing.
type Cell struct {
	Text   string
	Number decimal.NullDecimal
}

// TextCell builds a plain text cell.
func TextCell(s string) Cell { return Cell{Text: s} }

// NumberCell builds a numeric cell.
func NumberCell(d decimal.Decimal) Cell {
	return Cell{Text: d.String(), Number: decimal.NullDecimal{Decimal: d, Valid: true}}
}

// Row is one record of a canonical table, indexed by schema.Field.
type Row [schema.FieldCount]Cell

// Table is a mapped or combined table. Its columns are always the canonical
// schema columns in canonical order.
type Table struct {
	Rows []Row
}

// NewTable returns an empty table with capacity for n rows.
func NewTable(n int) *Table {
	return &Table{Rows: make([]Row, 0, n)}
}

// Columns returns the canonical column names.
func (t *Table) Columns() []string { return schema.ColumnNames() }

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Append concatenates other's rows onto t, preserving order.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	t.Rows = append(t.Rows, other.Rows...)
}

// Column returns the text of one field for every row.
func (t *Table) Column(f schema.Field) []string {
	values := make([]string, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Rows[i][f].Text
	}
	return values
}
