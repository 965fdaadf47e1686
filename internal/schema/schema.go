// =============================================================================
// GST Template Auto-Fill - Canonical Schema
// =============================================================================
//
// This package defines the fixed 12-column template that every Books ledger
// and GST portal export is reconciled into, together with the alias tables
// used to find each template column in a source sheet.
//
// COLUMN ORDER:
//   The order of Columns is the order of the output spreadsheet. Field
//   indices (FieldRecipientGSTIN ... FieldIRN) index into Columns and into
//   every row of a mapped table.
//
// =============================================================================

package schema

import (
	"fmt"
	"strings"
)

// =============================================================================
// CANONICAL FIELDS
// =============================================================================

// Field identifies one canonical template column.
type Field int

const (
	FieldRecipientGSTIN Field = iota
	FieldReceiverName
	FieldInvoiceNo
	FieldInvoiceDate
	FieldInvoiceValue
	FieldPlaceOfSupply
	FieldInvoiceType
	FieldTaxableValue
	FieldIntegratedTax
	FieldCentralTax
	FieldStateUTTax
	FieldIRN
)

// FieldCount is the number of canonical columns.
const FieldCount = 12

// Columns holds the canonical column names in output order.
// The names are written verbatim as the header row of every template.
var Columns = [FieldCount]string{
	"GSTIN/UIN OF RECIPIENT",
	"RECEIVER NAME",
	"INVOICE NO",
	"INVOICE DATE",
	"INVOICE VALUE",
	"PLACE OF SUPPLY",
	"INVOICE TYPE",
	"TAXABLE VALUE",
	"INTEGRATED TAX",
	"CENTRAL TAX",
	"STATE/UT TAX",
	"IRN NUMBER",
}

// NumericFields are coerced to numbers by the value normalizer.
var NumericFields = []Field{
	FieldInvoiceValue,
	FieldTaxableValue,
	FieldIntegratedTax,
	FieldCentralTax,
	FieldStateUTTax,
}

// DateField is normalized to DD-MM-YYYY text.
const DateField = FieldInvoiceDate

// String returns the canonical column name.
func (f Field) String() string {
	if f < 0 || int(f) >= FieldCount {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return Columns[f]
}

// IsNumeric reports whether f is one of the numeric fields.
func (f Field) IsNumeric() bool {
	for _, n := range NumericFields {
		if n == f {
			return true
		}
	}
	return false
}

// ColumnNames returns a fresh copy of Columns as a slice.
func ColumnNames() []string {
	names := make([]string, FieldCount)
	copy(names, Columns[:])
	return names
}

// FieldByName looks up a canonical field by name, ignoring case and
// surrounding whitespace.
func FieldByName(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for i, col := range Columns {
		if strings.EqualFold(col, name) {
			return Field(i), true
		}
	}
	return 0, false
}

// =============================================================================
// SOURCE KINDS
// =============================================================================

// SourceKind selects which alias table is used for a source workbook.
type SourceKind string

const (
	// KindBooks is a business's own ledger / sales register export.
	KindBooks SourceKind = "books"

	// KindGST is a tax portal export (invoices and credit/debit notes).
	KindGST SourceKind = "gst"
)
