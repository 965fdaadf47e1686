package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
)

func sourceTable(headers []string, rows ...[]string) *types.SourceTable {
	return &types.SourceTable{Sheet: "Sheet1", Headers: headers, Rows: rows, HeaderRow: 1}
}

func TestMapColumns_FirstAliasCopiedVerbatim(t *testing.T) {
	src := sourceTable(
		[]string{"  customer   name ", "Original Customer Billing GSTIN", "GSTIN"},
		[]string{" Acme Co ", "29ABCDE1234F1Z5", "27XYZAB9876C1Z2"},
		[]string{"Beta Ltd", "", "33PQRST4567D1Z9"},
	)

	table, report := MapColumns(src, schema.BooksAliases())

	assert.Equal(t, []string{" Acme Co ", "Beta Ltd"}, table.Column(schema.FieldReceiverName))
	// The first alias present wins even when a later alias also matches.
	assert.Equal(t, []string{"29ABCDE1234F1Z5", ""}, table.Column(schema.FieldRecipientGSTIN))

	match := report.Fields[schema.FieldRecipientGSTIN]
	assert.True(t, match.Matched)
	assert.Equal(t, "Original Customer Billing GSTIN", match.Alias)
	assert.Equal(t, 1, match.SourceIndex)
	assert.Equal(t, "Customer Name", report.Fields[schema.FieldReceiverName].Alias)
}

func TestMapColumns_LeftmostDuplicateWins(t *testing.T) {
	src := sourceTable(
		[]string{"Bill No", "BILL-NO", "bill no"},
		[]string{"A1", "A2", "A3"},
	)

	table, report := MapColumns(src, schema.BooksAliases())

	assert.Equal(t, []string{"A1"}, table.Column(schema.FieldInvoiceNo))
	assert.Equal(t, 0, report.Fields[schema.FieldInvoiceNo].SourceIndex)
}

func TestMapColumns_UnmatchedFieldsAreEmpty(t *testing.T) {
	src := sourceTable(
		[]string{"Narration", "Ledger"},
		[]string{"x", "y"},
		[]string{"z", "w"},
	)

	table, report := MapColumns(src, schema.GSTAliases())

	assert.Equal(t, schema.ColumnNames(), table.Columns())
	require.Equal(t, 2, table.Len())
	for f := schema.Field(0); f < schema.FieldCount; f++ {
		assert.Equal(t, []string{"", ""}, table.Column(f), f.String())
	}
	assert.Equal(t, 0, report.MatchedCount())
	assert.Len(t, report.Unmatched(), schema.FieldCount)
}

func TestMapColumns_EmptySheet(t *testing.T) {
	table, report := MapColumns(sourceTable([]string{}), schema.BooksAliases())

	assert.True(t, table.Empty())
	assert.Equal(t, 0, report.Rows)
	assert.Equal(t, "", report.Fields[schema.FieldIRN].Suggestion)
}

func TestMapColumns_SuggestsCloseHeader(t *testing.T) {
	src := sourceTable(
		[]string{"Invoice Numbr", "Customer Name"},
		[]string{"INV001", "Acme Co"},
	)

	_, report := MapColumns(src, schema.BooksAliases())

	match := report.Fields[schema.FieldInvoiceNo]
	assert.False(t, match.Matched)
	assert.Equal(t, -1, match.SourceIndex)
	assert.Equal(t, "Invoice Numbr", match.Suggestion)
}

func TestMapColumns_ShortRowsLeaveTrailingFieldsEmpty(t *testing.T) {
	src := sourceTable(
		[]string{"Customer Name", "Bill No", "Invoice Value"},
		[]string{"Acme Co", "INV001", "1180"},
		[]string{"Beta Ltd"},
	)

	table, _ := MapColumns(src, schema.BooksAliases())

	require.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Acme Co", "Beta Ltd"}, table.Column(schema.FieldReceiverName))
	assert.Equal(t, []string{"INV001", ""}, table.Column(schema.FieldInvoiceNo))
	assert.Equal(t, []string{"1180", ""}, table.Column(schema.FieldInvoiceValue))
}
