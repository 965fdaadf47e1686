package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnsOrder(t *testing.T) {
	names := ColumnNames()
	require.Len(t, names, FieldCount)
	assert.Equal(t, "GSTIN/UIN OF RECIPIENT", names[FieldRecipientGSTIN])
	assert.Equal(t, "INVOICE DATE", names[FieldInvoiceDate])
	assert.Equal(t, "IRN NUMBER", names[FieldIRN])

	names[0] = "changed"
	assert.Equal(t, "GSTIN/UIN OF RECIPIENT", Columns[0])
}

func TestNumericFields(t *testing.T) {
	assert.True(t, FieldInvoiceValue.IsNumeric())
	assert.True(t, FieldStateUTTax.IsNumeric())
	assert.False(t, FieldInvoiceDate.IsNumeric())
	assert.False(t, FieldIRN.IsNumeric())
	assert.Len(t, NumericFields, 5)
}

func TestFieldByName(t *testing.T) {
	f, ok := FieldByName("  state/ut tax ")
	require.True(t, ok)
	assert.Equal(t, FieldStateUTTax, f)

	_, ok = FieldByName("HSN")
	assert.False(t, ok)
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"GSTIN/UIN of Recipient", "GSTINUINOFRECIPIENT"},
		{"  Invoice   Number ", "INVOICENUMBER"},
		{"invoice-number", "INVOICENUMBER"},
		{"Original Invoice Number (In case of amendment)", "ORIGINALINVOICENUMBERINCASEOFAMENDMENT"},
		{"\tState/UT\nTax", "STATEUTTAX"},
		{"Ｉｎｖｏｉｃｅ Ｖａｌｕｅ", "INVOICEVALUE"},
		{2024, "2024"},
		{nil, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHeader(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeHeader_EquivalentVariants(t *testing.T) {
	variants := []string{
		"Invoice Value",
		"INVOICE VALUE",
		"invoice    value",
		"Invoice_Value",
		"Invoice.Value:",
	}
	want := NormalizeHeader(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, NormalizeHeader(v), v)
	}
}

func TestAliasTablesCoverEveryField(t *testing.T) {
	for _, table := range []AliasTable{BooksAliases(), GSTAliases()} {
		for i, aliases := range table {
			assert.NotEmpty(t, aliases, "field %s has no aliases", Field(i))
		}
	}
	assert.Equal(t, "GSTIN", BooksAliases()[FieldRecipientGSTIN][2])
	assert.Equal(t, []string{"IRN"}, GSTAliases()[FieldIRN])
}

func TestBuiltInTablesAreNotShared(t *testing.T) {
	a := BooksAliases()
	a[FieldIRN][0] = "mutated"
	assert.Equal(t, "IRN Number", BooksAliases()[FieldIRN][0])
}

func TestExtend(t *testing.T) {
	base := GSTAliases()
	ext := base.Extend(map[Field][]string{
		FieldIRN:          {"IRN No", "irn"},
		FieldReceiverName: {"Trade/Legal name"},
	})

	assert.Equal(t, []string{"IRN", "IRN No"}, ext[FieldIRN])
	assert.Equal(t, []string{"Receiver Name", "Trade/Legal name"}, ext[FieldReceiverName])
	assert.Equal(t, []string{"IRN"}, base[FieldIRN])
}

func TestLoadAliasFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aliases.yaml")
	content := `
books:
  invoice no: ["Voucher No"]
gst:
  RECEIVER NAME: ["Trade/Legal name"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadAliasFile(path)
	require.NoError(t, err)

	books, err := set.For(KindBooks)
	require.NoError(t, err)
	assert.Equal(t, "Voucher No", books[FieldInvoiceNo][len(books[FieldInvoiceNo])-1])
	assert.Equal(t, "Original Invoice Number (In case of amendment)", books[FieldInvoiceNo][0])

	gst, err := set.For(KindGST)
	require.NoError(t, err)
	assert.Contains(t, gst[FieldReceiverName], "Trade/Legal name")
}

func TestLoadAliasFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.toml")
	content := `
[books]
"TAXABLE VALUE" = ["Assessable Value"]

[gst]
"IRN NUMBER" = ["IRN No."]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	set, err := LoadAliasFile(path)
	require.NoError(t, err)
	assert.Contains(t, set.Books[FieldTaxableValue], "Assessable Value")
	assert.Contains(t, set.GST[FieldIRN], "IRN No.")
}

func TestLoadAliasFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadAliasFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("books:\n  HSN CODE: [\"HSN\"]\n"), 0o644))
	_, err = LoadAliasFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HSN CODE")

	set, err := LoadAliasFile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAliasSet(), set)
}
