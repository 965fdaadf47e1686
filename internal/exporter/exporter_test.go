package exporter

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
)

func sampleTable(invoices ...string) *types.Table {
	table := types.NewTable(len(invoices))
	for _, inv := range invoices {
		var row types.Row
		row[schema.FieldInvoiceNo] = types.TextCell(inv)
		row[schema.FieldInvoiceDate] = types.TextCell("05-01-2024")
		row[schema.FieldInvoiceValue] = types.NumberCell(decimal.RequireFromString("1180.5"))
		row[schema.FieldTaxableValue] = types.NumberCell(decimal.Zero)
		table.Rows = append(table.Rows, row)
	}
	return table
}

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet}, f.GetSheetList())
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestWriteXLSX(t *testing.T) {
	data, err := RenderXLSX(BooksSheetName, sampleTable("INV001", "INV002"))
	require.NoError(t, err)

	rows := readSheet(t, data, BooksSheetName)
	require.Len(t, rows, 3)
	assert.Equal(t, schema.ColumnNames(), rows[0])
	assert.Equal(t, "INV001", rows[1][schema.FieldInvoiceNo])
	assert.Equal(t, "05-01-2024", rows[1][schema.FieldInvoiceDate])
	assert.Equal(t, "1180.5", rows[1][schema.FieldInvoiceValue])
	assert.Equal(t, "0", rows[1][schema.FieldTaxableValue])

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// Missing numbers are empty cells.
	value, err := f.GetCellValue(BooksSheetName, "J2")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	cellType, err := f.GetCellType(BooksSheetName, "E2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, cellType)
	assert.NotEqual(t, excelize.CellTypeInlineString, cellType)
}

func TestWriteXLSX_HeaderOnly(t *testing.T) {
	data, err := RenderXLSX(GSTSheetName, types.NewTable(0))
	require.NoError(t, err)

	rows := readSheet(t, data, GSTSheetName)
	require.Len(t, rows, 1)
	assert.Equal(t, schema.ColumnNames(), rows[0])
}

func TestBuild_NothingToExport(t *testing.T) {
	artifact, err := Build(nil, nil)
	require.NoError(t, err)
	assert.Nil(t, artifact)

	artifact, err = Build(types.NewTable(0), types.NewTable(0))
	require.NoError(t, err)
	assert.Nil(t, artifact)
}

func TestBuild_SingleTableIsStandalone(t *testing.T) {
	artifact, err := Build(types.NewTable(0), sampleTable("G1"))
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, GSTFileName, artifact.Name)
	assert.Equal(t, XLSXContentType, artifact.ContentType)
	assert.False(t, artifact.IsArchive())
	assert.Len(t, readSheet(t, artifact.Data, GSTSheetName), 2)

	artifact, err = Build(sampleTable("B1"), nil)
	require.NoError(t, err)
	assert.Equal(t, BooksFileName, artifact.Name)
}

func TestBuild_BothTablesAreArchived(t *testing.T) {
	artifact, err := Build(sampleTable("B1"), sampleTable("G1", "G2"))
	require.NoError(t, err)
	require.NotNil(t, artifact)

	assert.Equal(t, ArchiveFileName, artifact.Name)
	assert.True(t, artifact.IsArchive())
	assert.Equal(t, []string{BooksFileName, GSTFileName}, artifact.Files)

	zr, err := zip.NewReader(bytes.NewReader(artifact.Data), int64(len(artifact.Data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, BooksFileName, zr.File[0].Name)
	assert.Equal(t, GSTFileName, zr.File[1].Name)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	inner, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Len(t, readSheet(t, inner, GSTSheetName), 3)
}
