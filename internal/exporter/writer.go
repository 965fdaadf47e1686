package exporter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// excelMaxRows is the row limit of a worksheet.
const excelMaxRows = 1048576

// WriteXLSX streams a canonical table into a single-sheet workbook.
//
// PARAMETERS:
//   - w: The destination.
//   - sheet: The worksheet name.
//   - table: The rows to write below the canonical header.
//
// Numeric fields are written as numbers and missing numbers as empty
// cells. Every other field, including the date, is written as text.
func WriteXLSX(w io.Writer, sheet string, table *types.Table) error {
	if table.Len()+1 > excelMaxRows {
		return fmt.Errorf("table has %d rows, worksheet limit is %d", table.Len(), excelMaxRows-1)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	defaultSheet := file.GetSheetName(0)
	if defaultSheet != sheet {
		if err := file.SetSheetName(defaultSheet, sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	}

	stream, err := file.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	headerID, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	headers := make([]interface{}, schema.FieldCount)
	for i, name := range table.Columns() {
		headers[i] = excelize.Cell{StyleID: headerID, Value: name}
	}
	if err := stream.SetRow("A1", headers); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	if table != nil {
		for i := range table.Rows {
			cells := make([]interface{}, schema.FieldCount)
			for f, cell := range table.Rows[i] {
				cells[f] = cellValue(schema.Field(f), cell)
			}
			if err := stream.SetRow(fmt.Sprintf("A%d", i+2), cells); err != nil {
				return fmt.Errorf("failed to write row %d: %w", i+2, err)
			}
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// RenderXLSX is WriteXLSX into memory.
func RenderXLSX(sheet string, table *types.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sheet, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellValue(f schema.Field, cell types.Cell) interface{} {
	if f.IsNumeric() {
		if !cell.Number.Valid {
			return nil
		}
		return cell.Number.Decimal.InexactFloat64()
	}
	return cell.Text
}
