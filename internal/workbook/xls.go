package workbook

import (
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"

	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// xlsWorkbook holds a fully loaded legacy .xls workbook.
// xlsReader only opens files by path, so the stream is spooled to a
// temporary file and every sheet is read up front.
type xlsWorkbook struct {
	name   string
	sheets []string
	rows   map[string][][]string
}

func openXLS(name string, r io.Reader) (Workbook, error) {
	tmp, err := os.CreateTemp("", "autofill-*.xls")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, r); err != nil {
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to spool %s: %w", name, err)
	}

	book, err := xls.OpenFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}

	return loadXLSSheets(name, &book)
}

// xlsSheetSource is the part of an xlsReader workbook used to load sheets.
type xlsSheetSource interface {
	GetNumberSheets() int
	GetSheet(sheetID int) (*xls.Sheet, error)
}

// loadXLSSheets reads every sheet of book. A sheet that cannot be read fails
// the whole workbook.
func loadXLSSheets(name string, book xlsSheetSource) (*xlsWorkbook, error) {
	wb := &xlsWorkbook{name: name, rows: make(map[string][][]string)}
	for i := 0; i < book.GetNumberSheets(); i++ {
		sheet, err := book.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %d of %s: %w", i, name, err)
		}
		if sheet == nil {
			return nil, fmt.Errorf("failed to read sheet %d of %s: sheet is empty", i, name)
		}

		var rows [][]string
		for _, row := range sheet.GetRows() {
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			var cells []string
			for _, col := range row.GetCols() {
				if col == nil {
					cells = append(cells, "")
					continue
				}
				cells = append(cells, col.GetString())
			}
			rows = append(rows, cells)
		}

		sheetName := sheet.GetName()
		wb.sheets = append(wb.sheets, sheetName)
		wb.rows[sheetName] = rows
	}

	return wb, nil
}

func (w *xlsWorkbook) Name() string { return w.name }

func (w *xlsWorkbook) SheetNames() []string {
	return append([]string(nil), w.sheets...)
}

func (w *xlsWorkbook) ReadSheet(sheet string, headerRow int) (*types.SourceTable, error) {
	rows, ok := w.rows[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, w.name)
	}
	return buildSourceTable(sheet, rows, headerRow)
}

func (w *xlsWorkbook) Close() error { return nil }
