package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// xlsxWorkbook reads Office Open XML workbooks.
type xlsxWorkbook struct {
	name string
	file *excelize.File
}

func openXLSX(name string, r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", name, err)
	}
	return &xlsxWorkbook{name: name, file: f}, nil
}

func (w *xlsxWorkbook) Name() string { return w.name }

func (w *xlsxWorkbook) SheetNames() []string { return w.file.GetSheetList() }

// ReadSheet reads cells without applying number formats, so date cells
// come back as spreadsheet serials and amounts keep full precision.
func (w *xlsxWorkbook) ReadSheet(sheet string, headerRow int) (*types.SourceTable, error) {
	if sheetIndex(w.SheetNames(), sheet) < 0 {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, w.name)
	}

	rows, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of sheet %q: %w", sheet, err)
	}

	return buildSourceTable(sheet, rows, headerRow)
}

func (w *xlsxWorkbook) Close() error { return w.file.Close() }
