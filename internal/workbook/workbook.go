// =============================================================================
// GST Template Auto-Fill - Workbook Reader
// =============================================================================
//
// This package opens user-supplied source files and reads individual sheets
// as SourceTables. Supported formats:
//   - .xlsx / .xlsm : Office Open XML workbooks (excelize)
//   - .xls          : legacy BIFF workbooks (xlsReader)
//   - .csv          : delimited text, exposed as a single-sheet workbook
//
// HEADER ROW:
//   Sheets are read with a 1-based header row. Rows above it are ignored
//   (GST portal exports carry several metadata rows above the real header).
//   CSV files always use row 1 as the header.
//
// =============================================================================

package workbook

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// ErrUnsupportedFormat is returned for file extensions the reader cannot open.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ErrSheetNotFound is returned when a requested sheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is an opened source file.
type Workbook interface {
	// Name is the original file name.
	Name() string

	// SheetNames lists the sheets in workbook order.
	SheetNames() []string

	// ReadSheet reads one sheet using the given 1-based header row.
	ReadSheet(sheet string, headerRow int) (*types.SourceTable, error)

	// Close releases any resources held by the workbook.
	Close() error
}

// Options control how delimited text files are decoded.
type Options struct {
	// Delimiter is the CSV field separator. Accepts a single character or
	// one of "tab", "pipe", "semicolon". Default ",".
	Delimiter string

	// Encoding is the CSV text encoding: utf-8, utf-16, windows-1252,
	// iso-8859-1. Default utf-8.
	Encoding string
}

// =============================================================================
// OPEN FUNCTIONS
// =============================================================================

// Open opens a workbook from disk.
func Open(path string, opts Options) (Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return OpenReader(filepath.Base(path), f, opts)
}

// OpenReader opens a workbook from a stream. The format is chosen from the
// extension of name.
func OpenReader(name string, r io.Reader, opts Options) (Workbook, error) {
	switch Format(name) {
	case "xlsx":
		return openXLSX(name, r)
	case "xls":
		return openXLS(name, r)
	case "csv":
		return openCSV(name, r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// OpenBytes is OpenReader over an in-memory buffer.
func OpenBytes(name string, data []byte, opts Options) (Workbook, error) {
	return OpenReader(name, bytes.NewReader(data), opts)
}

// Format returns the normalized format for a file name: "xlsx", "xls",
// "csv" or "" when unsupported.
func Format(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return "xlsx"
	case ".xls":
		return "xls"
	case ".csv", ".txt":
		return "csv"
	default:
		return ""
	}
}

// =============================================================================
// TABLE BUILDING
// =============================================================================

// buildSourceTable turns raw sheet rows into a SourceTable.
//
// PARAMETERS:
//   - sheet: The sheet name.
//   - rows: All rows of the sheet, top to bottom.
//   - headerRow: The 1-based row holding the column labels.
//
// A header row beyond the end of the sheet yields an empty table.
func buildSourceTable(sheet string, rows [][]string, headerRow int) (*types.SourceTable, error) {
	if headerRow < 1 {
		return nil, fmt.Errorf("header row must be at least 1, got %d", headerRow)
	}

	table := &types.SourceTable{
		Sheet:      sheet,
		HeaderRow:  headerRow,
		Headers:    []string{},
		Rows:       [][]string{},
		RowNumbers: []int{},
	}

	offset := headerRow - 1
	if offset >= len(rows) {
		return table, nil
	}

	// Data rows may be wider than the header row.
	width := len(rows[offset])
	for _, row := range rows[offset+1:] {
		if len(row) > width {
			width = len(row)
		}
	}

	table.Headers = cleanHeaders(rows[offset], width)

	for i, row := range rows[offset+1:] {
		if isRowEmpty(row) {
			continue
		}
		cells := make([]string, width)
		copy(cells, row)
		table.Rows = append(table.Rows, cells)
		table.RowNumbers = append(table.RowNumbers, headerRow+i+1)
	}

	return table, nil
}

// cleanHeaders trims header labels and names blank ones by position.
func cleanHeaders(raw []string, width int) []string {
	headers := make([]string, width)
	for i := 0; i < width; i++ {
		var header string
		if i < len(raw) {
			header = strings.TrimSpace(raw[i])
		}
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		headers[i] = header
	}
	return headers
}

// isRowEmpty checks if a row contains only blank cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func sheetIndex(names []string, sheet string) int {
	for i, n := range names {
		if n == sheet {
			return i
		}
	}
	return -1
}
