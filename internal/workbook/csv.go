package workbook

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// csvWorkbook exposes a delimited text file as a one-sheet workbook.
// The sheet is named after the file, without extension.
type csvWorkbook struct {
	name  string
	sheet string
	rows  [][]string
}

func openCSV(name string, r io.Reader, opts Options) (Workbook, error) {
	decoder, err := getDecoder(opts.Encoding)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(transform.NewReader(r, decoder))
	if err := configureReader(reader, opts); err != nil {
		return nil, err
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV %s: %w", name, err)
	}

	sheet := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return &csvWorkbook{name: name, sheet: sheet, rows: rows}, nil
}

func (w *csvWorkbook) Name() string { return w.name }

func (w *csvWorkbook) SheetNames() []string { return []string{w.sheet} }

// ReadSheet ignores headerRow: CSV exports always carry their header on row 1.
func (w *csvWorkbook) ReadSheet(sheet string, _ int) (*types.SourceTable, error) {
	if sheet != w.sheet {
		return nil, fmt.Errorf("%w: %q in %s", ErrSheetNotFound, sheet, w.name)
	}
	return buildSourceTable(sheet, w.rows, 1)
}

func (w *csvWorkbook) Close() error { return nil }

// configureReader applies delimiter settings and relaxes quoting rules.
func configureReader(reader *csv.Reader, opts Options) error {
	switch strings.ToLower(opts.Delimiter) {
	case "", ",", "comma":
		reader.Comma = ','
	case "\\t", "\t", "tab":
		reader.Comma = '\t'
	case "|", "pipe":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		runes := []rune(opts.Delimiter)
		if len(runes) != 1 {
			return fmt.Errorf("invalid CSV delimiter %q", opts.Delimiter)
		}
		reader.Comma = runes[0]
	}

	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return nil
}

// getDecoder returns a transformer producing UTF-8. A leading byte order
// mark always wins over the configured encoding.
func getDecoder(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8
	case "utf-16", "utf16":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1", "latin-1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported CSV encoding %q", name)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}
