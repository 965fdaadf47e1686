// =============================================================================
// GST Template Auto-Fill - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates one run
// for a Books source and/or a GST source, from workbook reading to the
// combined canonical tables.
//
// CONVERSION PIPELINE (per source):
//   1. Open the workbook (xlsx, xls or csv)
//   2. Resolve the sheet selection
//   3. Read each sheet at the configured header row
//   4. Map source columns onto the 12 canonical columns
//   5. Normalize numeric and date fields
//   6. Concatenate the sheets into one combined table
//
// ERRORS:
//   Only file-level failures (unreadable workbook, unknown sheet, invalid
//   header row) abort a run. Unmapped columns and unparseable values never
//   do; they are reported through the mapping reports and coercion issues.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/gst-autofill/internal/logging"
	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
	"github.com/ginjaninja78/gst-autofill/internal/validation"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// Default header rows. GST portal exports carry three metadata rows above
// the column labels.
const (
	DefaultBooksHeaderRow = 1
	DefaultGSTHeaderRow   = 4
)

// DefaultHeaderRow returns the default header row for a source kind.
func DefaultHeaderRow(kind schema.SourceKind) int {
	if kind == schema.KindGST {
		return DefaultGSTHeaderRow
	}
	return DefaultBooksHeaderRow
}

// =============================================================================
// REQUEST / RESULT STRUCTURES
// =============================================================================

// Source is one input file of a run.
type Source struct {
	// Name is the file name; its extension selects the reader.
	Name string

	// Path is read from disk when Reader is nil.
	Path string

	// Reader supplies the file content (e.g. an upload).
	Reader io.Reader

	// Sheets is the sheet selection (see ResolveSheets).
	Sheets []string

	// HeaderRow is the 1-based header row.
	HeaderRow int
}

// Request describes one run. Either source may be nil.
type Request struct {
	Books *Source
	GST   *Source
}

// Result represents the outcome of one run.
type Result struct {
	// Books is the combined Books table, nil when no Books source was given.
	Books *types.Table

	// GST is the combined GST table, nil when no GST source was given.
	GST *types.Table

	// Reports holds one mapping report per processed sheet, Books first.
	Reports []MappingReport

	// Issues are the coerced values of the run.
	Issues []*validation.Issue

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// SheetsProcessed is the number of sheets read across both sources.
	SheetsProcessed int

	// BooksRows is the number of rows in the Books table.
	BooksRows int

	// GSTRows is the number of rows in the GST table.
	GSTRows int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Options configure a Converter.
type Options struct {
	// NumericPolicy decides what unparseable numbers become. Default zero.
	NumericPolicy NumericPolicy

	// Aliases are the alias tables. Default: the built-in tables.
	Aliases *schema.AliasSet

	// Workbook controls CSV decoding.
	Workbook workbook.Options

	// Logger receives progress messages. Default: discarded.
	Logger logrus.FieldLogger
}

// Converter runs conversions. It holds no per-run state and may be shared.
type Converter struct {
	policy  NumericPolicy
	aliases schema.AliasSet
	wbOpts  workbook.Options
	logger  logrus.FieldLogger
}

// New creates a new Converter instance.
func New(opts Options) *Converter {
	c := &Converter{
		policy:  opts.NumericPolicy,
		aliases: schema.DefaultAliasSet(),
		wbOpts:  opts.Workbook,
		logger:  opts.Logger,
	}
	if c.policy == "" {
		c.policy = PolicyZero
	}
	if opts.Aliases != nil {
		c.aliases = *opts.Aliases
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the request.
//
// RETURNS:
//   - A Result with a table for every source that was given.
//   - An error if any source cannot be read; no partial result is returned.
func (c *Converter) Run(req Request) (*Result, error) {
	startTime := time.Now()

	issues := validation.NewCollector()
	combiner := NewCombiner(c.aliases, NewNormalizer(c.policy, issues), c.logger)
	result := &Result{}

	if req.Books != nil {
		table, reports, err := c.runSource(combiner, schema.KindBooks, req.Books)
		if err != nil {
			return nil, fmt.Errorf("failed to process books file: %w", err)
		}
		result.Books = table
		result.Reports = append(result.Reports, reports...)
	}

	if req.GST != nil {
		table, reports, err := c.runSource(combiner, schema.KindGST, req.GST)
		if err != nil {
			return nil, fmt.Errorf("failed to process GST file: %w", err)
		}
		result.GST = table
		result.Reports = append(result.Reports, reports...)
	}

	result.Issues = issues.Issues()
	result.Stats = ProcessingStats{
		SheetsProcessed: len(result.Reports),
		BooksRows:       result.Books.Len(),
		GSTRows:         result.GST.Len(),
		ProcessingTime:  time.Since(startTime),
	}

	c.logger.WithFields(logrus.Fields{
		"books_rows": result.Stats.BooksRows,
		"gst_rows":   result.Stats.GSTRows,
		"sheets":     result.Stats.SheetsProcessed,
		"coerced":    len(result.Issues),
		"elapsed":    result.Stats.ProcessingTime.String(),
	}).Info("Run complete")

	return result, nil
}

// runSource opens one source and combines its selected sheets.
func (c *Converter) runSource(combiner *Combiner, kind schema.SourceKind, src *Source) (*types.Table, []MappingReport, error) {
	if src.HeaderRow < 1 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidHeaderRow, src.HeaderRow)
	}

	wb, err := c.open(src)
	if err != nil {
		return nil, nil, err
	}
	defer wb.Close()

	sheets, err := ResolveSheets(wb.SheetNames(), src.Sheets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve sheets of %s: %w", wb.Name(), err)
	}

	c.logger.WithFields(logrus.Fields{
		"source":     kind,
		"file":       wb.Name(),
		"sheets":     sheets,
		"header_row": src.HeaderRow,
	}).Info("Processing source")

	return combiner.Combine(wb, src.HeaderRow, sheets, kind)
}

func (c *Converter) open(src *Source) (workbook.Workbook, error) {
	if src.Reader != nil {
		name := src.Name
		if name == "" {
			name = src.Path
		}
		return workbook.OpenReader(name, src.Reader, c.wbOpts)
	}
	if src.Path == "" {
		return nil, fmt.Errorf("source has neither a path nor a reader")
	}
	return workbook.Open(src.Path, c.wbOpts)
}
