package converter

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/gst-autofill/internal/logging"
	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// ErrSheetNotFound is returned when a selected sheet is not in the workbook.
var ErrSheetNotFound = workbook.ErrSheetNotFound

// ErrInvalidHeaderRow is returned for header rows below 1.
var ErrInvalidHeaderRow = errors.New("invalid header row")

// AllSheets selects every sheet of a workbook.
const AllSheets = "*"

// =============================================================================
// SHEET SELECTION
// =============================================================================

// ResolveSheets turns a user selection into an ordered list of sheet names.
//
// PARAMETERS:
//   - available: The workbook's sheets in workbook order.
//   - selection: The requested sheets.
//
// RETURNS:
//   - The first sheet when selection is empty.
//   - Every sheet when selection contains AllSheets.
//   - Otherwise selection in the given order, duplicates removed.
//   - ErrSheetNotFound for a name the workbook does not have.
func ResolveSheets(available, selection []string) ([]string, error) {
	if len(selection) == 0 {
		if len(available) == 0 {
			return []string{}, nil
		}
		return []string{available[0]}, nil
	}

	for _, s := range selection {
		if s == AllSheets {
			return append([]string{}, available...), nil
		}
	}

	known := make(map[string]bool, len(available))
	for _, s := range available {
		known[s] = true
	}

	resolved := make([]string, 0, len(selection))
	seen := make(map[string]bool, len(selection))
	for _, s := range selection {
		if !known[s] {
			return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, s)
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		resolved = append(resolved, s)
	}
	return resolved, nil
}

// =============================================================================
// COMBINER
// =============================================================================

// Combiner reads, maps and normalizes sheets and concatenates them.
type Combiner struct {
	aliases    schema.AliasSet
	normalizer *Normalizer
	logger     logrus.FieldLogger
}

// NewCombiner creates a Combiner. A nil normalizer uses PolicyZero without
// diagnostics; a nil logger discards output.
func NewCombiner(aliases schema.AliasSet, normalizer *Normalizer, logger logrus.FieldLogger) *Combiner {
	if normalizer == nil {
		normalizer = NewNormalizer(PolicyZero, nil)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Combiner{aliases: aliases, normalizer: normalizer, logger: logger}
}

// Combine builds one canonical table from the given sheets.
//
// PARAMETERS:
//   - wb: The opened workbook.
//   - headerRow: The 1-based header row used for every sheet.
//   - sheets: The sheets to read, in output order.
//   - kind: Selects the alias table.
//
// RETURNS:
//   - The combined table; empty when sheets is empty or every sheet is empty.
//   - One mapping report per sheet.
//   - An error if any sheet cannot be read. No partial table is returned.
func (c *Combiner) Combine(wb workbook.Workbook, headerRow int, sheets []string, kind schema.SourceKind) (*types.Table, []MappingReport, error) {
	if headerRow < 1 {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidHeaderRow, headerRow)
	}

	aliases, err := c.aliases.For(kind)
	if err != nil {
		return nil, nil, err
	}

	combined := types.NewTable(0)
	reports := make([]MappingReport, 0, len(sheets))

	for _, sheet := range sheets {
		src, err := wb.ReadSheet(sheet, headerRow)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, wb.Name(), err)
		}

		mapped, report := MapColumns(src, aliases)
		report.Source = kind

		c.normalizer.Apply(mapped, Origin{Source: kind, Sheet: sheet, RowNumbers: src.RowNumbers})
		combined.Append(mapped)
		reports = append(reports, report)

		c.logger.WithFields(logrus.Fields{
			"source":  kind,
			"sheet":   sheet,
			"rows":    mapped.Len(),
			"matched": report.MatchedCount(),
		}).Debug("Mapped sheet")
	}

	return combined, reports, nil
}

// Combine is Combiner.Combine with the built-in alias tables and the zero
// numeric policy.
func Combine(wb workbook.Workbook, headerRow int, sheets []string, kind schema.SourceKind) (*types.Table, error) {
	table, _, err := NewCombiner(schema.DefaultAliasSet(), nil, nil).Combine(wb, headerRow, sheets, kind)
	return table, err
}
