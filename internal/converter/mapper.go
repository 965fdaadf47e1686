package converter

import (
	"github.com/schollz/closestmatch"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// =============================================================================
// MAPPING REPORT
// =============================================================================

// FieldMatch describes how one canonical field was resolved in a sheet.
type FieldMatch struct {
	// Field is the canonical field.
	Field schema.Field

	// Matched is true when one of the field's aliases was found.
	Matched bool

	// Alias is the alias that matched.
	Alias string

	// SourceHeader is the source column label that was copied.
	SourceHeader string

	// SourceIndex is the 0-based source column, or -1 when unmatched.
	SourceIndex int

	// Suggestion is the closest source header for an unmatched field.
	// It is only a hint for extending the alias file; it is never used
	// to fill the column.
	Suggestion string
}

// MappingReport describes the column mapping of one sheet.
type MappingReport struct {
	Source schema.SourceKind
	Sheet  string
	Rows   int
	Fields [schema.FieldCount]FieldMatch
}

// MatchedCount returns the number of canonical fields found in the sheet.
func (r *MappingReport) MatchedCount() int {
	n := 0
	for _, m := range r.Fields {
		if m.Matched {
			n++
		}
	}
	return n
}

// Unmatched returns the fields that were filled with empty values.
func (r *MappingReport) Unmatched() []schema.Field {
	var fields []schema.Field
	for _, m := range r.Fields {
		if !m.Matched {
			fields = append(fields, m.Field)
		}
	}
	return fields
}

// =============================================================================
// COLUMN MAPPER
// =============================================================================

// MapColumns projects a source sheet onto the canonical columns.
//
// PARAMETERS:
//   - src: The sheet as read from the workbook.
//   - aliases: The alias table of the sheet's source kind.
//
// RETURNS:
//   - A table with exactly the canonical columns and one row per source row.
//   - A report of which alias and source column each field came from.
//
// MATCHING LOGIC:
//   Fields are resolved in schema order. For each field the aliases are
//   tried in order; the first alias whose normalized form equals the
//   normalized form of a source header wins, and among duplicate source
//   headers the leftmost one is used. Values are copied verbatim. A field
//   with no matching alias becomes a column of empty strings.
func MapColumns(src *types.SourceTable, aliases schema.AliasTable) (*types.Table, MappingReport) {
	report := MappingReport{Sheet: src.Sheet, Rows: len(src.Rows)}

	// Leftmost column wins for duplicate keys.
	columns := make(map[string]int, len(src.Headers))
	keys := make([]string, 0, len(src.Headers))
	for i, header := range src.Headers {
		key := schema.NormalizeHeader(header)
		if key == "" {
			continue
		}
		if _, seen := columns[key]; !seen {
			columns[key] = i
			keys = append(keys, key)
		}
	}

	var hints *closestmatch.ClosestMatch

	for f := schema.Field(0); f < schema.FieldCount; f++ {
		match := FieldMatch{Field: f, SourceIndex: -1}

		for _, alias := range aliases[f] {
			if idx, ok := columns[schema.NormalizeHeader(alias)]; ok {
				match.Matched = true
				match.Alias = alias
				match.SourceIndex = idx
				match.SourceHeader = src.Headers[idx]
				break
			}
		}

		if !match.Matched && len(keys) > 0 {
			if hints == nil {
				hints = closestmatch.New(keys, []int{2, 3})
			}
			match.Suggestion = suggest(hints, columns, src.Headers, f, aliases[f])
		}

		report.Fields[f] = match
	}

	values := make([][]string, schema.FieldCount)
	for f, match := range report.Fields {
		if match.Matched {
			values[f] = src.Column(match.SourceIndex)
		}
	}

	table := types.NewTable(len(src.Rows))
	for r := range src.Rows {
		var row types.Row
		for f, column := range values {
			if column != nil {
				row[f] = types.TextCell(column[r])
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, report
}

// suggest returns the source header closest to the field name or any of
// its aliases.
func suggest(cm *closestmatch.ClosestMatch, columns map[string]int, headers []string, f schema.Field, aliases []string) string {
	queries := append([]string{f.String()}, aliases...)
	for _, q := range queries {
		key := cm.Closest(schema.NormalizeHeader(q))
		if idx, ok := columns[key]; ok {
			return headers[idx]
		}
	}
	return ""
}
