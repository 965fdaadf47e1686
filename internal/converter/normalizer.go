package converter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"

	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/types"
	"github.com/ginjaninja78/gst-autofill/internal/validation"
)

// =============================================================================
// NUMERIC POLICY
// =============================================================================

// NumericPolicy decides what an unparseable numeric cell becomes.
type NumericPolicy string

const (
	// PolicyZero replaces unparseable numbers (including blanks) with 0.
	PolicyZero NumericPolicy = "zero"

	// PolicyMissing leaves unparseable numbers as missing values, exported
	// as empty cells.
	PolicyMissing NumericPolicy = "missing"
)

// ParseNumericPolicy converts configuration text into a NumericPolicy.
// An empty string selects PolicyZero.
func ParseNumericPolicy(s string) (NumericPolicy, error) {
	switch NumericPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyZero:
		return PolicyZero, nil
	case PolicyMissing:
		return PolicyMissing, nil
	default:
		return "", fmt.Errorf("invalid numeric policy %q (want zero or missing)", s)
	}
}

// =============================================================================
// DATE PARSING
// =============================================================================

// DateLayout is the output format of the date field (DD-MM-YYYY).
const DateLayout = "02-01-2006"

// dateLayouts are tried in order after the serial check.
var dateLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2-Jan-2006",
	"2-Jan-06",
	"2006-1-2",
	"2006/1/2",
	"2.1.2006",
	"2.1.06",
	"2006.1.2",
}

var (
	serialPattern = regexp.MustCompile(`^\d+(\.\d*)?$`)

	// serialEpoch is day 0 of spreadsheet date serials.
	serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

	// maxSerial is 9999-12-31.
	maxSerial = decimal.NewFromInt(2958465)
)

// ParseDate interprets a source date cell.
//
// The text is tried, first success wins, as:
//  1. a spreadsheet serial (the part before the first space, when the rest
//     is empty or a time of day), truncated to whole days;
//  2. one of the explicit day-first and year-first layouts;
//  3. a permissive parse preferring day before month.
func ParseDate(text string) (time.Time, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return time.Time{}, false
	}

	// Unlike a plain "digits before the first space" check, a serial must
	// stand alone or be followed by a time of day: "45000 abc" is not a
	// serial, and "05 Jan 2024" is a date rather than serial 5. A leading
	// dot (".5") is not read as a serial either.
	head, rest, _ := strings.Cut(s, " ")
	rest = strings.TrimSpace(rest)
	if serialPattern.MatchString(head) && (rest == "" || strings.Contains(rest, ":")) {
		if t, ok := fromSerial(head); ok {
			return t, true
		}
	}

	candidates := []string{s}
	if head != s {
		candidates = append(candidates, head)
	}
	for _, candidate := range candidates {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t, true
			}
		}
	}

	if t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(false)); err == nil {
		return t, true
	}

	return time.Time{}, false
}

// NormalizeDate formats a source date cell as DD-MM-YYYY, or "" when the
// text is blank or not a recognizable date.
func NormalizeDate(text string) string {
	t, ok := ParseDate(text)
	if !ok {
		return ""
	}
	return t.Format(DateLayout)
}

func fromSerial(s string) (time.Time, bool) {
	d, err := decimal.NewFromString(strings.TrimSuffix(s, "."))
	if err != nil || d.GreaterThan(maxSerial) {
		return time.Time{}, false
	}
	return serialEpoch.AddDate(0, 0, int(d.IntPart())), true
}

// =============================================================================
// NUMBER PARSING
// =============================================================================

// ParseNumber parses trimmed numeric text. Thousands separators, currency
// symbols and blanks are not numbers.
func ParseNumber(text string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Origin locates a mapped table in its source, for diagnostics.
type Origin struct {
	Source     schema.SourceKind
	Sheet      string
	RowNumbers []int
}

func (o Origin) rowNumber(i int) int {
	if i < len(o.RowNumbers) {
		return o.RowNumbers[i]
	}
	return 0
}

// Normalizer coerces the numeric and date fields of mapped tables.
type Normalizer struct {
	policy NumericPolicy
	issues *validation.Collector
}

// NewNormalizer creates a Normalizer. issues may be nil when diagnostics
// are not needed.
func NewNormalizer(policy NumericPolicy, issues *validation.Collector) *Normalizer {
	if policy == "" {
		policy = PolicyZero
	}
	return &Normalizer{policy: policy, issues: issues}
}

// NormalizeNumber converts one numeric cell according to the policy.
// The second return value is false when the text had to be coerced.
func (n *Normalizer) NormalizeNumber(text string) (types.Cell, bool) {
	if d, ok := ParseNumber(text); ok {
		return types.NumberCell(d), true
	}
	if n.policy == PolicyMissing {
		return types.Cell{}, false
	}
	return types.NumberCell(decimal.Zero), false
}

// Apply normalizes every row of table in place.
//
// Numeric fields follow the policy; the date field becomes DD-MM-YYYY text
// or "". Non-blank values that had to be coerced are recorded as warnings.
func (n *Normalizer) Apply(table *types.Table, origin Origin) {
	for i := range table.Rows {
		row := &table.Rows[i]

		for _, f := range schema.NumericFields {
			raw := row[f].Text
			cell, ok := n.NormalizeNumber(raw)
			row[f] = cell
			if !ok && strings.TrimSpace(raw) != "" {
				n.record(origin, i, f, raw, n.numberRule())
			}
		}

		raw := row[schema.DateField].Text
		row[schema.DateField] = types.TextCell(NormalizeDate(raw))
		if row[schema.DateField].Text == "" && strings.TrimSpace(raw) != "" {
			n.record(origin, i, schema.DateField, raw, validation.RuleDateBlanked)
		}
	}
}

func (n *Normalizer) numberRule() string {
	if n.policy == PolicyMissing {
		return validation.RuleNumberMissing
	}
	return validation.RuleNumberZero
}

func (n *Normalizer) record(origin Origin, i int, f schema.Field, value, rule string) {
	if n.issues == nil {
		return
	}

	var message string
	switch rule {
	case validation.RuleNumberZero:
		message = "not a number, replaced by 0"
	case validation.RuleNumberMissing:
		message = "not a number, left empty"
	default:
		message = "unrecognized date, left empty"
	}

	n.issues.Add(&validation.Issue{
		Severity:  validation.SeverityWarning,
		Source:    string(origin.Source),
		Sheet:     origin.Sheet,
		RowNumber: origin.rowNumber(i),
		Field:     f.String(),
		Value:     value,
		Rule:      rule,
		Message:   message,
	})
}
