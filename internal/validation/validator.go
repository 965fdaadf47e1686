// =============================================================================
// GST Template Auto-Fill - Coercion Diagnostics
// =============================================================================
//
// This package records the values the normalizer had to coerce while
// building a canonical table:
//   - Numeric text that could not be parsed (replaced by 0 or left missing)
//   - Date text that could not be parsed (replaced by an empty cell)
//
// SEVERITY:
//   Coercions never fail a run. Every issue is a warning and exists only so
//   the user can find the cells that changed. Blank source cells are not
//   issues: an empty value coerced to zero is the expected fill.
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// =============================================================================
// ISSUE TYPES
// =============================================================================

// SeverityWarning is the severity of every coercion issue. Coercions never
// stop a run.
const SeverityWarning = "warning"

// Rules describing what happened to a value.
const (
	// RuleNumberZero: unparseable numeric text replaced by 0.
	RuleNumberZero = "number_coerced_zero"

	// RuleNumberMissing: unparseable numeric text left as a missing value.
	RuleNumberMissing = "number_missing"

	// RuleDateBlanked: unparseable date text replaced by an empty cell.
	RuleDateBlanked = "date_blanked"
)

// Issue is a single coerced cell.
type Issue struct {
	// Severity is always SeverityWarning for coercions.
	Severity string

	// Source is the source kind ("books" or "gst").
	Source string

	// Sheet is the sheet the value came from.
	Sheet string

	// RowNumber is the 1-based spreadsheet row of the value, or 0 if unknown.
	RowNumber int

	// Field is the canonical column name.
	Field string

	// Value is the original text.
	Value string

	// Rule is the coercion that was applied.
	Rule string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Issue) Error() string {
	location := e.Sheet
	if e.RowNumber > 0 {
		location = fmt.Sprintf("%s row %d", e.Sheet, e.RowNumber)
	}
	if e.Source != "" {
		location = e.Source + "/" + location
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// COLLECTOR
// =============================================================================

// Collector accumulates issues during a run. It is safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	issues []*Issue
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{issues: make([]*Issue, 0)}
}

// Add records an issue. A blank severity defaults to warning.
func (c *Collector) Add(issue *Issue) {
	if c == nil || issue == nil {
		return
	}
	if issue.Severity == "" {
		issue.Severity = SeverityWarning
	}

	c.mu.Lock()
	c.issues = append(c.issues, issue)
	c.mu.Unlock()
}

// Issues returns a copy of the recorded issues in insertion order.
func (c *Collector) Issues() []*Issue {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Len returns the number of recorded issues.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.issues)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary aggregates issues for reporting.
type Summary struct {
	// Total is the number of issues.
	Total int

	// WarningCount is the number of warnings.
	WarningCount int

	// ByRule counts issues per rule.
	ByRule map[string]int

	// ByField counts issues per canonical column.
	ByField map[string]int
}

// Summarize aggregates issues.
func Summarize(issues []*Issue) Summary {
	s := Summary{
		Total:   len(issues),
		ByRule:  make(map[string]int),
		ByField: make(map[string]int),
	}
	for _, issue := range issues {
		if issue.Severity == SeverityWarning {
			s.WarningCount++
		}
		s.ByRule[issue.Rule]++
		s.ByField[issue.Field]++
	}
	return s
}

// =============================================================================
// OUTPUT
// =============================================================================

// FormatIssues formats issues for display or logging.
//
// PARAMETERS:
//   - issues: The issues to format.
//
// RETURNS:
//   - A formatted string containing all issues.
func FormatIssues(issues []*Issue) string {
	if len(issues) == 0 {
		return "No values were coerced.\n"
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("%d value(s) were coerced:\n\n", len(issues)))

	for i, issue := range issues {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, issue.Error()))
	}

	summary := Summarize(issues)
	rules := make([]string, 0, len(summary.ByRule))
	for rule := range summary.ByRule {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	builder.WriteString("\nBy rule:\n")
	for _, rule := range rules {
		builder.WriteString(fmt.Sprintf("  %-22s %d\n", rule, summary.ByRule[rule]))
	}

	return builder.String()
}

// WriteIssueLog writes issues to a log file with a timestamped header.
//
// PARAMETERS:
//   - issues: The issues to write.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteIssueLog(issues []*Issue, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Coercion log generated %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(writer, strings.Repeat("=", 60))
	writer.WriteString(FormatIssues(issues))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write issue log: %w", err)
	}
	return file.Close()
}
