// =============================================================================
// GST Template Auto-Fill - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for CLI runs, including:
//   - Output directory management
//   - Per-run directory naming
//   - Artifact writing
//   - Run summary and coercion log generation
//
// RUN DIRECTORIES:
//   With an empty run directory format every run writes straight into the
//   output directory. A format such as "{date}_{uuid}" gives each run its
//   own subdirectory so artifacts with fixed names never overwrite each
//   other.
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/validation"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a run.
type FileManager struct {
	// OutputDir is the directory where output files are placed.
	OutputDir string

	// RunDirFormat names a per-run subdirectory (see ExpandNameFormat).
	// Empty means no subdirectory.
	RunDirFormat string

	now func() time.Time
}

// NewFileManager creates a new FileManager.
func NewFileManager(outputDir, runDirFormat string) *FileManager {
	return &FileManager{
		OutputDir:    outputDir,
		RunDirFormat: runDirFormat,
		now:          time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureDirectories() error {
	if err := os.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// PrepareRunDir creates and returns the directory for one run.
//
// RETURNS:
//   - OutputDir itself when RunDirFormat is empty.
//   - Otherwise OutputDir joined with the expanded format.
func (fm *FileManager) PrepareRunDir() (string, error) {
	if err := fm.EnsureDirectories(); err != nil {
		return "", err
	}
	if strings.TrimSpace(fm.RunDirFormat) == "" {
		return fm.OutputDir, nil
	}

	name := ExpandNameFormat(fm.RunDirFormat, fm.now(), nil)
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid run directory name %q", name)
	}

	dir := filepath.Join(fm.OutputDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return dir, nil
}

// =============================================================================
// NAMING
// =============================================================================

// ExpandNameFormat fills the placeholders of a name format.
//
// PARAMETERS:
//   - format: The format string.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Date (YYYYMMDD)
//     {time}      - Time (HHMMSS)
//   - now: The time used for the time placeholders.
//   - params: Extra placeholder values, keyed without braces.
//
// EXAMPLE:
//
//	format: "{date}_{uuid}"
//	output: "20240115_a1b2c3d4-e5f6-7890-abcd-ef1234567890"
func ExpandNameFormat(format string, now time.Time, params map[string]string) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	return result
}

// =============================================================================
// ARTIFACTS
// =============================================================================

// WriteArtifact writes data to dir/name through a temporary file so a
// partially written artifact is never left behind.
//
// RETURNS:
//   - The path to the written file.
func WriteArtifact(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return path, nil
}

// =============================================================================
// COERCION LOG
// =============================================================================

// WriteIssueLog writes the coerced values of a run to
// coercion_log_<timestamp>.txt in dir.
//
// RETURNS:
//   - The path to the log file, or "" when there are no issues.
//   - An error if writing fails.
func WriteIssueLog(issues []*validation.Issue, dir string, now time.Time) (string, error) {
	if len(issues) == 0 {
		return "", nil
	}

	logPath := filepath.Join(dir, fmt.Sprintf("coercion_log_%s.txt", now.Format("20060102_150405")))
	if err := validation.WriteIssueLog(issues, logPath); err != nil {
		return "", err
	}
	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a run.
type RunSummary struct {
	StartTime time.Time
	EndTime   time.Time
	Sources   []SourceInfo
	Sheets    []converter.MappingReport
	Coerced   int
	Output    string
	DryRun    bool
}

// SourceInfo describes one input file of a run.
type SourceInfo struct {
	Kind      schema.SourceKind
	File      string
	HeaderRow int
	Rows      int
}

// NewRunSummary builds a summary from a converter result.
func NewRunSummary(start time.Time, req converter.Request, result *converter.Result) RunSummary {
	summary := RunSummary{StartTime: start, EndTime: time.Now()}
	if result == nil {
		return summary
	}

	if req.Books != nil {
		summary.Sources = append(summary.Sources, sourceInfo(schema.KindBooks, req.Books, result.Stats.BooksRows))
	}
	if req.GST != nil {
		summary.Sources = append(summary.Sources, sourceInfo(schema.KindGST, req.GST, result.Stats.GSTRows))
	}
	summary.Sheets = result.Reports
	summary.Coerced = len(result.Issues)
	return summary
}

func sourceInfo(kind schema.SourceKind, src *converter.Source, rows int) SourceInfo {
	file := src.Path
	if file == "" {
		file = src.Name
	}
	return SourceInfo{Kind: kind, File: file, HeaderRow: src.HeaderRow, Rows: rows}
}

// WriteSummaryLog writes a run summary to run_summary_<timestamp>.txt.
//
// PARAMETERS:
//   - summary: The run summary.
//   - dir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, dir string) (string, error) {
	summaryPath := filepath.Join(dir, fmt.Sprintf("run_summary_%s.txt", summary.StartTime.Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	writer.WriteString(FormatSummary(summary))

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// FormatSummary renders a run summary as text.
func FormatSummary(summary RunSummary) string {
	var b strings.Builder
	rule := strings.Repeat("=", 80) + "\n"
	thin := strings.Repeat("-", 80) + "\n"

	b.WriteString("GST Template Auto-Fill - Run Summary\n")
	b.WriteString(rule + "\n")
	b.WriteString("Run Information:\n")
	fmt.Fprintf(&b, "  Start Time:     %s\n", summary.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  End Time:       %s\n", summary.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Duration:       %s\n", summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(&b, "  Coerced Values: %d\n", summary.Coerced)
	switch {
	case summary.DryRun:
		b.WriteString("  Output:         (dry run, nothing written)\n")
	case summary.Output == "":
		b.WriteString("  Output:         (nothing to export)\n")
	default:
		fmt.Fprintf(&b, "  Output:         %s\n", summary.Output)
	}
	b.WriteString("\n")

	if len(summary.Sources) > 0 {
		b.WriteString("Sources:\n")
		b.WriteString(thin)
		for _, src := range summary.Sources {
			fmt.Fprintf(&b, "  %-6s %s (header row %d, %d rows)\n", src.Kind, src.File, src.HeaderRow, src.Rows)
		}
		b.WriteString("\n")
	}

	for _, sheet := range summary.Sheets {
		fmt.Fprintf(&b, "Sheet %s/%s: %d rows, %d of %d columns mapped\n",
			sheet.Source, sheet.Sheet, sheet.Rows, sheet.MatchedCount(), schema.FieldCount)
		b.WriteString(thin)
		for _, m := range sheet.Fields {
			switch {
			case m.Matched:
				fmt.Fprintf(&b, "  %-24s <- %s\n", m.Field, m.SourceHeader)
			case m.Suggestion != "":
				fmt.Fprintf(&b, "  %-24s (not found, closest header: %q)\n", m.Field, m.Suggestion)
			default:
				fmt.Fprintf(&b, "  %-24s (not found)\n", m.Field)
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(rule)
	b.WriteString("End of Summary\n")
	return b.String()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a regular file exists.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
