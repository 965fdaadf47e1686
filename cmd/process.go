// =============================================================================
// GST Template Auto-Fill - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the auto-fill pipeline
// on local files and writes the result to the output directory.
//
// COMMAND USAGE:
//   autofill process [flags]
//
// PROCESSING PIPELINE:
//   1. Resolve configuration and flags
//   2. For each given source (Books, GST):
//      a. Open the workbook
//      b. Resolve the selected sheets
//      c. Map every sheet onto the template columns
//      d. Normalize dates and numbers
//      e. Combine the sheets in selection order
//   3. Build the artifact (one workbook, or a zip of both)
//   4. Write the artifact, run summary and coercion log
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gst-autofill/internal/config"
	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/exporter"
	"github.com/ginjaninja78/gst-autofill/internal/validation"
	"github.com/ginjaninja78/gst-autofill/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// processOptions holds the flags that are not configuration settings.
type processOptions struct {
	BooksPath   string
	BooksSheets []string
	GSTPath     string
	GSTSheets   []string
	DryRun      bool
}

var procOpts processOptions

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Auto-fill the templates from Books and/or GST files",
	Long: `The process command maps the Books file, the GST file, or both onto the
standard twelve-column template.

With a single source the output is that source's template workbook. With
both sources the two workbooks are bundled into GST_Books_Templates.zip.

Sheet selection (--books-sheet, --gst-sheet) may be repeated; "*" selects
every sheet. Without a selection the first sheet is used.

Unless write_summary is disabled, a run summary listing the matched columns
and a log of coerced values are written next to the output.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}
		return runProcess(cfg, logger, procOpts, cmd.OutOrStdout())
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.StringVar(&procOpts.BooksPath, "books", "", "Path to the Books file (xlsx, xlsm, xls, csv)")
	flags.StringSliceVar(&procOpts.BooksSheets, "books-sheet", nil, `Books sheet to use; repeatable, "*" for all`)
	flags.StringVar(&procOpts.GSTPath, "gst", "", "Path to the GST portal file (xlsx, xlsm, xls, csv)")
	flags.StringSliceVar(&procOpts.GSTSheets, "gst-sheet", nil, `GST sheet to use; repeatable, "*" for all`)
	flags.BoolVar(&procOpts.DryRun, "dry-run", false, "Map and report without writing output files")

	// Settings flags are bound to viper so they override file and env values.
	flags.Int("books-header-row", converter.DefaultBooksHeaderRow, "1-based header row of Books sheets")
	flags.Int("gst-header-row", converter.DefaultGSTHeaderRow, "1-based header row of GST sheets")
	flags.String("output-dir", "./output", "Directory for output files")
	flags.String("numeric-policy", string(converter.PolicyZero), "Unparseable numbers become: zero or missing")

	v.BindPFlag("books.header_row", flags.Lookup("books-header-row"))
	v.BindPFlag("gst.header_row", flags.Lookup("gst-header-row"))
	v.BindPFlag("output_dir", flags.Lookup("output-dir"))
	v.BindPFlag("numeric_policy", flags.Lookup("numeric-policy"))
}

// =============================================================================
// PROCESS IMPLEMENTATION
// =============================================================================

// runProcess executes one auto-fill run.
//
// PARAMETERS:
//   - cfg: The resolved configuration.
//   - logger: Receives progress messages.
//   - opts: The source files and sheet selections.
//   - out: Receives the human-readable report.
func runProcess(cfg *config.Config, logger logrus.FieldLogger, opts processOptions, out io.Writer) error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: BUILD THE REQUEST
	// =========================================================================

	for _, path := range []string{opts.BooksPath, opts.GSTPath} {
		if err := checkInput(path); err != nil {
			return err
		}
	}

	req := converter.Request{}
	if opts.BooksPath != "" {
		req.Books = &converter.Source{
			Path:      opts.BooksPath,
			Sheets:    opts.BooksSheets,
			HeaderRow: cfg.Books.HeaderRow,
		}
	}
	if opts.GSTPath != "" {
		req.GST = &converter.Source{
			Path:      opts.GSTPath,
			Sheets:    opts.GSTSheets,
			HeaderRow: cfg.GST.HeaderRow,
		}
	}
	if req.Books == nil && req.GST == nil {
		return errors.New("at least one of --books or --gst is required")
	}

	// =========================================================================
	// STEP 2: RUN THE PIPELINE
	// =========================================================================

	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	result, err := conv.Run(req)
	if err != nil {
		return err
	}

	artifact, err := exporter.Build(result.Books, result.GST)
	if err != nil {
		return err
	}

	summary := utils.NewRunSummary(startTime, req, result)
	summary.DryRun = opts.DryRun

	if opts.DryRun {
		fmt.Fprint(out, utils.FormatSummary(summary))
		fmt.Fprint(out, validation.FormatIssues(result.Issues))
		return nil
	}

	// =========================================================================
	// STEP 3: WRITE OUTPUT
	// =========================================================================

	fm := utils.NewFileManager(cfg.OutputDir, cfg.RunDirFormat)
	runDir, err := fm.PrepareRunDir()
	if err != nil {
		return err
	}

	if artifact == nil {
		fmt.Fprintln(out, "No rows found; nothing to export.")
	} else {
		path, err := utils.WriteArtifact(runDir, artifact.Name, artifact.Data)
		if err != nil {
			return err
		}
		summary.Output = path
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	if cfg.WriteSummary {
		summary.EndTime = time.Now()
		summaryPath, err := utils.WriteSummaryLog(summary, runDir)
		if err != nil {
			return err
		}
		logger.WithField("file", summaryPath).Debug("Run summary written")

		logPath, err := utils.WriteIssueLog(result.Issues, runDir, startTime)
		if err != nil {
			return err
		}
		if logPath != "" {
			fmt.Fprintf(out, "%d value(s) coerced, see %s\n", len(result.Issues), logPath)
		}
	}

	logger.WithFields(logrus.Fields{
		"books_rows": result.Stats.BooksRows,
		"gst_rows":   result.Stats.GSTRows,
		"sheets":     result.Stats.SheetsProcessed,
		"coerced":    len(result.Issues),
		"elapsed":    time.Since(startTime).String(),
	}).Info("Processing complete")

	return nil
}

// checkInput reports a missing input file before any work is done.
func checkInput(path string) error {
	if path == "" || utils.FileExists(path) {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	return fmt.Errorf("%s is a directory", path)
}
