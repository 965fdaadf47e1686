// =============================================================================
// GST Template Auto-Fill - Sheets Command
// =============================================================================
//
// This file defines the 'sheets' command, which lists the sheets of a
// workbook so they can be passed to --books-sheet or --gst-sheet.
//
// COMMAND USAGE:
//   autofill sheets FILE
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// sheetsCmd represents the 'sheets' command.
var sheetsCmd = &cobra.Command{
	Use:   "sheets FILE",
	Short: "List the sheets of a workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadRuntime()
		if err != nil {
			return err
		}
		return listSheets(args[0], cfg.WorkbookOptions(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
}

// listSheets prints the sheet names of path in workbook order.
func listSheets(path string, opts workbook.Options, out io.Writer) error {
	wb, err := workbook.Open(path, opts)
	if err != nil {
		return err
	}
	defer wb.Close()

	for i, name := range wb.SheetNames() {
		fmt.Fprintf(out, "%2d  %s\n", i+1, name)
	}
	return nil
}
