// =============================================================================
// GST Template Auto-Fill - Main Entry Point
// =============================================================================
//
// This is the main entry point for the GST Template Auto-Fill CLI. It
// delegates command execution to the cmd package.
//
// USAGE:
//   autofill process   - Auto-fill the templates from Books and/or GST files
//   autofill sheets    - List the sheets of a workbook
//   autofill serve     - Serve the HTTP API
//   autofill version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/               : CLI command definitions (Cobra)
//   - internal/schema    : Template columns and header aliases
//   - internal/workbook  : xlsx, xls and csv readers
//   - internal/converter : Column mapping, normalization, sheet combining
//   - internal/exporter  : Template workbook and zip output
//   - internal/server    : HTTP API (Gin)
//   - pkg/utils          : Output directories and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/gst-autofill/cmd"
)

func main() {
	cmd.Execute()
}
