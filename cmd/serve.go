// =============================================================================
// GST Template Auto-Fill - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which exposes the auto-fill
// pipeline over HTTP. The server stops gracefully on SIGINT or SIGTERM.
//
// COMMAND USAGE:
//   autofill serve [--addr :8080]
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/gst-autofill/internal/server"
)

// serveCmd represents the 'serve' command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the auto-fill HTTP API",
	Long: `Serve the auto-fill HTTP API.

Routes:
  GET  /healthz          Liveness check
  POST /api/v1/sheets    List the sheets of an uploaded workbook
  POST /api/v1/autofill  Upload books and/or gst and download the template`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		conv, err := newConverter(cfg, logger)
		if err != nil {
			return err
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		srv := server.New(conv, logger, server.Options{
			BooksHeaderRow: cfg.Books.HeaderRow,
			GSTHeaderRow:   cfg.GST.HeaderRow,
			MaxUploadBytes: cfg.MaxUploadBytes(),
			Workbook:       cfg.WorkbookOptions(),
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx, cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
	v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
