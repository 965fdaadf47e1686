// =============================================================================
// GST Template Auto-Fill - HTTP Server
// =============================================================================
//
// The server exposes the auto-fill pipeline over HTTP for browser and script
// clients. A request uploads the Books and/or GST workbooks and receives the
// generated template (or a zip of both) as an attachment.
//
// ROUTES:
//   GET  /healthz          - Liveness check
//   POST /api/v1/sheets    - List the sheets of an uploaded workbook
//   POST /api/v1/autofill  - Run the pipeline and download the result
//
// =============================================================================

package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/logging"
	"github.com/ginjaninja78/gst-autofill/internal/schema"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

const shutdownTimeout = 10 * time.Second

// Options configure a Server.
type Options struct {
	// BooksHeaderRow and GSTHeaderRow are used when a request does not
	// send its own header row. Zero means the built-in default.
	BooksHeaderRow int
	GSTHeaderRow   int

	// MaxUploadBytes caps the request body. Zero disables the limit.
	MaxUploadBytes int64

	// Workbook controls CSV decoding of uploads.
	Workbook workbook.Options
}

// Server serves the auto-fill HTTP API.
type Server struct {
	converter      *converter.Converter
	logger         logrus.FieldLogger
	wbOpts         workbook.Options
	booksHeaderRow int
	gstHeaderRow   int
	maxUpload      int64
}

// New creates a Server around a converter.
func New(conv *converter.Converter, logger logrus.FieldLogger, opts Options) *Server {
	s := &Server{
		converter:      conv,
		logger:         logger,
		wbOpts:         opts.Workbook,
		booksHeaderRow: opts.BooksHeaderRow,
		gstHeaderRow:   opts.GSTHeaderRow,
		maxUpload:      opts.MaxUploadBytes,
	}
	if s.converter == nil {
		s.converter = converter.New(converter.Options{Workbook: opts.Workbook})
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	if s.booksHeaderRow < 1 {
		s.booksHeaderRow = converter.DefaultHeaderRow(schema.KindBooks)
	}
	if s.gstHeaderRow < 1 {
		s.gstHeaderRow = converter.DefaultHeaderRow(schema.KindGST)
	}
	return s
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(Recovery())
	r.Use(RequestID())
	r.Use(Logger(s.logger))

	r.GET("/healthz", s.Liveness)

	v1 := r.Group("/api/v1")
	v1.Use(LimitBody(s.maxUpload))
	{
		v1.POST("/sheets", s.Sheets)
		v1.POST("/autofill", s.Autofill)
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("Shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
