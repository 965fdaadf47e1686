package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/exporter"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// SheetList is the response of the sheets endpoint.
type SheetList struct {
	File   string   `json:"file"`
	Format string   `json:"format"`
	Sheets []string `json:"sheets"`
}

// Liveness handles GET /healthz
func (s *Server) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Sheets handles POST /api/v1/sheets
//
// Multipart field "file" is the workbook to inspect. The response lists its
// sheets in workbook order so a client can choose which to auto-fill.
func (s *Server) Sheets(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		s.respondMissing(c, "file", err)
		return
	}
	defer func() { _ = file.Close() }()

	wb, err := workbook.OpenReader(header.Filename, file, s.wbOpts)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer wb.Close()

	RespondOK(c, SheetList{
		File:   header.Filename,
		Format: workbook.Format(header.Filename),
		Sheets: wb.SheetNames(),
	})
}

// Autofill handles POST /api/v1/autofill
//
// Multipart fields:
//   - books, gst: the source files (at least one)
//   - books_sheets, gst_sheets: repeatable sheet selection ("*" for all)
//   - books_header_row, gst_header_row: 1-based header rows
//
// The response is the single artifact as an attachment, or 204 when there
// is nothing to download.
func (s *Server) Autofill(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		s.respondMissing(c, "books or gst", err)
		return
	}

	req := converter.Request{}
	var err error

	req.Books, err = s.uploadSource(c, "books", s.booksHeaderRow)
	if err != nil {
		HandleError(c, err)
		return
	}
	req.GST, err = s.uploadSource(c, "gst", s.gstHeaderRow)
	if err != nil {
		HandleError(c, err)
		return
	}
	if req.Books == nil && req.GST == nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "at least one of books or gst is required")
		return
	}

	result, err := s.converter.Run(req)
	if err != nil {
		HandleError(c, err)
		return
	}

	artifact, err := exporter.Build(result.Books, result.GST)
	if err != nil {
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "failed to build templates")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": c.GetString(contextKeyRequestID),
		"books_rows": result.Stats.BooksRows,
		"gst_rows":   result.Stats.GSTRows,
		"coerced":    len(result.Issues),
	}).Info("Auto-fill complete")

	c.Header("X-Coerced-Values", strconv.Itoa(len(result.Issues)))
	if artifact == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, artifact.Name))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// uploadSource reads one optional source from the parsed multipart form.
func (s *Server) uploadSource(c *gin.Context, field string, defaultHeaderRow int) (*converter.Source, error) {
	file, header, err := c.Request.FormFile(field)
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	defer func() { _ = file.Close() }()

	headerRow := defaultHeaderRow
	if raw := strings.TrimSpace(c.PostForm(field + "_header_row")); raw != "" {
		headerRow, err = strconv.Atoi(raw)
		if err != nil || headerRow < 1 {
			return nil, fmt.Errorf("%w: %s_header_row=%q", converter.ErrInvalidHeaderRow, field, raw)
		}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}

	return &converter.Source{
		Name:      header.Filename,
		Reader:    bytes.NewReader(data),
		Sheets:    sheetSelection(c.PostFormArray(field + "_sheets")),
		HeaderRow: headerRow,
	}, nil
}

// respondMissing reports a missing upload, unless the body was too large.
func (s *Server) respondMissing(c *gin.Context, field string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		HandleError(c, err)
		return
	}
	RespondError(c, http.StatusBadRequest, "MISSING_FILE", field+" field is required")
}

// sheetSelection accepts repeated fields and comma separated lists.
func sheetSelection(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
