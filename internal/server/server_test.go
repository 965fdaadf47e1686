package server

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/exporter"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const booksCSV = "GSTIN,Customer Name,Invoice No,Invoice Date,Invoice Value\n" +
	"29ABCDE1234F1Z5,Acme Co,INV001,05-01-2024,1180\n" +
	"27XYZAB9876C1Z2,Beta Ltd,INV002,06-01-2024,abc\n"

type upload struct {
	field    string
	filename string
	data     []byte
}

func multipartBody(t *testing.T, files []upload, fields map[string][]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		part, err := writer.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, writer.WriteField(name, v))
		}
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func gstWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "b2b"))
	_, err := f.NewSheet("cdnr")
	require.NoError(t, err)

	rows := [][]any{
		{"Summary For B2B"},
		{"No. of Recipients"},
		{1},
		{"GSTIN/UIN of Recipient", "Receiver Name", "Invoice number", "Invoice date", "Invoice Value"},
		{"29ABCDE1234F1Z5", "Acme Co", "INV001", 45000, 1180},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow("b2b", cell, &values))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func newTestServer(opts Options) *Server {
	return New(converter.New(converter.Options{}), nil, opts)
}

func do(t *testing.T, s *Server, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func postForm(t *testing.T, path string, files []upload, fields map[string][]string) *http.Request {
	t.Helper()
	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return req
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *APIError {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestLiveness(t *testing.T) {
	w := do(t, newTestServer(Options{}), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")

	w := do(t, newTestServer(Options{}), req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestSheets(t *testing.T) {
	s := newTestServer(Options{})

	w := do(t, s, postForm(t, "/api/v1/sheets", []upload{{"file", "gst.xlsx", gstWorkbook(t)}}, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool      `json:"success"`
		Data    SheetList `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "gst.xlsx", resp.Data.File)
	assert.Equal(t, "xlsx", resp.Data.Format)
	assert.Equal(t, []string{"b2b", "cdnr"}, resp.Data.Sheets)
}

func TestSheets_Errors(t *testing.T) {
	s := newTestServer(Options{})

	w := do(t, s, postForm(t, "/api/v1/sheets", nil, map[string][]string{"x": {"y"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeError(t, w).Code)

	w = do(t, s, postForm(t, "/api/v1/sheets", []upload{{"file", "notes.txt", []byte("hello")}}, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeError(t, w).Code)

	w = do(t, s, postForm(t, "/api/v1/sheets", []upload{{"file", "broken.xlsx", []byte("not a zip")}}, nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "UNREADABLE_WORKBOOK", decodeError(t, w).Code)
}

func TestAutofill_BooksOnly(t *testing.T) {
	s := newTestServer(Options{})

	w := do(t, s, postForm(t, "/api/v1/autofill", []upload{{"books", "books.csv", []byte(booksCSV)}}, nil))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, exporter.XLSXContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Books_AutoFilled_Template.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", w.Header().Get("X-Coerced-Values"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(exporter.BooksSheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Co", name)

	value, err := f.GetCellValue(exporter.BooksSheetName, "E3")
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}

func TestAutofill_BothSources(t *testing.T) {
	s := newTestServer(Options{})

	files := []upload{
		{"books", "books.csv", []byte(booksCSV)},
		{"gst", "gst.xlsx", gstWorkbook(t)},
	}
	w := do(t, s, postForm(t, "/api/v1/autofill", files, map[string][]string{
		"gst_sheets":     {"b2b"},
		"gst_header_row": {"4"},
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exporter.ZipContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="GST_Books_Templates.zip"`, w.Header().Get("Content-Disposition"))

	zr, err := zip.NewReader(bytes.NewReader(w.Body.Bytes()), int64(w.Body.Len()))
	require.NoError(t, err)
	var names []string
	for _, entry := range zr.File {
		names = append(names, entry.Name)
	}
	assert.ElementsMatch(t, []string{exporter.BooksFileName, exporter.GSTFileName}, names)
}

func TestAutofill_NothingToDownload(t *testing.T) {
	s := newTestServer(Options{})

	w := do(t, s, postForm(t, "/api/v1/autofill", []upload{{"books", "books.csv", []byte("GSTIN,Customer Name\n")}}, nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	// A header row past the end of the sheet reads as an empty table.
	w = do(t, s, postForm(t, "/api/v1/autofill", []upload{{"gst", "gst.xlsx", gstWorkbook(t)}}, map[string][]string{
		"gst_header_row": {"50"},
	}))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestAutofill_Errors(t *testing.T) {
	s := newTestServer(Options{})

	tests := []struct {
		name   string
		files  []upload
		fields map[string][]string
		status int
		code   string
	}{
		{
			name:   "no files",
			fields: map[string][]string{"books_header_row": {"1"}},
			status: http.StatusBadRequest,
			code:   "MISSING_FILE",
		},
		{
			name:   "bad header row",
			files:  []upload{{"books", "books.csv", []byte(booksCSV)}},
			fields: map[string][]string{"books_header_row": {"zero"}},
			status: http.StatusBadRequest,
			code:   "INVALID_HEADER_ROW",
		},
		{
			name:   "negative header row",
			files:  []upload{{"gst", "gst.xlsx", gstWorkbook(t)}},
			fields: map[string][]string{"gst_header_row": {"-2"}},
			status: http.StatusBadRequest,
			code:   "INVALID_HEADER_ROW",
		},
		{
			name:   "unknown sheet",
			files:  []upload{{"gst", "gst.xlsx", gstWorkbook(t)}},
			fields: map[string][]string{"gst_sheets": {"b2ba"}},
			status: http.StatusBadRequest,
			code:   "SHEET_NOT_FOUND",
		},
		{
			name:   "unsupported type",
			files:  []upload{{"books", "books.pdf", []byte("%PDF")}},
			status: http.StatusBadRequest,
			code:   "UNSUPPORTED_FILE_TYPE",
		},
		{
			name:   "broken workbook",
			files:  []upload{{"gst", "gst.xlsx", []byte("not a zip")}},
			status: http.StatusUnprocessableEntity,
			code:   "UNREADABLE_WORKBOOK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, postForm(t, "/api/v1/autofill", tt.files, tt.fields))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestAutofill_UploadTooLarge(t *testing.T) {
	s := newTestServer(Options{MaxUploadBytes: 64})

	w := do(t, s, postForm(t, "/api/v1/sheets", []upload{{"file", "gst.xlsx", gstWorkbook(t)}}, nil))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeError(t, w).Code)
}

func TestSheetSelection(t *testing.T) {
	assert.Nil(t, sheetSelection(nil))
	assert.Equal(t, []string{"b2b", "cdnr", "*"}, sheetSelection([]string{"b2b, cdnr", " ", "*"}))
}

func TestNew_Defaults(t *testing.T) {
	s := New(nil, nil, Options{})
	assert.Equal(t, converter.DefaultBooksHeaderRow, s.booksHeaderRow)
	assert.Equal(t, converter.DefaultGSTHeaderRow, s.gstHeaderRow)
	assert.NotNil(t, s.converter)
	assert.NotNil(t, s.logger)
}

func TestRun_Shutdown(t *testing.T) {
	s := newTestServer(Options{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
