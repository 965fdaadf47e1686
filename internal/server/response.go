package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// APIResponse is the standard envelope for JSON responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapRunError translates run errors to HTTP status codes and error codes.
// Anything that is not a parameter problem is an unreadable workbook.
func MapRunError(err error) (status int, code, msg string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "upload exceeds maximum allowed size"
	case errors.Is(err, workbook.ErrUnsupportedFormat):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: xlsx, xlsm, xls, csv"
	case errors.Is(err, converter.ErrSheetNotFound):
		return http.StatusBadRequest, "SHEET_NOT_FOUND", err.Error()
	case errors.Is(err, converter.ErrInvalidHeaderRow):
		return http.StatusBadRequest, "INVALID_HEADER_ROW", err.Error()
	default:
		return http.StatusUnprocessableEntity, "UNREADABLE_WORKBOOK", err.Error()
	}
}

// HandleError maps err and sends the error response.
func HandleError(c *gin.Context, err error) {
	_ = c.Error(err)
	status, code, msg := MapRunError(err)
	RespondError(c, status, code, msg)
}
