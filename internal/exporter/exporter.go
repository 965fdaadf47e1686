// =============================================================================
// GST Template Auto-Fill - Exporter
// =============================================================================
//
// This package turns the combined Books and GST tables of a run into the
// single artifact offered for download:
//   - both tables non-empty : GST_Books_Templates.zip with both workbooks
//   - one table non-empty   : that workbook on its own
//   - no table non-empty    : nothing
//
// An empty table never produces a file.
//
// =============================================================================

package exporter

import (
	"fmt"
	"time"

	"github.com/ginjaninja78/gst-autofill/internal/types"
)

// Fixed output names.
const (
	BooksFileName   = "Books_AutoFilled_Template.xlsx"
	BooksSheetName  = "Books_Template"
	GSTFileName     = "GST_AutoFilled_Combined_Template.xlsx"
	GSTSheetName    = "GST_Combined_Template"
	ArchiveFileName = "GST_Books_Templates.zip"
)

// Content types of the artifacts.
const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ZipContentType  = "application/zip"
)

// Artifact is a file ready to be written or downloaded.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte

	// Files lists the workbooks inside the artifact, in order.
	Files []string
}

// IsArchive reports whether the artifact bundles several workbooks.
func (a *Artifact) IsArchive() bool { return a != nil && a.ContentType == ZipContentType }

// Build produces the artifact for a run.
//
// PARAMETERS:
//   - books: The combined Books table (may be nil).
//   - gst: The combined GST table (may be nil).
//
// RETURNS:
//   - nil, nil when both tables are empty.
//   - The standalone workbook when exactly one table has rows.
//   - A zip archive holding both workbooks otherwise.
func Build(books, gst *types.Table) (*Artifact, error) {
	var entries []archiveEntry

	if !books.Empty() {
		data, err := RenderXLSX(BooksSheetName, books)
		if err != nil {
			return nil, fmt.Errorf("failed to render books template: %w", err)
		}
		entries = append(entries, archiveEntry{Name: BooksFileName, Data: data})
	}

	if !gst.Empty() {
		data, err := RenderXLSX(GSTSheetName, gst)
		if err != nil {
			return nil, fmt.Errorf("failed to render GST template: %w", err)
		}
		entries = append(entries, archiveEntry{Name: GSTFileName, Data: data})
	}

	switch len(entries) {
	case 0:
		return nil, nil
	case 1:
		return &Artifact{
			Name:        entries[0].Name,
			ContentType: XLSXContentType,
			Data:        entries[0].Data,
			Files:       []string{entries[0].Name},
		}, nil
	}

	data, err := bundle(entries, time.Now())
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Name:        ArchiveFileName,
		ContentType: ZipContentType,
		Data:        data,
		Files:       []string{entries[0].Name, entries[1].Name},
	}, nil
}
