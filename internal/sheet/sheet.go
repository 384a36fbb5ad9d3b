// Package sheet opens book metadata spreadsheets (xlsx and csv) and exposes
// them as typed rows for the core validator.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/bookingest/internal/core"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoSheets is returned for a workbook without worksheets.
	ErrNoSheets = errors.New("no sheets in workbook")

	// ErrEmptyFile is returned when the upload has no content at all.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidCSV wraps csv parse failures.
	ErrInvalidCSV = errors.New("invalid csv")
)

// Format is a supported spreadsheet file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv"
)

// Sheet is one worksheet loaded into memory. It implements core.Source.
type Sheet struct {
	name    string
	format  Format
	headers []string
	// rows holds the data rows; rows[0] is sheet row 2.
	rows [][]core.Cell
	// total counts every row including the header row.
	total int
}

var _ core.Source = (*Sheet)(nil)

// Name returns the worksheet name, or the file name for csv.
func (s *Sheet) Name() string { return s.name }

// Format returns the format the sheet was read from.
func (s *Sheet) Format() Format { return s.format }

// Headers returns the cleaned header row.
func (s *Sheet) Headers() []string { return s.headers }

// RowCount returns the number of rows including the header row.
func (s *Sheet) RowCount() int { return s.total }

// Row returns the cells of 1-based data row n (n >= 2).
func (s *Sheet) Row(n int) ([]core.Cell, error) {
	if n < 2 || n > s.total {
		return nil, fmt.Errorf("row %d out of range [2, %d]", n, s.total)
	}
	return s.rows[n-2], nil
}

// newSheet splits the first record off as headers.
func newSheet(name string, format Format, records [][]core.Cell) *Sheet {
	s := &Sheet{name: name, format: format, total: len(records)}
	if len(records) == 0 {
		return s
	}

	s.headers = make([]string, len(records[0]))
	for i, c := range records[0] {
		s.headers[i] = c.String()
	}
	s.rows = records[1:]
	return s
}

// DetectFormat picks a format from the file extension, falling back to the
// declared content type.
func DetectFormat(fileName, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			switch mediaType {
			case contentTypeXLSX:
				return FormatXLSX, nil
			case contentTypeCSV, "application/csv":
				return FormatCSV, nil
			}
		}
	}
	return "", fmt.Errorf("%s: %w", fileName, ErrUnsupportedFormat)
}

// Open reads the first worksheet of an uploaded file.
func Open(fileName, contentType string, r io.Reader) (*Sheet, error) {
	format, err := DetectFormat(fileName, contentType)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatXLSX:
		return OpenXLSX(r)
	default:
		return OpenCSV(fileName, r)
	}
}

// OpenFile opens a spreadsheet from disk.
func OpenFile(path string) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Open(filepath.Base(path), "", f)
}

// ContentType returns the media type served for format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return contentTypeXLSX
	}
	return contentTypeCSV + "; charset=utf-8"
}
