package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/bookingest/internal/core"
)

// decodeReader strips a byte order mark and replaces invalid UTF-8 with
// U+FFFD. A UTF-16 BOM switches decoding to UTF-16.
func decodeReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// OpenCSV reads a comma separated sheet. Every non-empty value is a text
// cell; the core converters parse numbers and dates from text.
func OpenCSV(fileName string, r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(decodeReader(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	raw, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCSV, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyFile
	}

	records := make([][]core.Cell, len(raw))
	for i, values := range raw {
		cells := make([]core.Cell, len(values))
		for j, v := range values {
			if strings.TrimSpace(v) != "" {
				cells[j] = core.TextCell(v)
			}
		}
		records[i] = cells
	}

	name := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	return newSheet(name, FormatCSV, records), nil
}
