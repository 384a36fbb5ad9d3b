package core

import (
	"slices"

	"github.com/xuri/excelize/v2"
)

// unresolvedCell is reported when a field's header is not in the sheet.
const unresolvedCell = "-"

// ColumnName converts a 1-based column number to its spreadsheet letters
// (1 → A, 26 → Z, 27 → AA, 53 → BA).
func ColumnName(n int) (string, bool) {
	name, err := excelize.ColumnNumberToName(n)
	if err != nil {
		return "", false
	}
	return name, true
}

// CellReference locates field in headers and returns its 0-based column
// index and a reference such as "AB3" for row 3. Column is nil and the
// reference is "-" when the header cannot be found.
func CellReference(field string, row int, headers []string) (*int, string) {
	idx := slices.Index(headers, field)
	if idx < 0 {
		return nil, unresolvedCell
	}

	ref, err := excelize.CoordinatesToCellName(idx+1, row)
	if err != nil {
		return nil, unresolvedCell
	}
	return &idx, ref
}
