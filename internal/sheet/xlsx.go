package sheet

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bookingest/internal/core"
)

// quotedOrBracketed strips literal text and [colour]/[locale] sections from
// a number format before looking for date tokens.
var quotedOrBracketed = regexp.MustCompile(`"[^"]*"|\[[^\]]*\]|\\.`)

// OpenXLSX reads the first worksheet of a workbook.
//
// Numeric cells become number cells unless their number format is a date
// format, in which case the serial is converted to a date cell. Everything
// else is read as text.
func OpenXLSX(r io.Reader) (*Sheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}

	x := &xlsxReader{f: f, sheet: name, dateStyles: make(map[int]bool)}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		x.date1904 = *props.Date1904
	}

	records := make([][]core.Cell, len(raw))
	for i, values := range raw {
		cells := make([]core.Cell, len(values))
		for j, v := range values {
			cells[j] = x.cell(j+1, i+1, v)
		}
		records[i] = cells
	}
	return newSheet(name, FormatXLSX, records), nil
}

type xlsxReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

// cell types a raw value using the cell's stored type and style.
func (x *xlsxReader) cell(col, row int, raw string) core.Cell {
	if raw == "" {
		return core.Cell{}
	}

	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return core.TextCell(raw)
	}
	typ, err := x.f.GetCellType(x.sheet, ref)
	if err != nil {
		return core.TextCell(raw)
	}

	switch typ {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeBool, excelize.CellTypeError:
		return core.TextCell(raw)
	case excelize.CellTypeDate:
		if len(raw) >= 10 {
			if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
				return core.DateCell(t)
			}
		}
		return core.TextCell(raw)
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return core.TextCell(raw)
	}
	if x.isDate(ref) {
		if t, err := excelize.ExcelDateToTime(num, x.date1904); err == nil {
			return core.DateCell(t)
		}
	}
	return core.NumberCell(num)
}

// isDate reports whether the cell's number format renders a date.
func (x *xlsxReader) isDate(ref string) bool {
	id, err := x.f.GetCellStyle(x.sheet, ref)
	if err != nil {
		return false
	}
	if known, ok := x.dateStyles[id]; ok {
		return known
	}

	style, err := x.f.GetStyle(id)
	isDate := err == nil && style != nil && isDateFormat(style.NumFmt, style.CustomNumFmt)
	x.dateStyles[id] = isDate
	return isDate
}

// isDateFormat recognizes the built-in date formats (14-17, 22) and custom
// formats containing day or year tokens.
func isDateFormat(numFmt int, custom *string) bool {
	if custom != nil && *custom != "" {
		f := strings.ToLower(quotedOrBracketed.ReplaceAllString(*custom, ""))
		return strings.ContainsAny(f, "dy")
	}
	return (numFmt >= 14 && numFmt <= 17) || numFmt == 22
}
