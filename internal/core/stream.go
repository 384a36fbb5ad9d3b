package core

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// HeaderRow is the 1-based row number holding the column headings.
const HeaderRow = 1

// Source is a spreadsheet opened for reading.
//
// RowCount includes the header row. Row returns the cells of 1-based row n
// aligned to Headers; trailing cells may be omitted.
type Source interface {
	Headers() []string
	RowCount() int
	Row(n int) ([]Cell, error)
}

// CheckHeaders compares a header row against RequiredHeadings. It returns a
// headers.incorrect issue when any required heading is missing.
func CheckHeaders(headers []string) (Issue, bool) {
	var missing []string
	for _, h := range RequiredHeadings {
		if !slices.Contains(headers, h) {
			missing = append(missing, h)
		}
	}
	if len(missing) == 0 {
		return Issue{}, true
	}

	var extra []string
	for _, h := range headers {
		if h != "" && !slices.Contains(RequiredHeadings, h) {
			extra = append(extra, h)
		}
	}

	return Issue{
		ErrorCode: CodeHeadersIncorrect,
		Message:   fmt.Sprintf("Spreadsheet is missing required headings: %s", strings.Join(missing, ", ")),
		Data: IssueData{
			Row:            HeaderRow,
			CellReference:  unresolvedCell,
			FieldName:      "headers",
			ValueType:      CellEmpty.String(),
			MissingHeaders: missing,
			ExtraHeaders:   extra,
		},
	}, false
}

// Rows lazily validates every data row of src. A header rejection yields a
// single result for the header row and stops. Blank rows are skipped. A
// source read error is yielded once and ends the sequence.
func (v *Validator) Rows(src Source) iter.Seq2[RowResult, error] {
	return func(yield func(RowResult, error) bool) {
		headers := src.Headers()
		if issue, ok := CheckHeaders(headers); !ok {
			yield(RowResult{Row: HeaderRow, Issues: []Issue{issue}}, nil)
			return
		}

		for n := HeaderRow + 1; n <= src.RowCount(); n++ {
			cells, err := src.Row(n)
			if err != nil {
				yield(RowResult{Row: n}, fmt.Errorf("read row %d: %w", n, err))
				return
			}

			row := NewRow(headers, cells)
			if row.IsBlank() {
				continue
			}

			book, issues := v.ValidateRow(row, n)
			if !yield(RowResult{Row: n, Book: book, Issues: issues}, nil) {
				return
			}
		}
	}
}

// ProcessRows validates src, calling onBook for every valid row, and returns
// the issues of every rejected row in row order. An error from the source or
// from onBook stops processing and is returned with the issues gathered so far.
func (v *Validator) ProcessRows(src Source, onBook func(Book) error) ([]Issue, error) {
	var issues []Issue
	for res, err := range v.Rows(src) {
		if err != nil {
			return issues, err
		}
		if !res.Valid() {
			issues = append(issues, res.Issues...)
			continue
		}
		if err := onBook(res.Book); err != nil {
			return issues, fmt.Errorf("row %d: %w", res.Row, err)
		}
	}
	return issues, nil
}
