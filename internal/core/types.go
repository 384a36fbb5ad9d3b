package core

import (
	"strconv"
	"time"
)

// CellKind identifies which variant of a raw spreadsheet value a Cell holds.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// String returns the value_type name reported on issues.
func (k CellKind) String() string {
	switch k {
	case CellText:
		return "string"
	case CellNumber:
		return "number"
	case CellDate:
		return "date"
	default:
		return "empty"
	}
}

// Cell is a raw spreadsheet value: text, a number, a native date or nothing.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

// TextCell returns a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

// NumberCell returns a numeric cell.
func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

// DateCell returns a native date cell.
func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

// IsEmpty reports whether the cell has no usable content.
func (c Cell) IsEmpty() bool {
	return c.String() == ""
}

// String renders the cell the way a spreadsheet user would read it.
// Integral numbers print without a fractional part.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return CleanCell(c.Text)
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("2006-01-02")
	default:
		return ""
	}
}

// Row is one data row aligned to the sheet's header order.
type Row struct {
	Headers []string
	Cells   []Cell
}

// NewRow pairs headers with cell values. Missing trailing cells read as empty.
func NewRow(headers []string, cells []Cell) Row {
	return Row{Headers: headers, Cells: cells}
}

// Get returns the cell under the first header named name.
func (r Row) Get(name string) Cell {
	for i, h := range r.Headers {
		if h == name {
			if i < len(r.Cells) {
				return r.Cells[i]
			}
			return Cell{}
		}
	}
	return Cell{}
}

// IsBlank reports whether every cell in the row is empty.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Fragment is the part of a book produced by one validator.
// Scalars overwrite, lists append and regional rights are unioned when merged.
type Fragment struct {
	ISBN           string
	Title          string
	Subtitle       string
	Language       []string
	PublishDate    *time.Time
	Contributors   []Contributor
	Prices         []Price
	Currency       string
	Pages          *int
	Publisher      string
	Imprint        string
	Subjects       []Subject
	Descriptions   []Description
	RegionalRights map[string]bool
}

// Failure describes why a validator rejected its input.
// FieldSuffix names the sub-column of a grouped field that caused it.
type Failure struct {
	Code        string
	Message     string
	FieldSuffix string
}

// Outcome is the result of validating one field: a Fragment on success,
// a Failure otherwise.
type Outcome struct {
	Fragment Fragment
	Failure  *Failure
}

// OK reports whether the validator succeeded.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

func succeed(f Fragment) Outcome {
	return Outcome{Fragment: f}
}

func fail(code, message string) Outcome {
	return Outcome{Failure: &Failure{Code: code, Message: message}}
}

func failOn(suffix, code, message string) Outcome {
	return Outcome{Failure: &Failure{Code: code, Message: message, FieldSuffix: suffix}}
}

// Issue is a single reason a sheet or row was rejected.
type Issue struct {
	ErrorCode string    `json:"error_code"`
	Message   string    `json:"message"`
	Data      IssueData `json:"data"`
}

// IssueData pinpoints the cell responsible for an issue.
// Column is nil and CellReference is "-" when the header could not be found.
type IssueData struct {
	Row            int      `json:"row"`
	Column         *int     `json:"column"`
	CellReference  string   `json:"cell_reference"`
	FieldName      string   `json:"field_name"`
	Value          string   `json:"value"`
	ValueType      string   `json:"value_type"`
	MissingHeaders []string `json:"missing_headers,omitempty"`
	ExtraHeaders   []string `json:"extra_headers,omitempty"`
}

// RowResult is the outcome of one data row. Book is only meaningful when
// Issues is empty.
type RowResult struct {
	Row    int
	Book   Book
	Issues []Issue
}

// Valid reports whether the row produced a book.
func (r RowResult) Valid() bool {
	return len(r.Issues) == 0
}
