package sheet

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bookingest/internal/core"
)

// workbook builds an xlsx with the required headings and one data row.
func workbook(t *testing.T, values map[string]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	const sheetName = "Sheet1"
	for i, h := range core.RequiredHeadings {
		ref, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, ref, h); err != nil {
			t.Fatalf("SetCellValue(%s): %v", ref, err)
		}
		v, ok := values[h]
		if !ok {
			continue
		}
		ref, _ = excelize.CoordinatesToCellName(i+1, 2)
		if err := f.SetCellValue(sheetName, ref, v); err != nil {
			t.Fatalf("SetCellValue(%s): %v", ref, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf
}

func validValues() map[string]any {
	return map[string]any{
		core.FieldISBN:            9780111222333,
		core.FieldTitle:           "A valid title",
		"Contributor 1":           "Testy McTest",
		"Contributor 1 Role":      "Author",
		core.FieldPublicationDate: time.Date(2014, time.September, 11, 0, 0, 0, 0, time.UTC),
		core.FieldLanguage:        "ENG",
		core.FieldPriceExVAT:      10.0,
		core.FieldPriceIncVAT:     12.0,
		core.FieldCurrency:        "GBP",
		core.FieldPageCount:       320,
		core.FieldPublisher:       "Test Publishing",
		core.FieldMainSubject:     "FIC005000",
		core.FieldDescription:     "<p>About testing.</p>",
		core.FieldTerritories:     "GB",
	}
}

func TestOpenXLSX(t *testing.T) {
	s, err := OpenXLSX(workbook(t, validValues()))
	if err != nil {
		t.Fatalf("OpenXLSX() error = %v", err)
	}

	if s.Name() != "Sheet1" || s.Format() != FormatXLSX {
		t.Errorf("Name/Format = %q/%q", s.Name(), s.Format())
	}
	if got := len(s.Headers()); got != len(core.RequiredHeadings) {
		t.Errorf("len(Headers()) = %d, want %d", got, len(core.RequiredHeadings))
	}
	if s.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", s.RowCount())
	}

	cells, err := s.Row(2)
	if err != nil {
		t.Fatalf("Row(2) error = %v", err)
	}
	row := core.NewRow(s.Headers(), cells)

	if c := row.Get(core.FieldISBN); c.Kind != core.CellNumber || core.ToIdentifier(c) != "9780111222333" {
		t.Errorf("ISBN cell = %+v, want number 9780111222333", c)
	}
	if c := row.Get(core.FieldPublicationDate); c.Kind != core.CellDate || c.String() != "2014-09-11" {
		t.Errorf("date cell = %+v, want date 2014-09-11", c)
	}
	if c := row.Get(core.FieldTitle); c.Kind != core.CellText || c.String() != "A valid title" {
		t.Errorf("title cell = %+v", c)
	}

	if _, err := s.Row(3); err == nil {
		t.Error("Row(3) error = nil, want out of range")
	}
}

func TestOpenXLSXValidatesEndToEnd(t *testing.T) {
	s, err := OpenXLSX(workbook(t, validValues()))
	if err != nil {
		t.Fatalf("OpenXLSX() error = %v", err)
	}

	var books []core.Book
	issues, err := core.NewValidator(nil, "").ProcessRows(s, func(b core.Book) error {
		books = append(books, b)
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessRows() error = %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
	if len(books) != 1 || books[0].ISBN != "9780111222333" {
		t.Fatalf("books = %+v", books)
	}
	if got := books[0].Dates.Publish.Format("20060102"); got != "20140911" {
		t.Errorf("publish date = %s, want 20140911", got)
	}
}

func TestOpenXLSXErrors(t *testing.T) {
	if _, err := OpenXLSX(bytes.NewReader(nil)); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("empty input error = %v, want ErrEmptyFile", err)
	}
	if _, err := OpenXLSX(strings.NewReader("not a zip")); err == nil {
		t.Error("garbage input error = nil")
	}
}

func TestOpenCSV(t *testing.T) {
	bom := "\xEF\xBB\xBF"
	input := bom + "eISBN 13,Title,Notes\n9780111222333,\"Caf\xe9, Bad\",\n\n"

	s, err := OpenCSV("books.csv", strings.NewReader(input))
	if err != nil {
		t.Fatalf("OpenCSV() error = %v", err)
	}

	if want := []string{"eISBN 13", "Title", "Notes"}; strings.Join(s.Headers(), "|") != strings.Join(want, "|") {
		t.Errorf("Headers() = %q, want %q", s.Headers(), want)
	}
	if s.Name() != "books" {
		t.Errorf("Name() = %q, want books", s.Name())
	}
	if s.RowCount() != 2 {
		t.Fatalf("RowCount() = %d, want 2", s.RowCount())
	}

	cells, err := s.Row(2)
	if err != nil {
		t.Fatalf("Row(2) error = %v", err)
	}
	if got := cells[1].String(); got != "Caf\uFFFD, Bad" {
		t.Errorf("title = %q, want invalid byte replaced", got)
	}
	if !cells[2].IsEmpty() {
		t.Errorf("notes = %+v, want empty", cells[2])
	}
}

func TestOpenCSVEmpty(t *testing.T) {
	if _, err := OpenCSV("x.csv", strings.NewReader("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("error = %v, want ErrEmptyFile", err)
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		contentType string
		want        Format
		wantErr     bool
	}{
		{"xlsx extension", "Books.XLSX", "", FormatXLSX, false},
		{"csv extension", "books.csv", "application/octet-stream", FormatCSV, false},
		{"content type fallback", "upload", contentTypeXLSX, FormatXLSX, false},
		{"csv content type with charset", "upload", "text/csv; charset=utf-8", FormatCSV, false},
		{"pdf", "books.pdf", "application/pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.file, tt.contentType)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DetectFormat() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnsupportedFormat) {
				t.Errorf("error = %v, want ErrUnsupportedFormat", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsDateFormat(t *testing.T) {
	custom := func(s string) *string { return &s }

	tests := []struct {
		name   string
		numFmt int
		custom *string
		want   bool
	}{
		{"builtin short date", 14, nil, true},
		{"builtin date time", 22, nil, true},
		{"builtin number", 2, nil, false},
		{"builtin time only", 20, nil, false},
		{"custom iso", 0, custom("yyyy-mm-dd"), true},
		{"custom currency with literal", 0, custom(`"day rate" 0.00`), false},
		{"custom coloured number", 0, custom(`[Red]0.00`), false},
	}

	for _, tt := range tests {
		if got := isDateFormat(tt.numFmt, tt.custom); got != tt.want {
			t.Errorf("%s: isDateFormat() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWriteTemplate(t *testing.T) {
	for _, format := range []Format{FormatXLSX, FormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteTemplate(&buf, format); err != nil {
				t.Fatalf("WriteTemplate() error = %v", err)
			}

			s, err := Open("template."+string(format), "", &buf)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if _, ok := core.CheckHeaders(s.Headers()); !ok {
				t.Errorf("template headers rejected: %q", s.Headers())
			}
			if s.RowCount() != 1 {
				t.Errorf("RowCount() = %d, want 1", s.RowCount())
			}
		})
	}

	if err := WriteTemplate(&bytes.Buffer{}, Format("pdf")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("WriteTemplate(pdf) error = %v, want ErrUnsupportedFormat", err)
	}
}
