package core

import (
	"reflect"
	"slices"
	"testing"
)

func TestValidateRowValid(t *testing.T) {
	v := NewValidator(nil, "")

	book, issues := v.ValidateRow(rowFrom(validValues()), 2)
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}

	if book.ISBN != "9780111222333" {
		t.Errorf("ISBN = %q, want %q", book.ISBN, "9780111222333")
	}
	if !slices.Equal(book.Language, []string{"eng"}) {
		t.Errorf("Language = %v, want [eng]", book.Language)
	}
	if len(book.Contributors) != 1 || book.Contributors[0].Role != "A01" {
		t.Fatalf("Contributors = %+v, want one A01", book.Contributors)
	}
	if book.Title == "" || book.Publisher == "" || book.Dates.Publish == nil ||
		len(book.Prices) != 2 || len(book.Subjects) != 3 || len(book.Descriptions) != 1 || len(book.RegionalRights) != 1 {
		t.Errorf("book is missing required data: %+v", book)
	}
	if s, ok := book.MainSubject(); !ok || s.Code != "FIC005000" {
		t.Errorf("MainSubject() = %+v, %v", s, ok)
	}
	if book.Pages == nil || *book.Pages != 320 {
		t.Errorf("Pages = %v, want 320", book.Pages)
	}
}

func TestValidateRowCurrencyPropagation(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		FieldPriceExVAT:  NumberCell(10.0),
		FieldPriceIncVAT: NumberCell(12.0),
		FieldCurrency:    TextCell("gbp"),
	}))

	book, issues := v.ValidateRow(row, 2)
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}

	want := []Price{
		{Amount: 10, IncludesTax: false, Currency: "GBP"},
		{Amount: 12, IncludesTax: true, Currency: "GBP"},
	}
	if !reflect.DeepEqual(book.Prices, want) {
		t.Errorf("Prices = %+v, want %+v", book.Prices, want)
	}
}

func TestValidateRowCollectsEveryFailure(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		FieldISBN:        TextCell("123"),
		FieldTitle:       Cell{},
		FieldTerritories: TextCell("Narnia"),
	}))

	_, issues := v.ValidateRow(row, 5)

	want := []string{CodeISBNInvalid, CodeTitleInvalid, CodeTerritoriesInvalid}
	if got := issueCodes(issues); !slices.Equal(got, want) {
		t.Errorf("codes = %v, want %v", got, want)
	}
}

func TestValidateRowCellReference(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		FieldAdditionalSubjects: TextCell("NOTBISAC"),
	}))
	if idx := slices.Index(row.Headers, FieldAdditionalSubjects); idx != 27 {
		t.Fatalf("fixture header index = %d, want 27", idx)
	}

	_, issues := v.ValidateRow(row, 3)
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one", issues)
	}

	d := issues[0].Data
	if d.CellReference != "AB3" {
		t.Errorf("CellReference = %q, want %q", d.CellReference, "AB3")
	}
	if d.Column == nil || *d.Column != 27 {
		t.Errorf("Column = %v, want 27", d.Column)
	}
	if d.Row != 3 || d.FieldName != FieldAdditionalSubjects || d.Value != "NOTBISAC" || d.ValueType != "string" {
		t.Errorf("Data = %+v", d)
	}
}

func TestValidateRowSubFieldReference(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 1 Role": TextCell("ghost"),
	}))

	_, issues := v.ValidateRow(row, 2)
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one", issues)
	}
	d := issues[0].Data
	if d.FieldName != "Contributor 1 Role" || d.CellReference != "F2" || d.Value != "ghost" {
		t.Errorf("Data = %+v, want Contributor 1 Role at F2", d)
	}
}

func TestValidateRowContributorAutoInvert(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 1":          TextCell("Testy McTest"),
		"Contributor 1 Inverted": Cell{},
	}))

	book, issues := v.ValidateRow(row, 2)
	if len(issues) != 0 {
		t.Fatalf("issues = %+v, want none", issues)
	}
	if got := book.Contributors[0].Names.Sort; got != "McTest, Testy" {
		t.Errorf("Sort = %q, want %q", got, "McTest, Testy")
	}
}

func TestValidateRowContiguity(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 1":           Cell{},
		"Contributor 1 Inverted":  Cell{},
		"Contributor 1 Role":      Cell{},
		"Contributor 1 Bio":       Cell{},
		"Contributor 1 Photo URL": Cell{},
		"Contributor 2":           TextCell("Second Person"),
		"Contributor 2 Role":      TextCell("editor"),
	}))

	_, issues := v.ValidateRow(row, 4)
	if len(issues) != 1 {
		t.Fatalf("issues = %+v, want one", issues)
	}
	is := issues[0]
	if is.ErrorCode != CodeContributorMissing {
		t.Errorf("ErrorCode = %q, want %q", is.ErrorCode, CodeContributorMissing)
	}
	if is.Data.FieldName != "Contributor 1" || is.Data.CellReference != "D4" {
		t.Errorf("Data = %+v, want Contributor 1 at D4", is.Data)
	}
}

func TestValidateRowContiguityLowestGap(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 3":      TextCell("Third Person"),
		"Contributor 3 Role": TextCell("author"),
	}))

	_, issues := v.ValidateRow(row, 2)
	if got := issueCodes(issues); !slices.Equal(got, []string{CodeContributorMissing}) {
		t.Fatalf("codes = %v", got)
	}
	if issues[0].Data.FieldName != "Contributor 2" {
		t.Errorf("FieldName = %q, want Contributor 2", issues[0].Data.FieldName)
	}
}

func TestValidateRowContiguityIgnoresInvalidSlot(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 1 Role": TextCell("ghost"),
		"Contributor 2":      TextCell("Second Person"),
		"Contributor 2 Role": TextCell("editor"),
	}))

	_, issues := v.ValidateRow(row, 2)
	want := []string{CodeContributorInvalid, CodeContributorMissing}
	if got := issueCodes(issues); !slices.Equal(got, want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	if issues[1].Data.FieldName != "Contributor 1" {
		t.Errorf("FieldName = %q, want Contributor 1", issues[1].Data.FieldName)
	}
}

func TestValidateRowContiguityNamelessSlot(t *testing.T) {
	v := NewValidator(nil, "")
	row := rowFrom(with(map[string]Cell{
		"Contributor 1":          Cell{},
		"Contributor 1 Inverted": Cell{},
		"Contributor 1 Role":     Cell{},
		"Contributor 1 Bio":      Cell{},
		"Contributor 2 Role":     TextCell("editor"),
	}))

	_, issues := v.ValidateRow(row, 2)
	if got := issueCodes(issues); !slices.Equal(got, []string{CodeContributorInvalid}) {
		t.Fatalf("codes = %v, want only %s", got, CodeContributorInvalid)
	}
	if issues[0].Data.FieldName != "Contributor 2" {
		t.Errorf("FieldName = %q, want Contributor 2", issues[0].Data.FieldName)
	}
}

func TestValidateRowIdempotent(t *testing.T) {
	v := NewValidator(&recordingSanitizer{}, "")
	row := rowFrom(with(map[string]Cell{FieldLanguage: TextCell("english")}))

	book1, issues1 := v.ValidateRow(row, 2)
	book2, issues2 := v.ValidateRow(row, 2)

	if !reflect.DeepEqual(book1, book2) {
		t.Error("books differ between runs")
	}
	if !reflect.DeepEqual(issues1, issues2) {
		t.Error("issues differ between runs")
	}
}
