package core

import (
	"errors"
	"slices"
	"testing"
)

func TestCheckHeaders(t *testing.T) {
	if _, ok := CheckHeaders(RequiredHeadings); !ok {
		t.Error("CheckHeaders(RequiredHeadings) ok = false, want true")
	}

	headers := append(slices.Clone(RequiredHeadings), "Notes")
	if _, ok := CheckHeaders(headers); !ok {
		t.Error("extra headers alone should not reject the sheet")
	}

	headers = slices.DeleteFunc(slices.Clone(RequiredHeadings), func(h string) bool {
		return h == FieldTerritories || h == FieldImprint
	})
	headers = append(headers, "Territory", "")

	issue, ok := CheckHeaders(headers)
	if ok {
		t.Fatal("CheckHeaders ok = true, want false")
	}
	if issue.ErrorCode != CodeHeadersIncorrect {
		t.Errorf("ErrorCode = %q, want %q", issue.ErrorCode, CodeHeadersIncorrect)
	}
	if want := []string{FieldImprint, FieldTerritories}; !slices.Equal(issue.Data.MissingHeaders, want) {
		t.Errorf("MissingHeaders = %v, want %v", issue.Data.MissingHeaders, want)
	}
	if want := []string{"Territory"}; !slices.Equal(issue.Data.ExtraHeaders, want) {
		t.Errorf("ExtraHeaders = %v, want %v", issue.Data.ExtraHeaders, want)
	}
	if issue.Data.Row != 1 || issue.Data.CellReference != "-" || issue.Data.Column != nil {
		t.Errorf("Data = %+v, want row 1 with no cell", issue.Data)
	}
}

func TestProcessRowsRejectsHeaders(t *testing.T) {
	v := NewValidator(nil, "")
	src := sourceOf(rowFrom(validValues()), rowFrom(validValues()))
	src.headers = slices.DeleteFunc(src.headers, func(h string) bool { return h == FieldTerritories })

	called := 0
	issues, err := v.ProcessRows(src, func(Book) error {
		called++
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessRows() error = %v", err)
	}
	if len(issues) != 1 || issues[0].ErrorCode != CodeHeadersIncorrect {
		t.Errorf("issues = %+v, want one headers.incorrect", issues)
	}
	if called != 0 {
		t.Errorf("onBook called %d times, want 0", called)
	}
}

func TestProcessRowsMixed(t *testing.T) {
	v := NewValidator(nil, "")
	src := sourceOf(
		rowFrom(validValues()),
		rowFrom(with(map[string]Cell{FieldISBN: TextCell("nope")})),
		rowFrom(map[string]Cell{}),
		rowFrom(with(map[string]Cell{FieldISBN: TextCell("9780111222340")})),
		rowFrom(with(map[string]Cell{FieldTitle: Cell{}, FieldPublisher: Cell{}})),
	)

	var isbns []string
	issues, err := v.ProcessRows(src, func(b Book) error {
		isbns = append(isbns, b.ISBN)
		return nil
	})
	if err != nil {
		t.Fatalf("ProcessRows() error = %v", err)
	}

	if want := []string{"9780111222333", "9780111222340"}; !slices.Equal(isbns, want) {
		t.Errorf("books = %v, want %v", isbns, want)
	}

	wantCodes := []string{CodeISBNInvalid, CodeTitleInvalid, CodePublisherInvalid}
	if got := issueCodes(issues); !slices.Equal(got, wantCodes) {
		t.Errorf("codes = %v, want %v", got, wantCodes)
	}
	wantRows := []int{3, 6, 6}
	for i, is := range issues {
		if is.Data.Row != wantRows[i] {
			t.Errorf("issues[%d].Row = %d, want %d", i, is.Data.Row, wantRows[i])
		}
	}
}

func TestProcessRowsCallbackError(t *testing.T) {
	v := NewValidator(nil, "")
	src := sourceOf(rowFrom(validValues()), rowFrom(validValues()))
	boom := errors.New("publish failed")

	calls := 0
	_, err := v.ProcessRows(src, func(Book) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("onBook called %d times, want 1", calls)
	}
}

func TestProcessRowsSourceError(t *testing.T) {
	v := NewValidator(nil, "")
	src := sourceOf(rowFrom(validValues()), rowFrom(validValues()))
	src.failAt = 3

	calls := 0
	_, err := v.ProcessRows(src, func(Book) error {
		calls++
		return nil
	})
	if err == nil {
		t.Fatal("ProcessRows() error = nil, want read failure")
	}
	if calls != 1 {
		t.Errorf("onBook called %d times, want 1", calls)
	}
}

func TestRowsStopsEarly(t *testing.T) {
	v := NewValidator(nil, "")
	src := sourceOf(rowFrom(validValues()), rowFrom(validValues()), rowFrom(validValues()))

	var seen []int
	for res, err := range v.Rows(src) {
		if err != nil {
			t.Fatalf("Rows() error = %v", err)
		}
		seen = append(seen, res.Row)
		if len(seen) == 2 {
			break
		}
	}
	if want := []int{2, 3}; !slices.Equal(seen, want) {
		t.Errorf("rows = %v, want %v", seen, want)
	}
}
