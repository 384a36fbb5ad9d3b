package core

import (
	"fmt"
	"slices"
)

// validValues is one complete, valid book keyed by header.
func validValues() map[string]Cell {
	return map[string]Cell{
		FieldISBN:                TextCell("9780111222333"),
		FieldTitle:               TextCell("A Test Book"),
		FieldSubtitle:            TextCell("With a Subtitle"),
		"Contributor 1":          TextCell("Testy McTest"),
		"Contributor 1 Inverted": TextCell("McTest, Testy"),
		"Contributor 1 Role":     TextCell("Author"),
		"Contributor 1 Bio":      TextCell("Writes tests."),
		FieldPublicationDate:     TextCell("2014-09-11"),
		FieldPriceExVAT:          TextCell("10.00"),
		FieldPriceIncVAT:         TextCell("12.00"),
		FieldCurrency:            TextCell("GBP"),
		FieldPageCount:           NumberCell(320),
		FieldImprint:             TextCell("Test Imprint"),
		FieldPublisher:           TextCell("Test Publisher"),
		FieldLanguage:            TextCell("eng"),
		FieldMainSubject:         TextCell("FIC005000"),
		FieldAdditionalSubjects:  TextCell("FIC009000, FIC045000"),
		FieldTerritories:         TextCell("GB"),
		FieldDescription:         TextCell("<p>A book about tests.</p>"),
	}
}

// with returns validValues with overrides applied. An empty Cell clears a field.
func with(overrides map[string]Cell) map[string]Cell {
	values := validValues()
	for k, c := range overrides {
		values[k] = c
	}
	return values
}

// rowFrom lays values out in RequiredHeadings order.
func rowFrom(values map[string]Cell) Row {
	headers := slices.Clone(RequiredHeadings)
	cells := make([]Cell, len(headers))
	for i, h := range headers {
		cells[i] = values[h]
	}
	return NewRow(headers, cells)
}

func issueCodes(issues []Issue) []string {
	codes := make([]string, len(issues))
	for i, is := range issues {
		codes[i] = is.ErrorCode
	}
	return codes
}

// fakeSource serves rows starting at sheet row 2. Row fails at failAt when set.
type fakeSource struct {
	headers []string
	rows    [][]Cell
	failAt  int
}

func sourceOf(rows ...Row) *fakeSource {
	src := &fakeSource{headers: slices.Clone(RequiredHeadings)}
	for _, r := range rows {
		src.rows = append(src.rows, r.Cells)
	}
	return src
}

func (s *fakeSource) Headers() []string { return s.headers }

func (s *fakeSource) RowCount() int { return len(s.rows) + HeaderRow }

func (s *fakeSource) Row(n int) ([]Cell, error) {
	if s.failAt != 0 && n == s.failAt {
		return nil, fmt.Errorf("read row %d: broken sheet", n)
	}
	i := n - HeaderRow - 1
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("row %d out of range", n)
	}
	return s.rows[i], nil
}

// recordingSanitizer records each policy it is asked for. It returns replace
// when set and the input otherwise.
type recordingSanitizer struct {
	replace  string
	policies []string
	inputs   []string
}

func (s *recordingSanitizer) Sanitize(policy, html string) string {
	s.policies = append(s.policies, policy)
	s.inputs = append(s.inputs, html)
	if s.replace != "" {
		return s.replace
	}
	return html
}
