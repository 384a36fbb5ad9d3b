package core

import "fmt"

// ValidateRow runs every rule over row and assembles the book.
//
// Rules run in table order and a failure never stops its siblings. Once all
// rules have run, the row currency is stamped on every price and contributor
// contiguity is checked against the slots that produced a contributor. rowNumber is the 1-based sheet row used in cell
// references. Callers must discard the book when issues is non-empty.
func (v *Validator) ValidateRow(row Row, rowNumber int) (Book, []Issue) {
	g := Regroup(row)

	var (
		book     Book
		issues   []Issue
		currency string
		filled   [ContributorSlots]bool
	)
	for _, rule := range v.rules {
		out := rule.Validate(rule.input(g))
		if !out.OK() {
			issues = append(issues, newIssue(row, rowNumber, rule.Name, out.Failure))
			continue
		}
		book.merge(out.Fragment)
		if rule.Slot > 0 && len(out.Fragment.Contributors) > 0 {
			filled[rule.Slot-1] = true
		}
		if out.Fragment.Currency != "" {
			currency = out.Fragment.Currency
		}
	}

	book.applyCurrency(currency)

	if issue, ok := checkContiguity(g.Row, filled, rowNumber); ok {
		issues = append(issues, issue)
	}
	return book, issues
}

// newIssue locates the failing cell and wraps the failure.
func newIssue(row Row, rowNumber int, field string, f *Failure) Issue {
	if f.FieldSuffix != "" {
		field += " " + f.FieldSuffix
	}
	cell := row.Get(field)
	column, ref := CellReference(field, rowNumber, row.Headers)

	return Issue{
		ErrorCode: f.Code,
		Message:   f.Message,
		Data: IssueData{
			Row:           rowNumber,
			Column:        column,
			CellReference: ref,
			FieldName:     field,
			Value:         cell.String(),
			ValueType:     cell.Kind.String(),
		},
	}
}

// checkContiguity reports the lowest contributor slot without a contributor
// that sits below one with a contributor. A slot whose cells failed
// validation counts as empty.
func checkContiguity(row Row, filled [ContributorSlots]bool, rowNumber int) (Issue, bool) {
	highest := 0
	for n := ContributorSlots; n >= 1; n-- {
		if filled[n-1] {
			highest = n
			break
		}
	}

	for m := 1; m < highest; m++ {
		if filled[m-1] {
			continue
		}
		field := ContributorField(m)
		return newIssue(row, rowNumber, field, &Failure{
			Code:    CodeContributorMissing,
			Message: fmt.Sprintf("'%s' must be filled in before '%s'", field, ContributorField(highest)),
		}), true
	}
	return Issue{}, false
}
