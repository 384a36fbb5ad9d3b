package core

// fields.go declares the per-column validator table.
//
// Every rule is a pure function from the raw cell (or, for contributors,
// the regrouped slot) to an Outcome. Rules never see each other's results;
// cross-field checks live in the assembler.

import (
	"fmt"
	"regexp"
	"strings"
)

// Column headers of the book metadata sheet.
const (
	FieldISBN               = "eISBN 13"
	FieldTitle              = "Title"
	FieldSubtitle           = "Subtitle"
	FieldPublicationDate    = "Publication Date"
	FieldLanguage           = "Language"
	FieldPriceExVAT         = "List Price ex VAT"
	FieldPriceIncVAT        = "List Price inc VAT"
	FieldCurrency           = "Currency Type"
	FieldPageCount          = "Page Count"
	FieldPublisher          = "Publisher"
	FieldImprint            = "Imprint"
	FieldMainSubject        = "BISAC Main Subject"
	FieldAdditionalSubjects = "Additional BISAC Subjects (comma separated)"
	FieldDescription        = "Description"
	FieldTerritories        = "Territories"
)

// Issue codes.
const (
	CodeHeadersIncorrect       = "headers.incorrect"
	CodeISBNInvalid            = "isbn.invalid"
	CodeTitleInvalid           = "title.invalid"
	CodeContributorInvalid     = "contributor.invalid"
	CodeContributorMissing     = "contributor.missing"
	CodePublishDateInvalid     = "publish_date.invalid"
	CodeLanguageInvalid        = "language.invalid"
	CodeExVATPriceInvalid      = "ex_vat_price.invalid"
	CodeIncVATPriceInvalid     = "inc_vat_price.invalid"
	CodeCurrencyInvalid        = "currency.invalid"
	CodePageCountInvalid       = "page_count.invalid"
	CodePublisherInvalid       = "publisher.invalid"
	CodeMainBISACInvalid       = "main_bisac.invalid"
	CodeAdditionalBISACInvalid = "additional_bisac.invalid"
	CodeDescriptionInvalid     = "description.invalid"
	CodeTerritoriesInvalid     = "territories.invalid"
)

// SubjectTypeBISAC is the subject scheme used for every BISAC code.
const SubjectTypeBISAC = "BISAC"

// TerritoryWorld grants rights everywhere.
const TerritoryWorld = "WORLD"

// RequiredHeadings must all be present in a sheet's header row.
var RequiredHeadings = []string{
	FieldISBN, FieldTitle, FieldSubtitle,
	"Contributor 1", "Contributor 1 Inverted", "Contributor 1 Role", "Contributor 1 Bio", "Contributor 1 Photo URL",
	"Contributor 2", "Contributor 2 Inverted", "Contributor 2 Role", "Contributor 2 Bio", "Contributor 2 Photo URL",
	"Contributor 3", "Contributor 3 Inverted", "Contributor 3 Role", "Contributor 3 Bio", "Contributor 3 Photo URL",
	FieldPublicationDate, FieldPriceExVAT, FieldPriceIncVAT, FieldCurrency, FieldPageCount,
	FieldImprint, FieldPublisher, FieldLanguage, FieldMainSubject, FieldAdditionalSubjects,
	FieldTerritories, FieldDescription,
}

var (
	isbnRegex      = regexp.MustCompile(`^\d{13}$`)
	threeLetters   = regexp.MustCompile(`^[A-Za-z]{3}$`)
	bisacRegex     = regexp.MustCompile(`^[A-Za-z]{3}\d{6}$`)
	territoryRegex = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Sanitizer cleans description HTML against a named allow-list policy.
type Sanitizer interface {
	Sanitize(policy, html string) string
}

// DescriptionPolicy is the sanitizer policy applied to descriptions by default.
const DescriptionPolicy = "description"

// FieldInput is what a rule receives: the field's cell, or for contributor
// rules the regrouped slot.
type FieldInput struct {
	Cell        Cell
	Contributor ContributorCells
}

// FieldRule validates one column.
type FieldRule struct {
	Name string
	// Slot is the 1-based contributor slot for grouped rules, 0 otherwise.
	Slot     int
	Validate func(FieldInput) Outcome
}

// input picks the rule's value out of a regrouped row.
func (r FieldRule) input(g GroupedRow) FieldInput {
	if r.Slot > 0 {
		return FieldInput{Contributor: g.Contributors[r.Slot-1]}
	}
	return FieldInput{Cell: g.Row.Get(r.Name)}
}

// Validator validates spreadsheet rows into books.
// It holds no per-row state and is safe for concurrent use.
type Validator struct {
	sanitizer Sanitizer
	policy    string
	rules     []FieldRule
}

// NewValidator builds the validator table. Descriptions are passed through
// sanitizer using policy; a nil sanitizer stores them verbatim.
func NewValidator(sanitizer Sanitizer, policy string) *Validator {
	if policy == "" {
		policy = DescriptionPolicy
	}
	v := &Validator{sanitizer: sanitizer, policy: policy}
	v.rules = v.buildRules()
	return v
}

// Rules returns the validator table in evaluation order.
func (v *Validator) Rules() []FieldRule {
	return v.rules
}

func (v *Validator) buildRules() []FieldRule {
	rules := []FieldRule{
		{Name: FieldISBN, Validate: validateISBN},
		{Name: FieldTitle, Validate: validateTitle},
		{Name: FieldSubtitle, Validate: validateSubtitle},
	}
	for n := 1; n <= ContributorSlots; n++ {
		rules = append(rules, FieldRule{
			Name: ContributorField(n),
			Slot: n,
			Validate: func(in FieldInput) Outcome {
				return validateContributor(in.Contributor)
			},
		})
	}
	return append(rules,
		FieldRule{Name: FieldPublicationDate, Validate: validatePublicationDate},
		FieldRule{Name: FieldLanguage, Validate: validateLanguage},
		FieldRule{Name: FieldPriceExVAT, Validate: priceRule(FieldPriceExVAT, CodeExVATPriceInvalid, false)},
		FieldRule{Name: FieldPriceIncVAT, Validate: priceRule(FieldPriceIncVAT, CodeIncVATPriceInvalid, true)},
		FieldRule{Name: FieldCurrency, Validate: validateCurrency},
		FieldRule{Name: FieldPageCount, Validate: validatePageCount},
		FieldRule{Name: FieldPublisher, Validate: validatePublisher},
		FieldRule{Name: FieldImprint, Validate: validateImprint},
		FieldRule{Name: FieldMainSubject, Validate: validateMainSubject},
		FieldRule{Name: FieldAdditionalSubjects, Validate: validateAdditionalSubjects},
		FieldRule{Name: FieldDescription, Validate: v.validateDescription},
		FieldRule{Name: FieldTerritories, Validate: validateTerritories},
	)
}

func validateISBN(in FieldInput) Outcome {
	isbn := ToIdentifier(in.Cell)
	if !isbnRegex.MatchString(isbn) {
		return fail(CodeISBNInvalid, fmt.Sprintf("'%s' is not a valid ISBN", FieldISBN))
	}
	return succeed(Fragment{ISBN: isbn})
}

func validateTitle(in FieldInput) Outcome {
	title := in.Cell.String()
	if title == "" {
		return fail(CodeTitleInvalid, fmt.Sprintf("'%s' cannot be empty", FieldTitle))
	}
	return succeed(Fragment{Title: title})
}

func validateSubtitle(in FieldInput) Outcome {
	return succeed(Fragment{Subtitle: in.Cell.String()})
}

func validatePublicationDate(in FieldInput) Outcome {
	t, ok := ToDate(in.Cell)
	if !ok {
		return fail(CodePublishDateInvalid, fmt.Sprintf(
			"'%s' must be a date in the format YYYYMMDD, YYYY-MM-DD or DD/MM/YYYY", FieldPublicationDate))
	}
	return succeed(Fragment{PublishDate: &t})
}

func validateLanguage(in FieldInput) Outcome {
	lang := in.Cell.String()
	if !threeLetters.MatchString(lang) {
		return fail(CodeLanguageInvalid, fmt.Sprintf("'%s' must be a three letter word", FieldLanguage))
	}
	return succeed(Fragment{Language: []string{strings.ToLower(lang)}})
}

func priceRule(field, code string, includesTax bool) func(FieldInput) Outcome {
	return func(in FieldInput) Outcome {
		amount, ok := ToAmount(in.Cell)
		if !ok {
			return fail(code, fmt.Sprintf("'%s' must be a number", field))
		}
		return succeed(Fragment{Prices: []Price{{Amount: amount, IncludesTax: includesTax}}})
	}
}

func validateCurrency(in FieldInput) Outcome {
	currency := in.Cell.String()
	if !threeLetters.MatchString(currency) {
		return fail(CodeCurrencyInvalid, fmt.Sprintf("'%s' must be a three letter currency code", FieldCurrency))
	}
	return succeed(Fragment{Currency: strings.ToUpper(currency)})
}

func validatePageCount(in FieldInput) Outcome {
	if in.Cell.IsEmpty() {
		return succeed(Fragment{})
	}
	pages, ok := ToInteger(in.Cell)
	if !ok {
		return fail(CodePageCountInvalid, fmt.Sprintf("'%s' must be a whole number", FieldPageCount))
	}
	return succeed(Fragment{Pages: &pages})
}

func validatePublisher(in FieldInput) Outcome {
	publisher := in.Cell.String()
	if publisher == "" {
		return fail(CodePublisherInvalid, fmt.Sprintf("'%s' cannot be empty", FieldPublisher))
	}
	return succeed(Fragment{Publisher: publisher})
}

func validateImprint(in FieldInput) Outcome {
	return succeed(Fragment{Imprint: in.Cell.String()})
}

func validateMainSubject(in FieldInput) Outcome {
	code := in.Cell.String()
	if !bisacRegex.MatchString(code) {
		return fail(CodeMainBISACInvalid, fmt.Sprintf("'%s' must be a BISAC code such as FIC005000", FieldMainSubject))
	}
	return succeed(Fragment{Subjects: []Subject{{Type: SubjectTypeBISAC, Code: strings.ToUpper(code), Main: true}}})
}

func validateAdditionalSubjects(in FieldInput) Outcome {
	codes := SplitList(in.Cell)
	subjects := make([]Subject, 0, len(codes))
	for _, code := range codes {
		if !bisacRegex.MatchString(code) {
			return fail(CodeAdditionalBISACInvalid, fmt.Sprintf("'%s' is not a BISAC code", code))
		}
		subjects = append(subjects, Subject{Type: SubjectTypeBISAC, Code: strings.ToUpper(code)})
	}
	return succeed(Fragment{Subjects: subjects})
}

func (v *Validator) validateDescription(in FieldInput) Outcome {
	if in.Cell.String() == "" {
		return fail(CodeDescriptionInvalid, fmt.Sprintf("'%s' cannot be empty", FieldDescription))
	}
	text := in.Cell.Text
	if in.Cell.Kind != CellText {
		text = in.Cell.String()
	}
	if v.sanitizer != nil {
		text = v.sanitizer.Sanitize(v.policy, text)
	}
	return succeed(Fragment{Descriptions: []Description{{
		Content:        text,
		Classification: []Classification{{Realm: "type", ID: "main"}},
	}}})
}

func validateTerritories(in FieldInput) Outcome {
	codes := SplitList(in.Cell)
	if len(codes) == 0 {
		return fail(CodeTerritoriesInvalid, fmt.Sprintf("'%s' cannot be empty", FieldTerritories))
	}

	rights := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(code)
		if code != TerritoryWorld && !territoryRegex.MatchString(code) {
			return fail(CodeTerritoriesInvalid, fmt.Sprintf(
				"'%s' is not a two letter territory code or %s", code, TerritoryWorld))
		}
		rights[code] = true
	}
	return succeed(Fragment{RegionalRights: rights})
}
