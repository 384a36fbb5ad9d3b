package core

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ContributorSlots is the number of contributor column groups in a sheet.
const ContributorSlots = 3

// Sub-fields of a contributor column group, keyed by the header text that
// follows "Contributor N". The bare "Contributor N" header maps to Name.
const (
	SubName     = "Name"
	SubInverted = "Inverted"
	SubRole     = "Role"
	SubBio      = "Bio"
	SubPhotoURL = "Photo URL"
)

var contributorSubFields = []string{SubName, SubInverted, SubRole, SubBio, SubPhotoURL}

// ContributorRoles maps the role names publishers use to ONIX contributor
// role codes.
var ContributorRoles = map[string]string{
	"author":       "A01",
	"illustrator":  "A12",
	"preface":      "A15",
	"prologue":     "A16",
	"afterword":    "A19",
	"notes":        "A20",
	"foreword":     "A23",
	"introduction": "A24",
	"editor":       "B01",
	"translator":   "B06",
}

var uriCheck = validator.New()

// ContributorCells holds one contributor slot's cells keyed by sub-field.
type ContributorCells map[string]Cell

// Populated reports whether any known sub-field of the slot has a value.
func (g ContributorCells) Populated() bool {
	for _, sub := range contributorSubFields {
		if !g[sub].IsEmpty() {
			return true
		}
	}
	return false
}

// GroupedRow is a row whose contributor columns have been collapsed into
// one ContributorCells per slot.
type GroupedRow struct {
	Row          Row
	Contributors [ContributorSlots]ContributorCells
}

// ContributorField returns the column name of slot n (1-based), e.g. "Contributor 2".
func ContributorField(n int) string {
	return "Contributor " + strconv.Itoa(n)
}

// Regroup collects every "Contributor N ..." column into slot N, stripping the
// prefix so the validator sees Name, Inverted, Role, Bio and Photo URL.
// The input row is not modified.
func Regroup(row Row) GroupedRow {
	g := GroupedRow{Row: row}
	for n := 1; n <= ContributorSlots; n++ {
		g.Contributors[n-1] = make(ContributorCells, len(contributorSubFields))
	}

	for i, h := range row.Headers {
		n, sub, ok := contributorHeader(h)
		if !ok {
			continue
		}
		slot := g.Contributors[n-1]
		if _, seen := slot[sub]; seen {
			continue
		}
		var c Cell
		if i < len(row.Cells) {
			c = row.Cells[i]
		}
		slot[sub] = c
	}
	return g
}

// contributorHeader splits "Contributor 2 Photo URL" into (2, "Photo URL").
func contributorHeader(h string) (int, string, bool) {
	for n := 1; n <= ContributorSlots; n++ {
		prefix := ContributorField(n)
		if h == prefix {
			return n, SubName, true
		}
		if rest, ok := strings.CutPrefix(h, prefix+" "); ok && rest != "" {
			return n, rest, true
		}
	}
	return 0, "", false
}

// validateContributor checks one contributor slot.
func validateContributor(g ContributorCells) Outcome {
	if !g.Populated() {
		return succeed(Fragment{})
	}

	name := g[SubName].String()
	if name == "" {
		var present []string
		for _, sub := range contributorSubFields {
			if !g[sub].IsEmpty() {
				present = append(present, sub)
			}
		}
		return fail(CodeContributorInvalid, fmt.Sprintf(
			"Contributor name must be present if any other fields are not empty (%s)",
			strings.Join(present, ", ")))
	}

	sortName := g[SubInverted].String()
	if sortName == "" {
		sortName = InvertName(name)
	}

	role, ok := ContributorRoles[strings.ToLower(g[SubRole].String())]
	if !ok {
		return failOn(SubRole, CodeContributorInvalid, fmt.Sprintf(
			"Contributor Role is invalid (must be one of: %s)", strings.Join(roleNames(), ", ")))
	}

	c := Contributor{
		Names: Names{Display: name, Sort: sortName},
		Role:  role,
	}

	if bio := g[SubBio].String(); bio != "" {
		c.Biography = bio
	}

	if photo := g[SubPhotoURL].String(); photo != "" {
		if err := uriCheck.Var(photo, "url"); err != nil {
			return failOn(SubPhotoURL, CodeContributorInvalid, "Contributor Photo URL must be a URL")
		}
		c.Media = &Media{Images: []Image{{
			Classification: []Classification{{Realm: "type", ID: "profile"}},
			URIs:           []URI{{Type: "remote", URI: photo}},
		}}}
	}

	return succeed(Fragment{Contributors: []Contributor{c}})
}

// InvertName derives a sort name by moving the first word to the end:
// "Testy McTest" becomes "McTest, Testy" and "Plato" becomes ", Plato".
func InvertName(name string) string {
	first, rest, _ := strings.Cut(strings.Join(strings.Fields(name), " "), " ")
	return rest + ", " + first
}

func roleNames() []string {
	names := make([]string, 0, len(ContributorRoles))
	for name := range ContributorRoles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
