package core

// convert.go turns raw spreadsheet cells into typed values.
//
// Publisher sheets are messy: numbers typed as text, ISBNs saved as floats,
// dates entered in whatever order the author's locale suggested. Every
// function here accepts a Cell and reports ok=false instead of guessing.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// numericRegex validates that a string is a plain decimal after cleanup.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// isoDateRegex matches YYYY-MM-DD and YYYYMMDD, optionally saved as "20140911.0".
var isoDateRegex = regexp.MustCompile(`^((?:16|17|18|19|20)\d\d)-?(\d\d)-?(\d\d)(?:\.0)?$`)

// britishDateRegex matches day-month-year with slash or dash separators.
var britishDateRegex = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// listSeparators splits the multi-value columns (territories, BISAC codes).
var listSeparators = regexp.MustCompile(`[,;\s]+`)

// fractionalSuffix strips the ".0" a spreadsheet adds when an identifier is stored as a float.
var fractionalSuffix = regexp.MustCompile(`^(\d+)\.\d*$`)

// CleanCell removes common spreadsheet artifacts from a text value:
// surrounding whitespace, the Excel formula prefix (="...") and
// decomposed unicode, which is normalized to NFC.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}

	return norm.NFC.String(s)
}

// ToDate converts a cell to a publication date at UTC midnight.
//
// Accepted forms: a native date cell, YYYY-MM-DD, YYYYMMDD (also as a number
// or with a trailing ".0"), and DD/MM/YYYY or DD-MM-YYYY. Slash and dash
// dates are always read day first.
func ToDate(c Cell) (time.Time, bool) {
	if c.Kind == CellDate {
		y, m, d := c.Time.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}

	s := c.String()
	if s == "" {
		return time.Time{}, false
	}

	if m := isoDateRegex.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := britishDateRegex.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

// makeDate builds a date and rejects values time.Date would silently roll over.
func makeDate(year, month, day string) (time.Time, bool) {
	y, err1 := strconv.Atoi(year)
	m, err2 := strconv.Atoi(month)
	d, err3 := strconv.Atoi(day)
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

// ToAmount converts a cell to a price amount. Any numeric value is accepted.
// Currency symbols and thousands separators are tolerated in text cells.
func ToAmount(c Cell) (float64, bool) {
	if c.Kind == CellNumber {
		if math.IsNaN(c.Number) || math.IsInf(c.Number, 0) {
			return 0, false
		}
		return c.Number, true
	}

	s := c.String()
	for _, sym := range []string{"£", "$", "€", ","} {
		s = strings.ReplaceAll(s, sym, "")
	}
	s = strings.TrimSpace(s)

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ToInteger converts a cell holding a whole number ("320", 320, "320.0").
func ToInteger(c Cell) (int, bool) {
	var f float64
	if c.Kind == CellNumber {
		f = c.Number
	} else {
		s := c.String()
		if !numericRegex.MatchString(s) {
			return 0, false
		}
		var err error
		if f, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, false
		}
	}

	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ToIdentifier renders a cell as a digit string, dropping any fractional
// suffix left behind when an identifier was stored as a float.
func ToIdentifier(c Cell) string {
	if c.Kind == CellNumber {
		return strconv.FormatFloat(math.Trunc(c.Number), 'f', 0, 64)
	}

	s := c.String()
	if m := fractionalSuffix.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return s
}

// SplitList splits a comma, semicolon or whitespace separated cell.
func SplitList(c Cell) []string {
	var out []string
	for _, part := range listSeparators.Split(c.String(), -1) {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
