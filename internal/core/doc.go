// Package core validates book metadata spreadsheet rows and assembles them
// into canonical Book records.
//
// The package holds no I/O. Spreadsheets arrive through the [Source]
// interface, implemented by the sheet package, and description HTML is
// cleaned through the [Sanitizer] interface, implemented by the sanitize
// package.
//
// # Architecture
//
//   - Field Validator Table: an ordered list of [FieldRule] values, one per
//     column. Each rule is pure and returns an [Outcome] holding either a
//     [Fragment] of the book or a [Failure].
//   - Contributor Regrouper: [Regroup] folds the "Contributor N ..." columns
//     into one group per slot before validation.
//   - Row Assembler: [Validator.ValidateRow] runs every rule, merges the
//     fragments, applies the row currency to every price and checks that
//     contributors are filled in order.
//   - Cell Locator: [CellReference] turns a header into a reference like "AB3".
//   - Book Stream: [Validator.ProcessRows] and [Validator.Rows] check the
//     header row and then walk the data rows in order.
//
// # Issues
//
// Data problems are reported as [Issue] values and never as Go errors:
//
//	v := core.NewValidator(sanitizer, core.DescriptionPolicy)
//	issues, err := v.ProcessRows(src, func(b core.Book) error {
//	    return publish(b)
//	})
//
// err is only set when the source cannot be read or the callback fails.
package core
