package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/sheet"
)

// sheetReport summarises one validated file.
type sheetReport struct {
	File   string       `json:"file"`
	Valid  bool         `json:"valid"`
	Books  []string     `json:"isbns"`
	Issues []core.Issue `json:"issues"`
}

// processFile validates the sheet at path and calls onBook for each valid row.
func processFile(v *core.Validator, path string, onBook func(core.Book) error) (*sheetReport, error) {
	s, err := sheet.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	report := &sheetReport{File: path, Books: []string{}}
	issues, err := v.ProcessRows(s, func(book core.Book) error {
		if onBook != nil {
			if err := onBook(book); err != nil {
				return err
			}
		}
		report.Books = append(report.Books, book.ISBN)
		return nil
	})
	if err != nil {
		return nil, err
	}

	report.Issues = issues
	if report.Issues == nil {
		report.Issues = []core.Issue{}
	}
	report.Valid = len(issues) == 0
	return report, nil
}

func printReport(cmd *cobra.Command, report *sheetReport) {
	out := cmd.OutOrStdout()
	if len(report.Issues) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"Row", "Cell", "Field", "Code", "Message", "Value"},
			issueRows(report.Issues),
			[]columnAlignment{alignRight},
		))
	}
	fmt.Fprintf(out, "%s: %d valid books, %d issues\n", report.File, len(report.Books), len(report.Issues))
}

func issueRows(issues []core.Issue) [][]string {
	rows := make([][]string, 0, len(issues))
	for _, is := range issues {
		field := is.Data.FieldName
		if len(is.Data.MissingHeaders) > 0 {
			field = fmt.Sprintf("missing %q", is.Data.MissingHeaders)
		}
		rows = append(rows, []string{
			strconv.Itoa(is.Data.Row),
			is.Data.CellReference,
			field,
			is.ErrorCode,
			is.Message,
			is.Data.Value,
		})
	}
	return rows
}

// finish renders the report and maps issues onto errIssuesFound.
func finish(cmd *cobra.Command, report *sheetReport, asJSON bool) error {
	if asJSON {
		if err := writeJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}
	if !report.Valid {
		return errIssuesFound
	}
	return nil
}
