package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bookingest/internal/core"
)

const templateSheet = "Books"

// WriteTemplate writes an empty spreadsheet carrying the required headings.
// The xlsx version freezes the header row and formats the publication date
// column as a date.
func WriteTemplate(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(core.RequiredHeadings); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		cw.Flush()
		return cw.Error()
	case FormatXLSX:
		return writeXLSXTemplate(w)
	default:
		return ErrUnsupportedFormat
	}
}

func writeXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	header := make([]any, len(core.RequiredHeadings))
	for i, h := range core.RequiredHeadings {
		header[i] = h
	}
	if err := f.SetSheetRow(templateSheet, "A1", &header); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	last, _ := core.ColumnName(len(core.RequiredHeadings))
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	if err := f.SetCellStyle(templateSheet, "A1", last+"1", bold); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	if err := f.SetColWidth(templateSheet, "A", last, 22); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	dateFmt := 14
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: dateFmt})
	if err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	dateCol, _ := core.ColumnName(slices.Index(core.RequiredHeadings, core.FieldPublicationDate) + 1)
	if err := f.SetColStyle(templateSheet, dateCol, dateStyle); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	if err := f.SetPanes(templateSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("write template: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
