package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookingest/internal/sheet"
)

func newTemplateCommand(ctx *cliContext) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty spreadsheet with the required headings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := sheet.Format(format)
			if out == "-" {
				return sheet.WriteTemplate(cmd.OutOrStdout(), f)
			}
			if out == "" {
				out = "books_template." + format
			}

			file, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := sheet.WriteTemplate(file, f); err != nil {
				file.Close()
				os.Remove(out)
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			ctx.logger.Info("wrote template", "path", out, "format", format)
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(sheet.FormatXLSX), "Template format (xlsx, csv)")
	cmd.Flags().StringVarP(&out, "out", "o", "", `Output path, "-" for stdout`)
	return cmd
}
