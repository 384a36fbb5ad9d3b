package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/onix"
)

func newOnixCommand(ctx *cliContext) *cobra.Command {
	var outDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "onix FILE",
		Short: "Write one ONIX 2.1 file per valid row",
		Long: "Validates FILE and writes <isbn>.xml into the output directory for every\n" +
			"valid row. Rows with issues are reported and skipped.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ctx.validator()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			note := fmt.Sprintf("Generated from `%s`", filepath.Base(args[0]))
			report, err := processFile(v, args[0], func(book core.Book) error {
				doc, err := onix.Marshal(book, note)
				if err != nil {
					return err
				}
				path := filepath.Join(outDir, book.ISBN+".xml")
				if err := os.WriteFile(path, doc, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				ctx.logger.Debug("wrote onix", "isbn", book.ISBN, "path", path)
				return nil
			})
			if err != nil {
				return err
			}
			ctx.logger.Info("rendered onix",
				"file", report.File,
				"out", outDir,
				"books", len(report.Books),
			)
			return finish(cmd, report, asJSON)
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Directory for generated ONIX files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
