package main

import (
	"github.com/spf13/cobra"
)

func newValidateCommand(ctx *cliContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a spreadsheet and list every issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := ctx.validator()
			if err != nil {
				return err
			}

			report, err := processFile(v, args[0], nil)
			if err != nil {
				return err
			}
			ctx.logger.Info("validated spreadsheet",
				"file", report.File,
				"books", len(report.Books),
				"issues", len(report.Issues),
			)
			return finish(cmd, report, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}
