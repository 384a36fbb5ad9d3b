package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bookingest/internal/core"
	"github.com/JonMunkholm/bookingest/internal/logging"
	"github.com/JonMunkholm/bookingest/internal/sanitize"
)

// errIssuesFound makes the process exit non-zero once issues are printed.
var errIssuesFound = errors.New("spreadsheet has issues")

type cliContext struct {
	policy    string
	logLevel  string
	logFormat string

	logger *slog.Logger
}

func (c *cliContext) validator() (*core.Validator, error) {
	registry := sanitize.New()
	if !registry.Has(c.policy) {
		return nil, fmt.Errorf("unknown sanitizer policy %q", c.policy)
	}
	return core.NewValidator(registry, c.policy), nil
}

func newRootCommand() *cobra.Command {
	ctx := &cliContext{}

	rootCmd := &cobra.Command{
		Use:           "booksheet",
		Short:         "Validate book metadata spreadsheets and render ONIX",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.logger = logging.New(cmd.ErrOrStderr(), ctx.logLevel, ctx.logFormat)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&ctx.policy, "policy", sanitize.PolicyDescription, "HTML sanitizer policy for descriptions")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&ctx.logFormat, "log-format", "text", "Log format (text, json)")

	rootCmd.AddCommand(newValidateCommand(ctx))
	rootCmd.AddCommand(newOnixCommand(ctx))
	rootCmd.AddCommand(newTemplateCommand(ctx))

	return rootCmd
}
