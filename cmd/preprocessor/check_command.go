package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"preprocessor/internal/preflight"
	"preprocessor/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var paths pathFlags
	var apiURL string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories and label API reachability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.configCopy()
			if err != nil {
				return err
			}
			if err := paths.apply(cmd, cfg); err != nil {
				return services.Wrap(services.ErrValidation, "cli", "check", "", err)
			}
			if cmd.Flags().Changed("api-url") {
				cfg.API.URL = apiURL
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			failed := preflight.Failed(results)

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Preflight", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, preflightKind(r), r.Detail, colorize))
				}
			}

			if len(failed) > 0 {
				return services.Wrap(services.ErrValidation, "cli", "check", fmt.Sprintf("%d of %d checks failed", len(failed), len(results)), nil)
			}
			return nil
		},
	}
	paths.register(cmd)
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Label API root URL to probe")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output check results as JSON")
	return cmd
}
