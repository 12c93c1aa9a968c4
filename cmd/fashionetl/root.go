package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

const (
	successMessage = "ETL pipeline completed successfully!"
	failureMessage = "ETL pipeline encountered errors. Check the logs for details."
)

// options are the command-line overrides. Zero values defer to configuration.
type options struct {
	configPath string
	baseURL    string
	maxPages   int
	summary    bool
}

type runFunc func(ctx context.Context, opts options, out io.Writer) error

// newRootCmd creates the root command. run is injected so tests can observe
// flag handling without touching the network.
func newRootCmd(run runFunc) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "fashionetl",
		Short: "Scrape, normalize and load the fashion catalog.",
		Long: `fashionetl walks the paginated storefront catalog, cleans every listing
into a fixed schema, and writes the result to a CSV snapshot, a Google
Sheets range and a PostgreSQL table. A failing destination never stops
the others; the final line reports whether every step succeeded.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "config file (yaml, json or toml)")
	flags.StringVar(&opts.baseURL, "url", "", "catalog base URL (overrides scrape.base_url)")
	flags.IntVar(&opts.maxPages, "pages", 0, "page ceiling (overrides scrape.max_pages)")
	flags.BoolVar(&opts.summary, "summary", false, "print a run summary table")

	return cmd
}
