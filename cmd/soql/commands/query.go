package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		allPages bool
		tooling  bool
		maxPages int
		saveFile string
	)

	cmd := &cobra.Command{
		Use:     "query SOQL",
		Aliases: []string{"q"},
		Short:   "Execute a SOQL query",
		Long: `Execute a SOQL query against the configured org.

The query runs against the REST query endpoint, or the Tooling API variant
with --tooling. By default only the first server page is fetched; --all
follows continuation references until the result set is exhausted.`,
		Example: `  soql query "SELECT Id, Name FROM Account LIMIT 10"
  soql query --all "SELECT Id, Name FROM Contact"
  soql query --tooling "SELECT Id, Name FROM ApexClass"
  soql query -o csv "SELECT Id FROM Lead" > leads.csv
  soql query --save accounts.csv "SELECT Id, Name FROM Account"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			soqlText := strings.TrimSpace(strings.Join(args, " "))
			if soqlText == "" {
				return constants.ErrEmptyQuery
			}

			opts := buildQueryOptions(allPages, tooling, maxPages)

			result, err := runQuery(soqlText, opts)
			if err != nil {
				return err
			}

			if result.Empty() {
				_, _ = fmt.Fprintln(os.Stdout, constants.MsgNoDataFound)

				return nil
			}

			if cmd.Flags().Changed("save") {
				path, err := saveCSVFile(result, saveFile)
				if err != nil {
					return err
				}

				_, _ = fmt.Fprintf(os.Stdout, "Saved %d record(s) to %s\n", result.Len(), path)
			}

			err = renderResult(result, viper.GetString("output"))
			if err != nil {
				return err
			}

			if !allPages && result.LastPage != nil && result.LastPage.HasMore() {
				_, _ = fmt.Fprintln(os.Stderr, "More records are available. Re-run with --all to fetch every page.")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages by following continuation references")
	cmd.Flags().BoolVar(&tooling, "tooling", false, "query the Tooling API endpoint")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages when fetching all (0 = unlimited)")
	cmd.Flags().StringVar(&saveFile, "save", "", "write results as CSV to this file")
	cmd.Flags().Lookup("save").NoOptDefVal = constants.ExportFileName

	return cmd
}

// buildQueryOptions assembles query options from command flags. The API
// version is left to the client default so org profiles keep their say.
func buildQueryOptions(allPages, tooling bool, maxPages int) *soql.QueryOptions {
	opts := soql.NewQueryOptions()

	if tooling {
		opts = opts.WithTooling()
	}

	if allPages {
		opts = opts.WithAllPages()
	}

	if maxPages > 0 {
		opts = opts.WithMaxPages(maxPages)
	}

	return opts
}

// runQuery creates a client, optionally echoes the formed request URL, and
// executes the query.
func runQuery(soqlText string, opts *soql.QueryOptions) (*soql.AggregatedResult, error) {
	client, err := CreateClient()
	if err != nil {
		return nil, err
	}

	if viper.GetBool("verbose") {
		displayOpts := *opts
		if displayOpts.APIVersion == "" {
			displayOpts.APIVersion = client.APIVersion()
		}

		formedURL, err := soql.BuildQueryURL(client.BaseURL(), soqlText, &displayOpts)
		if err == nil {
			_, _ = fmt.Fprintf(os.Stderr, "Request URL: %s\n", formedURL)
		}
	}

	ctx := context.Background()

	result, err := client.Query(ctx, soqlText, opts)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	return result, nil
}
