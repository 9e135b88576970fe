package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		allPages    bool
		tooling     bool
		maxPages    int
		filePath    string
		overwrite   bool
		toStdout    bool
		format      string
		natsURL     string
		natsSubject string
	)

	cmd := &cobra.Command{
		Use:   "export SOQL",
		Short: "Execute a query and export the results",
		Long: `Execute a SOQL query and deliver the results to one or more sinks.

Sinks are selected by flags and fan out: --file writes CSV (or the chosen
--format) to disk, --stdout streams to standard output, and --nats-url
publishes one JSON message per record to a NATS subject.`,
		Example: `  soql export --file accounts.csv "SELECT Id, Name FROM Account"
  soql export --stdout --format json "SELECT Id FROM Lead"
  soql export --nats-url nats://localhost:4222 --nats-subject crm.accounts "SELECT Id FROM Account"
  soql export --file all.csv --all "SELECT Id, Name FROM Contact"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			soqlText := strings.TrimSpace(strings.Join(args, " "))
			if soqlText == "" {
				return constants.ErrEmptyQuery
			}

			natsRequested := cmd.Flags().Changed("nats-url") || cmd.Flags().Changed("nats-subject")

			sink, labels, err := buildExportSink(exportFlags{
				FilePath:    filePath,
				Overwrite:   overwrite,
				Stdout:      toStdout,
				Format:      format,
				NATS:        natsRequested,
				NATSURL:     natsURL,
				NATSSubject: natsSubject,
			})
			if err != nil {
				return err
			}

			result, err := runQuery(soqlText, buildQueryOptions(allPages, tooling, maxPages))
			if err != nil {
				return err
			}

			if result.Empty() {
				_, _ = fmt.Fprintln(os.Stdout, constants.MsgNoDataFound)

				err = sink.Close()
				if err != nil {
					return fmt.Errorf("closing export sink: %w", err)
				}

				return nil
			}

			ctx := context.Background()

			err = sink.Write(ctx, result)
			if err != nil {
				_ = sink.Close()

				return fmt.Errorf("export failed: %w", err)
			}

			err = sink.Close()
			if err != nil {
				return fmt.Errorf("closing export sink: %w", err)
			}

			// Keep the summary off stdout when data was streamed there.
			summary := io.Writer(os.Stdout)
			if toStdout {
				summary = os.Stderr
			}

			_, _ = fmt.Fprintf(summary, "Exported %d record(s) to %s\n", result.Len(), strings.Join(labels, ", "))

			return nil
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages by following continuation references")
	cmd.Flags().BoolVar(&tooling, "tooling", false, "query the Tooling API endpoint")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages when fetching all (0 = unlimited)")
	cmd.Flags().StringVar(&filePath, "file", "", "export to this file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace the export file if it exists")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "export to standard output")
	cmd.Flags().StringVar(&format, "format", constants.FormatCSV, "export encoding for file and stdout sinks (csv, json, yaml)")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "publish records to this NATS server")
	cmd.Flags().StringVar(&natsSubject, "nats-subject", constants.DefaultNATSSubject, "NATS subject to publish records to")

	return cmd
}

type exportFlags struct {
	FilePath    string
	Overwrite   bool
	Stdout      bool
	Format      string
	NATS        bool
	NATSURL     string
	NATSSubject string
}

// buildExportSink assembles the sink fan-out selected by flags, along with
// human-readable labels for the completion summary.
func buildExportSink(flags exportFlags) (soql.Sink, []string, error) {
	titler := cases.Title(language.English)

	var (
		sinks  []soql.Sink
		labels []string
	)

	if flags.FilePath != "" {
		sink, err := soql.NewSinkBuilder().
			WithFormat(flags.Format).
			WithFile(flags.FilePath, flags.Overwrite).
			Build()
		if err != nil {
			return nil, nil, fmt.Errorf("building file sink: %w", err)
		}

		sinks = append(sinks, sink)
		labels = append(labels, fmt.Sprintf("%s (%s)", titler.String(string(soql.SinkTypeFile)), flags.FilePath))
	}

	if flags.Stdout {
		sink, err := soql.NewSinkBuilder().
			WithType(soql.SinkTypeStdout).
			WithFormat(flags.Format).
			Build()
		if err != nil {
			return nil, nil, fmt.Errorf("building stdout sink: %w", err)
		}

		sinks = append(sinks, sink)
		labels = append(labels, titler.String(string(soql.SinkTypeStdout)))
	}

	if flags.NATS {
		natsConfig := soql.DefaultNATSSinkConfig()
		if flags.NATSURL != "" {
			natsConfig.URL = flags.NATSURL
		}

		if flags.NATSSubject != "" {
			natsConfig.Subject = flags.NATSSubject
		}

		sink, err := soql.NewSinkBuilder().
			WithNATS(natsConfig).
			Build()
		if err != nil {
			return nil, nil, fmt.Errorf("building NATS sink: %w", err)
		}

		sinks = append(sinks, sink)
		labels = append(labels, fmt.Sprintf("NATS (%s, subject %s)", natsConfig.URL, natsConfig.Subject))
	}

	switch len(sinks) {
	case 0:
		return nil, nil, constants.ErrNoExportSink
	case 1:
		return sinks[0], labels, nil
	default:
		return soql.NewMultiSink(sinks...), labels, nil
	}
}
