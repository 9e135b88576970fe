package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// batchSummary is the serializable outcome of one batch query.
type batchSummary struct {
	ID       string `json:"id"              yaml:"id"`
	Success  bool   `json:"success"         yaml:"success"`
	Records  int    `json:"records"         yaml:"records"`
	Pages    int    `json:"pages"           yaml:"pages"`
	Duration string `json:"duration"        yaml:"duration"`
	Error    string `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand() *cobra.Command {
	var (
		concurrency int
		timeout     time.Duration
		saveDir     string
	)

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run a batch of queries from a file",
		Long: "Run several independent queries described in a YAML file. Queries run " +
			"concurrently up to the configured limit; a failing query is reported in " +
			"the summary without stopping the others.",
		Example: `  soql batch queries.yml
  soql batch queries.yml --concurrency 5 --save-dir ./results`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			err := validateFilePath(path)
			if err != nil {
				return err
			}

			batchFile, err := soql.LoadBatchFile(path)
			if err != nil {
				return err
			}

			for i := range batchFile.Queries {
				if batchFile.Queries[i].ID == "" {
					batchFile.Queries[i].ID = "query-" + strconv.Itoa(i+1)
				}
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			executor := soql.NewBatchExecutor(client, concurrency)
			if timeout > 0 {
				executor.SetTimeout(timeout)
			}

			results, err := executor.Execute(context.Background(), batchFile.Queries)
			if err != nil {
				return fmt.Errorf("batch execution failed: %w", err)
			}

			if saveDir != "" {
				err = saveBatchResults(results, saveDir)
				if err != nil {
					return err
				}
			}

			err = renderBatchSummary(results, viper.GetString("output"))
			if err != nil {
				return err
			}

			failed := 0

			for _, result := range results {
				if !result.Success {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", constants.ErrBatchQueriesFailed, failed, len(results))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", constants.DefaultConcurrencyLimit, "maximum number of queries running at once")
	cmd.Flags().DurationVar(&timeout, "timeout", constants.DefaultBatchTimeout, "per-query timeout")
	cmd.Flags().StringVar(&saveDir, "save-dir", "", "write each query's records as CSV into this directory")

	return cmd
}

// saveBatchResults writes one CSV file per successful query, named after the
// query ID.
func saveBatchResults(results []soql.BatchResult, dir string) error {
	err := os.MkdirAll(dir, constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create results directory: %w", err)
	}

	for _, result := range results {
		if !result.Success || result.Result == nil || result.Result.Empty() {
			continue
		}

		data, err := result.Result.Table().CSVBytes()
		if err != nil {
			return fmt.Errorf("encoding CSV for %s: %w", result.ID, err)
		}

		path := filepath.Join(dir, result.ID+".csv")

		err = os.WriteFile(path, data, constants.ExportFilePerm)
		if err != nil {
			return fmt.Errorf("writing CSV for %s: %w", result.ID, err)
		}
	}

	return nil
}

func renderBatchSummary(results []soql.BatchResult, format string) error {
	summaries := make([]batchSummary, 0, len(results))

	for _, result := range results {
		summary := batchSummary{
			ID:       result.ID,
			Success:  result.Success,
			Duration: result.Duration.Round(time.Millisecond).String(),
		}

		if result.Result != nil {
			summary.Records = result.Result.Len()
			summary.Pages = result.Result.Pages
		}

		if result.Error != nil {
			summary.Error = result.Error.Error()
		}

		summaries = append(summaries, summary)
	}

	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		return encoder.Encode(summaries)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		return encoder.Encode(summaries)
	default:
		return renderBatchTable(summaries)
	}
}

func renderBatchTable(summaries []batchSummary) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("ID", "Status", "Records", "Pages", "Duration")

	for _, summary := range summaries {
		status := "OK"
		if !summary.Success {
			status = "FAILED"
		}

		_ = table.Append([]string{
			summary.ID,
			status,
			strconv.Itoa(summary.Records),
			strconv.Itoa(summary.Pages),
			summary.Duration,
		})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	for _, summary := range summaries {
		if summary.Error != "" {
			_, _ = fmt.Fprintf(os.Stderr, "Error (%s): %s\n", summary.ID, summary.Error)
		}
	}

	return nil
}
