package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"
)

// sortedOrgAliases returns profile aliases in a stable display order.
func sortedOrgAliases(orgs map[string]*OrgConfig) []string {
	aliases := make([]string, 0, len(orgs))
	for alias := range orgs {
		aliases = append(aliases, alias)
	}

	sort.Strings(aliases)

	return aliases
}

// validateFilePath rejects paths with traversal sequences and verifies the
// target is a readable regular file.
func validateFilePath(filePath string) error {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(filePath) {
		// Allow absolute paths but ensure they're clean
		if cleanPath != filePath {
			return constants.ErrDirectoryTraversalDetected
		}
	} else {
		// For relative paths, ensure they don't escape the current directory
		if len(cleanPath) > 1 && cleanPath[0] == '.' && cleanPath[1] == '.' {
			return constants.ErrDirectoryTraversalDetected
		}
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("file not accessible: %w", err)
	}

	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", constants.ErrNotRegularFile, cleanPath)
	}

	return nil
}

// renderResult writes an aggregated query result to stdout in the requested
// format. Callers handle the empty case before rendering.
func renderResult(result *soql.AggregatedResult, format string) error {
	switch format {
	case constants.FormatJSON:
		return renderResultJSON(result)
	case constants.FormatYAML:
		return renderResultYAML(result)
	case constants.FormatCSV:
		err := result.Table().WriteCSV(os.Stdout)
		if err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}

		return nil
	case constants.FormatTable, "":
		return renderResultTable(result)
	default:
		return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, format)
	}
}

// renderResultJSON emits the server payload verbatim for single-page
// fetches; aggregated multi-page results are re-enveloped.
func renderResultJSON(result *soql.AggregatedResult) error {
	if result.Pages <= 1 && len(result.Raw()) > 0 {
		var pretty json.RawMessage = result.Raw()

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(pretty)
		if err != nil {
			return fmt.Errorf("encoding result as JSON: %w", err)
		}

		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(resultEnvelope(result))
	if err != nil {
		return fmt.Errorf("encoding result as JSON: %w", err)
	}

	return nil
}

func renderResultYAML(result *soql.AggregatedResult) error {
	encoder := yaml.NewEncoder(os.Stdout)

	err := encoder.Encode(resultEnvelope(result))
	if err != nil {
		return fmt.Errorf("encoding result as YAML: %w", err)
	}

	return nil
}

func resultEnvelope(result *soql.AggregatedResult) soql.QueryResponse[soql.Record] {
	return soql.QueryResponse[soql.Record]{
		TotalSize: result.TotalSize(),
		Done:      true,
		Records:   result.Records,
	}
}

// renderResultTable prints the result as a terminal table with long cells
// truncated, followed by a record count.
func renderResultTable(result *soql.AggregatedResult) error {
	dataTable := result.Table()

	table := tablewriter.NewWriter(os.Stdout)
	table.Header(dataTable.Columns)

	for _, row := range dataTable.Rows {
		display := make([]string, len(row))
		for i, cell := range row {
			display[i] = truncateCell(cell)
		}

		_ = table.Append(display)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "\n%d record(s)", result.Len())

	if result.Pages > 1 {
		_, _ = fmt.Fprintf(os.Stdout, " across %d pages", result.Pages)
	}

	_, _ = os.Stdout.WriteString("\n")

	return nil
}

func truncateCell(value string) string {
	if len(value) <= constants.CellDisplayLength {
		return value
	}

	return value[:constants.CellDisplayLength-3] + "..."
}

// saveCSVFile writes the result as CSV to the given path. An empty path or
// a directory falls back to the default export file name.
func saveCSVFile(result *soql.AggregatedResult, path string) (string, error) {
	if path == "" {
		path = constants.ExportFileName
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, constants.ExportFileName)
	}

	data, err := result.Table().CSVBytes()
	if err != nil {
		return "", fmt.Errorf("encoding CSV: %w", err)
	}

	err = os.WriteFile(path, data, constants.ExportFilePerm)
	if err != nil {
		return "", fmt.Errorf("writing CSV file: %w", err)
	}

	return path, nil
}
