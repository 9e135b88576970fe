package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// PresetQuery is a ready-made query for a commonly inspected object.
type PresetQuery struct {
	Name  string `json:"name"  yaml:"name"`
	Query string `json:"query" yaml:"query"`
}

// presetQueries lists the bundled quick-pick queries. Order is the display
// order.
var presetQueries = []PresetQuery{
	{
		Name:  "Accounts",
		Query: "SELECT Id, Name, Type FROM Account LIMIT 10",
	},
	{
		Name:  "Contacts",
		Query: "SELECT Id, FirstName, LastName, Email FROM Contact",
	},
	{
		Name:  "Opportunities",
		Query: "SELECT Id, Name, StageName, CloseDate FROM Opportunity WHERE CloseDate > LAST_YEAR LIMIT 10",
	},
	{
		Name:  "Leads",
		Query: "SELECT Id, FirstName, LastName, Company FROM Lead WHERE Status = 'Open - Not Contacted' ORDER BY CreatedDate DESC LIMIT 10",
	},
	{
		Name:  "Cases",
		Query: "SELECT Id, CaseNumber, Status, Subject FROM Case WHERE Status != 'Closed' ORDER BY Priority ASC LIMIT 10",
	},
	{
		Name:  "SetupAuditTrail",
		Query: "SELECT CreatedDate, CreatedBy.Name, CreatedByContext, CreatedByIssuer, Display, Section FROM SetupAuditTrail LIMIT 100",
	},
	{
		Name:  "GroupMember",
		Query: "SELECT Id, Group.Name, UserOrGroupId FROM GroupMember",
	},
}

// NewObjectsCommand creates the objects command group.
func NewObjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "objects",
		Aliases: []string{"obj"},
		Short:   "Run preset queries for common objects",
		Long:    "List and run ready-made SOQL queries for commonly inspected Salesforce objects",
	}

	cmd.AddCommand(newObjectsListCommand())
	cmd.AddCommand(newObjectsQueryCommand())

	return cmd
}

func newObjectsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available preset queries",
		Long:  "Display the bundled preset queries and the SOQL they run",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(presetQueries)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(presetQueries)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Name", "Query")

				for _, preset := range presetQueries {
					_ = table.Append([]string{preset.Name, truncateCell(preset.Query)})
				}

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newObjectsQueryCommand() *cobra.Command {
	var (
		allPages bool
		maxPages int
		saveFile string
	)

	cmd := &cobra.Command{
		Use:   "query NAME",
		Short: "Run a preset query",
		Long:  "Execute the preset query registered under the given object name",
		Example: `  soql objects query Accounts
  soql objects query setupaudittrail --all`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			preset, found := findPreset(args[0])
			if !found {
				return fmt.Errorf("%w: '%s'. Available: %s", constants.ErrUnknownPresetObject, args[0], presetNames())
			}

			result, err := runQuery(preset.Query, buildQueryOptions(allPages, false, maxPages))
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

			return renderResult(result, viper.GetString("output"))
		},
	}

	cmd.Flags().BoolVar(&allPages, "all", false, "fetch all pages by following continuation references")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages when fetching all (0 = unlimited)")
	cmd.Flags().StringVar(&saveFile, "save", "", "write results as CSV to this file")
	cmd.Flags().Lookup("save").NoOptDefVal = constants.ExportFileName

	return cmd
}

// findPreset looks up a preset by name, ignoring case.
func findPreset(name string) (*PresetQuery, bool) {
	for i := range presetQueries {
		if strings.EqualFold(presetQueries[i].Name, name) {
			return &presetQueries[i], true
		}
	}

	return nil, false
}

func presetNames() string {
	names := make([]string, 0, len(presetQueries))
	for _, preset := range presetQueries {
		names = append(names, preset.Name)
	}

	return strings.Join(names, ", ")
}
