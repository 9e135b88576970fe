package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// NewOrgsCommand creates the orgs command group.
func NewOrgsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orgs",
		Aliases: []string{"org"},
		Short:   "Manage Salesforce org profiles",
		Long:    "Add, list, remove, and switch between Salesforce org profiles",
	}

	cmd.AddCommand(newOrgsAddCommand())
	cmd.AddCommand(newOrgsListCommand())
	cmd.AddCommand(newOrgsRemoveCommand())
	cmd.AddCommand(newOrgsUseCommand())

	return cmd
}

func newOrgsAddCommand() *cobra.Command {
	var (
		token      string
		authFile   string
		apiVersion string
	)

	cmd := &cobra.Command{
		Use:   "add NAME [INSTANCE_URL]",
		Short: "Add an org profile",
		Long: "Add a named org profile to the configuration. The instance URL may be " +
			"given directly or taken from a credential file supplied with --auth-file.",
		Example: `  soql orgs add prod myorg.my.salesforce.com --token 00D...
  soql orgs add sandbox --auth-file sandbox-auth.json`,
		Args: cobra.RangeArgs(1, constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var instanceURL string
			if len(args) > 1 {
				instanceURL = soql.NormalizeInstanceURL(args[1])
			}

			if authFile != "" {
				err := validateFilePath(authFile)
				if err != nil {
					return err
				}

				creds, err := soql.LoadCredentialsFile(authFile)
				if err != nil {
					return err
				}

				authFile, err = filepath.Abs(authFile)
				if err != nil {
					return fmt.Errorf("failed to resolve file path: %w", err)
				}

				if instanceURL == "" {
					instanceURL = creds.InstanceURL
				}
			}

			if instanceURL == "" {
				return constants.ErrNoInstanceURL
			}

			config := loadConfig()

			if _, exists := config.Orgs[name]; exists {
				return fmt.Errorf("%w: '%s'", constants.ErrOrgAlreadyExists, name)
			}

			config.Orgs[name] = &OrgConfig{
				InstanceURL: instanceURL,
				AccessToken: token,
				APIVersion:  apiVersion,
				AuthFile:    authFile,
			}

			if config.CurrentOrg == "" {
				config.CurrentOrg = name

				_, _ = fmt.Fprintf(os.Stdout, "Org '%s' (%s) added and set as current\n", name, instanceURL)
			} else {
				_, _ = fmt.Fprintf(os.Stdout, "Org '%s' (%s) added\n", name, instanceURL)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "session token for the org")
	cmd.Flags().StringVar(&authFile, "auth-file", "", "path to a JSON credential file for the org")
	cmd.Flags().StringVar(&apiVersion, "api-version", "", "query API version for the org")

	return cmd
}

// orgInfo is the serializable view of one org profile used by list output.
type orgInfo struct {
	Alias       string `json:"alias"                 yaml:"alias"`
	InstanceURL string `json:"instance_url"          yaml:"instance_url"`
	APIVersion  string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
	Auth        string `json:"auth"                  yaml:"auth"`
	Current     bool   `json:"current"               yaml:"current"`
}

func newOrgsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List org profiles",
		Long:  "Display all configured org profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if len(config.Orgs) == 0 {
				_, _ = fmt.Fprintln(os.Stdout, "No orgs configured. Use 'soql orgs add' to add one.")

				return nil
			}

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(orgInfos(config))
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(orgInfos(config))
			default:
				return renderOrgsTable(config)
			}
		},
	}
}

// orgInfos flattens the org map into a deterministic, token-free listing.
func orgInfos(config *Config) []orgInfo {
	infos := make([]orgInfo, 0, len(config.Orgs))

	for _, alias := range sortedOrgAliases(config.Orgs) {
		orgConfig := config.Orgs[alias]
		infos = append(infos, orgInfo{
			Alias:       alias,
			InstanceURL: orgConfig.InstanceURL,
			APIVersion:  orgConfig.APIVersion,
			Auth:        describeOrgAuth(orgConfig),
			Current:     alias == config.CurrentOrg,
		})
	}

	return infos
}

func newOrgsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm", "delete"},
		Short:   "Remove an org profile",
		Long:    "Remove a named org profile from the configuration",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			config := loadConfig()

			if _, exists := config.Orgs[name]; !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrOrgConfigNotFound, name)
			}

			if len(config.Orgs) == 1 && config.CurrentOrg == name {
				return constants.ErrCannotRemoveOnlyOrg
			}

			delete(config.Orgs, name)

			if config.CurrentOrg == name {
				if len(config.Orgs) > 0 {
					config.CurrentOrg = sortedOrgAliases(config.Orgs)[0]

					_, _ = fmt.Fprintf(os.Stdout, "Org '%s' removed. Current org switched to '%s'\n", name, config.CurrentOrg)
				} else {
					config.CurrentOrg = ""

					_, _ = fmt.Fprintf(os.Stdout, "Org '%s' removed. No orgs remaining.\n", name)
				}
			} else {
				_, _ = fmt.Fprintf(os.Stdout, "Org '%s' removed\n", name)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			return nil
		},
	}
}

func newOrgsUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use NAME",
		Short: "Switch the current org",
		Long:  "Set a named org profile as the current org",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			config := loadConfig()

			if _, exists := config.Orgs[name]; !exists {
				return fmt.Errorf("%w: '%s'. Use 'soql orgs list' to see configured orgs", constants.ErrOrgConfigNotFound, name)
			}

			config.CurrentOrg = name

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Org '%s' is now the current org\n", name)

			return nil
		},
	}
}
