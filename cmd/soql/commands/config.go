package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/sfclient"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration.
type Config struct {
	// Named org profiles
	Orgs       map[string]*OrgConfig `json:"orgs,omitempty"        yaml:"orgs,omitempty"`
	CurrentOrg string                `json:"current_org,omitempty" yaml:"current_org,omitempty"`

	// Global settings
	Output     string `json:"output"                yaml:"output"`
	APIVersion string `json:"api_version,omitempty" yaml:"api_version,omitempty"`
}

// OrgConfig represents a single org profile.
type OrgConfig struct {
	InstanceURL string `json:"instance_url"          yaml:"instance_url"`
	AccessToken string `json:"access_token,omitempty" yaml:"access_token,omitempty"`
	APIVersion  string `json:"api_version,omitempty"  yaml:"api_version,omitempty"`
	AuthFile    string `json:"auth_file,omitempty"    yaml:"auth_file,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Manage soql CLI configuration including org profiles and global settings",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with tokens redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(redactConfig(config))
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(redactConfig(config))
			default:
				return displayConfigTable(config)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a global configuration value (output, api_version)",
		Args:  cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := args[1]

			config := loadConfig()

			switch key {
			case "output":
				if !validOutputFormat(value) {
					return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
				}

				config.Output = value
			case "api_version":
				config.APIVersion = value
			default:
				return fmt.Errorf("%w: %s. Use 'soql orgs' for org profile settings", constants.ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Set %s to %s\n", key, value)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Reset a global configuration value to its default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			config := loadConfig()

			switch key {
			case "output":
				config.Output = constants.FormatTable
			case "api_version":
				config.APIVersion = ""
			case "token", "access_token":
				return constants.ErrTokenCannotUnset
			default:
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Unset %s\n", key)

			return nil
		},
	}
}

func loadConfig() *Config {
	config := &Config{
		Orgs:       make(map[string]*OrgConfig),
		CurrentOrg: viper.GetString("current_org"),
		Output:     viper.GetString("output"),
		APIVersion: viper.GetString("api_version"),
	}

	orgsRaw := viper.GetStringMap("orgs")
	for alias, orgRaw := range orgsRaw {
		if orgMap, ok := orgRaw.(map[string]interface{}); ok {
			config.Orgs[alias] = parseOrgConfig(orgMap)
		}
	}

	return config
}

// parseOrgConfig parses an org profile from a raw config map.
func parseOrgConfig(orgMap map[string]interface{}) *OrgConfig {
	orgConfig := &OrgConfig{}

	fields := map[string]*string{
		"instance_url": &orgConfig.InstanceURL,
		"access_token": &orgConfig.AccessToken,
		"api_version":  &orgConfig.APIVersion,
		"auth_file":    &orgConfig.AuthFile,
	}

	for key, field := range fields {
		if value, ok := orgMap[key].(string); ok {
			*field = value
		}
	}

	return orgConfig
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, constants.ConfigDirName)

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, constants.ConfigFileName)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getOrgConfigByFlag returns the org profile selected by flag, or the
// current org when no flag is given.
func getOrgConfigByFlag(orgFlag string) (*OrgConfig, string, error) {
	config := loadConfig()

	if orgFlag != "" {
		orgConfig, exists := config.Orgs[orgFlag]
		if !exists {
			return nil, "", fmt.Errorf("%w: '%s'. Use 'soql orgs list' to see configured orgs", constants.ErrOrgConfigNotFound, orgFlag)
		}

		return orgConfig, orgFlag, nil
	}

	if config.CurrentOrg == "" {
		if len(config.Orgs) == 0 {
			return nil, "", constants.ErrNoOrgsConfigured
		}

		return nil, "", constants.ErrCurrentOrgNotFound
	}

	orgConfig, exists := config.Orgs[config.CurrentOrg]
	if !exists {
		return nil, "", fmt.Errorf("%w: '%s'", constants.ErrCurrentOrgNotFound, config.CurrentOrg)
	}

	return orgConfig, config.CurrentOrg, nil
}

// CreateClient builds a query client from flags, environment, and org
// profiles. Explicit credentials (--token, --auth-file) win over the profile
// selected with --org or the current org.
func CreateClient() (soql.Client, error) {
	clientConfig, err := resolveClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := sfclient.New(context.Background(), clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

func resolveClientConfig() (*soql.Config, error) {
	clientConfig := &soql.Config{
		InstanceURL: viper.GetString("instance_url"),
		AccessToken: viper.GetString("token"),
		APIVersion:  viper.GetString("api_version"),
	}

	if authFile := viper.GetString("auth_file"); authFile != "" {
		err := validateFilePath(authFile)
		if err != nil {
			return nil, err
		}

		clientConfig.CredentialsFile = authFile
	}

	if clientConfig.AccessToken != "" || clientConfig.CredentialsFile != "" {
		return clientConfig, nil
	}

	// No explicit credentials: fall back to an org profile.
	orgConfig, _, err := getOrgConfigByFlag(viper.GetString("org"))
	if err != nil {
		return nil, resolveProfileLookupError(err)
	}

	applyOrgProfile(clientConfig, orgConfig)

	if clientConfig.AccessToken == "" && clientConfig.CredentialsFile == "" {
		return nil, constants.ErrNotAuthenticated
	}

	return clientConfig, nil
}

// resolveProfileLookupError keeps org lookup errors for explicit --org use
// but reports a missing-credential situation as a login problem.
func resolveProfileLookupError(err error) error {
	if viper.GetString("org") != "" {
		return err
	}

	return fmt.Errorf("%w: %w", constants.ErrNotAuthenticated, err)
}

func applyOrgProfile(clientConfig *soql.Config, orgConfig *OrgConfig) {
	if clientConfig.InstanceURL == "" {
		clientConfig.InstanceURL = orgConfig.InstanceURL
	}

	if orgConfig.AccessToken != "" {
		clientConfig.AccessToken = orgConfig.AccessToken
	} else if orgConfig.AuthFile != "" {
		clientConfig.CredentialsFile = orgConfig.AuthFile
	}

	if clientConfig.APIVersion == "" {
		clientConfig.APIVersion = orgConfig.APIVersion
	}
}

// redactConfig returns a copy of the configuration with token material
// replaced by a mask.
func redactConfig(config *Config) *Config {
	redacted := &Config{
		Orgs:       make(map[string]*OrgConfig, len(config.Orgs)),
		CurrentOrg: config.CurrentOrg,
		Output:     config.Output,
		APIVersion: config.APIVersion,
	}

	for alias, orgConfig := range config.Orgs {
		orgCopy := *orgConfig
		if orgCopy.AccessToken != "" {
			orgCopy.AccessToken = constants.MaskedSecret
		}

		redacted.Orgs[alias] = &orgCopy
	}

	return redacted
}

// displayConfigTable displays configuration in a table format.
func displayConfigTable(config *Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Output", formatConfigValue(config.Output)})
	_ = table.Append([]string{"API Version", formatConfigValue(config.APIVersion)})

	if config.CurrentOrg != "" {
		_ = table.Append([]string{"Current Org", config.CurrentOrg})
	}

	_, _ = os.Stdout.WriteString("Global Configuration:\n")

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	if len(config.Orgs) == 0 {
		_, _ = os.Stdout.WriteString("\nNo orgs configured. Use 'soql orgs add' to add one.\n")

		return nil
	}

	_, _ = os.Stdout.WriteString("\nConfigured Orgs:\n")

	return renderOrgsTable(config)
}

func renderOrgsTable(config *Config) error {
	orgsTable := tablewriter.NewWriter(os.Stdout)
	orgsTable.Header("Alias", "Instance URL", "API Version", "Auth", "Current")

	for _, alias := range sortedOrgAliases(config.Orgs) {
		orgConfig := config.Orgs[alias]
		_ = orgsTable.Append([]string{
			alias,
			orgConfig.InstanceURL,
			formatConfigValue(orgConfig.APIVersion),
			describeOrgAuth(orgConfig),
			formatCurrentIndicator(alias == config.CurrentOrg),
		})
	}

	err := orgsTable.Render()
	if err != nil {
		return fmt.Errorf("failed to render orgs table: %w", err)
	}

	return nil
}

// describeOrgAuth summarizes how a profile authenticates without exposing
// the token itself.
func describeOrgAuth(orgConfig *OrgConfig) string {
	switch {
	case orgConfig.AccessToken != "":
		return "token"
	case orgConfig.AuthFile != "":
		return "file: " + orgConfig.AuthFile
	default:
		return "none"
	}
}

func formatConfigValue(value string) string {
	if value == "" {
		return "-"
	}

	return value
}

func formatCurrentIndicator(isCurrent bool) string {
	if isCurrent {
		return constants.CheckMarkSymbol
	}

	return ""
}

func validOutputFormat(format string) bool {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML, constants.FormatCSV:
		return true
	default:
		return false
	}
}

// extractOrgAlias derives a short default alias from an instance URL.
func extractOrgAlias(instanceURL string) string {
	alias := instanceURL
	alias = strings.TrimPrefix(alias, "https://")
	alias = strings.TrimPrefix(alias, "http://")

	if idx := strings.Index(alias, "/"); idx != -1 {
		alias = alias[:idx]
	}

	if idx := strings.Index(alias, ":"); idx != -1 {
		alias = alias[:idx]
	}

	alias = strings.TrimSuffix(alias, ".my.salesforce.com")
	alias = strings.TrimSuffix(alias, ".salesforce.com")

	return alias
}
