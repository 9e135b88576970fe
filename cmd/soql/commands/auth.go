package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/fivetwenty-io/soql/pkg/sfclient"
	"github.com/fivetwenty-io/soql/pkg/soql"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// verifyQuery is a minimal query used to confirm credentials work.
const verifyQuery = "SELECT Id, Name FROM Organization LIMIT 1"

// NewAuthCommand creates the auth command group.
func NewAuthCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  "Log in to a Salesforce org with a session token or a credential file",
	}

	cmd.AddCommand(newAuthLoginCommand())
	cmd.AddCommand(newAuthFileCommand())
	cmd.AddCommand(newAuthShowCommand())
	cmd.AddCommand(newAuthLogoutCommand())

	return cmd
}

func newAuthLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with a session token",
		Long: "Store a session token for an org profile. The instance URL and token " +
			"are taken from flags when given and prompted for otherwise. Credentials " +
			"are verified with a minimal query before they are saved.",
		Example: `  soql auth login -i https://myorg.my.salesforce.com
  soql auth login -i https://myorg.my.salesforce.com -t 00D... --org prod`,
		RunE: func(cmd *cobra.Command, args []string) error {
			instanceURL := strings.TrimSpace(viper.GetString("instance_url"))
			token := viper.GetString("token")
			interactive := term.IsTerminal(int(syscall.Stdin))

			if instanceURL == "" {
				if !interactive {
					return constants.ErrNoInstanceURL
				}

				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Instance URL: ")
				instanceURL, _ = reader.ReadString('\n')
				instanceURL = strings.TrimSpace(instanceURL)
			}

			if instanceURL == "" {
				return constants.ErrNoInstanceURL
			}

			instanceURL = soql.NormalizeInstanceURL(instanceURL)

			if token == "" {
				if !interactive {
					return constants.ErrInteractiveDisabled
				}

				fmt.Print("Access token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = strings.TrimSpace(string(byteToken))

				fmt.Println()
			}

			if token == "" {
				return constants.ErrInteractiveDisabled
			}

			orgName, err := verifyCredentials(instanceURL, token)
			if err != nil {
				return err
			}

			alias := viper.GetString("org")
			if alias == "" {
				alias = extractOrgAlias(instanceURL)
			}

			config := loadConfig()

			orgConfig, exists := config.Orgs[alias]
			if !exists {
				orgConfig = &OrgConfig{}
				config.Orgs[alias] = orgConfig
			}

			orgConfig.InstanceURL = instanceURL
			orgConfig.AccessToken = token
			// A fresh token supersedes any stored credential file.
			orgConfig.AuthFile = ""

			isFirstOrg := config.CurrentOrg == "" || len(config.Orgs) == 1
			if isFirstOrg {
				config.CurrentOrg = alias
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Successfully logged in to %s\n", instanceURL)

			if orgName != "" {
				_, _ = fmt.Fprintf(os.Stdout, "Organization: %s\n", orgName)
			}

			if isFirstOrg {
				_, _ = fmt.Fprintf(os.Stdout, "Org '%s' set as current\n", alias)
			}

			return nil
		},
	}
}

func newAuthFileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "file PATH",
		Short: "Log in with a credential file",
		Long: "Resolve credentials from a JSON authentication document and store the " +
			"file reference in an org profile. The document must carry an access token " +
			"and an instance URL under their usual snake_case or camelCase keys, such " +
			"as the output of 'sf org display --json'.",
		Example: `  sf org display --json > auth.json
  soql auth file auth.json --org prod`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			err := validateFilePath(path)
			if err != nil {
				return err
			}

			creds, err := soql.LoadCredentialsFile(path)
			if err != nil {
				return err
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("failed to resolve file path: %w", err)
			}

			alias := viper.GetString("org")
			if alias == "" {
				alias = extractOrgAlias(creds.InstanceURL)
			}

			config := loadConfig()

			orgConfig, exists := config.Orgs[alias]
			if !exists {
				orgConfig = &OrgConfig{}
				config.Orgs[alias] = orgConfig
			}

			orgConfig.InstanceURL = creds.InstanceURL
			// The file stays the source of truth; re-resolved on every run.
			orgConfig.AuthFile = absPath
			orgConfig.AccessToken = ""

			isFirstOrg := config.CurrentOrg == "" || len(config.Orgs) == 1
			if isFirstOrg {
				config.CurrentOrg = alias
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Stored credential file for org '%s' (%s)\n", alias, creds.InstanceURL)

			if isFirstOrg {
				_, _ = fmt.Fprintf(os.Stdout, "Org '%s' set as current\n", alias)
			}

			return nil
		},
	}
}

// authStatus is the serializable view of one org's authentication state.
type authStatus struct {
	Alias string     `json:"alias" yaml:"alias"`
	Org   *OrgConfig `json:"org"   yaml:"org"`
}

func newAuthShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show authentication state",
		Long:  "Display how the selected org authenticates, with the token redacted",
		RunE: func(cmd *cobra.Command, args []string) error {
			orgConfig, alias, err := getOrgConfigByFlag(viper.GetString("org"))
			if err != nil {
				return err
			}

			redacted := *orgConfig
			if redacted.AccessToken != "" {
				redacted.AccessToken = constants.MaskedSecret
			}

			status := &authStatus{Alias: alias, Org: &redacted}

			output := viper.GetString("output")
			switch output {
			case constants.FormatJSON:
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")

				return encoder.Encode(status)
			case constants.FormatYAML:
				encoder := yaml.NewEncoder(os.Stdout)

				return encoder.Encode(status)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Property", "Value")

				_ = table.Append([]string{"Org", alias})
				_ = table.Append([]string{"Instance URL", redacted.InstanceURL})
				_ = table.Append([]string{"API Version", formatConfigValue(redacted.APIVersion)})
				_ = table.Append([]string{"Auth", describeOrgAuth(orgConfig)})

				err = table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			}
		},
	}
}

func newAuthLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out of an org",
		Long:  "Clear the stored token and credential file reference for the selected org",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			alias := viper.GetString("org")
			if alias == "" {
				alias = config.CurrentOrg
			}

			if alias == "" {
				if len(config.Orgs) == 0 {
					return constants.ErrNoOrgsConfigured
				}

				return constants.ErrCurrentOrgNotFound
			}

			orgConfig, exists := config.Orgs[alias]
			if !exists {
				return fmt.Errorf("%w: '%s'", constants.ErrOrgConfigNotFound, alias)
			}

			orgConfig.AccessToken = ""
			orgConfig.AuthFile = ""

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(os.Stdout, "Logged out of org '%s'\n", alias)

			return nil
		},
	}
}

// verifyCredentials runs a minimal query against the org and returns its
// name when available.
func verifyCredentials(instanceURL, token string) (string, error) {
	client, err := sfclient.New(context.Background(), &soql.Config{
		InstanceURL: instanceURL,
		AccessToken: token,
		APIVersion:  viper.GetString("api_version"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}

	result, err := client.Query(context.Background(), verifyQuery, soql.NewQueryOptions())
	if err != nil {
		return "", fmt.Errorf("failed to verify credentials: %w", err)
	}

	if result.Empty() {
		return "", nil
	}

	return result.Records[0].StringValue("Name"), nil
}
