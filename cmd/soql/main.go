package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/soql/cmd/soql/commands"
	"github.com/fivetwenty-io/soql/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "soql",
	Short: "Salesforce SOQL query CLI",
	Long: `A command-line interface for running SOQL queries against Salesforce orgs.

Queries are executed over the REST query API with server-driven pagination,
and results can be rendered as a table, JSON, YAML, or CSV, or exported to
files and messaging sinks.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.soql/config.yml)")
	rootCmd.PersistentFlags().StringP("instance-url", "i", "", "Salesforce instance URL")
	rootCmd.PersistentFlags().StringP("token", "t", "", "Salesforce access token")
	rootCmd.PersistentFlags().String("auth-file", "", "path to an auth.json credential document")
	rootCmd.PersistentFlags().String("api-version", "", "REST API version (default "+constants.DefaultAPIVersion+")")
	rootCmd.PersistentFlags().String("org", "", "named org profile from the configuration")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "output format (table, json, yaml, csv)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("instance_url", rootCmd.PersistentFlags().Lookup("instance-url"))
	_ = viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	_ = viper.BindPFlag("auth_file", rootCmd.PersistentFlags().Lookup("auth-file"))
	_ = viper.BindPFlag("api_version", rootCmd.PersistentFlags().Lookup("api-version"))
	_ = viper.BindPFlag("org", rootCmd.PersistentFlags().Lookup("org"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewObjectsCommand())
	rootCmd.AddCommand(commands.NewAuthCommand())
	rootCmd.AddCommand(commands.NewOrgsCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewBatchCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		// Create config directory if it doesn't exist
		configDir := filepath.Join(home, constants.ConfigDirName)
		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		// Search config in ~/.soql/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
