package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"tweetetl/pkg/config"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage tweetetl configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (TW_BEARER_TOKEN, TWEETETL_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration to a file",
	Long: `Write the default configuration as YAML.

The file is created as '.tweetetl.yaml' in the current directory unless a
different path is given with --config. Secrets are left empty; supply the
bearer token through TW_BEARER_TOKEN.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after all sources are merged.

Sensitive values like the bearer token and storage keys are masked.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".tweetetl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := config.DefaultConfig().Save(configPath); err != nil {
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Set fetch.username and storage.bucket in the file")
	fmt.Println("2. Export TW_BEARER_TOKEN")
	fmt.Println("3. Run 'tweetetl config validate' to check the configuration")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(configFile, globalFlags())
	if err != nil {
		return &errs.ConfigError{Err: err}
	}

	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, globalFlags())
	if err != nil {
		return &errs.ConfigError{Err: err}
	}

	ui.PrintSuccess("Configuration is valid")
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Account: %s\n", cfg.Fetch.Username)
	fmt.Printf("  Limit: %d posts\n", cfg.Fetch.Limit)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Destination: s3://%s/%s<timestamp>.csv\n", cfg.Storage.Bucket, cfg.Storage.KeyPrefix)
	fmt.Printf("  Rate limit max wait: %s\n", cfg.RateLimit.MaxWait)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
