package main

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/ui"
)

const (
	exitOK     = 0
	exitFatal  = 1
	exitConfig = 2
	exitUpload = 3
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	logFormat  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tweetetl",
	Short: "Fetch recent posts for an account, flatten them to CSV and publish to S3",
	Long: `tweetetl is a batch job that pulls the most recent posts of one X account,
flattens them into a CSV table and uploads the file to an S3 bucket.

Each invocation of 'tweetetl run' performs exactly one run. Scheduling and
overlap prevention are left to the caller (cron, Airflow, a Kubernetes CronJob).

Configuration is read from (highest priority first):
  - Command line flags
  - Environment variables (TW_BEARER_TOKEN, TWEETETL_*)
  - .env files
  - Configuration file
  - Default values`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	ui.PrintError("Error", err)
	return exitCode(err)
}

// exitCode maps a command error onto the documented exit codes
func exitCode(err error) int {
	var configErr *errs.ConfigError
	var uploadErr *errs.UploadError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &configErr):
		return exitConfig
	case errors.As(err, &uploadErr):
		return exitUpload
	default:
		return exitFatal
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .tweetetl.yaml or $HOME/.config/tweetetl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format (auto, console, json)")

	rootCmd.SetVersionTemplate(`tweetetl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags returns the persistent flags that were set explicitly
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if logFormat != "" {
		flags["log-format"] = logFormat
	}
	return flags
}
