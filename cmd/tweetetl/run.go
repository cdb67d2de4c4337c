package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"tweetetl/pkg/config"
	errs "tweetetl/pkg/errors"
	"tweetetl/pkg/logger"
	"tweetetl/pkg/pipeline"
	"tweetetl/pkg/ratelimit"
	"tweetetl/pkg/storage"
	"tweetetl/pkg/twitter"
	"tweetetl/pkg/ui"
)

var (
	// Run command flags
	limit             int
	outputDir         string
	bucket            string
	requestsPerMinute int
	maxWait           time.Duration
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [handle]",
	Short: "Fetch, flatten and upload the latest posts of one account",
	Long: `Run the pipeline exactly once:

  1. Resolve the handle to a user id
  2. Page through the user's timeline until the limit is reached
  3. Flatten the posts into a CSV table written to the output directory
  4. Upload the file to s3://<bucket>/<key_prefix><timestamp>.csv

The handle may be given as an argument or through configuration
(fetch.username / TWEETETL_USERNAME). The API token is read from TW_BEARER_TOKEN.

Exit codes:
  0  success
  1  fetch or other fatal error
  2  configuration error
  3  upload failed after the CSV was written`,
	Example: `  # Fetch the default 50 posts
  TW_BEARER_TOKEN=... tweetetl run wtfruchss

  # Fetch 200 posts and upload to a different bucket
  tweetetl run wtfruchss --limit 200 --bucket my-bucket

  # Give up instead of sleeping through a long rate-limit window
  tweetetl run wtfruchss --max-wait 1m`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of posts to fetch (default 50)")
	runCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the local CSV (default ./output)")
	runCmd.Flags().StringVarP(&bucket, "bucket", "b", "", "destination S3 bucket")
	runCmd.Flags().IntVar(&requestsPerMinute, "requests-per-minute", 0, "client-side request pacing, 0 disables it")
	runCmd.Flags().DurationVar(&maxWait, "max-wait", 0, "longest rate-limit wait to sit through, 0 waits as long as told")
}

// runFlags collects the explicitly set flags for config.MergeCommandLineFlags
func runFlags(cmd *cobra.Command, args []string) map[string]interface{} {
	flags := globalFlags()
	if len(args) == 1 {
		flags["username"] = args[0]
	}
	if cmd.Flags().Changed("limit") {
		flags["limit"] = limit
	}
	if cmd.Flags().Changed("output") {
		flags["output"] = outputDir
	}
	if cmd.Flags().Changed("bucket") {
		flags["bucket"] = bucket
	}
	if cmd.Flags().Changed("requests-per-minute") {
		flags["requests-per-minute"] = requestsPerMinute
	}
	if cmd.Flags().Changed("max-wait") {
		flags["max-wait"] = maxWait
	}
	return flags
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, runFlags(cmd, args))
	if err != nil {
		return &errs.ConfigError{Err: err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return &errs.ConfigError{Err: err}
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("tweetetl starting")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := newPipeline(cfg, log)
	if err != nil {
		return err
	}

	ui.PrintInfo("Target account", cfg.Fetch.Username)
	result, err := p.Run(ctx)
	if err != nil {
		if result != nil {
			ui.PrintWarning("CSV was written but not published: " + result.LocalPath)
		}
		return err
	}

	ui.PrintSummary("Run complete", []ui.Field{
		{Label: "Run", Value: result.RunID},
		{Label: "Account", Value: result.Handle},
		{Label: "Rows", Value: strconv.Itoa(result.Rows)},
		{Label: "Local file", Value: result.LocalPath},
		{Label: "Object", Value: fmt.Sprintf("s3://%s/%s", result.Bucket, result.Key)},
		{Label: "Duration", Value: result.Duration.Round(time.Millisecond).String()},
	})
	return nil
}

// newPipeline wires the configured collaborators into a pipeline
func newPipeline(cfg *config.Config, log logger.Logger) (*pipeline.Pipeline, error) {
	client := twitter.NewClient(twitter.ClientConfig{
		BaseURL:     cfg.Twitter.BaseURL,
		BearerToken: cfg.Twitter.BearerToken,
		Timeout:     cfg.Twitter.Timeout,
		Limiter:     ratelimit.NewTokenBucket(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize),
		RateLimit: twitter.RateLimitPolicy{
			MaxWait:     cfg.RateLimit.MaxWait,
			MaxAttempts: cfg.RateLimit.MaxAttempts,
		},
	}, log)

	store, err := storage.NewManager(cfg.Output.Directory)
	if err != nil {
		return nil, fmt.Errorf("prepare output directory: %w", err)
	}

	creds := storage.AmbientCredentials()
	if cfg.Storage.AccessKey != "" {
		creds = storage.StaticCredentials(cfg.Storage.AccessKey, cfg.Storage.SecretKey)
	}
	uploader, err := storage.NewS3Uploader(storage.S3Config{
		Endpoint: cfg.Storage.Endpoint,
		Region:   cfg.Storage.Region,
		UseSSL:   cfg.Storage.UseSSL,
	}, creds, log)
	if err != nil {
		return nil, &errs.ConfigError{Err: err}
	}

	pageOpts := twitter.PageOptions{PageSize: cfg.Fetch.PageSize}

	return pipeline.New(pipeline.Deps{
		Source:   client,
		Store:    store,
		Uploader: uploader,
		Logger:   log,
	}, pipeline.Options{
		Handle:      cfg.Fetch.Username,
		Limit:       cfg.Fetch.Limit,
		PageOptions: pageOpts,
		Bucket:      cfg.Storage.Bucket,
		KeyPrefix:   cfg.Storage.KeyPrefix,
	}), nil
}
