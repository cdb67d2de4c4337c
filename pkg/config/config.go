package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// BearerTokenEnv is the environment variable the scheduler sets with the API token.
const BearerTokenEnv = "TW_BEARER_TOKEN"

// Config holds all configuration options for a tweetetl run
type Config struct {
	// X API credentials and endpoint
	Twitter TwitterConfig `yaml:"twitter" json:"twitter"`

	// What to fetch
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Client-side pacing and server rate-limit handling
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Local artifact location
	Output OutputConfig `yaml:"output" json:"output"`

	// Object store destination
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TwitterConfig holds X API configuration
type TwitterConfig struct {
	BearerToken string        `yaml:"bearer_token" json:"bearer_token"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// FetchConfig describes which posts are pulled
type FetchConfig struct {
	Username string `yaml:"username" json:"username"`
	Limit    int    `yaml:"limit" json:"limit"`
	PageSize int    `yaml:"page_size" json:"page_size"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	BurstSize         int `yaml:"burst_size" json:"burst_size"`
	// MaxWait caps a single server-imposed wait; 0 waits as long as told.
	MaxWait time.Duration `yaml:"max_wait" json:"max_wait"`
	// MaxAttempts caps attempts per request while rate limited; 0 is unlimited.
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts"`
}

// OutputConfig holds local artifact configuration
type OutputConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// StorageConfig holds object store configuration
type StorageConfig struct {
	Bucket    string `yaml:"bucket" json:"bucket"`
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`
	Endpoint  string `yaml:"endpoint" json:"endpoint"`
	Region    string `yaml:"region" json:"region"`
	UseSSL    bool   `yaml:"use_ssl" json:"use_ssl"`
	// Static keys are optional; the ambient AWS identity is used when empty.
	AccessKey string `yaml:"access_key" json:"access_key"`
	SecretKey string `yaml:"secret_key" json:"secret_key"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Twitter: TwitterConfig{
			BaseURL: "https://api.twitter.com/2",
			Timeout: 30 * time.Second,
		},
		Fetch: FetchConfig{
			Limit:    50,
			PageSize: 40,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 60,
			BurstSize:         10,
			MaxWait:           16 * time.Minute,
			MaxAttempts:       0,
		},
		Output: OutputConfig{
			Directory: "./output",
		},
		Storage: StorageConfig{
			Bucket:    "bhaskar-airflow-bucket",
			KeyPrefix: "refined_tweets_",
			Endpoint:  "s3.amazonaws.com",
			Region:    "us-east-1",
			UseSSL:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "auto",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv(BearerTokenEnv); token != "" {
		c.Twitter.BearerToken = token
	}
	if token := os.Getenv("TWEETETL_BEARER_TOKEN"); token != "" {
		c.Twitter.BearerToken = token
	}
	if baseURL := os.Getenv("TWEETETL_API_BASE_URL"); baseURL != "" {
		c.Twitter.BaseURL = baseURL
	}

	if username := os.Getenv("TWEETETL_USERNAME"); username != "" {
		c.Fetch.Username = username
	}
	if limit := os.Getenv("TWEETETL_LIMIT"); limit != "" {
		val, err := strconv.Atoi(limit)
		if err != nil {
			return fmt.Errorf("invalid TWEETETL_LIMIT %q: %w", limit, err)
		}
		c.Fetch.Limit = val
	}

	if rpm := os.Getenv("TWEETETL_REQUESTS_PER_MINUTE"); rpm != "" {
		val, err := strconv.Atoi(rpm)
		if err != nil {
			return fmt.Errorf("invalid TWEETETL_REQUESTS_PER_MINUTE %q: %w", rpm, err)
		}
		c.RateLimit.RequestsPerMinute = val
	}
	if maxWait := os.Getenv("TWEETETL_RATE_LIMIT_MAX_WAIT"); maxWait != "" {
		d, err := time.ParseDuration(maxWait)
		if err != nil {
			return fmt.Errorf("invalid TWEETETL_RATE_LIMIT_MAX_WAIT %q: %w", maxWait, err)
		}
		c.RateLimit.MaxWait = d
	}

	if outputDir := os.Getenv("TWEETETL_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}

	if bucket := os.Getenv("TWEETETL_BUCKET"); bucket != "" {
		c.Storage.Bucket = bucket
	}
	if endpoint := os.Getenv("TWEETETL_S3_ENDPOINT"); endpoint != "" {
		c.Storage.Endpoint = endpoint
	}
	if region := os.Getenv("TWEETETL_S3_REGION"); region != "" {
		c.Storage.Region = region
	}
	if useSSL := os.Getenv("TWEETETL_S3_USE_SSL"); useSSL != "" {
		val, err := strconv.ParseBool(useSSL)
		if err != nil {
			return fmt.Errorf("invalid TWEETETL_S3_USE_SSL %q: %w", useSSL, err)
		}
		c.Storage.UseSSL = val
	}

	if logLevel := os.Getenv("TWEETETL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("TWEETETL_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".tweetetl.yaml",
		".tweetetl.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "tweetetl", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "tweetetl", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Twitter.BearerToken) == "" {
		errs = append(errs, fmt.Errorf("bearer token is required (set %s)", BearerTokenEnv))
	}
	if c.Twitter.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.Twitter.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if strings.TrimSpace(c.Fetch.Username) == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Fetch.Limit <= 0 {
		errs = append(errs, errors.New("limit must be positive"))
	}
	if c.Fetch.PageSize < 5 || c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 5 and 100"))
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.BurstSize <= 0 {
		errs = append(errs, errors.New("burst size must be positive"))
	}
	if c.RateLimit.MaxWait < 0 {
		errs = append(errs, errors.New("rate limit max wait cannot be negative"))
	}
	if c.RateLimit.MaxAttempts < 0 {
		errs = append(errs, errors.New("rate limit max attempts cannot be negative"))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Storage.Bucket == "" {
		errs = append(errs, errors.New("storage bucket is required"))
	}
	if c.Storage.KeyPrefix == "" {
		errs = append(errs, errors.New("storage key prefix is required"))
	}
	if c.Storage.Endpoint == "" {
		errs = append(errs, errors.New("storage endpoint is required"))
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("storage access key and secret key must be set together"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validLogFormats := map[string]bool{
		"auto": true, "console": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy with secrets masked for display
func (c *Config) Masked() *Config {
	masked := *c
	masked.Twitter.BearerToken = maskString(c.Twitter.BearerToken)
	masked.Storage.AccessKey = maskString(c.Storage.AccessKey)
	masked.Storage.SecretKey = maskString(c.Storage.SecretKey)
	return &masked
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if username, ok := flags["username"].(string); ok && username != "" {
		c.Fetch.Username = username
	}
	if limit, ok := flags["limit"].(int); ok {
		c.Fetch.Limit = limit
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if bucket, ok := flags["bucket"].(string); ok && bucket != "" {
		c.Storage.Bucket = bucket
	}
	if rpm, ok := flags["requests-per-minute"].(int); ok {
		c.RateLimit.RequestsPerMinute = rpm
	}
	if maxWait, ok := flags["max-wait"].(time.Duration); ok {
		c.RateLimit.MaxWait = maxWait
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat, ok := flags["log-format"].(string); ok && logFormat != "" {
		c.Logging.Format = logFormat
	}
}

// Resolve merges all configuration sources without validating the result
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional and never override variables already set
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tweetetl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)
	return config, nil
}

// Load resolves the configuration and validates it
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
