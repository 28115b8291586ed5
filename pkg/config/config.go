package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the WiFi photo downloader
type Config struct {
	// Vendor server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Chunked transfer settings
	Transfer TransferConfig `yaml:"transfer" json:"transfer"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ServerConfig holds settings for talking to the vendor server
type ServerConfig struct {
	// DownloadBaseURL is where finished archives are fetched from. The WiFi
	// Photo Transfer app serves these from a fixed LAN address regardless of
	// the base URL its UI is reached at, so this defaults to that address
	// rather than being derived from the url argument.
	DownloadBaseURL string   `yaml:"download_base_url" json:"download_base_url"`
	UserAgent       string   `yaml:"user_agent" json:"user_agent"`
	Timeout         Duration `yaml:"timeout" json:"timeout"`
}

// TransferConfig holds the chunking and readiness-polling parameters
type TransferConfig struct {
	// BatchSize is the number of files per compression request. The vendor
	// server rejects batches larger than 200.
	BatchSize    int      `yaml:"batch_size" json:"batch_size"`
	PollAttempts int      `yaml:"poll_attempts" json:"poll_attempts"`
	PollInterval Duration `yaml:"poll_interval" json:"poll_interval"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	// BaseDirectory is where the run directory and the final archive land
	BaseDirectory string `yaml:"base_directory" json:"base_directory"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// ServerMaxBatchSize is the hard cap the vendor server places on one
// compression request
const ServerMaxBatchSize = 200

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			DownloadBaseURL: "http://192.168.4.104:15555",
			UserAgent:       "",
			Timeout:         Duration(30 * time.Second),
		},
		Transfer: TransferConfig{
			BatchSize:    ServerMaxBatchSize,
			PollAttempts: 5,
			PollInterval: Duration(2 * time.Second),
		},
		Output: OutputConfig{
			BaseDirectory: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if base := os.Getenv("WIFIPHOTO_DOWNLOAD_BASE_URL"); base != "" {
		c.Server.DownloadBaseURL = base
	}
	if ua := os.Getenv("WIFIPHOTO_USER_AGENT"); ua != "" {
		c.Server.UserAgent = ua
	}
	if timeout := os.Getenv("WIFIPHOTO_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid WIFIPHOTO_TIMEOUT: %w", err)
		}
		c.Server.Timeout = Duration(d)
	}

	if batch := os.Getenv("WIFIPHOTO_BATCH_SIZE"); batch != "" {
		var val int
		fmt.Sscanf(batch, "%d", &val)
		if val > 0 {
			c.Transfer.BatchSize = val
		}
	}
	if attempts := os.Getenv("WIFIPHOTO_POLL_ATTEMPTS"); attempts != "" {
		var val int
		fmt.Sscanf(attempts, "%d", &val)
		if val > 0 {
			c.Transfer.PollAttempts = val
		}
	}
	if interval := os.Getenv("WIFIPHOTO_POLL_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			return fmt.Errorf("invalid WIFIPHOTO_POLL_INTERVAL: %w", err)
		}
		c.Transfer.PollInterval = Duration(d)
	}

	if outputDir := os.Getenv("WIFIPHOTO_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if logLevel := os.Getenv("WIFIPHOTO_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("WIFIPHOTO_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
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
		".wifiphoto.yaml",
		".wifiphoto.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "wifiphoto", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "wifiphoto", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".wifiphoto.yaml"),
		filepath.Join(os.Getenv("HOME"), ".wifiphoto.yml"),
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

	if c.Server.DownloadBaseURL == "" {
		errs = append(errs, errors.New("download base URL is required"))
	}
	if c.Server.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}

	if c.Transfer.BatchSize <= 0 {
		errs = append(errs, errors.New("batch size must be positive"))
	}
	if c.Transfer.BatchSize > ServerMaxBatchSize {
		errs = append(errs, fmt.Errorf("batch size cannot exceed the server limit of %d", ServerMaxBatchSize))
	}
	if c.Transfer.PollAttempts <= 0 {
		errs = append(errs, errors.New("poll attempts must be positive"))
	}
	if c.Transfer.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output base directory is required"))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown log level: %s", c.Logging.Level))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Save writes the configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if base, ok := flags["download-base"].(string); ok && base != "" {
		c.Server.DownloadBaseURL = base
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Server.Timeout = Duration(timeout)
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if batch, ok := flags["batch-size"].(int); ok && batch > 0 {
		c.Transfer.BatchSize = batch
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile, ok := flags["log-file"].(string); ok && logFile != "" {
		c.Logging.File = logFile
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".wifiphoto.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
