package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"wifiphoto/pkg/config"
	"wifiphoto/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage wifiphoto configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (WIFIPHOTO_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.wifiphoto.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".wifiphoto.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# wifiphoto configuration file
#
# Every option can also be set through environment variables prefixed with
# WIFIPHOTO_, for example WIFIPHOTO_OUTPUT_DIR or WIFIPHOTO_POLL_INTERVAL.

# Vendor server settings
server:
  # Base URL that finished archives are downloaded from. The WiFi Photo
  # Transfer app serves downloads from a fixed LAN address regardless of the
  # URL its web UI is reached at; change this only if your app behaves
  # differently.
  download_base_url: "http://192.168.4.104:15555"

  # User agent sent with every request (empty uses Go's default)
  user_agent: ""

  # HTTP timeout per request
  timeout: 30s

# Chunked transfer settings
transfer:
  # Files per compression request; the server rejects batches above 200
  batch_size: 200

  # How many times to check whether a compression job is ready
  poll_attempts: 5

  # Pause between readiness checks
  poll_interval: 2s

# Output settings
output:
  # Where the run directory and the final archive are created
  base_directory: "."

# Logging configuration
logging:
  # Log level: debug, info, warn, error, fatal, disabled
  level: "info"

  # Also write logs to this file (empty for console only)
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to write configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Created configuration file: " + configPath)
}

func runConfigShow(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		ui.PrintError("Failed to render configuration", err.Error())
		os.Exit(1)
	}

	fmt.Print(string(data))
}
