package main

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wifiphoto/pkg/config"
	"wifiphoto/pkg/fetcher"
	"wifiphoto/pkg/logger"
	"wifiphoto/pkg/ui"
)

var (
	// Fetch command flags
	startIndex   int
	endIndex     int
	outputDir    string
	downloadBase string
	timeoutSecs  int
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <url> <album>",
	Short: "Download an album's files as one compressed archive",
	Long: `Download files from an album on a WiFi Photo Transfer server.

The album name is matched case-sensitively against the link text on the
server's listing page. File indices are 1-based and inclusive; by default the
whole album is downloaded. The files end up in a single .tar.gz archive named
after the run's start time.

The server only compresses files in batches of up to 200, and prepares each
batch asynchronously, so large albums are downloaded as several batches in
sequence.`,
	Example: `  # Download all files from album 'Recents'
  wifiphoto fetch http://192.168.4.104:15555 Recents

  # Download the first five files from album 'Videos'
  wifiphoto fetch http://192.168.4.104:15555 Videos -e 5

  # Download an arbitrary range of 750 files
  wifiphoto fetch http://192.168.4.104:15555 Recents -s 1000 -e 1749`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runFetch(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&startIndex, "start", "s", 1, "start index of the range to download (1 is the first file)")
	fetchCmd.Flags().IntVarP(&endIndex, "end", "e", 0, "end index of the range to download, inclusive (default: the last file)")
	fetchCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for the final archive (default: current directory)")
	fetchCmd.Flags().StringVar(&downloadBase, "download-base", "", "base URL archives are downloaded from (default: the app's fixed LAN address)")
	fetchCmd.Flags().IntVar(&timeoutSecs, "timeout", 0, "HTTP timeout in seconds")
}

func runFetch(cmd *cobra.Command, args []string) {
	serverURL := strings.TrimSpace(args[0])
	albumName := args[1]

	// Index arguments are validated here so the core never sees a range
	// that is invalid on its face
	if startIndex < 1 {
		ui.PrintError("index arguments cannot be less than 1")
		os.Exit(1)
	}
	if cmd.Flags().Changed("end") {
		if endIndex < 1 {
			ui.PrintError("index arguments cannot be less than 1")
			os.Exit(1)
		}
		if endIndex < startIndex {
			ui.PrintError("end index cannot be less than start index")
			os.Exit(1)
		}
	} else {
		endIndex = 0
	}

	// Build flags map from command line
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if downloadBase != "" {
		flags["download-base"] = downloadBase
	}
	if timeoutSecs > 0 {
		flags["timeout"] = time.Duration(timeoutSecs) * time.Second
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}
	if logFile != "" {
		flags["log-file"] = logFile
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("wifiphoto starting")

	ui.PrintInfo("Server", serverURL)
	ui.PrintInfo("Album", albumName)

	f, err := fetcher.New(cfg, serverURL)
	if err != nil {
		ui.PrintError("Error", err.Error())
		os.Exit(1)
	}

	archivePath, err := f.Run(albumName, startIndex, endIndex)
	if err != nil {
		logger.WithError(err).WithField("album", albumName).Error("transfer failed")
		ui.PrintError("Error", err.Error())
		os.Exit(1)
	}

	logger.WithField("archive", archivePath).Info("transfer completed")
	ui.PrintSuccess("Saved " + archivePath)
}
