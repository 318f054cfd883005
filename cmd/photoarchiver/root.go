package main

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string

	// Crawl flags
	baseURLs      []string
	pacingDelay   time.Duration
	pageSize      int
	storageFolder string
	headless      bool
	engine        string
)

// rootCmd runs the crawl when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "photoarchiver",
	Short: "Archive photos and their captions from a photo listing site",
	Long: `photoarchiver walks the configured listing pages of a photo site, follows
each detail link on the first page and saves the photo as
"{title}-{date}.{ext}" in a flat local folder.

Settings are read from (highest priority first):
  - Command line flags
  - Environment variables (PHOTOARCHIVER_*) and .env files
  - Configuration file (photoarchiver.yaml)
  - Default values`,
	Example: `  # Crawl the default listing with a visible browser
  photoarchiver --headless=false

  # Crawl two listings into ./archive without launching Chromium
  photoarchiver --engine http -o archive \
    --base-url "https://pastvu.com/ps/1?f=r%21471" \
    --base-url "https://pastvu.com/ps/2?f=r%21471"`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runCrawl,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./photoarchiver.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Crawl flags
	rootCmd.Flags().StringSliceVar(&baseURLs, "base-url", nil, "listing page to crawl (repeatable)")
	rootCmd.Flags().DurationVar(&pacingDelay, "pacing-delay", 0, "wait after every navigation (at least 1s)")
	rootCmd.Flags().IntVar(&pageSize, "page-size", 0, "maximum detail links taken from each listing page")
	rootCmd.Flags().StringVarP(&storageFolder, "storage-folder", "o", "", "folder assets are saved to, relative to the working directory")
	rootCmd.Flags().BoolVar(&headless, "headless", true, "run the browser without a window")
	rootCmd.Flags().StringVar(&engine, "engine", "", "browser engine: rod (Chromium) or http (no JavaScript)")

	rootCmd.SetVersionTemplate(`photoarchiver {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// flagOverrides collects the flags set explicitly on cmd in the form
// config.MergeCommandLineFlags expects
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}

	if changed("log-level") {
		flags["log-level"] = logLevel
	}
	if changed("base-url") {
		flags["base-urls"] = baseURLs
	}
	if changed("pacing-delay") {
		flags["pacing-delay"] = pacingDelay
	}
	if changed("page-size") {
		flags["page-size"] = pageSize
	}
	if changed("storage-folder") {
		flags["storage-folder"] = storageFolder
	}
	if changed("headless") {
		flags["headless"] = headless
	}
	if changed("engine") {
		flags["engine"] = engine
	}
	return flags
}
