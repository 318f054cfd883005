package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"photoarchiver/pkg/config"
	"photoarchiver/pkg/navigator"
	"photoarchiver/pkg/ui"
)

const defaultConfigPath = "photoarchiver.yaml"

const configHeader = `# photoarchiver configuration
#
# Every option can also be set through an environment variable prefixed with
# PHOTOARCHIVER_, e.g. PHOTOARCHIVER_BASE_URLS, PHOTOARCHIVER_PACING_DELAY,
# PHOTOARCHIVER_STORAGE_FOLDER. Flags take precedence over both.
#
# Selectors take either a single class ({class: photoBox}) or a tag and its
# exact class attribute ({tag: div, classes: "info title"}).

`

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage photoarchiver configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option with its default value.

The file will be created in the current directory as 'photoarchiver.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources:
  - Environment variables
  - Configuration file
  - Default values`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields and value ranges
  - Selector syntax
  - Storage and log folder accessibility`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
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
		configPath = defaultConfigPath
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		return fmt.Errorf("refusing to overwrite %s", configPath)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default configuration: %w", err)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, append([]byte(configHeader), data...), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nNext steps:")
	fmt.Fprintln(cmd.OutOrStdout(), "1. Edit base_urls and the storage folder")
	fmt.Fprintln(cmd.OutOrStdout(), "2. Run 'photoarchiver config validate' to check the configuration")
	fmt.Fprintln(cmd.OutOrStdout(), "3. Start the archive run with 'photoarchiver'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd))
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (PHOTOARCHIVER_*)")
	if configFile != "" {
		fmt.Fprintf(out, "3. Configuration file: %s\n", configFile)
	} else {
		fmt.Fprintln(out, "3. Configuration file: (searched in default locations)")
	}
	fmt.Fprintln(out, "4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		for _, candidate := range []string{
			"photoarchiver.yaml",
			"photoarchiver.yml",
			".photoarchiver.yaml",
			filepath.Join(os.Getenv("HOME"), ".config", "photoarchiver", "config.yaml"),
		} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			return fmt.Errorf("no configuration file found")
		}
	}

	ui.PrintInfo("Validating configuration", path)

	cfg, err := config.Load(path, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		return err
	}

	problems := checkEnvironment(cfg)
	out := cmd.OutOrStdout()
	if len(problems) > 0 {
		ui.PrintError("Configuration has errors")
		for _, p := range problems {
			fmt.Fprintf(out, "  - %s\n", p)
		}
		return fmt.Errorf("configuration has %d error(s)", len(problems))
	}

	ui.PrintSuccess("Configuration is valid")

	root, _ := cfg.StorageRoot()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  Listing pages: %d\n", len(cfg.Crawl.BaseURLs))
	fmt.Fprintf(out, "  Pacing delay: %s\n", cfg.Crawl.PacingDelay)
	fmt.Fprintf(out, "  Page size: %d\n", cfg.Crawl.PageSize)
	fmt.Fprintf(out, "  Storage folder: %s\n", root)
	fmt.Fprintf(out, "  Browser engine: %s\n", cfg.Browser.Engine)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// checkEnvironment reports problems Validate cannot see: selectors that do
// not compile and folders that cannot be created
func checkEnvironment(cfg *config.Config) []string {
	var problems []string

	for name, sel := range map[string]config.SelectorConfig{
		"listing_item": cfg.Selectors.ListingItem,
		"title":        cfg.Selectors.Title,
		"date":         cfg.Selectors.Date,
		"asset":        cfg.Selectors.Asset,
	} {
		if _, err := navigator.SelectorFrom(sel).Compile(); err != nil {
			problems = append(problems, fmt.Sprintf("selector %s: %v", name, err))
		}
	}

	if root, err := cfg.StorageRoot(); err != nil {
		problems = append(problems, err.Error())
	} else if err := os.MkdirAll(root, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create storage folder: %v", err))
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	return problems
}
