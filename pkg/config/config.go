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

// DefaultUserAgent is sent by both the browser session and the asset downloader
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/111.0.0.0 Safari/537.36"

// Config holds all configuration options for the archiver
type Config struct {
	// Listing pages and traversal limits
	Crawl CrawlConfig `yaml:"crawl" json:"crawl"`

	// Page structure of the target site
	Selectors SelectorsConfig `yaml:"selectors" json:"selectors"`

	// Browser session settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Output settings
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CrawlConfig holds the crawl targets and pacing
type CrawlConfig struct {
	BaseURLs    []string      `yaml:"base_urls" json:"base_urls"`
	PacingDelay time.Duration `yaml:"pacing_delay" json:"pacing_delay"`
	PageSize    int           `yaml:"page_size" json:"page_size"`
	URLScheme   string        `yaml:"url_scheme" json:"url_scheme"`
}

// SelectorConfig describes an element either by a single class name or by
// a tag plus its exact class attribute
type SelectorConfig struct {
	Class   string `yaml:"class,omitempty" json:"class,omitempty"`
	Tag     string `yaml:"tag,omitempty" json:"tag,omitempty"`
	Classes string `yaml:"classes,omitempty" json:"classes,omitempty"`
}

// SelectorsConfig holds the selectors used on listing and detail pages
type SelectorsConfig struct {
	ListingItem SelectorConfig `yaml:"listing_item" json:"listing_item"`
	Title       SelectorConfig `yaml:"title" json:"title"`
	Date        SelectorConfig `yaml:"date" json:"date"`
	Asset       SelectorConfig `yaml:"asset" json:"asset"`
}

// BrowserConfig holds browser session configuration
type BrowserConfig struct {
	Engine    string `yaml:"engine" json:"engine"`
	Headless  bool   `yaml:"headless" json:"headless"`
	Stealth   bool   `yaml:"stealth" json:"stealth"`
	NoSandbox bool   `yaml:"no_sandbox" json:"no_sandbox"`
	Bin       string `yaml:"bin" json:"bin"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// StorageConfig holds output directory configuration
type StorageConfig struct {
	// Folder is resolved against the current working directory when relative
	Folder string `yaml:"folder" json:"folder"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// Browser engines
const (
	EngineRod  = "rod"
	EngineHTTP = "http"
)

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Crawl: CrawlConfig{
			BaseURLs:    []string{"https://pastvu.com/ps/1?f=r%21471"},
			PacingDelay: time.Second,
			PageSize:    15,
			URLScheme:   "https",
		},
		Selectors: SelectorsConfig{
			ListingItem: SelectorConfig{Class: "photoBox"},
			Title:       SelectorConfig{Tag: "div", Classes: "info title"},
			Date:        SelectorConfig{Tag: "span", Classes: "tltp-wrap rytltp-wrap"},
			Asset:       SelectorConfig{Class: "photoImg"},
		},
		Browser: BrowserConfig{
			Engine:    EngineRod,
			Headless:  true,
			UserAgent: DefaultUserAgent,
		},
		Storage: StorageConfig{
			Folder: "images",
		},
		Download: DownloadConfig{
			Timeout: 60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if urls := os.Getenv("PHOTOARCHIVER_BASE_URLS"); urls != "" {
		c.Crawl.BaseURLs = splitList(urls)
	}

	if delay := os.Getenv("PHOTOARCHIVER_PACING_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("PHOTOARCHIVER_PACING_DELAY: %w", err))
		} else {
			c.Crawl.PacingDelay = d
		}
	}

	if pageSize := os.Getenv("PHOTOARCHIVER_PAGE_SIZE"); pageSize != "" {
		val, err := strconv.Atoi(pageSize)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("PHOTOARCHIVER_PAGE_SIZE: %w", err))
		case val <= 0:
			errs = append(errs, fmt.Errorf("PHOTOARCHIVER_PAGE_SIZE: must be positive, got %d", val))
		default:
			c.Crawl.PageSize = val
		}
	}

	if folder := os.Getenv("PHOTOARCHIVER_STORAGE_FOLDER"); folder != "" {
		c.Storage.Folder = folder
	}

	if headless := os.Getenv("PHOTOARCHIVER_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}

	if engine := os.Getenv("PHOTOARCHIVER_ENGINE"); engine != "" {
		c.Browser.Engine = strings.ToLower(engine)
	}

	if logLevel := os.Getenv("PHOTOARCHIVER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil
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
		"photoarchiver.yaml",
		"photoarchiver.yml",
		".photoarchiver.yaml",
		filepath.Join(os.Getenv("HOME"), ".config", "photoarchiver", "config.yaml"),
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

	if len(c.Crawl.BaseURLs) == 0 {
		errs = append(errs, errors.New("at least one base URL is required"))
	}
	for _, u := range c.Crawl.BaseURLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			errs = append(errs, fmt.Errorf("base URL %q must be an http(s) URL", u))
		}
	}
	if c.Crawl.PacingDelay < time.Second {
		errs = append(errs, errors.New("pacing delay must be at least 1s"))
	}
	if c.Crawl.PageSize <= 0 {
		errs = append(errs, errors.New("page size must be positive"))
	}
	if c.Crawl.URLScheme == "" {
		errs = append(errs, errors.New("url scheme is required"))
	}

	for name, sel := range map[string]SelectorConfig{
		"listing_item": c.Selectors.ListingItem,
		"title":        c.Selectors.Title,
		"date":         c.Selectors.Date,
		"asset":        c.Selectors.Asset,
	} {
		if sel.Class == "" && (sel.Tag == "" || sel.Classes == "") {
			errs = append(errs, fmt.Errorf("selector %s needs a class or a tag with classes", name))
		}
	}

	switch c.Browser.Engine {
	case EngineRod, EngineHTTP:
	default:
		errs = append(errs, fmt.Errorf("invalid browser engine %q", c.Browser.Engine))
	}

	if c.Storage.Folder == "" {
		errs = append(errs, errors.New("storage folder is required"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// StorageRoot resolves the storage folder against the working directory
func (c *Config) StorageRoot() (string, error) {
	if filepath.IsAbs(c.Storage.Folder) {
		return c.Storage.Folder, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return filepath.Join(wd, c.Storage.Folder), nil
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

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if urls, ok := flags["base-urls"].([]string); ok && len(urls) > 0 {
		c.Crawl.BaseURLs = urls
	}
	if delay, ok := flags["pacing-delay"].(time.Duration); ok && delay > 0 {
		c.Crawl.PacingDelay = delay
	}
	if pageSize, ok := flags["page-size"].(int); ok && pageSize > 0 {
		c.Crawl.PageSize = pageSize
	}
	if folder, ok := flags["storage-folder"].(string); ok && folder != "" {
		c.Storage.Folder = folder
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if engine, ok := flags["engine"].(string); ok && engine != "" {
		c.Browser.Engine = engine
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".photoarchiver.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
