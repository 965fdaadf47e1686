// =============================================================================
// GST Template Auto-Fill - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration.
// Values are layered by viper, highest priority first:
//   1. Command line flags (bound by the cmd package)
//   2. Environment variables with the AUTOFILL_ prefix
//      (nested keys use "_": AUTOFILL_GST_HEADER_ROW)
//   3. The configuration file (autofill.yaml or --config)
//   4. The defaults below
//
// EXAMPLE (autofill.yaml):
//
//   output_dir: ./output
//   run_dir_format: "{date}_{uuid}"
//   numeric_policy: zero
//   alias_file: ./aliases.yaml
//   gst:
//     header_row: 4
//   csv:
//     delimiter: ";"
//     encoding: windows-1252
//
// =============================================================================

package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/workbook"
)

// EnvPrefix is the prefix of configuration environment variables.
const EnvPrefix = "AUTOFILL"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is the directory where artifacts and logs are written.
	// Default: "./output"
	OutputDir string `mapstructure:"output_dir"`

	// RunDirFormat names a per-run subdirectory of OutputDir.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	// Default: "" (write directly into OutputDir)
	RunDirFormat string `mapstructure:"run_dir_format"`

	// WriteSummary enables the run summary and coercion log files.
	// Default: true
	WriteSummary bool `mapstructure:"write_summary"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `mapstructure:"log_format"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// NumericPolicy decides what unparseable numeric cells become:
	// "zero" or "missing".
	// Default: "zero"
	NumericPolicy string `mapstructure:"numeric_policy"`

	// AliasFile is an optional YAML file with extra column aliases.
	AliasFile string `mapstructure:"alias_file"`

	Books SourceConfig `mapstructure:"books"`
	GST   SourceConfig `mapstructure:"gst"`
	CSV   CSVConfig    `mapstructure:"csv"`

	Server ServerConfig `mapstructure:"server"`
}

// SourceConfig holds per-source reading settings.
type SourceConfig struct {
	// HeaderRow is the 1-based row holding column labels.
	// Default: 1 for Books, 4 for GST
	HeaderRow int `mapstructure:"header_row"`
}

// CSVConfig holds settings for delimited text sources.
type CSVConfig struct {
	// Delimiter: ",", ";", "tab", "pipe" or any single character.
	Delimiter string `mapstructure:"delimiter"`

	// Encoding: utf-8, utf-16, windows-1252, iso-8859-1.
	Encoding string `mapstructure:"encoding"`
}

// ServerConfig holds HTTP settings for the serve command.
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	MaxUploadMB int64  `mapstructure:"max_upload_mb"`
}

// =============================================================================
// LOADING
// =============================================================================

// SetDefaults registers the default value of every key. Registering every
// key also lets environment variables reach nested keys on Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", "./output")
	v.SetDefault("run_dir_format", "")
	v.SetDefault("write_summary", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("numeric_policy", string(converter.PolicyZero))
	v.SetDefault("alias_file", "")
	v.SetDefault("books.header_row", converter.DefaultBooksHeaderRow)
	v.SetDefault("gst.header_row", converter.DefaultGSTHeaderRow)
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.encoding", "utf-8")
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_mb", 32)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load builds a Config from v.
//
// PARAMETERS:
//   - v: A viper instance, usually from NewViper with a config file read
//     and flags bound.
//
// RETURNS:
//   - The validated configuration.
//   - An error if the values cannot be decoded or are invalid.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills blank values that viper may hand back as zero values
// (for example an empty string set explicitly in the file).
func applyDefaults(cfg *Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.NumericPolicy == "" {
		cfg.NumericPolicy = string(converter.PolicyZero)
	}
	if cfg.Books.HeaderRow == 0 {
		cfg.Books.HeaderRow = converter.DefaultBooksHeaderRow
	}
	if cfg.GST.HeaderRow == 0 {
		cfg.GST.HeaderRow = converter.DefaultGSTHeaderRow
	}
	if cfg.CSV.Delimiter == "" {
		cfg.CSV.Delimiter = ","
	}
	if cfg.CSV.Encoding == "" {
		cfg.CSV.Encoding = "utf-8"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.MaxUploadMB == 0 {
		cfg.Server.MaxUploadMB = 32
	}
}

// validate checks value ranges and enumerations.
func validate(cfg *Config) error {
	if _, err := converter.ParseNumericPolicy(cfg.NumericPolicy); err != nil {
		return err
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", cfg.LogFormat)
	}
	if cfg.Books.HeaderRow < 1 {
		return fmt.Errorf("books.header_row must be at least 1, got %d", cfg.Books.HeaderRow)
	}
	if cfg.GST.HeaderRow < 1 {
		return fmt.Errorf("gst.header_row must be at least 1, got %d", cfg.GST.HeaderRow)
	}
	if cfg.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must be positive, got %d", cfg.Server.MaxUploadMB)
	}
	return nil
}

// =============================================================================
// DERIVED SETTINGS
// =============================================================================

// Policy returns the parsed numeric policy.
func (c *Config) Policy() converter.NumericPolicy {
	p, err := converter.ParseNumericPolicy(c.NumericPolicy)
	if err != nil {
		return converter.PolicyZero
	}
	return p
}

// WorkbookOptions returns the reader options for CSV sources.
func (c *Config) WorkbookOptions() workbook.Options {
	return workbook.Options{Delimiter: c.CSV.Delimiter, Encoding: c.CSV.Encoding}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}
