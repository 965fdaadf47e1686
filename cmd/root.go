// =============================================================================
// GST Template Auto-Fill - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (autofill)
//   ├── processCmd (autofill process)
//   ├── sheetsCmd  (autofill sheets)
//   ├── serveCmd   (autofill serve)
//   └── versionCmd (autofill version)
//
// CONFIGURATION:
//   Settings are resolved by viper in this order (highest first):
//   1. Command-line flags
//   2. AUTOFILL_* environment variables (AUTOFILL_GST_HEADER_ROW, ...)
//   3. The configuration file (--config, or ./autofill.yaml when present)
//   4. Built-in defaults
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/gst-autofill/internal/config"
	"github.com/ginjaninja78/gst-autofill/internal/converter"
	"github.com/ginjaninja78/gst-autofill/internal/logging"
	"github.com/ginjaninja78/gst-autofill/internal/schema"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// v holds every resolved setting. Command flags are bound into it in init.
var v = config.NewViper()

// configErr is set by initConfig and reported by the command that runs.
var configErr error

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "autofill",
	Short: "GST Template Auto-Fill - Map Books and GST exports onto the standard template",

	Long: `GST Template Auto-Fill reads accounting (Books) exports and GST portal
downloads, finds the twelve standard template columns in each sheet by their
known header names, normalizes dates and amounts, and writes one combined
template per source.

Key Features:
  - Reads xlsx, xlsm, xls and csv files
  - Header aliases for common Books and GST portal layouts
  - Multiple sheets combined into one template per source
  - Dates normalized to DD-MM-YYYY, amounts to numbers
  - Optional HTTP API for browser clients

Example Usage:
  autofill process --books sales.xlsx
  autofill process --gst gstr1.xlsx --gst-sheet b2b --gst-sheet cdnr
  autofill sheets gstr1.xlsx
  autofill serve --addr :8080`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is ./autofill.yaml when present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig reads the configuration file into v.
//
// A missing default file is not an error. A file named with --config must
// exist and parse.
func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("autofill")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		configErr = fmt.Errorf("failed to read config file: %w", err)
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadRuntime resolves the configuration and builds the logger.
func loadRuntime() (*config.Config, *logrus.Logger, error) {
	if configErr != nil {
		return nil, nil, configErr
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, nil, err
	}

	if used := v.ConfigFileUsed(); used != "" {
		logger.WithField("file", used).Debug("Using config file")
	}
	return cfg, logger, nil
}

// newConverter builds a converter from the configuration.
func newConverter(cfg *config.Config, logger logrus.FieldLogger) (*converter.Converter, error) {
	aliases, err := schema.LoadAliasFile(cfg.AliasFile)
	if err != nil {
		return nil, err
	}

	return converter.New(converter.Options{
		NumericPolicy: cfg.Policy(),
		Aliases:       &aliases,
		Workbook:      cfg.WorkbookOptions(),
		Logger:        logger,
	}), nil
}
