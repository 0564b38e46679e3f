// Package cmd provides the Cobra commands for the bundlebudget CLI.
package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxbase-eu/bundlebudget/cli/output"
	"github.com/fluxbase-eu/bundlebudget/cli/util"
	"github.com/fluxbase-eu/bundlebudget/internal/config"
	"github.com/fluxbase-eu/bundlebudget/internal/logging"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"

	// Global flags
	cfgFile   string
	outputFmt string
	logFormat string
	noHeaders bool
	quiet     bool
	debug     bool
	noColor   bool

	// Shared across commands
	formatter *output.Formatter
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bundlebudget",
	Short: "bundlebudget - Enforce size budgets on build output",
	Long: `bundlebudget measures the scripts and stylesheets produced by a build and
compares them against the budgets declared in bundlebudget.yaml.

Budgets may cap the initial payload, every lazy chunk, a named bundle or each
component stylesheet, with warning and error thresholds expressed as absolute
sizes or as percentages of a baseline.

Get started:
  bundlebudget init                      Write a starter bundlebudget.yaml
  bundlebudget check --stats stats.json  Check a stats document
  bundlebudget check --build             Build with esbuild and check the result
  bundlebudget watch --build             Re-check on every source change`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initialize(cmd)
	},
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"project file (default is ./bundlebudget.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console",
		"log format: console, json")
	rootCmd.PersistentFlags().BoolVar(&noHeaders, "no-headers", false,
		"hide table headers")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"minimal output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"disable colored log output")

	// Bind environment variables
	viper.SetEnvPrefix(config.EnvPrefix)
	_ = viper.BindEnv("debug")      // BUNDLEBUDGET_DEBUG
	_ = viper.BindEnv("log_format") // BUNDLEBUDGET_LOG_FORMAT
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(budgetsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
}

// initialize sets up logging and the output formatter for every command
func initialize(cmd *cobra.Command) error {
	_, err := logging.Setup(logging.Options{
		Format:  viper.GetString("log_format"),
		Debug:   viper.GetBool("debug"),
		NoColor: noColor || !util.IsTerminal(os.Stderr),
		Out:     cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(outputFmt)
	if err != nil {
		return err
	}
	formatter = output.NewFormatter(format, noHeaders, quiet)
	formatter.Writer = cmd.OutOrStdout()
	formatter.ErrWriter = cmd.ErrOrStderr()
	return nil
}

// loadProject loads the project file named by --config or found in the
// default locations
func loadProject() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if cfg.Debug && !IsDebug() {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
	}
	log.Debug().Str("file", cfg.File()).Int("budgets", len(cfg.Budgets)).Msg("Loaded project")
	return cfg, nil
}

// GetFormatter returns the output formatter (for use by subcommands)
func GetFormatter() *output.Formatter {
	if formatter == nil {
		format, _ := output.ParseFormat(outputFmt)
		formatter = output.NewFormatter(format, noHeaders, quiet)
	}
	return formatter
}

// IsDebug returns true if debug mode is enabled
func IsDebug() bool {
	return debug || viper.GetBool("debug")
}
