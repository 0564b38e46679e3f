package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
	"github.com/fluxbase-eu/bundlebudget/internal/observability"
)

// EnvPrefix prefixes every environment override, e.g. BUNDLEBUDGET_STATS_FILE
const EnvPrefix = "BUNDLEBUDGET"

// ConfigName is the base name searched for in the config paths
const ConfigName = "bundlebudget"

var (
	configPaths      = []string{".", "./config"}
	configExtensions = []string{".yaml", ".yml", ".json", ".toml", ".hcl"}
)

// Config represents a project file
type Config struct {
	Project         string                     `mapstructure:"project" yaml:"project"`
	Budgets         []budget.Declaration       `mapstructure:"budgets" yaml:"budgets"`
	Scripts         []ExtraEntryPoint          `mapstructure:"scripts" yaml:"scripts,omitempty"`
	Styles          []ExtraEntryPoint          `mapstructure:"styles" yaml:"styles,omitempty"`
	Build           BuildConfig                `mapstructure:"build" yaml:"build"`
	Optimization    OptimizationConfig         `mapstructure:"optimization" yaml:"optimization"`
	ComponentStyles []string                   `mapstructure:"componentStyles" yaml:"componentStyles,omitempty"`
	Stats           StatsConfig                `mapstructure:"stats" yaml:"stats,omitempty"`
	Metrics         MetricsConfig              `mapstructure:"metrics" yaml:"metrics,omitempty"`
	Tracing         observability.TracerConfig `mapstructure:"tracing" yaml:"tracing,omitempty"`
	Debug           bool                       `mapstructure:"debug" yaml:"debug,omitempty"`

	file        string
	budgets     []budget.Budget
	entryPoints []budget.ExtraEntryPoint
}

// BuildConfig contains the esbuild settings used by `check --build`
type BuildConfig struct {
	EntryPoints []string `mapstructure:"entryPoints" yaml:"entryPoints,omitempty"`
	Outdir      string   `mapstructure:"outdir" yaml:"outdir"`
	Minify      bool     `mapstructure:"minify" yaml:"minify"`
	Sourcemap   bool     `mapstructure:"sourcemap" yaml:"sourcemap"`
	Splitting   bool     `mapstructure:"splitting" yaml:"splitting"`
	Format      string   `mapstructure:"format" yaml:"format"` // esm, iife or cjs
	Target      string   `mapstructure:"target" yaml:"target"`
}

// OptimizationConfig controls post-build optimization applied before
// component style budgets are checked
type OptimizationConfig struct {
	Styles bool `mapstructure:"styles" yaml:"styles"`
}

// StatsConfig points at a pre-computed output graph
type StatsConfig struct {
	// File is a native stats JSON document
	File string `mapstructure:"file" yaml:"file,omitempty"`
	// Metafile is an esbuild metafile
	Metafile string `mapstructure:"metafile" yaml:"metafile,omitempty"`
}

// MetricsConfig contains Prometheus textfile export settings
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile" yaml:"textfile,omitempty"`
}

// Load reads the project file at path, or searches the default locations
// when path is empty, applies environment overrides and validates the result.
// Budgets are normalized exactly once here.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}

	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		log.Info().Msg("No project file found, using environment variables and defaults")
	} else if err := readConfigFile(v, path); err != nil {
		return nil, err
	} else {
		log.Debug().Str("file", path).Msg("Project file loaded")
	}

	var config Config
	if err := v.Unmarshal(&config, viper.DecodeHook(decodeHook())); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	config.file = path

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		settings, err := LoadHCL(path)
		if err != nil {
			return err
		}
		if err := v.MergeConfigMap(settings); err != nil {
			return fmt.Errorf("error merging HCL config: %w", err)
		}
		return nil
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	return nil
}

// findConfigFile returns the first bundlebudget.<ext> in the search paths
func findConfigFile() string {
	for _, dir := range configPaths {
		for _, ext := range configExtensions {
			candidate := filepath.Join(dir, ConfigName+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
	}
	return ""
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	locations := []string{
		".env",
		".env.local",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			if err := godotenv.Load(location); err != nil {
				return fmt.Errorf("error loading .env file from %s: %w", location, err)
			}
			log.Debug().Str("file", location).Msg(".env file loaded")
			return nil
		}
	}

	return fmt.Errorf("no .env file found")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("project", "")
	v.SetDefault("debug", false)

	// Build defaults
	v.SetDefault("build.outdir", "dist")
	v.SetDefault("build.minify", true)
	v.SetDefault("build.sourcemap", false)
	v.SetDefault("build.splitting", true)
	v.SetDefault("build.format", "esm")
	v.SetDefault("build.target", "es2020")

	v.SetDefault("optimization.styles", true)

	// Output graph sources
	v.SetDefault("stats.file", "")
	v.SetDefault("stats.metafile", "")

	v.SetDefault("metrics.textfile", "")

	// Tracing defaults
	tracing := observability.DefaultTracerConfig()
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.endpoint", tracing.Endpoint)
	v.SetDefault("tracing.service_name", tracing.ServiceName)
	v.SetDefault("tracing.environment", tracing.Environment)
	v.SetDefault("tracing.sample_rate", tracing.SampleRate)
	v.SetDefault("tracing.insecure", tracing.Insecure)
}

func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		stringToEntryPointHook,
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// stringToEntryPointHook accepts the short form `scripts: [src/polyfills.js]`
func stringToEntryPointHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(ExtraEntryPoint{}) {
		return data, nil
	}
	return ExtraEntryPoint{Input: data.(string)}, nil
}

// File returns the project file the config was read from, if any
func (c *Config) File() string {
	return c.file
}

// NormalizedBudgets returns the budgets parsed during validation
func (c *Config) NormalizedBudgets() []budget.Budget {
	return c.budgets
}

// EntryPoints returns the classifier view of the scripts and styles
func (c *Config) EntryPoints() []budget.ExtraEntryPoint {
	return c.entryPoints
}

// Validate validates the configuration and normalizes budgets
func (c *Config) Validate() error {
	if c.Stats.File != "" && c.Stats.Metafile != "" {
		return fmt.Errorf("stats.file and stats.metafile are mutually exclusive")
	}

	switch c.Build.Format {
	case "", "esm", "iife", "cjs":
	default:
		return fmt.Errorf("invalid build format: %s (must be one of: esm, iife, cjs)", c.Build.Format)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}

	for _, pattern := range c.ComponentStyles {
		if _, err := doublestar.Match(pattern, pattern); err != nil {
			return fmt.Errorf("invalid componentStyles pattern %q: %w", pattern, err)
		}
	}

	scripts, err := normalizeEntryPoints(c.Scripts, "scripts")
	if err != nil {
		return err
	}
	styles, err := normalizeEntryPoints(c.Styles, "styles")
	if err != nil {
		return err
	}
	c.Scripts, c.Styles = scripts, styles

	c.entryPoints = c.entryPoints[:0]
	for _, e := range append(append([]ExtraEntryPoint(nil), scripts...), styles...) {
		c.entryPoints = append(c.entryPoints, e.classifierView())
	}

	parser, err := budget.NewSpecParser(budget.DefaultSpecCacheSize)
	if err != nil {
		return err
	}
	budgets, err := budget.Normalize(c.Budgets, parser)
	if err != nil {
		return err
	}
	c.budgets = budgets

	return nil
}
