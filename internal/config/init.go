package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
	"github.com/fluxbase-eu/bundlebudget/internal/observability"
)

// Default returns the starter project written by `bundlebudget init`
func Default(project string) *Config {
	return &Config{
		Project: project,
		Budgets: []budget.Declaration{
			{Type: string(budget.TypeInitial), MaximumWarning: "500kb", MaximumError: "1mb"},
			{Type: string(budget.TypeAnyComponentStyle), MaximumWarning: "2kb", MaximumError: "4kb"},
		},
		Build: BuildConfig{
			EntryPoints: []string{"src/main.js"},
			Outdir:      "dist",
			Minify:      true,
			Splitting:   true,
			Format:      "esm",
			Target:      "es2020",
		},
		Optimization:    OptimizationConfig{Styles: true},
		ComponentStyles: []string{"src/**/*.component.css"},
		Tracing:         observability.DefaultTracerConfig(),
	}
}

// WriteYAML encodes the project file as YAML
func (c *Config) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}

// Save writes the project file to path. An existing file is only
// replaced when overwrite is set.
func (c *Config) Save(path string, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return c.WriteYAML(f)
}
