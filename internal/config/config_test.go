package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "bundlebudget.yaml", `
project: storefront
budgets:
  - type: initial
    maximumWarning: 500kb
    maximumError: 1mb
  - type: bundle
    name: vendor
    baseline: 200kb
    warning: 10%
scripts:
  - src/analytics.js
  - input: src/polyfills.js
    lazy: true
styles:
  - input: src/print.css
    inject: false
componentStyles:
  - "src/**/*.component.css"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Project)
	assert.Equal(t, path, cfg.File())
	require.Len(t, cfg.NormalizedBudgets(), 2)
	assert.Equal(t, budget.TypeInitial, cfg.NormalizedBudgets()[0].Type())
	assert.Equal(t, "bundle vendor", cfg.NormalizedBudgets()[1].Label())

	assert.Equal(t, []budget.ExtraEntryPoint{
		{BundleName: "scripts", Lazy: false},
		{BundleName: "polyfills", Lazy: true},
		{BundleName: "print", Lazy: true},
	}, cfg.EntryPoints())

	// defaults
	assert.Equal(t, "dist", cfg.Build.Outdir)
	assert.Equal(t, "esm", cfg.Build.Format)
	assert.True(t, cfg.Optimization.Styles)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, []string{"src/**/*.component.css"}, cfg.ComponentStyles)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "bundlebudget.json", `{
  "budgets": [{"type": "anyScript", "maximumError": "250kb"}],
  "stats": {"metafile": "dist/meta.json"},
  "build": {"format": "iife"}
}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "dist/meta.json", cfg.Stats.Metafile)
	assert.Equal(t, "iife", cfg.Build.Format)
	require.Len(t, cfg.NormalizedBudgets(), 1)
	assert.Equal(t, budget.TypeAnyScript, cfg.NormalizedBudgets()[0].Type())
}

func TestLoad_HCL(t *testing.T) {
	path := writeFile(t, "bundlebudget.hcl", `
project = "storefront"
component_styles = ["src/**/*.css"]

budget "initial" {
  maximum_warning = "500kb"
}

budget "bundle" {
  name          = "vendor"
  minimum_error = "10kb"
}

script {
  input = "src/polyfills.js"
  lazy  = true
}

build {
  entry_points = ["src/main.js"]
  outdir       = "out"
  minify       = false
}

tracing {
  enabled     = true
  sample_rate = 0.25
}
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "storefront", cfg.Project)
	assert.Equal(t, []string{"src/**/*.css"}, cfg.ComponentStyles)
	require.Len(t, cfg.Budgets, 2)
	assert.Equal(t, "vendor", cfg.Budgets[1].Name)
	assert.Equal(t, "10kb", cfg.Budgets[1].MinimumError)
	assert.Equal(t, []budget.ExtraEntryPoint{{BundleName: "polyfills", Lazy: true}}, cfg.EntryPoints())
	assert.Equal(t, []string{"src/main.js"}, cfg.Build.EntryPoints)
	assert.Equal(t, "out", cfg.Build.Outdir)
	assert.False(t, cfg.Build.Minify)
	assert.True(t, cfg.Build.Splitting, "unset keys keep defaults")
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRate)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
}

func TestParseHCL_Invalid(t *testing.T) {
	_, err := ParseHCL([]byte(`budget { maximum_warning = "1kb" }`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode HCL file broken.hcl")

	_, err = ParseHCL([]byte(`budget "initial" {`), "broken.hcl")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse HCL file broken.hcl")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeFile(t, "bundlebudget.yaml", "budgets: []\n")
	t.Setenv("BUNDLEBUDGET_STATS_FILE", "build/stats.json")
	t.Setenv("BUNDLEBUDGET_DEBUG", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "build/stats.json", cfg.Stats.File)
	assert.True(t, cfg.Debug)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  error
		errMsg  string
	}{
		{
			name:    "bundle without name",
			content: "budgets:\n  - type: bundle\n    maximumError: 1mb\n",
			target:  budget.ErrConfiguration,
			errMsg:  "budgets[0].name",
		},
		{
			name:    "invalid size",
			content: "budgets:\n  - type: all\n    error: lots\n",
			target:  budget.ErrInvalidBudgetSpec,
			errMsg:  "budgets[0].error",
		},
		{
			name:    "percentage without baseline",
			content: "budgets:\n  - type: any\n    maximumWarning: 5%\n",
			target:  budget.ErrConfiguration,
			errMsg:  "requires an absolute baseline",
		},
		{
			name:    "both graph sources",
			content: "stats:\n  file: a.json\n  metafile: b.json\n",
			errMsg:  "mutually exclusive",
		},
		{
			name:    "bad format",
			content: "build:\n  format: amd\n",
			errMsg:  "invalid build format: amd",
		},
		{
			name:    "entry without input",
			content: "scripts:\n  - bundleName: x\n",
			errMsg:  "scripts[0].input is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bundlebudget.yaml", tt.content)
			cfg, err := Load(path)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "invalid configuration")
			assert.Contains(t, err.Error(), tt.errMsg)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestNormalizeEntryPoints(t *testing.T) {
	yes, no := true, false

	tests := []struct {
		name       string
		entry      ExtraEntryPoint
		wantBundle string
		wantLazy   bool
	}{
		{name: "eager default", entry: ExtraEntryPoint{Input: "src/a.js"}, wantBundle: "scripts"},
		{name: "lazy uses base name", entry: ExtraEntryPoint{Input: "src/lib/polyfills.js", Lazy: &yes}, wantBundle: "polyfills", wantLazy: true},
		{name: "inject false is lazy", entry: ExtraEntryPoint{Input: "vendor/chart.min.js", Inject: &no}, wantBundle: "chart.min", wantLazy: true},
		{name: "explicit lazy wins over inject", entry: ExtraEntryPoint{Input: "a.js", Lazy: &no, Inject: &no}, wantBundle: "scripts"},
		{name: "explicit bundle name", entry: ExtraEntryPoint{Input: "a.js", BundleName: "legacy", Lazy: &yes}, wantBundle: "legacy", wantLazy: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeEntryPoints([]ExtraEntryPoint{tt.entry}, "scripts")
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantBundle, got[0].BundleName)
			assert.Equal(t, tt.wantLazy, got[0].IsLazy())
		})
	}
}

func TestDefault_WritesLoadableProject(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default("storefront").WriteYAML(&buf))
	assert.Contains(t, buf.String(), "maximumWarning: 500kb")

	path := filepath.Join(t.TempDir(), "bundlebudget.yaml")
	require.NoError(t, Default("storefront").Save(path, false))

	err := Default("storefront").Save(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, Default("other").Save(path, true))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "other", cfg.Project)
	assert.Len(t, cfg.NormalizedBudgets(), 2)
}
