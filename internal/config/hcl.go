package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// hclProjectFile is the HCL spelling of a project file:
//
//	project = "storefront"
//
//	budget "initial" {
//	  maximum_warning = "500kb"
//	}
//
//	script {
//	  input = "src/polyfills.js"
//	  lazy  = true
//	}
type hclProjectFile struct {
	Project         *string         `hcl:"project,optional"`
	Debug           *bool           `hcl:"debug,optional"`
	ComponentStyles []string        `hcl:"component_styles,optional"`
	Budgets         []hclBudget     `hcl:"budget,block"`
	Scripts         []hclEntryPoint `hcl:"script,block"`
	Styles          []hclEntryPoint `hcl:"style,block"`
	Build           *hclBuild       `hcl:"build,block"`
	Optimization    *hclOptimize    `hcl:"optimization,block"`
	Stats           *hclStats       `hcl:"stats,block"`
	Metrics         *hclMetrics     `hcl:"metrics,block"`
	Tracing         *hclTracing     `hcl:"tracing,block"`
}

type hclBudget struct {
	Type           string  `hcl:"type,label"`
	Name           *string `hcl:"name,optional"`
	Baseline       *string `hcl:"baseline,optional"`
	MaximumWarning *string `hcl:"maximum_warning,optional"`
	MaximumError   *string `hcl:"maximum_error,optional"`
	MinimumWarning *string `hcl:"minimum_warning,optional"`
	MinimumError   *string `hcl:"minimum_error,optional"`
	Warning        *string `hcl:"warning,optional"`
	Error          *string `hcl:"error,optional"`
}

type hclEntryPoint struct {
	Input      string  `hcl:"input"`
	BundleName *string `hcl:"bundle_name,optional"`
	Lazy       *bool   `hcl:"lazy,optional"`
	Inject     *bool   `hcl:"inject,optional"`
}

type hclBuild struct {
	EntryPoints []string `hcl:"entry_points,optional"`
	Outdir      *string  `hcl:"outdir,optional"`
	Minify      *bool    `hcl:"minify,optional"`
	Sourcemap   *bool    `hcl:"sourcemap,optional"`
	Splitting   *bool    `hcl:"splitting,optional"`
	Format      *string  `hcl:"format,optional"`
	Target      *string  `hcl:"target,optional"`
}

type hclOptimize struct {
	Styles *bool `hcl:"styles,optional"`
}

type hclStats struct {
	File     *string `hcl:"file,optional"`
	Metafile *string `hcl:"metafile,optional"`
}

type hclMetrics struct {
	Textfile *string `hcl:"textfile,optional"`
}

type hclTracing struct {
	Enabled     *bool    `hcl:"enabled,optional"`
	Endpoint    *string  `hcl:"endpoint,optional"`
	ServiceName *string  `hcl:"service_name,optional"`
	Environment *string  `hcl:"environment,optional"`
	SampleRate  *float64 `hcl:"sample_rate,optional"`
	Insecure    *bool    `hcl:"insecure,optional"`
}

// LoadHCL reads an HCL project file into a settings map keyed the same way
// as the YAML format, ready to be merged into viper.
func LoadHCL(path string) (map[string]interface{}, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read HCL file %s: %w", path, err)
	}
	return ParseHCL(src, path)
}

// ParseHCL decodes HCL source. filename is only used in diagnostics.
func ParseHCL(src []byte, filename string) (map[string]interface{}, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var parsed hclProjectFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	return parsed.settings(), nil
}

func (f *hclProjectFile) settings() map[string]interface{} {
	out := map[string]interface{}{}
	setString(out, "project", f.Project)
	setBool(out, "debug", f.Debug)
	if len(f.ComponentStyles) > 0 {
		out["componentStyles"] = f.ComponentStyles
	}

	if len(f.Budgets) > 0 {
		budgets := make([]interface{}, 0, len(f.Budgets))
		for _, b := range f.Budgets {
			m := map[string]interface{}{"type": b.Type}
			setString(m, "name", b.Name)
			setString(m, "baseline", b.Baseline)
			setString(m, "maximumWarning", b.MaximumWarning)
			setString(m, "maximumError", b.MaximumError)
			setString(m, "minimumWarning", b.MinimumWarning)
			setString(m, "minimumError", b.MinimumError)
			setString(m, "warning", b.Warning)
			setString(m, "error", b.Error)
			budgets = append(budgets, m)
		}
		out["budgets"] = budgets
	}

	if entries := entryPointSettings(f.Scripts); entries != nil {
		out["scripts"] = entries
	}
	if entries := entryPointSettings(f.Styles); entries != nil {
		out["styles"] = entries
	}

	if f.Build != nil {
		m := map[string]interface{}{}
		if len(f.Build.EntryPoints) > 0 {
			m["entryPoints"] = f.Build.EntryPoints
		}
		setString(m, "outdir", f.Build.Outdir)
		setBool(m, "minify", f.Build.Minify)
		setBool(m, "sourcemap", f.Build.Sourcemap)
		setBool(m, "splitting", f.Build.Splitting)
		setString(m, "format", f.Build.Format)
		setString(m, "target", f.Build.Target)
		out["build"] = m
	}
	if f.Optimization != nil {
		m := map[string]interface{}{}
		setBool(m, "styles", f.Optimization.Styles)
		out["optimization"] = m
	}
	if f.Stats != nil {
		m := map[string]interface{}{}
		setString(m, "file", f.Stats.File)
		setString(m, "metafile", f.Stats.Metafile)
		out["stats"] = m
	}
	if f.Metrics != nil {
		m := map[string]interface{}{}
		setString(m, "textfile", f.Metrics.Textfile)
		out["metrics"] = m
	}
	if f.Tracing != nil {
		m := map[string]interface{}{}
		setBool(m, "enabled", f.Tracing.Enabled)
		setString(m, "endpoint", f.Tracing.Endpoint)
		setString(m, "service_name", f.Tracing.ServiceName)
		setString(m, "environment", f.Tracing.Environment)
		if f.Tracing.SampleRate != nil {
			m["sample_rate"] = *f.Tracing.SampleRate
		}
		setBool(m, "insecure", f.Tracing.Insecure)
		out["tracing"] = m
	}

	return out
}

func entryPointSettings(entries []hclEntryPoint) []interface{} {
	if len(entries) == 0 {
		return nil
	}
	out := make([]interface{}, 0, len(entries))
	for _, e := range entries {
		m := map[string]interface{}{"input": e.Input}
		setString(m, "bundleName", e.BundleName)
		setBool(m, "lazy", e.Lazy)
		setBool(m, "inject", e.Inject)
		out = append(out, m)
	}
	return out
}

func setString(m map[string]interface{}, key string, v *string) {
	if v != nil {
		m[key] = *v
	}
}

func setBool(m map[string]interface{}, key string, v *bool) {
	if v != nil {
		m[key] = *v
	}
}
