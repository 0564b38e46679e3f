package bundler

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
)

// BuildOptions mirrors the `build:` section of the project file
type BuildOptions struct {
	EntryPoints []string
	Outdir      string
	Minify      bool
	Sourcemap   bool
	Splitting   bool
	Format      string
	Target      string
	// WorkingDir resolves relative entry points; defaults to the process cwd
	WorkingDir string
}

// Bundler runs esbuild in memory and reports what it would emit
type Bundler struct {
	opts BuildOptions
}

// NewBundler validates opts and creates a bundler
func NewBundler(opts BuildOptions) (*Bundler, error) {
	if len(opts.EntryPoints) == 0 {
		return nil, fmt.Errorf("build.entryPoints must list at least one entry point")
	}
	if opts.Outdir == "" {
		opts.Outdir = "dist"
	}
	if _, err := formatFor(opts.Format); err != nil {
		return nil, err
	}
	return &Bundler{opts: opts}, nil
}

// Build bundles the configured entry points without writing to disk and
// returns the resulting metafile.
func (b *Bundler) Build(ctx context.Context) (*Metafile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, _ := formatFor(b.opts.Format)
	sourcemap := api.SourceMapNone
	if b.opts.Sourcemap {
		sourcemap = api.SourceMapLinked
	}

	buildOpts := api.BuildOptions{
		EntryPoints:       b.opts.EntryPoints,
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Outdir:            b.opts.Outdir,
		Format:            format,
		Splitting:         b.opts.Splitting && format == api.FormatESModule,
		Sourcemap:         sourcemap,
		MinifyWhitespace:  b.opts.Minify,
		MinifyIdentifiers: b.opts.Minify,
		MinifySyntax:      b.opts.Minify,
		Platform:          api.PlatformBrowser,
		AbsWorkingDir:     b.opts.WorkingDir,
		LogLevel:          api.LogLevelSilent,
	}
	if b.opts.Target != "" {
		buildOpts.Engines, buildOpts.Target = parseTarget(b.opts.Target)
	}

	log.Debug().Strs("entry_points", b.opts.EntryPoints).Str("outdir", b.opts.Outdir).Msg("Running esbuild")
	result := api.Build(buildOpts)

	if len(result.Errors) > 0 {
		var errMsgs []string
		for _, err := range result.Errors {
			errMsgs = append(errMsgs, err.Text)
		}
		return nil, fmt.Errorf("build failed: %s", strings.Join(errMsgs, "; "))
	}
	for _, w := range result.Warnings {
		log.Warn().Str("file", locationFile(w.Location)).Msg(w.Text)
	}

	return ParseMetafile([]byte(result.Metafile))
}

func formatFor(name string) (api.Format, error) {
	switch strings.ToLower(name) {
	case "", "esm":
		return api.FormatESModule, nil
	case "iife":
		return api.FormatIIFE, nil
	case "cjs":
		return api.FormatCommonJS, nil
	default:
		return api.FormatDefault, fmt.Errorf("unsupported build format %q", name)
	}
}

// parseTarget maps "es2020" style targets onto esbuild's enum. Anything
// else is treated as a browser engine list such as "chrome100,firefox100".
func parseTarget(target string) ([]api.Engine, api.Target) {
	switch strings.ToLower(target) {
	case "esnext":
		return nil, api.ESNext
	case "es2015":
		return nil, api.ES2015
	case "es2016":
		return nil, api.ES2016
	case "es2017":
		return nil, api.ES2017
	case "es2018":
		return nil, api.ES2018
	case "es2019":
		return nil, api.ES2019
	case "es2020":
		return nil, api.ES2020
	case "es2021":
		return nil, api.ES2021
	case "es2022":
		return nil, api.ES2022
	}

	var engines []api.Engine
	for _, part := range strings.Split(target, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		for _, e := range []struct {
			prefix string
			name   api.EngineName
		}{
			{"chrome", api.EngineChrome},
			{"edge", api.EngineEdge},
			{"firefox", api.EngineFirefox},
			{"safari", api.EngineSafari},
			{"node", api.EngineNode},
		} {
			if strings.HasPrefix(part, e.prefix) {
				engines = append(engines, api.Engine{Name: e.name, Version: strings.TrimPrefix(part, e.prefix)})
			}
		}
	}
	return engines, api.DefaultTarget
}

func locationFile(loc *api.Location) string {
	if loc == nil {
		return ""
	}
	return loc.File
}
