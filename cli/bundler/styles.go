package bundler

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// StyleCollector gathers component stylesheets for anyComponentStyle
// budgets. With Optimize set every stylesheet is minified first, so the
// sizes reported are the ones that would be emitted.
type StyleCollector struct {
	Root     string
	Patterns []string
	Optimize bool
}

// Collect resolves the glob patterns under Root and sizes each match.
// Paths are reported relative to Root, sorted.
func (c StyleCollector) Collect() ([]budget.OutputFile, error) {
	seen := map[string]bool{}
	var matches []string
	for _, pattern := range c.Patterns {
		found, err := doublestar.Glob(filepath.Join(c.Root, pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid componentStyles pattern %q: %w", pattern, err)
		}
		for _, m := range found {
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	sort.Strings(matches)

	files := make([]budget.OutputFile, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			return nil, fmt.Errorf("failed to stat stylesheet: %w", err)
		}
		if info.IsDir() {
			continue
		}

		size := info.Size()
		if c.Optimize && budget.KindFromPath(m) == budget.KindStyle {
			src, err := os.ReadFile(m)
			if err != nil {
				return nil, fmt.Errorf("failed to read stylesheet: %w", err)
			}
			minified, err := MinifyCSS(string(src), m)
			if err != nil {
				return nil, err
			}
			size = int64(len(minified))
		}

		rel, err := filepath.Rel(c.Root, m)
		if err != nil {
			rel = m
		}
		files = append(files, budget.OutputFile{
			Path: filepath.ToSlash(rel),
			Size: size,
			Kind: budget.KindFromPath(m),
		})
	}

	log.Debug().Int("stylesheets", len(files)).Bool("optimized", c.Optimize).Msg("Collected component styles")
	return files, nil
}

// MinifyCSS runs esbuild's CSS minifier over src. name is used in errors.
func MinifyCSS(src, name string) (string, error) {
	result := api.Transform(src, api.TransformOptions{
		Loader:            api.LoaderCSS,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: true,
		Sourcefile:        name,
		LogLevel:          api.LogLevelSilent,
	})
	if len(result.Errors) > 0 {
		var errMsgs []string
		for _, err := range result.Errors {
			errMsgs = append(errMsgs, err.Text)
		}
		return "", fmt.Errorf("failed to minify %s: %s", name, strings.Join(errMsgs, "; "))
	}
	return string(result.Code), nil
}
