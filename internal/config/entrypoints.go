package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// ExtraEntryPoint is a global script or stylesheet declared next to the
// application entry. Lazy entries are emitted but not loaded at startup.
type ExtraEntryPoint struct {
	Input      string `mapstructure:"input" yaml:"input"`
	BundleName string `mapstructure:"bundleName" yaml:"bundleName,omitempty"`
	Lazy       *bool  `mapstructure:"lazy" yaml:"lazy,omitempty"`
	Inject     *bool  `mapstructure:"inject" yaml:"inject,omitempty"`
}

// IsLazy reports the effective laziness. `inject: false` implies lazy when
// lazy is not set explicitly.
func (e ExtraEntryPoint) IsLazy() bool {
	if e.Lazy != nil {
		return *e.Lazy
	}
	if e.Inject != nil {
		return !*e.Inject
	}
	return false
}

func (e ExtraEntryPoint) classifierView() budget.ExtraEntryPoint {
	return budget.ExtraEntryPoint{BundleName: e.BundleName, Lazy: e.IsLazy()}
}

// normalizeEntryPoints fills in bundle names. Lazy entries default to the
// input's base name without extension, eager ones share defaultBundle.
func normalizeEntryPoints(entries []ExtraEntryPoint, defaultBundle string) ([]ExtraEntryPoint, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	out := make([]ExtraEntryPoint, 0, len(entries))
	for i, e := range entries {
		e.Input = strings.TrimSpace(e.Input)
		if e.Input == "" {
			return nil, fmt.Errorf("%s[%d].input is required", defaultBundle, i)
		}

		lazy := e.IsLazy()
		e.Lazy = &lazy

		if e.BundleName == "" {
			if lazy {
				base := filepath.Base(e.Input)
				e.BundleName = strings.TrimSuffix(base, filepath.Ext(base))
			} else {
				e.BundleName = defaultBundle
			}
		}
		out = append(out, e)
	}
	return out, nil
}
