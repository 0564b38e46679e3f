// Package budget enforces output-size budgets against a compiled output graph.
//
// Declarations are normalized once into Budgets (sizes parsed, thresholds
// resolved); a Checker then turns each completed build into warning and
// error messages. The package performs no I/O.
package budget

import (
	"fmt"
	"strings"
)

// Type is the closed set of budget classifications
type Type string

const (
	TypeAll               Type = "all"
	TypeAllScript         Type = "allScript"
	TypeAny               Type = "any"
	TypeAnyComponentStyle Type = "anyComponentStyle"
	TypeAnyScript         Type = "anyScript"
	TypeBundle            Type = "bundle"
	TypeInitial           Type = "initial"
)

// Types lists every budget type in declaration-file spelling
var Types = []Type{TypeAll, TypeAllScript, TypeAny, TypeAnyComponentStyle, TypeAnyScript, TypeBundle, TypeInitial}

// ParseType matches s case-insensitively against the known budget types
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", &ConfigurationError{Budget: -1, Field: "type", Reason: fmt.Sprintf("unknown budget type %q", s)}
}

// Scope is what a budget measures. Only BundleScope carries a name, so a
// bundle budget without one cannot be constructed.
type Scope interface {
	Type() Type
	scope()
}

// TypeScope covers every budget type except bundle
type TypeScope Type

func (s TypeScope) Type() Type { return Type(s) }
func (TypeScope) scope()       {}

// BundleScope targets the single artifact called Name
type BundleScope struct {
	Name string
}

func (BundleScope) Type() Type { return TypeBundle }
func (BundleScope) scope()     {}

// NewScope enforces that name is present if and only if t is bundle
func NewScope(t Type, name string) (Scope, error) {
	name = strings.TrimSpace(name)
	if t == TypeBundle {
		if name == "" {
			return nil, &ConfigurationError{Budget: -1, Field: "name", Reason: "bundle budgets require a name"}
		}
		return BundleScope{Name: name}, nil
	}
	if name != "" {
		return nil, &ConfigurationError{Budget: -1, Field: "name", Reason: fmt.Sprintf("name is only allowed on bundle budgets, not %q", t)}
	}
	return TypeScope(t), nil
}

// Declaration is a budget as written in the project file
type Declaration struct {
	Type           string `json:"type" yaml:"type" mapstructure:"type"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Baseline       string `json:"baseline,omitempty" yaml:"baseline,omitempty" mapstructure:"baseline"`
	MaximumWarning string `json:"maximumWarning,omitempty" yaml:"maximumWarning,omitempty" mapstructure:"maximumWarning"`
	MaximumError   string `json:"maximumError,omitempty" yaml:"maximumError,omitempty" mapstructure:"maximumError"`
	MinimumWarning string `json:"minimumWarning,omitempty" yaml:"minimumWarning,omitempty" mapstructure:"minimumWarning"`
	MinimumError   string `json:"minimumError,omitempty" yaml:"minimumError,omitempty" mapstructure:"minimumError"`
	Warning        string `json:"warning,omitempty" yaml:"warning,omitempty" mapstructure:"warning"`
	Error          string `json:"error,omitempty" yaml:"error,omitempty" mapstructure:"error"`
}

// Budget is a normalized declaration. Size fields are nil when absent.
type Budget struct {
	Index          int
	Scope          Scope
	Baseline       *ByteBudget
	MaximumWarning *ByteBudget
	MaximumError   *ByteBudget
	MinimumWarning *ByteBudget
	MinimumError   *ByteBudget
	Warning        *ByteBudget
	Error          *ByteBudget

	thresholds ThresholdSet
}

// Type returns the budget classification
func (b Budget) Type() Type {
	return b.Scope.Type()
}

// Label is a short human description such as "bundle vendor" or "initial"
func (b Budget) Label() string {
	if s, ok := b.Scope.(BundleScope); ok {
		return "bundle " + s.Name
	}
	return string(b.Type())
}

// Thresholds returns the thresholds resolved during normalization
func (b Budget) Thresholds() ThresholdSet {
	return b.thresholds
}

// Normalize validates declarations, parses every size spec through parser
// and resolves thresholds. It fails on the first invalid declaration.
func Normalize(decls []Declaration, parser *SpecParser) ([]Budget, error) {
	if parser == nil {
		var err error
		if parser, err = NewSpecParser(DefaultSpecCacheSize); err != nil {
			return nil, err
		}
	}

	budgets := make([]Budget, 0, len(decls))
	for i, d := range decls {
		b, err := normalizeOne(i, d, parser)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, nil
}

func normalizeOne(index int, d Declaration, parser *SpecParser) (Budget, error) {
	t, err := ParseType(d.Type)
	if err != nil {
		return Budget{}, locate(err, index, "type")
	}
	scope, err := NewScope(t, d.Name)
	if err != nil {
		return Budget{}, locate(err, index, "name")
	}

	b := Budget{Index: index, Scope: scope}

	fields := []struct {
		name string
		raw  string
		dst  **ByteBudget
	}{
		{"baseline", d.Baseline, &b.Baseline},
		{"maximumWarning", d.MaximumWarning, &b.MaximumWarning},
		{"maximumError", d.MaximumError, &b.MaximumError},
		{"minimumWarning", d.MinimumWarning, &b.MinimumWarning},
		{"minimumError", d.MinimumError, &b.MinimumError},
		{"warning", d.Warning, &b.Warning},
		{"error", d.Error, &b.Error},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.raw) == "" {
			continue
		}
		parsed, err := parser.Parse(f.raw)
		if err != nil {
			return Budget{}, locate(err, index, f.name)
		}
		*f.dst = &parsed
	}

	if b.Baseline != nil && b.Baseline.IsPercent() {
		return Budget{}, &ConfigurationError{Budget: index, Field: "baseline", Reason: fmt.Sprintf("baseline %q must be an absolute size", b.Baseline)}
	}

	thresholds, err := CalculateThresholds(b)
	if err != nil {
		return Budget{}, locate(err, index, "")
	}
	b.thresholds = thresholds

	return b, nil
}
