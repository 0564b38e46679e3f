package budget

import (
	"fmt"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/shopspring/decimal"
)

// DefaultSpecCacheSize bounds the memoized spec parser
const DefaultSpecCacheSize = 256

// SpecKind tells absolute byte budgets apart from baseline-relative ones
type SpecKind int

const (
	Absolute SpecKind = iota
	Percent
)

func (k SpecKind) String() string {
	if k == Percent {
		return "percent"
	}
	return "absolute"
}

var (
	sizeSpecPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)(%|b|kb|mb)?$`)

	kibibyte = decimal.NewFromInt(1024)
	mebibyte = decimal.NewFromInt(1024 * 1024)
	hundred  = decimal.NewFromInt(100)
)

// ByteBudget is a parsed size spec. Value holds bytes for Absolute specs
// and percentage points for Percent specs.
type ByteBudget struct {
	Kind  SpecKind
	Value decimal.Decimal
	raw   string
}

// AbsoluteBytes builds an absolute budget of n bytes
func AbsoluteBytes(n int64) ByteBudget {
	return ByteBudget{Kind: Absolute, Value: decimal.NewFromInt(n), raw: fmt.Sprintf("%d", n)}
}

// IsPercent reports whether the budget is relative to a baseline
func (b ByteBudget) IsPercent() bool {
	return b.Kind == Percent
}

// Equal compares kind and magnitude, ignoring the original spelling
func (b ByteBudget) Equal(other ByteBudget) bool {
	return b.Kind == other.Kind && b.Value.Equal(other.Value)
}

// String returns the spec as it was written
func (b ByteBudget) String() string {
	if b.raw != "" {
		return b.raw
	}
	if b.Kind == Percent {
		return b.Value.String() + "%"
	}
	return b.Value.String()
}

// ParseSizeSpec parses "500kb", "2mb", "1024", "1.5KB" or "5%".
func ParseSizeSpec(spec string) (ByteBudget, error) {
	trimmed := strings.TrimSpace(spec)
	if strings.HasPrefix(trimmed, "-") {
		return ByteBudget{}, &InvalidSpecError{Budget: -1, Spec: spec, Reason: "magnitude must not be negative"}
	}

	matches := sizeSpecPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return ByteBudget{}, &InvalidSpecError{Budget: -1, Spec: spec, Reason: "expected a number optionally followed by b, kb, mb or %"}
	}

	magnitude, err := decimal.NewFromString(matches[1])
	if err != nil {
		return ByteBudget{}, &InvalidSpecError{Budget: -1, Spec: spec, Reason: err.Error()}
	}

	switch strings.ToLower(matches[2]) {
	case "%":
		return ByteBudget{Kind: Percent, Value: magnitude, raw: trimmed}, nil
	case "kb":
		magnitude = magnitude.Mul(kibibyte)
	case "mb":
		magnitude = magnitude.Mul(mebibyte)
	}

	return ByteBudget{Kind: Absolute, Value: magnitude, raw: trimmed}, nil
}

// SpecParser memoizes ParseSizeSpec. A single parser is shared by one
// normalization run so identical specs across budgets are parsed once.
type SpecParser struct {
	cache  *lru.Cache[string, ByteBudget]
	misses int
}

// NewSpecParser creates a parser backed by an LRU cache of the given size
func NewSpecParser(size int) (*SpecParser, error) {
	if size <= 0 {
		size = DefaultSpecCacheSize
	}
	cache, err := lru.New[string, ByteBudget](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create spec cache: %w", err)
	}
	return &SpecParser{cache: cache}, nil
}

// Parse returns the cached value for spec, parsing it on first use.
// Invalid specs are not cached.
func (p *SpecParser) Parse(spec string) (ByteBudget, error) {
	if cached, ok := p.cache.Get(spec); ok {
		return cached, nil
	}

	p.misses++
	parsed, err := ParseSizeSpec(spec)
	if err != nil {
		return ByteBudget{}, err
	}
	p.cache.Add(spec, parsed)
	return parsed, nil
}

// Misses is the number of specs that were actually parsed
func (p *SpecParser) Misses() int {
	return p.misses
}

// Factor selects which side of the baseline a threshold lands on
type Factor int

const (
	Below Factor = -1
	Above Factor = 1
)

// CalculateBytes resolves a spec into a byte threshold. ok is false when
// spec is nil. Percentages require an absolute baseline; absolute specs are
// offset from the baseline when one is given and returned verbatim otherwise.
func CalculateBytes(spec, baseline *ByteBudget, factor Factor) (limit float64, ok bool, err error) {
	if spec == nil {
		return 0, false, nil
	}
	if baseline != nil && baseline.IsPercent() {
		return 0, false, &ConfigurationError{Budget: -1, Field: "baseline", Reason: fmt.Sprintf("baseline %q must be an absolute size", baseline)}
	}

	f := decimal.NewFromInt(int64(factor))

	if spec.IsPercent() {
		if baseline == nil {
			return 0, false, &ConfigurationError{Budget: -1, Reason: fmt.Sprintf("percentage %q requires an absolute baseline", spec)}
		}
		delta := baseline.Value.Mul(spec.Value).Div(hundred)
		return baseline.Value.Add(delta.Mul(f)).InexactFloat64(), true, nil
	}

	if baseline != nil {
		return baseline.Value.Add(spec.Value.Mul(f)).InexactFloat64(), true, nil
	}
	return spec.Value.InexactFloat64(), true, nil
}
