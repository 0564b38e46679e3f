package budget

import "fmt"

// Size is one measured quantity a budget is compared against
type Size struct {
	Label string `json:"label" yaml:"label"`
	Bytes int64  `json:"bytes" yaml:"bytes"`
}

// CalculateSizes measures g for budget b. The graph must already have been
// classified. Source maps are never counted.
func CalculateSizes(b Budget, g OutputGraph) ([]Size, error) {
	switch scope := b.Scope.(type) {
	case BundleScope:
		a, ok := g.Artifact(scope.Name)
		if !ok {
			return nil, &ConfigurationError{
				Budget: b.Index,
				Field:  "name",
				Reason: fmt.Sprintf("bundle %q was not found in the build output", scope.Name),
			}
		}
		return []Size{{Label: a.Name, Bytes: sumFiles(a.Files, countAll)}}, nil
	case TypeScope:
		return typeSizes(Type(scope), g), nil
	default:
		return nil, &ConfigurationError{Budget: b.Index, Field: "type", Reason: "budget has no scope"}
	}
}

func typeSizes(t Type, g OutputGraph) []Size {
	switch t {
	case TypeAll:
		var total int64
		for _, a := range g.Artifacts {
			total += sumFiles(a.Files, countAll)
		}
		return []Size{{Label: "total", Bytes: total}}

	case TypeAllScript:
		var total int64
		for _, a := range g.Artifacts {
			total += sumFiles(a.Files, countScripts)
		}
		return []Size{{Label: "total scripts", Bytes: total}}

	case TypeInitial:
		var total int64
		for _, a := range g.Artifacts {
			if a.Initial {
				total += sumFiles(a.Files, countAll)
			}
		}
		return []Size{{Label: "initial", Bytes: total}}

	case TypeAny:
		sizes := make([]Size, 0, len(g.Artifacts))
		for _, a := range g.Artifacts {
			sizes = append(sizes, Size{Label: a.Name, Bytes: sumFiles(a.Files, countAll)})
		}
		return sizes

	case TypeAnyScript:
		var sizes []Size
		for _, a := range g.Artifacts {
			if !hasScript(a.Files) {
				continue
			}
			sizes = append(sizes, Size{Label: a.Name, Bytes: sumFiles(a.Files, countScripts)})
		}
		return sizes

	case TypeAnyComponentStyle:
		return componentStyleSizes(g.ComponentStyles)
	}
	return nil
}

func componentStyleSizes(files []OutputFile) []Size {
	sizes := make([]Size, 0, len(files))
	for _, f := range files {
		if f.IsMap() {
			continue
		}
		sizes = append(sizes, Size{Label: f.Path, Bytes: f.Size})
	}
	return sizes
}

type fileFilter func(OutputFile) bool

func countAll(f OutputFile) bool     { return !f.IsMap() }
func countScripts(f OutputFile) bool { return f.IsScript() }

func sumFiles(files []OutputFile, include fileFilter) int64 {
	var total int64
	for _, f := range files {
		if include(f) {
			total += f.Size
		}
	}
	return total
}

func hasScript(files []OutputFile) bool {
	for _, f := range files {
		if f.IsScript() {
			return true
		}
	}
	return false
}
