package budget

import (
	"path"
	"strings"
)

// FileKind tags an output file for size accounting
type FileKind string

const (
	KindScript FileKind = "script"
	KindStyle  FileKind = "style"
	KindMap    FileKind = "map"
	KindAsset  FileKind = "asset"
)

// KindFromPath infers the file kind from its extension
func KindFromPath(p string) FileKind {
	switch strings.ToLower(path.Ext(p)) {
	case ".map":
		return KindMap
	case ".js", ".mjs", ".cjs":
		return KindScript
	case ".css":
		return KindStyle
	default:
		return KindAsset
	}
}

// OutputFile is one emitted file
type OutputFile struct {
	Path    string   `json:"path" yaml:"path"`
	Size    int64    `json:"size" yaml:"size"`
	Kind    FileKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Initial bool     `json:"initial,omitempty" yaml:"initial,omitempty"`
}

// IsMap reports whether the file is a source map. Maps never count toward
// any budget.
func (f OutputFile) IsMap() bool {
	return f.kind() == KindMap
}

// IsScript reports whether the file is a script
func (f OutputFile) IsScript() bool {
	return f.kind() == KindScript
}

func (f OutputFile) kind() FileKind {
	if f.Kind != "" {
		return f.Kind
	}
	return KindFromPath(f.Path)
}

// Artifact is a named group of output files for one entry point or split chunk
type Artifact struct {
	Name    string       `json:"name" yaml:"name"`
	Initial bool         `json:"initial" yaml:"initial"`
	Files   []OutputFile `json:"files" yaml:"files"`
}

// OutputGraph is everything a single compilation emitted. Component styles
// are per-component assets that do not belong to a named artifact.
type OutputGraph struct {
	Artifacts       []Artifact   `json:"artifacts" yaml:"artifacts"`
	ComponentStyles []OutputFile `json:"componentStyles,omitempty" yaml:"componentStyles,omitempty"`
}

// Empty reports whether the compilation produced no artifacts
func (g OutputGraph) Empty() bool {
	return len(g.Artifacts) == 0
}

// Artifact looks up an artifact by name
func (g OutputGraph) Artifact(name string) (Artifact, bool) {
	for _, a := range g.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Artifact{}, false
}

// clone deep-copies the graph so callers can rewrite flags freely
func (g OutputGraph) clone() OutputGraph {
	out := OutputGraph{}
	if g.Artifacts != nil {
		out.Artifacts = make([]Artifact, len(g.Artifacts))
		for i, a := range g.Artifacts {
			a.Files = append([]OutputFile(nil), a.Files...)
			out.Artifacts[i] = a
		}
	}
	if g.ComponentStyles != nil {
		out.ComponentStyles = append([]OutputFile(nil), g.ComponentStyles...)
	}
	return out
}
