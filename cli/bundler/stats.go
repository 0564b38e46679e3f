package bundler

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// statsFile is the native stats format:
//
//	{"artifacts": [{"name": "main", "initial": true,
//	                "files": [{"path": "main.js", "size": 1024}]}],
//	 "componentStyles": [{"path": "app.component.css", "size": 120}]}
type statsFile struct {
	Artifacts       []statsArtifact `json:"artifacts"`
	ComponentStyles []statsFileRef  `json:"componentStyles"`
}

type statsArtifact struct {
	Name    string         `json:"name"`
	Initial bool           `json:"initial"`
	Files   []statsFileRef `json:"files"`
}

type statsFileRef struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
	Kind string `json:"kind,omitempty"`
}

// ParseStats decodes a stats document into an output graph. File kinds
// are inferred from the extension when not given.
func ParseStats(data []byte) (budget.OutputGraph, error) {
	var stats statsFile
	if err := json.Unmarshal(data, &stats); err != nil {
		return budget.OutputGraph{}, fmt.Errorf("failed to parse stats: %w", err)
	}

	g := budget.OutputGraph{Artifacts: make([]budget.Artifact, 0, len(stats.Artifacts))}
	for i, a := range stats.Artifacts {
		if a.Name == "" {
			return budget.OutputGraph{}, fmt.Errorf("failed to parse stats: artifacts[%d] has no name", i)
		}
		art := budget.Artifact{Name: a.Name, Initial: a.Initial}
		for j, f := range a.Files {
			file, err := f.outputFile(a.Initial)
			if err != nil {
				return budget.OutputGraph{}, fmt.Errorf("failed to parse stats: artifacts[%d].files[%d]: %w", i, j, err)
			}
			art.Files = append(art.Files, file)
		}
		g.Artifacts = append(g.Artifacts, art)
	}
	for i, f := range stats.ComponentStyles {
		file, err := f.outputFile(false)
		if err != nil {
			return budget.OutputGraph{}, fmt.Errorf("failed to parse stats: componentStyles[%d]: %w", i, err)
		}
		g.ComponentStyles = append(g.ComponentStyles, file)
	}
	return g, nil
}

// LoadStats reads the stats document at path
func LoadStats(path string) (budget.OutputGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return budget.OutputGraph{}, fmt.Errorf("failed to read stats: %w", err)
	}
	return ParseStats(data)
}

func (f statsFileRef) outputFile(initial bool) (budget.OutputFile, error) {
	if f.Path == "" {
		return budget.OutputFile{}, fmt.Errorf("path is required")
	}
	if f.Size < 0 {
		return budget.OutputFile{}, fmt.Errorf("size of %s is negative", f.Path)
	}

	kind := budget.FileKind(f.Kind)
	switch kind {
	case "":
		kind = budget.KindFromPath(f.Path)
	case budget.KindScript, budget.KindStyle, budget.KindMap, budget.KindAsset:
	default:
		return budget.OutputFile{}, fmt.Errorf("unknown kind %q for %s", f.Kind, f.Path)
	}

	return budget.OutputFile{Path: f.Path, Size: f.Size, Kind: kind, Initial: initial}, nil
}
