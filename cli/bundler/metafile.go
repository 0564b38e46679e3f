// Package bundler produces output graphs from esbuild builds, esbuild
// metafiles and stats files.
package bundler

import (
	"encoding/json"
	"fmt"
	"os"
)

// Metafile represents the esbuild metafile JSON structure
type Metafile struct {
	Inputs  map[string]MetafileInput  `json:"inputs"`
	Outputs map[string]MetafileOutput `json:"outputs"`
}

// MetafileInput represents an input file in the metafile
type MetafileInput struct {
	Bytes   int64            `json:"bytes"`
	Imports []MetafileImport `json:"imports"`
	Format  string           `json:"format,omitempty"` // "cjs" or "esm"
}

// MetafileImport represents an import in the metafile
type MetafileImport struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external,omitempty"`
	Original string `json:"original,omitempty"`
}

// MetafileOutput represents an output file in the metafile
type MetafileOutput struct {
	Bytes      int64                   `json:"bytes"`
	Inputs     map[string]InputContrib `json:"inputs"`
	Imports    []MetafileImport        `json:"imports"`
	Exports    []string                `json:"exports"`
	EntryPoint string                  `json:"entryPoint,omitempty"`
	CSSBundle  string                  `json:"cssBundle,omitempty"`
}

// InputContrib represents the contribution of an input to an output
type InputContrib struct {
	BytesInOutput int64 `json:"bytesInOutput"`
}

// ParseMetafile decodes an esbuild metafile
func ParseMetafile(data []byte) (*Metafile, error) {
	var meta Metafile
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	if meta.Outputs == nil {
		return nil, fmt.Errorf("failed to parse metafile: no outputs")
	}
	return &meta, nil
}

// LoadMetafile reads and decodes the metafile at path
func LoadMetafile(path string) (*Metafile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read metafile: %w", err)
	}
	return ParseMetafile(data)
}

// AnalysisResult contains the input breakdown of one artifact
type AnalysisResult struct {
	Artifact        string
	TotalBytes      int64
	InputFiles      []FileAnalysis
	ExternalImports []string
}

// FileAnalysis contains analysis for a single input file
type FileAnalysis struct {
	Path          string
	Bytes         int64
	BytesInOutput int64
	Percentage    float64
	ImportCount   int
}
