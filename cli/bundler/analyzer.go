package bundler

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

// staticImportKinds are the esbuild import kinds that load eagerly
var staticImportKinds = map[string]bool{
	"import-statement": true,
	"require-call":     true,
}

// Analyzer turns an esbuild metafile into an output graph
type Analyzer struct {
	meta *Metafile
	// output path -> artifact name
	owner map[string]string
}

// NewAnalyzer creates an analyzer for meta
func NewAnalyzer(meta *Metafile) *Analyzer {
	return &Analyzer{meta: meta, owner: map[string]string{}}
}

// Graph converts the metafile. Each entry output becomes its own artifact,
// named after its entry point relative to the shared entry directory, and is
// initial unless another output imports it dynamically. Code-split chunks
// become artifacts named after the output file and are initial only when an
// initial output imports them statically. Source maps and CSS bundles join the artifact they belong to.
// The compiler view is reported as-is; lazy extra entry points are corrected
// later by budget.Classify.
func (a *Analyzer) Graph() budget.OutputGraph {
	a.owner = map[string]string{}
	paths := make([]string, 0, len(a.meta.Outputs))
	for p := range a.meta.Outputs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	cssBundles := map[string]string{}
	for _, p := range paths {
		if bundle := a.meta.Outputs[p].CSSBundle; bundle != "" {
			cssBundles[bundle] = p
		}
	}

	// Entries first so chunks and companions can attach to them.
	// Script entries claim names before style and asset entries.
	names := entryNames(a.meta.Outputs, paths)
	taken := map[string]bool{}
	for _, scripts := range []bool{true, false} {
		for _, p := range paths {
			name, ok := names[p]
			if ok && (budget.KindFromPath(p) == budget.KindScript) == scripts {
				a.owner[p] = unique(name, taken)
			}
		}
	}
	for _, p := range paths {
		if _, ok := a.owner[p]; ok || isMap(p) {
			continue
		}
		if entryOut, ok := cssBundles[p]; ok {
			if name, ok := a.owner[entryOut]; ok {
				a.owner[p] = name
				continue
			}
		}
		a.owner[p] = unique(baseName(p), taken)
	}
	for _, p := range paths {
		if isMap(p) {
			if name, ok := a.owner[strings.TrimSuffix(p, ".map")]; ok {
				a.owner[p] = name
			} else {
				a.owner[p] = unique(baseName(strings.TrimSuffix(p, ".map")), taken)
			}
		}
	}

	initial := a.initialOutputs(paths)

	var order []string
	artifacts := map[string]*budget.Artifact{}
	for _, p := range paths {
		name := a.owner[p]
		art, ok := artifacts[name]
		if !ok {
			art = &budget.Artifact{Name: name}
			artifacts[name] = art
			order = append(order, name)
		}
		art.Files = append(art.Files, budget.OutputFile{
			Path: p,
			Size: a.meta.Outputs[p].Bytes,
			Kind: budget.KindFromPath(p),
		})
		if initial[p] {
			art.Initial = true
		}
	}

	g := budget.OutputGraph{Artifacts: make([]budget.Artifact, 0, len(order))}
	for _, name := range order {
		art := artifacts[name]
		for i := range art.Files {
			art.Files[i].Initial = art.Initial
		}
		g.Artifacts = append(g.Artifacts, *art)
	}
	return g
}

// initialOutputs marks entry outputs that nothing loads dynamically, their
// CSS bundles, and everything they reach through static imports.
func (a *Analyzer) initialOutputs(paths []string) map[string]bool {
	// esbuild reports dynamically imported modules as entry points too
	dynamic := map[string]bool{}
	for _, p := range paths {
		for _, imp := range a.meta.Outputs[p].Imports {
			if imp.Kind == "dynamic-import" {
				dynamic[imp.Path] = true
			}
		}
	}

	initial := map[string]bool{}
	var queue []string
	for _, p := range paths {
		out := a.meta.Outputs[p]
		if out.EntryPoint == "" || isMap(p) || dynamic[p] {
			continue
		}
		initial[p] = true
		queue = append(queue, p)
		if out.CSSBundle != "" && !initial[out.CSSBundle] {
			initial[out.CSSBundle] = true
			queue = append(queue, out.CSSBundle)
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, imp := range a.meta.Outputs[p].Imports {
			if imp.External || !staticImportKinds[imp.Kind] || initial[imp.Path] {
				continue
			}
			if _, ok := a.meta.Outputs[imp.Path]; !ok {
				continue
			}
			initial[imp.Path] = true
			queue = append(queue, imp.Path)
		}
	}
	return initial
}

// Analyze returns the input breakdown of every artifact, largest inputs first
func (a *Analyzer) Analyze() []*AnalysisResult {
	if len(a.owner) == 0 {
		a.Graph()
	}

	byArtifact := map[string]*AnalysisResult{}
	var order []string
	paths := make([]string, 0, len(a.meta.Outputs))
	for p := range a.meta.Outputs {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if isMap(p) {
			continue
		}
		output := a.meta.Outputs[p]
		name := a.owner[p]
		result, ok := byArtifact[name]
		if !ok {
			result = &AnalysisResult{Artifact: name}
			byArtifact[name] = result
			order = append(order, name)
		}
		result.TotalBytes += output.Bytes

		for _, imp := range output.Imports {
			if imp.External {
				result.ExternalImports = append(result.ExternalImports, imp.Path)
			}
		}

		for inputPath, contrib := range output.Inputs {
			inputInfo := a.meta.Inputs[inputPath]
			result.InputFiles = append(result.InputFiles, FileAnalysis{
				Path:          inputPath,
				Bytes:         inputInfo.Bytes,
				BytesInOutput: contrib.BytesInOutput,
				ImportCount:   len(inputInfo.Imports),
			})
		}
	}

	results := make([]*AnalysisResult, 0, len(order))
	for _, name := range order {
		result := byArtifact[name]
		for i := range result.InputFiles {
			if result.TotalBytes > 0 {
				result.InputFiles[i].Percentage = float64(result.InputFiles[i].BytesInOutput) / float64(result.TotalBytes) * 100
			}
		}
		// Sort by bytes in output (largest first)
		sort.Slice(result.InputFiles, func(i, j int) bool {
			if result.InputFiles[i].BytesInOutput != result.InputFiles[j].BytesInOutput {
				return result.InputFiles[i].BytesInOutput > result.InputFiles[j].BytesInOutput
			}
			return result.InputFiles[i].Path < result.InputFiles[j].Path
		})
		sort.Strings(result.ExternalImports)
		results = append(results, result)
	}
	return results
}

func isMap(p string) bool {
	return strings.HasSuffix(strings.ToLower(p), ".map")
}

// entryNames names every entry output after its entry point, relative to the
// directory all entry points share: "src/admin/index.ts" -> "admin/index".
func entryNames(outputs map[string]MetafileOutput, paths []string) map[string]string {
	var entries []string
	for _, p := range paths {
		if outputs[p].EntryPoint != "" && !isMap(p) {
			entries = append(entries, p)
		}
	}
	if len(entries) == 0 {
		return nil
	}

	root := path.Dir(path.Clean(outputs[entries[0]].EntryPoint))
	for _, p := range entries[1:] {
		root = commonDir(root, path.Dir(path.Clean(outputs[p].EntryPoint)))
	}

	names := make(map[string]string, len(entries))
	for _, p := range entries {
		rel := path.Clean(outputs[p].EntryPoint)
		if root != "." {
			rel = strings.TrimPrefix(rel, strings.TrimSuffix(root, "/")+"/")
		}
		names[p] = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return names
}

// commonDir returns the longest directory prefix shared by a and b
func commonDir(a, b string) string {
	as, bs := strings.Split(a, "/"), strings.Split(b, "/")
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	if n == 0 {
		return "."
	}
	if dir := strings.Join(as[:n], "/"); dir != "" {
		return dir
	}
	return "/"
}

// unique returns name, or name with a numeric suffix when it is already taken
func unique(name string, taken map[string]bool) string {
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s-%d", name, i)
	}
	taken[candidate] = true
	return candidate
}

// baseName strips directory and extension: "src/app/main.ts" -> "main"
func baseName(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
