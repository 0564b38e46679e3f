package bundler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fluxbase-eu/bundlebudget/internal/budget"
)

const sampleMetafile = `{
  "inputs": {
    "src/main.ts": {"bytes": 900, "imports": [{"path": "node_modules/lib/index.js", "kind": "import-statement"}]},
    "node_modules/lib/index.js": {"bytes": 2000, "imports": []}
  },
  "outputs": {
    "dist/main.js": {
      "bytes": 1000,
      "entryPoint": "src/main.ts",
      "cssBundle": "dist/main.css",
      "imports": [
        {"path": "dist/chunk-A.js", "kind": "import-statement"},
        {"path": "dist/lazy-B.js", "kind": "dynamic-import"},
        {"path": "https://cdn.example.com/x.js", "kind": "import-statement", "external": true}
      ],
      "inputs": {"src/main.ts": {"bytesInOutput": 600}, "node_modules/lib/index.js": {"bytesInOutput": 400}}
    },
    "dist/main.css": {"bytes": 200, "inputs": {}, "imports": []},
    "dist/main.js.map": {"bytes": 5000, "inputs": {}, "imports": []},
    "dist/chunk-A.js": {"bytes": 300, "inputs": {}, "imports": []},
    "dist/lazy-B.js": {
      "bytes": 400,
      "inputs": {},
      "imports": [{"path": "dist/chunk-C.js", "kind": "import-statement"}]
    },
    "dist/chunk-C.js": {"bytes": 50, "inputs": {}, "imports": []},
    "dist/polyfills.js": {"bytes": 700, "entryPoint": "src/polyfills.js", "inputs": {}, "imports": []}
  }
}`

func parseSample(t *testing.T) *Metafile {
	t.Helper()
	meta, err := ParseMetafile([]byte(sampleMetafile))
	if err != nil {
		t.Fatalf("ParseMetafile failed: %v", err)
	}
	return meta
}

func TestAnalyzer_Graph(t *testing.T) {
	g := NewAnalyzer(parseSample(t)).Graph()

	wantOrder := []string{"chunk-A", "chunk-C", "lazy-B", "main", "polyfills"}
	if len(g.Artifacts) != len(wantOrder) {
		t.Fatalf("got %d artifacts, want %d", len(g.Artifacts), len(wantOrder))
	}
	for i, name := range wantOrder {
		if g.Artifacts[i].Name != name {
			t.Errorf("artifact %d = %q, want %q", i, g.Artifacts[i].Name, name)
		}
	}

	wantInitial := map[string]bool{
		"main":      true,
		"polyfills": true,
		"chunk-A":   true,
		"lazy-B":    false,
		"chunk-C":   false,
	}
	for name, want := range wantInitial {
		a, ok := g.Artifact(name)
		if !ok {
			t.Fatalf("missing artifact %q", name)
		}
		if a.Initial != want {
			t.Errorf("%s initial = %v, want %v", name, a.Initial, want)
		}
		for _, f := range a.Files {
			if f.Initial != want {
				t.Errorf("%s initial = %v, want %v", f.Path, f.Initial, want)
			}
		}
	}

	main, _ := g.Artifact("main")
	var paths []string
	for _, f := range main.Files {
		paths = append(paths, f.Path)
	}
	if got := strings.Join(paths, ","); got != "dist/main.css,dist/main.js,dist/main.js.map" {
		t.Errorf("main files = %s", got)
	}
}

func TestAnalyzer_GraphSizes(t *testing.T) {
	g := NewAnalyzer(parseSample(t)).Graph()

	budgets, err := budget.Normalize([]budget.Declaration{{Type: "initial"}}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	sizes, err := budget.CalculateSizes(budgets[0], g)
	if err != nil {
		t.Fatalf("CalculateSizes failed: %v", err)
	}
	// main.js + main.css + chunk-A + polyfills, map excluded
	if sizes[0].Bytes != 2200 {
		t.Errorf("initial size = %d, want 2200", sizes[0].Bytes)
	}
}

func TestAnalyzer_GraphSharedBaseName(t *testing.T) {
	meta, err := ParseMetafile([]byte(`{
  "inputs": {},
  "outputs": {
    "dist/index.js": {
      "bytes": 1000,
      "entryPoint": "src/index.ts",
      "inputs": {},
      "imports": [{"path": "dist/admin/index.js", "kind": "dynamic-import"}]
    },
    "dist/admin/index.js": {"bytes": 5000, "entryPoint": "src/admin/index.ts", "inputs": {}, "imports": []},
    "dist/admin/index.js.map": {"bytes": 9000, "inputs": {}, "imports": []}
  }
}`))
	if err != nil {
		t.Fatalf("ParseMetafile failed: %v", err)
	}
	g := NewAnalyzer(meta).Graph()

	if len(g.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2: %+v", len(g.Artifacts), g.Artifacts)
	}
	index, ok := g.Artifact("index")
	if !ok || !index.Initial || len(index.Files) != 1 {
		t.Errorf("index = %+v", index)
	}
	admin, ok := g.Artifact("admin/index")
	if !ok || admin.Initial || len(admin.Files) != 2 {
		t.Errorf("admin/index = %+v", admin)
	}

	budgets, err := budget.Normalize([]budget.Declaration{{Type: "initial"}}, nil)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	sizes, err := budget.CalculateSizes(budgets[0], g)
	if err != nil {
		t.Fatalf("CalculateSizes failed: %v", err)
	}
	if len(sizes) != 1 || sizes[0].Bytes != 1000 {
		t.Errorf("initial sizes = %+v, want 1000", sizes)
	}
}

func TestAnalyzer_GraphNameCollision(t *testing.T) {
	meta, err := ParseMetafile([]byte(`{
  "inputs": {},
  "outputs": {
    "dist/main.js": {"bytes": 100, "entryPoint": "src/main.ts", "inputs": {}, "imports": []},
    "dist/main.css": {"bytes": 40, "entryPoint": "src/main.css", "inputs": {}, "imports": []}
  }
}`))
	if err != nil {
		t.Fatalf("ParseMetafile failed: %v", err)
	}
	g := NewAnalyzer(meta).Graph()

	if len(g.Artifacts) != 2 {
		t.Fatalf("got %d artifacts, want 2", len(g.Artifacts))
	}
	script, ok := g.Artifact("main")
	if !ok || script.Files[0].Path != "dist/main.js" {
		t.Errorf("main = %+v", script)
	}
	style, ok := g.Artifact("main-2")
	if !ok || style.Files[0].Path != "dist/main.css" || !style.Initial {
		t.Errorf("main-2 = %+v", style)
	}
}

func TestCommonDir(t *testing.T) {
	tests := []struct{ a, b, want string }{
		{"src", "src/admin", "src"},
		{"src/app", "src/admin", "src"},
		{"src", "lib", "."},
		{".", "src", "."},
		{"/abs/src", "/abs/lib", "/abs"},
		{"/src", "/lib", "/"},
	}
	for _, tt := range tests {
		if got := commonDir(tt.a, tt.b); got != tt.want {
			t.Errorf("commonDir(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	results := NewAnalyzer(parseSample(t)).Analyze()

	var main *AnalysisResult
	for _, r := range results {
		if r.Artifact == "main" {
			main = r
		}
	}
	if main == nil {
		t.Fatal("no analysis for main")
	}

	if main.TotalBytes != 1200 {
		t.Errorf("TotalBytes = %d, want 1200", main.TotalBytes)
	}
	if len(main.InputFiles) != 2 {
		t.Fatalf("got %d input files, want 2", len(main.InputFiles))
	}
	if main.InputFiles[0].Path != "src/main.ts" || main.InputFiles[0].BytesInOutput != 600 {
		t.Errorf("largest input = %+v", main.InputFiles[0])
	}
	if main.InputFiles[0].Percentage != 50 {
		t.Errorf("percentage = %v, want 50", main.InputFiles[0].Percentage)
	}
	if len(main.ExternalImports) != 1 || main.ExternalImports[0] != "https://cdn.example.com/x.js" {
		t.Errorf("external imports = %v", main.ExternalImports)
	}

	var buf bytes.Buffer
	DisplayAnalysis(&buf, main, false)
	out := buf.String()
	if !strings.Contains(out, "Bundle Analysis: main") {
		t.Errorf("missing header in %q", out)
	}
	if !strings.Contains(out, "src/main.ts") {
		t.Errorf("missing input in %q", out)
	}
}

func TestParseMetafile_Invalid(t *testing.T) {
	if _, err := ParseMetafile([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
	if _, err := ParseMetafile([]byte(`{"inputs": {}}`)); err == nil {
		t.Error("expected error for metafile without outputs")
	}
}

func TestTruncatePath(t *testing.T) {
	if got := truncatePath("short.js", 50); got != "short.js" {
		t.Errorf("truncatePath = %q", got)
	}
	long := strings.Repeat("a", 60) + ".js"
	got := truncatePath(long, 20)
	if len(got) != 20 || !strings.HasPrefix(got, "...") {
		t.Errorf("truncatePath = %q", got)
	}
}
