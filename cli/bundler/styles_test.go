package bundler

import (
	"strings"
	"testing"
)

const verboseCSS = `/* header styles */
.header   {
    color :   #ff0000;
    margin: 0px 0px 0px 0px;
}
`

func TestStyleCollector_Collect(t *testing.T) {
	dir := writeSources(t, map[string]string{
		"src/app/app.component.css":         verboseCSS,
		"src/app/nav/nav.component.css":     ".nav{display:flex}",
		"src/app/nav/nav.component.css.map": "{}",
		"src/app/nav/nav.component.ts":      "export class Nav {}",
		"src/styles.css":                    "body{margin:0}",
	})

	raw, err := StyleCollector{Root: dir, Patterns: []string{"src/**/*.component.css"}}.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if len(raw) != 2 {
		t.Fatalf("got %d stylesheets, want 2: %+v", len(raw), raw)
	}
	if raw[0].Path != "src/app/app.component.css" || raw[1].Path != "src/app/nav/nav.component.css" {
		t.Errorf("paths = %s, %s", raw[0].Path, raw[1].Path)
	}
	if raw[0].Size != int64(len(verboseCSS)) {
		t.Errorf("raw size = %d, want %d", raw[0].Size, len(verboseCSS))
	}

	optimized, err := StyleCollector{Root: dir, Patterns: []string{"src/**/*.component.css"}, Optimize: true}.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if optimized[0].Size >= raw[0].Size {
		t.Errorf("optimized size %d should be below raw size %d", optimized[0].Size, raw[0].Size)
	}
}

func TestStyleCollector_DeduplicatesPatterns(t *testing.T) {
	dir := writeSources(t, map[string]string{"a.component.css": "a{}"})
	files, err := StyleCollector{Root: dir, Patterns: []string{"*.css", "**/*.component.css"}}.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("got %d files, want 1", len(files))
	}
}

func TestMinifyCSS(t *testing.T) {
	out, err := MinifyCSS(verboseCSS, "header.css")
	if err != nil {
		t.Fatalf("MinifyCSS failed: %v", err)
	}
	if strings.Contains(out, "header styles") {
		t.Errorf("comment not stripped: %q", out)
	}
	if !strings.Contains(out, ".header{") {
		t.Errorf("unexpected output %q", out)
	}
}
