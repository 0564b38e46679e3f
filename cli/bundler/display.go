package bundler

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

// DisplayAnalysis prints the input breakdown of one artifact
func DisplayAnalysis(w io.Writer, result *AnalysisResult, showDetails bool) {
	_, _ = fmt.Fprintf(w, "\n=== Bundle Analysis: %s ===\n", result.Artifact)
	_, _ = fmt.Fprintf(w, "Total size: %s\n", humanize.IBytes(uint64(result.TotalBytes)))

	if len(result.ExternalImports) > 0 {
		_, _ = fmt.Fprintln(w, "\nExternal imports:")
		for _, imp := range result.ExternalImports {
			_, _ = fmt.Fprintf(w, "  - %s\n", imp)
		}
	}

	if len(result.InputFiles) == 0 {
		_, _ = fmt.Fprintln(w)
		return
	}

	_, _ = fmt.Fprintln(w, "\nBundle breakdown:")

	maxFiles := 10
	if showDetails {
		maxFiles = len(result.InputFiles)
	}

	// Calculate max path length for alignment
	maxPathLen := 0
	for i, file := range result.InputFiles {
		if i >= maxFiles {
			break
		}
		if l := len(truncatePath(file.Path, 50)); l > maxPathLen {
			maxPathLen = l
		}
	}

	for i, file := range result.InputFiles {
		if i >= maxFiles {
			_, _ = fmt.Fprintf(w, "  ... and %d more files\n", len(result.InputFiles)-maxFiles)
			break
		}

		displayPath := truncatePath(file.Path, 50)
		padding := strings.Repeat(" ", maxPathLen-len(displayPath))
		_, _ = fmt.Fprintf(w, "  %s%s  %9s  %5.1f%%\n",
			displayPath,
			padding,
			humanize.IBytes(uint64(file.BytesInOutput)),
			file.Percentage,
		)
	}

	_, _ = fmt.Fprintln(w)
}

// truncatePath shortens a path if it's too long
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return "..." + path[len(path)-maxLen+3:]
}
