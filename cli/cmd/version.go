package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// versionInfo is the structured form of `version -o json|yaml`
type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show bundlebudget version information",
	Long:  `Display the version, commit hash, and build date of bundlebudget.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := GetFormatter()
		if f.Structured() {
			return f.Print(versionInfo{
				Version:   Version,
				Commit:    Commit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
			})
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "bundlebudget %s\n", Version)
		_, _ = fmt.Fprintf(out, "Commit: %s\n", Commit)
		_, _ = fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
		_, _ = fmt.Fprintf(out, "Go: %s\n", runtime.Version())
		return nil
	},
}
