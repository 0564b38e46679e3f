package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/bundlebudget/cli/util"
	"github.com/fluxbase-eu/bundlebudget/internal/config"
)

var (
	initForce   bool
	initProject string
	initPath    string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter bundlebudget.yaml",
	Long: `Create a project file with an initial payload budget, a component style
budget and esbuild settings for src/main.js. Edit it to match your build.`,
	Example: `  bundlebudget init
  bundlebudget init --project storefront --path config/bundlebudget.yaml`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing project file")
	initCmd.Flags().StringVar(&initProject, "project", "", "Project name (default: current directory name)")
	initCmd.Flags().StringVar(&initPath, "path", config.ConfigName+".yaml", "Where to write the project file")
}

func runInit(cmd *cobra.Command, args []string) error {
	project := initProject
	if project == "" {
		if wd, err := os.Getwd(); err == nil {
			project = filepath.Base(wd)
		}
	}

	overwrite := initForce
	if !overwrite && util.IsInteractive() {
		if _, err := os.Stat(initPath); err == nil {
			ok, err := util.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(),
				fmt.Sprintf("%s already exists. Overwrite?", initPath), false)
			if err != nil {
				return err
			}
			if !ok {
				GetFormatter().PrintInfo("Aborted")
				return nil
			}
			overwrite = true
		}
	}

	if dir := filepath.Dir(initPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	if err := config.Default(project).Save(initPath, overwrite); err != nil {
		return err
	}

	GetFormatter().PrintSuccess(fmt.Sprintf("Wrote %s", initPath))
	return nil
}
