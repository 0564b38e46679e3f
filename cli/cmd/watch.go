package cmd

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fluxbase-eu/bundlebudget/internal/config"
)

var (
	watchDebounce time.Duration
	watchPaths    []string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-check budgets whenever the build output or sources change",
	Long: `Run a check pass, then watch for changes and run another pass after each
burst of file events. Passes never overlap: events arriving during a pass are
folded into the next one.

With --build the directories holding the entry points are watched
recursively. With --stats or --metafile the document itself is watched.
Editing the project file reloads it and re-normalizes the budgets.`,
	Example: `  bundlebudget watch --build
  bundlebudget watch --stats dist/stats.json --debounce 1s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	addSourceFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 300*time.Millisecond, "Quiet period before a pass starts")
	watchCmd.Flags().StringSliceVar(&watchPaths, "path", nil, "Additional directories to watch recursively")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadProject()
	if err != nil {
		return err
	}
	src, err := resolveSource(cfg)
	if err != nil {
		return err
	}
	r, err := newRunner(ctx, cfg, src)
	if err != nil {
		return err
	}
	defer func() { r.close() }()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	ignore, err := watchProject(watcher, r.cfg, r.src)
	if err != nil {
		return err
	}

	pass := func() {
		report, err := r.run(ctx)
		if err != nil {
			GetFormatter().PrintError(err.Error())
			return
		}
		_ = printReport(GetFormatter(), report)
	}

	log.Info().Strs("paths", watcher.WatchList()).Msg("Watching for changes")
	pass()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	reload := false

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping watch")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event, cfg, src) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(watcher, event.Name, ignore)
				}
			}
			if sameFile(event.Name, cfg.File()) {
				reload = true
			}
			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("Change detected")
			timer.Reset(watchDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Watcher error")

		case <-timer.C:
			if reload {
				reload = false
				next, err := reloadRunner(ctx, src)
				if err != nil {
					GetFormatter().PrintError(err.Error())
					continue
				}
				r.close()
				r, cfg, src = next, next.cfg, next.src
				if ignore, err = watchProject(watcher, cfg, src); err != nil {
					log.Warn().Err(err).Msg("Could not watch new paths")
				}
				log.Info().Int("budgets", len(cfg.Budgets)).Msg("Project file reloaded")
			}
			pass()
		}
	}
}

// watchProject adds the roots of src and the project directory to w and
// returns the directory names to skip when new directories appear. Roots that
// are already watched are left alone.
func watchProject(w *fsnotify.Watcher, cfg *config.Config, src source) (map[string]bool, error) {
	ignore := ignoredDirs(cfg)
	for _, dir := range watchRoots(cfg, src) {
		if err := addRecursive(w, dir, ignore); err != nil {
			return ignore, err
		}
	}
	if cfg.File() != "" {
		if err := w.Add(filepath.Dir(cfg.File())); err != nil {
			return ignore, err
		}
	}
	return ignore, nil
}

// reloadRunner reloads the project file and builds a fresh runner, keeping
// the source chosen at startup when it came from a flag
func reloadRunner(ctx context.Context, prev source) (*runner, error) {
	cfg, err := loadProject()
	if err != nil {
		return nil, err
	}
	src := prev
	if checkStats == "" && checkMetafile == "" && !checkBuild {
		if src, err = resolveSource(cfg); err != nil {
			return nil, err
		}
	}
	return newRunner(ctx, cfg, src)
}

// watchRoots lists the directories a source depends on
func watchRoots(cfg *config.Config, src source) []string {
	roots := append([]string(nil), watchPaths...)
	switch src.kind {
	case sourceBuild:
		seen := map[string]bool{}
		for _, ep := range cfg.Build.EntryPoints {
			dir := filepath.Dir(projectPath(cfg, ep))
			if !seen[dir] {
				seen[dir] = true
				roots = append(roots, dir)
			}
		}
	default:
		roots = append(roots, filepath.Dir(src.path))
	}
	return roots
}

// ignoredDirs are never watched
func ignoredDirs(cfg *config.Config) map[string]bool {
	ignore := map[string]bool{"node_modules": true, ".git": true}
	if cfg.Build.Outdir != "" {
		ignore[filepath.Base(cfg.Build.Outdir)] = true
	}
	return ignore
}

func addRecursive(w *fsnotify.Watcher, root string, ignore map[string]bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && ignore[d.Name()] {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// relevant filters out chmod-only events and, for document sources, events
// on unrelated files in the same directory
func relevant(event fsnotify.Event, cfg *config.Config, src source) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if sameFile(event.Name, cfg.File()) {
		return true
	}
	if src.kind == sourceBuild || len(watchPaths) > 0 {
		return true
	}
	return sameFile(event.Name, src.path)
}

func sameFile(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
