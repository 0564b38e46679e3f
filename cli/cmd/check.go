package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxbase-eu/bundlebudget/cli/bundler"
	"github.com/fluxbase-eu/bundlebudget/internal/budget"
	"github.com/fluxbase-eu/bundlebudget/internal/config"
	"github.com/fluxbase-eu/bundlebudget/internal/observability"
)

// ErrBudgetExceeded is returned when a pass produced errors, or warnings
// under --fail-on-warning. Messages have already been printed.
var ErrBudgetExceeded = errors.New("budget check failed")

var (
	checkStats       string
	checkMetafile    string
	checkBuild       bool
	checkFailOnWarn  bool
	checkMetricsFile string
	checkDetails     bool
	checkStylesRoot  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check build output against the declared budgets",
	Long: `Measure a build and compare it against every budget in the project file.

The build output is read from, in order of precedence:
  --stats       a stats JSON document describing artifacts and files
  --metafile    an esbuild metafile
  --build       an in-memory esbuild build of build.entryPoints
  stats.file, stats.metafile or build.entryPoints from the project file

Warnings are printed and do not fail the command unless --fail-on-warning is
set. Any error fails the command with a non-zero exit status.`,
	Example: `  bundlebudget check --stats dist/stats.json
  bundlebudget check --metafile dist/meta.json --details
  bundlebudget check --build --fail-on-warning -o json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	addSourceFlags(checkCmd)
	checkCmd.Flags().BoolVar(&checkFailOnWarn, "fail-on-warning", false, "Exit non-zero when any warning is produced")
	checkCmd.Flags().StringVar(&checkMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the pass")
	checkCmd.Flags().BoolVar(&checkDetails, "details", false, "Show per-input contributions when checking a metafile or build")
}

// addSourceFlags registers the flags that select where build output comes from
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&checkStats, "stats", "", "Path to a stats JSON document")
	cmd.Flags().StringVar(&checkMetafile, "metafile", "", "Path to an esbuild metafile")
	cmd.Flags().BoolVar(&checkBuild, "build", false, "Build build.entryPoints with esbuild and check the result")
	cmd.Flags().StringVar(&checkStylesRoot, "styles-root", "", "Directory componentStyles globs are resolved against (default: project directory)")
	cmd.MarkFlagsMutuallyExclusive("stats", "metafile", "build")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadProject()
	if err != nil {
		return err
	}

	src, err := resolveSource(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r, err := newRunner(ctx, cfg, src)
	if err != nil {
		return err
	}
	defer r.close()

	report, err := r.run(ctx)
	if err != nil {
		return err
	}
	if err := printReport(GetFormatter(), report); err != nil {
		return err
	}
	if report.Failed(checkFailOnWarn) {
		return ErrBudgetExceeded
	}
	return nil
}

// Source kinds
const (
	sourceStats    = "stats"
	sourceMetafile = "metafile"
	sourceBuild    = "build"
)

// source says where a pass reads its output graph from
type source struct {
	kind string
	path string
}

func (s source) String() string {
	if s.path == "" {
		return s.kind
	}
	return s.kind + ":" + s.path
}

// resolveSource applies flag, then project file precedence
func resolveSource(cfg *config.Config) (source, error) {
	switch {
	case checkStats != "":
		return source{kind: sourceStats, path: checkStats}, nil
	case checkMetafile != "":
		return source{kind: sourceMetafile, path: checkMetafile}, nil
	case checkBuild:
		if len(cfg.Build.EntryPoints) == 0 {
			return source{}, fmt.Errorf("--build requires build.entryPoints in the project file")
		}
		return source{kind: sourceBuild}, nil
	case cfg.Stats.File != "":
		return source{kind: sourceStats, path: projectPath(cfg, cfg.Stats.File)}, nil
	case cfg.Stats.Metafile != "":
		return source{kind: sourceMetafile, path: projectPath(cfg, cfg.Stats.Metafile)}, nil
	case len(cfg.Build.EntryPoints) > 0:
		return source{kind: sourceBuild}, nil
	default:
		return source{}, fmt.Errorf("no build output to check: pass --stats, --metafile or --build, or set stats.file, stats.metafile or build.entryPoints")
	}
}

// projectDir is the directory holding the project file
func projectDir(cfg *config.Config) string {
	if cfg.File() == "" {
		return "."
	}
	return filepath.Dir(cfg.File())
}

// projectPath resolves p against the project directory
func projectPath(cfg *config.Config, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectDir(cfg), p)
}

// runner holds everything that survives between passes. Budgets are
// normalized once, when the project is loaded.
type runner struct {
	cfg         *config.Config
	src         source
	checker     *budget.Checker
	styles      *budget.ComponentStyleChecker
	metrics     *observability.Metrics
	tracer      *observability.Tracer
	sizes       *sizeRecorder
	metricsFile string
	stylesRoot  string
}

func newRunner(ctx context.Context, cfg *config.Config, src source) (*runner, error) {
	tracer, err := observability.NewTracer(ctx, cfg.Tracing, Version)
	if err != nil {
		return nil, err
	}

	metrics := observability.NewMetrics()
	sizes := &sizeRecorder{}
	opts := []budget.Option{
		budget.WithLogger(log.Logger),
		budget.WithObserver(observers{metrics, sizes}),
	}

	metricsFile := checkMetricsFile
	if metricsFile == "" && cfg.Metrics.Textfile != "" {
		metricsFile = projectPath(cfg, cfg.Metrics.Textfile)
	}
	stylesRoot := checkStylesRoot
	if stylesRoot == "" {
		stylesRoot = projectDir(cfg)
	}

	return &runner{
		cfg:         cfg,
		src:         src,
		checker:     budget.NewChecker(cfg.NormalizedBudgets(), cfg.EntryPoints(), opts...),
		styles:      budget.NewComponentStyleChecker(cfg.NormalizedBudgets(), opts...),
		metrics:     metrics,
		tracer:      tracer,
		sizes:       sizes,
		metricsFile: metricsFile,
		stylesRoot:  stylesRoot,
	}, nil
}

func (r *runner) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.tracer.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to shut down tracer")
	}
}

// run performs one pass: produce the graph, check it, then check component
// styles. Passes must not overlap.
func (r *runner) run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	start := time.Now()

	ctx, span := r.tracer.StartCheckSpan(ctx, observability.CheckSpanConfig{
		RunID:   runID,
		Project: r.cfg.Project,
		Source:  r.src.kind,
		Budgets: len(r.checker.Budgets()),
	})
	defer span.End()

	r.sizes.reset()
	msgs, err := r.check(ctx)
	duration := time.Since(start)

	r.metrics.RecordCheck(msgs, duration, err)
	observability.SetCheckResult(ctx, len(msgs.Warnings), len(msgs.Errors), duration, err)
	if r.metricsFile != "" {
		if werr := r.metrics.WriteTextfile(r.metricsFile); werr != nil {
			log.Warn().Err(werr).Str("path", r.metricsFile).Msg("Failed to write metrics")
		}
	}
	if err != nil {
		return nil, err
	}

	traceID := observability.ExtractTraceID(ctx)
	log.Debug().
		Str("run_id", runID).
		Str("trace_id", traceID).
		Bool("tracing", r.tracer.IsEnabled()).
		Str("source", r.src.String()).
		Int("warnings", len(msgs.Warnings)).
		Int("errors", len(msgs.Errors)).
		Dur("duration", duration).
		Msg("Check pass finished")

	report := newReport(runID, r.cfg.Project, r.src.String(), r.sizes.rows, msgs, duration)
	report.TraceID = traceID
	return report, nil
}

func (r *runner) check(ctx context.Context) (budget.Messages, error) {
	gctx, span := r.tracer.StartSpan(ctx, "budget.graph",
		trace.WithAttributes(attribute.String("graph.source", r.src.kind)))
	g, meta, err := r.graph(gctx)
	if err != nil {
		observability.RecordError(gctx, err)
		span.End()
		return budget.Messages{}, err
	}
	span.SetAttributes(
		attribute.Int("graph.artifacts", len(g.Artifacts)),
		attribute.Int("graph.component_styles", len(g.ComponentStyles)),
	)
	span.End()

	msgs, err := r.checker.Check(g)
	if err != nil {
		return budget.Messages{}, err
	}

	if r.styles.Enabled() {
		sctx, span := r.tracer.StartSpan(ctx, "budget.component_styles")
		files, err := r.componentStyles(g)
		if err != nil {
			observability.RecordError(sctx, err)
			span.End()
			return budget.Messages{}, err
		}
		r.metrics.RecordComponentStyles(len(files))
		styleMsgs := r.styles.Check(files)
		observability.AddSpanEvent(sctx, "styles.checked",
			attribute.Int("stylesheets", len(files)),
			attribute.Int("warnings", len(styleMsgs.Warnings)),
			attribute.Int("errors", len(styleMsgs.Errors)),
		)
		span.End()
		msgs.Merge(styleMsgs)
	}

	if checkDetails && meta != nil && !GetFormatter().Structured() && !quiet {
		for _, res := range bundler.NewAnalyzer(meta).Analyze() {
			bundler.DisplayAnalysis(GetFormatter().Writer, res, true)
		}
	}
	return msgs, nil
}

// graph produces the output graph for the configured source. The metafile
// is returned when one was read or built.
func (r *runner) graph(ctx context.Context) (budget.OutputGraph, *bundler.Metafile, error) {
	switch r.src.kind {
	case sourceStats:
		g, err := bundler.LoadStats(r.src.path)
		return g, nil, err
	case sourceMetafile:
		meta, err := bundler.LoadMetafile(r.src.path)
		if err != nil {
			return budget.OutputGraph{}, nil, err
		}
		return bundler.NewAnalyzer(meta).Graph(), meta, nil
	default:
		b, err := bundler.NewBundler(r.buildOptions())
		if err != nil {
			return budget.OutputGraph{}, nil, err
		}
		meta, err := b.Build(ctx)
		if err != nil {
			return budget.OutputGraph{}, nil, err
		}
		return bundler.NewAnalyzer(meta).Graph(), meta, nil
	}
}

func (r *runner) buildOptions() bundler.BuildOptions {
	dir, err := filepath.Abs(projectDir(r.cfg))
	if err != nil {
		dir = projectDir(r.cfg)
	}
	b := r.cfg.Build
	return bundler.BuildOptions{
		EntryPoints: b.EntryPoints,
		Outdir:      b.Outdir,
		Minify:      b.Minify,
		Sourcemap:   b.Sourcemap,
		Splitting:   b.Splitting,
		Format:      b.Format,
		Target:      b.Target,
		WorkingDir:  dir,
	}
}

// componentStyles returns the stylesheets to check. Configured globs win
// over the stylesheets reported in the graph.
func (r *runner) componentStyles(g budget.OutputGraph) ([]budget.OutputFile, error) {
	if len(r.cfg.ComponentStyles) == 0 {
		return g.ComponentStyles, nil
	}
	collector := bundler.StyleCollector{
		Root:     r.stylesRoot,
		Patterns: r.cfg.ComponentStyles,
		Optimize: r.cfg.Optimization.Styles,
	}
	return collector.Collect()
}
